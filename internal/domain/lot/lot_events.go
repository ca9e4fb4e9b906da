package lot

import (
	"github.com/google/uuid"

	"github.com/inmobiliaria/backend/internal/domain/shared"
)

// LotStatusChangedEvent is raised when the derived availability changes
type LotStatusChangedEvent struct {
	shared.BaseDomainEvent
	LotID                uuid.UUID    `json:"lot_id"`
	LotNumber            string       `json:"lot_number"`
	Project              string       `json:"project"`
	PreviousAvailability Availability `json:"previous_availability"`
	NewAvailability      Availability `json:"new_availability"`
}

// EventType returns the event type name
func (e *LotStatusChangedEvent) EventType() string {
	return "LotStatusChanged"
}

// NewLotStatusChangedEvent creates a new LotStatusChangedEvent
func NewLotStatusChangedEvent(l *Lot, previous Availability) *LotStatusChangedEvent {
	return &LotStatusChangedEvent{
		BaseDomainEvent:      shared.NewBaseDomainEvent("LotStatusChanged", "Lot", l.ID),
		LotID:                l.ID,
		LotNumber:            l.LotNumber,
		Project:              l.Project,
		PreviousAvailability: previous,
		NewAvailability:      l.Availability,
	}
}
