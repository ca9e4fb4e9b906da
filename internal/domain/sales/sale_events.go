package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inmobiliaria/backend/internal/domain/shared"
)

// SaleCreatedEvent is raised when a new sale is created
type SaleCreatedEvent struct {
	shared.BaseDomainEvent
	SaleID     uuid.UUID       `json:"sale_id"`
	SaleNumber string          `json:"sale_number"`
	LotID      uuid.UUID       `json:"lot_id"`
	ClientID   uuid.UUID       `json:"client_id"`
	Type       SaleType        `json:"type"`
	TermMonths int             `json:"term_months"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// EventType returns the event type name
func (e *SaleCreatedEvent) EventType() string {
	return "SaleCreated"
}

// NewSaleCreatedEvent creates a new SaleCreatedEvent
func NewSaleCreatedEvent(s *Sale) *SaleCreatedEvent {
	return &SaleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SaleCreated", "Sale", s.ID),
		SaleID:          s.ID,
		SaleNumber:      s.SaleNumber,
		LotID:           s.LotID,
		ClientID:        s.ClientID,
		Type:            s.Type,
		TermMonths:      s.TermMonths,
		TotalValue:      s.TotalValue,
	}
}

// SaleUpdatedEvent is raised when the terms of a sale change
type SaleUpdatedEvent struct {
	shared.BaseDomainEvent
	SaleID     uuid.UUID       `json:"sale_id"`
	SaleNumber string          `json:"sale_number"`
	LotID      uuid.UUID       `json:"lot_id"`
	Type       SaleType        `json:"type"`
	TermMonths int             `json:"term_months"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// EventType returns the event type name
func (e *SaleUpdatedEvent) EventType() string {
	return "SaleUpdated"
}

// NewSaleUpdatedEvent creates a new SaleUpdatedEvent
func NewSaleUpdatedEvent(s *Sale) *SaleUpdatedEvent {
	return &SaleUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SaleUpdated", "Sale", s.ID),
		SaleID:          s.ID,
		SaleNumber:      s.SaleNumber,
		LotID:           s.LotID,
		Type:            s.Type,
		TermMonths:      s.TermMonths,
		TotalValue:      s.TotalValue,
	}
}

// SaleDeletedEvent is raised when a sale is removed
type SaleDeletedEvent struct {
	shared.BaseDomainEvent
	SaleID     uuid.UUID `json:"sale_id"`
	SaleNumber string    `json:"sale_number"`
	LotID      uuid.UUID `json:"lot_id"`
}

// EventType returns the event type name
func (e *SaleDeletedEvent) EventType() string {
	return "SaleDeleted"
}

// NewSaleDeletedEvent creates a new SaleDeletedEvent
func NewSaleDeletedEvent(s *Sale) *SaleDeletedEvent {
	return &SaleDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SaleDeleted", "Sale", s.ID),
		SaleID:          s.ID,
		SaleNumber:      s.SaleNumber,
		LotID:           s.LotID,
	}
}

// SaleStatusChangedEvent is raised when the derived sale status changes
type SaleStatusChangedEvent struct {
	shared.BaseDomainEvent
	SaleID         uuid.UUID       `json:"sale_id"`
	SaleNumber     string          `json:"sale_number"`
	LotID          uuid.UUID       `json:"lot_id"`
	PreviousStatus SaleStatus      `json:"previous_status"`
	NewStatus      SaleStatus      `json:"new_status"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
}

// EventType returns the event type name
func (e *SaleStatusChangedEvent) EventType() string {
	return "SaleStatusChanged"
}

// NewSaleStatusChangedEvent creates a new SaleStatusChangedEvent
func NewSaleStatusChangedEvent(s *Sale, previous SaleStatus) *SaleStatusChangedEvent {
	return &SaleStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SaleStatusChanged", "Sale", s.ID),
		SaleID:          s.ID,
		SaleNumber:      s.SaleNumber,
		LotID:           s.LotID,
		PreviousStatus:  previous,
		NewStatus:       s.Status,
		AmountPaid:      s.AmountPaid,
	}
}

// SaleSignedEvent is raised when the contract signature is recorded
type SaleSignedEvent struct {
	shared.BaseDomainEvent
	SaleID        uuid.UUID  `json:"sale_id"`
	SaleNumber    string     `json:"sale_number"`
	LotID         uuid.UUID  `json:"lot_id"`
	SignatureDate *time.Time `json:"signature_date"`
}

// EventType returns the event type name
func (e *SaleSignedEvent) EventType() string {
	return "SaleSigned"
}

// NewSaleSignedEvent creates a new SaleSignedEvent
func NewSaleSignedEvent(s *Sale) *SaleSignedEvent {
	return &SaleSignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SaleSigned", "Sale", s.ID),
		SaleID:          s.ID,
		SaleNumber:      s.SaleNumber,
		LotID:           s.LotID,
		SignatureDate:   s.SignatureDate,
	}
}

// SaleSignatureRevertedEvent is raised when a signature is cleared
type SaleSignatureRevertedEvent struct {
	shared.BaseDomainEvent
	SaleID     uuid.UUID `json:"sale_id"`
	SaleNumber string    `json:"sale_number"`
	LotID      uuid.UUID `json:"lot_id"`
}

// EventType returns the event type name
func (e *SaleSignatureRevertedEvent) EventType() string {
	return "SaleSignatureReverted"
}

// NewSaleSignatureRevertedEvent creates a new SaleSignatureRevertedEvent
func NewSaleSignatureRevertedEvent(s *Sale) *SaleSignatureRevertedEvent {
	return &SaleSignatureRevertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SaleSignatureReverted", "Sale", s.ID),
		SaleID:          s.ID,
		SaleNumber:      s.SaleNumber,
		LotID:           s.LotID,
	}
}

// SaleVoidedEvent is raised when a sale is voided
type SaleVoidedEvent struct {
	shared.BaseDomainEvent
	SaleID         uuid.UUID  `json:"sale_id"`
	SaleNumber     string     `json:"sale_number"`
	LotID          uuid.UUID  `json:"lot_id"`
	PreviousStatus SaleStatus `json:"previous_status"`
	Reason         string     `json:"reason"`
}

// EventType returns the event type name
func (e *SaleVoidedEvent) EventType() string {
	return "SaleVoided"
}

// NewSaleVoidedEvent creates a new SaleVoidedEvent
func NewSaleVoidedEvent(s *Sale, previous SaleStatus) *SaleVoidedEvent {
	return &SaleVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SaleVoided", "Sale", s.ID),
		SaleID:          s.ID,
		SaleNumber:      s.SaleNumber,
		LotID:           s.LotID,
		PreviousStatus:  previous,
		Reason:          s.VoidReason,
	}
}

// SaleVoidRevertedEvent is raised when a void is reverted
type SaleVoidRevertedEvent struct {
	shared.BaseDomainEvent
	SaleID     uuid.UUID  `json:"sale_id"`
	SaleNumber string     `json:"sale_number"`
	LotID      uuid.UUID  `json:"lot_id"`
	NewStatus  SaleStatus `json:"new_status"`
}

// EventType returns the event type name
func (e *SaleVoidRevertedEvent) EventType() string {
	return "SaleVoidReverted"
}

// NewSaleVoidRevertedEvent creates a new SaleVoidRevertedEvent
func NewSaleVoidRevertedEvent(s *Sale) *SaleVoidRevertedEvent {
	return &SaleVoidRevertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SaleVoidReverted", "Sale", s.ID),
		SaleID:          s.ID,
		SaleNumber:      s.SaleNumber,
		LotID:           s.LotID,
		NewStatus:       s.Status,
	}
}

// PlanRescheduledEvent is raised when the installment plan is regenerated
// because the credit terms changed
type PlanRescheduledEvent struct {
	shared.BaseDomainEvent
	SaleID     uuid.UUID       `json:"sale_id"`
	SaleNumber string          `json:"sale_number"`
	PlanID     uuid.UUID       `json:"plan_id"`
	Count      int             `json:"count"`
	Regular    decimal.Decimal `json:"regular"`
}

// EventType returns the event type name
func (e *PlanRescheduledEvent) EventType() string {
	return "PlanRescheduled"
}

// NewPlanRescheduledEvent creates a new PlanRescheduledEvent
func NewPlanRescheduledEvent(s *Sale, plan *InstallmentPlan) *PlanRescheduledEvent {
	return &PlanRescheduledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PlanRescheduled", "Sale", s.ID),
		SaleID:          s.ID,
		SaleNumber:      s.SaleNumber,
		PlanID:          plan.ID,
		Count:           plan.Count,
		Regular:         plan.RegularAmount,
	}
}

// PaymentRecordedEvent is raised when a payment is recorded against a sale
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	SaleID        uuid.UUID       `json:"sale_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
}

// EventType returns the event type name
func (e *PaymentRecordedEvent) EventType() string {
	return "PaymentRecorded"
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentRecorded", "Payment", p.ID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		SaleID:          p.SaleID,
		Amount:          p.Amount,
		PaymentDate:     p.PaymentDate,
	}
}

// PaymentUpdatedEvent is raised when a payment is modified
type PaymentUpdatedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	SaleID        uuid.UUID       `json:"sale_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// EventType returns the event type name
func (e *PaymentUpdatedEvent) EventType() string {
	return "PaymentUpdated"
}

// NewPaymentUpdatedEvent creates a new PaymentUpdatedEvent
func NewPaymentUpdatedEvent(p *Payment) *PaymentUpdatedEvent {
	return &PaymentUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentUpdated", "Payment", p.ID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		SaleID:          p.SaleID,
		Amount:          p.Amount,
	}
}

// PaymentDeletedEvent is raised when a payment is removed
type PaymentDeletedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID `json:"payment_id"`
	PaymentNumber string    `json:"payment_number"`
	SaleID        uuid.UUID `json:"sale_id"`
}

// EventType returns the event type name
func (e *PaymentDeletedEvent) EventType() string {
	return "PaymentDeleted"
}

// NewPaymentDeletedEvent creates a new PaymentDeletedEvent
func NewPaymentDeletedEvent(p *Payment) *PaymentDeletedEvent {
	return &PaymentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentDeleted", "Payment", p.ID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		SaleID:          p.SaleID,
	}
}
