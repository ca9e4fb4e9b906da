package lot

import (
	"context"

	"github.com/google/uuid"

	"github.com/inmobiliaria/backend/internal/domain/shared"
)

// LotFilter defines filtering options for lot queries
type LotFilter struct {
	shared.Filter
	Project      *string
	Availability *Availability
}

// LotRepository defines the interface for lot persistence
type LotRepository interface {
	// FindByID finds a lot by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Lot, error)

	// FindByIDForUpdate loads a lot under an exclusive row lock. The
	// coordinator acquires this lock after the sale lock, never before.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Lot, error)

	// FindAll returns lots matching the filter
	FindAll(ctx context.Context, filter LotFilter) ([]Lot, error)

	// Count counts lots matching the filter
	Count(ctx context.Context, filter LotFilter) (int64, error)

	// Save creates or updates a lot
	Save(ctx context.Context, lot *Lot) error

	// Delete removes a lot
	Delete(ctx context.Context, id uuid.UUID) error
}
