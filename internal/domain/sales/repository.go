package sales

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/inmobiliaria/backend/internal/domain/shared"
)

// SaleFilter defines filtering options for sale queries
type SaleFilter struct {
	shared.Filter
	LotID    *uuid.UUID
	ClientID *uuid.UUID
	Status   *SaleStatus
	Type     *SaleType
	FromDate *time.Time
	ToDate   *time.Time
}

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// FindByID loads a sale with its plan and installments
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindByIDForUpdate loads a sale under an exclusive row lock. Must be
	// called inside a transaction; the lock is held until commit.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindByLotID returns all sales referencing a lot
	FindByLotID(ctx context.Context, lotID uuid.UUID) ([]Sale, error)

	// FindAll returns sales matching the filter
	FindAll(ctx context.Context, filter SaleFilter) ([]Sale, error)

	// Count counts sales matching the filter
	Count(ctx context.Context, filter SaleFilter) (int64, error)

	// Save creates or updates a sale together with its plan and
	// installments. Uses the version for optimistic conflict detection.
	Save(ctx context.Context, sale *Sale) error

	// Delete removes a sale and, by cascade, its plan and installments
	Delete(ctx context.Context, id uuid.UUID) error

	// NextSaleNumber issues the next sequential sale number (V-xxxxx)
	NextSaleNumber(ctx context.Context) (string, error)
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindBySaleID returns the complete payment history of a sale in
	// (payment date, payment number) order
	FindBySaleID(ctx context.Context, saleID uuid.UUID) ([]*Payment, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error

	// SaveAll persists pin changes made by the allocator during a replay
	SaveAll(ctx context.Context, payments []*Payment) error

	// Delete removes a payment
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteBySaleID removes the full payment history of a sale
	DeleteBySaleID(ctx context.Context, saleID uuid.UUID) error

	// NextPaymentNumber issues the next sequential payment number (PG-xxxx)
	NextPaymentNumber(ctx context.Context) (string, error)
}
