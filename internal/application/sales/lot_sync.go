package sales

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/inmobiliaria/backend/internal/domain/lot"
	"github.com/inmobiliaria/backend/internal/domain/sales"
	"github.com/inmobiliaria/backend/internal/domain/shared"
)

// lotCoordinator re-derives a lot's availability from its sales. Runs inside
// the caller's transaction; the lot row lock is always taken after the sale
// row lock to keep the lock order stable.
type lotCoordinator struct {
	saleRepo sales.SaleRepository
	lotRepo  lot.LotRepository
}

// SyncLot recomputes and persists the availability of one lot. Returns the
// domain events raised by the lot, to be published after commit.
func (c *lotCoordinator) SyncLot(ctx context.Context, lotID uuid.UUID) ([]shared.DomainEvent, error) {
	l, err := c.lotRepo.FindByIDForUpdate(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock lot: %w", err)
	}

	saleRows, err := c.saleRepo.FindByLotID(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales for lot: %w", err)
	}

	summaries := make([]lot.SaleSummary, 0, len(saleRows))
	for i := range saleRows {
		summaries = append(summaries, summarize(&saleRows[i]))
	}

	changed, err := l.ApplyAvailability(lot.DeriveAvailability(summaries))
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, nil
	}
	if err := c.lotRepo.Save(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to save lot: %w", err)
	}
	events := l.GetDomainEvents()
	l.ClearDomainEvents()
	return events, nil
}

// summarize projects a sale into the shape the availability derivation needs
func summarize(s *sales.Sale) lot.SaleSummary {
	return lot.SaleSummary{
		Void:        s.IsVoid(),
		Signed:      s.ContractSigned,
		Processable: s.Status == sales.SaleStatusProcessable,
		Completed:   s.Status == sales.SaleStatusCompleted,
	}
}
