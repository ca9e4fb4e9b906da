package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/inmobiliaria/backend/internal/domain/lot"
	"github.com/inmobiliaria/backend/internal/domain/sales"
	"github.com/inmobiliaria/backend/internal/domain/shared"
)

// maxConflictRetries bounds how often a write is replayed after losing an
// optimistic-lock race before the conflict is surfaced to the caller.
const maxConflictRetries = 3

// SaleService handles sale lifecycle operations. Every write runs the full
// recalculation pipeline inside one transaction: aggregate paid recompute,
// payment allocation, balance redistribution, sale status, lot availability.
type SaleService struct {
	saleRepo    sales.SaleRepository
	paymentRepo sales.PaymentRepository
	lotRepo     lot.LotRepository
	coordinator lotCoordinator
	tx          shared.TxRunner
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(
	saleRepo sales.SaleRepository,
	paymentRepo sales.PaymentRepository,
	lotRepo lot.LotRepository,
	tx shared.TxRunner,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *SaleService {
	return &SaleService{
		saleRepo:    saleRepo,
		paymentRepo: paymentRepo,
		lotRepo:     lotRepo,
		coordinator: lotCoordinator{saleRepo: saleRepo, lotRepo: lotRepo},
		tx:          tx,
		publisher:   publisher,
		logger:      logger,
	}
}

// Create registers a new sale. When the caller omits the contract value it is
// derived from the lot's price table for the requested term. A schedule that
// cannot be generated (non-positive principal or term) is reported as a
// warning and the sale is saved without a plan.
func (s *SaleService) Create(ctx context.Context, req CreateSaleRequest) (*SaleResponse, error) {
	lotID, err := uuid.Parse(req.LotID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Lot ID is not a valid UUID")
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Client ID is not a valid UUID")
	}

	var (
		sale   *sales.Sale
		events []shared.DomainEvent
		warns  []shared.Warning
	)
	err = s.runWrite(ctx, func(ctx context.Context) error {
		events = events[:0]
		warns = warns[:0]

		l, err := s.lotRepo.FindByID(ctx, lotID)
		if err != nil {
			return fmt.Errorf("failed to load lot: %w", err)
		}

		totalValue := s.resolveTotalValue(req, l)
		number, err := s.saleRepo.NextSaleNumber(ctx)
		if err != nil {
			return fmt.Errorf("failed to issue sale number: %w", err)
		}

		sale, err = sales.NewSale(number, lotID, clientID, req.SaleDate,
			sales.SaleType(req.Type), req.TermMonths, totalValue, req.DownPayment,
			req.PriceUSD, req.ExchangeRate)
		if err != nil {
			return err
		}
		sale.Notes = req.Notes

		if w := s.attachPlan(sale); w != nil {
			warns = append(warns, *w)
		}

		if err := s.saleRepo.Save(ctx, sale); err != nil {
			return fmt.Errorf("failed to save sale: %w", err)
		}
		events = append(events, drainEvents(sale)...)

		lotEvents, err := s.coordinator.SyncLot(ctx, lotID)
		if err != nil {
			return err
		}
		events = append(events, lotEvents...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	resp := ToSaleResponse(sale)
	resp.Warnings = warns
	return &resp, nil
}

// Update changes the terms of a sale. A real term change regenerates the
// installment plan and replays the full payment history against it.
func (s *SaleService) Update(ctx context.Context, id uuid.UUID, req UpdateSaleRequest) (*SaleResponse, error) {
	lotID, err := uuid.Parse(req.LotID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Lot ID is not a valid UUID")
	}

	var (
		sale   *sales.Sale
		events []shared.DomainEvent
		warns  []shared.Warning
	)
	err = s.runWrite(ctx, func(ctx context.Context) error {
		events = events[:0]
		warns = warns[:0]

		sale, err = s.saleRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		previousLotID := sale.LotID

		changed, err := sale.UpdateTerms(lotID, sales.SaleType(req.Type), req.TermMonths, req.TotalValue, req.DownPayment)
		if err != nil {
			return err
		}
		sale.Notes = req.Notes

		if changed {
			if w := s.reschedulePlan(sale); w != nil {
				warns = append(warns, *w)
			}
		}

		payments, err := s.paymentRepo.FindBySaleID(ctx, sale.ID)
		if err != nil {
			return fmt.Errorf("failed to load payments: %w", err)
		}
		result := sales.Recalculate(sale, payments, time.Now())
		warns = append(warns, result.Warnings...)

		if err := s.paymentRepo.SaveAll(ctx, payments); err != nil {
			return fmt.Errorf("failed to save payment pins: %w", err)
		}
		if err := s.saleRepo.Save(ctx, sale); err != nil {
			return err
		}
		events = append(events, drainEvents(sale)...)

		lotEvents, err := s.coordinator.SyncLot(ctx, previousLotID)
		if err != nil {
			return err
		}
		events = append(events, lotEvents...)
		if sale.LotID != previousLotID {
			lotEvents, err = s.coordinator.SyncLot(ctx, sale.LotID)
			if err != nil {
				return err
			}
			events = append(events, lotEvents...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	resp := ToSaleResponse(sale)
	resp.Warnings = warns
	return &resp, nil
}

// Delete removes a sale with its plan and payment history, then re-derives
// the availability of the lot it referenced.
func (s *SaleService) Delete(ctx context.Context, id uuid.UUID) error {
	var events []shared.DomainEvent
	err := s.runWrite(ctx, func(ctx context.Context) error {
		events = events[:0]

		sale, err := s.saleRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		lotID := sale.LotID

		if err := s.paymentRepo.DeleteBySaleID(ctx, sale.ID); err != nil {
			return fmt.Errorf("failed to delete payments: %w", err)
		}
		if err := s.saleRepo.Delete(ctx, sale.ID); err != nil {
			return err
		}
		events = append(events, sales.NewSaleDeletedEvent(sale))

		lotEvents, err := s.coordinator.SyncLot(ctx, lotID)
		if err != nil {
			return err
		}
		events = append(events, lotEvents...)
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events)
	return nil
}

// Sign records the contract signature of a processable sale. Idempotent:
// signing an already-signed sale returns the existing signature date.
func (s *SaleService) Sign(ctx context.Context, id uuid.UUID, req SignSaleRequest) (*SaleResponse, error) {
	date := time.Now()
	if req.SignatureDate != nil {
		date = *req.SignatureDate
	}
	return s.mutate(ctx, id, func(sale *sales.Sale) error {
		_, err := sale.MarkSigned(date)
		return err
	})
}

// RevertSignature clears the signature of a processable sale
func (s *SaleService) RevertSignature(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	return s.mutate(ctx, id, func(sale *sales.Sale) error {
		return sale.RevertSignature()
	})
}

// Void voids a sale. Void is sticky against the status engine; only
// RevertVoid leaves it.
func (s *SaleService) Void(ctx context.Context, id uuid.UUID, req VoidSaleRequest) (*SaleResponse, error) {
	return s.mutate(ctx, id, func(sale *sales.Sale) error {
		return sale.Void(req.Reason)
	})
}

// RevertVoid restores a voided sale, re-deriving its status from the
// recorded payments.
func (s *SaleService) RevertVoid(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	return s.mutate(ctx, id, func(sale *sales.Sale) error {
		return sale.RevertVoid()
	})
}

// GetByID retrieves a sale with its plan
func (s *SaleService) GetByID(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// List retrieves sales matching the filter
func (s *SaleService) List(ctx context.Context, filter SaleListFilter) ([]SaleResponse, int64, error) {
	domainFilter := s.buildFilter(filter)

	saleRows, err := s.saleRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.saleRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]SaleResponse, len(saleRows))
	for i := range saleRows {
		responses[i] = ToSaleResponse(&saleRows[i])
	}
	return responses, total, nil
}

// mutate runs a single-sale state action followed by lot re-derivation
func (s *SaleService) mutate(ctx context.Context, id uuid.UUID, fn func(*sales.Sale) error) (*SaleResponse, error) {
	var (
		sale   *sales.Sale
		events []shared.DomainEvent
	)
	err := s.runWrite(ctx, func(ctx context.Context) error {
		events = events[:0]

		var err error
		sale, err = s.saleRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(sale); err != nil {
			return err
		}
		if err := s.saleRepo.Save(ctx, sale); err != nil {
			return err
		}
		events = append(events, drainEvents(sale)...)

		lotEvents, err := s.coordinator.SyncLot(ctx, sale.LotID)
		if err != nil {
			return err
		}
		events = append(events, lotEvents...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// resolveTotalValue picks the contract value: the caller's explicit value, or
// the lot's price for the requested term when omitted.
func (s *SaleService) resolveTotalValue(req CreateSaleRequest, l *lot.Lot) decimal.Decimal {
	if req.TotalValue != nil && req.TotalValue.IsPositive() {
		return *req.TotalValue
	}
	if sales.SaleType(req.Type) == sales.SaleTypeCredit {
		return l.CreditPrice(req.TermMonths)
	}
	return l.ListPrice
}

// attachPlan generates the installment plan for a credit sale. A schedule
// error is returned as a warning; the sale proceeds without a plan.
func (s *SaleService) attachPlan(sale *sales.Sale) *shared.Warning {
	if !sale.NeedsPlan() {
		return nil
	}
	firstDue := sales.AddMonths(sale.SaleDate, 1)
	plan, err := sales.NewInstallmentPlan(sale.ID, sale.FinancedPrincipal(), sale.TermMonths, firstDue)
	if err != nil {
		return scheduleWarning(err)
	}
	sale.Plan = plan
	return nil
}

// reschedulePlan regenerates the plan after a term change. Dropping below a
// plannable configuration removes the plan entirely.
func (s *SaleService) reschedulePlan(sale *sales.Sale) *shared.Warning {
	if !sale.NeedsPlan() {
		sale.Plan = nil
		return nil
	}
	firstDue := sales.AddMonths(sale.SaleDate, 1)
	if sale.Plan == nil {
		plan, err := sales.NewInstallmentPlan(sale.ID, sale.FinancedPrincipal(), sale.TermMonths, firstDue)
		if err != nil {
			return scheduleWarning(err)
		}
		sale.Plan = plan
	} else {
		if err := sale.Plan.Regenerate(sale.FinancedPrincipal(), sale.TermMonths, firstDue); err != nil {
			sale.Plan = nil
			return scheduleWarning(err)
		}
	}
	sale.AddDomainEvent(sales.NewPlanRescheduledEvent(sale, sale.Plan))
	return nil
}

// buildFilter maps the request filter to the repository filter
func (s *SaleService) buildFilter(filter SaleListFilter) sales.SaleFilter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := sales.SaleFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
	}
	if filter.Status != "" {
		status := sales.SaleStatus(filter.Status)
		domainFilter.Status = &status
	}
	if filter.Type != "" {
		saleType := sales.SaleType(filter.Type)
		domainFilter.Type = &saleType
	}
	if id, err := uuid.Parse(filter.LotID); err == nil && filter.LotID != "" {
		domainFilter.LotID = &id
	}
	if id, err := uuid.Parse(filter.ClientID); err == nil && filter.ClientID != "" {
		domainFilter.ClientID = &id
	}
	return domainFilter
}

// runWrite executes fn in a transaction, replaying it on optimistic-lock
// conflicts up to maxConflictRetries times.
func (s *SaleService) runWrite(ctx context.Context, fn func(ctx context.Context) error) error {
	return runInTransactionWithRetry(ctx, s.tx, s.logger, fn)
}

// publish sends collected domain events after the transaction committed
func (s *SaleService) publish(ctx context.Context, events []shared.DomainEvent) {
	publishEvents(ctx, s.publisher, s.logger, events)
}

// runInTransactionWithRetry wraps fn in a transaction with bounded retries on
// concurrency conflicts
func runInTransactionWithRetry(ctx context.Context, tx shared.TxRunner, logger *zap.Logger, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= maxConflictRetries; attempt++ {
		err = tx.InTransaction(ctx, fn)
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}
		logger.Warn("write lost a concurrency race, retrying",
			zap.Int("attempt", attempt),
		)
	}
	return shared.ErrConcurrencyConflict
}

// publishEvents publishes events post-commit; delivery failures are logged,
// never surfaced to the caller whose write already committed
func publishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, events []shared.DomainEvent) {
	if len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Error("failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}

// drainEvents takes and clears the pending events of an aggregate
func drainEvents(agg shared.AggregateRoot) []shared.DomainEvent {
	events := agg.GetDomainEvents()
	agg.ClearDomainEvents()
	return events
}

// scheduleWarning converts a schedule-generation error into a warning
func scheduleWarning(err error) *shared.Warning {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		w := shared.NewWarning(domainErr.Code, domainErr.Message)
		return &w
	}
	w := shared.NewWarning(shared.WarnInvalidSchedule, err.Error())
	return &w
}
