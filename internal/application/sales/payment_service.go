package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inmobiliaria/backend/internal/domain/lot"
	"github.com/inmobiliaria/backend/internal/domain/sales"
	"github.com/inmobiliaria/backend/internal/domain/shared"
)

// PaymentService records, edits and deletes payments. Each write locks the
// sale, mutates the payment set, then replays the whole history through the
// recalculation pipeline so schedule and statuses are re-derived, never
// incrementally patched.
type PaymentService struct {
	saleRepo    sales.SaleRepository
	paymentRepo sales.PaymentRepository
	coordinator lotCoordinator
	tx          shared.TxRunner
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	saleRepo sales.SaleRepository,
	paymentRepo sales.PaymentRepository,
	lotRepo lot.LotRepository,
	tx shared.TxRunner,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		saleRepo:    saleRepo,
		paymentRepo: paymentRepo,
		coordinator: lotCoordinator{saleRepo: saleRepo, lotRepo: lotRepo},
		tx:          tx,
		publisher:   publisher,
		logger:      logger,
	}
}

// Record registers a payment against a sale and replays the ledger
func (s *PaymentService) Record(ctx context.Context, req RecordPaymentRequest) (*PaymentResponse, error) {
	saleID, err := uuid.Parse(req.SaleID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Sale ID is not a valid UUID")
	}
	pinnedID, err := parseOptionalUUID(req.PinnedInstallmentID)
	if err != nil {
		return nil, err
	}

	var (
		payment *sales.Payment
		events  []shared.DomainEvent
		warns   []shared.Warning
	)
	err = runInTransactionWithRetry(ctx, s.tx, s.logger, func(ctx context.Context) error {
		events = events[:0]
		warns = warns[:0]

		sale, err := s.saleRepo.FindByIDForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if err := validatePin(sale, pinnedID); err != nil {
			return err
		}

		number, err := s.paymentRepo.NextPaymentNumber(ctx)
		if err != nil {
			return fmt.Errorf("failed to issue payment number: %w", err)
		}

		if sale.IsDualCurrency() {
			if req.AmountUSD == nil || req.ExchangeRate == nil {
				return shared.NewDomainError("INVALID_INPUT", "USD amount and exchange rate are required for a dual-currency sale")
			}
			payment, err = sales.NewPaymentUSD(number, sale.ID, req.PaymentDate,
				*req.AmountUSD, *req.ExchangeRate, sales.PaymentMethod(req.Method), req.Reference, pinnedID)
		} else {
			if req.AmountUSD != nil {
				return shared.NewDomainError("INVALID_INPUT", "USD amounts are only accepted on dual-currency sales")
			}
			payment, err = sales.NewPayment(number, sale.ID, req.PaymentDate,
				req.Amount, sales.PaymentMethod(req.Method), req.Reference, pinnedID)
		}
		if err != nil {
			return err
		}
		payment.Notes = req.Notes

		if err := s.paymentRepo.Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		events = append(events, sales.NewPaymentRecordedEvent(payment))

		w, evs, err := s.replay(ctx, sale)
		if err != nil {
			return err
		}
		warns = append(warns, w...)
		events = append(events, evs...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishEvents(ctx, s.publisher, s.logger, events)
	resp := ToPaymentResponse(payment)
	resp.Warnings = warns
	return &resp, nil
}

// Update edits a payment and replays the ledger of its sale
func (s *PaymentService) Update(ctx context.Context, id uuid.UUID, req UpdatePaymentRequest) (*PaymentResponse, error) {
	pinnedID, err := parseOptionalUUID(req.PinnedInstallmentID)
	if err != nil {
		return nil, err
	}

	var (
		payment *sales.Payment
		events  []shared.DomainEvent
		warns   []shared.Warning
	)
	err = runInTransactionWithRetry(ctx, s.tx, s.logger, func(ctx context.Context) error {
		events = events[:0]
		warns = warns[:0]

		payment, err = s.paymentRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		sale, err := s.saleRepo.FindByIDForUpdate(ctx, payment.SaleID)
		if err != nil {
			return err
		}
		if err := validatePin(sale, pinnedID); err != nil {
			return err
		}
		if sale.IsDualCurrency() && req.AmountUSD == nil {
			return shared.NewDomainError("INVALID_INPUT", "USD amount and exchange rate are required for a dual-currency sale")
		}
		if !sale.IsDualCurrency() && req.AmountUSD != nil {
			return shared.NewDomainError("INVALID_INPUT", "USD amounts are only accepted on dual-currency sales")
		}

		if err := payment.UpdateDetails(req.PaymentDate, req.Amount, req.AmountUSD, req.ExchangeRate,
			sales.PaymentMethod(req.Method), req.Reference, req.Notes, pinnedID); err != nil {
			return err
		}
		if err := s.paymentRepo.Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		events = append(events, sales.NewPaymentUpdatedEvent(payment))

		w, evs, err := s.replay(ctx, sale)
		if err != nil {
			return err
		}
		warns = append(warns, w...)
		events = append(events, evs...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishEvents(ctx, s.publisher, s.logger, events)
	resp := ToPaymentResponse(payment)
	resp.Warnings = warns
	return &resp, nil
}

// Delete removes a payment and replays the ledger of its sale
func (s *PaymentService) Delete(ctx context.Context, id uuid.UUID) error {
	var events []shared.DomainEvent
	err := runInTransactionWithRetry(ctx, s.tx, s.logger, func(ctx context.Context) error {
		events = events[:0]

		payment, err := s.paymentRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		sale, err := s.saleRepo.FindByIDForUpdate(ctx, payment.SaleID)
		if err != nil {
			return err
		}

		if err := s.paymentRepo.Delete(ctx, payment.ID); err != nil {
			return fmt.Errorf("failed to delete payment: %w", err)
		}
		events = append(events, sales.NewPaymentDeletedEvent(payment))

		_, evs, err := s.replay(ctx, sale)
		if err != nil {
			return err
		}
		events = append(events, evs...)
		return nil
	})
	if err != nil {
		return err
	}

	publishEvents(ctx, s.publisher, s.logger, events)
	return nil
}

// ListBySale retrieves the payments of a sale in replay order
func (s *PaymentService) ListBySale(ctx context.Context, saleID uuid.UUID) ([]PaymentResponse, error) {
	if _, err := s.saleRepo.FindByID(ctx, saleID); err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindBySaleID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	responses := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		responses[i] = ToPaymentResponse(p)
	}
	return responses, nil
}

// replay reloads the payment history of a locked sale and runs the
// recalculation pipeline, persisting the reshaped plan, the re-derived pins
// and the lot availability.
func (s *PaymentService) replay(ctx context.Context, sale *sales.Sale) ([]shared.Warning, []shared.DomainEvent, error) {
	payments, err := s.paymentRepo.FindBySaleID(ctx, sale.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load payments: %w", err)
	}

	result := sales.Recalculate(sale, payments, time.Now())

	if err := s.paymentRepo.SaveAll(ctx, payments); err != nil {
		return nil, nil, fmt.Errorf("failed to save payment pins: %w", err)
	}
	if err := s.saleRepo.Save(ctx, sale); err != nil {
		return nil, nil, err
	}
	events := drainEvents(sale)

	lotEvents, err := s.coordinator.SyncLot(ctx, sale.LotID)
	if err != nil {
		return nil, nil, err
	}
	return result.Warnings, append(events, lotEvents...), nil
}

// validatePin checks that a user-supplied pin references an installment of
// the sale's current plan
func validatePin(sale *sales.Sale, pinnedID *uuid.UUID) error {
	if pinnedID == nil {
		return nil
	}
	if sale.Plan == nil || sale.Plan.FindInstallment(*pinnedID) == nil {
		return shared.NewDomainError("INVALID_INPUT", "Pinned installment does not belong to the sale's plan")
	}
	return nil
}

// parseOptionalUUID parses a nullable UUID string
func parseOptionalUUID(raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Installment ID is not a valid UUID")
	}
	return &id, nil
}
