package sales

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/inmobiliaria/backend/internal/domain/lot"
	"github.com/inmobiliaria/backend/internal/domain/sales"
	"github.com/inmobiliaria/backend/internal/domain/shared"
)

// In-memory doubles for the repository and transaction interfaces. They keep
// aggregates by pointer, which matches how the services hold them across one
// transaction.

type fakeSaleRepo struct {
	sales    map[uuid.UUID]*sales.Sale
	seq      int
	saveErrs []error // popped one per Save call
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[uuid.UUID]*sales.Sale)}
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*sales.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return s, nil
}

func (r *fakeSaleRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeSaleRepo) FindByLotID(_ context.Context, lotID uuid.UUID) ([]sales.Sale, error) {
	var out []sales.Sale
	for _, s := range r.sales {
		if s.LotID == lotID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSaleRepo) FindAll(_ context.Context, filter sales.SaleFilter) ([]sales.Sale, error) {
	var out []sales.Sale
	for _, s := range r.sales {
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		if filter.Type != nil && s.Type != *filter.Type {
			continue
		}
		if filter.LotID != nil && s.LotID != *filter.LotID {
			continue
		}
		if filter.ClientID != nil && s.ClientID != *filter.ClientID {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeSaleRepo) Count(ctx context.Context, filter sales.SaleFilter) (int64, error) {
	out, err := r.FindAll(ctx, filter)
	return int64(len(out)), err
}

func (r *fakeSaleRepo) Save(_ context.Context, s *sales.Sale) error {
	if len(r.saveErrs) > 0 {
		err := r.saveErrs[0]
		r.saveErrs = r.saveErrs[1:]
		if err != nil {
			return err
		}
	}
	r.sales[s.ID] = s
	return nil
}

func (r *fakeSaleRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.sales[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.sales, id)
	return nil
}

func (r *fakeSaleRepo) NextSaleNumber(_ context.Context) (string, error) {
	r.seq++
	return fmt.Sprintf("V-%05d", r.seq), nil
}

type fakePaymentRepo struct {
	payments map[uuid.UUID]*sales.Payment
	seq      int
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]*sales.Payment)}
}

func (r *fakePaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*sales.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *fakePaymentRepo) FindBySaleID(_ context.Context, saleID uuid.UUID) ([]*sales.Payment, error) {
	var out []*sales.Payment
	for _, p := range r.payments {
		if p.SaleID == saleID {
			out = append(out, p)
		}
	}
	sales.SortPaymentsChronologically(out)
	return out, nil
}

func (r *fakePaymentRepo) Save(_ context.Context, p *sales.Payment) error {
	r.payments[p.ID] = p
	return nil
}

func (r *fakePaymentRepo) SaveAll(ctx context.Context, payments []*sales.Payment) error {
	for _, p := range payments {
		if err := r.Save(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakePaymentRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.payments[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.payments, id)
	return nil
}

func (r *fakePaymentRepo) DeleteBySaleID(_ context.Context, saleID uuid.UUID) error {
	for id, p := range r.payments {
		if p.SaleID == saleID {
			delete(r.payments, id)
		}
	}
	return nil
}

func (r *fakePaymentRepo) NextPaymentNumber(_ context.Context) (string, error) {
	r.seq++
	return fmt.Sprintf("PG-%04d", r.seq), nil
}

type fakeLotRepo struct {
	lots map[uuid.UUID]*lot.Lot
}

func newFakeLotRepo() *fakeLotRepo {
	return &fakeLotRepo{lots: make(map[uuid.UUID]*lot.Lot)}
}

func (r *fakeLotRepo) FindByID(_ context.Context, id uuid.UUID) (*lot.Lot, error) {
	l, ok := r.lots[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return l, nil
}

func (r *fakeLotRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*lot.Lot, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeLotRepo) FindAll(_ context.Context, filter lot.LotFilter) ([]lot.Lot, error) {
	var out []lot.Lot
	for _, l := range r.lots {
		if filter.Project != nil && l.Project != *filter.Project {
			continue
		}
		if filter.Availability != nil && l.Availability != *filter.Availability {
			continue
		}
		out = append(out, *l)
	}
	return out, nil
}

func (r *fakeLotRepo) Count(ctx context.Context, filter lot.LotFilter) (int64, error) {
	out, err := r.FindAll(ctx, filter)
	return int64(len(out)), err
}

func (r *fakeLotRepo) Save(_ context.Context, l *lot.Lot) error {
	r.lots[l.ID] = l
	return nil
}

func (r *fakeLotRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.lots[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.lots, id)
	return nil
}

// fakeTxRunner runs the closure directly; the fakes have no real transactions
type fakeTxRunner struct{}

func (fakeTxRunner) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePublisher struct {
	events []shared.DomainEvent
}

func (p *fakePublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *fakePublisher) eventTypes() []string {
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}
