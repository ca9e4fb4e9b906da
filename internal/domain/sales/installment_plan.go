package sales

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/domain/shared/valueobject"
)

// InstallmentStatus represents the payment status of a single installment
type InstallmentStatus string

const (
	InstallmentStatusPending            InstallmentStatus = "pendiente"
	InstallmentStatusPartiallyPaid      InstallmentStatus = "parcialmente_pagada"
	InstallmentStatusPaid               InstallmentStatus = "pagada"
	InstallmentStatusOverdue            InstallmentStatus = "atrasada"            // Partially paid past due date
	InstallmentStatusOverdueUnpaid      InstallmentStatus = "vencida_no_pagada"   // Untouched past due date
	InstallmentStatusCancelledWithExtra InstallmentStatus = "cancelada_con_excedente" // Covered with an unapplied excess
)

// IsValid checks if the status is a valid InstallmentStatus
func (s InstallmentStatus) IsValid() bool {
	switch s {
	case InstallmentStatusPending, InstallmentStatusPartiallyPaid, InstallmentStatusPaid,
		InstallmentStatusOverdue, InstallmentStatusOverdueUnpaid, InstallmentStatusCancelledWithExtra:
		return true
	}
	return false
}

// String returns the string representation of InstallmentStatus
func (s InstallmentStatus) String() string {
	return string(s)
}

// Installment is one scheduled partial payment within a plan. Amounts are in
// the plan's currency.
type Installment struct {
	shared.BaseEntity
	PlanID               uuid.UUID         `json:"plan_id"`
	Number               int               `json:"number"` // 1..N, contiguous within the plan
	DueDate              time.Time         `json:"due_date"`
	Programmed           decimal.Decimal   `json:"programmed"`
	Paid                 decimal.Decimal   `json:"paid"`
	Status               InstallmentStatus `json:"status"`
	EffectivePaymentDate *time.Time        `json:"effective_payment_date"`
}

// Outstanding returns programmed minus paid
func (i *Installment) Outstanding() decimal.Decimal {
	return i.Programmed.Sub(i.Paid)
}

// IsSettled returns true when no outstanding balance remains
func (i *Installment) IsSettled() bool {
	return i.Outstanding().LessThanOrEqual(decimal.Zero)
}

// Reset clears the paid amount, status and effective payment date. Run by
// the allocator before replaying the payment history.
func (i *Installment) Reset() {
	i.Paid = decimal.Zero
	i.Status = InstallmentStatusPending
	i.EffectivePaymentDate = nil
}

// Apply adds an amount to the installment's paid total and records the
// effective payment date when the installment becomes fully covered.
func (i *Installment) Apply(amount decimal.Decimal, paymentDate time.Time) {
	wasSettled := i.IsSettled()
	i.Paid = i.Paid.Add(amount)
	if !wasSettled && i.IsSettled() {
		d := paymentDate
		i.EffectivePaymentDate = &d
	}
}

// RefreshStatus re-derives the installment status as of the given day
func (i *Installment) RefreshStatus(today time.Time) {
	i.Status = InstallmentStatusFor(i.Programmed, i.Paid, i.DueDate, today, i.Status)
}

// InstallmentPlan is the amortization schedule attached to a credit sale.
// One-to-one with the sale; regenerated whenever credit terms change.
type InstallmentPlan struct {
	shared.BaseEntity
	SaleID        uuid.UUID            `json:"sale_id"`
	Currency      valueobject.Currency `json:"currency"`
	Principal     decimal.Decimal      `json:"principal"`      // Financed amount in the plan currency
	Count         int                  `json:"count"`          // Current installment count
	RegularAmount decimal.Decimal      `json:"regular_amount"` // Recomputed over the plan's life
	FirstDueDate  time.Time            `json:"first_due_date"`
	Installments  []*Installment       `json:"installments"`
}

// NewInstallmentPlan creates a plan and generates its schedule.
// Returns ErrInvalidSchedule when the principal or term is non-positive.
func NewInstallmentPlan(saleID uuid.UUID, principal valueobject.Money, count int, firstDue time.Time) (*InstallmentPlan, error) {
	p := &InstallmentPlan{
		BaseEntity:   shared.NewBaseEntity(),
		SaleID:       saleID,
		Currency:     principal.Currency(),
		Principal:    principal.Amount(),
		Count:        count,
		FirstDueDate: firstDue,
	}
	if err := p.Regenerate(principal, count, firstDue); err != nil {
		return nil, err
	}
	return p, nil
}

// Regenerate replaces the full schedule with a fresh one
func (p *InstallmentPlan) Regenerate(principal valueobject.Money, count int, firstDue time.Time) error {
	schedule, err := GenerateSchedule(principal, count, firstDue)
	if err != nil {
		return err
	}
	installments := make([]*Installment, 0, len(schedule))
	for _, entry := range schedule {
		installments = append(installments, &Installment{
			BaseEntity: shared.NewBaseEntity(),
			PlanID:     p.ID,
			Number:     entry.Number,
			DueDate:    entry.DueDate,
			Programmed: entry.Programmed,
			Paid:       decimal.Zero,
			Status:     InstallmentStatusPending,
		})
	}
	p.Currency = principal.Currency()
	p.Principal = principal.Amount()
	p.Count = count
	p.RegularAmount = schedule[0].Programmed
	p.FirstDueDate = firstDue
	p.Installments = installments
	return nil
}

// SortedInstallments returns the installments ordered by number ascending.
// The slice is the plan's own; callers must not reorder it destructively.
func (p *InstallmentPlan) SortedInstallments() []*Installment {
	sortInstallments(p.Installments)
	return p.Installments
}

// FindInstallment returns the installment with the given ID, or nil
func (p *InstallmentPlan) FindInstallment(id uuid.UUID) *Installment {
	for _, inst := range p.Installments {
		if inst.ID == id {
			return inst
		}
	}
	return nil
}

// TotalProgrammed sums the programmed amounts of all installments
func (p *InstallmentPlan) TotalProgrammed() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range p.Installments {
		total = total.Add(inst.Programmed)
	}
	return total
}

func sortInstallments(installments []*Installment) {
	sort.Slice(installments, func(a, b int) bool {
		return installments[a].Number < installments[b].Number
	})
}
