package sales

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/domain/shared/valueobject"
)

func newCreditSale(t *testing.T, totalValue, downPayment string, termMonths int) *Sale {
	t.Helper()
	saleDate := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	sale, err := NewSale("V-00001", uuid.New(), uuid.New(), saleDate,
		SaleTypeCredit, termMonths, dec(totalValue), dec(downPayment), nil, nil)
	require.NoError(t, err)
	return sale
}

func attachPlan(t *testing.T, sale *Sale) *InstallmentPlan {
	t.Helper()
	firstDue := AddMonths(sale.SaleDate, 1)
	plan, err := NewInstallmentPlan(sale.ID, sale.FinancedPrincipal(), sale.TermMonths, firstDue)
	require.NoError(t, err)
	sale.Plan = plan
	return plan
}

func survivorsTotal(plan *InstallmentPlan) decimal.Decimal {
	total := decimal.Zero
	for _, inst := range plan.Installments {
		total = total.Add(inst.Programmed)
	}
	return total
}

func TestRedistributeBalance(t *testing.T) {
	t.Run("survivors sum to the outstanding principal", func(t *testing.T) {
		sale := newCreditSale(t, "34000.00", "10000.00", 24) // principal 24000
		plan := attachPlan(t, sale)

		result := RedistributeBalance(sale, plan, nil, pen("6500.00"))

		assert.Empty(t, result.Warnings)
		assert.True(t, survivorsTotal(plan).Equal(dec("17500")),
			"survivors sum to %s, want 17500", survivorsTotal(plan))
	})

	t.Run("installments covered by the aggregate paid are removed", func(t *testing.T) {
		sale := newCreditSale(t, "34000.00", "10000.00", 24) // 24 x 1000
		plan := attachPlan(t, sale)

		result := RedistributeBalance(sale, plan, nil, pen("6500.00"))

		// 6 installments of 1000 are fully absorbed by 6500 paid
		assert.Len(t, result.RemovedInstallmentIDs, 6)
		assert.Equal(t, 18, plan.Count)
		assert.Len(t, plan.Installments, 18)
	})

	t.Run("survivors are renumbered contiguously and reset to pending", func(t *testing.T) {
		sale := newCreditSale(t, "34000.00", "10000.00", 24)
		plan := attachPlan(t, sale)

		RedistributeBalance(sale, plan, nil, pen("3000.00"))

		for i, inst := range plan.Installments {
			assert.Equal(t, i+1, inst.Number)
			assert.True(t, inst.Paid.IsZero())
			assert.Equal(t, InstallmentStatusPending, inst.Status)
			assert.Nil(t, inst.EffectivePaymentDate)
		}
	})

	t.Run("surviving installments keep their due dates", func(t *testing.T) {
		sale := newCreditSale(t, "34000.00", "10000.00", 24)
		plan := attachPlan(t, sale)
		thirdDue := plan.Installments[2].DueDate

		RedistributeBalance(sale, plan, nil, pen("2000.00"))

		// Installments 1 and 2 are gone; the old third is now first
		assert.Equal(t, thirdDue, plan.Installments[0].DueDate)
	})

	t.Run("pins pointing at removed installments are nulled", func(t *testing.T) {
		sale := newCreditSale(t, "34000.00", "10000.00", 24)
		plan := attachPlan(t, sale)
		pinID := plan.Installments[0].ID
		payment := newTestPayment(t, "PG-0001", "1000.00", 5, &pinID)

		RedistributeBalance(sale, plan, []*Payment{payment}, pen("1000.00"))

		assert.Nil(t, payment.PinnedInstallmentID)
	})

	t.Run("zero paid restores the pristine schedule", func(t *testing.T) {
		sale := newCreditSale(t, "34000.00", "10000.00", 24)
		plan := attachPlan(t, sale)

		// Disturb the plan as a payment then its deletion would
		RedistributeBalance(sale, plan, nil, pen("6500.00"))
		require.Equal(t, 18, plan.Count)

		result := RedistributeBalance(sale, plan, nil, valueobject.ZeroPEN())

		assert.Empty(t, result.Warnings)
		assert.Equal(t, 24, plan.Count)
		assert.Len(t, plan.Installments, 24)
		assert.True(t, plan.RegularAmount.Equal(dec("1000")))
		assert.True(t, survivorsTotal(plan).Equal(dec("24000")))
		for _, inst := range plan.Installments {
			assert.Equal(t, InstallmentStatusPending, inst.Status)
			assert.True(t, inst.Paid.IsZero())
		}
	})

	t.Run("reset with no credit term falls back to 24 installments", func(t *testing.T) {
		sale := newCreditSale(t, "34000.00", "10000.00", 12)
		plan := attachPlan(t, sale)
		sale.TermMonths = 0

		RedistributeBalance(sale, plan, nil, valueobject.ZeroPEN())

		assert.Equal(t, DefaultInstallmentCount, plan.Count)
		assert.Len(t, plan.Installments, DefaultInstallmentCount)
	})

	t.Run("overpayment clamps remaining at zero", func(t *testing.T) {
		sale := newCreditSale(t, "34000.00", "10000.00", 24)
		plan := attachPlan(t, sale)

		result := RedistributeBalance(sale, plan, nil, pen("25000.00"))

		// Every installment absorbed, nothing left to owe
		assert.Empty(t, result.Warnings)
		assert.Equal(t, 0, plan.Count)
		assert.Empty(t, plan.Installments)
	})

	t.Run("reports inconsistency when principal remains with no installments", func(t *testing.T) {
		sale := newCreditSale(t, "34000.00", "10000.00", 2) // 2 x 12000
		plan := attachPlan(t, sale)
		// Shrink the schedule so the paid total swallows it whole while
		// principal remains outstanding
		plan.Installments = plan.Installments[:1]
		plan.Installments[0].Programmed = dec("1000.00")

		result := RedistributeBalance(sale, plan, nil, pen("1000.00"))

		require.Len(t, result.Warnings, 1)
		assert.Equal(t, shared.WarnRedistributionInconsistent, result.Warnings[0].Code)
		assert.Empty(t, plan.Installments)
		assert.Equal(t, 0, plan.Count)
	})

	t.Run("rounding remainder lands on the last survivor", func(t *testing.T) {
		sale := newCreditSale(t, "11000.00", "10000.00", 3) // principal 1000, 3 x 333.33/333.34
		plan := attachPlan(t, sale)

		RedistributeBalance(sale, plan, nil, pen("333.33"))

		// First installment absorbed; 666.67 redistributed over 2
		require.Len(t, plan.Installments, 2)
		assert.True(t, plan.Installments[0].Programmed.Equal(dec("333.34")))
		assert.True(t, plan.Installments[1].Programmed.Equal(dec("333.33")))
		assert.True(t, survivorsTotal(plan).Equal(dec("666.67")))
	})
}
