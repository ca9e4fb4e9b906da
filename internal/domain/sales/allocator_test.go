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

func newTestPlan(t *testing.T, principal string, count int) *InstallmentPlan {
	t.Helper()
	firstDue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	plan, err := NewInstallmentPlan(uuid.New(), pen(principal), count, firstDue)
	require.NoError(t, err)
	return plan
}

func newTestPayment(t *testing.T, number string, amount string, day int, pin *uuid.UUID) *Payment {
	t.Helper()
	date := time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC)
	p, err := NewPayment(number, uuid.New(), date, dec(amount), PaymentMethodTransfer, "", pin)
	require.NoError(t, err)
	return p
}

func TestAllocatePayments(t *testing.T) {
	today := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("unpinned payment fills oldest installments first", func(t *testing.T) {
		plan := newTestPlan(t, "4000.00", 4) // 4 x 1000
		payments := []*Payment{newTestPayment(t, "PG-0001", "1500.00", 5, nil)}

		result := AllocatePayments(plan, payments, valueobject.PEN, today)

		assert.Empty(t, result.Warnings)
		assert.True(t, plan.Installments[0].Paid.Equal(dec("1000")))
		assert.Equal(t, InstallmentStatusPaid, plan.Installments[0].Status)
		assert.True(t, plan.Installments[1].Paid.Equal(dec("500")))
		assert.Equal(t, InstallmentStatusPartiallyPaid, plan.Installments[1].Status)
		assert.True(t, plan.Installments[2].Paid.IsZero())
	})

	t.Run("first touched installment becomes the recorded pin", func(t *testing.T) {
		plan := newTestPlan(t, "4000.00", 4)
		payment := newTestPayment(t, "PG-0001", "1500.00", 5, nil)

		AllocatePayments(plan, []*Payment{payment}, valueobject.PEN, today)

		require.NotNil(t, payment.PinnedInstallmentID)
		assert.Equal(t, plan.Installments[0].ID, *payment.PinnedInstallmentID)
		assert.False(t, payment.PinAssignedByUser)
	})

	t.Run("replay is idempotent", func(t *testing.T) {
		plan := newTestPlan(t, "4000.00", 4)
		payments := []*Payment{
			newTestPayment(t, "PG-0001", "1200.00", 5, nil),
			newTestPayment(t, "PG-0002", "300.00", 8, nil),
		}

		AllocatePayments(plan, payments, valueobject.PEN, today)
		firstPaid := make([]decimal.Decimal, len(plan.Installments))
		firstStatus := make([]InstallmentStatus, len(plan.Installments))
		for i, inst := range plan.Installments {
			firstPaid[i] = inst.Paid
			firstStatus[i] = inst.Status
		}

		AllocatePayments(plan, payments, valueobject.PEN, today)
		for i, inst := range plan.Installments {
			assert.True(t, inst.Paid.Equal(firstPaid[i]), "installment %d paid drifted", i+1)
			assert.Equal(t, firstStatus[i], inst.Status, "installment %d status drifted", i+1)
		}
	})

	t.Run("payments replay in chronological order regardless of input order", func(t *testing.T) {
		plan := newTestPlan(t, "2000.00", 2)
		late := newTestPayment(t, "PG-0002", "1000.00", 20, nil)
		early := newTestPayment(t, "PG-0001", "1000.00", 10, nil)

		AllocatePayments(plan, []*Payment{late, early}, valueobject.PEN, today)

		// The earlier payment lands on installment 1
		require.NotNil(t, early.PinnedInstallmentID)
		assert.Equal(t, plan.Installments[0].ID, *early.PinnedInstallmentID)
		require.NotNil(t, late.PinnedInstallmentID)
		assert.Equal(t, plan.Installments[1].ID, *late.PinnedInstallmentID)
	})

	t.Run("pinned payment stays on its installment and reports overflow", func(t *testing.T) {
		plan := newTestPlan(t, "4000.00", 4) // installment 3 outstanding 1000
		pinID := plan.Installments[2].ID
		payment := newTestPayment(t, "PG-0001", "1500.00", 5, &pinID)

		result := AllocatePayments(plan, []*Payment{payment}, valueobject.PEN, today)

		assert.True(t, plan.Installments[2].Paid.Equal(dec("1000")))
		assert.Equal(t, InstallmentStatusCancelledWithExtra, plan.Installments[2].Status)
		assert.True(t, plan.Installments[3].Paid.IsZero(), "excess must not spill to installment 4")
		assert.True(t, result.Unapplied.Equal(dec("500")))
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, shared.WarnAllocationOverflow, result.Warnings[0].Code)
	})

	t.Run("payment beyond all balances reports unapplied remainder", func(t *testing.T) {
		plan := newTestPlan(t, "1000.00", 1)
		payments := []*Payment{newTestPayment(t, "PG-0001", "1800.00", 5, nil)}

		result := AllocatePayments(plan, payments, valueobject.PEN, today)

		assert.True(t, plan.Installments[0].Paid.Equal(dec("1000")))
		assert.True(t, result.Unapplied.Equal(dec("800")))
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, shared.WarnAllocationOverflow, result.Warnings[0].Code)
	})

	t.Run("outstanding never goes negative", func(t *testing.T) {
		plan := newTestPlan(t, "3000.00", 3)
		pinID := plan.Installments[0].ID
		payments := []*Payment{
			newTestPayment(t, "PG-0001", "2500.00", 5, &pinID),
			newTestPayment(t, "PG-0002", "900.00", 6, nil),
		}

		AllocatePayments(plan, payments, valueobject.PEN, today)

		for _, inst := range plan.Installments {
			assert.False(t, inst.Outstanding().IsNegative(),
				"installment %d outstanding is negative", inst.Number)
		}
	})

	t.Run("effective payment date is set when fully covered", func(t *testing.T) {
		plan := newTestPlan(t, "2000.00", 2)
		payments := []*Payment{newTestPayment(t, "PG-0001", "1000.00", 12, nil)}

		AllocatePayments(plan, payments, valueobject.PEN, today)

		require.NotNil(t, plan.Installments[0].EffectivePaymentDate)
		assert.Equal(t, 12, plan.Installments[0].EffectivePaymentDate.Day())
		assert.Nil(t, plan.Installments[1].EffectivePaymentDate)
	})

	t.Run("dangling pin falls back to sequential allocation", func(t *testing.T) {
		plan := newTestPlan(t, "2000.00", 2)
		ghost := uuid.New()
		payment := newTestPayment(t, "PG-0001", "500.00", 5, &ghost)

		AllocatePayments(plan, []*Payment{payment}, valueobject.PEN, today)

		assert.True(t, plan.Installments[0].Paid.Equal(dec("500")))
		require.NotNil(t, payment.PinnedInstallmentID)
		assert.Equal(t, plan.Installments[0].ID, *payment.PinnedInstallmentID)
	})

	t.Run("dual currency sales allocate USD amounts", func(t *testing.T) {
		firstDue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		plan, err := NewInstallmentPlan(uuid.New(), valueobject.NewMoneyUSD(dec("1200.00")), 2, firstDue)
		require.NoError(t, err)

		payment, err := NewPaymentUSD("PG-0001", uuid.New(), firstDue, dec("600.00"), dec("3.75"), PaymentMethodTransfer, "", nil)
		require.NoError(t, err)

		AllocatePayments(plan, []*Payment{payment}, valueobject.USD, today)

		assert.True(t, plan.Installments[0].Paid.Equal(dec("600")))
		assert.Equal(t, InstallmentStatusPaid, plan.Installments[0].Status)
	})
}
