package sales

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/domain/shared/valueobject"
)

// DefaultInstallmentCount is the term used to rebuild a plan when the sale
// carries no credit term of its own.
const DefaultInstallmentCount = 24

// RedistributionResult reports the outcome of a redistribution pass
type RedistributionResult struct {
	Warnings []shared.Warning
	// RemovedInstallmentIDs lists installments absorbed by payments
	// received so far. Pins pointing at them have been nulled.
	RemovedInstallmentIDs []uuid.UUID
}

// RedistributeBalance keeps the shape of the remaining schedule consistent
// with the aggregate amount paid. Installments fully absorbed by the paid
// total are removed, survivors are renumbered from 1 and the outstanding
// principal is spread evenly across them with the rounding remainder on the
// last. With nothing paid the plan is rebuilt to its pristine state.
//
// Survivor paid amounts are reset to zero here; callers must re-run
// AllocatePayments afterwards to repopulate them from the payment history.
func RedistributeBalance(sale *Sale, plan *InstallmentPlan, payments []*Payment, totalPaid valueobject.Money) RedistributionResult {
	result := RedistributionResult{}
	if plan == nil {
		return result
	}

	principal := sale.FinancedPrincipal()
	paid := totalPaid.Amount()

	if !paid.IsPositive() {
		count := sale.TermMonths
		if count <= 0 {
			count = DefaultInstallmentCount
		}
		if err := plan.Regenerate(principal, count, plan.FirstDueDate); err != nil {
			result.Warnings = append(result.Warnings, shared.NewWarning(
				shared.WarnInvalidSchedule,
				fmt.Sprintf("Cannot rebuild plan for sale %s: %v", sale.SaleNumber, err),
			))
		}
		return result
	}

	remaining := principal.Amount().Sub(paid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	// Aggregate coverage takes precedence over per-installment bookkeeping:
	// an installment whose cumulative programmed total is within the paid
	// amount is absorbed even if its own paid field was lower.
	survivors := make([]*Installment, 0, len(plan.Installments))
	cumulative := decimal.Zero
	for _, inst := range plan.SortedInstallments() {
		cumulative = cumulative.Add(inst.Programmed)
		if cumulative.LessThanOrEqual(paid) {
			result.RemovedInstallmentIDs = append(result.RemovedInstallmentIDs, inst.ID)
			for _, payment := range payments {
				payment.UnpinIfTarget(inst.ID)
			}
			continue
		}
		survivors = append(survivors, inst)
	}

	count := len(survivors)
	if count == 0 {
		if remaining.IsPositive() {
			result.Warnings = append(result.Warnings, shared.NewWarning(
				shared.WarnRedistributionInconsistent,
				fmt.Sprintf("Sale %s still owes %s but no installments remain", sale.SaleNumber, remaining.StringFixed(2)),
			))
		}
		plan.Installments = survivors
		plan.Count = 0
		plan.RegularAmount = decimal.Zero
		return result
	}

	regular := remaining.DivRound(decimal.NewFromInt(int64(count)), 2)
	last := remaining.Sub(regular.Mul(decimal.NewFromInt(int64(count - 1))))
	if last.IsNegative() {
		last = decimal.Zero
	}

	for i, inst := range survivors {
		inst.Number = i + 1
		if i == count-1 {
			inst.Programmed = last
		} else {
			inst.Programmed = regular
		}
		inst.Reset()
	}

	plan.Installments = survivors
	plan.Count = count
	plan.RegularAmount = regular
	plan.Principal = principal.Amount()
	plan.Currency = principal.Currency()

	return result
}
