package sales

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/domain/shared/valueobject"
)

// AllocationResult reports the outcome of a replay of the payment history
type AllocationResult struct {
	// Warnings carries non-fatal findings (pinned overflows, unapplied
	// remainders). The enclosing transaction commits regardless.
	Warnings []shared.Warning
	// Unapplied is the total amount that could not be applied to any
	// installment, in the plan currency.
	Unapplied decimal.Decimal
}

// AllocatePayments makes installment paid amounts consistent with the
// complete payment history of a sale. It resets every installment, then
// replays payments in (payment date, payment number) order. Idempotent:
// re-running with an unchanged history yields identical state.
//
// Pinned payments apply only to their pinned installment; any excess is
// reported, never spilled to a neighbor. Unpinned payments fill
// installments oldest-first, and the first installment touched becomes the
// payment's recorded pin so later replays stay stable.
func AllocatePayments(plan *InstallmentPlan, payments []*Payment, currency valueobject.Currency, today time.Time) AllocationResult {
	result := AllocationResult{Unapplied: decimal.Zero}
	if plan == nil {
		return result
	}

	installments := plan.SortedInstallments()
	for _, inst := range installments {
		inst.Reset()
	}
	for _, payment := range payments {
		payment.ClearAutoPin()
	}

	SortPaymentsChronologically(payments)

	for _, payment := range payments {
		remaining := payment.ActiveAmount(currency).Amount()
		if !remaining.IsPositive() {
			continue
		}

		if payment.PinnedInstallmentID != nil {
			pinned := plan.FindInstallment(*payment.PinnedInstallmentID)
			if pinned == nil {
				// Pin points at a removed installment; treat as unpinned
				payment.PinnedInstallmentID = nil
				payment.PinAssignedByUser = false
			} else {
				outstanding := pinned.Outstanding()
				applied := decimal.Min(remaining, outstanding)
				if applied.IsPositive() {
					pinned.Apply(applied, payment.PaymentDate)
				}
				excess := remaining.Sub(applied)
				if excess.IsPositive() {
					pinned.Status = InstallmentStatusCancelledWithExtra
					result.Unapplied = result.Unapplied.Add(excess)
					result.Warnings = append(result.Warnings, shared.NewWarning(
						shared.WarnAllocationOverflow,
						fmt.Sprintf("Payment %s exceeds installment %d balance by %s; excess left unapplied",
							payment.PaymentNumber, pinned.Number, excess.StringFixed(2)),
					))
				}
				continue
			}
		}

		for _, inst := range installments {
			if !remaining.IsPositive() {
				break
			}
			outstanding := inst.Outstanding()
			if !outstanding.IsPositive() {
				continue
			}
			applied := decimal.Min(remaining, outstanding)
			inst.Apply(applied, payment.PaymentDate)
			payment.AssignAutoPin(inst.ID)
			remaining = remaining.Sub(applied)
		}

		if remaining.IsPositive() {
			result.Unapplied = result.Unapplied.Add(remaining)
			result.Warnings = append(result.Warnings, shared.NewWarning(
				shared.WarnAllocationOverflow,
				fmt.Sprintf("Payment %s leaves %s unapplied; no installment has remaining balance",
					payment.PaymentNumber, remaining.StringFixed(2)),
			))
		}
	}

	for _, inst := range installments {
		inst.RefreshStatus(today)
	}

	return result
}
