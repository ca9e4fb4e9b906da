package sales

import (
	"time"

	"github.com/google/uuid"

	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/domain/shared/valueobject"
)

// RecalculationResult is the combined outcome of one consistency pass
type RecalculationResult struct {
	TotalPaid             valueobject.Money
	Warnings              []shared.Warning
	SaleStatusChanged     bool
	RemovedInstallmentIDs []uuid.UUID
}

// Recalculate runs the full consistency pass for a sale after any payment
// or term change: recompute the aggregate paid amount, replay the payment
// history against the plan, reshape the remaining schedule, and re-derive
// the sale status. Runs inside the caller's transaction; every warning is
// non-fatal and the pass never rejects the triggering write.
//
// Allocator and redistributor always run as a pair, in that order. The
// redistributor leaves survivors pending with zero paid; the next pass
// replays the full history against the reshaped schedule.
func Recalculate(sale *Sale, payments []*Payment, today time.Time) RecalculationResult {
	currency := sale.ActiveCurrency()
	total := valueobject.Zero(currency)
	for _, payment := range payments {
		total = total.MustAdd(payment.ActiveAmount(currency))
	}
	sale.SetAmountPaid(total)

	result := RecalculationResult{TotalPaid: total}

	if sale.Plan != nil {
		alloc := AllocatePayments(sale.Plan, payments, currency, today)
		result.Warnings = append(result.Warnings, alloc.Warnings...)

		redist := RedistributeBalance(sale, sale.Plan, payments, total)
		result.Warnings = append(result.Warnings, redist.Warnings...)
		result.RemovedInstallmentIDs = redist.RemovedInstallmentIDs
	}

	result.SaleStatusChanged = sale.RefreshStatus()
	return result
}
