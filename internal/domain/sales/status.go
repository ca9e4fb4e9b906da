package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstallmentStatusFor derives the status of an installment from its
// amounts, due date and the current day. Pure function; the current status
// is only consulted to keep cancelled_with_excess out of the overdue
// promotion.
func InstallmentStatusFor(programmed, paid decimal.Decimal, dueDate, today time.Time, current InstallmentStatus) InstallmentStatus {
	var status InstallmentStatus
	switch {
	case programmed.LessThanOrEqual(decimal.Zero) || paid.GreaterThanOrEqual(programmed):
		status = InstallmentStatusPaid
	case paid.IsPositive():
		status = InstallmentStatusPartiallyPaid
	default:
		status = InstallmentStatusPending
	}

	if current == InstallmentStatusCancelledWithExtra {
		status = current
	}

	if status != InstallmentStatusPaid && status != InstallmentStatusCancelledWithExtra &&
		truncateToDay(dueDate).Before(truncateToDay(today)) {
		switch status {
		case InstallmentStatusPending:
			status = InstallmentStatusOverdueUnpaid
		case InstallmentStatusPartiallyPaid:
			status = InstallmentStatusOverdue
		}
	}

	return status
}

// NextSaleStatus derives the sale status from the aggregate paid amount.
// Terminal states are sticky; the engine never transitions out of them.
func NextSaleStatus(current SaleStatus, saleType SaleType, totalValue, downPayment, paid decimal.Decimal) SaleStatus {
	if current.IsTerminal() {
		return current
	}
	if totalValue.IsPositive() && paid.GreaterThanOrEqual(totalValue) {
		return SaleStatusCompleted
	}
	if saleType == SaleTypeCredit {
		if downPayment.IsPositive() && paid.GreaterThanOrEqual(downPayment) {
			return SaleStatusProcessable
		}
		if paid.IsPositive() {
			return SaleStatusSeparation
		}
		return current
	}
	if paid.IsPositive() {
		return SaleStatusProcessable
	}
	return current
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
