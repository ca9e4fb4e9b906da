package sales

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/domain/shared/valueobject"
)

// ScheduledInstallment is one row of a generated amortization schedule
type ScheduledInstallment struct {
	Number     int
	DueDate    time.Time
	Programmed decimal.Decimal
}

// GenerateSchedule produces an ordered schedule of count installments over
// the given principal. All installments but the last receive the regular
// amount round(principal/count, 2, half-up); the last absorbs the rounding
// drift, floored at zero, so the schedule sums exactly to the principal.
// Due dates advance by calendar months from the first due date.
func GenerateSchedule(principal valueobject.Money, count int, firstDue time.Time) ([]ScheduledInstallment, error) {
	if !principal.IsPositive() {
		return nil, shared.NewDomainError(shared.WarnInvalidSchedule,
			fmt.Sprintf("Cannot generate a schedule for a non-positive principal %s", principal))
	}
	if count <= 0 {
		return nil, shared.NewDomainError(shared.WarnInvalidSchedule,
			fmt.Sprintf("Cannot generate a schedule with %d installments", count))
	}

	p := principal.Amount()
	regular := p.DivRound(decimal.NewFromInt(int64(count)), 2)
	last := p.Sub(regular.Mul(decimal.NewFromInt(int64(count - 1))))
	if last.IsNegative() {
		last = decimal.Zero
	}

	schedule := make([]ScheduledInstallment, count)
	for i := 0; i < count; i++ {
		amount := regular
		if i == count-1 {
			amount = last
		}
		schedule[i] = ScheduledInstallment{
			Number:     i + 1,
			DueDate:    AddMonths(firstDue, i),
			Programmed: amount,
		}
	}
	return schedule, nil
}

// AddMonths advances a date by whole calendar months, clamping to the last
// day of the target month instead of overflowing (Jan 31 + 1 month is
// Feb 28/29, not Mar 2/3 as with time.AddDate).
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
	target := first.AddDate(0, months, 0)
	lastDay := target.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(target.Year(), target.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
