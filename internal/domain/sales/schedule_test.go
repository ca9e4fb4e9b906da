package sales

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/domain/shared/valueobject"
)

func pen(s string) valueobject.Money {
	m, err := valueobject.NewMoneyPENFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestGenerateSchedule(t *testing.T) {
	firstDue := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("sums exactly to the principal", func(t *testing.T) {
		cases := []struct {
			name      string
			principal string
			count     int
		}{
			{"even split", "24000.00", 24},
			{"rounding drift", "1000.00", 3},
			{"single installment", "500.00", 1},
			{"tiny principal", "0.05", 4},
			{"typical credit", "40000.00", 24},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				schedule, err := GenerateSchedule(pen(tc.principal), tc.count, firstDue)
				require.NoError(t, err)
				require.Len(t, schedule, tc.count)

				total := decimal.Zero
				for _, entry := range schedule {
					total = total.Add(entry.Programmed)
					assert.False(t, entry.Programmed.IsNegative())
				}
				assert.True(t, total.Equal(dec(tc.principal)),
					"schedule sums to %s, want %s", total, tc.principal)
			})
		}
	})

	t.Run("regular amount is half-up rounded", func(t *testing.T) {
		schedule, err := GenerateSchedule(pen("1000.00"), 3, firstDue)
		require.NoError(t, err)
		assert.True(t, schedule[0].Programmed.Equal(dec("333.33")))
		assert.True(t, schedule[1].Programmed.Equal(dec("333.33")))
		assert.True(t, schedule[2].Programmed.Equal(dec("333.34")))
	})

	t.Run("last installment absorbs negative drift floored at zero", func(t *testing.T) {
		// 0.10 over 12: regular 0.01, last = 0.10 - 0.11 would be negative
		schedule, err := GenerateSchedule(pen("0.10"), 12, firstDue)
		require.NoError(t, err)
		last := schedule[len(schedule)-1]
		assert.False(t, last.Programmed.IsNegative())
	})

	t.Run("due dates advance by calendar months", func(t *testing.T) {
		schedule, err := GenerateSchedule(pen("1200.00"), 4, firstDue)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), schedule[0].DueDate)
		assert.Equal(t, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC), schedule[1].DueDate)
		assert.Equal(t, time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC), schedule[2].DueDate)
		assert.Equal(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), schedule[3].DueDate)
	})

	t.Run("month end dates clamp instead of overflowing", func(t *testing.T) {
		jan31 := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
		schedule, err := GenerateSchedule(pen("300.00"), 3, jan31)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), schedule[0].DueDate)
		assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), schedule[1].DueDate)
		assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), schedule[2].DueDate)
	})

	t.Run("rejects non-positive principal", func(t *testing.T) {
		_, err := GenerateSchedule(valueobject.ZeroPEN(), 12, firstDue)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.WarnInvalidSchedule, domainErr.Code)
	})

	t.Run("rejects non-positive count", func(t *testing.T) {
		_, err := GenerateSchedule(pen("1000.00"), 0, firstDue)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.WarnInvalidSchedule, domainErr.Code)
	})
}

func TestAddMonths(t *testing.T) {
	cases := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{
			"plain month",
			time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), 1,
			time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			"jan 31 clamps to feb 28",
			time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), 1,
			time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			"leap year feb 29",
			time.Date(2028, 1, 31, 0, 0, 0, 0, time.UTC), 1,
			time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			"year boundary",
			time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC), 3,
			time.Date(2027, 2, 28, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AddMonths(tc.start, tc.months))
		})
	}
}
