package sales

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inmobiliaria/backend/internal/domain/shared/valueobject"
)

func TestNewSale(t *testing.T) {
	saleDate := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("creates a credit sale in separation", func(t *testing.T) {
		sale, err := NewSale("V-00001", uuid.New(), uuid.New(), saleDate,
			SaleTypeCredit, 24, dec("50000"), dec("10000"), nil, nil)
		require.NoError(t, err)
		assert.Equal(t, SaleStatusSeparation, sale.Status)
		assert.True(t, sale.AmountPaid.IsZero())
		assert.Len(t, sale.GetDomainEvents(), 1)
	})

	t.Run("rejects cash sale with a term", func(t *testing.T) {
		_, err := NewSale("V-00001", uuid.New(), uuid.New(), saleDate,
			SaleTypeCash, 12, dec("50000"), dec("0"), nil, nil)
		assert.Error(t, err)
	})

	t.Run("rejects USD price without exchange rate", func(t *testing.T) {
		usd := dec("15000")
		_, err := NewSale("V-00001", uuid.New(), uuid.New(), saleDate,
			SaleTypeCredit, 24, dec("50000"), dec("10000"), &usd, nil)
		assert.Error(t, err)
	})
}

func TestSaleDualCurrency(t *testing.T) {
	saleDate := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	usd := dec("15000.00")
	rate := dec("3.75")
	sale, err := NewSale("V-00002", uuid.New(), uuid.New(), saleDate,
		SaleTypeCredit, 24, dec("56250"), dec("7500"), &usd, &rate)
	require.NoError(t, err)

	assert.True(t, sale.IsDualCurrency())
	assert.Equal(t, valueobject.USD, sale.ActiveCurrency())
	assert.Equal(t, "15000.00", sale.ActiveTotalValue().StringFixed(2))
	// 7500 PEN at 3.75 = 2000 USD
	assert.Equal(t, "2000.00", sale.ActiveDownPayment().StringFixed(2))
	assert.Equal(t, "13000.00", sale.FinancedPrincipal().StringFixed(2))
}

func TestSaleSignature(t *testing.T) {
	signDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	newProcessableSale := func(t *testing.T) *Sale {
		sale := newCreditSale(t, "50000", "10000", 24)
		sale.SetAmountPaid(pen("10000"))
		require.True(t, sale.RefreshStatus())
		require.Equal(t, SaleStatusProcessable, sale.Status)
		return sale
	}

	t.Run("signing requires processable status", func(t *testing.T) {
		sale := newCreditSale(t, "50000", "10000", 24)
		_, err := sale.MarkSigned(signDate)
		assert.Error(t, err)
	})

	t.Run("signing a processable sale records the date", func(t *testing.T) {
		sale := newProcessableSale(t)
		got, err := sale.MarkSigned(signDate)
		require.NoError(t, err)
		assert.Equal(t, signDate, got)
		assert.True(t, sale.ContractSigned)
	})

	t.Run("signing twice returns the original date", func(t *testing.T) {
		sale := newProcessableSale(t)
		_, err := sale.MarkSigned(signDate)
		require.NoError(t, err)

		later := signDate.AddDate(0, 0, 5)
		got, err := sale.MarkSigned(later)
		require.NoError(t, err)
		assert.Equal(t, signDate, got, "second signing must not move the date")
	})

	t.Run("revert clears the signature", func(t *testing.T) {
		sale := newProcessableSale(t)
		_, err := sale.MarkSigned(signDate)
		require.NoError(t, err)

		require.NoError(t, sale.RevertSignature())
		assert.False(t, sale.ContractSigned)
		assert.Nil(t, sale.SignatureDate)
	})

	t.Run("revert requires processable status", func(t *testing.T) {
		sale := newCreditSale(t, "50000", "10000", 24)
		assert.Error(t, sale.RevertSignature())
	})
}

func TestSaleVoid(t *testing.T) {
	t.Run("void is sticky against status refresh", func(t *testing.T) {
		sale := newCreditSale(t, "50000", "10000", 24)
		require.NoError(t, sale.Void("client withdrew"))
		assert.Equal(t, SaleStatusVoid, sale.Status)

		sale.SetAmountPaid(pen("50000"))
		assert.False(t, sale.RefreshStatus())
		assert.Equal(t, SaleStatusVoid, sale.Status)
	})

	t.Run("voiding twice is a no-op", func(t *testing.T) {
		sale := newCreditSale(t, "50000", "10000", 24)
		require.NoError(t, sale.Void("client withdrew"))
		require.NoError(t, sale.Void("again"))
		assert.Equal(t, "client withdrew", sale.VoidReason)
	})

	t.Run("void requires a reason", func(t *testing.T) {
		sale := newCreditSale(t, "50000", "10000", 24)
		assert.Error(t, sale.Void(""))
	})

	t.Run("revert void re-derives the status from payments", func(t *testing.T) {
		sale := newCreditSale(t, "50000", "10000", 24)
		sale.SetAmountPaid(pen("10000"))
		sale.RefreshStatus()
		require.NoError(t, sale.Void("mistake"))

		require.NoError(t, sale.RevertVoid())
		assert.Equal(t, SaleStatusProcessable, sale.Status)
		assert.Empty(t, sale.VoidReason)
		assert.Nil(t, sale.VoidedAt)
	})

	t.Run("revert void on a live sale fails", func(t *testing.T) {
		sale := newCreditSale(t, "50000", "10000", 24)
		assert.Error(t, sale.RevertVoid())
	})
}

func TestSaleUpdateTerms(t *testing.T) {
	t.Run("reports whether terms actually changed", func(t *testing.T) {
		sale := newCreditSale(t, "50000", "10000", 24)

		changed, err := sale.UpdateTerms(sale.LotID, sale.Type, sale.TermMonths, sale.TotalValue, sale.DownPayment)
		require.NoError(t, err)
		assert.False(t, changed)

		changed, err = sale.UpdateTerms(sale.LotID, sale.Type, 36, sale.TotalValue, sale.DownPayment)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, 36, sale.TermMonths)
	})

	t.Run("terminal sales cannot be modified", func(t *testing.T) {
		sale := newCreditSale(t, "50000", "10000", 24)
		require.NoError(t, sale.Void("cancelled"))
		_, err := sale.UpdateTerms(sale.LotID, sale.Type, 36, sale.TotalValue, sale.DownPayment)
		assert.Error(t, err)
	})
}

func TestSaleNeedsPlan(t *testing.T) {
	t.Run("credit sale with positive principal needs a plan", func(t *testing.T) {
		sale := newCreditSale(t, "50000", "10000", 24)
		assert.True(t, sale.NeedsPlan())
	})

	t.Run("cash sale needs no plan", func(t *testing.T) {
		saleDate := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		sale, err := NewSale("V-00003", uuid.New(), uuid.New(), saleDate,
			SaleTypeCash, 0, dec("30000"), dec("0"), nil, nil)
		require.NoError(t, err)
		assert.False(t, sale.NeedsPlan())
	})

	t.Run("down payment covering the full value needs no plan", func(t *testing.T) {
		sale := newCreditSale(t, "50000", "50000", 24)
		assert.False(t, sale.NeedsPlan())
	})
}
