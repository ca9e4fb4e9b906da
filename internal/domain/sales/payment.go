package sales

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/domain/shared/valueobject"
)

// PaymentMethod represents how a payment was received
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "efectivo"
	PaymentMethodTransfer PaymentMethod = "transferencia"
	PaymentMethodCard     PaymentMethod = "tarjeta"
	PaymentMethodWallet   PaymentMethod = "billetera_digital"
	PaymentMethodOther    PaymentMethod = "otro"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCard, PaymentMethodWallet, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// Payment is a money receipt applied against a sale. Edits never touch the
// schedule directly; the replay pipeline re-derives all downstream state.
// The installment pin may be assigned by the allocator when the caller
// supplied none.
type Payment struct {
	shared.BaseEntity
	PaymentNumber string          `json:"payment_number"`
	SaleID        uuid.UUID       `json:"sale_id"`
	PaymentDate   time.Time       `json:"payment_date"`
	Amount        decimal.Decimal `json:"amount"` // PEN amount; derived for dual-currency payments
	AmountUSD     *decimal.Decimal `json:"amount_usd"`
	ExchangeRate  *decimal.Decimal `json:"exchange_rate"` // PEN per USD at payment time
	Method        PaymentMethod   `json:"method"`
	Reference     string          `json:"reference"`
	Notes         string          `json:"notes"`
	// PinnedInstallmentID links the payment to the installment it settles.
	// User-supplied pins survive replays; allocator-assigned ones are
	// cleared and re-derived on every replay.
	PinnedInstallmentID *uuid.UUID `json:"pinned_installment_id"`
	PinAssignedByUser   bool       `json:"pin_assigned_by_user"`
}

// NewPayment creates a payment in PEN
func NewPayment(
	paymentNumber string,
	saleID uuid.UUID,
	paymentDate time.Time,
	amount decimal.Decimal,
	method PaymentMethod,
	reference string,
	pinnedInstallmentID *uuid.UUID,
) (*Payment, error) {
	if paymentNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number cannot be empty")
	}
	if saleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SALE", "Sale ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Payment method is not valid")
	}

	return &Payment{
		BaseEntity:          shared.NewBaseEntity(),
		PaymentNumber:       paymentNumber,
		SaleID:              saleID,
		PaymentDate:         paymentDate,
		Amount:              amount,
		Method:              method,
		Reference:           reference,
		PinnedInstallmentID: pinnedInstallmentID,
		PinAssignedByUser:   pinnedInstallmentID != nil,
	}, nil
}

// NewPaymentUSD creates a payment received in USD against a dual-currency
// sale. The PEN amount is derived from the exchange rate at payment time.
func NewPaymentUSD(
	paymentNumber string,
	saleID uuid.UUID,
	paymentDate time.Time,
	amountUSD decimal.Decimal,
	exchangeRate decimal.Decimal,
	method PaymentMethod,
	reference string,
	pinnedInstallmentID *uuid.UUID,
) (*Payment, error) {
	if !exchangeRate.IsPositive() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Exchange rate must be positive")
	}
	derived := amountUSD.Mul(exchangeRate).Round(2)
	p, err := NewPayment(paymentNumber, saleID, paymentDate, derived, method, reference, pinnedInstallmentID)
	if err != nil {
		return nil, err
	}
	p.AmountUSD = &amountUSD
	p.ExchangeRate = &exchangeRate
	return p, nil
}

// UpdateDetails replaces the mutable fields of the payment. A nil amountUSD
// with a nil exchangeRate turns the payment into a plain PEN receipt; both
// set turns it into a USD receipt with the PEN amount re-derived.
func (p *Payment) UpdateDetails(
	paymentDate time.Time,
	amount decimal.Decimal,
	amountUSD *decimal.Decimal,
	exchangeRate *decimal.Decimal,
	method PaymentMethod,
	reference string,
	notes string,
	pinnedInstallmentID *uuid.UUID,
) error {
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_METHOD", "Payment method is not valid")
	}
	if (amountUSD == nil) != (exchangeRate == nil) {
		return shared.NewDomainError("INVALID_CURRENCY", "USD amount and exchange rate must be provided together")
	}
	if amountUSD != nil {
		if !exchangeRate.IsPositive() {
			return shared.NewDomainError("INVALID_CURRENCY", "Exchange rate must be positive")
		}
		amount = amountUSD.Mul(*exchangeRate).Round(2)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	p.PaymentDate = paymentDate
	p.Amount = amount
	p.AmountUSD = amountUSD
	p.ExchangeRate = exchangeRate
	p.Method = method
	p.Reference = reference
	p.Notes = notes
	p.PinnedInstallmentID = pinnedInstallmentID
	p.PinAssignedByUser = pinnedInstallmentID != nil
	p.UpdatedAt = time.Now()
	return nil
}

// ActiveAmount returns the payment amount in the given currency. USD asks
// against a PEN-only payment return zero; the pipeline guards against mixing
// payment and sale currencies before allocation.
func (p *Payment) ActiveAmount(currency valueobject.Currency) valueobject.Money {
	if currency == valueobject.USD {
		if p.AmountUSD == nil {
			return valueobject.Zero(valueobject.USD)
		}
		return valueobject.NewMoneyUSD(*p.AmountUSD)
	}
	return valueobject.NewMoneyPEN(p.Amount)
}

// ClearAutoPin drops an allocator-assigned pin. User pins are kept.
func (p *Payment) ClearAutoPin() {
	if p.PinAssignedByUser {
		return
	}
	p.PinnedInstallmentID = nil
}

// AssignAutoPin records the first installment touched by an unpinned payment
func (p *Payment) AssignAutoPin(installmentID uuid.UUID) {
	if p.PinnedInstallmentID != nil {
		return
	}
	id := installmentID
	p.PinnedInstallmentID = &id
}

// UnpinIfTarget nulls the pin when it references the given installment.
// Run when an installment is removed by redistribution.
func (p *Payment) UnpinIfTarget(installmentID uuid.UUID) {
	if p.PinnedInstallmentID != nil && *p.PinnedInstallmentID == installmentID {
		p.PinnedInstallmentID = nil
		p.PinAssignedByUser = false
	}
}

// SortPaymentsChronologically orders payments by (payment date, payment
// number) ascending, the stable order the allocator replays them in.
func SortPaymentsChronologically(payments []*Payment) {
	sort.Slice(payments, func(a, b int) bool {
		if payments[a].PaymentDate.Equal(payments[b].PaymentDate) {
			return payments[a].PaymentNumber < payments[b].PaymentNumber
		}
		return payments[a].PaymentDate.Before(payments[b].PaymentDate)
	})
}
