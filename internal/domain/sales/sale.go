package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/domain/shared/valueobject"
)

// SaleType represents how a sale is financed
type SaleType string

const (
	SaleTypeCash   SaleType = "contado"
	SaleTypeCredit SaleType = "credito"
)

// IsValid checks if the sale type is valid
func (t SaleType) IsValid() bool {
	return t == SaleTypeCash || t == SaleTypeCredit
}

// String returns the string representation of SaleType
func (t SaleType) String() string {
	return string(t)
}

// SaleStatus represents the lifecycle status of a sale
type SaleStatus string

const (
	SaleStatusSeparation  SaleStatus = "separacion" // Initial state, deposit stage
	SaleStatusProcessable SaleStatus = "procesable" // Down payment covered
	SaleStatusCompleted   SaleStatus = "completada" // Fully paid
	SaleStatusVoid        SaleStatus = "anulado"    // Voided by an external actor
)

// IsValid checks if the status is a valid SaleStatus
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusSeparation, SaleStatusProcessable, SaleStatusCompleted, SaleStatusVoid:
		return true
	}
	return false
}

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}

// IsTerminal returns true for sticky terminal states. The engine never
// auto-transitions out of them; only the explicit revert actions may.
func (s SaleStatus) IsTerminal() bool {
	return s == SaleStatusVoid || s == SaleStatusCompleted
}

// Sale represents a lot sale aggregate root. It owns the installment plan
// of a credit sale; payments reference the sale from outside the aggregate.
type Sale struct {
	shared.BaseAggregateRoot
	SaleNumber     string           `json:"sale_number"`
	LotID          uuid.UUID        `json:"lot_id"`
	ClientID       uuid.UUID        `json:"client_id"`
	SaleDate       time.Time        `json:"sale_date"`
	Type           SaleType         `json:"type"`
	TermMonths     int              `json:"term_months"`
	TotalValue     decimal.Decimal  `json:"total_value"`   // Contract value in PEN
	DownPayment    decimal.Decimal  `json:"down_payment"`  // Required down payment in PEN
	PriceUSD       *decimal.Decimal `json:"price_usd"`     // Face value in USD for dual-currency projects
	ExchangeRate   *decimal.Decimal `json:"exchange_rate"` // PEN per USD
	ContractSigned bool             `json:"contract_signed"`
	SignatureDate  *time.Time       `json:"signature_date"`
	Status         SaleStatus       `json:"status"`
	AmountPaid     decimal.Decimal  `json:"amount_paid"` // Cached aggregate, recomputed by the pipeline
	Notes          string           `json:"notes"`
	VoidReason     string           `json:"void_reason"`
	VoidedAt       *time.Time       `json:"voided_at"`
	Plan           *InstallmentPlan `json:"plan,omitempty"`
}

// NewSale creates a new sale in separation status
func NewSale(
	saleNumber string,
	lotID uuid.UUID,
	clientID uuid.UUID,
	saleDate time.Time,
	saleType SaleType,
	termMonths int,
	totalValue decimal.Decimal,
	downPayment decimal.Decimal,
	priceUSD *decimal.Decimal,
	exchangeRate *decimal.Decimal,
) (*Sale, error) {
	if saleNumber == "" {
		return nil, shared.NewDomainError("INVALID_SALE_NUMBER", "Sale number cannot be empty")
	}
	if lotID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOT", "Lot ID cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if !saleType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SALE_TYPE", fmt.Sprintf("Sale type %q is not valid", saleType))
	}
	if saleType == SaleTypeCash && termMonths != 0 {
		return nil, shared.NewDomainError("INVALID_TERM", "Cash sales must have a zero term")
	}
	if termMonths < 0 {
		return nil, shared.NewDomainError("INVALID_TERM", "Term months cannot be negative")
	}
	if totalValue.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total value must be positive")
	}
	if downPayment.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Down payment cannot be negative")
	}
	if (priceUSD == nil) != (exchangeRate == nil) {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "USD price and exchange rate must be provided together")
	}
	if exchangeRate != nil && !exchangeRate.IsPositive() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Exchange rate must be positive")
	}

	s := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SaleNumber:        saleNumber,
		LotID:             lotID,
		ClientID:          clientID,
		SaleDate:          saleDate,
		Type:              saleType,
		TermMonths:        termMonths,
		TotalValue:        totalValue,
		DownPayment:       downPayment,
		PriceUSD:          priceUSD,
		ExchangeRate:      exchangeRate,
		Status:            SaleStatusSeparation,
		AmountPaid:        decimal.Zero,
	}

	s.AddDomainEvent(NewSaleCreatedEvent(s))

	return s, nil
}

// IsDualCurrency returns true when the sale carries a USD face value.
// The whole ledger for such a sale operates on USD amounts.
func (s *Sale) IsDualCurrency() bool {
	return s.PriceUSD != nil && s.ExchangeRate != nil
}

// ActiveCurrency returns the currency the ledger operates in for this sale
func (s *Sale) ActiveCurrency() valueobject.Currency {
	if s.IsDualCurrency() {
		return valueobject.USD
	}
	return valueobject.PEN
}

// ActiveTotalValue returns the contract value in the active currency
func (s *Sale) ActiveTotalValue() valueobject.Money {
	if s.IsDualCurrency() {
		return valueobject.NewMoneyUSD(*s.PriceUSD)
	}
	return valueobject.NewMoneyPEN(s.TotalValue)
}

// ActiveDownPayment returns the required down payment in the active currency.
// For dual-currency sales the PEN down payment is converted at the sale's
// exchange rate, quantized to 2 places.
func (s *Sale) ActiveDownPayment() valueobject.Money {
	down := valueobject.NewMoneyPEN(s.DownPayment)
	if !s.IsDualCurrency() {
		return down
	}
	converted, err := down.Convert(valueobject.USD, *s.ExchangeRate)
	if err != nil {
		return valueobject.Zero(valueobject.USD)
	}
	return converted
}

// FinancedPrincipal returns the amount to be financed across installments:
// contract value minus down payment, in the active currency.
func (s *Sale) FinancedPrincipal() valueobject.Money {
	return s.ActiveTotalValue().MustSubtract(s.ActiveDownPayment())
}

// SetAmountPaid replaces the cached aggregate paid amount. The value is a
// materialized view of the payment history, never independently writable.
func (s *Sale) SetAmountPaid(paid valueobject.Money) {
	s.AmountPaid = paid.Amount()
	s.UpdatedAt = time.Now()
}

// RefreshStatus re-derives the sale status from the aggregate paid amount.
// Returns true when the status changed. Terminal states are never left.
func (s *Sale) RefreshStatus() bool {
	next := NextSaleStatus(s.Status, s.Type, s.ActiveTotalValue().Amount(), s.ActiveDownPayment().Amount(), s.activePaid())
	if next == s.Status {
		return false
	}
	previous := s.Status
	s.Status = next
	s.UpdatedAt = time.Now()
	s.AddDomainEvent(NewSaleStatusChangedEvent(s, previous))
	return true
}

// activePaid returns the cached paid amount interpreted in the active
// currency. The pipeline stores the active-currency total in AmountPaid.
func (s *Sale) activePaid() decimal.Decimal {
	return s.AmountPaid
}

// MarkSigned records the contract signature. Only legal while processable.
// Idempotent: signing an already-signed sale returns the existing date.
func (s *Sale) MarkSigned(date time.Time) (time.Time, error) {
	if s.ContractSigned && s.SignatureDate != nil {
		return *s.SignatureDate, nil
	}
	if s.Status != SaleStatusProcessable {
		return time.Time{}, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot sign a sale in %s status", s.Status))
	}
	s.ContractSigned = true
	s.SignatureDate = &date
	s.UpdatedAt = time.Now()
	s.AddDomainEvent(NewSaleSignedEvent(s))
	return date, nil
}

// RevertSignature clears the signature fields. Only legal while processable.
func (s *Sale) RevertSignature() error {
	if s.Status != SaleStatusProcessable {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot revert signature of a sale in %s status", s.Status))
	}
	if !s.ContractSigned {
		return nil
	}
	s.ContractSigned = false
	s.SignatureDate = nil
	s.UpdatedAt = time.Now()
	s.AddDomainEvent(NewSaleSignatureRevertedEvent(s))
	return nil
}

/// Void marks the sale as void. Void is sticky: the engine never leaves it.
func (s *Sale) Void(reason string) error {
	if s.Status == SaleStatusVoid {
		return nil
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_INPUT", "Void reason is required")
	}
	now := time.Now()
	previous := s.Status
	s.Status = SaleStatusVoid
	s.VoidReason = reason
	s.VoidedAt = &now
	s.UpdatedAt = now
	s.AddDomainEvent(NewSaleVoidedEvent(s, previous))
	return nil
}

// RevertVoid restores a voided sale. The status is re-derived from the
// payment state afterwards rather than restored from a snapshot.
func (s *Sale) RevertVoid() error {
	if s.Status != SaleStatusVoid {
		return shared.NewDomainError("INVALID_STATE", "Sale is not void")
	}
	s.Status = SaleStatusSeparation
	s.VoidReason = ""
	s.VoidedAt = nil
	s.RefreshStatus()
	s.UpdatedAt = time.Now()
	s.AddDomainEvent(NewSaleVoidRevertedEvent(s))
	return nil
}

// UpdateTerms changes the credit terms of the sale. The caller regenerates
// the installment plan afterwards when this returns true.
func (s *Sale) UpdateTerms(lotID uuid.UUID, saleType SaleType, termMonths int, totalValue, downPayment decimal.Decimal) (bool, error) {
	if s.Status.IsTerminal() {
		return false, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot modify a sale in %s status", s.Status))
	}
	if !saleType.IsValid() {
		return false, shared.NewDomainError("INVALID_SALE_TYPE", fmt.Sprintf("Sale type %q is not valid", saleType))
	}
	if totalValue.LessThanOrEqual(decimal.Zero) {
		return false, shared.NewDomainError("INVALID_AMOUNT", "Total value must be positive")
	}
	if downPayment.IsNegative() {
		return false, shared.NewDomainError("INVALID_AMOUNT", "Down payment cannot be negative")
	}

	changed := s.LotID != lotID || s.Type != saleType || s.TermMonths != termMonths ||
		!s.TotalValue.Equal(totalValue) || !s.DownPayment.Equal(downPayment)
	if !changed {
		return false, nil
	}

	s.LotID = lotID
	s.Type = saleType
	s.TermMonths = termMonths
	s.TotalValue = totalValue
	s.DownPayment = downPayment
	s.UpdatedAt = time.Now()
	s.AddDomainEvent(NewSaleUpdatedEvent(s))
	return true, nil
}

// NeedsPlan returns true when the sale should carry an installment plan
func (s *Sale) NeedsPlan() bool {
	return s.Type == SaleTypeCredit && s.TermMonths > 0 && s.FinancedPrincipal().IsPositive()
}

// IsVoid returns true if the sale is void
func (s *Sale) IsVoid() bool {
	return s.Status == SaleStatusVoid
}

// GetAmountPaidMoney returns the cached paid amount in the active currency
func (s *Sale) GetAmountPaidMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(s.AmountPaid, s.ActiveCurrency())
	return m
}
