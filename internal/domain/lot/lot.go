package lot

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/inmobiliaria/backend/internal/domain/shared"
)

// Availability represents the derived availability of a lot. It is never
// written directly by sale logic; only the coordinator may change it.
type Availability string

const (
	AvailabilityAvailable Availability = "Disponible"
	AvailabilityReserved  Availability = "Reservado"
	AvailabilitySold      Availability = "Vendido"
)

// IsValid checks if the availability is valid
func (a Availability) IsValid() bool {
	return a == AvailabilityAvailable || a == AvailabilityReserved || a == AvailabilitySold
}

// String returns the string representation of Availability
func (a Availability) String() string {
	return string(a)
}

// Lot represents a physical property unit. It outlives any single sale.
type Lot struct {
	shared.BaseAggregateRoot
	LotNumber    string          `json:"lot_number"`
	Project      string          `json:"project"`
	Stage        string          `json:"stage"`
	Block        string          `json:"block"`
	AreaM2       decimal.Decimal `json:"area_m2"`
	ListPrice    decimal.Decimal `json:"list_price"` // Cash price in PEN
	Price12      decimal.Decimal `json:"price_12"`   // Credit price, 12-month term
	Price24      decimal.Decimal `json:"price_24"`
	Price36      decimal.Decimal `json:"price_36"`
	PriceUSD     *decimal.Decimal `json:"price_usd"` // Set for USD-denominated projects
	Availability Availability    `json:"availability"`
}

// NewLot creates a new available lot
func NewLot(lotNumber, project, stage, block string, areaM2, listPrice decimal.Decimal) (*Lot, error) {
	if lotNumber == "" {
		return nil, shared.NewDomainError("INVALID_LOT_NUMBER", "Lot number cannot be empty")
	}
	if project == "" {
		return nil, shared.NewDomainError("INVALID_PROJECT", "Project name cannot be empty")
	}
	if listPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "List price cannot be negative")
	}

	return &Lot{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LotNumber:         lotNumber,
		Project:           project,
		Stage:             stage,
		Block:             block,
		AreaM2:            areaM2,
		ListPrice:         listPrice,
		Availability:      AvailabilityAvailable,
	}, nil
}

// CreditPrice returns the contract price for the given credit term, falling
// back to the list price when no term-specific price is configured.
func (l *Lot) CreditPrice(termMonths int) decimal.Decimal {
	var price decimal.Decimal
	switch termMonths {
	case 12:
		price = l.Price12
	case 24:
		price = l.Price24
	case 36:
		price = l.Price36
	}
	if price.IsPositive() {
		return price
	}
	return l.ListPrice
}

// ApplyAvailability records a coordinator decision. Returns true when the
// availability actually changed.
func (l *Lot) ApplyAvailability(next Availability) (bool, error) {
	if !next.IsValid() {
		return false, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Availability %q is not valid", next))
	}
	if l.Availability == next {
		return false, nil
	}
	previous := l.Availability
	l.Availability = next
	l.UpdatedAt = time.Now()
	l.AddDomainEvent(NewLotStatusChangedEvent(l, previous))
	return true, nil
}

// UpdateDetails updates the descriptive fields of the lot. Availability is
// deliberately not part of this; it only moves through ApplyAvailability.
func (l *Lot) UpdateDetails(project, stage, block string, areaM2, listPrice, price12, price24, price36 decimal.Decimal, priceUSD *decimal.Decimal) error {
	if project == "" {
		return shared.NewDomainError("INVALID_PROJECT", "Project name cannot be empty")
	}
	if listPrice.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "List price cannot be negative")
	}
	l.Project = project
	l.Stage = stage
	l.Block = block
	l.AreaM2 = areaM2
	l.ListPrice = listPrice
	l.Price12 = price12
	l.Price24 = price24
	l.Price36 = price36
	l.PriceUSD = priceUSD
	l.UpdatedAt = time.Now()
	return nil
}
