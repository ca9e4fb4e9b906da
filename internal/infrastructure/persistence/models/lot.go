package models

import (
	"github.com/shopspring/decimal"

	"github.com/inmobiliaria/backend/internal/domain/lot"
)

// LotModel is the database model for lots
type LotModel struct {
	AggregateModel
	LotNumber    string           `gorm:"size:50;not null;uniqueIndex"`
	Project      string           `gorm:"size:100;not null;index"`
	Stage        string           `gorm:"size:50"`
	Block        string           `gorm:"size:50"`
	AreaM2       decimal.Decimal  `gorm:"type:numeric(10,2);not null"`
	ListPrice    decimal.Decimal  `gorm:"type:numeric(14,2);not null"`
	Price12      decimal.Decimal  `gorm:"type:numeric(14,2);not null"`
	Price24      decimal.Decimal  `gorm:"type:numeric(14,2);not null"`
	Price36      decimal.Decimal  `gorm:"type:numeric(14,2);not null"`
	PriceUSD     *decimal.Decimal `gorm:"type:numeric(14,2)"`
	Availability string           `gorm:"size:20;not null;index"`
}

// TableName specifies the table name for GORM
func (LotModel) TableName() string {
	return "lots"
}

// LotModelFromDomain converts a domain lot to a database model
func LotModelFromDomain(l *lot.Lot) *LotModel {
	m := &LotModel{
		LotNumber:    l.LotNumber,
		Project:      l.Project,
		Stage:        l.Stage,
		Block:        l.Block,
		AreaM2:       l.AreaM2,
		ListPrice:    l.ListPrice,
		Price12:      l.Price12,
		Price24:      l.Price24,
		Price36:      l.Price36,
		PriceUSD:     l.PriceUSD,
		Availability: l.Availability.String(),
	}
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	return m
}

// ToDomain converts the database model to a domain lot
func (m *LotModel) ToDomain() *lot.Lot {
	return &lot.Lot{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		LotNumber:         m.LotNumber,
		Project:           m.Project,
		Stage:             m.Stage,
		Block:             m.Block,
		AreaM2:            m.AreaM2,
		ListPrice:         m.ListPrice,
		Price12:           m.Price12,
		Price24:           m.Price24,
		Price36:           m.Price36,
		PriceUSD:          m.PriceUSD,
		Availability:      lot.Availability(m.Availability),
	}
}
