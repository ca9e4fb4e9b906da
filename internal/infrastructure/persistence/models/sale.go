package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inmobiliaria/backend/internal/domain/sales"
	"github.com/inmobiliaria/backend/internal/domain/shared/valueobject"
)

// SaleModel is the database model for sales
type SaleModel struct {
	AggregateModel
	SaleNumber     string           `gorm:"size:20;not null;uniqueIndex"`
	LotID          uuid.UUID        `gorm:"type:uuid;not null;index"`
	ClientID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	SaleDate       time.Time        `gorm:"not null"`
	Type           string           `gorm:"size:20;not null"`
	TermMonths     int              `gorm:"not null"`
	TotalValue     decimal.Decimal  `gorm:"type:numeric(14,2);not null"`
	DownPayment    decimal.Decimal  `gorm:"type:numeric(14,2);not null"`
	PriceUSD       *decimal.Decimal `gorm:"type:numeric(14,2)"`
	ExchangeRate   *decimal.Decimal `gorm:"type:numeric(10,4)"`
	ContractSigned bool             `gorm:"not null;default:false"`
	SignatureDate  *time.Time
	Status         string          `gorm:"size:30;not null;index"`
	AmountPaid     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Notes          string          `gorm:"type:text"`
	VoidReason     string          `gorm:"type:text"`
	VoidedAt       *time.Time

	Plan *InstallmentPlanModel `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// InstallmentPlanModel is the database model for installment plans
type InstallmentPlanModel struct {
	BaseModel
	SaleID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Currency      string          `gorm:"size:3;not null"`
	Principal     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Count         int             `gorm:"not null"`
	RegularAmount decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	FirstDueDate  time.Time       `gorm:"not null"`

	Installments []InstallmentModel `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for GORM
func (InstallmentPlanModel) TableName() string {
	return "installment_plans"
}

// InstallmentModel is the database model for installments
type InstallmentModel struct {
	BaseModel
	PlanID               uuid.UUID       `gorm:"type:uuid;not null;index"`
	Number               int             `gorm:"not null"`
	DueDate              time.Time       `gorm:"not null"`
	Programmed           decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Paid                 decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Status               string          `gorm:"size:30;not null"`
	EffectivePaymentDate *time.Time
}

// TableName specifies the table name for GORM
func (InstallmentModel) TableName() string {
	return "installments"
}

// PaymentModel is the database model for payments
type PaymentModel struct {
	BaseModel
	PaymentNumber       string          `gorm:"size:20;not null;uniqueIndex"`
	SaleID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentDate         time.Time       `gorm:"not null"`
	Amount              decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	AmountUSD           *decimal.Decimal `gorm:"type:numeric(14,2)"`
	ExchangeRate        *decimal.Decimal `gorm:"type:numeric(10,4)"`
	Method              string          `gorm:"size:30;not null"`
	Reference           string          `gorm:"size:100"`
	Notes               string          `gorm:"type:text"`
	PinnedInstallmentID *uuid.UUID      `gorm:"type:uuid"`
	PinAssignedByUser   bool            `gorm:"not null;default:false"`
}

// TableName specifies the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// SaleModelFromDomain converts a domain sale to a database model.
// The plan is mapped separately because its rows are replaced wholesale.
func SaleModelFromDomain(sale *sales.Sale) *SaleModel {
	m := &SaleModel{
		SaleNumber:     sale.SaleNumber,
		LotID:          sale.LotID,
		ClientID:       sale.ClientID,
		SaleDate:       sale.SaleDate,
		Type:           sale.Type.String(),
		TermMonths:     sale.TermMonths,
		TotalValue:     sale.TotalValue,
		DownPayment:    sale.DownPayment,
		PriceUSD:       sale.PriceUSD,
		ExchangeRate:   sale.ExchangeRate,
		ContractSigned: sale.ContractSigned,
		SignatureDate:  sale.SignatureDate,
		Status:         sale.Status.String(),
		AmountPaid:     sale.AmountPaid,
		Notes:          sale.Notes,
		VoidReason:     sale.VoidReason,
		VoidedAt:       sale.VoidedAt,
	}
	m.FromDomainAggregateRoot(sale.BaseAggregateRoot)
	return m
}

// ToDomain converts the database model to a domain sale
func (m *SaleModel) ToDomain() *sales.Sale {
	sale := &sales.Sale{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		SaleNumber:        m.SaleNumber,
		LotID:             m.LotID,
		ClientID:          m.ClientID,
		SaleDate:          m.SaleDate,
		Type:              sales.SaleType(m.Type),
		TermMonths:        m.TermMonths,
		TotalValue:        m.TotalValue,
		DownPayment:       m.DownPayment,
		PriceUSD:          m.PriceUSD,
		ExchangeRate:      m.ExchangeRate,
		ContractSigned:    m.ContractSigned,
		SignatureDate:     m.SignatureDate,
		Status:            sales.SaleStatus(m.Status),
		AmountPaid:        m.AmountPaid,
		Notes:             m.Notes,
		VoidReason:        m.VoidReason,
		VoidedAt:          m.VoidedAt,
	}
	if m.Plan != nil {
		sale.Plan = m.Plan.ToDomain()
	}
	return sale
}

// PlanModelFromDomain converts a domain installment plan to a database model
func PlanModelFromDomain(plan *sales.InstallmentPlan) *InstallmentPlanModel {
	m := &InstallmentPlanModel{
		SaleID:        plan.SaleID,
		Currency:      string(plan.Currency),
		Principal:     plan.Principal,
		Count:         plan.Count,
		RegularAmount: plan.RegularAmount,
		FirstDueDate:  plan.FirstDueDate,
	}
	m.FromDomainBaseEntity(plan.BaseEntity)
	m.Installments = make([]InstallmentModel, 0, len(plan.Installments))
	for _, inst := range plan.Installments {
		m.Installments = append(m.Installments, *InstallmentModelFromDomain(inst))
	}
	return m
}

// ToDomain converts the database model to a domain installment plan
func (m *InstallmentPlanModel) ToDomain() *sales.InstallmentPlan {
	plan := &sales.InstallmentPlan{
		BaseEntity:    m.BaseModel.ToDomain(),
		SaleID:        m.SaleID,
		Currency:      valueobject.Currency(m.Currency),
		Principal:     m.Principal,
		Count:         m.Count,
		RegularAmount: m.RegularAmount,
		FirstDueDate:  m.FirstDueDate,
	}
	plan.Installments = make([]*sales.Installment, 0, len(m.Installments))
	for i := range m.Installments {
		plan.Installments = append(plan.Installments, m.Installments[i].ToDomain())
	}
	return plan
}

// InstallmentModelFromDomain converts a domain installment to a database model
func InstallmentModelFromDomain(inst *sales.Installment) *InstallmentModel {
	m := &InstallmentModel{
		PlanID:               inst.PlanID,
		Number:               inst.Number,
		DueDate:              inst.DueDate,
		Programmed:           inst.Programmed,
		Paid:                 inst.Paid,
		Status:               inst.Status.String(),
		EffectivePaymentDate: inst.EffectivePaymentDate,
	}
	m.FromDomainBaseEntity(inst.BaseEntity)
	return m
}

// ToDomain converts the database model to a domain installment
func (m *InstallmentModel) ToDomain() *sales.Installment {
	return &sales.Installment{
		BaseEntity:           m.BaseModel.ToDomain(),
		PlanID:               m.PlanID,
		Number:               m.Number,
		DueDate:              m.DueDate,
		Programmed:           m.Programmed,
		Paid:                 m.Paid,
		Status:               sales.InstallmentStatus(m.Status),
		EffectivePaymentDate: m.EffectivePaymentDate,
	}
}

// PaymentModelFromDomain converts a domain payment to a database model
func PaymentModelFromDomain(payment *sales.Payment) *PaymentModel {
	m := &PaymentModel{
		PaymentNumber:       payment.PaymentNumber,
		SaleID:              payment.SaleID,
		PaymentDate:         payment.PaymentDate,
		Amount:              payment.Amount,
		AmountUSD:           payment.AmountUSD,
		ExchangeRate:        payment.ExchangeRate,
		Method:              payment.Method.String(),
		Reference:           payment.Reference,
		Notes:               payment.Notes,
		PinnedInstallmentID: payment.PinnedInstallmentID,
		PinAssignedByUser:   payment.PinAssignedByUser,
	}
	m.FromDomainBaseEntity(payment.BaseEntity)
	return m
}

// ToDomain converts the database model to a domain payment
func (m *PaymentModel) ToDomain() *sales.Payment {
	return &sales.Payment{
		BaseEntity:          m.BaseModel.ToDomain(),
		PaymentNumber:       m.PaymentNumber,
		SaleID:              m.SaleID,
		PaymentDate:         m.PaymentDate,
		Amount:              m.Amount,
		AmountUSD:           m.AmountUSD,
		ExchangeRate:        m.ExchangeRate,
		Method:              sales.PaymentMethod(m.Method),
		Reference:           m.Reference,
		Notes:               m.Notes,
		PinnedInstallmentID: m.PinnedInstallmentID,
		PinAssignedByUser:   m.PinAssignedByUser,
	}
}
