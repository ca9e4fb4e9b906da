package sales

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/inmobiliaria/backend/internal/domain/sales"
	"github.com/inmobiliaria/backend/internal/domain/shared"
)

// CreateSaleRequest carries the payload for creating a sale. Wire names keep
// the Spanish field names existing producers already send.
type CreateSaleRequest struct {
	LotID        string           `json:"lote" binding:"required,uuid"`
	ClientID     string           `json:"cliente" binding:"required,uuid"`
	SaleDate     time.Time        `json:"fecha_venta" binding:"required"`
	Type         string           `json:"tipo_venta" binding:"required,oneof=contado credito"`
	TermMonths   int              `json:"plazo_meses_credito" binding:"omitempty,oneof=0 12 24 36"`
	TotalValue   *decimal.Decimal `json:"valor_lote_venta"` // Derived from the lot's price table when omitted
	DownPayment  decimal.Decimal  `json:"cuota_inicial_requerida"`
	PriceUSD     *decimal.Decimal `json:"precio_dolares"`
	ExchangeRate *decimal.Decimal `json:"tipo_cambio"`
	Notes        string           `json:"notas"`
}

// UpdateSaleRequest carries the payload for changing the terms of a sale
type UpdateSaleRequest struct {
	LotID       string          `json:"lote" binding:"required,uuid"`
	Type        string          `json:"tipo_venta" binding:"required,oneof=contado credito"`
	TermMonths  int             `json:"plazo_meses_credito" binding:"omitempty,oneof=0 12 24 36"`
	TotalValue  decimal.Decimal `json:"valor_lote_venta" binding:"required"`
	DownPayment decimal.Decimal `json:"cuota_inicial_requerida"`
	Notes       string          `json:"notas"`
}

// SignSaleRequest records a contract signature
type SignSaleRequest struct {
	SignatureDate *time.Time `json:"fecha_firma_contrato"`
}

// VoidSaleRequest voids a sale
type VoidSaleRequest struct {
	Reason string `json:"motivo_anulacion" binding:"required"`
}

// RecordPaymentRequest carries the payload for recording a payment
type RecordPaymentRequest struct {
	SaleID              string           `json:"venta" binding:"required,uuid"`
	PaymentDate         time.Time        `json:"fecha_pago" binding:"required"`
	Amount              decimal.Decimal  `json:"monto_pago"`
	AmountUSD           *decimal.Decimal `json:"monto_pago_dolares"`
	ExchangeRate        *decimal.Decimal `json:"tipo_cambio"`
	Method              string           `json:"metodo_pago" binding:"required,oneof=efectivo transferencia tarjeta billetera_digital otro"`
	Reference           string           `json:"referencia_pago"`
	Notes               string           `json:"notas"`
	PinnedInstallmentID *string          `json:"cuota_plan_pago_cubierta" binding:"omitempty,uuid"`
}

// UpdatePaymentRequest carries the payload for editing a payment
type UpdatePaymentRequest struct {
	PaymentDate         time.Time        `json:"fecha_pago" binding:"required"`
	Amount              decimal.Decimal  `json:"monto_pago"`
	AmountUSD           *decimal.Decimal `json:"monto_pago_dolares"`
	ExchangeRate        *decimal.Decimal `json:"tipo_cambio"`
	Method              string           `json:"metodo_pago" binding:"required,oneof=efectivo transferencia tarjeta billetera_digital otro"`
	Reference           string           `json:"referencia_pago"`
	Notes               string           `json:"notas"`
	PinnedInstallmentID *string          `json:"cuota_plan_pago_cubierta" binding:"omitempty,uuid"`
}

// SaleListFilter carries list/pagination parameters for sales
type SaleListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Status   string `form:"status_venta" binding:"omitempty,oneof=separacion procesable completada anulado"`
	Type     string `form:"tipo_venta" binding:"omitempty,oneof=contado credito"`
	LotID    string `form:"lote" binding:"omitempty,uuid"`
	ClientID string `form:"cliente" binding:"omitempty,uuid"`
}

// InstallmentResponse is the wire shape of one installment
type InstallmentResponse struct {
	ID                   string     `json:"id"`
	Number               int        `json:"numero_cuota"`
	DueDate              time.Time  `json:"fecha_vencimiento"`
	Programmed           string     `json:"monto_programado"`
	Paid                 string     `json:"monto_pagado"`
	Status               string     `json:"estado_cuota"`
	EffectivePaymentDate *time.Time `json:"fecha_pago_efectivo,omitempty"`
}

// PlanResponse is the wire shape of an installment plan
type PlanResponse struct {
	ID            string                `json:"id"`
	Currency      string                `json:"moneda"`
	Principal     string                `json:"monto_total_credito"`
	Count         int                   `json:"numero_cuotas"`
	RegularAmount string                `json:"monto_cuota_regular_original"`
	FirstDueDate  time.Time             `json:"fecha_inicio_pago_cuotas"`
	Installments  []InstallmentResponse `json:"cuotas"`
}

// SaleResponse is the wire shape of a sale, optionally with warnings from the
// recalculation pass that produced it
type SaleResponse struct {
	ID             string           `json:"id"`
	SaleNumber     string           `json:"id_venta"`
	LotID          string           `json:"lote"`
	ClientID       string           `json:"cliente"`
	SaleDate       time.Time        `json:"fecha_venta"`
	Type           string           `json:"tipo_venta"`
	TermMonths     int              `json:"plazo_meses_credito"`
	TotalValue     string           `json:"valor_lote_venta"`
	DownPayment    string           `json:"cuota_inicial_requerida"`
	PriceUSD       *string          `json:"precio_dolares,omitempty"`
	ExchangeRate   *string          `json:"tipo_cambio,omitempty"`
	ContractSigned bool             `json:"cliente_firmo_contrato"`
	SignatureDate  *time.Time       `json:"fecha_firma_contrato,omitempty"`
	Status         string           `json:"status_venta"`
	AmountPaid     string           `json:"monto_pagado_actual"`
	Notes          string           `json:"notas,omitempty"`
	VoidReason     string           `json:"motivo_anulacion,omitempty"`
	Plan           *PlanResponse    `json:"plan_pago,omitempty"`
	Warnings       []shared.Warning `json:"advertencias,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// PaymentResponse is the wire shape of a payment
type PaymentResponse struct {
	ID                  string           `json:"id"`
	PaymentNumber       string           `json:"id_pago"`
	SaleID              string           `json:"venta"`
	PaymentDate         time.Time        `json:"fecha_pago"`
	Amount              string           `json:"monto_pago"`
	AmountUSD           *string          `json:"monto_pago_dolares,omitempty"`
	ExchangeRate        *string          `json:"tipo_cambio,omitempty"`
	Method              string           `json:"metodo_pago"`
	Reference           string           `json:"referencia_pago,omitempty"`
	Notes               string           `json:"notas,omitempty"`
	PinnedInstallmentID *string          `json:"cuota_plan_pago_cubierta,omitempty"`
	Warnings            []shared.Warning `json:"advertencias,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
}

// ToSaleResponse maps a sale aggregate to its wire shape
func ToSaleResponse(s *sales.Sale) SaleResponse {
	resp := SaleResponse{
		ID:             s.ID.String(),
		SaleNumber:     s.SaleNumber,
		LotID:          s.LotID.String(),
		ClientID:       s.ClientID.String(),
		SaleDate:       s.SaleDate,
		Type:           s.Type.String(),
		TermMonths:     s.TermMonths,
		TotalValue:     s.TotalValue.StringFixed(2),
		DownPayment:    s.DownPayment.StringFixed(2),
		ContractSigned: s.ContractSigned,
		SignatureDate:  s.SignatureDate,
		Status:         s.Status.String(),
		AmountPaid:     s.AmountPaid.StringFixed(2),
		Notes:          s.Notes,
		VoidReason:     s.VoidReason,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
	if s.PriceUSD != nil {
		v := s.PriceUSD.StringFixed(2)
		resp.PriceUSD = &v
	}
	if s.ExchangeRate != nil {
		v := s.ExchangeRate.String()
		resp.ExchangeRate = &v
	}
	if s.Plan != nil {
		plan := ToPlanResponse(s.Plan)
		resp.Plan = &plan
	}
	return resp
}

// ToPlanResponse maps an installment plan to its wire shape
func ToPlanResponse(p *sales.InstallmentPlan) PlanResponse {
	installments := make([]InstallmentResponse, 0, len(p.Installments))
	for _, inst := range p.SortedInstallments() {
		installments = append(installments, InstallmentResponse{
			ID:                   inst.ID.String(),
			Number:               inst.Number,
			DueDate:              inst.DueDate,
			Programmed:           inst.Programmed.StringFixed(2),
			Paid:                 inst.Paid.StringFixed(2),
			Status:               inst.Status.String(),
			EffectivePaymentDate: inst.EffectivePaymentDate,
		})
	}
	return PlanResponse{
		ID:            p.ID.String(),
		Currency:      string(p.Currency),
		Principal:     p.Principal.StringFixed(2),
		Count:         p.Count,
		RegularAmount: p.RegularAmount.StringFixed(2),
		FirstDueDate:  p.FirstDueDate,
		Installments:  installments,
	}
}

// ToPaymentResponse maps a payment to its wire shape
func ToPaymentResponse(p *sales.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:            p.ID.String(),
		PaymentNumber: p.PaymentNumber,
		SaleID:        p.SaleID.String(),
		PaymentDate:   p.PaymentDate,
		Amount:        p.Amount.StringFixed(2),
		Method:        string(p.Method),
		Reference:     p.Reference,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt,
	}
	if p.AmountUSD != nil {
		v := p.AmountUSD.StringFixed(2)
		resp.AmountUSD = &v
	}
	if p.ExchangeRate != nil {
		v := p.ExchangeRate.String()
		resp.ExchangeRate = &v
	}
	if p.PinnedInstallmentID != nil {
		v := p.PinnedInstallmentID.String()
		resp.PinnedInstallmentID = &v
	}
	return resp
}
