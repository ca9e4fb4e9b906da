package lot

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/inmobiliaria/backend/internal/domain/lot"
)

// CreateLotRequest carries the payload for registering a lot
type CreateLotRequest struct {
	LotNumber string           `json:"id_lote" binding:"required"`
	Project   string           `json:"ubicacion_proyecto" binding:"required"`
	Stage     string           `json:"etapa"`
	Block     string           `json:"manzana"`
	AreaM2    decimal.Decimal  `json:"area_m2"`
	ListPrice decimal.Decimal  `json:"precio_lista" binding:"required"`
	Price12   decimal.Decimal  `json:"precio_credito_12_meses"`
	Price24   decimal.Decimal  `json:"precio_credito_24_meses"`
	Price36   decimal.Decimal  `json:"precio_credito_36_meses"`
	PriceUSD  *decimal.Decimal `json:"precio_dolares"`
}

// UpdateLotRequest carries the payload for updating a lot's descriptive
// fields. Availability is absent on purpose; writes to it are ignored.
type UpdateLotRequest struct {
	Project   string           `json:"ubicacion_proyecto" binding:"required"`
	Stage     string           `json:"etapa"`
	Block     string           `json:"manzana"`
	AreaM2    decimal.Decimal  `json:"area_m2"`
	ListPrice decimal.Decimal  `json:"precio_lista" binding:"required"`
	Price12   decimal.Decimal  `json:"precio_credito_12_meses"`
	Price24   decimal.Decimal  `json:"precio_credito_24_meses"`
	Price36   decimal.Decimal  `json:"precio_credito_36_meses"`
	PriceUSD  *decimal.Decimal `json:"precio_dolares"`
}

// LotListFilter carries list/pagination parameters for lots
type LotListFilter struct {
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
	Project      string `form:"ubicacion_proyecto"`
	Availability string `form:"estado_lote" binding:"omitempty,oneof=Disponible Reservado Vendido"`
}

// LotResponse is the wire shape of a lot
type LotResponse struct {
	ID           string    `json:"id"`
	LotNumber    string    `json:"id_lote"`
	Project      string    `json:"ubicacion_proyecto"`
	Stage        string    `json:"etapa"`
	Block        string    `json:"manzana"`
	AreaM2       string    `json:"area_m2"`
	ListPrice    string    `json:"precio_lista"`
	Price12      string    `json:"precio_credito_12_meses"`
	Price24      string    `json:"precio_credito_24_meses"`
	Price36      string    `json:"precio_credito_36_meses"`
	PriceUSD     *string   `json:"precio_dolares,omitempty"`
	Availability string    `json:"estado_lote"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AvailabilityResponse is the catalog read of a single lot's availability
type AvailabilityResponse struct {
	LotID        string `json:"lote"`
	Availability string `json:"estado_lote"`
	Cached       bool   `json:"-"`
}

// ToLotResponse maps a lot aggregate to its wire shape
func ToLotResponse(l *lot.Lot) LotResponse {
	resp := LotResponse{
		ID:           l.ID.String(),
		LotNumber:    l.LotNumber,
		Project:      l.Project,
		Stage:        l.Stage,
		Block:        l.Block,
		AreaM2:       l.AreaM2.StringFixed(2),
		ListPrice:    l.ListPrice.StringFixed(2),
		Price12:      l.Price12.StringFixed(2),
		Price24:      l.Price24.StringFixed(2),
		Price36:      l.Price36.StringFixed(2),
		Availability: l.Availability.String(),
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
	if l.PriceUSD != nil {
		v := l.PriceUSD.StringFixed(2)
		resp.PriceUSD = &v
	}
	return resp
}
