package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	salesapp "github.com/inmobiliaria/backend/internal/application/sales"
	"github.com/inmobiliaria/backend/internal/domain/lot"
	"github.com/inmobiliaria/backend/internal/domain/sales"
	"github.com/inmobiliaria/backend/internal/domain/shared"
)

type saleHandlerFixture struct {
	saleRepo    *MockSaleRepository
	paymentRepo *MockPaymentRepository
	lotRepo     *MockLotRepository
	handler     *SaleHandler
}

func newSaleHandlerFixture() *saleHandlerFixture {
	saleRepo := new(MockSaleRepository)
	paymentRepo := new(MockPaymentRepository)
	lotRepo := new(MockLotRepository)

	service := salesapp.NewSaleService(saleRepo, paymentRepo, lotRepo,
		passthroughTx{}, noopPublisher{}, testLogger())

	return &saleHandlerFixture{
		saleRepo:    saleRepo,
		paymentRepo: paymentRepo,
		lotRepo:     lotRepo,
		handler:     NewSaleHandler(service),
	}
}

func newTestLot(t *testing.T) *lot.Lot {
	t.Helper()
	l, err := lot.NewLot("MZ-A-01", "Los Olivos", "1", "A",
		decimal.NewFromInt(120), decimal.NewFromInt(50000))
	require.NoError(t, err)
	l.Price12 = decimal.NewFromInt(54000)
	l.ClearDomainEvents()
	return l
}

func newTestCashSale(t *testing.T, lotID, clientID uuid.UUID) *sales.Sale {
	t.Helper()
	s, err := sales.NewSale("V-00042", lotID, clientID,
		time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		sales.SaleTypeCash, 0, decimal.NewFromInt(50000), decimal.Zero, nil, nil)
	require.NoError(t, err)
	s.ClearDomainEvents()
	return s
}

func TestSaleHandler_Create_CashSale(t *testing.T) {
	f := newSaleHandlerFixture()
	engine := setupTestRouter(f.handler)

	l := newTestLot(t)
	clientID := uuid.New()

	f.lotRepo.On("FindByID", mock.Anything, l.ID).Return(l, nil)
	f.saleRepo.On("NextSaleNumber", mock.Anything).Return("V-00001", nil)
	f.saleRepo.On("Save", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)
	f.lotRepo.On("FindByIDForUpdate", mock.Anything, l.ID).Return(l, nil)
	f.saleRepo.On("FindByLotID", mock.Anything, l.ID).Return([]sales.Sale{}, nil)

	body := map[string]any{
		"lote":             l.ID.String(),
		"cliente":          clientID.String(),
		"fecha_venta":      "2025-03-15T00:00:00Z",
		"tipo_venta":       "contado",
		"valor_lote_venta": 50000,
	}
	rec := performRequest(t, engine, http.MethodPost, "/api/v1/ventas", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "V-00001", data["id_venta"])
	assert.Equal(t, "contado", data["tipo_venta"])
	assert.Equal(t, "separacion", data["status_venta"])
	assert.Equal(t, "50000.00", data["valor_lote_venta"])
	assert.Nil(t, data["plan_pago"])

	f.saleRepo.AssertExpectations(t)
	f.lotRepo.AssertExpectations(t)
}

func TestSaleHandler_Create_CreditSaleGeneratesPlan(t *testing.T) {
	f := newSaleHandlerFixture()
	engine := setupTestRouter(f.handler)

	l := newTestLot(t)
	clientID := uuid.New()

	f.lotRepo.On("FindByID", mock.Anything, l.ID).Return(l, nil)
	f.saleRepo.On("NextSaleNumber", mock.Anything).Return("V-00002", nil)
	f.saleRepo.On("Save", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)
	f.lotRepo.On("FindByIDForUpdate", mock.Anything, l.ID).Return(l, nil)
	f.saleRepo.On("FindByLotID", mock.Anything, l.ID).Return([]sales.Sale{}, nil)

	body := map[string]any{
		"lote":                    l.ID.String(),
		"cliente":                 clientID.String(),
		"fecha_venta":             "2025-03-15T00:00:00Z",
		"tipo_venta":              "credito",
		"plazo_meses_credito":     12,
		"valor_lote_venta":        60000,
		"cuota_inicial_requerida": 12000,
	}
	rec := performRequest(t, engine, http.MethodPost, "/api/v1/ventas", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)

	data := resp.Data.(map[string]any)
	plan, ok := data["plan_pago"].(map[string]any)
	require.True(t, ok, "credit sale must carry an installment plan")
	assert.Equal(t, "48000.00", plan["monto_total_credito"])
	assert.Equal(t, "4000.00", plan["monto_cuota_regular_original"])
	assert.Len(t, plan["cuotas"], 12)
}

func TestSaleHandler_Create_InvalidBody(t *testing.T) {
	f := newSaleHandlerFixture()
	engine := setupTestRouter(f.handler)

	// missing cliente and tipo_venta
	body := map[string]any{"lote": uuid.New().String()}
	rec := performRequest(t, engine, http.MethodPost, "/api/v1/ventas", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "ERR_BAD_REQUEST", resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)
}

func TestSaleHandler_GetByID_NotFound(t *testing.T) {
	f := newSaleHandlerFixture()
	engine := setupTestRouter(f.handler)

	id := uuid.New()
	f.saleRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	rec := performRequest(t, engine, http.MethodGet, "/api/v1/ventas/"+id.String(), nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "ERR_NOT_FOUND", resp.Error.Code)
}

func TestSaleHandler_GetByID_InvalidUUID(t *testing.T) {
	f := newSaleHandlerFixture()
	engine := setupTestRouter(f.handler)

	rec := performRequest(t, engine, http.MethodGet, "/api/v1/ventas/not-a-uuid", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "ERR_BAD_REQUEST", resp.Error.Code)
}

func TestSaleHandler_List_ReturnsMeta(t *testing.T) {
	f := newSaleHandlerFixture()
	engine := setupTestRouter(f.handler)

	lotID := uuid.New()
	clientID := uuid.New()
	s1 := newTestCashSale(t, lotID, clientID)
	s2 := newTestCashSale(t, lotID, clientID)
	s2.SaleNumber = "V-00043"

	f.saleRepo.On("FindAll", mock.Anything, mock.AnythingOfType("sales.SaleFilter")).
		Return([]sales.Sale{*s1, *s2}, nil)
	f.saleRepo.On("Count", mock.Anything, mock.AnythingOfType("sales.SaleFilter")).
		Return(int64(2), nil)

	rec := performRequest(t, engine, http.MethodGet, "/api/v1/ventas?page=1&page_size=10", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.TotalPages)
	assert.Len(t, resp.Data, 2)
}

func TestSaleHandler_RevertVoid_InvalidState(t *testing.T) {
	f := newSaleHandlerFixture()
	engine := setupTestRouter(f.handler)

	s := newTestCashSale(t, uuid.New(), uuid.New())
	f.saleRepo.On("FindByIDForUpdate", mock.Anything, s.ID).Return(s, nil)

	rec := performRequest(t, engine, http.MethodPost,
		"/api/v1/ventas/"+s.ID.String()+"/revertir-anulacion", nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "ERR_INVALID_STATE", resp.Error.Code)
}

func TestSaleHandler_Void_ConcurrencyConflict(t *testing.T) {
	f := newSaleHandlerFixture()
	engine := setupTestRouter(f.handler)

	s := newTestCashSale(t, uuid.New(), uuid.New())
	f.saleRepo.On("FindByIDForUpdate", mock.Anything, s.ID).Return(s, nil)
	f.saleRepo.On("Save", mock.Anything, mock.AnythingOfType("*sales.Sale")).
		Return(shared.ErrConcurrencyConflict)

	body := map[string]any{"motivo_anulacion": "cliente desistió"}
	rec := performRequest(t, engine, http.MethodPost,
		"/api/v1/ventas/"+s.ID.String()+"/anular", body)

	require.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "ERR_CONCURRENCY_CONFLICT", resp.Error.Code)
	// every retry reloads and re-saves before the conflict is surfaced
	f.saleRepo.AssertNumberOfCalls(t, "Save", 3)
}

func TestSaleHandler_Void_Success(t *testing.T) {
	f := newSaleHandlerFixture()
	engine := setupTestRouter(f.handler)

	l := newTestLot(t)
	s := newTestCashSale(t, l.ID, uuid.New())

	f.saleRepo.On("FindByIDForUpdate", mock.Anything, s.ID).Return(s, nil)
	f.saleRepo.On("Save", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)
	f.lotRepo.On("FindByIDForUpdate", mock.Anything, l.ID).Return(l, nil)
	f.saleRepo.On("FindByLotID", mock.Anything, l.ID).Return([]sales.Sale{*s}, nil)

	body := map[string]any{"motivo_anulacion": "documentación observada"}
	rec := performRequest(t, engine, http.MethodPost,
		"/api/v1/ventas/"+s.ID.String()+"/anular", body)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "anulado", data["status_venta"])
	assert.Equal(t, "documentación observada", data["motivo_anulacion"])
}
