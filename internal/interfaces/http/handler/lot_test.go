package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	lotapp "github.com/inmobiliaria/backend/internal/application/lot"
	"github.com/inmobiliaria/backend/internal/domain/shared"
)

type lotHandlerFixture struct {
	lotRepo *MockLotRepository
	cache   *memAvailabilityCache
	handler *LotHandler
}

func newLotHandlerFixture() *lotHandlerFixture {
	lotRepo := new(MockLotRepository)
	cache := newMemAvailabilityCache()
	service := lotapp.NewLotService(lotRepo, cache, testLogger())
	return &lotHandlerFixture{
		lotRepo: lotRepo,
		cache:   cache,
		handler: NewLotHandler(service),
	}
}

func TestLotHandler_Create(t *testing.T) {
	f := newLotHandlerFixture()
	engine := setupTestRouter(f.handler)

	f.lotRepo.On("Save", mock.Anything, mock.AnythingOfType("*lot.Lot")).Return(nil)

	body := map[string]any{
		"id_lote":                 "MZ-B-07",
		"ubicacion_proyecto":      "Villa Sol",
		"manzana":                 "B",
		"area_m2":                 90.5,
		"precio_lista":            42000,
		"precio_credito_12_meses": 45000,
	}
	rec := performRequest(t, engine, http.MethodPost, "/api/v1/lotes", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "MZ-B-07", data["id_lote"])
	assert.Equal(t, "Disponible", data["estado_lote"])
	assert.Equal(t, "42000.00", data["precio_lista"])

	f.lotRepo.AssertExpectations(t)
}

func TestLotHandler_Create_MissingRequiredFields(t *testing.T) {
	f := newLotHandlerFixture()
	engine := setupTestRouter(f.handler)

	body := map[string]any{"id_lote": "MZ-B-08"}
	rec := performRequest(t, engine, http.MethodPost, "/api/v1/lotes", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "ERR_BAD_REQUEST", resp.Error.Code)
}

func TestLotHandler_GetByID_NotFound(t *testing.T) {
	f := newLotHandlerFixture()
	engine := setupTestRouter(f.handler)

	id := uuid.New()
	f.lotRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	rec := performRequest(t, engine, http.MethodGet, "/api/v1/lotes/"+id.String(), nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLotHandler_List_FilterValidation(t *testing.T) {
	f := newLotHandlerFixture()
	engine := setupTestRouter(f.handler)

	// estado_lote outside the enum never reaches the repository
	rec := performRequest(t, engine, http.MethodGet, "/api/v1/lotes?estado_lote=Ocupado", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	f.lotRepo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
}

func TestLotHandler_GetAvailability_ServesFromCacheOnSecondRead(t *testing.T) {
	f := newLotHandlerFixture()
	engine := setupTestRouter(f.handler)

	l := newTestLot(t)
	f.lotRepo.On("FindByID", mock.Anything, l.ID).Return(l, nil).Once()

	path := "/api/v1/lotes/" + l.ID.String() + "/disponibilidad"

	rec := performRequest(t, engine, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "Disponible", data["estado_lote"])

	// second read is answered by the cache; FindByID was limited to one call
	rec = performRequest(t, engine, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	f.lotRepo.AssertExpectations(t)
}
