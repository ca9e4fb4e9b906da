package handler

import (
	"github.com/gin-gonic/gin"

	lotapp "github.com/inmobiliaria/backend/internal/application/lot"
)

// LotHandler handles lot catalog API endpoints
type LotHandler struct {
	BaseHandler
	lotService *lotapp.LotService
}

// NewLotHandler creates a new LotHandler
func NewLotHandler(lotService *lotapp.LotService) *LotHandler {
	return &LotHandler{lotService: lotService}
}

// RegisterRoutes registers lot routes on the given router group
func (h *LotHandler) RegisterRoutes(rg *gin.RouterGroup) {
	lotes := rg.Group("/lotes")
	{
		lotes.POST("", h.Create)
		lotes.GET("", h.List)
		lotes.GET("/:id", h.GetByID)
		lotes.PUT("/:id", h.Update)
		lotes.GET("/:id/disponibilidad", h.GetAvailability)
	}
}

// Create handles POST /lotes
func (h *LotHandler) Create(c *gin.Context) {
	var req lotapp.CreateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.lotService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /lotes
func (h *LotHandler) List(c *gin.Context) {
	var filter lotapp.LotListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}

	items, total, err := h.lotService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// GetByID handles GET /lotes/:id
func (h *LotHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.lotService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update handles PUT /lotes/:id
func (h *LotHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req lotapp.UpdateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.lotService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetAvailability handles GET /lotes/:id/disponibilidad
func (h *LotHandler) GetAvailability(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.lotService.GetAvailability(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}
