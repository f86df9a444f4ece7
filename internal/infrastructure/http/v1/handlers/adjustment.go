package handlers

import (
	"github.com/gin-gonic/gin"

	"retailpos/internal/domain/adjustments"
	"retailpos/internal/infrastructure/http/v1/dto"
)

// AdjustmentHandler serves stock adjustments.
type AdjustmentHandler struct {
	*BaseHandler
	service *adjustments.Service
}

// NewAdjustmentHandler creates a new adjustment handler.
func NewAdjustmentHandler(base *BaseHandler, service *adjustments.Service) *AdjustmentHandler {
	return &AdjustmentHandler{BaseHandler: base, service: service}
}

// Adjust handles POST /stock-adjustments.
func (h *AdjustmentHandler) Adjust(c *gin.Context) {
	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	adj, err := h.service.Adjust(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromAdjustment(adj))
}

// List handles GET /stock-adjustments.
func (h *AdjustmentHandler) List(c *gin.Context) {
	var q dto.AdjustmentListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	items, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(items, total, filter.Pagination, dto.FromAdjustment))
}

// Get handles GET /stock-adjustments/:id.
func (h *AdjustmentHandler) Get(c *gin.Context) {
	adjustmentID, ok := h.ParamID(c)
	if !ok {
		return
	}
	adj, err := h.service.GetByID(c.Request.Context(), adjustmentID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromAdjustment(adj))
}
