package handlers

import (
	"github.com/gin-gonic/gin"

	"retailpos/internal/domain/sales"
	"retailpos/internal/infrastructure/http/v1/dto"
)

// SaleHandler serves checkout, void and sale lookups.
type SaleHandler struct {
	*BaseHandler
	service *sales.Service
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(base *BaseHandler, service *sales.Service) *SaleHandler {
	return &SaleHandler{BaseHandler: base, service: service}
}

// Settle handles POST /sales.
func (h *SaleHandler) Settle(c *gin.Context) {
	var req dto.SettleSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	sale, err := h.service.Settle(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromSale(sale))
}

// Void handles POST /sales/:id/void.
func (h *SaleHandler) Void(c *gin.Context) {
	saleID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.VoidSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sale, err := h.service.Void(c.Request.Context(), sales.VoidInput{SaleID: saleID, Reason: req.Reason})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSale(sale))
}

// Get handles GET /sales/:id.
func (h *SaleHandler) Get(c *gin.Context) {
	saleID, ok := h.ParamID(c)
	if !ok {
		return
	}
	sale, err := h.service.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSale(sale))
}

// List handles GET /sales.
func (h *SaleHandler) List(c *gin.Context) {
	var q dto.SaleListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter := q.ToFilter()

	items, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(items, total, filter.Pagination, dto.FromSaleHeader))
}
