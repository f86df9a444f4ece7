package handlers

import (
	"github.com/gin-gonic/gin"

	"retailpos/internal/domain/purchases"
	"retailpos/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler serves goods receiving.
type PurchaseHandler struct {
	*BaseHandler
	service *purchases.Service
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(base *BaseHandler, service *purchases.Service) *PurchaseHandler {
	return &PurchaseHandler{BaseHandler: base, service: service}
}

// Receive handles POST /purchases.
func (h *PurchaseHandler) Receive(c *gin.Context) {
	var req dto.ReceivePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	purchase, err := h.service.Receive(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromPurchase(purchase))
}

// Get handles GET /purchases/:id.
func (h *PurchaseHandler) Get(c *gin.Context) {
	purchaseID, ok := h.ParamID(c)
	if !ok {
		return
	}
	purchase, err := h.service.GetByID(c.Request.Context(), purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromPurchase(purchase))
}

// List handles GET /purchases.
func (h *PurchaseHandler) List(c *gin.Context) {
	var q dto.PurchaseListQuery
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
	h.OK(c, dto.NewListResponse(items, total, filter.Pagination, dto.FromPurchase))
}
