package handlers

import (
	"github.com/gin-gonic/gin"

	"retailpos/internal/domain/ledger"
	"retailpos/internal/domain/movements"
	"retailpos/internal/infrastructure/http/v1/dto"
)

// VariantHandler serves the read side of the ledger.
type VariantHandler struct {
	*BaseHandler
	ledger    *ledger.Service
	movements *movements.Service
}

// NewVariantHandler creates a new variant handler.
func NewVariantHandler(base *BaseHandler, ledger *ledger.Service, movements *movements.Service) *VariantHandler {
	return &VariantHandler{BaseHandler: base, ledger: ledger, movements: movements}
}

// List handles GET /variants. lowStock=true keeps variants at or below the
// configured threshold.
func (h *VariantHandler) List(c *gin.Context) {
	var q dto.VariantListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter := q.ToFilter()

	items, total, err := h.ledger.List(c.Request.Context(), filter, q.LowStock)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(items, total, filter.Pagination, dto.FromVariant))
}

// Get handles GET /variants/:id.
func (h *VariantHandler) Get(c *gin.Context) {
	variantID, ok := h.ParamID(c)
	if !ok {
		return
	}
	v, err := h.ledger.GetByID(c.Request.Context(), variantID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromVariant(v))
}

// Movements handles GET /variants/:id/movements.
func (h *VariantHandler) Movements(c *gin.Context) {
	variantID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var q dto.MovementQuery
	if !h.BindQuery(c, &q) {
		return
	}

	items, err := h.movements.History(c.Request.Context(), variantID, q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": dto.FromMovements(items)})
}
