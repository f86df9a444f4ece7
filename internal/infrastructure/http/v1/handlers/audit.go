package handlers

import (
	"github.com/gin-gonic/gin"

	"retailpos/internal/core/apperror"
	"retailpos/internal/domain/audit"
	"retailpos/internal/infrastructure/http/v1/dto"
)

// auditEntityTypes maps the URL segment to the stored entity type.
var auditEntityTypes = map[string]string{
	"sales":             audit.EntitySale,
	"purchases":         audit.EntityPurchase,
	"stock-adjustments": audit.EntityAdjustment,
}

// AuditHandler exposes an entity's audit trail.
type AuditHandler struct {
	*BaseHandler
	reader audit.Reader
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, reader audit.Reader) *AuditHandler {
	return &AuditHandler{BaseHandler: base, reader: reader}
}

// History handles GET /audit/:entityType/:id.
func (h *AuditHandler) History(c *gin.Context) {
	entityType, ok := auditEntityTypes[c.Param("entityType")]
	if !ok {
		h.Error(c, apperror.NewValidation("unknown entity type").WithDetail("entityType", c.Param("entityType")))
		return
	}
	entityID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var q dto.AuditQuery
	if !h.BindQuery(c, &q) {
		return
	}
	if q.Limit == 0 {
		q.Limit = 50
	}

	entries, err := h.reader.History(c.Request.Context(), entityType, entityID, q.Limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	h.OK(c, dto.AuditResponse{Items: entries})
}
