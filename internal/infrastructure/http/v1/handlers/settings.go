package handlers

import (
	"github.com/gin-gonic/gin"

	"retailpos/internal/domain/settings"
	"retailpos/internal/infrastructure/http/v1/dto"
)

// SettingsHandler reads and replaces the shop settings.
type SettingsHandler struct {
	*BaseHandler
	service *settings.Service
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(base *BaseHandler, service *settings.Service) *SettingsHandler {
	return &SettingsHandler{BaseHandler: base, service: service}
}

// Get handles GET /settings.
func (h *SettingsHandler) Get(c *gin.Context) {
	s, err := h.service.Get(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSettings(s))
}

// Update handles PUT /settings.
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	s, err := h.service.Update(c.Request.Context(), req.ToSettings())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSettings(s))
}
