package dto

import "retailpos/internal/domain/audit"

// AuditQuery limits GET /audit/:entityType/:id.
type AuditQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}

// AuditResponse is an entity's audit trail, newest first.
type AuditResponse struct {
	Items []audit.Entry `json:"items"`
}
