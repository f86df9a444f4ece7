// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"retailpos/internal/core/entity"
	"retailpos/internal/core/id"
	"retailpos/internal/core/types"
)

// --- Pagination ---

// PageQuery is the limit/offset pair accepted by list endpoints.
type PageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// Pagination converts the query to the domain pagination.
func (q PageQuery) Pagination() entity.Pagination {
	return entity.Pagination{Limit: q.Limit, Offset: q.Offset}.Normalize()
}

// WindowQuery is an optional created-at window.
type WindowQuery struct {
	From *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To   *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	Limit      int `json:"limit"`
	Offset     int `json:"offset"`
}

// NewListResponse maps domain items through fn.
func NewListResponse[E, T any](items []E, total int, page entity.Pagination, fn func(E) T) ListResponse[T] {
	out := make([]T, 0, len(items))
	for _, it := range items {
		out = append(out, fn(it))
	}
	return ListResponse[T]{Items: out, TotalCount: total, Limit: page.Limit, Offset: page.Offset}
}

// --- ID Response ---

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// parseOptionalID parses s when non-empty.
func parseOptionalID(s string) (*id.ID, error) {
	if s == "" {
		return nil, nil
	}
	v, err := id.Parse(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// money renders an amount with exactly two decimals.
func money(m types.Money) string {
	return m.StringFixed(2)
}
