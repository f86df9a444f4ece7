package v1

import (
	"github.com/gin-gonic/gin"

	"retailpos/internal/infrastructure/http/v1/middleware"
)

// DocumentRoutes are the endpoints of an immutable ledger document
// (sale, purchase, stock adjustment). Nil handlers are not registered.
type DocumentRoutes struct {
	List   gin.HandlerFunc
	Get    gin.HandlerFunc
	Create gin.HandlerFunc

	// CreateRoles restricts Create; empty means any authenticated user.
	CreateRoles []string
}

// RegisterDocumentRoutes wires GET "", GET "/:id" and POST "" on group.
//
// Usage:
//
//	RegisterDocumentRoutes(api.Group("/purchases"), DocumentRoutes{
//	    List: h.List, Get: h.Get, Create: h.Receive,
//	})
func RegisterDocumentRoutes(group *gin.RouterGroup, r DocumentRoutes) {
	if r.List != nil {
		group.GET("", r.List)
	}
	if r.Get != nil {
		group.GET("/:id", r.Get)
	}
	if r.Create != nil {
		group.POST("", withRoles(r.CreateRoles, r.Create)...)
	}
}

// withRoles prepends a role check when roles are given.
func withRoles(roles []string, h gin.HandlerFunc) []gin.HandlerFunc {
	if len(roles) == 0 {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{middleware.RequireRole(roles...), h}
}
