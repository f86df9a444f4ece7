package middleware

import (
	"github.com/gin-gonic/gin"

	"retailpos/internal/core/security"
)

// UserContext copies the authenticated user id and the client IP into the
// request context, where the engines and the audit recorder read the actor.
//
// Must run after Auth.
func UserContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := security.WithClientIP(c.Request.Context(), c.ClientIP())
		if uid := c.GetString(ctxKeyUserID); uid != "" {
			ctx = security.WithUserID(ctx, uid)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
