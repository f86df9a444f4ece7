package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/internal/core/apperror"
	appctx "retailpos/internal/core/context"
	"retailpos/internal/core/security"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(), Trace(), ErrorHandler())
	r.GET("/x", handlers...)
	return r
}

func serve(r http.Handler) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestErrorHandlerRendersAppError(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(apperror.NewInsufficientStock("v-1", "SKU-1", 5, 3))
	})

	w, body := serve(r)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, apperror.CodeInsufficientStock, body["code"])
	assert.Contains(t, body["message"], "SKU-1")
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

func TestErrorHandlerHidesUnknownErrors(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(errors.New("pq: relation does not exist"))
	})

	w, body := serve(r)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.CodeInternal, body["code"])
	assert.NotContains(t, w.Body.String(), "relation")
}

func TestRecoveryRendersPanics(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		panic("boom")
	})

	w, body := serve(r)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.CodeInternal, body["code"])
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestRequireRole(t *testing.T) {
	withUser := func(roles ...string) gin.HandlerFunc {
		return func(c *gin.Context) {
			ctx := appctx.WithUser(c.Request.Context(), &appctx.UserContext{UserID: "u-1", Roles: roles})
			c.Request = c.Request.WithContext(ctx)
		}
	}
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	w, _ := serve(newEngine(withUser(appctx.RoleManager), RequireRole(appctx.RoleAdmin, appctx.RoleManager), ok))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, body := serve(newEngine(withUser(appctx.RoleCashier), RequireRole(appctx.RoleAdmin), ok))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperror.CodeForbidden, body["code"])

	w, _ = serve(newEngine(RequireRole(appctx.RoleAdmin), ok))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserContextSetsActor(t *testing.T) {
	var actor security.Actor
	r := newEngine(
		func(c *gin.Context) { c.Set(ctxKeyUserID, "u-9") },
		UserContext(),
		func(c *gin.Context) {
			actor = security.ActorFrom(c.Request.Context())
			c.Status(http.StatusNoContent)
		},
	)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "u-9", actor.UserID)
	assert.Equal(t, "192.0.2.10", actor.ClientIP)
}
