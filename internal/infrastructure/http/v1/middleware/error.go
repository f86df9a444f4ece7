package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"retailpos/internal/core/apperror"
	"retailpos/pkg/logger"
)

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		renderError(c)
	}
}

// renderError writes the last error registered on c, unless a response was
// already written.
func renderError(c *gin.Context) {
	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}
	err := c.Errors.Last().Err
	ctx := c.Request.Context()

	status := http.StatusInternalServerError
	var body gin.H

	if appErr, ok := apperror.AsAppError(err); ok && appErr.Code != apperror.CodeInternal {
		if appErr.Err != nil {
			logger.Warn(ctx, "request error", "code", appErr.Code, "cause", appErr.Err)
		}
		status = appErr.HTTPStatus
		body = gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
			"details": appErr.Details,
		}
	} else {
		logger.Error(ctx, "unhandled error", "error", err)
		body = gin.H{
			"code":    apperror.CodeInternal,
			"message": "Internal server error",
			"details": map[string]any{
				"request_id": c.GetString(ctxKeyRequestID),
			},
		}
	}

	// A retry with the same key replays this failure, except for retryable
	// ones, where the key is released so the retry runs again.
	if apperror.IsRetryable(err) {
		releaseIdempotency(c)
	} else {
		failIdempotency(c, status, body)
	}

	c.JSON(status, body)
}
