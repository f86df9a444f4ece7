package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/internal/core/apperror"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"lock timeout", "55P03", apperror.CodeLockTimeout},
		{"deadlock", "40P01", apperror.CodeLockTimeout},
		{"serialization", "40001", apperror.CodeLockTimeout},
		{"unique", "23505", apperror.CodeDuplicate},
		{"check", "23514", apperror.CodeInsufficientStock},
		{"foreign key", "23503", apperror.CodeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("lock variants: %w", &pgconn.PgError{Code: tt.code, ConstraintName: "c"})
			err := TranslateError(wrapped, "variant")
			assert.True(t, apperror.HasCode(err, tt.want), "got %v", err)
		})
	}
}

func TestTranslateErrorRetryable(t *testing.T) {
	err := TranslateError(&pgconn.PgError{Code: "55P03"}, "variant")
	assert.True(t, apperror.IsRetryable(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "55P03", appErr.Details["sqlstate"])
}

func TestTranslateErrorPassThrough(t *testing.T) {
	assert.NoError(t, TranslateError(nil, "sale"))

	plain := errors.New("connection reset")
	assert.Same(t, plain, TranslateError(plain, "sale"))

	unknown := &pgconn.PgError{Code: "22P02"}
	assert.Equal(t, error(unknown), TranslateError(unknown, "sale"))

	appErr := apperror.NewNotFound("sale", "x")
	assert.Same(t, appErr, TranslateError(appErr, "sale").(*apperror.AppError))
}
