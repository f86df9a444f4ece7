package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"retailpos/internal/core/apperror"
)

// PostgreSQL error codes the ledger reacts to.
const (
	pgLockNotAvailable     = "55P03"
	pgDeadlockDetected     = "40P01"
	pgSerializationFailure = "40001"
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
	pgForeignKeyViolation  = "23503"
)

// TranslateError maps driver errors to AppErrors. Lock waits that hit
// lock_timeout, deadlocks and serialization failures become the retryable
// LOCK_TIMEOUT. Anything already an AppError passes through unchanged.
func TranslateError(err error, entity string) error {
	if err == nil || apperror.IsAppError(err) {
		return err
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgLockNotAvailable, pgDeadlockDetected, pgSerializationFailure:
		return apperror.NewLockTimeout(entity).
			WithDetail("sqlstate", pgErr.Code).
			WithCause(err)
	case pgUniqueViolation:
		return apperror.NewDuplicate(entity, constraintField(pgErr), "").WithCause(err)
	case pgCheckViolation:
		// stock_qty >= 0 is the last line of defence behind the mutator's checks.
		return apperror.NewBusinessRule(apperror.CodeInsufficientStock, "Stock cannot go negative").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case pgForeignKeyViolation:
		return apperror.NewConflict("Referenced record does not exist").
			WithDetail("entity", entity).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	}
	return err
}

func constraintField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	return pgErr.ConstraintName
}
