package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

// PostgreSQL error codes the repositories react to.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// IsRetryable reports whether err is a serialization failure or deadlock.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}

// Classify maps constraint violations onto the shared error taxonomy. Errors that already carry
// a shared sentinel, and errors that are not PostgreSQL errors, are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s", shared.ErrDuplicate, constraintDetail(pgErr))
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %s", shared.ErrReferenced, constraintDetail(pgErr))
	case codeCheckViolation:
		return fmt.Errorf("%w: %s", shared.ErrInvalidArgument, constraintDetail(pgErr))
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%w: %s", shared.ErrRetryable, pgErr.Message)
	default:
		return err
	}
}

func constraintDetail(pgErr *pgconn.PgError) string {
	if pgErr.Detail != "" {
		return pgErr.Detail
	}
	if pgErr.ConstraintName != "" {
		return pgErr.ConstraintName
	}
	return pgErr.Message
}
