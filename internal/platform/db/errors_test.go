package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

func TestClassifyMapsConstraintViolations(t *testing.T) {
	cases := map[string]error{
		"23505": shared.ErrDuplicate,
		"23503": shared.ErrReferenced,
		"23514": shared.ErrInvalidArgument,
		"40001": shared.ErrRetryable,
	}
	for code, want := range cases {
		err := Classify(&pgconn.PgError{Code: code, Message: "boom"})
		require.ErrorIs(t, err, want, code)
	}

	plain := errors.New("plain")
	require.Same(t, plain, Classify(plain))
	require.NoError(t, Classify(nil))
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, func() error {
		calls++
		return shared.ErrInsufficientStock
	})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)
	require.Equal(t, 1, calls)
}

func TestRetryGivesUpAfterSerializationFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, func() error {
		calls++
		return &pgconn.PgError{Code: "40001"}
	})
	require.ErrorIs(t, err, shared.ErrRetryable)
	require.Equal(t, 2, calls)
}

func TestRetrySucceedsAfterDeadlock(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, func() error {
		calls++
		if calls == 1 {
			return &pgconn.PgError{Code: "40P01"}
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestNumericRoundTrip(t *testing.T) {
	d := decimal.RequireFromString("12.34500")
	require.True(t, d.Equal(Decimal(Numeric(d))))
	require.True(t, Decimal(Numeric(decimal.Zero)).IsZero())
}

func TestMigrationNamesSorted(t *testing.T) {
	names, err := migrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	require.Equal(t, "0001_init.sql", names[0])
}
