package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Transient("enrichment call failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "enrichment call failed: connection reset", err.Error())
}

func TestAppErrorWrappedDetection(t *testing.T) {
	inner := SchemaMismatch("no compatible join key column")
	outer := fmt.Errorf("prepare batch query: %w", inner)

	assert.True(t, IsSchemaMismatch(outer))
	assert.Equal(t, ErrCodeSchemaMismatch, GetCode(outer))
	assert.False(t, IsRetryable(outer))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"transient", Transientf("upstream returned 503"), true},
		{"rate limited", RateLimited("429 from provider"), true},
		{"timeout", &AppError{Code: ErrCodeTimeout, Message: "timed out"}, true},
		{"validation", Validation("bad row"), false},
		{"schema mismatch", SchemaMismatch("column missing"), false},
		{"circuit open", &AppError{Code: ErrCodeCircuitOpen, Message: "breaker open"}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "ignored"))
	assert.Nil(t, Wrapf(nil, ErrCodeInternal, "ignored %d", 1))
}

func TestMapDBError(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, MapDBError(nil))
	})

	t.Run("no rows maps to not found", func(t *testing.T) {
		err := MapDBError(pgx.ErrNoRows)
		assert.True(t, IsNotFound(err))
	})

	t.Run("context deadline maps to timeout", func(t *testing.T) {
		err := MapDBError(fmt.Errorf("query: %w", context.DeadlineExceeded))
		assert.True(t, IsTimeout(err))
	})

	t.Run("context canceled maps to canceled", func(t *testing.T) {
		err := MapDBError(context.Canceled)
		assert.True(t, IsCanceled(err))
	})

	t.Run("undefined column maps to schema mismatch", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: pgerrcode.UndefinedColumn}
		err := MapDBError(pgErr)
		assert.True(t, IsSchemaMismatch(err))
	})

	t.Run("deadlock maps to transient", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: pgerrcode.DeadlockDetected}
		err := MapDBError(pgErr)
		assert.True(t, IsRetryable(err))
	})

	t.Run("unique violation maps to validation with field", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ColumnName: "address_norm"}
		err := MapDBError(pgErr)
		require.True(t, IsValidation(err))

		var appErr *AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "address_norm", appErr.Field)
	})

	t.Run("unrecognized error passes through", func(t *testing.T) {
		plain := errors.New("boom")
		assert.Equal(t, plain, MapDBError(plain))
	})
}
