package apperr_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DjordjeVuckovic/ticker-news/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := apperr.NewValidation("ticker is required")
	assert.Equal(t, "ticker is required", err.Error())
	assert.Nil(t, err.Unwrap())

	inner := fmt.Errorf("parsing time \"yesterday\"")
	wrapped := apperr.NewValidationWrap("invalid from", inner)
	assert.Equal(t, "invalid from: parsing time \"yesterday\"", wrapped.Error())
	assert.ErrorIs(t, wrapped, inner)
}

func TestValidationError_SurvivesFmtWrapping(t *testing.T) {
	err := fmt.Errorf("run ACME: %w", fmt.Errorf("backfill: %w", apperr.NewValidation("backfill requires a start date")))

	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "backfill requires a start date", ve.Message)

	plain := fmt.Errorf("storage error: %w", errors.New("database connection failed"))
	assert.False(t, errors.As(plain, &ve))
}

func TestSentinels_SurviveWrapping(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("put news item: %w", fmt.Errorf("%w: %w", apperr.ErrStorageUnavailable, cause))

	assert.ErrorIs(t, err, apperr.ErrStorageUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, apperr.ErrFetchFailed)
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"storage", fmt.Errorf("commit: %w", apperr.ErrStorageUnavailable), true},
		{"fetch timeout", fmt.Errorf("%w: ACME: %w", apperr.ErrFetchFailed, context.DeadlineExceeded), true},
		{"ledger mode", apperr.ErrLedgerMode, false},
		{"validation", apperr.NewValidation("ticker is required"), false},
		{"cancelled", context.Canceled, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, apperr.Retryable(tc.err))
		})
	}
}
