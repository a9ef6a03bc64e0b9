package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportError(t *testing.T) {
	err := NewTransportError("/api/option-chain-equities", 401, "401 Unauthorized", ErrChainUnavailable)

	assert.True(t, Is(err, ErrChainUnavailable))
	assert.Contains(t, err.Error(), "status=401")

	wrapped := fmt.Errorf("fetching TCS: %w", err)
	var tErr *TransportError
	require.True(t, As(wrapped, &tErr))
	assert.Equal(t, 401, tErr.Status)

	bare := NewTransportError("/", 0, "request failed", nil)
	assert.NotContains(t, bare.Error(), "<nil>")
}

func TestValidationErrorUnwrapsToSentinel(t *testing.T) {
	err := Wrap(NewValidationError("spot", -1.0, "must be positive"), "recommend")

	assert.True(t, Is(err, ErrInputValidation))
	var vErr *ValidationError
	require.True(t, As(err, &vErr))
	assert.Equal(t, "spot", vErr.Field)
}

func TestDataError(t *testing.T) {
	err := NewDataError("option_chain", "TCS", "response is not JSON", ErrDataNotFound)
	assert.True(t, Is(err, ErrDataNotFound))
	assert.Contains(t, err.Error(), "TCS")
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "context"))
	assert.NoError(t, Wrapf(nil, "context %d", 1))
	assert.EqualError(t, Wrapf(ErrTimeout, "symbol %s", "TCS"), "symbol TCS: operation timed out")
}
