package movement

import (
	"bytes"
	"crypto/rand"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrackingCode(t *testing.T) {
	pattern := regexp.MustCompile(`^CEDI\d{8}$`)
	for range 50 {
		code, err := NewTrackingCode(rand.Reader, "CEDI")
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestNewTrackingCode_ZeroPadded(t *testing.T) {
	code, err := NewTrackingCode(bytes.NewReader(make([]byte, 64)), "CEDI")
	require.NoError(t, err)
	assert.Equal(t, "CEDI00000000", code)
}

func TestNewTrackingCode_ReaderError(t *testing.T) {
	_, err := NewTrackingCode(bytes.NewReader(nil), "CEDI")
	assert.Error(t, err)
}

func TestNewNumericReference(t *testing.T) {
	ref, err := NewNumericReference(rand.Reader)
	require.NoError(t, err)
	assert.Len(t, ref, 6)
}

func TestFinalAmount(t *testing.T) {
	amount := decimal.NewFromInt(100)
	fee := decimal.RequireFromString("5.80")

	assert.True(t, FinalAmount(DirectionOutbound, amount, fee).Equal(decimal.RequireFromString("105.80")))
	assert.True(t, FinalAmount(DirectionInbound, amount, decimal.Zero).Equal(amount))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusCompleted))
	assert.True(t, CanTransition(StatusCompleted, StatusReversed))
	assert.True(t, CanTransition(StatusCompleted, StatusCompleted))
	assert.False(t, CanTransition(StatusCompleted, StatusPending))
	assert.False(t, CanTransition(StatusReversed, StatusCompleted))
	assert.False(t, CanTransition(StatusFailed, StatusCompleted))
}
