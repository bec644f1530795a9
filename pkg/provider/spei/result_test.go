package spei

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmed(t *testing.T) {
	id, err := Confirmed(Initialized{TrackingID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	_, err = Confirmed(Rejected{Reason: "cuenta inexistente"})
	require.ErrorIs(t, err, ErrRejected)
	var rej *RejectedError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, "cuenta inexistente", rej.Reason)

	_, err = Confirmed(Rejected{})
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, DefaultRejectReason, rej.Reason)

	_, err = Confirmed(Malformed{Raw: "<html>"})
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.NotErrorIs(t, err, ErrRejected)
}
