package spei

import (
	"errors"
	"fmt"
)

// DefaultRejectReason is surfaced when the gateway gives no message.
const DefaultRejectReason = "the settlement gateway could not process the transfer"

var (
	// ErrRejected matches every *RejectedError.
	ErrRejected = errors.New("settlement gateway rejected the request")
	// ErrMalformedResponse is returned when a response has no usable shape.
	ErrMalformedResponse = errors.New("malformed settlement gateway response")
)

// SendResult is one of Initialized, Rejected or Malformed.
type SendResult interface {
	sendResult()
}

// Initialized is the only successful send outcome.
type Initialized struct {
	TrackingID string
	Raw        map[string]any
}

// Rejected is a well-formed negative answer.
type Rejected struct {
	Reason string
	Raw    map[string]any
}

// Malformed is a response that matched neither shape, including a 2xx with
// an unexpected status.
type Malformed struct {
	Raw string
}

func (Initialized) sendResult() {}
func (Rejected) sendResult()    {}
func (Malformed) sendResult()   {}

// StatusResult is one of Settled, Returned or Pending.
type StatusResult interface {
	statusResult()
}

// Settled means the wire was liquidated.
type Settled struct {
	Raw map[string]any
}

// Returned means the receiving bank sent the funds back.
type Returned struct {
	Reason string
	Raw    map[string]any
}

// Pending is any other state. It is not an error.
type Pending struct {
	State string
	Raw   map[string]any
}

func (Settled) statusResult()  {}
func (Returned) statusResult() {}
func (Pending) statusResult()  {}

// RejectedError is the error form of a negative gateway answer.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("settlement gateway rejected the transfer: %s", e.Reason)
}

func (e *RejectedError) Is(target error) bool { return target == ErrRejected }

// NewRejectedError falls back to DefaultRejectReason on empty input.
func NewRejectedError(reason string) *RejectedError {
	if reason == "" {
		reason = DefaultRejectReason
	}
	return &RejectedError{Reason: reason}
}

// Confirmed unwraps a SendResult into the gateway tracking id or an error.
func Confirmed(res SendResult) (string, error) {
	switch r := res.(type) {
	case Initialized:
		return r.TrackingID, nil
	case Rejected:
		return "", NewRejectedError(r.Reason)
	case Malformed:
		return "", fmt.Errorf("%w: %s", ErrMalformedResponse, truncate(r.Raw, 256))
	default:
		return "", ErrMalformedResponse
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
