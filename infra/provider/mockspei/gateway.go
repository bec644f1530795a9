package mockspei

import (
	"context"
	"fmt"
	"sync"

	"github.com/amirasaad/speibank/pkg/provider/spei"
)

// Gateway simulates the SPEI gateway for local development and tests.
//
// Every Send is initialized unless a rejection was queued with RejectNext.
// Status reports Settled for known wires; Return flips a wire to Returned.
// This is NOT for production use.
type Gateway struct {
	mu         sync.Mutex
	sent       []spei.SendRequest
	statuses   map[string]spei.StatusResult
	inbound    map[string][]spei.InboundTransfer
	invalid    map[string]string
	rejectNext []string
	seq        int
}

var _ spei.Gateway = (*Gateway)(nil)

// New creates an empty mock gateway.
func New() *Gateway {
	return &Gateway{
		statuses: make(map[string]spei.StatusResult),
		inbound:  make(map[string][]spei.InboundTransfer),
		invalid:  make(map[string]string),
	}
}

// Send records req and answers Initialized or the next queued rejection.
func (g *Gateway) Send(_ context.Context, req spei.SendRequest) (spei.SendResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, req)
	if len(g.rejectNext) > 0 {
		reason := g.rejectNext[0]
		g.rejectNext = g.rejectNext[1:]
		return spei.Rejected{Reason: reason}, nil
	}
	g.seq++
	id := fmt.Sprintf("mock-%06d", g.seq)
	g.statuses[req.TrackingCode] = spei.Settled{}
	return spei.Initialized{TrackingID: id}, nil
}

// Status returns the recorded state, or Pending for unknown codes.
func (g *Gateway) Status(_ context.Context, trackingCode string) (spei.StatusResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if st, ok := g.statuses[trackingCode]; ok {
		return st, nil
	}
	return spei.Pending{State: "unknown"}, nil
}

// ListInbound returns wires queued with AddInbound.
func (g *Gateway) ListInbound(_ context.Context, beneficiaryClabe string) ([]spei.InboundTransfer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]spei.InboundTransfer(nil), g.inbound[beneficiaryClabe]...), nil
}

// ValidateDeposit fails for tracking codes marked with Invalidate.
func (g *Gateway) ValidateDeposit(_ context.Context, in spei.InboundTransfer) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if reason, ok := g.invalid[in.TrackingCode]; ok {
		return spei.NewRejectedError(reason)
	}
	return nil
}

// RejectNext queues a rejection for the next Send.
func (g *Gateway) RejectNext(reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rejectNext = append(g.rejectNext, reason)
}

// Return marks a sent wire as returned by the receiving bank.
func (g *Gateway) Return(trackingCode, reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statuses[trackingCode] = spei.Returned{Reason: reason}
}

// SetPending marks a wire as still in flight.
func (g *Gateway) SetPending(trackingCode, state string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statuses[trackingCode] = spei.Pending{State: state}
}

// AddInbound queues an inbound wire for its beneficiary CLABE.
func (g *Gateway) AddInbound(in spei.InboundTransfer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inbound[in.BeneficiaryAccount] = append(g.inbound[in.BeneficiaryAccount], in)
}

// Invalidate makes ValidateDeposit reject trackingCode.
func (g *Gateway) Invalidate(trackingCode, reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.invalid[trackingCode] = reason
}

// Sent returns a copy of every request received by Send.
func (g *Gateway) Sent() []spei.SendRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]spei.SendRequest(nil), g.sent...)
}
