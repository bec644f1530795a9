package settlement

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	infraeventbus "github.com/amirasaad/speibank/infra/eventbus"
	"github.com/amirasaad/speibank/infra/provider/mockspei"
	"github.com/amirasaad/speibank/infra/repository/memory"
	"github.com/amirasaad/speibank/pkg/domain/account"
	"github.com/amirasaad/speibank/pkg/domain/events"
	"github.com/amirasaad/speibank/pkg/domain/movement"
	"github.com/amirasaad/speibank/pkg/dto"
	"github.com/amirasaad/speibank/pkg/provider/spei"
	"github.com/amirasaad/speibank/pkg/repository"
	accountrepo "github.com/amirasaad/speibank/pkg/repository/account"
	movementrepo "github.com/amirasaad/speibank/pkg/repository/movement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const accountClabe = "646180218000000101"

type harness struct {
	store   *memory.Store
	gateway *mockspei.Gateway
	bus     *infraeventbus.MemoryEventBus
	svc     *Service
	account uuid.UUID
}

func newHarness(t *testing.T, balance string) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &harness{
		store:   memory.NewStore(),
		gateway: mockspei.New(),
		bus:     infraeventbus.NewWithMemory(logger),
	}
	h.svc = New(Deps{Uow: h.store, Gateway: h.gateway, EventBus: h.bus, Logger: logger})

	repo, err := repository.GetRepo[accountrepo.Repository](h.store)
	require.NoError(t, err)
	h.account = uuid.New()
	require.NoError(t, repo.Create(context.Background(), dto.AccountCreate{
		ID: h.account, Email: "ana@example.com", Clabe: accountClabe,
		Balance: decimal.RequireFromString(balance),
	}))
	return h
}

func (h *harness) outbound(t *testing.T, code, status string) uuid.UUID {
	t.Helper()
	repo, err := repository.GetRepo[movementrepo.Repository](h.store)
	require.NoError(t, err)
	id := uuid.New()
	require.NoError(t, repo.Create(context.Background(), dto.MovementCreate{
		ID:           id,
		AccountID:    h.account,
		Category:     string(movement.CategoryWire),
		Direction:    string(movement.DirectionOutbound),
		Status:       status,
		Amount:       decimal.RequireFromString("100"),
		Commission:   decimal.RequireFromString("5.80"),
		FinalAmount:  decimal.RequireFromString("105.80"),
		TrackingCode: code,
	}))
	return id
}

func (h *harness) movement(t *testing.T, id uuid.UUID) dto.MovementRead {
	t.Helper()
	for _, m := range h.store.Movements() {
		if m.ID == id {
			return m
		}
	}
	t.Fatalf("movement %s not found", id)
	return dto.MovementRead{}
}

func TestRefreshStatus_Settled(t *testing.T) {
	h := newHarness(t, "0")
	id := h.outbound(t, "CEDI00000001", string(movement.StatusProcessing))
	_, _ = h.gateway.Send(context.Background(), spei.SendRequest{TrackingCode: "CEDI00000001"})

	report, err := h.svc.RefreshStatus(context.Background(), "CEDI00000001")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSettled, report.Outcome)
	assert.Equal(t, string(movement.StatusCompleted), h.movement(t, id).Status)

	report, err = h.svc.RefreshStatus(context.Background(), "CEDI00000001")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, report.Outcome)
}

func TestRefreshStatus_ReturnedRefundsPrincipal(t *testing.T) {
	h := newHarness(t, "394.20")
	id := h.outbound(t, "CEDI00000002", string(movement.StatusCompleted))
	h.gateway.Return("CEDI00000002", "Cuenta inexistente")

	report, err := h.svc.RefreshStatus(context.Background(), "CEDI00000002")
	require.NoError(t, err)
	assert.Equal(t, OutcomeReturned, report.Outcome)
	assert.Equal(t, "Cuenta inexistente", report.Reason)
	assert.True(t, report.Refunded.Equal(decimal.RequireFromString("100")))

	m := h.movement(t, id)
	assert.Equal(t, string(movement.StatusReversed), m.Status)
	assert.Equal(t, "Cuenta inexistente", m.Metadata["return_reason"])

	acc, _ := h.store.Account(h.account)
	assert.True(t, acc.Balance.Equal(decimal.RequireFromString("494.20")))

	published := h.bus.Published()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventTypeSettlementReturned.String(), published[0].Type())

	_, err = h.svc.RefreshStatus(context.Background(), "CEDI00000002")
	require.NoError(t, err)
	acc, _ = h.store.Account(h.account)
	assert.True(t, acc.Balance.Equal(decimal.RequireFromString("494.20")), "refund happens once")
}

func TestRefreshStatus_PendingAndUnknown(t *testing.T) {
	h := newHarness(t, "0")
	id := h.outbound(t, "CEDI00000003", string(movement.StatusCompleted))
	h.gateway.SetPending("CEDI00000003", "EN_PROCESO")

	report, err := h.svc.RefreshStatus(context.Background(), "CEDI00000003")
	require.NoError(t, err)
	assert.Equal(t, OutcomePending, report.Outcome)
	assert.Equal(t, "EN_PROCESO", report.GatewayState)
	assert.Equal(t, string(movement.StatusCompleted), h.movement(t, id).Status)

	_, err = h.svc.RefreshStatus(context.Background(), "CEDI99999999")
	assert.ErrorIs(t, err, movement.ErrMovementNotFound)
}

// gatedGateway holds every Status call until all expected callers arrived,
// so concurrent refreshes all read the wire before any of them writes.
type gatedGateway struct {
	*mockspei.Gateway
	arrived sync.WaitGroup
}

func (g *gatedGateway) Status(ctx context.Context, trackingCode string) (spei.StatusResult, error) {
	g.arrived.Done()
	g.arrived.Wait()
	return g.Gateway.Status(ctx, trackingCode)
}

func TestRefreshStatus_ConcurrentReturnRefundsOnce(t *testing.T) {
	h := newHarness(t, "0")
	id := h.outbound(t, "CEDI00000005", string(movement.StatusCompleted))
	h.gateway.Return("CEDI00000005", "Cuenta cancelada")

	const callers = 2
	gw := &gatedGateway{Gateway: h.gateway}
	gw.arrived.Add(callers)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(Deps{Uow: h.store, Gateway: gw, EventBus: h.bus, Logger: logger})

	var wg sync.WaitGroup
	reports := make([]*StatusReport, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reports[i], errs[i] = svc.RefreshStatus(context.Background(), "CEDI00000005")
		}()
	}
	wg.Wait()

	outcomes := map[Outcome]int{}
	for i := range callers {
		require.NoError(t, errs[i])
		outcomes[reports[i].Outcome]++
	}
	assert.Equal(t, 1, outcomes[OutcomeReturned])
	assert.Equal(t, 1, outcomes[OutcomeUnchanged])

	acc, _ := h.store.Account(h.account)
	assert.True(t, acc.Balance.Equal(decimal.RequireFromString("100")), "got %s", acc.Balance)
	assert.Equal(t, string(movement.StatusReversed), h.movement(t, id).Status)
	assert.Len(t, h.bus.Published(), 1)
}

func TestRefreshStatus_ReverseRollsBackOnCreditFailure(t *testing.T) {
	h := newHarness(t, "0")
	id := h.outbound(t, "CEDI00000004", string(movement.StatusCompleted))
	h.gateway.Return("CEDI00000004", "x")
	h.store.FailOn("account.Credit", errors.New("db down"))

	_, err := h.svc.RefreshStatus(context.Background(), "CEDI00000004")
	require.Error(t, err)
	m := h.movement(t, id)
	assert.Equal(t, string(movement.StatusCompleted), m.Status)
	assert.NotContains(t, m.Metadata, "return_reason")
}

func TestSyncInbound(t *testing.T) {
	h := newHarness(t, "10")
	h.gateway.AddInbound(spei.InboundTransfer{
		ID: "1", TrackingCode: "BNET01", Amount: decimal.RequireFromString("250.00"),
		OrderingName: "Juan", OrderingAccount: "012180001234567891",
		BeneficiaryAccount: accountClabe, OperationDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	h.gateway.AddInbound(spei.InboundTransfer{
		ID: "2", TrackingCode: "BNET02", Amount: decimal.RequireFromString("40"),
		BeneficiaryAccount: accountClabe,
	})
	h.gateway.AddInbound(spei.InboundTransfer{
		ID: "3", TrackingCode: "BNET03", Amount: decimal.RequireFromString("5"),
		BeneficiaryAccount: accountClabe, Estado: spei.EstadoReturned,
	})
	h.gateway.Invalidate("BNET02", "datos no coinciden")

	report, err := h.svc.SyncInbound(context.Background(), h.account)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Booked)
	assert.Equal(t, 1, report.Rejected)
	assert.Equal(t, 1, report.Skipped)
	assert.True(t, report.Credited.Equal(decimal.RequireFromString("250")))

	acc, _ := h.store.Account(h.account)
	assert.True(t, acc.Balance.Equal(decimal.RequireFromString("260")))

	movements := h.store.Movements()
	require.Len(t, movements, 1)
	assert.Equal(t, string(movement.DirectionInbound), movements[0].Direction)
	assert.Equal(t, string(movement.CategoryWire), movements[0].Category)
	assert.Equal(t, "BBVA MEXICO", movements[0].CounterpartyBank)
	assert.Equal(t, "2026-03-01", movements[0].Metadata["operation_date"])

	published := h.bus.Published()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventTypeInboundCredited.String(), published[0].Type())

	report, err = h.svc.SyncInbound(context.Background(), h.account)
	require.NoError(t, err)
	assert.Zero(t, report.Booked, "second sync books nothing")
	acc, _ = h.store.Account(h.account)
	assert.True(t, acc.Balance.Equal(decimal.RequireFromString("260")))
}

func TestSyncInbound_Errors(t *testing.T) {
	h := newHarness(t, "0")
	_, err := h.svc.SyncInbound(context.Background(), uuid.New())
	assert.ErrorIs(t, err, account.ErrAccountNotFound)

	h.gateway.AddInbound(spei.InboundTransfer{
		TrackingCode: "BNET09", Amount: decimal.RequireFromString("1"), BeneficiaryAccount: accountClabe,
	})
	h.store.FailOn("movement.Create", errors.New("disk full"))
	report, err := h.svc.SyncInbound(context.Background(), h.account)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BNET09")
	assert.Zero(t, report.Booked)
	acc, _ := h.store.Account(h.account)
	assert.True(t, acc.Balance.IsZero())
}
