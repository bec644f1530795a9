package app_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	infraeventbus "github.com/amirasaad/speibank/infra/eventbus"
	"github.com/amirasaad/speibank/infra/provider/mockspei"
	"github.com/amirasaad/speibank/infra/repository/memory"
	"github.com/amirasaad/speibank/pkg/app"
	"github.com/amirasaad/speibank/pkg/config"
	"github.com/amirasaad/speibank/pkg/domain/events"
	"github.com/amirasaad/speibank/pkg/dto"
	"github.com/amirasaad/speibank/pkg/service/transfer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*app.App, *memory.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	cfg := &config.App{
		Auth: &config.Auth{Jwt: &config.Jwt{Secret: "test-secret"}},
		Transfer: &config.Transfer{
			InternalPrefix:    "6461802180",
			DefaultCommission: decimal.RequireFromString("5.80"),
			CollectorClabe:    "646180218000000001",
			TrackingPrefix:    "CEDI",
		},
	}
	a := app.New(&app.Deps{
		Uow:      store,
		Gateway:  mockspei.New(),
		EventBus: infraeventbus.NewWithMemory(logger),
		Logger:   logger,
	}, cfg)
	return a, store
}

func openAccount(t *testing.T, a *app.App, clabe, balance string) dto.AccountCreate {
	t.Helper()
	acc, err := a.AccountService.Open(context.Background(), dto.AccountCreate{
		Email:              clabe + "@example.com",
		GivenName:          "Test",
		Clabe:              clabe,
		Balance:            decimal.RequireFromString(balance),
		OutboundCommission: decimal.RequireFromString("5.80"),
	})
	require.NoError(t, err)
	return dto.AccountCreate{ID: acc.ID, Clabe: acc.Clabe}
}

func TestNew_WiresServices(t *testing.T) {
	a, _ := newTestApp(t)

	assert.NotNil(t, a.AuthService)
	assert.NotNil(t, a.AccountService)
	assert.NotNil(t, a.ContactService)
	assert.NotNil(t, a.TransferService)
	assert.NotNil(t, a.PendingService)
	assert.NotNil(t, a.SettlementService)
	assert.NotNil(t, a.Reconciliation)
	assert.NotNil(t, a.Deps.Directory)
}

func TestNew_InternalTransferThroughApp(t *testing.T) {
	a, store := newTestApp(t)
	openAccount(t, a, "646180218000000001", "0")
	sender := openAccount(t, a, "646180218000000101", "500")
	recipient := openAccount(t, a, "646180218000000202", "0")

	res, err := a.TransferService.Execute(context.Background(), transfer.Request{
		SenderID:         sender.ID,
		RecipientName:    "Ana",
		RecipientAccount: recipient.Clabe,
		AccountType:      transfer.AccountTypeClabe,
		Amount:           decimal.RequireFromString("100"),
	})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.True(t, res.NewBalance.Equal(decimal.RequireFromString("400")))

	got, ok := store.Account(recipient.ID)
	require.True(t, ok)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("100")))
	assert.Empty(t, a.Reconciliation.Pending())
}

func TestNew_LedgerFailureIsQueuedForReconciliation(t *testing.T) {
	a, store := newTestApp(t)
	openAccount(t, a, "646180218000000001", "0")
	sender := openAccount(t, a, "646180218000000101", "500")
	store.FailOn("movement.Create", errors.New("connection lost"))

	res, err := a.TransferService.Execute(context.Background(), transfer.Request{
		SenderID:         sender.ID,
		RecipientName:    "Luis",
		RecipientAccount: "012180001234567891",
		AccountType:      transfer.AccountTypeClabe,
		Amount:           decimal.RequireFromString("100"),
	})
	require.ErrorIs(t, err, transfer.ErrLedgerFailed)
	require.NotNil(t, res)

	pending := a.Reconciliation.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, res.TrackingCode, pending[0].TrackingCode)
}

func TestNew_ResolvedWireIsQueuedAgainOnRedelivery(t *testing.T) {
	a, _ := newTestApp(t)
	ev := events.TransferLedgerFailed{
		TransferEvent:     events.TransferEvent{TrackingCode: "CEDI00000009"},
		GatewayTrackingID: "gw-9",
	}
	bus := a.Deps.EventBus

	require.NoError(t, bus.Emit(context.Background(), ev))
	require.NoError(t, bus.Emit(context.Background(), ev))
	require.Len(t, a.Reconciliation.Pending(), 1)

	require.True(t, a.Reconciliation.Resolve("CEDI00000009"))
	assert.Empty(t, a.Reconciliation.Pending())

	require.NoError(t, bus.Emit(context.Background(), ev))
	require.Len(t, a.Reconciliation.Pending(), 1)
}
