// Package testutils builds a fully wired HTTP app for route tests.
package testutils

import (
	"context"
	"testing"
	"time"

	infraeventbus "github.com/amirasaad/speibank/infra/eventbus"
	"github.com/amirasaad/speibank/infra/provider/mockspei"
	"github.com/amirasaad/speibank/infra/repository/memory"
	"github.com/amirasaad/speibank/pkg/app"
	"github.com/amirasaad/speibank/pkg/config"
	"github.com/amirasaad/speibank/pkg/dto"
	"github.com/amirasaad/speibank/pkg/testutils"
	"github.com/amirasaad/speibank/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// CollectorClabe receives commissions in test apps.
	CollectorClabe = "646180218000000001"
	InternalPrefix = "6461802180"
)

// Env is an HTTP app over the in-memory ledger and the mock gateway.
type Env struct {
	App      *fiber.App
	Services *app.App
	Store    *memory.Store
	Gateway  *mockspei.Gateway
	Bus      *infraeventbus.MemoryEventBus
	Config   *config.App
}

// TestConfig returns the configuration route tests run with.
func TestConfig() *config.App {
	return &config.App{
		Env:       "test",
		Auth:      &config.Auth{Jwt: &config.Jwt{Secret: "test-secret", Expiry: time.Hour}},
		RateLimit: &config.RateLimit{MaxRequests: 1000, Window: time.Second},
		Transfer: &config.Transfer{
			InternalPrefix:    InternalPrefix,
			DefaultCommission: decimal.RequireFromString("5.80"),
			CollectorClabe:    CollectorClabe,
			TrackingPrefix:    "CEDI",
		},
	}
}

// NewEnv builds an Env with cfg, or TestConfig when cfg is nil. The
// commission collector account is opened.
func NewEnv(t testing.TB, cfg *config.App) *Env {
	t.Helper()
	if cfg == nil {
		cfg = TestConfig()
	}
	store := memory.NewStore()
	logger := testutils.DiscardLogger()
	gateway := mockspei.New()
	bus := infraeventbus.NewWithMemory(logger)
	services := app.New(&app.Deps{
		Uow:      store,
		Gateway:  gateway,
		EventBus: bus,
		Logger:   logger,
	}, cfg)
	env := &Env{
		App:      webapi.SetupApp(services),
		Services: services,
		Store:    store,
		Gateway:  gateway,
		Bus:      bus,
		Config:   cfg,
	}
	env.OpenAccount(t, CollectorClabe, "0")
	return env
}

// OpenAccount creates an account with the given CLABE and balance.
func (e *Env) OpenAccount(t testing.TB, clabe, balance string) uuid.UUID {
	t.Helper()
	return OpenAccount(t, e.Services, clabe, balance)
}

// Token issues a bearer token for an account.
func (e *Env) Token(t testing.TB, accountID uuid.UUID) string {
	t.Helper()
	token, err := e.Services.AuthService.GenerateToken(context.Background(), accountID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// OpenAccount opens an account through the account service of services.
func OpenAccount(t testing.TB, services *app.App, clabe, balance string) uuid.UUID {
	t.Helper()
	acc, err := services.AccountService.Open(context.Background(), dto.AccountCreate{
		Email:      clabe + "@example.com",
		GivenName:  "Cuenta",
		FamilyName: clabe[len(clabe)-4:],
		Clabe:      clabe,
		Balance:    decimal.RequireFromString(balance),
	})
	if err != nil {
		t.Fatalf("open account %s: %v", clabe, err)
	}
	return acc.ID
}
