package app

import (
	"context"
	"log/slog"

	"github.com/amirasaad/speibank/pkg/bank"
	"github.com/amirasaad/speibank/pkg/config"
	"github.com/amirasaad/speibank/pkg/domain/money"
	"github.com/amirasaad/speibank/pkg/eventbus"
	"github.com/amirasaad/speibank/pkg/handler/audit"
	"github.com/amirasaad/speibank/pkg/provider/spei"
	"github.com/amirasaad/speibank/pkg/repository"
	"github.com/amirasaad/speibank/pkg/service/account"
	"github.com/amirasaad/speibank/pkg/service/auth"
	"github.com/amirasaad/speibank/pkg/service/contact"
	"github.com/amirasaad/speibank/pkg/service/pending"
	"github.com/amirasaad/speibank/pkg/service/settlement"
	"github.com/amirasaad/speibank/pkg/service/transfer"
)

// Deps contains the infrastructure the services are built on.
type Deps struct {
	Uow       repository.UnitOfWork
	Gateway   spei.Gateway
	EventBus  eventbus.Bus
	Directory *bank.Directory
	Logger    *slog.Logger
}

type App struct {
	Deps              *Deps
	Config            *config.App
	AuthService       *auth.Service
	AccountService    *account.Service
	ContactService    *contact.Service
	TransferService   *transfer.Service
	PendingService    *pending.Service
	SettlementService *settlement.Service
	Reconciliation    *audit.Reconciliation
}

func New(deps *Deps, cfg *config.App) *App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Directory == nil {
		deps.Directory = bank.Default(institutionCode(cfg))
	}
	app := &App{
		Deps:           deps,
		Config:         cfg,
		Reconciliation: audit.NewReconciliation(),
	}
	app.setupEventBus()

	jwtCfg := &config.Jwt{}
	if cfg != nil && cfg.Auth != nil && cfg.Auth.Jwt != nil {
		jwtCfg = cfg.Auth.Jwt
	}
	var transferCfg *config.Transfer
	if cfg != nil {
		transferCfg = cfg.Transfer
	}

	app.AuthService = auth.New(deps.Uow, jwtCfg, deps.Logger)
	app.AccountService = account.New(deps.Uow, deps.Logger)
	app.ContactService = contact.New(deps.Uow, deps.Directory, deps.Logger)
	app.TransferService = transfer.New(transfer.Deps{
		Uow:       deps.Uow,
		Gateway:   deps.Gateway,
		EventBus:  deps.EventBus,
		Directory: deps.Directory,
		Contacts:  app.ContactService,
		Committer: committedWireLogger(deps.Logger),
		Config:    transferCfg,
		Logger:    deps.Logger,
	})
	app.PendingService = pending.New(deps.Uow, app.TransferService, deps.Logger)
	app.SettlementService = settlement.New(settlement.Deps{
		Uow:       deps.Uow,
		Gateway:   deps.Gateway,
		EventBus:  deps.EventBus,
		Directory: deps.Directory,
		Logger:    deps.Logger,
	})
	return app
}

// committedWireLogger marks the point after which a wire cannot be undone
// locally.
func committedWireLogger(logger *slog.Logger) transfer.Committer {
	return transfer.CommitterFunc(func(_ context.Context, c transfer.Commit) {
		logger.Info("🟡 [COMMIT] Wire accepted by the settlement gateway",
			"tracking_code", c.TrackingCode,
			"gateway_tracking_id", c.GatewayTrackingID,
			"sender_id", c.SenderID,
			"amount", money.Format(c.Amount),
		)
	})
}

func institutionCode(cfg *config.App) string {
	if cfg != nil && cfg.Spei != nil && cfg.Spei.InstitucionOperante != "" {
		return cfg.Spei.InstitucionOperante
	}
	return bank.DefaultInstitutionCode
}
