// Package account exposes balance, history and settlement follow-up for the
// authenticated account.
package account

import (
	"github.com/amirasaad/speibank/pkg/config"
	"github.com/amirasaad/speibank/pkg/middleware"
	accountsvc "github.com/amirasaad/speibank/pkg/service/account"
	authsvc "github.com/amirasaad/speibank/pkg/service/auth"
	"github.com/amirasaad/speibank/pkg/service/settlement"
	"github.com/amirasaad/speibank/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

const defaultPageSize = 50

// Routes registers the account endpoints. All of them act on the account
// named by the bearer token.
//
// Routes:
//   - GET  /accounts/me                  : Profile and balance.
//   - GET  /accounts/me/movements        : Movement history, newest first.
//   - POST /accounts/me/inbound/sync     : Book inbound wires from the gateway.
//   - GET  /movements/:tracking          : Own movements with a tracking code.
//   - POST /movements/:tracking/refresh  : Refresh the settlement state of a wire.
func Routes(
	app *fiber.App,
	accountSvc *accountsvc.Service,
	settlementSvc *settlement.Service,
	authSvc *authsvc.Service,
	cfg *config.Auth,
) {
	var jwtCfg *config.Jwt
	if cfg != nil {
		jwtCfg = cfg.Jwt
	}
	protected := middleware.JwtProtected(jwtCfg)
	app.Get("/accounts/me", protected, Me(accountSvc, authSvc))
	app.Get("/accounts/me/movements", protected, Movements(accountSvc, authSvc))
	app.Post("/accounts/me/inbound/sync", protected, SyncInbound(settlementSvc, authSvc))
	app.Get("/movements/:tracking", protected, MovementsByTracking(accountSvc, authSvc))
	app.Post("/movements/:tracking/refresh", protected, RefreshStatus(accountSvc, settlementSvc, authSvc))
}

// Me returns the caller's profile.
func Me(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.CurrentAccountID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		a, err := accountSvc.Get(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account fetched", toAccountResponse(a))
	}
}

// Movements lists the caller's ledger rows. Query: limit, offset.
func Movements(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.CurrentAccountID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		limit, err := common.IntQuery(c, "limit", defaultPageSize)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid query", err)
		}
		offset, err := common.IntQuery(c, "offset", 0)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid query", err)
		}
		ms, err := accountSvc.Movements(c.UserContext(), id, limit, offset)
		if err != nil {
			log.Errorf("Failed to list movements for %s: %v", id, err)
			return common.ProblemDetailsJSON(c, "Failed to list movements", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Movements fetched", toMovementResponses(ms))
	}
}

// MovementsByTracking returns the caller's rows for a tracking code.
func MovementsByTracking(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.CurrentAccountID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		ms, err := accountSvc.MovementsByTracking(c.UserContext(), id, c.Params("tracking"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Movement not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Movements fetched", toMovementResponses(ms))
	}
}

// RefreshStatus asks the gateway for the state of one of the caller's
// outbound wires and applies it.
func RefreshStatus(
	accountSvc *accountsvc.Service,
	settlementSvc *settlement.Service,
	authSvc *authsvc.Service,
) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.CurrentAccountID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		code := c.Params("tracking")
		if _, err := accountSvc.MovementsByTracking(c.UserContext(), id, code); err != nil {
			return common.ProblemDetailsJSON(c, "Movement not found", err)
		}
		report, err := settlementSvc.RefreshStatus(c.UserContext(), code)
		if err != nil {
			log.Errorf("Failed to refresh %s: %v", code, err)
			return common.ProblemDetailsJSON(c, "Failed to refresh status", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Status refreshed", toStatusResponse(report))
	}
}

// SyncInbound books the wires received on the caller's CLABE.
func SyncInbound(settlementSvc *settlement.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.CurrentAccountID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		report, err := settlementSvc.SyncInbound(c.UserContext(), id)
		if err != nil {
			log.Errorf("Inbound sync for %s finished with errors: %v", id, err)
			if report != nil {
				return common.ProblemDetailsJSON(c, "Inbound sync incomplete", err, toSyncResponse(report))
			}
			return common.ProblemDetailsJSON(c, "Inbound sync failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Inbound wires synced", toSyncResponse(report))
	}
}
