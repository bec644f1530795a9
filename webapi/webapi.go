// Package webapi wires the HTTP surface of the banking back-end. Routes are
// organized into sub-packages:
//   - transfer: outbound transfers
//   - account: profile, history and settlement follow-up
//   - contact: saved counterparties
//   - pending: team membership and payment approvals
package webapi

import (
	"errors"
	"strings"
	"time"

	"github.com/amirasaad/speibank/pkg/apiutil"
	"github.com/amirasaad/speibank/pkg/app"
	"github.com/amirasaad/speibank/pkg/config"
	accountweb "github.com/amirasaad/speibank/webapi/account"
	contactweb "github.com/amirasaad/speibank/webapi/contact"
	pendingweb "github.com/amirasaad/speibank/webapi/pending"
	transferweb "github.com/amirasaad/speibank/webapi/transfer"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	cfg := a.Config
	if cfg == nil {
		cfg = &config.App{}
	}

	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
			return apiutil.ErrorResponseJSON(c, status, fiber.ErrInternalServerError.Message, err.Error())
		},
	})

	maxRequests, window := 100, time.Minute
	if cfg.RateLimit != nil {
		if cfg.RateLimit.MaxRequests > 0 {
			maxRequests = cfg.RateLimit.MaxRequests
		}
		if cfg.RateLimit.Window > 0 {
			window = cfg.RateLimit.Window
		}
	}
	// Uses X-Forwarded-For header when behind a proxy
	fiberApp.Use(limiter.New(limiter.Config{
		Max:          maxRequests,
		Expiration:   window,
		KeyGenerator: clientIP,
		LimitReached: func(c *fiber.Ctx) error {
			return apiutil.ErrorResponseJSON(c, fiber.StatusTooManyRequests, "Too Many Requests", "rate limit exceeded")
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(cors.New())
	if cfg.Env != "test" {
		fiberApp.Use(logger.New())
	}

	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("App is working! 🚀")
	})

	transferweb.Routes(fiberApp, a.TransferService, a.AuthService, cfg.Auth)
	accountweb.Routes(fiberApp, a.AccountService, a.SettlementService, a.AuthService, cfg.Auth)
	contactweb.Routes(fiberApp, a.ContactService, a.AuthService, cfg.Auth)
	pendingweb.Routes(fiberApp, a.PendingService, a.AuthService, cfg.Auth)

	return fiberApp
}

func clientIP(c *fiber.Ctx) string {
	if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		return strings.TrimSpace(first)
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.IP()
}
