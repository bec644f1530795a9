// Package transfer exposes the transfer orchestrator over HTTP.
package transfer

import (
	"github.com/amirasaad/speibank/pkg/config"
	"github.com/amirasaad/speibank/pkg/middleware"
	authsvc "github.com/amirasaad/speibank/pkg/service/auth"
	transfersvc "github.com/amirasaad/speibank/pkg/service/transfer"
	"github.com/amirasaad/speibank/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Routes registers the transfer endpoints.
//
// Routes:
//   - POST /transfers : Send money from the authenticated account.
func Routes(app *fiber.App, transferSvc *transfersvc.Service, authSvc *authsvc.Service, cfg *config.Auth) {
	app.Post("/transfers", middleware.JwtProtected(jwtConfig(cfg)), Transfer(transferSvc, authSvc))
}

func jwtConfig(cfg *config.Auth) *config.Jwt {
	if cfg == nil {
		return nil
	}
	return cfg.Jwt
}

// Transfer returns a Fiber handler that runs one transfer for the caller.
// A failed transfer still carries its result, including the tracking code
// when one was allocated.
func Transfer(transferSvc *transfersvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		senderID, err := common.CurrentAccountID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[TransferRequest](c)
		if input == nil {
			return err
		}

		res, err := transferSvc.Execute(c.UserContext(), transfersvc.Request{
			SenderID:         senderID,
			RecipientName:    input.RecipientName,
			RecipientAccount: input.RecipientAccount,
			AccountType:      transfersvc.AccountType(input.AccountType),
			SelectedBankCode: input.BankCode,
			Amount:           input.Amount,
			Concept:          input.Concept,
			SecondaryConcept: input.SecondaryConcept,
			SaveContact:      input.SaveContact,
			ContactAlias:     input.ContactAlias,
			ContactEmail:     input.ContactEmail,
		})
		if err != nil {
			log.Errorf("Transfer failed for %s: %v", senderID, err)
			if res != nil {
				return common.ProblemDetailsJSON(c, "Transfer failed", err, toResponse(res))
			}
			return common.ProblemDetailsJSON(c, "Transfer failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transfer completed", toResponse(res))
	}
}
