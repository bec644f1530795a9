// Package contact exposes the saved counterparties of the authenticated
// account.
package contact

import (
	"time"

	"github.com/amirasaad/speibank/pkg/config"
	domaincontact "github.com/amirasaad/speibank/pkg/domain/contact"
	"github.com/amirasaad/speibank/pkg/dto"
	"github.com/amirasaad/speibank/pkg/middleware"
	authsvc "github.com/amirasaad/speibank/pkg/service/auth"
	contactsvc "github.com/amirasaad/speibank/pkg/service/contact"
	"github.com/amirasaad/speibank/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// CreateContactRequest is the body of POST /contacts. Exactly one of Clabe
// and CardNumber is expected.
type CreateContactRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	Alias      string `json:"alias" validate:"max=60"`
	BankName   string `json:"bank_name" validate:"max=60"`
	Clabe      string `json:"clabe" validate:"omitempty,len=18,numeric"`
	CardNumber string `json:"card_number" validate:"omitempty,len=16,numeric"`
	Email      string `json:"email" validate:"omitempty,email"`
}

// UpdateContactRequest is the body of PUT /contacts/:id. Absent fields are
// left unchanged.
type UpdateContactRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=120"`
	Alias      *string `json:"alias" validate:"omitempty,max=60"`
	BankName   *string `json:"bank_name" validate:"omitempty,max=60"`
	Clabe      *string `json:"clabe" validate:"omitempty,len=18,numeric"`
	CardNumber *string `json:"card_number" validate:"omitempty,len=16,numeric"`
	Email      *string `json:"email" validate:"omitempty,email"`
}

// ContactResponse is one saved counterparty.
type ContactResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Alias      string    `json:"alias,omitempty"`
	BankName   string    `json:"bank_name,omitempty"`
	Clabe      string    `json:"clabe,omitempty"`
	CardNumber string    `json:"card_number,omitempty"`
	Email      string    `json:"email,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func toResponse(c *domaincontact.Contact) ContactResponse {
	return ContactResponse{
		ID:         c.ID.String(),
		Name:       c.Name,
		Alias:      c.Alias,
		BankName:   c.BankName,
		Clabe:      c.Clabe,
		CardNumber: c.CardNumber,
		Email:      c.Email,
		CreatedAt:  c.CreatedAt,
	}
}

// Routes registers the contact endpoints.
//
// Routes:
//   - GET    /contacts     : List contacts.
//   - POST   /contacts     : Save a contact.
//   - PUT    /contacts/:id : Update a contact.
//   - DELETE /contacts/:id : Delete a contact.
func Routes(app *fiber.App, contactSvc *contactsvc.Service, authSvc *authsvc.Service, cfg *config.Auth) {
	var jwtCfg *config.Jwt
	if cfg != nil {
		jwtCfg = cfg.Jwt
	}
	protected := middleware.JwtProtected(jwtCfg)
	app.Get("/contacts", protected, List(contactSvc, authSvc))
	app.Post("/contacts", protected, Create(contactSvc, authSvc))
	app.Put("/contacts/:id", protected, Update(contactSvc, authSvc))
	app.Delete("/contacts/:id", protected, Delete(contactSvc, authSvc))
}

// List returns the caller's contacts.
func List(contactSvc *contactsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := common.CurrentAccountID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		contacts, err := contactSvc.List(c.UserContext(), accountID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list contacts", err)
		}
		out := make([]ContactResponse, 0, len(contacts))
		for _, ct := range contacts {
			out = append(out, toResponse(ct))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Contacts fetched", out)
	}
}

// Create saves a contact for the caller.
func Create(contactSvc *contactsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := common.CurrentAccountID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[CreateContactRequest](c)
		if input == nil {
			return err
		}
		saved, err := contactSvc.Create(c.UserContext(), domaincontact.Contact{
			AccountID:  accountID,
			Name:       input.Name,
			Alias:      input.Alias,
			BankName:   input.BankName,
			Clabe:      input.Clabe,
			CardNumber: input.CardNumber,
			Email:      input.Email,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to save contact", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Contact saved", toResponse(saved))
	}
}

// Update changes a contact owned by the caller.
func Update(contactSvc *contactsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := common.CurrentAccountID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := common.UUIDParam(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid contact ID", err)
		}
		input, err := common.BindAndValidate[UpdateContactRequest](c)
		if input == nil {
			return err
		}
		updated, err := contactSvc.Update(c.UserContext(), accountID, id, dto.ContactUpdate{
			Name:       input.Name,
			Alias:      input.Alias,
			BankName:   input.BankName,
			Clabe:      input.Clabe,
			CardNumber: input.CardNumber,
			Email:      input.Email,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update contact", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Contact updated", toResponse(updated))
	}
}

// Delete removes a contact owned by the caller.
func Delete(contactSvc *contactsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := common.CurrentAccountID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := common.UUIDParam(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid contact ID", err)
		}
		if err := contactSvc.Delete(c.UserContext(), accountID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to delete contact", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Contact deleted", nil)
	}
}
