// Package common holds the helpers every HTTP route package uses: request
// binding, error mapping and caller identification.
package common

import (
	"errors"
	"strconv"

	"github.com/amirasaad/speibank/pkg/apiutil"
	"github.com/amirasaad/speibank/pkg/bank"
	"github.com/amirasaad/speibank/pkg/domain"
	"github.com/amirasaad/speibank/pkg/domain/account"
	"github.com/amirasaad/speibank/pkg/domain/contact"
	"github.com/amirasaad/speibank/pkg/domain/movement"
	"github.com/amirasaad/speibank/pkg/domain/pending"
	"github.com/amirasaad/speibank/pkg/middleware"
	"github.com/amirasaad/speibank/pkg/provider/spei"
	authsvc "github.com/amirasaad/speibank/pkg/service/auth"
	"github.com/amirasaad/speibank/pkg/service/transfer"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// BindAndValidate parses the request body and validates it using
// go-playground/validator. On failure the problem response is already
// written; the returned error is the write error, if any.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, apiutil.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
	}
	if err := validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			return nil, apiutil.ErrorResponseJSON(c, fiber.StatusBadRequest, "Validation failed", fields)
		}
		return nil, apiutil.ErrorResponseJSON(c, fiber.StatusBadRequest, "Validation failed", err.Error())
	}
	return &input, nil
}

// ErrorToStatusCode maps domain errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, transfer.ErrLedgerFailed):
		return fiber.StatusInternalServerError
	case transfer.IsValidation(err),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, account.ErrInvalidClabe),
		errors.Is(err, contact.ErrAccountOrCard),
		errors.Is(err, contact.ErrInvalidCardNumber),
		errors.Is(err, contact.ErrNameRequired),
		errors.Is(err, bank.ErrUnknownBank):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, pending.ErrNotTeamMember),
		errors.Is(err, pending.ErrApproverNotAllowed):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, account.ErrAccountNotFound),
		errors.Is(err, transfer.ErrSenderNotFound),
		errors.Is(err, transfer.ErrRecipientNotFound),
		errors.Is(err, movement.ErrMovementNotFound),
		errors.Is(err, contact.ErrContactNotFound),
		errors.Is(err, pending.ErrPendingNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, contact.ErrDuplicateContact),
		errors.Is(err, pending.ErrNotPending),
		errors.Is(err, transfer.ErrTrackingCodeConflict):
		return fiber.StatusConflict
	case errors.Is(err, account.ErrInsufficientFunds),
		errors.Is(err, account.ErrAccountInactive),
		errors.Is(err, transfer.ErrSelfTransfer):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, spei.ErrRejected),
		errors.Is(err, spei.ErrMalformedResponse):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ProblemDetailsJSON writes err as a problem response with the status
// ErrorToStatusCode picks. Server errors hide the underlying message.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, extra ...any) error {
	status := ErrorToStatusCode(err)
	var detail any = err.Error()
	if status == fiber.StatusInternalServerError && !errors.Is(err, transfer.ErrLedgerFailed) {
		detail = "internal error"
	}
	if len(extra) > 0 {
		return apiutil.ErrorResponseJSON(c, status, title, fiber.Map{"detail": detail, "result": extra[0]})
	}
	return apiutil.ErrorResponseJSON(c, status, title, detail)
}

// SuccessResponseJSON writes the standard success envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return apiutil.SuccessResponseJSON(c, status, message, data)
}

// CurrentAccountID returns the account the bearer token acts for.
func CurrentAccountID(c *fiber.Ctx, authSvc *authsvc.Service) (uuid.UUID, error) {
	token, ok := c.Locals(middleware.TokenLocalsKey).(*jwt.Token)
	if !ok {
		return uuid.Nil, authsvc.ErrUnauthorized
	}
	return authSvc.CurrentAccountID(token)
}

// UUIDParam parses a path parameter as a UUID.
func UUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, errors.Join(domain.ErrValidation, errors.New("invalid "+name))
	}
	return id, nil
}

// IntQuery reads a non-negative integer query parameter.
func IntQuery(c *fiber.Ctx, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.Join(domain.ErrValidation, errors.New("invalid "+name))
	}
	return n, nil
}
