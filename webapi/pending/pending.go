// Package pending exposes team membership and the approval queue for
// payment requests.
package pending

import (
	"time"

	"github.com/amirasaad/speibank/pkg/config"
	domainpending "github.com/amirasaad/speibank/pkg/domain/pending"
	"github.com/amirasaad/speibank/pkg/domain/money"
	"github.com/amirasaad/speibank/pkg/middleware"
	authsvc "github.com/amirasaad/speibank/pkg/service/auth"
	pendingsvc "github.com/amirasaad/speibank/pkg/service/pending"
	transfersvc "github.com/amirasaad/speibank/pkg/service/transfer"
	"github.com/amirasaad/speibank/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultPageSize = 20

type AddMemberRequest struct {
	MemberAccountID string `json:"member_account_id" validate:"required,uuid"`
	CanTransfer     bool   `json:"can_transfer"`
}

// PaymentRequest is the body of POST /pending.
type PaymentRequest struct {
	OwnerAccountID   string          `json:"owner_account_id" validate:"required,uuid"`
	RecipientName    string          `json:"recipient_name" validate:"required,max=120"`
	RecipientAccount string          `json:"recipient_account" validate:"required,numeric"`
	AccountType      string          `json:"account_type" validate:"required,oneof=clabe card"`
	BankCode         string          `json:"bank_code" validate:"omitempty,len=3,numeric"`
	Amount           decimal.Decimal `json:"amount"`
	Concept          string          `json:"concept" validate:"max=40"`
	SecondaryConcept string          `json:"secondary_concept" validate:"max=40"`
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"max=200"`
}

type MemberResponse struct {
	ID              string `json:"id"`
	OwnerAccountID  string `json:"owner_account_id"`
	MemberAccountID string `json:"member_account_id"`
	CanTransfer     bool   `json:"can_transfer"`
}

type PendingResponse struct {
	ID                  string    `json:"id"`
	AccountID           string    `json:"account_id"`
	RequestedBy         string    `json:"requested_by"`
	Amount              string    `json:"amount"`
	Commission          string    `json:"commission"`
	FinalAmount         string    `json:"final_amount"`
	CounterpartyName    string    `json:"counterparty_name"`
	CounterpartyAccount string    `json:"counterparty_account"`
	AccountType         string    `json:"account_type"`
	BankCode            string    `json:"bank_code,omitempty"`
	Concept             string    `json:"concept"`
	Status              string    `json:"status"`
	RejectionReason     string    `json:"rejection_reason,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

type PageResponse struct {
	Items    []PendingResponse `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

type ApprovalResponse struct {
	Success      bool   `json:"success"`
	State        string `json:"state"`
	TrackingCode string `json:"tracking_code,omitempty"`
	Commission   string `json:"commission"`
	NewBalance   string `json:"new_balance,omitempty"`
	Message      string `json:"message"`
}

func toPendingResponse(p *domainpending.PendingMovement) PendingResponse {
	return PendingResponse{
		ID:                  p.ID.String(),
		AccountID:           p.AccountID.String(),
		RequestedBy:         p.RequestedBy.String(),
		Amount:              money.Format(p.Amount),
		Commission:          money.Format(p.Commission),
		FinalAmount:         money.Format(p.FinalAmount),
		CounterpartyName:    p.CounterpartyName,
		CounterpartyAccount: p.CounterpartyAccount,
		AccountType:         p.AccountType,
		BankCode:            p.BankCode,
		Concept:             p.Concept,
		Status:              string(p.Status),
		RejectionReason:     p.RejectionReason,
		CreatedAt:           p.CreatedAt,
	}
}

func toApprovalResponse(res *transfersvc.Result) ApprovalResponse {
	out := ApprovalResponse{
		Success:      res.Success,
		State:        string(res.State),
		TrackingCode: res.TrackingCode,
		Commission:   money.Format(res.Commission),
		Message:      res.Message,
	}
	if res.Success {
		out.NewBalance = money.Format(res.NewBalance)
	}
	return out
}

// Routes registers the team and approval endpoints.
//
// Routes:
//   - POST /team/members          : Add a member to the caller's team.
//   - POST /pending               : Ask an owner to approve a payment.
//   - GET  /pending               : Requests waiting on the caller's account.
//   - POST /pending/:id/approve   : Execute a request.
//   - POST /pending/:id/reject    : Reject a request.
func Routes(app *fiber.App, pendingSvc *pendingsvc.Service, authSvc *authsvc.Service, cfg *config.Auth) {
	var jwtCfg *config.Jwt
	if cfg != nil {
		jwtCfg = cfg.Jwt
	}
	protected := middleware.JwtProtected(jwtCfg)
	app.Post("/team/members", protected, AddMember(pendingSvc, authSvc))
	app.Post("/pending", protected, Request(pendingSvc, authSvc))
	app.Get("/pending", protected, List(pendingSvc, authSvc))
	app.Post("/pending/:id/approve", protected, Approve(pendingSvc, authSvc))
	app.Post("/pending/:id/reject", protected, Reject(pendingSvc, authSvc))
}

// AddMember adds an account to the caller's team.
func AddMember(pendingSvc *pendingsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ownerID, err := common.CurrentAccountID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[AddMemberRequest](c)
		if input == nil {
			return err
		}
		m, err := pendingSvc.AddMember(c.UserContext(), ownerID, uuid.MustParse(input.MemberAccountID), input.CanTransfer)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to add member", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Member added", MemberResponse{
			ID:              m.ID.String(),
			OwnerAccountID:  m.OwnerAccountID.String(),
			MemberAccountID: m.MemberAccountID.String(),
			CanTransfer:     m.CanTransfer,
		})
	}
}

// Request queues a payment out of the owner's account.
func Request(pendingSvc *pendingsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := common.CurrentAccountID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[PaymentRequest](c)
		if input == nil {
			return err
		}
		p, err := pendingSvc.Request(c.UserContext(), memberID, uuid.MustParse(input.OwnerAccountID), pendingsvc.Input{
			RecipientName:    input.RecipientName,
			RecipientAccount: input.RecipientAccount,
			AccountType:      transfersvc.AccountType(input.AccountType),
			BankCode:         input.BankCode,
			Amount:           input.Amount,
			Concept:          input.Concept,
			SecondaryConcept: input.SecondaryConcept,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to queue payment", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Payment queued for approval", toPendingResponse(p))
	}
}

// List pages through the requests on the caller's account. Query: page,
// page_size.
func List(pendingSvc *pendingsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ownerID, err := common.CurrentAccountID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		page, err := common.IntQuery(c, "page", 1)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid query", err)
		}
		size, err := common.IntQuery(c, "page_size", defaultPageSize)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid query", err)
		}
		res, err := pendingSvc.List(c.UserContext(), ownerID, page, size)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list pending payments", err)
		}
		out := PageResponse{
			Items:    make([]PendingResponse, 0, len(res.Items)),
			Total:    res.Total,
			Page:     res.Page,
			PageSize: res.PageSize,
		}
		for _, p := range res.Items {
			out.Items = append(out.Items, toPendingResponse(p))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Pending payments fetched", out)
	}
}

// Approve executes a queued request as a transfer from the owner's account.
func Approve(pendingSvc *pendingsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		approverID, err := common.CurrentAccountID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := common.UUIDParam(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid pending movement ID", err)
		}
		res, err := pendingSvc.Approve(c.UserContext(), approverID, id)
		if err != nil {
			log.Errorf("Approval of %s by %s failed: %v", id, approverID, err)
			if res != nil {
				return common.ProblemDetailsJSON(c, "Approval failed", err, toApprovalResponse(res))
			}
			return common.ProblemDetailsJSON(c, "Approval failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Payment approved", toApprovalResponse(res))
	}
}

// Reject closes a queued request without moving money.
func Reject(pendingSvc *pendingsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		approverID, err := common.CurrentAccountID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		id, err := common.UUIDParam(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid pending movement ID", err)
		}
		input := &RejectRequest{}
		if len(c.Body()) > 0 {
			if input, err = common.BindAndValidate[RejectRequest](c); input == nil {
				return err
			}
		}
		p, err := pendingSvc.Reject(c.UserContext(), approverID, id, input.Reason)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Rejection failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Payment rejected", toPendingResponse(p))
	}
}
