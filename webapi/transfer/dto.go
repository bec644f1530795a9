package transfer

import (
	"github.com/amirasaad/speibank/pkg/domain/money"
	transfersvc "github.com/amirasaad/speibank/pkg/service/transfer"
	"github.com/shopspring/decimal"
)

// TransferRequest is the body of POST /transfers. Amount accepts a JSON
// number or a decimal string.
type TransferRequest struct {
	RecipientName    string          `json:"recipient_name" validate:"required,max=120"`
	RecipientAccount string          `json:"recipient_account" validate:"required,numeric"`
	AccountType      string          `json:"account_type" validate:"required,oneof=clabe card"`
	BankCode         string          `json:"bank_code" validate:"omitempty,len=3,numeric"`
	Amount           decimal.Decimal `json:"amount"`
	Concept          string          `json:"concept" validate:"max=40"`
	SecondaryConcept string          `json:"secondary_concept" validate:"max=40"`
	SaveContact      bool            `json:"save_contact"`
	ContactAlias     string          `json:"contact_alias" validate:"max=60"`
	ContactEmail     string          `json:"contact_email" validate:"omitempty,email"`
}

// TransferResponse mirrors transfer.Result with amounts as fixed
// two-decimal strings.
type TransferResponse struct {
	Success      bool   `json:"success"`
	State        string `json:"state"`
	NewBalance   string `json:"new_balance,omitempty"`
	TrackingCode string `json:"tracking_code,omitempty"`
	Commission   string `json:"commission"`
	IsInternal   bool   `json:"is_internal"`
	Message      string `json:"message"`
}

func toResponse(res *transfersvc.Result) TransferResponse {
	out := TransferResponse{
		Success:      res.Success,
		State:        string(res.State),
		TrackingCode: res.TrackingCode,
		Commission:   money.Format(res.Commission),
		IsInternal:   res.IsInternal,
		Message:      res.Message,
	}
	if res.Success {
		out.NewBalance = money.Format(res.NewBalance)
	}
	return out
}
