package account

import (
	"time"

	"github.com/amirasaad/speibank/pkg/domain/account"
	"github.com/amirasaad/speibank/pkg/domain/money"
	"github.com/amirasaad/speibank/pkg/domain/movement"
	"github.com/amirasaad/speibank/pkg/service/settlement"
)

// AccountResponse is the profile of the authenticated account.
type AccountResponse struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	Clabe              string    `json:"clabe"`
	Balance            string    `json:"balance"`
	OutboundCommission string    `json:"outbound_commission"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
}

// MovementResponse is one ledger row.
type MovementResponse struct {
	ID                  string         `json:"id"`
	Category            string         `json:"category"`
	Direction           string         `json:"direction"`
	Status              string         `json:"status"`
	Amount              string         `json:"amount"`
	Commission          string         `json:"commission"`
	FinalAmount         string         `json:"final_amount"`
	TrackingCode        string         `json:"tracking_code"`
	CounterpartyName    string         `json:"counterparty_name"`
	CounterpartyBank    string         `json:"counterparty_bank"`
	CounterpartyAccount string         `json:"counterparty_account"`
	Concept             string         `json:"concept"`
	SecondaryConcept    string         `json:"secondary_concept,omitempty"`
	Metadata            map[string]any `json:"metadata,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
}

// StatusResponse reports a settlement refresh.
type StatusResponse struct {
	TrackingCode string `json:"tracking_code"`
	Outcome      string `json:"outcome"`
	GatewayState string `json:"gateway_state,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Refunded     string `json:"refunded,omitempty"`
}

// SyncResponse reports an inbound sync.
type SyncResponse struct {
	Booked   int    `json:"booked"`
	Skipped  int    `json:"skipped"`
	Rejected int    `json:"rejected"`
	Credited string `json:"credited"`
}

func toAccountResponse(a *account.Account) AccountResponse {
	return AccountResponse{
		ID:                 a.ID.String(),
		Email:              a.Email,
		Name:               a.FullName(),
		Clabe:              a.Clabe,
		Balance:            money.Format(a.Balance),
		OutboundCommission: money.Format(a.OutboundCommission),
		Status:             string(a.Status),
		CreatedAt:          a.CreatedAt,
	}
}

func toMovementResponses(ms []*movement.Movement) []MovementResponse {
	out := make([]MovementResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, MovementResponse{
			ID:                  m.ID.String(),
			Category:            string(m.Category),
			Direction:           string(m.Direction),
			Status:              string(m.Status),
			Amount:              money.Format(m.Amount),
			Commission:          money.Format(m.Commission),
			FinalAmount:         money.Format(m.FinalAmount),
			TrackingCode:        m.TrackingCode,
			CounterpartyName:    m.CounterpartyName,
			CounterpartyBank:    m.CounterpartyBank,
			CounterpartyAccount: m.CounterpartyAccount,
			Concept:             m.Concept,
			SecondaryConcept:    m.SecondaryConcept,
			Metadata:            m.Metadata,
			CreatedAt:           m.CreatedAt,
		})
	}
	return out
}

func toStatusResponse(r *settlement.StatusReport) StatusResponse {
	out := StatusResponse{
		TrackingCode: r.TrackingCode,
		Outcome:      string(r.Outcome),
		GatewayState: r.GatewayState,
		Reason:       r.Reason,
	}
	if r.Refunded.IsPositive() {
		out.Refunded = money.Format(r.Refunded)
	}
	return out
}

func toSyncResponse(r *settlement.SyncReport) SyncResponse {
	return SyncResponse{
		Booked:   r.Booked,
		Skipped:  r.Skipped,
		Rejected: r.Rejected,
		Credited: money.Format(r.Credited),
	}
}
