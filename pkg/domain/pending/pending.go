package pending

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrPendingNotFound    = errors.New("pending movement not found")
	ErrNotTeamMember      = errors.New("requester is not a member of the account team")
	ErrApproverNotAllowed = errors.New("approver has no transfer rights on this account")
	ErrNotPending         = errors.New("pending movement is no longer awaiting approval")
)

// Status of a queued payment request.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusRejected Status = "REJECTED"
)

// PendingMovement is a payment requested by a team member without transfer
// rights. It is removed only after an approver re-executes it successfully.
type PendingMovement struct {
	ID                  uuid.UUID
	AccountID           uuid.UUID
	RequestedBy         uuid.UUID
	TeamMemberID        uuid.UUID
	Amount              decimal.Decimal
	Commission          decimal.Decimal
	FinalAmount         decimal.Decimal
	CounterpartyName    string
	CounterpartyAccount string
	AccountType         string
	BankCode            string
	Concept             string
	SecondaryConcept    string
	Status              Status
	RejectionReason     string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TeamMember links a member account to the team of an owner account.
type TeamMember struct {
	ID              uuid.UUID
	OwnerAccountID  uuid.UUID
	MemberAccountID uuid.UUID
	CanTransfer     bool
	CreatedAt       time.Time
}

// CanApprove reports whether actor may move money out of ownerID's account.
// member is nil when actor has no team membership.
func CanApprove(actor, ownerID uuid.UUID, member *TeamMember) bool {
	if actor == ownerID {
		return true
	}
	return member != nil && member.OwnerAccountID == ownerID && member.CanTransfer
}
