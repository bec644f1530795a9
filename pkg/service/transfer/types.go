package transfer

import (
	"context"
	"errors"

	"github.com/amirasaad/speibank/pkg/domain/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State is a step of the transfer state machine. Failed is absorbing and
// reachable from every other state.
type State string

const (
	StateValidating      State = "VALIDATING"
	StateClassified      State = "CLASSIFIED"
	StateSettling        State = "SETTLING"
	StateLedgerWriting   State = "LEDGER_WRITING"
	StateBalanceUpdating State = "BALANCE_UPDATING"
	StateDone            State = "DONE"
	StateFailed          State = "FAILED"
)

// AccountType is how the recipient is addressed.
type AccountType string

const (
	AccountTypeClabe AccountType = "clabe"
	AccountTypeCard  AccountType = "card"
)

var (
	ErrSenderRequired       = errors.New("sender id is required")
	ErrRecipientRequired    = errors.New("recipient name is required")
	ErrInvalidAccountType   = errors.New("account type must be clabe or card")
	ErrInvalidClabe         = errors.New("clabe must be 18 digits")
	ErrInvalidCard          = errors.New("card number must be 16 digits")
	ErrInstitutionRequired  = errors.New("card transfers require a selected bank")
	ErrSenderNotFound       = errors.New("sender account not found")
	ErrRecipientNotFound    = errors.New("recipient not found")
	ErrCollectorNotFound    = errors.New("commission collector account not found")
	ErrSelfTransfer         = errors.New("cannot transfer to the same account")
	ErrTrackingCodeConflict = errors.New("could not allocate a unique tracking code")
	// ErrLedgerFailed means the wire left through the gateway but the local
	// ledger did not record it. A TransferLedgerFailed event was emitted.
	ErrLedgerFailed = errors.New("transfer was settled but the ledger could not record it")
)

// IsValidation reports whether err is an input error raised before any
// lookup or side effect.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrSenderRequired, ErrRecipientRequired, ErrInvalidAccountType,
		ErrInvalidClabe, ErrInvalidCard, ErrInstitutionRequired,
		money.ErrAmountMustBePositive, money.ErrTooPrecise,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Request is one transfer attempt.
type Request struct {
	SenderID         uuid.UUID
	RecipientName    string
	RecipientAccount string
	AccountType      AccountType
	// SelectedBankCode is the 3-digit bank chosen by the user. Required for
	// card transfers, ignored for CLABE ones.
	SelectedBankCode string
	Amount           decimal.Decimal
	Concept          string
	SecondaryConcept string

	SaveContact  bool
	ContactAlias string
	ContactEmail string

	// PendingMovementID links the transfer to the team request it approves.
	PendingMovementID uuid.UUID
	// Metadata is merged into the sender movement.
	Metadata map[string]any
}

// Result is returned for every attempt, successful or not.
type Result struct {
	Success      bool
	State        State
	NewBalance   decimal.Decimal
	TrackingCode string
	Commission   decimal.Decimal
	IsInternal   bool
	Message      string
}

// Commit describes a transfer that passed the point of no return: the
// gateway accepted the wire and only local bookkeeping remains.
type Commit struct {
	SenderID          uuid.UUID
	TrackingCode      string
	GatewayTrackingID string
	Amount            decimal.Decimal
	Commission        decimal.Decimal
	RecipientAccount  string
}

// Committer is notified at the point of no return, before ledger writes.
type Committer interface {
	Committed(ctx context.Context, c Commit)
}

// CommitterFunc adapts a function to Committer.
type CommitterFunc func(ctx context.Context, c Commit)

func (f CommitterFunc) Committed(ctx context.Context, c Commit) { f(ctx, c) }
