// Package transfer implements the transfer orchestrator: it validates and
// classifies a transfer, settles external ones through the SPEI gateway and
// records the result in the ledger.
//
// The ordering is strict. Nothing is written before the gateway confirms an
// external wire, and balances change only after every movement of the
// transfer is written, in the same database transaction.
package transfer

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/amirasaad/speibank/pkg/bank"
	"github.com/amirasaad/speibank/pkg/commission"
	"github.com/amirasaad/speibank/pkg/config"
	"github.com/amirasaad/speibank/pkg/domain"
	"github.com/amirasaad/speibank/pkg/domain/account"
	"github.com/amirasaad/speibank/pkg/domain/contact"
	"github.com/amirasaad/speibank/pkg/domain/events"
	"github.com/amirasaad/speibank/pkg/domain/money"
	"github.com/amirasaad/speibank/pkg/domain/movement"
	"github.com/amirasaad/speibank/pkg/eventbus"
	"github.com/amirasaad/speibank/pkg/mapper"
	"github.com/amirasaad/speibank/pkg/provider/spei"
	"github.com/amirasaad/speibank/pkg/repository"
	accountrepo "github.com/amirasaad/speibank/pkg/repository/account"
	movementrepo "github.com/amirasaad/speibank/pkg/repository/movement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// maxTrackingAttempts bounds regeneration on tracking code collisions.
	maxTrackingAttempts = 5
	// maxDebitAttempts bounds compare-and-swap retries on the sender balance.
	maxDebitAttempts = 3
	defaultConcept   = "Transferencia"
	defaultPrefix    = "CEDI"
)

// ContactCreator saves a counterparty after a successful transfer.
type ContactCreator interface {
	Create(ctx context.Context, c contact.Contact) (*contact.Contact, error)
}

// Deps are the collaborators of the orchestrator. Gateway, Uow, Directory
// and Policy are required.
type Deps struct {
	Uow       repository.UnitOfWork
	Gateway   spei.Gateway
	EventBus  eventbus.Bus
	Directory *bank.Directory
	Policy    *commission.Policy
	Contacts  ContactCreator
	Committer Committer
	Config    *config.Transfer
	Logger    *slog.Logger
	// Random feeds tracking codes and numeric references. Defaults to
	// crypto/rand.
	Random io.Reader
}

// Service is the transfer orchestrator.
type Service struct {
	uow            repository.UnitOfWork
	gateway        spei.Gateway
	bus            eventbus.Bus
	directory      *bank.Directory
	policy         *commission.Policy
	contacts       ContactCreator
	committer      Committer
	collectorClabe string
	trackingPrefix string
	random         io.Reader
	locks          *accountLocks
	logger         *slog.Logger
}

// New creates the orchestrator.
func New(deps Deps) *Service {
	s := &Service{
		uow:       deps.Uow,
		gateway:   deps.Gateway,
		bus:       deps.EventBus,
		directory: deps.Directory,
		policy:    deps.Policy,
		contacts:  deps.Contacts,
		committer: deps.Committer,
		random:    deps.Random,
		locks:     newAccountLocks(),
		logger:    deps.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("service", "transfer")
	if s.random == nil {
		s.random = rand.Reader
	}
	if s.directory == nil {
		s.directory = bank.Default(bank.DefaultInstitutionCode)
	}
	s.trackingPrefix = defaultPrefix
	if deps.Config != nil {
		s.collectorClabe = deps.Config.CollectorClabe
		if deps.Config.TrackingPrefix != "" {
			s.trackingPrefix = deps.Config.TrackingPrefix
		}
	}
	if s.policy == nil {
		if deps.Config != nil {
			s.policy = commission.NewPolicy(deps.Config.InternalPrefix, deps.Config.DefaultCommission)
		} else {
			s.policy = commission.NewPolicy("", commission.DefaultFee)
		}
	}
	return s
}

// Policy exposes the commission policy used by the orchestrator.
func (s *Service) Policy() *commission.Policy { return s.policy }

// execution carries what the steps learn about one transfer.
type execution struct {
	req    Request
	state  State
	logger *slog.Logger

	sender     *account.Account
	recipient  *account.Account
	collector  *account.Account
	internal   bool
	bank       bank.Resolution
	commission decimal.Decimal
	total      decimal.Decimal

	trackingCode      string
	numericReference  string
	institutionCode   string
	gatewayTrackingID string
	gatewayRaw        map[string]any
	settled           bool
	newBalance        decimal.Decimal
}

func (e *execution) to(state State) {
	e.state = state
	e.logger.Debug("transfer state", "state", state)
}

// Execute runs one transfer. The returned Result is never nil; on failure
// it carries State Failed and the error message.
func (s *Service) Execute(ctx context.Context, req Request) (*Result, error) {
	e := &execution{
		req:    req,
		state:  StateValidating,
		logger: s.logger.With("sender_id", req.SenderID, "account_type", req.AccountType),
	}
	e.logger.Info("🟢 [START] Processing transfer", "amount", req.Amount.String())

	req.RecipientAccount = strings.TrimSpace(req.RecipientAccount)
	req.SelectedBankCode = strings.TrimSpace(req.SelectedBankCode)
	e.req = req
	if err := s.validate(req); err != nil {
		return s.fail(ctx, e, err)
	}

	unlock := s.locks.lock(req.SenderID)
	defer unlock()

	if err := s.loadSender(ctx, e); err != nil {
		return s.fail(ctx, e, err)
	}
	s.classify(e)
	e.to(StateClassified)

	if err := e.sender.ValidateDebit(e.total); err != nil {
		return s.fail(ctx, e, err)
	}
	if err := s.allocateTrackingCode(ctx, e); err != nil {
		return s.fail(ctx, e, err)
	}
	if err := s.resolveCounterparties(ctx, e); err != nil {
		return s.fail(ctx, e, err)
	}

	if !e.internal {
		e.to(StateSettling)
		if err := s.settle(ctx, e); err != nil {
			return s.fail(ctx, e, err)
		}
		e.settled = true
		if s.committer != nil {
			s.committer.Committed(ctx, Commit{
				SenderID:          e.sender.ID,
				TrackingCode:      e.trackingCode,
				GatewayTrackingID: e.gatewayTrackingID,
				Amount:            e.req.Amount,
				Commission:        e.commission,
				RecipientAccount:  e.req.RecipientAccount,
			})
		}
	}

	if err := s.record(ctx, e); err != nil {
		if e.settled {
			return s.failLedger(ctx, e, err)
		}
		return s.fail(ctx, e, err)
	}
	e.to(StateDone)

	s.emitCompleted(ctx, e)
	s.saveContact(ctx, e)

	e.logger.Info("✅ [SUCCESS] Transfer completed",
		"tracking_code", e.trackingCode,
		"internal", e.internal,
		"commission", money.Format(e.commission),
		"new_balance", money.Format(e.newBalance),
	)
	return &Result{
		Success:      true,
		State:        StateDone,
		NewBalance:   e.newBalance,
		TrackingCode: e.trackingCode,
		Commission:   e.commission,
		IsInternal:   e.internal,
		Message:      "transfer completed",
	}, nil
}

// validate fails fast on input errors. It does no I/O.
func (s *Service) validate(req Request) error {
	if req.SenderID == uuid.Nil {
		return ErrSenderRequired
	}
	if err := money.ValidateAmount(req.Amount); err != nil {
		return err
	}
	switch req.AccountType {
	case AccountTypeClabe:
		if len(req.RecipientAccount) != account.ClabeLength || !account.IsDigits(req.RecipientAccount) {
			return ErrInvalidClabe
		}
	case AccountTypeCard:
		if len(req.RecipientAccount) != contact.CardLength || !account.IsDigits(req.RecipientAccount) {
			return ErrInvalidCard
		}
		if len(req.SelectedBankCode) != bank.CodeLength || !account.IsDigits(req.SelectedBankCode) {
			return ErrInstitutionRequired
		}
	default:
		return ErrInvalidAccountType
	}
	if strings.TrimSpace(req.RecipientName) == "" && !s.isInternal(req) {
		return ErrRecipientRequired
	}
	return nil
}

// isInternal classifies by prefix. Cards are never internal.
func (s *Service) isInternal(req Request) bool {
	return req.AccountType == AccountTypeClabe && s.policy.IsInternal(req.RecipientAccount)
}

func (s *Service) loadSender(ctx context.Context, e *execution) error {
	accounts, err := repository.GetRepo[accountrepo.Repository](s.uow)
	if err != nil {
		return err
	}
	read, err := accounts.Get(ctx, e.req.SenderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrSenderNotFound
		}
		return fmt.Errorf("load sender: %w", err)
	}
	e.sender = mapper.MapAccountReadToDomain(read)
	return nil
}

func (s *Service) classify(e *execution) {
	e.internal = s.isInternal(e.req)
	e.commission = s.policy.Compute(e.internal, e.sender.OutboundCommission)
	e.total = commission.TotalDebit(e.req.Amount, e.commission)

	code := e.req.SelectedBankCode
	if e.req.AccountType == AccountTypeClabe {
		code = e.req.RecipientAccount
	}
	res, err := s.directory.ResolveBank(code)
	if err != nil {
		e.logger.Warn("bank not in directory", "code", res.BankCode, "error", err)
	}
	e.bank = res
	e.institutionCode = s.directory.ResolveInstitutionCode(res.BankCode)
	e.logger = e.logger.With("internal", e.internal, "bank_code", res.BankCode)
}

func (s *Service) allocateTrackingCode(ctx context.Context, e *execution) error {
	movements, err := repository.GetRepo[movementrepo.Repository](s.uow)
	if err != nil {
		return err
	}
	for range maxTrackingAttempts {
		code, err := movement.NewTrackingCode(s.random, s.trackingPrefix)
		if err != nil {
			return err
		}
		exists, err := movements.TrackingCodeExists(ctx, code)
		if err != nil {
			return fmt.Errorf("check tracking code: %w", err)
		}
		if !exists {
			e.trackingCode = code
			e.logger = e.logger.With("tracking_code", code)
			return nil
		}
		e.logger.Warn("tracking code collision, regenerating", "tracking_code", code)
	}
	return ErrTrackingCodeConflict
}

// resolveCounterparties loads the internal recipient, or the commission
// collector of an external transfer. Both abort before any side effect.
func (s *Service) resolveCounterparties(ctx context.Context, e *execution) error {
	accounts, err := repository.GetRepo[accountrepo.Repository](s.uow)
	if err != nil {
		return err
	}
	if e.internal {
		read, err := accounts.GetByClabe(ctx, e.req.RecipientAccount)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return ErrRecipientNotFound
			}
			return fmt.Errorf("load recipient: %w", err)
		}
		if read.ID == e.sender.ID {
			return ErrSelfTransfer
		}
		e.recipient = mapper.MapAccountReadToDomain(read)
		return nil
	}
	if !e.commission.IsPositive() {
		return nil
	}
	read, err := accounts.GetByClabe(ctx, s.collectorClabe)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrCollectorNotFound
		}
		return fmt.Errorf("load commission collector: %w", err)
	}
	e.collector = mapper.MapAccountReadToDomain(read)
	return nil
}

// settle calls the gateway exactly once.
func (s *Service) settle(ctx context.Context, e *execution) error {
	ref, err := movement.NewNumericReference(s.random)
	if err != nil {
		return err
	}
	e.numericReference = ref

	accountType := spei.AccountTypeClabe
	if e.req.AccountType == AccountTypeCard {
		accountType = spei.AccountTypeCard
	}
	res, err := s.gateway.Send(ctx, spei.SendRequest{
		TrackingCode:            e.trackingCode,
		Concept:                 concept(e.req.Concept),
		OrderingAccount:         e.sender.Clabe,
		OrderingName:            e.sender.FullName(),
		BeneficiaryAccount:      e.req.RecipientAccount,
		BeneficiaryName:         strings.TrimSpace(e.req.RecipientName),
		BeneficiaryAccountType:  accountType,
		CounterpartyInstitution: e.institutionCode,
		Amount:                  e.req.Amount,
		NumericReference:        ref,
	})
	if err != nil {
		return fmt.Errorf("settlement gateway: %w", err)
	}
	id, err := spei.Confirmed(res)
	if err != nil {
		return err
	}
	if init, ok := res.(spei.Initialized); ok {
		e.gatewayRaw = init.Raw
	}
	e.gatewayTrackingID = id
	e.logger.Info("settlement gateway accepted the wire", "gateway_tracking_id", id)
	return nil
}

func (s *Service) emit(ctx context.Context, event events.Event, log *slog.Logger) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Emit(ctx, event); err != nil {
		log.Error("failed to emit event", "type", event.Type(), "error", err)
	}
}

func (s *Service) fail(ctx context.Context, e *execution, err error) (*Result, error) {
	e.logger.Error("❌ [ERROR] Transfer failed", "state", e.state, "error", err)
	e.to(StateFailed)
	if e.sender != nil {
		s.emit(ctx, s.failedEvent(e, err), e.logger)
	}
	return &Result{
		Success:      false,
		State:        StateFailed,
		TrackingCode: e.trackingCode,
		Commission:   e.commission,
		IsInternal:   e.internal,
		Message:      err.Error(),
	}, err
}

// failLedger handles a ledger failure after the gateway confirmed the wire.
// Nothing is retried or reversed here.
func (s *Service) failLedger(ctx context.Context, e *execution, err error) (*Result, error) {
	stage := e.state
	e.logger.Error("❌ [ERROR] Ledger failed after settlement",
		"stage", stage,
		"gateway_tracking_id", e.gatewayTrackingID,
		"error", err,
	)
	e.to(StateFailed)
	s.emit(ctx, s.ledgerFailedEvent(e, stage, err), e.logger)
	wrapped := fmt.Errorf("%w: %w", ErrLedgerFailed, err)
	return &Result{
		Success:      false,
		State:        StateFailed,
		TrackingCode: e.trackingCode,
		Commission:   e.commission,
		IsInternal:   e.internal,
		Message:      wrapped.Error(),
	}, wrapped
}

func (s *Service) saveContact(ctx context.Context, e *execution) {
	if !e.req.SaveContact || s.contacts == nil {
		return
	}
	c := contact.Contact{
		AccountID: e.sender.ID,
		Name:      strings.TrimSpace(e.req.RecipientName),
		Alias:     e.req.ContactAlias,
		Email:     e.req.ContactEmail,
		BankName:  e.bank.BankName,
	}
	if c.Name == "" && e.recipient != nil {
		c.Name = e.recipient.FullName()
	}
	if e.req.AccountType == AccountTypeCard {
		c.CardNumber = e.req.RecipientAccount
	} else {
		c.Clabe = e.req.RecipientAccount
	}
	if _, err := s.contacts.Create(ctx, c); err != nil {
		if errors.Is(err, contact.ErrDuplicateContact) {
			e.logger.Debug("contact already saved")
			return
		}
		e.logger.Warn("failed to save contact after transfer", "error", err)
	}
}

func concept(c string) string {
	if c = strings.TrimSpace(c); c != "" {
		return c
	}
	return defaultConcept
}
