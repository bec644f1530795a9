// Package settlement follows wires after they leave the orchestrator: it
// polls the gateway for outbound outcomes and books inbound deposits.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/speibank/pkg/bank"
	"github.com/amirasaad/speibank/pkg/domain"
	"github.com/amirasaad/speibank/pkg/domain/account"
	"github.com/amirasaad/speibank/pkg/domain/events"
	"github.com/amirasaad/speibank/pkg/domain/money"
	"github.com/amirasaad/speibank/pkg/domain/movement"
	"github.com/amirasaad/speibank/pkg/dto"
	"github.com/amirasaad/speibank/pkg/eventbus"
	"github.com/amirasaad/speibank/pkg/provider/spei"
	"github.com/amirasaad/speibank/pkg/repository"
	accountrepo "github.com/amirasaad/speibank/pkg/repository/account"
	movementrepo "github.com/amirasaad/speibank/pkg/repository/movement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Outcome is what RefreshStatus did to a wire.
type Outcome string

const (
	OutcomeSettled   Outcome = "settled"
	OutcomeReturned  Outcome = "returned"
	OutcomePending   Outcome = "pending"
	OutcomeUnchanged Outcome = "unchanged"
)

// StatusReport is the result of RefreshStatus.
type StatusReport struct {
	TrackingCode string
	Outcome      Outcome
	GatewayState string
	Reason       string
	Refunded     decimal.Decimal
}

// SyncReport counts what SyncInbound did.
type SyncReport struct {
	Booked   int
	Skipped  int
	Rejected int
	Credited decimal.Decimal
}

// Deps are the collaborators of the settlement service.
type Deps struct {
	Uow       repository.UnitOfWork
	Gateway   spei.Gateway
	EventBus  eventbus.Bus
	Directory *bank.Directory
	Logger    *slog.Logger
}

// Service reconciles the ledger with the settlement gateway.
type Service struct {
	uow       repository.UnitOfWork
	gateway   spei.Gateway
	bus       eventbus.Bus
	directory *bank.Directory
	logger    *slog.Logger
}

// New creates a settlement service.
func New(deps Deps) *Service {
	s := &Service{
		uow:       deps.Uow,
		gateway:   deps.Gateway,
		bus:       deps.EventBus,
		directory: deps.Directory,
		logger:    deps.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("service", "settlement")
	if s.directory == nil {
		s.directory = bank.Default(bank.DefaultInstitutionCode)
	}
	return s
}

// RefreshStatus asks the gateway about an outbound wire. A devolution marks
// the outbound movement REVERSED and returns the principal to the sender;
// the commission is not refunded.
func (s *Service) RefreshStatus(ctx context.Context, trackingCode string) (*StatusReport, error) {
	log := s.logger.With("tracking_code", trackingCode)
	out, err := s.outboundWire(ctx, trackingCode)
	if err != nil {
		return nil, err
	}

	st, err := s.gateway.Status(ctx, trackingCode)
	if err != nil {
		return nil, fmt.Errorf("query settlement status: %w", err)
	}
	report := &StatusReport{TrackingCode: trackingCode, Outcome: OutcomeUnchanged}

	switch st := st.(type) {
	case spei.Settled:
		report.GatewayState = spei.EstadoSettled
		if out.Status == string(movement.StatusCompleted) {
			return report, nil
		}
		if !movement.CanTransition(movement.Status(out.Status), movement.StatusCompleted) {
			log.Warn("settled wire has a terminal local status", "status", out.Status)
			return report, nil
		}
		moved, err := s.transition(ctx, out, movement.StatusCompleted, map[string]any{
			"settled_at": time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return nil, err
		}
		if !moved {
			return report, nil
		}
		report.Outcome = OutcomeSettled
		log.Info("wire settled")

	case spei.Returned:
		report.GatewayState = spei.EstadoReturned
		report.Reason = st.Reason
		if out.Status == string(movement.StatusReversed) {
			return report, nil
		}
		reversed, err := s.reverse(ctx, out, st.Reason)
		if err != nil {
			return nil, err
		}
		if !reversed {
			log.Debug("wire already reversed by a concurrent refresh")
			return report, nil
		}
		report.Outcome = OutcomeReturned
		report.Refunded = out.Amount
		log.Warn("wire returned by the receiving bank", "reason", st.Reason, "refunded", money.Format(out.Amount))
		s.emit(ctx, events.SettlementReturned{
			AccountID:    out.AccountID,
			TrackingCode: trackingCode,
			Reason:       st.Reason,
			OccurredAt:   time.Now().UTC(),
		})

	case spei.Pending:
		report.Outcome = OutcomePending
		report.GatewayState = st.State
		log.Debug("wire still in flight", "state", st.State)
	}
	return report, nil
}

// SyncInbound books the inbound wires the gateway holds for the account's
// CLABE. Wires already booked are skipped. Each new wire is validated with
// the gateway, then written as a movement before the balance is credited.
func (s *Service) SyncInbound(ctx context.Context, accountID uuid.UUID) (*SyncReport, error) {
	log := s.logger.With("account_id", accountID)
	accounts, err := repository.GetRepo[accountrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	acc, err := accounts.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, account.ErrAccountNotFound
		}
		return nil, err
	}

	wires, err := s.gateway.ListInbound(ctx, acc.Clabe)
	if err != nil {
		return nil, fmt.Errorf("list inbound wires: %w", err)
	}

	report := &SyncReport{Credited: decimal.Zero}
	var errs []error
	for _, in := range wires {
		wlog := log.With("tracking_code", in.TrackingCode)
		booked, err := s.alreadyBooked(ctx, accountID, in.TrackingCode)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if booked || in.Estado == spei.EstadoReturned || !in.Amount.IsPositive() {
			report.Skipped++
			continue
		}
		if err := s.gateway.ValidateDeposit(ctx, in); err != nil {
			if errors.Is(err, spei.ErrRejected) {
				wlog.Warn("inbound wire failed validation", "error", err)
				report.Rejected++
				continue
			}
			errs = append(errs, fmt.Errorf("validate deposit %s: %w", in.TrackingCode, err))
			continue
		}
		if err := s.book(ctx, accountID, in); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				report.Skipped++
				continue
			}
			errs = append(errs, fmt.Errorf("book deposit %s: %w", in.TrackingCode, err))
			continue
		}
		report.Booked++
		report.Credited = report.Credited.Add(in.Amount)
		wlog.Info("inbound wire credited", "amount", money.Format(in.Amount))
		s.emit(ctx, events.InboundCredited{
			AccountID:    accountID,
			TrackingCode: in.TrackingCode,
			Amount:       in.Amount,
			OccurredAt:   time.Now().UTC(),
		})
	}
	return report, errors.Join(errs...)
}

func (s *Service) outboundWire(ctx context.Context, trackingCode string) (*dto.MovementRead, error) {
	repo, err := repository.GetRepo[movementrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	rows, err := repo.ListByTrackingCode(ctx, trackingCode)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if r.Direction == string(movement.DirectionOutbound) && r.Category == string(movement.CategoryWire) {
			return r, nil
		}
	}
	return nil, movement.ErrMovementNotFound
}

func (s *Service) alreadyBooked(ctx context.Context, accountID uuid.UUID, trackingCode string) (bool, error) {
	repo, err := repository.GetRepo[movementrepo.Repository](s.uow)
	if err != nil {
		return false, err
	}
	rows, err := repo.ListByTrackingCode(ctx, trackingCode)
	if err != nil {
		return false, err
	}
	for _, r := range rows {
		if r.AccountID == accountID && r.Direction == string(movement.DirectionInbound) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) transition(
	ctx context.Context,
	out *dto.MovementRead,
	to movement.Status,
	meta map[string]any,
) (bool, error) {
	repo, err := repository.GetRepo[movementrepo.Repository](s.uow)
	if err != nil {
		return false, err
	}
	return repo.Transition(ctx, out.ID, out.Status, string(to), meta)
}

// reverse marks the wire REVERSED and refunds its principal in one unit of
// work. It reports false when the row left out.Status before the write, in
// which case nothing is refunded.
func (s *Service) reverse(ctx context.Context, out *dto.MovementRead, reason string) (bool, error) {
	var reversed bool
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		movements, err := repository.GetRepo[movementrepo.Repository](uow)
		if err != nil {
			return err
		}
		accounts, err := repository.GetRepo[accountrepo.Repository](uow)
		if err != nil {
			return err
		}
		reversed, err = movements.Transition(ctx, out.ID, out.Status, string(movement.StatusReversed), map[string]any{
			"return_reason":   reason,
			"returned_at":     time.Now().UTC().Format(time.RFC3339),
			"refunded_amount": money.Format(out.Amount),
		})
		if err != nil || !reversed {
			return err
		}
		_, err = accounts.Credit(ctx, out.AccountID, out.Amount)
		return err
	})
	if err != nil {
		return false, err
	}
	return reversed, nil
}

func (s *Service) book(ctx context.Context, accountID uuid.UUID, in spei.InboundTransfer) error {
	bankName := ""
	if res, err := s.directory.ResolveBank(in.OrderingAccount); err == nil {
		bankName = res.BankName
	}
	meta := map[string]any{
		"gateway_id":           in.ID,
		"numeric_reference":    in.NumericReference,
		"ordering_institution": in.OrderingInstitution,
		"estado":               in.Estado,
	}
	if !in.OperationDate.IsZero() {
		meta["operation_date"] = in.OperationDate.Format(time.DateOnly)
	}
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		movements, err := repository.GetRepo[movementrepo.Repository](uow)
		if err != nil {
			return err
		}
		accounts, err := repository.GetRepo[accountrepo.Repository](uow)
		if err != nil {
			return err
		}
		if err := movements.Create(ctx, dto.MovementCreate{
			ID:                  uuid.New(),
			AccountID:           accountID,
			Category:            string(movement.CategoryWire),
			Direction:           string(movement.DirectionInbound),
			Status:              string(movement.StatusCompleted),
			Amount:              in.Amount,
			Commission:          decimal.Zero,
			FinalAmount:         in.Amount,
			TrackingCode:        in.TrackingCode,
			CounterpartyName:    in.OrderingName,
			CounterpartyBank:    bankName,
			CounterpartyAccount: in.OrderingAccount,
			Concept:             in.Concept,
			Metadata:            meta,
		}); err != nil {
			return err
		}
		_, err = accounts.Credit(ctx, accountID, in.Amount)
		return err
	})
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Emit(ctx, event); err != nil {
		s.logger.Error("failed to emit event", "type", event.Type(), "error", err)
	}
}
