// Package pending queues payment requests from team members who cannot move
// money themselves, and replays them through the transfer orchestrator once
// an approver signs off.
package pending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amirasaad/speibank/pkg/bank"
	"github.com/amirasaad/speibank/pkg/commission"
	"github.com/amirasaad/speibank/pkg/domain"
	"github.com/amirasaad/speibank/pkg/domain/money"
	"github.com/amirasaad/speibank/pkg/domain/pending"
	"github.com/amirasaad/speibank/pkg/dto"
	"github.com/amirasaad/speibank/pkg/mapper"
	"github.com/amirasaad/speibank/pkg/repository"
	accountrepo "github.com/amirasaad/speibank/pkg/repository/account"
	pendingrepo "github.com/amirasaad/speibank/pkg/repository/pending"
	teamrepo "github.com/amirasaad/speibank/pkg/repository/team"
	"github.com/amirasaad/speibank/pkg/service/transfer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// Executor runs an approved request as a transfer.
type Executor interface {
	Execute(ctx context.Context, req transfer.Request) (*transfer.Result, error)
	Policy() *commission.Policy
}

// Input describes the transfer a member asks for.
type Input struct {
	RecipientName    string
	RecipientAccount string
	AccountType      transfer.AccountType
	BankCode         string
	Amount           decimal.Decimal
	Concept          string
	SecondaryConcept string
}

// Service manages team memberships and queued payment requests.
type Service struct {
	uow       repository.UnitOfWork
	transfers Executor
	inflight  singleflight.Group
	logger    *slog.Logger
}

// New creates a pending-movement service.
func New(uow repository.UnitOfWork, transfers Executor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{uow: uow, transfers: transfers, logger: logger.With("service", "pending")}
}

// AddMember adds memberID to the team of ownerID.
func (s *Service) AddMember(ctx context.Context, ownerID, memberID uuid.UUID, canTransfer bool) (*pending.TeamMember, error) {
	if ownerID == memberID {
		return nil, fmt.Errorf("%w: an account cannot join its own team", domain.ErrValidation)
	}
	repo, err := repository.GetRepo[teamrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	id := uuid.New()
	if err := repo.Create(ctx, dto.TeamMemberCreate{
		ID:              id,
		OwnerAccountID:  ownerID,
		MemberAccountID: memberID,
		CanTransfer:     canTransfer,
	}); err != nil {
		return nil, err
	}
	read, err := repo.GetMember(ctx, ownerID, memberID)
	if err != nil {
		return nil, err
	}
	return mapper.MapTeamMemberReadToDomain(read), nil
}

// Request queues a transfer out of ownerID's account on behalf of memberID.
func (s *Service) Request(ctx context.Context, memberID, ownerID uuid.UUID, in Input) (*pending.PendingMovement, error) {
	log := s.logger.With("owner_id", ownerID, "member_id", memberID)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var p *pending.PendingMovement
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		team, err := repository.GetRepo[teamrepo.Repository](uow)
		if err != nil {
			return err
		}
		accounts, err := repository.GetRepo[accountrepo.Repository](uow)
		if err != nil {
			return err
		}
		pendings, err := repository.GetRepo[pendingrepo.Repository](uow)
		if err != nil {
			return err
		}

		member, err := team.GetMember(ctx, ownerID, memberID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return pending.ErrNotTeamMember
			}
			return err
		}
		if member.CanTransfer {
			log.Debug("member can transfer directly, queueing anyway")
		}
		owner, err := accounts.Get(ctx, ownerID)
		if err != nil {
			return err
		}

		policy := s.transfers.Policy()
		internal := in.AccountType == transfer.AccountTypeClabe && policy.IsInternal(in.RecipientAccount)
		fee := policy.Compute(internal, owner.OutboundCommission)
		create := dto.PendingMovementCreate{
			ID:                  uuid.New(),
			AccountID:           ownerID,
			RequestedBy:         memberID,
			TeamMemberID:        member.ID,
			Amount:              in.Amount,
			Commission:          fee,
			FinalAmount:         commission.TotalDebit(in.Amount, fee),
			CounterpartyName:    strings.TrimSpace(in.RecipientName),
			CounterpartyAccount: in.RecipientAccount,
			AccountType:         string(in.AccountType),
			BankCode:            bankCode(in),
			Concept:             in.Concept,
			SecondaryConcept:    in.SecondaryConcept,
			Status:              string(pending.StatusPending),
		}
		if err := pendings.Create(ctx, create); err != nil {
			return err
		}
		read, err := pendings.Get(ctx, create.ID)
		if err != nil {
			return err
		}
		p = mapper.MapPendingReadToDomain(read)
		return nil
	})
	if err != nil {
		log.Warn("pending movement not queued", "error", err)
		return nil, err
	}
	log.Info("pending movement queued", "pending_id", p.ID, "amount", money.Format(p.Amount))
	return p, nil
}

// List returns one page of requests on ownerID's account, newest first.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, page, pageSize int) (dto.Page[*pending.PendingMovement], error) {
	repo, err := repository.GetRepo[pendingrepo.Repository](s.uow)
	if err != nil {
		return dto.Page[*pending.PendingMovement]{}, err
	}
	res, err := repo.ListByAccount(ctx, ownerID, page, pageSize)
	if err != nil {
		return dto.Page[*pending.PendingMovement]{}, err
	}
	out := dto.Page[*pending.PendingMovement]{
		Items:    make([]*pending.PendingMovement, 0, len(res.Items)),
		Total:    res.Total,
		Page:     res.Page,
		PageSize: res.PageSize,
	}
	for _, r := range res.Items {
		out.Items = append(out.Items, mapper.MapPendingReadToDomain(r))
	}
	return out, nil
}

// Approve executes a queued request from the owner's account. The request is
// deleted only when the transfer succeeds; concurrent approvals of the same
// request share a single execution.
func (s *Service) Approve(ctx context.Context, approverID, pendingID uuid.UUID) (*transfer.Result, error) {
	v, err, shared := s.inflight.Do(pendingID.String(), func() (any, error) {
		return s.approve(ctx, approverID, pendingID)
	})
	if shared {
		s.logger.Debug("approval joined an in-flight execution", "pending_id", pendingID)
	}
	res, _ := v.(*transfer.Result)
	return res, err
}

func (s *Service) approve(ctx context.Context, approverID, pendingID uuid.UUID) (*transfer.Result, error) {
	log := s.logger.With("pending_id", pendingID, "approver_id", approverID)
	p, err := s.authorize(ctx, approverID, pendingID)
	if err != nil {
		return nil, err
	}

	res, err := s.transfers.Execute(ctx, transfer.Request{
		SenderID:          p.AccountID,
		RecipientName:     p.CounterpartyName,
		RecipientAccount:  p.CounterpartyAccount,
		AccountType:       transfer.AccountType(p.AccountType),
		SelectedBankCode:  p.BankCode,
		Amount:            p.Amount,
		Concept:           p.Concept,
		SecondaryConcept:  p.SecondaryConcept,
		PendingMovementID: p.ID,
		Metadata: map[string]any{
			"approved_by":  approverID.String(),
			"requested_by": p.RequestedBy.String(),
		},
	})
	if err != nil {
		log.Warn("approved transfer failed, request kept", "error", err)
		return res, err
	}

	repo, err := repository.GetRepo[pendingrepo.Repository](s.uow)
	if err != nil {
		return res, err
	}
	if err := repo.Delete(ctx, pendingID); err != nil {
		log.Error("transfer completed but request not removed",
			"tracking_code", res.TrackingCode, "error", err)
		return res, fmt.Errorf("remove approved request %s: %w", pendingID, err)
	}
	log.Info("pending movement approved", "tracking_code", res.TrackingCode)
	return res, nil
}

// Reject marks a queued request as rejected.
func (s *Service) Reject(ctx context.Context, approverID, pendingID uuid.UUID, reason string) (*pending.PendingMovement, error) {
	if _, err := s.authorize(ctx, approverID, pendingID); err != nil {
		return nil, err
	}
	repo, err := repository.GetRepo[pendingrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	status := string(pending.StatusRejected)
	reason = strings.TrimSpace(reason)
	if err := repo.Update(ctx, pendingID, dto.PendingMovementUpdate{Status: &status, RejectionReason: &reason}); err != nil {
		return nil, err
	}
	read, err := repo.Get(ctx, pendingID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("pending movement rejected", "pending_id", pendingID, "approver_id", approverID)
	return mapper.MapPendingReadToDomain(read), nil
}

// authorize loads a request still awaiting approval and checks the actor
// may move money out of its account.
func (s *Service) authorize(ctx context.Context, actorID, pendingID uuid.UUID) (*pending.PendingMovement, error) {
	pendings, err := repository.GetRepo[pendingrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	read, err := pendings.Get(ctx, pendingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, pending.ErrPendingNotFound
		}
		return nil, err
	}
	p := mapper.MapPendingReadToDomain(read)

	var member *pending.TeamMember
	if actorID != p.AccountID {
		team, err := repository.GetRepo[teamrepo.Repository](s.uow)
		if err != nil {
			return nil, err
		}
		m, err := team.GetMember(ctx, p.AccountID, actorID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, pending.ErrPendingNotFound
		case err != nil:
			return nil, err
		}
		member = mapper.MapTeamMemberReadToDomain(m)
	}
	if !pending.CanApprove(actorID, p.AccountID, member) {
		return nil, pending.ErrApproverNotAllowed
	}
	if p.Status != pending.StatusPending {
		return nil, pending.ErrNotPending
	}
	return p, nil
}

func validateInput(in Input) error {
	if err := money.ValidateAmount(in.Amount); err != nil {
		return err
	}
	switch in.AccountType {
	case transfer.AccountTypeClabe, transfer.AccountTypeCard:
	default:
		return transfer.ErrInvalidAccountType
	}
	if strings.TrimSpace(in.RecipientAccount) == "" {
		return transfer.ErrInvalidClabe
	}
	return nil
}

func bankCode(in Input) string {
	if in.AccountType == transfer.AccountTypeCard {
		return strings.TrimSpace(in.BankCode)
	}
	code, err := bank.BankCodeFromCLABE(in.RecipientAccount)
	if err != nil {
		return ""
	}
	return code
}
