package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amirasaad/speibank/pkg/domain"
	"github.com/amirasaad/speibank/pkg/domain/account"
	"github.com/amirasaad/speibank/pkg/domain/movement"
	"github.com/amirasaad/speibank/pkg/dto"
	"github.com/amirasaad/speibank/pkg/mapper"
	"github.com/amirasaad/speibank/pkg/repository"
	accountrepo "github.com/amirasaad/speibank/pkg/repository/account"
	movementrepo "github.com/amirasaad/speibank/pkg/repository/movement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// Service answers balance, profile and movement history queries.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates an account query service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{uow: uow, logger: logger.With("service", "account")}
}

// Open registers an account that was provisioned by the identity provider.
func (s *Service) Open(ctx context.Context, create dto.AccountCreate) (*account.Account, error) {
	create.Clabe = strings.TrimSpace(create.Clabe)
	create.Email = strings.ToLower(strings.TrimSpace(create.Email))
	if err := account.ValidateClabe(create.Clabe); err != nil {
		return nil, err
	}
	if create.Balance.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance cannot be negative", domain.ErrValidation)
	}
	if create.ID == uuid.Nil {
		create.ID = uuid.New()
	}
	if create.Status == "" {
		create.Status = string(account.StatusActive)
	}

	var a *account.Account
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.GetRepo[accountrepo.Repository](uow)
		if err != nil {
			return err
		}
		if err := repo.Create(ctx, create); err != nil {
			return err
		}
		read, err := repo.Get(ctx, create.ID)
		if err != nil {
			return err
		}
		a = mapper.MapAccountReadToDomain(read)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("account opened", "account_id", a.ID, "clabe", a.Clabe)
	return a, nil
}

// Get returns the account profile.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	repo, err := repository.GetRepo[accountrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	read, err := repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, account.ErrAccountNotFound
		}
		return nil, err
	}
	return mapper.MapAccountReadToDomain(read), nil
}

// GetByClabe looks an account up by its CLABE.
func (s *Service) GetByClabe(ctx context.Context, clabe string) (*account.Account, error) {
	repo, err := repository.GetRepo[accountrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	read, err := repo.GetByClabe(ctx, strings.TrimSpace(clabe))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, account.ErrAccountNotFound
		}
		return nil, err
	}
	return mapper.MapAccountReadToDomain(read), nil
}

// Balance returns the current balance.
func (s *Service) Balance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return a.Balance, nil
}

// Movements lists the ledger rows of an account, newest first.
func (s *Service) Movements(ctx context.Context, id uuid.UUID, limit, offset int) ([]*movement.Movement, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)
	offset = max(offset, 0)

	repo, err := repository.GetRepo[movementrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	reads, err := repo.ListByAccount(ctx, id, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*movement.Movement, 0, len(reads))
	for _, r := range reads {
		out = append(out, mapper.MapMovementReadToDomain(r))
	}
	return out, nil
}

// MovementsByTracking returns the rows of one transfer that belong to
// ownerID. Rows of other accounts are never exposed.
func (s *Service) MovementsByTracking(ctx context.Context, ownerID uuid.UUID, trackingCode string) ([]*movement.Movement, error) {
	repo, err := repository.GetRepo[movementrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	reads, err := repo.ListByTrackingCode(ctx, strings.TrimSpace(trackingCode))
	if err != nil {
		return nil, err
	}
	var out []*movement.Movement
	for _, r := range reads {
		if r.AccountID == ownerID {
			out = append(out, mapper.MapMovementReadToDomain(r))
		}
	}
	if len(out) == 0 {
		return nil, movement.ErrMovementNotFound
	}
	return out, nil
}
