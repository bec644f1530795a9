// Package auth issues and reads the bearer tokens of the HTTP API. Login
// itself belongs to the identity provider; a token's subject is the id of
// the account it acts for.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/speibank/pkg/config"
	"github.com/amirasaad/speibank/pkg/domain"
	"github.com/amirasaad/speibank/pkg/repository"
	accountrepo "github.com/amirasaad/speibank/pkg/repository/account"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultExpiry = 24 * time.Hour

// ErrUnauthorized is returned for missing, malformed or foreign tokens.
var ErrUnauthorized = fmt.Errorf("%w: invalid or missing token", domain.ErrUnauthorized)

type Service struct {
	uow    repository.UnitOfWork
	cfg    *config.Jwt
	logger *slog.Logger
	now    func() time.Time
}

func New(
	uow repository.UnitOfWork,
	cfg *config.Jwt,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg != nil && cfg.Expiry <= 0 {
		c := *cfg
		c.Expiry = defaultExpiry
		cfg = &c
	}
	return &Service{uow: uow, cfg: cfg, logger: logger.With("service", "auth"), now: time.Now}
}

// GenerateToken signs an HS256 token for an existing account.
func (s *Service) GenerateToken(ctx context.Context, accountID uuid.UUID) (string, error) {
	log := s.logger.With("account_id", accountID)
	log.Debug("GenerateToken called")

	repo, err := repository.GetRepo[accountrepo.Repository](s.uow)
	if err != nil {
		return "", err
	}
	acc, err := repo.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn("GenerateToken failed", "error", err)
			return "", ErrUnauthorized
		}
		return "", err
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   acc.ID.String(),
		"email": acc.Email,
		"clabe": acc.Clabe,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.Expiry).Unix(),
	})
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		log.Error("GenerateToken failed", "error", err)
		return "", err
	}
	log.Info("GenerateToken successful")
	return signed, nil
}

// CurrentAccountID reads the subject of a token already verified by the
// JWT middleware.
func (s *Service) CurrentAccountID(token *jwt.Token) (uuid.UUID, error) {
	if token == nil {
		return uuid.Nil, ErrUnauthorized
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		s.logger.Debug("token has no subject", "error", err)
		return uuid.Nil, ErrUnauthorized
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		s.logger.Debug("token subject is not an account id", "sub", sub)
		return uuid.Nil, ErrUnauthorized
	}
	return id, nil
}

// ParseToken verifies a raw token string. The HTTP layer relies on the
// fiber JWT middleware instead; this serves the CLI.
func (s *Service) ParseToken(raw string) (uuid.UUID, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return s.CurrentAccountID(token)
}
