package account

import (
	"context"

	"github.com/amirasaad/speibank/pkg/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository defines account data access.
type Repository interface {
	// Create inserts a new account record from a DTO.
	Create(ctx context.Context, create dto.AccountCreate) error

	// Update applies a partial profile update.
	Update(ctx context.Context, id uuid.UUID, update dto.AccountUpdate) error

	// Get retrieves an account by its ID.
	Get(ctx context.Context, id uuid.UUID) (*dto.AccountRead, error)

	// GetByEmail retrieves an account by login email.
	GetByEmail(ctx context.Context, email string) (*dto.AccountRead, error)

	// GetByClabe retrieves an account by its CLABE.
	GetByClabe(ctx context.Context, clabe string) (*dto.AccountRead, error)

	// CompareAndSetBalance writes next only if the stored balance still
	// equals expected. It returns domain.ErrConflict otherwise.
	CompareAndSetBalance(ctx context.Context, id uuid.UUID, expected, next decimal.Decimal) error

	// Credit atomically adds amount to the stored balance and returns the
	// resulting balance.
	Credit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
}
