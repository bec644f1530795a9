package pending

import (
	"context"

	"github.com/amirasaad/speibank/pkg/dto"
	"github.com/google/uuid"
)

// Repository defines access to queued payment requests.
type Repository interface {
	Create(ctx context.Context, create dto.PendingMovementCreate) error
	Update(ctx context.Context, id uuid.UUID, update dto.PendingMovementUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*dto.PendingMovementRead, error)

	// ListByAccount returns one page of requests for the owner account,
	// newest first. page starts at 1.
	ListByAccount(ctx context.Context, accountID uuid.UUID, page, pageSize int) (dto.Page[*dto.PendingMovementRead], error)
}
