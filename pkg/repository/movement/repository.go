package movement

import (
	"context"

	"github.com/amirasaad/speibank/pkg/dto"
	"github.com/google/uuid"
)

// Repository defines access to the append-only movement ledger.
type Repository interface {
	// Create appends a ledger row.
	Create(ctx context.Context, create dto.MovementCreate) error

	// Update changes status and merges metadata.
	Update(ctx context.Context, id uuid.UUID, update dto.MovementUpdate) error

	// Transition moves a row from status from to status to and merges
	// metadata. It reports false, without writing, when the row is no
	// longer in status from.
	Transition(ctx context.Context, id uuid.UUID, from, to string, metadata map[string]any) (bool, error)

	// Get retrieves a movement by its ID.
	Get(ctx context.Context, id uuid.UUID) (*dto.MovementRead, error)

	// ListByAccount lists movements of an account, newest first.
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*dto.MovementRead, error)

	// ListByTrackingCode returns every movement produced by one transfer.
	ListByTrackingCode(ctx context.Context, trackingCode string) ([]*dto.MovementRead, error)

	// TrackingCodeExists reports whether any row carries trackingCode.
	TrackingCodeExists(ctx context.Context, trackingCode string) (bool, error)
}
