package contact

import (
	"context"

	"github.com/amirasaad/speibank/pkg/dto"
	"github.com/google/uuid"
)

// Repository defines access to saved counterparties.
type Repository interface {
	Create(ctx context.Context, create dto.ContactCreate) error
	Update(ctx context.Context, id uuid.UUID, update dto.ContactUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*dto.ContactRead, error)

	// ListByAccount lists contacts of an account ordered by name.
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*dto.ContactRead, error)

	// FindByNumber finds the contact of accountID holding the CLABE or card
	// number. It returns domain.ErrNotFound when there is none.
	FindByNumber(ctx context.Context, accountID uuid.UUID, number string) (*dto.ContactRead, error)
}
