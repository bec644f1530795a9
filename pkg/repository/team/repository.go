package team

import (
	"context"

	"github.com/amirasaad/speibank/pkg/dto"
	"github.com/google/uuid"
)

// Repository defines access to team memberships.
type Repository interface {
	Create(ctx context.Context, create dto.TeamMemberCreate) error

	// GetMember returns the membership of memberID in ownerID's team, or
	// domain.ErrNotFound.
	GetMember(ctx context.Context, ownerID, memberID uuid.UUID) (*dto.TeamMemberRead, error)

	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*dto.TeamMemberRead, error)
}
