package team

import (
	"context"

	"github.com/amirasaad/speibank/infra/repository/model"
	"github.com/amirasaad/speibank/pkg/dto"
	repo "github.com/amirasaad/speibank/pkg/repository/team"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New creates a team repository using the provided *gorm.DB.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, create dto.TeamMemberCreate) error {
	row := model.TeamMember{
		ID:              create.ID,
		OwnerAccountID:  create.OwnerAccountID,
		MemberAccountID: create.MemberAccountID,
		CanTransfer:     create.CanTransfer,
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).Create(&row).Error
	})
}

func (r *repository) GetMember(ctx context.Context, ownerID, memberID uuid.UUID) (*dto.TeamMemberRead, error) {
	var row model.TeamMember
	if err := r.db.WithContext(ctx).
		Where("owner_account_id = ? AND member_account_id = ?", ownerID, memberID).
		First(&row).Error; err != nil {
		return nil, model.MapGormErrorToDomain(err)
	}
	return mapModelToDTO(&row), nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*dto.TeamMemberRead, error) {
	var rows []model.TeamMember
	if err := r.db.WithContext(ctx).
		Where("owner_account_id = ?", ownerID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, model.MapGormErrorToDomain(err)
	}
	out := make([]*dto.TeamMemberRead, 0, len(rows))
	for i := range rows {
		out = append(out, mapModelToDTO(&rows[i]))
	}
	return out, nil
}

func mapModelToDTO(row *model.TeamMember) *dto.TeamMemberRead {
	return &dto.TeamMemberRead{
		ID:              row.ID,
		OwnerAccountID:  row.OwnerAccountID,
		MemberAccountID: row.MemberAccountID,
		CanTransfer:     row.CanTransfer,
		CreatedAt:       row.CreatedAt,
	}
}
