package pending

import (
	"context"

	"github.com/amirasaad/speibank/infra/repository/model"
	"github.com/amirasaad/speibank/pkg/domain"
	"github.com/amirasaad/speibank/pkg/dto"
	repo "github.com/amirasaad/speibank/pkg/repository/pending"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxPageSize bounds ListByAccount.
const MaxPageSize = 100

type repository struct {
	db *gorm.DB
}

// New creates a pending-movement repository using the provided *gorm.DB.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, create dto.PendingMovementCreate) error {
	row := model.PendingMovement{
		ID:                  create.ID,
		AccountID:           create.AccountID,
		RequestedBy:         create.RequestedBy,
		TeamMemberID:        create.TeamMemberID,
		Amount:              create.Amount,
		Commission:          create.Commission,
		FinalAmount:         create.FinalAmount,
		CounterpartyName:    create.CounterpartyName,
		CounterpartyAccount: create.CounterpartyAccount,
		AccountType:         create.AccountType,
		BankCode:            create.BankCode,
		Concept:             create.Concept,
		SecondaryConcept:    create.SecondaryConcept,
		Status:              create.Status,
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).Create(&row).Error
	})
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, update dto.PendingMovementUpdate) error {
	updates := make(map[string]any)
	if update.Status != nil {
		updates["status"] = *update.Status
	}
	if update.RejectionReason != nil {
		updates["rejection_reason"] = *update.RejectionReason
	}
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&model.PendingMovement{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return model.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.PendingMovement{}, "id = ?", id)
	if res.Error != nil {
		return model.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*dto.PendingMovementRead, error) {
	var row model.PendingMovement
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, model.MapGormErrorToDomain(err)
	}
	return mapModelToDTO(&row), nil
}

func (r *repository) ListByAccount(
	ctx context.Context,
	accountID uuid.UUID,
	page, pageSize int,
) (dto.Page[*dto.PendingMovementRead], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	result := dto.Page[*dto.PendingMovementRead]{Page: page, PageSize: pageSize}

	q := r.db.WithContext(ctx).Model(&model.PendingMovement{}).Where("account_id = ?", accountID)
	if err := q.Count(&result.Total).Error; err != nil {
		return result, model.MapGormErrorToDomain(err)
	}
	var rows []model.PendingMovement
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&rows).Error; err != nil {
		return result, model.MapGormErrorToDomain(err)
	}
	result.Items = make([]*dto.PendingMovementRead, 0, len(rows))
	for i := range rows {
		result.Items = append(result.Items, mapModelToDTO(&rows[i]))
	}
	return result, nil
}

func mapModelToDTO(row *model.PendingMovement) *dto.PendingMovementRead {
	return &dto.PendingMovementRead{
		ID:                  row.ID,
		AccountID:           row.AccountID,
		RequestedBy:         row.RequestedBy,
		TeamMemberID:        row.TeamMemberID,
		Amount:              row.Amount,
		Commission:          row.Commission,
		FinalAmount:         row.FinalAmount,
		CounterpartyName:    row.CounterpartyName,
		CounterpartyAccount: row.CounterpartyAccount,
		AccountType:         row.AccountType,
		BankCode:            row.BankCode,
		Concept:             row.Concept,
		SecondaryConcept:    row.SecondaryConcept,
		Status:              row.Status,
		RejectionReason:     row.RejectionReason,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}
