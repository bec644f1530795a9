package movement

import (
	"context"
	"maps"

	"github.com/amirasaad/speibank/infra/repository/model"
	"github.com/amirasaad/speibank/pkg/dto"
	repo "github.com/amirasaad/speibank/pkg/repository/movement"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// New creates a movement repository using the provided *gorm.DB.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

// Create implements movement.Repository.
func (r *repository) Create(ctx context.Context, create dto.MovementCreate) error {
	row := mapCreateDTOToModel(create)
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).Create(&row).Error
	})
}

// Update implements movement.Repository. Metadata keys are merged into the
// stored document.
func (r *repository) Update(ctx context.Context, id uuid.UUID, update dto.MovementUpdate) error {
	var row model.Movement
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return model.MapGormErrorToDomain(err)
	}
	columns := []string{"updated_at"}
	if update.Status != nil {
		row.Status = *update.Status
		columns = append(columns, "status")
	}
	if len(update.Metadata) > 0 {
		if row.Metadata == nil {
			row.Metadata = make(map[string]any, len(update.Metadata))
		}
		maps.Copy(row.Metadata, update.Metadata)
		columns = append(columns, "metadata")
	}
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).Model(&row).Select(columns).Updates(&row).Error
	})
}

// Transition implements movement.Repository. The row is locked for the
// rest of the transaction and the write is guarded on the current status,
// so concurrent callers see exactly one successful transition.
func (r *repository) Transition(
	ctx context.Context,
	id uuid.UUID,
	from, to string,
	metadata map[string]any,
) (bool, error) {
	var row model.Movement
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&row, "id = ?", id).Error; err != nil {
		return false, model.MapGormErrorToDomain(err)
	}
	if row.Status != from {
		return false, nil
	}
	row.Status = to
	columns := []string{"status", "updated_at"}
	if len(metadata) > 0 {
		if row.Metadata == nil {
			row.Metadata = make(map[string]any, len(metadata))
		}
		maps.Copy(row.Metadata, metadata)
		columns = append(columns, "metadata")
	}
	var affected int64
	err := model.WrapError(func() error {
		res := r.db.WithContext(ctx).Model(&row).Where("status = ?", from).Select(columns).Updates(&row)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// Get implements movement.Repository.
func (r *repository) Get(ctx context.Context, id uuid.UUID) (*dto.MovementRead, error) {
	var row model.Movement
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, model.MapGormErrorToDomain(err)
	}
	return mapModelToDTO(&row), nil
}

// ListByAccount implements movement.Repository.
func (r *repository) ListByAccount(
	ctx context.Context,
	accountID uuid.UUID,
	limit, offset int,
) ([]*dto.MovementRead, error) {
	var rows []model.Movement
	q := r.db.WithContext(ctx).Where("account_id = ?", accountID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, model.MapGormErrorToDomain(err)
	}
	return mapModelsToDTO(rows), nil
}

// ListByTrackingCode implements movement.Repository.
func (r *repository) ListByTrackingCode(ctx context.Context, trackingCode string) ([]*dto.MovementRead, error) {
	var rows []model.Movement
	if err := r.db.WithContext(ctx).
		Where("tracking_code = ?", trackingCode).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, model.MapGormErrorToDomain(err)
	}
	return mapModelsToDTO(rows), nil
}

// TrackingCodeExists implements movement.Repository.
func (r *repository) TrackingCodeExists(ctx context.Context, trackingCode string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Movement{}).
		Where("tracking_code = ?", trackingCode).
		Count(&count).Error; err != nil {
		return false, model.MapGormErrorToDomain(err)
	}
	return count > 0, nil
}

func mapCreateDTOToModel(create dto.MovementCreate) model.Movement {
	id := create.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return model.Movement{
		ID:                  id,
		AccountID:           create.AccountID,
		Category:            create.Category,
		Direction:           create.Direction,
		Status:              create.Status,
		Amount:              create.Amount,
		Commission:          create.Commission,
		FinalAmount:         create.FinalAmount,
		TrackingCode:        create.TrackingCode,
		CounterpartyName:    create.CounterpartyName,
		CounterpartyBank:    create.CounterpartyBank,
		CounterpartyAccount: create.CounterpartyAccount,
		Concept:             create.Concept,
		SecondaryConcept:    create.SecondaryConcept,
		Metadata:            create.Metadata,
	}
}

func mapModelToDTO(row *model.Movement) *dto.MovementRead {
	return &dto.MovementRead{
		ID:                  row.ID,
		AccountID:           row.AccountID,
		Category:            row.Category,
		Direction:           row.Direction,
		Status:              row.Status,
		Amount:              row.Amount,
		Commission:          row.Commission,
		FinalAmount:         row.FinalAmount,
		TrackingCode:        row.TrackingCode,
		CounterpartyName:    row.CounterpartyName,
		CounterpartyBank:    row.CounterpartyBank,
		CounterpartyAccount: row.CounterpartyAccount,
		Concept:             row.Concept,
		SecondaryConcept:    row.SecondaryConcept,
		Metadata:            row.Metadata,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}

func mapModelsToDTO(rows []model.Movement) []*dto.MovementRead {
	out := make([]*dto.MovementRead, 0, len(rows))
	for i := range rows {
		out = append(out, mapModelToDTO(&rows[i]))
	}
	return out
}
