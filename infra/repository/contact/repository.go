package contact

import (
	"context"

	"github.com/amirasaad/speibank/infra/repository/model"
	"github.com/amirasaad/speibank/pkg/domain"
	"github.com/amirasaad/speibank/pkg/dto"
	repo "github.com/amirasaad/speibank/pkg/repository/contact"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New creates a contact repository using the provided *gorm.DB.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, create dto.ContactCreate) error {
	row := model.Contact{
		ID:         create.ID,
		AccountID:  create.AccountID,
		Name:       create.Name,
		Alias:      create.Alias,
		BankName:   create.BankName,
		Clabe:      create.Clabe,
		CardNumber: create.CardNumber,
		Email:      create.Email,
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).Create(&row).Error
	})
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, update dto.ContactUpdate) error {
	updates := make(map[string]any)
	if update.Name != nil {
		updates["name"] = *update.Name
	}
	if update.Alias != nil {
		updates["alias"] = *update.Alias
	}
	if update.BankName != nil {
		updates["bank_name"] = *update.BankName
	}
	if update.Clabe != nil {
		updates["clabe"] = *update.Clabe
	}
	if update.CardNumber != nil {
		updates["card_number"] = *update.CardNumber
	}
	if update.Email != nil {
		updates["email"] = *update.Email
	}
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&model.Contact{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return model.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Contact{}, "id = ?", id)
	if res.Error != nil {
		return model.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*dto.ContactRead, error) {
	var row model.Contact
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, model.MapGormErrorToDomain(err)
	}
	return mapModelToDTO(&row), nil
}

func (r *repository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*dto.ContactRead, error) {
	var rows []model.Contact
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, model.MapGormErrorToDomain(err)
	}
	out := make([]*dto.ContactRead, 0, len(rows))
	for i := range rows {
		out = append(out, mapModelToDTO(&rows[i]))
	}
	return out, nil
}

func (r *repository) FindByNumber(ctx context.Context, accountID uuid.UUID, number string) (*dto.ContactRead, error) {
	var row model.Contact
	if err := r.db.WithContext(ctx).
		Where("account_id = ? AND (clabe = ? OR card_number = ?)", accountID, number, number).
		First(&row).Error; err != nil {
		return nil, model.MapGormErrorToDomain(err)
	}
	return mapModelToDTO(&row), nil
}

func mapModelToDTO(row *model.Contact) *dto.ContactRead {
	return &dto.ContactRead{
		ID:         row.ID,
		AccountID:  row.AccountID,
		Name:       row.Name,
		Alias:      row.Alias,
		BankName:   row.BankName,
		Clabe:      row.Clabe,
		CardNumber: row.CardNumber,
		Email:      row.Email,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
