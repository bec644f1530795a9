package account

import (
	"context"
	"time"

	"github.com/amirasaad/speibank/infra/repository/model"
	"github.com/amirasaad/speibank/pkg/domain"
	"github.com/amirasaad/speibank/pkg/dto"
	repo "github.com/amirasaad/speibank/pkg/repository/account"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// New creates an account repository using the provided *gorm.DB.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

// Create implements account.Repository.
func (r *repository) Create(ctx context.Context, create dto.AccountCreate) error {
	acct := mapCreateDTOToModel(create)
	return model.WrapError(func() error {
		return r.db.WithContext(ctx).Create(&acct).Error
	})
}

// Update implements account.Repository.
func (r *repository) Update(ctx context.Context, id uuid.UUID, update dto.AccountUpdate) error {
	updates := mapUpdateDTOToModel(update)
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&model.Account{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return model.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Get implements account.Repository.
func (r *repository) Get(ctx context.Context, id uuid.UUID) (*dto.AccountRead, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByEmail implements account.Repository.
func (r *repository) GetByEmail(ctx context.Context, email string) (*dto.AccountRead, error) {
	return r.first(ctx, "email = ?", email)
}

// GetByClabe implements account.Repository.
func (r *repository) GetByClabe(ctx context.Context, clabe string) (*dto.AccountRead, error) {
	return r.first(ctx, "clabe = ?", clabe)
}

func (r *repository) first(ctx context.Context, query string, arg any) (*dto.AccountRead, error) {
	var acct model.Account
	if err := r.db.WithContext(ctx).Where(query, arg).First(&acct).Error; err != nil {
		return nil, model.MapGormErrorToDomain(err)
	}
	return mapModelToDTO(&acct), nil
}

// CompareAndSetBalance implements account.Repository.
func (r *repository) CompareAndSetBalance(
	ctx context.Context,
	id uuid.UUID,
	expected, next decimal.Decimal,
) error {
	res := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ? AND balance = ?", id, expected).
		Updates(map[string]any{"balance": next, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return model.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

// Credit implements account.Repository.
func (r *repository) Credit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	var acct model.Account
	res := r.db.WithContext(ctx).
		Model(&acct).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "balance"}}}).
		Where("id = ?", id).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance + ?", amount),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return decimal.Zero, model.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return decimal.Zero, domain.ErrNotFound
	}
	return acct.Balance, nil
}

func mapCreateDTOToModel(create dto.AccountCreate) model.Account {
	status := create.Status
	if status == "" {
		status = "ACTIVE"
	}
	return model.Account{
		ID:                 create.ID,
		Email:              create.Email,
		GivenName:          create.GivenName,
		FamilyName:         create.FamilyName,
		Clabe:              create.Clabe,
		Balance:            create.Balance,
		OutboundCommission: create.OutboundCommission,
		Status:             status,
	}
}

func mapUpdateDTOToModel(update dto.AccountUpdate) map[string]any {
	updates := make(map[string]any)
	if update.GivenName != nil {
		updates["given_name"] = *update.GivenName
	}
	if update.FamilyName != nil {
		updates["family_name"] = *update.FamilyName
	}
	if update.Email != nil {
		updates["email"] = *update.Email
	}
	if update.OutboundCommission != nil {
		updates["outbound_commission"] = *update.OutboundCommission
	}
	if update.Status != nil {
		updates["status"] = *update.Status
	}
	return updates
}

func mapModelToDTO(acct *model.Account) *dto.AccountRead {
	return &dto.AccountRead{
		ID:                 acct.ID,
		Email:              acct.Email,
		GivenName:          acct.GivenName,
		FamilyName:         acct.FamilyName,
		Clabe:              acct.Clabe,
		Balance:            acct.Balance,
		OutboundCommission: acct.OutboundCommission,
		Status:             acct.Status,
		CreatedAt:          acct.CreatedAt,
		UpdatedAt:          acct.UpdatedAt,
	}
}
