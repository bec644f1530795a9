// Package repository wires the gorm repositories behind a UnitOfWork.
package repository

import (
	"context"
	"fmt"
	"reflect"

	"github.com/amirasaad/speibank/infra/repository/account"
	"github.com/amirasaad/speibank/infra/repository/contact"
	"github.com/amirasaad/speibank/infra/repository/movement"
	"github.com/amirasaad/speibank/infra/repository/pending"
	"github.com/amirasaad/speibank/infra/repository/team"
	"github.com/amirasaad/speibank/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides a transaction boundary and repository access in one
// abstraction. Repositories obtained inside Do share its transaction.
type UoW struct {
	db           *gorm.DB
	tx           *gorm.DB
	repoRegistry map[reflect.Type]func(*gorm.DB) any
}

var _ repository.UnitOfWork = (*UoW)(nil)

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{
		db: db,
		repoRegistry: map[reflect.Type]func(*gorm.DB) any{
			repository.AccountRepositoryType:  func(db *gorm.DB) any { return account.New(db) },
			repository.MovementRepositoryType: func(db *gorm.DB) any { return movement.New(db) },
			repository.ContactRepositoryType:  func(db *gorm.DB) any { return contact.New(db) },
			repository.PendingRepositoryType:  func(db *gorm.DB) any { return pending.New(db) },
			repository.TeamRepositoryType:     func(db *gorm.DB) any { return team.New(db) },
		},
	}
}

// Do runs fn in a transaction boundary, providing a UoW bound to it.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.tx != nil {
		return fn(u)
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txnUow := &UoW{db: u.db, tx: tx, repoRegistry: u.repoRegistry}
		return fn(txnUow)
	})
}

// GetRepository returns a repository bound to the current transaction, or
// to the plain session outside Do.
func (u *UoW) GetRepository(repoType reflect.Type) (any, error) {
	constructor, ok := u.repoRegistry[repoType]
	if !ok {
		return nil, fmt.Errorf("unsupported repository type: %v", repoType)
	}
	session := u.tx
	if session == nil {
		session = u.db
	}
	return constructor(session), nil
}
