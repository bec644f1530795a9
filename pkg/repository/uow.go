package repository

import (
	"context"
	"fmt"
	"reflect"

	"github.com/amirasaad/speibank/pkg/repository/account"
	"github.com/amirasaad/speibank/pkg/repository/contact"
	"github.com/amirasaad/speibank/pkg/repository/movement"
	"github.com/amirasaad/speibank/pkg/repository/pending"
	"github.com/amirasaad/speibank/pkg/repository/team"
)

// UnitOfWork defines the contract for transactional work and repository
// access. Repositories obtained inside Do share its transaction.
//
// Example usage:
//
//	repoAny, err := uow.GetRepository(reflect.TypeOf((*account.Repository)(nil)).Elem())
//	repo := repoAny.(account.Repository)
type UnitOfWork interface {
	// Do executes fn within a transaction boundary. If fn returns an error
	// the transaction is rolled back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	// GetRepository returns a repository of the requested interface type,
	// bound to the current transaction or session.
	GetRepository(repoType reflect.Type) (any, error)
}

// Repository interface types accepted by GetRepository.
var (
	AccountRepositoryType  = reflect.TypeOf((*account.Repository)(nil)).Elem()
	MovementRepositoryType = reflect.TypeOf((*movement.Repository)(nil)).Elem()
	ContactRepositoryType  = reflect.TypeOf((*contact.Repository)(nil)).Elem()
	PendingRepositoryType  = reflect.TypeOf((*pending.Repository)(nil)).Elem()
	TeamRepositoryType     = reflect.TypeOf((*team.Repository)(nil)).Elem()
)

// GetRepo is a typed wrapper around UnitOfWork.GetRepository.
func GetRepo[T any](uow UnitOfWork) (T, error) {
	var zero T
	repoType := reflect.TypeOf((*T)(nil)).Elem()
	repoAny, err := uow.GetRepository(repoType)
	if err != nil {
		return zero, err
	}
	repo, ok := repoAny.(T)
	if !ok {
		return zero, fmt.Errorf("repository is not %v", repoType)
	}
	return repo, nil
}
