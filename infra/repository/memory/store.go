// Package memory is an in-process Ledger Store. It implements every
// repository and the UnitOfWork over maps, with copy-on-write transactions,
// and backs local runs without a database and the service tests.
package memory

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"sync"

	"github.com/amirasaad/speibank/pkg/dto"
	"github.com/amirasaad/speibank/pkg/repository"
	"github.com/google/uuid"
)

type movementRow struct {
	dto.MovementRead
	seq int64
}

type pendingRow struct {
	dto.PendingMovementRead
	seq int64
}

type tables struct {
	accounts  map[uuid.UUID]dto.AccountRead
	movements map[uuid.UUID]movementRow
	contacts  map[uuid.UUID]dto.ContactRead
	pendings  map[uuid.UUID]pendingRow
	team      map[uuid.UUID]dto.TeamMemberRead
	seq       int64
}

func newTables() *tables {
	return &tables{
		accounts:  make(map[uuid.UUID]dto.AccountRead),
		movements: make(map[uuid.UUID]movementRow),
		contacts:  make(map[uuid.UUID]dto.ContactRead),
		pendings:  make(map[uuid.UUID]pendingRow),
		team:      make(map[uuid.UUID]dto.TeamMemberRead),
	}
}

func (t *tables) clone() *tables {
	c := &tables{
		accounts:  maps.Clone(t.accounts),
		movements: make(map[uuid.UUID]movementRow, len(t.movements)),
		contacts:  maps.Clone(t.contacts),
		pendings:  maps.Clone(t.pendings),
		team:      maps.Clone(t.team),
		seq:       t.seq,
	}
	for id, m := range t.movements {
		m.Metadata = maps.Clone(m.Metadata)
		c.movements[id] = m
	}
	return c
}

func (t *tables) next() int64 {
	t.seq++
	return t.seq
}

// session serializes access to one set of tables.
type session interface {
	with(fn func(t *tables) error) error
}

type rootSession struct{ s *Store }

func (r rootSession) with(fn func(t *tables) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(r.s.t)
}

type txSession struct {
	mu sync.Mutex
	t  *tables
}

func (x *txSession) with(fn func(t *tables) error) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return fn(x.t)
}

// Store is the root UnitOfWork. Operations outside Do commit one at a time;
// Do runs on a private copy that replaces the committed tables only when
// fn succeeds.
type Store struct {
	mu     sync.Mutex
	t      *tables
	faults *faults
}

var _ repository.UnitOfWork = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{t: newTables(), faults: &faults{errs: make(map[string]error)}}
}

// Do implements repository.UnitOfWork.
func (s *Store) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &txUoW{sess: &txSession{t: s.t.clone()}, faults: s.faults}
	if err := fn(tx); err != nil {
		return err
	}
	s.t = tx.sess.t
	return nil
}

// GetRepository implements repository.UnitOfWork.
func (s *Store) GetRepository(repoType reflect.Type) (any, error) {
	return newRepository(repoType, rootSession{s: s}, s.faults)
}

// FailOn makes every call of op return err until ClearFailures. op is
// "<aggregate>.<Method>", for example "movement.Create".
func (s *Store) FailOn(op string, err error) {
	s.faults.set(op, err)
}

// ClearFailures removes all injected failures.
func (s *Store) ClearFailures() {
	s.faults.clear()
}

// Account returns a committed account, or false.
func (s *Store) Account(id uuid.UUID) (dto.AccountRead, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.t.accounts[id]
	return a, ok
}

// Movements returns every committed movement in insertion order.
func (s *Store) Movements() []dto.MovementRead {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := sortedMovements(s.t, func(movementRow) bool { return true }, false)
	out := make([]dto.MovementRead, len(rows))
	for i, r := range rows {
		out[i] = *r
	}
	return out
}

type txUoW struct {
	sess   *txSession
	faults *faults
}

func (u *txUoW) Do(_ context.Context, fn func(uow repository.UnitOfWork) error) error {
	return fn(u)
}

func (u *txUoW) GetRepository(repoType reflect.Type) (any, error) {
	return newRepository(repoType, u.sess, u.faults)
}

func newRepository(repoType reflect.Type, sess session, f *faults) (any, error) {
	switch repoType {
	case repository.AccountRepositoryType:
		return &accountRepo{sess: sess, faults: f}, nil
	case repository.MovementRepositoryType:
		return &movementRepo{sess: sess, faults: f}, nil
	case repository.ContactRepositoryType:
		return &contactRepo{sess: sess, faults: f}, nil
	case repository.PendingRepositoryType:
		return &pendingRepo{sess: sess, faults: f}, nil
	case repository.TeamRepositoryType:
		return &teamRepo{sess: sess, faults: f}, nil
	}
	return nil, fmt.Errorf("unsupported repository type: %v", repoType)
}

type faults struct {
	mu   sync.RWMutex
	errs map[string]error
}

func (f *faults) set(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[op] = err
}

func (f *faults) clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = make(map[string]error)
}

func (f *faults) check(op string) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.errs[op]
}
