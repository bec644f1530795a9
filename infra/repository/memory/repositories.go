package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/amirasaad/speibank/pkg/domain"
	"github.com/amirasaad/speibank/pkg/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type accountRepo struct {
	sess   session
	faults *faults
}

func (r *accountRepo) Create(_ context.Context, create dto.AccountCreate) error {
	if err := r.faults.check("account.Create"); err != nil {
		return err
	}
	return r.sess.with(func(t *tables) error {
		if _, ok := t.accounts[create.ID]; ok {
			return domain.ErrAlreadyExists
		}
		for _, a := range t.accounts {
			if a.Clabe == create.Clabe || (create.Email != "" && a.Email == create.Email) {
				return domain.ErrAlreadyExists
			}
		}
		status := create.Status
		if status == "" {
			status = "ACTIVE"
		}
		now := time.Now().UTC()
		t.accounts[create.ID] = dto.AccountRead{
			ID:                 create.ID,
			Email:              create.Email,
			GivenName:          create.GivenName,
			FamilyName:         create.FamilyName,
			Clabe:              create.Clabe,
			Balance:            create.Balance,
			OutboundCommission: create.OutboundCommission,
			Status:             status,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		return nil
	})
}

func (r *accountRepo) Update(_ context.Context, id uuid.UUID, update dto.AccountUpdate) error {
	if err := r.faults.check("account.Update"); err != nil {
		return err
	}
	return r.sess.with(func(t *tables) error {
		a, ok := t.accounts[id]
		if !ok {
			return domain.ErrNotFound
		}
		if update.GivenName != nil {
			a.GivenName = *update.GivenName
		}
		if update.FamilyName != nil {
			a.FamilyName = *update.FamilyName
		}
		if update.Email != nil {
			a.Email = *update.Email
		}
		if update.OutboundCommission != nil {
			a.OutboundCommission = *update.OutboundCommission
		}
		if update.Status != nil {
			a.Status = *update.Status
		}
		a.UpdatedAt = time.Now().UTC()
		t.accounts[id] = a
		return nil
	})
}

func (r *accountRepo) Get(_ context.Context, id uuid.UUID) (*dto.AccountRead, error) {
	return r.find("account.Get", func(a dto.AccountRead) bool { return a.ID == id })
}

func (r *accountRepo) GetByEmail(_ context.Context, email string) (*dto.AccountRead, error) {
	return r.find("account.GetByEmail", func(a dto.AccountRead) bool { return a.Email == email })
}

func (r *accountRepo) GetByClabe(_ context.Context, clabe string) (*dto.AccountRead, error) {
	return r.find("account.GetByClabe", func(a dto.AccountRead) bool { return a.Clabe == clabe })
}

func (r *accountRepo) find(op string, match func(dto.AccountRead) bool) (*dto.AccountRead, error) {
	if err := r.faults.check(op); err != nil {
		return nil, err
	}
	var out *dto.AccountRead
	err := r.sess.with(func(t *tables) error {
		for _, a := range t.accounts {
			if match(a) {
				out = &a
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

func (r *accountRepo) CompareAndSetBalance(_ context.Context, id uuid.UUID, expected, next decimal.Decimal) error {
	if err := r.faults.check("account.CompareAndSetBalance"); err != nil {
		return err
	}
	return r.sess.with(func(t *tables) error {
		a, ok := t.accounts[id]
		if !ok || !a.Balance.Equal(expected) {
			return domain.ErrConflict
		}
		if next.IsNegative() {
			return domain.ErrValidation
		}
		a.Balance = next
		a.UpdatedAt = time.Now().UTC()
		t.accounts[id] = a
		return nil
	})
}

func (r *accountRepo) Credit(_ context.Context, id uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := r.faults.check("account.Credit"); err != nil {
		return decimal.Zero, err
	}
	var balance decimal.Decimal
	err := r.sess.with(func(t *tables) error {
		a, ok := t.accounts[id]
		if !ok {
			return domain.ErrNotFound
		}
		a.Balance = a.Balance.Add(amount)
		a.UpdatedAt = time.Now().UTC()
		t.accounts[id] = a
		balance = a.Balance
		return nil
	})
	return balance, err
}

type movementRepo struct {
	sess   session
	faults *faults
}

func (r *movementRepo) Create(_ context.Context, create dto.MovementCreate) error {
	if err := r.faults.check("movement.Create"); err != nil {
		return err
	}
	return r.sess.with(func(t *tables) error {
		if _, ok := t.movements[create.ID]; ok {
			return domain.ErrAlreadyExists
		}
		for _, m := range t.movements {
			if m.TrackingCode == create.TrackingCode && m.AccountID == create.AccountID && m.Direction == create.Direction {
				return domain.ErrAlreadyExists
			}
		}
		now := time.Now().UTC()
		t.movements[create.ID] = movementRow{
			MovementRead: dto.MovementRead{
				ID:                  create.ID,
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
				Metadata:            maps.Clone(create.Metadata),
				CreatedAt:           now,
				UpdatedAt:           now,
			},
			seq: t.next(),
		}
		return nil
	})
}

func (r *movementRepo) Update(_ context.Context, id uuid.UUID, update dto.MovementUpdate) error {
	if err := r.faults.check("movement.Update"); err != nil {
		return err
	}
	return r.sess.with(func(t *tables) error {
		m, ok := t.movements[id]
		if !ok {
			return domain.ErrNotFound
		}
		if update.Status != nil {
			m.Status = *update.Status
		}
		if len(update.Metadata) > 0 {
			meta := make(map[string]any, len(m.Metadata)+len(update.Metadata))
			maps.Copy(meta, m.Metadata)
			maps.Copy(meta, update.Metadata)
			m.Metadata = meta
		}
		m.UpdatedAt = time.Now().UTC()
		t.movements[id] = m
		return nil
	})
}

func (r *movementRepo) Transition(_ context.Context, id uuid.UUID, from, to string, metadata map[string]any) (bool, error) {
	if err := r.faults.check("movement.Transition"); err != nil {
		return false, err
	}
	var moved bool
	err := r.sess.with(func(t *tables) error {
		m, ok := t.movements[id]
		if !ok {
			return domain.ErrNotFound
		}
		if m.Status != from {
			return nil
		}
		m.Status = to
		if len(metadata) > 0 {
			meta := make(map[string]any, len(m.Metadata)+len(metadata))
			maps.Copy(meta, m.Metadata)
			maps.Copy(meta, metadata)
			m.Metadata = meta
		}
		m.UpdatedAt = time.Now().UTC()
		t.movements[id] = m
		moved = true
		return nil
	})
	return moved, err
}

func (r *movementRepo) Get(_ context.Context, id uuid.UUID) (*dto.MovementRead, error) {
	if err := r.faults.check("movement.Get"); err != nil {
		return nil, err
	}
	var out *dto.MovementRead
	err := r.sess.with(func(t *tables) error {
		m, ok := t.movements[id]
		if !ok {
			return domain.ErrNotFound
		}
		read := m.MovementRead
		out = &read
		return nil
	})
	return out, err
}

func (r *movementRepo) ListByAccount(_ context.Context, accountID uuid.UUID, limit, offset int) ([]*dto.MovementRead, error) {
	if err := r.faults.check("movement.ListByAccount"); err != nil {
		return nil, err
	}
	var out []*dto.MovementRead
	err := r.sess.with(func(t *tables) error {
		out = page(sortedMovements(t, func(m movementRow) bool { return m.AccountID == accountID }, true), limit, offset)
		return nil
	})
	return out, err
}

func (r *movementRepo) ListByTrackingCode(_ context.Context, trackingCode string) ([]*dto.MovementRead, error) {
	if err := r.faults.check("movement.ListByTrackingCode"); err != nil {
		return nil, err
	}
	var out []*dto.MovementRead
	err := r.sess.with(func(t *tables) error {
		out = sortedMovements(t, func(m movementRow) bool { return m.TrackingCode == trackingCode }, false)
		return nil
	})
	return out, err
}

func (r *movementRepo) TrackingCodeExists(_ context.Context, trackingCode string) (bool, error) {
	if err := r.faults.check("movement.TrackingCodeExists"); err != nil {
		return false, err
	}
	found := false
	err := r.sess.with(func(t *tables) error {
		for _, m := range t.movements {
			if m.TrackingCode == trackingCode {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func sortedMovements(t *tables, keep func(movementRow) bool, newestFirst bool) []*dto.MovementRead {
	rows := make([]movementRow, 0)
	for _, m := range t.movements {
		if keep(m) {
			rows = append(rows, m)
		}
	}
	slices.SortFunc(rows, func(a, b movementRow) int {
		if newestFirst {
			return int(b.seq - a.seq)
		}
		return int(a.seq - b.seq)
	})
	out := make([]*dto.MovementRead, len(rows))
	for i := range rows {
		read := rows[i].MovementRead
		read.Metadata = maps.Clone(read.Metadata)
		out[i] = &read
	}
	return out
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

type contactRepo struct {
	sess   session
	faults *faults
}

func (r *contactRepo) Create(_ context.Context, create dto.ContactCreate) error {
	if err := r.faults.check("contact.Create"); err != nil {
		return err
	}
	return r.sess.with(func(t *tables) error {
		if _, ok := t.contacts[create.ID]; ok {
			return domain.ErrAlreadyExists
		}
		now := time.Now().UTC()
		t.contacts[create.ID] = dto.ContactRead{
			ID:         create.ID,
			AccountID:  create.AccountID,
			Name:       create.Name,
			Alias:      create.Alias,
			BankName:   create.BankName,
			Clabe:      create.Clabe,
			CardNumber: create.CardNumber,
			Email:      create.Email,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return nil
	})
}

func (r *contactRepo) Update(_ context.Context, id uuid.UUID, update dto.ContactUpdate) error {
	if err := r.faults.check("contact.Update"); err != nil {
		return err
	}
	return r.sess.with(func(t *tables) error {
		c, ok := t.contacts[id]
		if !ok {
			return domain.ErrNotFound
		}
		set := func(dst *string, src *string) {
			if src != nil {
				*dst = *src
			}
		}
		set(&c.Name, update.Name)
		set(&c.Alias, update.Alias)
		set(&c.BankName, update.BankName)
		set(&c.Clabe, update.Clabe)
		set(&c.CardNumber, update.CardNumber)
		set(&c.Email, update.Email)
		c.UpdatedAt = time.Now().UTC()
		t.contacts[id] = c
		return nil
	})
}

func (r *contactRepo) Delete(_ context.Context, id uuid.UUID) error {
	if err := r.faults.check("contact.Delete"); err != nil {
		return err
	}
	return r.sess.with(func(t *tables) error {
		if _, ok := t.contacts[id]; !ok {
			return domain.ErrNotFound
		}
		delete(t.contacts, id)
		return nil
	})
}

func (r *contactRepo) Get(_ context.Context, id uuid.UUID) (*dto.ContactRead, error) {
	if err := r.faults.check("contact.Get"); err != nil {
		return nil, err
	}
	var out *dto.ContactRead
	err := r.sess.with(func(t *tables) error {
		c, ok := t.contacts[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *contactRepo) ListByAccount(_ context.Context, accountID uuid.UUID) ([]*dto.ContactRead, error) {
	if err := r.faults.check("contact.ListByAccount"); err != nil {
		return nil, err
	}
	out := make([]*dto.ContactRead, 0)
	err := r.sess.with(func(t *tables) error {
		for _, c := range t.contacts {
			if c.AccountID == accountID {
				out = append(out, &c)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *dto.ContactRead) int { return strings.Compare(a.Name, b.Name) })
	return out, err
}

func (r *contactRepo) FindByNumber(_ context.Context, accountID uuid.UUID, number string) (*dto.ContactRead, error) {
	if err := r.faults.check("contact.FindByNumber"); err != nil {
		return nil, err
	}
	var out *dto.ContactRead
	err := r.sess.with(func(t *tables) error {
		for _, c := range t.contacts {
			if c.AccountID == accountID && (c.Clabe == number || c.CardNumber == number) {
				out = &c
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

type pendingRepo struct {
	sess   session
	faults *faults
}

func (r *pendingRepo) Create(_ context.Context, create dto.PendingMovementCreate) error {
	if err := r.faults.check("pending.Create"); err != nil {
		return err
	}
	return r.sess.with(func(t *tables) error {
		if _, ok := t.pendings[create.ID]; ok {
			return domain.ErrAlreadyExists
		}
		now := time.Now().UTC()
		t.pendings[create.ID] = pendingRow{
			PendingMovementRead: dto.PendingMovementRead{
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
				CreatedAt:           now,
				UpdatedAt:           now,
			},
			seq: t.next(),
		}
		return nil
	})
}

func (r *pendingRepo) Update(_ context.Context, id uuid.UUID, update dto.PendingMovementUpdate) error {
	if err := r.faults.check("pending.Update"); err != nil {
		return err
	}
	return r.sess.with(func(t *tables) error {
		p, ok := t.pendings[id]
		if !ok {
			return domain.ErrNotFound
		}
		if update.Status != nil {
			p.Status = *update.Status
		}
		if update.RejectionReason != nil {
			p.RejectionReason = *update.RejectionReason
		}
		p.UpdatedAt = time.Now().UTC()
		t.pendings[id] = p
		return nil
	})
}

func (r *pendingRepo) Delete(_ context.Context, id uuid.UUID) error {
	if err := r.faults.check("pending.Delete"); err != nil {
		return err
	}
	return r.sess.with(func(t *tables) error {
		if _, ok := t.pendings[id]; !ok {
			return domain.ErrNotFound
		}
		delete(t.pendings, id)
		return nil
	})
}

func (r *pendingRepo) Get(_ context.Context, id uuid.UUID) (*dto.PendingMovementRead, error) {
	if err := r.faults.check("pending.Get"); err != nil {
		return nil, err
	}
	var out *dto.PendingMovementRead
	err := r.sess.with(func(t *tables) error {
		p, ok := t.pendings[id]
		if !ok {
			return domain.ErrNotFound
		}
		read := p.PendingMovementRead
		out = &read
		return nil
	})
	return out, err
}

func (r *pendingRepo) ListByAccount(
	_ context.Context,
	accountID uuid.UUID,
	pageNum, pageSize int,
) (dto.Page[*dto.PendingMovementRead], error) {
	if err := r.faults.check("pending.ListByAccount"); err != nil {
		return dto.Page[*dto.PendingMovementRead]{}, err
	}
	if pageNum < 1 {
		pageNum = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	result := dto.Page[*dto.PendingMovementRead]{Page: pageNum, PageSize: pageSize}
	err := r.sess.with(func(t *tables) error {
		rows := make([]pendingRow, 0)
		for _, p := range t.pendings {
			if p.AccountID == accountID {
				rows = append(rows, p)
			}
		}
		slices.SortFunc(rows, func(a, b pendingRow) int { return int(b.seq - a.seq) })
		result.Total = int64(len(rows))
		items := make([]*dto.PendingMovementRead, len(rows))
		for i := range rows {
			read := rows[i].PendingMovementRead
			items[i] = &read
		}
		result.Items = page(items, pageSize, (pageNum-1)*pageSize)
		return nil
	})
	return result, err
}

type teamRepo struct {
	sess   session
	faults *faults
}

func (r *teamRepo) Create(_ context.Context, create dto.TeamMemberCreate) error {
	if err := r.faults.check("team.Create"); err != nil {
		return err
	}
	return r.sess.with(func(t *tables) error {
		for _, m := range t.team {
			if m.OwnerAccountID == create.OwnerAccountID && m.MemberAccountID == create.MemberAccountID {
				return domain.ErrAlreadyExists
			}
		}
		t.team[create.ID] = dto.TeamMemberRead{
			ID:              create.ID,
			OwnerAccountID:  create.OwnerAccountID,
			MemberAccountID: create.MemberAccountID,
			CanTransfer:     create.CanTransfer,
			CreatedAt:       time.Now().UTC(),
		}
		return nil
	})
}

func (r *teamRepo) GetMember(_ context.Context, ownerID, memberID uuid.UUID) (*dto.TeamMemberRead, error) {
	if err := r.faults.check("team.GetMember"); err != nil {
		return nil, err
	}
	var out *dto.TeamMemberRead
	err := r.sess.with(func(t *tables) error {
		for _, m := range t.team {
			if m.OwnerAccountID == ownerID && m.MemberAccountID == memberID {
				out = &m
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

func (r *teamRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*dto.TeamMemberRead, error) {
	if err := r.faults.check("team.ListByOwner"); err != nil {
		return nil, err
	}
	out := make([]*dto.TeamMemberRead, 0)
	err := r.sess.with(func(t *tables) error {
		for _, m := range t.team {
			if m.OwnerAccountID == ownerID {
				out = append(out, &m)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *dto.TeamMemberRead) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, err
}
