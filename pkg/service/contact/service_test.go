package contact

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/amirasaad/speibank/infra/repository/memory"
	"github.com/amirasaad/speibank/pkg/domain/account"
	"github.com/amirasaad/speibank/pkg/domain/contact"
	"github.com/amirasaad/speibank/pkg/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() (*Service, *memory.Store) {
	store := memory.NewStore()
	return New(store, nil, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func TestService_CreateResolvesBankName(t *testing.T) {
	svc, _ := newService()
	owner := uuid.New()

	c, err := svc.Create(context.Background(), contact.Contact{
		AccountID: owner,
		Name:      "  Proveedora SA ",
		Clabe:     "012180001234567891",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.Equal(t, "Proveedora SA", c.Name)
	assert.Equal(t, "BBVA MEXICO", c.BankName)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestService_CreateKeepsGivenBankName(t *testing.T) {
	svc, _ := newService()
	c, err := svc.Create(context.Background(), contact.Contact{
		AccountID:  uuid.New(),
		Name:       "Ana",
		CardNumber: "4152 3134 1234 5678",
		BankName:   "BANORTE",
	})
	require.NoError(t, err)
	assert.Equal(t, "4152313412345678", c.CardNumber)
	assert.Equal(t, "BANORTE", c.BankName)
}

func TestService_CreateValidation(t *testing.T) {
	svc, _ := newService()
	tests := []struct {
		name string
		in   contact.Contact
		want error
	}{
		{"no number", contact.Contact{Name: "Ana"}, contact.ErrAccountOrCard},
		{"both numbers", contact.Contact{Name: "Ana", Clabe: "012180001234567891", CardNumber: "4152313412345678"}, contact.ErrAccountOrCard},
		{"short clabe", contact.Contact{Name: "Ana", Clabe: "01218000123456789"}, account.ErrInvalidClabe},
		{"letters in card", contact.Contact{Name: "Ana", CardNumber: "41523134123456ab"}, contact.ErrInvalidCardNumber},
		{"no name", contact.Contact{Clabe: "012180001234567891"}, contact.ErrNameRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.AccountID = uuid.New()
			_, err := svc.Create(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestService_CreateDuplicate(t *testing.T) {
	svc, _ := newService()
	owner := uuid.New()
	in := contact.Contact{AccountID: owner, Name: "Ana", Clabe: "012180001234567891"}

	_, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, contact.ErrDuplicateContact)

	in.AccountID = uuid.New()
	_, err = svc.Create(context.Background(), in)
	assert.NoError(t, err, "another account may save the same number")
}

func TestService_ListOrderedByName(t *testing.T) {
	svc, _ := newService()
	owner := uuid.New()
	for _, c := range []contact.Contact{
		{AccountID: owner, Name: "Zoe", Clabe: "012180001234567891"},
		{AccountID: owner, Name: "Ana", Clabe: "072180001234567892"},
		{AccountID: uuid.New(), Name: "Otro", Clabe: "002180001234567893"},
	} {
		_, err := svc.Create(context.Background(), c)
		require.NoError(t, err)
	}

	list, err := svc.List(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ana", list[0].Name)
	assert.Equal(t, "Zoe", list[1].Name)
}

func TestService_Update(t *testing.T) {
	svc, _ := newService()
	owner := uuid.New()
	c, err := svc.Create(context.Background(), contact.Contact{AccountID: owner, Name: "Ana", Clabe: "012180001234567891"})
	require.NoError(t, err)
	other, err := svc.Create(context.Background(), contact.Contact{AccountID: owner, Name: "Beto", Clabe: "002180001234567893"})
	require.NoError(t, err)

	alias := "Renta"
	clabe := "072180001234567892"
	updated, err := svc.Update(context.Background(), owner, c.ID, dto.ContactUpdate{Alias: &alias, Clabe: &clabe})
	require.NoError(t, err)
	assert.Equal(t, "Renta", updated.Alias)
	assert.Equal(t, clabe, updated.Clabe)
	assert.Equal(t, "BANORTE", updated.BankName)

	_, err = svc.Update(context.Background(), owner, c.ID, dto.ContactUpdate{Clabe: &other.Clabe})
	assert.ErrorIs(t, err, contact.ErrDuplicateContact)

	card := "4152313412345678"
	_, err = svc.Update(context.Background(), owner, c.ID, dto.ContactUpdate{CardNumber: &card})
	assert.ErrorIs(t, err, contact.ErrAccountOrCard)

	_, err = svc.Update(context.Background(), uuid.New(), c.ID, dto.ContactUpdate{Alias: &alias})
	assert.ErrorIs(t, err, contact.ErrContactNotFound)
}

func TestService_Delete(t *testing.T) {
	svc, store := newService()
	owner := uuid.New()
	c, err := svc.Create(context.Background(), contact.Contact{AccountID: owner, Name: "Ana", Clabe: "012180001234567891"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(context.Background(), uuid.New(), c.ID), contact.ErrContactNotFound)
	require.NoError(t, svc.Delete(context.Background(), owner, c.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), owner, c.ID), contact.ErrContactNotFound)

	store.FailOn("contact.ListByAccount", errors.New("boom"))
	_, err = svc.List(context.Background(), owner)
	assert.Error(t, err)
}
