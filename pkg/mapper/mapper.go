// Package mapper converts repository DTOs into domain entities.
package mapper

import (
	"maps"

	"github.com/amirasaad/speibank/pkg/domain/account"
	"github.com/amirasaad/speibank/pkg/domain/contact"
	"github.com/amirasaad/speibank/pkg/domain/movement"
	"github.com/amirasaad/speibank/pkg/domain/pending"
	"github.com/amirasaad/speibank/pkg/dto"
)

// MapAccountReadToDomain maps a dto.AccountRead to a domain Account.
func MapAccountReadToDomain(d *dto.AccountRead) *account.Account {
	return &account.Account{
		ID:                 d.ID,
		Email:              d.Email,
		GivenName:          d.GivenName,
		FamilyName:         d.FamilyName,
		Clabe:              d.Clabe,
		Balance:            d.Balance,
		OutboundCommission: d.OutboundCommission,
		Status:             account.Status(d.Status),
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

// MapMovementReadToDomain maps a dto.MovementRead to a domain Movement.
func MapMovementReadToDomain(d *dto.MovementRead) *movement.Movement {
	return &movement.Movement{
		ID:                  d.ID,
		AccountID:           d.AccountID,
		Category:            movement.Category(d.Category),
		Direction:           movement.Direction(d.Direction),
		Status:              movement.Status(d.Status),
		Amount:              d.Amount,
		Commission:          d.Commission,
		FinalAmount:         d.FinalAmount,
		TrackingCode:        d.TrackingCode,
		CounterpartyName:    d.CounterpartyName,
		CounterpartyBank:    d.CounterpartyBank,
		CounterpartyAccount: d.CounterpartyAccount,
		Concept:             d.Concept,
		SecondaryConcept:    d.SecondaryConcept,
		Metadata:            maps.Clone(d.Metadata),
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

// MapMovementToCreate builds the create DTO for a new ledger row.
func MapMovementToCreate(m *movement.Movement) dto.MovementCreate {
	return dto.MovementCreate{
		ID:                  m.ID,
		AccountID:           m.AccountID,
		Category:            string(m.Category),
		Direction:           string(m.Direction),
		Status:              string(m.Status),
		Amount:              m.Amount,
		Commission:          m.Commission,
		FinalAmount:         m.FinalAmount,
		TrackingCode:        m.TrackingCode,
		CounterpartyName:    m.CounterpartyName,
		CounterpartyBank:    m.CounterpartyBank,
		CounterpartyAccount: m.CounterpartyAccount,
		Concept:             m.Concept,
		SecondaryConcept:    m.SecondaryConcept,
		Metadata:            maps.Clone(m.Metadata),
	}
}

// MapContactReadToDomain maps a dto.ContactRead to a domain Contact.
func MapContactReadToDomain(d *dto.ContactRead) *contact.Contact {
	return &contact.Contact{
		ID:         d.ID,
		AccountID:  d.AccountID,
		Name:       d.Name,
		Alias:      d.Alias,
		BankName:   d.BankName,
		Clabe:      d.Clabe,
		CardNumber: d.CardNumber,
		Email:      d.Email,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// MapContactToCreate builds the create DTO for a contact.
func MapContactToCreate(c *contact.Contact) dto.ContactCreate {
	return dto.ContactCreate{
		ID:         c.ID,
		AccountID:  c.AccountID,
		Name:       c.Name,
		Alias:      c.Alias,
		BankName:   c.BankName,
		Clabe:      c.Clabe,
		CardNumber: c.CardNumber,
		Email:      c.Email,
	}
}

// MapPendingReadToDomain maps a dto.PendingMovementRead to a domain
// PendingMovement.
func MapPendingReadToDomain(d *dto.PendingMovementRead) *pending.PendingMovement {
	return &pending.PendingMovement{
		ID:                  d.ID,
		AccountID:           d.AccountID,
		RequestedBy:         d.RequestedBy,
		TeamMemberID:        d.TeamMemberID,
		Amount:              d.Amount,
		Commission:          d.Commission,
		FinalAmount:         d.FinalAmount,
		CounterpartyName:    d.CounterpartyName,
		CounterpartyAccount: d.CounterpartyAccount,
		AccountType:         d.AccountType,
		BankCode:            d.BankCode,
		Concept:             d.Concept,
		SecondaryConcept:    d.SecondaryConcept,
		Status:              pending.Status(d.Status),
		RejectionReason:     d.RejectionReason,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

// MapTeamMemberReadToDomain maps a dto.TeamMemberRead to a domain TeamMember.
func MapTeamMemberReadToDomain(d *dto.TeamMemberRead) *pending.TeamMember {
	return &pending.TeamMember{
		ID:              d.ID,
		OwnerAccountID:  d.OwnerAccountID,
		MemberAccountID: d.MemberAccountID,
		CanTransfer:     d.CanTransfer,
		CreatedAt:       d.CreatedAt,
	}
}
