// Package model holds the gorm records of the ledger store.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account represents an account record in the database.
type Account struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Email              string          `gorm:"uniqueIndex;not null;size:255"`
	GivenName          string          `gorm:"size:120"`
	FamilyName         string          `gorm:"size:120"`
	Clabe              string          `gorm:"uniqueIndex;not null;size:18"`
	Balance            decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	OutboundCommission decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Status             string          `gorm:"size:16;not null"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string { return "accounts" }

// Movement represents one ledger row. Rows of one transfer share
// TrackingCode; an account books a tracking code at most once per direction.
type Movement struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	AccountID           uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_movements_tracking_account_direction,priority:2"`
	Category            string          `gorm:"size:16;not null"`
	Direction           string          `gorm:"size:16;not null;uniqueIndex:idx_movements_tracking_account_direction,priority:3"`
	Status              string          `gorm:"size:16;not null"`
	Amount              decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Commission          decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	FinalAmount         decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	TrackingCode        string          `gorm:"size:40;not null;uniqueIndex:idx_movements_tracking_account_direction,priority:1"`
	CounterpartyName    string          `gorm:"size:255"`
	CounterpartyBank    string          `gorm:"size:120"`
	CounterpartyAccount string          `gorm:"size:18"`
	Concept             string          `gorm:"size:255"`
	SecondaryConcept    string          `gorm:"size:255"`
	Metadata            map[string]any  `gorm:"type:jsonb;serializer:json"`
	CreatedAt           time.Time       `gorm:"index"`
	UpdatedAt           time.Time
}

// TableName specifies the table name for the Movement model.
func (Movement) TableName() string { return "movements" }

// Contact represents a saved counterparty.
type Contact struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"size:255;not null"`
	Alias      string    `gorm:"size:120"`
	BankName   string    `gorm:"size:120"`
	Clabe      string    `gorm:"size:18"`
	CardNumber string    `gorm:"size:16"`
	Email      string    `gorm:"size:255"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the table name for the Contact model.
func (Contact) TableName() string { return "contacts" }

// PendingMovement represents a payment request awaiting approval.
type PendingMovement struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	AccountID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	RequestedBy         uuid.UUID       `gorm:"type:uuid;not null"`
	TeamMemberID        uuid.UUID       `gorm:"type:uuid"`
	Amount              decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Commission          decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	FinalAmount         decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	CounterpartyName    string          `gorm:"size:255"`
	CounterpartyAccount string          `gorm:"size:18;not null"`
	AccountType         string          `gorm:"size:8;not null"`
	BankCode            string          `gorm:"size:3"`
	Concept             string          `gorm:"size:255"`
	SecondaryConcept    string          `gorm:"size:255"`
	Status              string          `gorm:"size:16;not null"`
	RejectionReason     string          `gorm:"size:255"`
	CreatedAt           time.Time       `gorm:"index"`
	UpdatedAt           time.Time
}

// TableName specifies the table name for the PendingMovement model.
func (PendingMovement) TableName() string { return "pending_movements" }

// TeamMember links a member account to an owner account.
type TeamMember struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerAccountID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_team_owner_member,priority:1"`
	MemberAccountID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_team_owner_member,priority:2"`
	CanTransfer     bool      `gorm:"not null"`
	CreatedAt       time.Time
}

// TableName specifies the table name for the TeamMember model.
func (TeamMember) TableName() string { return "team_members" }
