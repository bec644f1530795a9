package contact

import (
	"errors"
	"strings"
	"time"

	"github.com/amirasaad/speibank/pkg/domain/account"
	"github.com/google/uuid"
)

// CardLength is the length of a debit card number.
const CardLength = 16

var (
	ErrContactNotFound   = errors.New("contact not found")
	ErrDuplicateContact  = errors.New("contact already exists for this account number")
	ErrAccountOrCard     = errors.New("exactly one of clabe or card number is required")
	ErrInvalidCardNumber = errors.New("card number must be 16 digits")
	ErrNameRequired      = errors.New("contact name is required")
)

// Contact is a saved counterparty. It is display data only; settlement
// always re-derives the bank from the account number given at transfer time.
type Contact struct {
	ID         uuid.UUID
	AccountID  uuid.UUID
	Name       string
	Alias      string
	BankName   string
	Clabe      string
	CardNumber string
	Email      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Number returns whichever account number the contact carries.
func (c *Contact) Number() string {
	if c.Clabe != "" {
		return c.Clabe
	}
	return c.CardNumber
}

// Normalize trims user input in place.
func (c *Contact) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Alias = strings.TrimSpace(c.Alias)
	c.BankName = strings.TrimSpace(c.BankName)
	c.Clabe = strings.TrimSpace(c.Clabe)
	c.CardNumber = strings.ReplaceAll(strings.TrimSpace(c.CardNumber), " ", "")
	c.Email = strings.TrimSpace(c.Email)
}

// Validate enforces the format rules for a contact.
func (c *Contact) Validate() error {
	if c.Name == "" {
		return ErrNameRequired
	}
	hasClabe, hasCard := c.Clabe != "", c.CardNumber != ""
	if hasClabe == hasCard {
		return ErrAccountOrCard
	}
	if hasClabe {
		return account.ValidateClabe(c.Clabe)
	}
	if len(c.CardNumber) != CardLength || !account.IsDigits(c.CardNumber) {
		return ErrInvalidCardNumber
	}
	return nil
}
