package contact

import (
	"testing"

	"github.com/amirasaad/speibank/pkg/domain/account"
	"github.com/stretchr/testify/assert"
)

func TestContact_Validate(t *testing.T) {
	tests := []struct {
		name    string
		contact Contact
		wantErr error
	}{
		{"clabe", Contact{Name: "Ana", Clabe: "012180001234567891"}, nil},
		{"card", Contact{Name: "Ana", CardNumber: "4152313412345678"}, nil},
		{"missing name", Contact{Clabe: "012180001234567891"}, ErrNameRequired},
		{"both numbers", Contact{Name: "Ana", Clabe: "012180001234567891", CardNumber: "4152313412345678"}, ErrAccountOrCard},
		{"no number", Contact{Name: "Ana"}, ErrAccountOrCard},
		{"short clabe", Contact{Name: "Ana", Clabe: "01218000123456789"}, account.ErrInvalidClabe},
		{"short card", Contact{Name: "Ana", CardNumber: "415231341234567"}, ErrInvalidCardNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.contact.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestContact_NormalizeAndNumber(t *testing.T) {
	c := Contact{Name: "  Ana ", CardNumber: " 4152 3134 1234 5678 "}
	c.Normalize()
	assert.Equal(t, "Ana", c.Name)
	assert.Equal(t, "4152313412345678", c.Number())
	assert.NoError(t, c.Validate())
}
