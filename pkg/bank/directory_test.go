package bank

import (
	"testing"

	"github.com/amirasaad/speibank/pkg/domain/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_ResolveBank(t *testing.T) {
	d := Default("")

	tests := []struct {
		name     string
		input    string
		wantCode string
		wantName string
		wantErr  error
	}{
		{"clabe prefix", "012180001234567891", "012", "BBVA MEXICO", nil},
		{"selected code", "072", "072", "BANORTE", nil},
		{"secondary only row", "722", "722", "MERCADO PAGO", nil},
		{"internal range", "646180218000000001", "646", "STP", nil},
		{"unknown code", "999", "999", "", ErrUnknownBank},
		{"bad length", "12", "", "", ErrUnknownBank},
		{"letters in clabe", "01218000123456789X", "", "", account.ErrInvalidClabe},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.ResolveBank(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.wantCode, got.BankCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, got.BankCode)
			assert.Equal(t, tt.wantName, got.BankName)
		})
	}
}

func TestDirectory_ResolveInstitutionCode(t *testing.T) {
	d := Default("")

	assert.Equal(t, "40012", d.ResolveInstitutionCode("012"), "primary table")
	assert.Equal(t, "90722", d.ResolveInstitutionCode("722"), "secondary override")
	assert.Equal(t, DefaultInstitutionCode, d.ResolveInstitutionCode("999"), "fallback")
	assert.Equal(t, DefaultInstitutionCode, d.ResolveInstitutionCode(""), "fallback on empty")
}

func TestDirectory_CustomDefault(t *testing.T) {
	d := NewDirectory(
		[]Institution{{Code: "100", Name: "PRIMARY"}},
		[]Institution{{Code: "100", InstitutionCode: "90100"}, {Code: "200", Name: "SECOND", InstitutionCode: "90200"}},
		"90999",
	)

	assert.Equal(t, "90100", d.ResolveInstitutionCode("100"))
	assert.Equal(t, "90200", d.ResolveInstitutionCode("200"))
	assert.Equal(t, "90999", d.ResolveInstitutionCode("300"))
	assert.Len(t, d.Banks(), 2)
}

func TestBankCodeFromCLABE(t *testing.T) {
	code, err := BankCodeFromCLABE("002180700000000001")
	require.NoError(t, err)
	assert.Equal(t, "002", code)

	_, err = BankCodeFromCLABE("0021807")
	assert.ErrorIs(t, err, account.ErrInvalidClabe)
}
