// Package bank resolves bank names and settlement institution codes from
// account numbers and card bank selections.
package bank

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amirasaad/speibank/pkg/domain/account"
)

// DefaultInstitutionCode is this system's own settlement participant. It is
// returned when no mapping exists for a bank code.
const DefaultInstitutionCode = "90646"

// CodeLength is the length of a local bank code.
const CodeLength = 3

var ErrUnknownBank = errors.New("unknown bank code")

// Resolution is the outcome of ResolveBank.
type Resolution struct {
	BankCode string
	BankName string
}

// Directory is a read-only lookup over the static bank catalogue.
type Directory struct {
	primary            map[string]Institution
	secondary          map[string]Institution
	ordered            []Institution
	defaultInstitution string
}

// NewDirectory builds a directory from the given tables. An empty
// defaultInstitution falls back to DefaultInstitutionCode.
func NewDirectory(primary, secondary []Institution, defaultInstitution string) *Directory {
	if defaultInstitution == "" {
		defaultInstitution = DefaultInstitutionCode
	}
	d := &Directory{
		primary:            make(map[string]Institution, len(primary)),
		secondary:          make(map[string]Institution, len(secondary)),
		defaultInstitution: defaultInstitution,
	}
	for _, in := range primary {
		d.primary[in.Code] = in
		d.ordered = append(d.ordered, in)
	}
	for _, in := range secondary {
		d.secondary[in.Code] = in
		if _, ok := d.primary[in.Code]; !ok {
			d.ordered = append(d.ordered, in)
		}
	}
	return d
}

// Default returns a directory over the compiled-in catalogue.
func Default(defaultInstitution string) *Directory {
	return NewDirectory(primaryInstitutions, secondaryInstitutions, defaultInstitution)
}

// BankCodeFromCLABE returns the first three digits of a CLABE.
func BankCodeFromCLABE(clabe string) (string, error) {
	if err := account.ValidateClabe(clabe); err != nil {
		return "", err
	}
	return clabe[:CodeLength], nil
}

// ResolveBank accepts a full CLABE or an explicitly selected bank code.
func (d *Directory) ResolveBank(prefixOrSelectedCode string) (Resolution, error) {
	code := strings.TrimSpace(prefixOrSelectedCode)
	if len(code) == account.ClabeLength {
		c, err := BankCodeFromCLABE(code)
		if err != nil {
			return Resolution{}, err
		}
		code = c
	}
	if len(code) != CodeLength || !account.IsDigits(code) {
		return Resolution{}, fmt.Errorf("%w: %q", ErrUnknownBank, prefixOrSelectedCode)
	}
	if in, ok := d.primary[code]; ok && in.Name != "" {
		return Resolution{BankCode: code, BankName: in.Name}, nil
	}
	if in, ok := d.secondary[code]; ok {
		return Resolution{BankCode: code, BankName: in.Name}, nil
	}
	return Resolution{BankCode: code}, fmt.Errorf("%w: %s", ErrUnknownBank, code)
}

// ResolveInstitutionCode never fails: primary table, then secondary
// override, then the default participant.
func (d *Directory) ResolveInstitutionCode(bankCode string) string {
	if in, ok := d.primary[bankCode]; ok && in.InstitutionCode != "" {
		return in.InstitutionCode
	}
	if in, ok := d.secondary[bankCode]; ok && in.InstitutionCode != "" {
		return in.InstitutionCode
	}
	return d.defaultInstitution
}

// Banks lists every known bank, primary entries first. Used for card bank
// selection lists.
func (d *Directory) Banks() []Institution {
	return append([]Institution(nil), d.ordered...)
}
