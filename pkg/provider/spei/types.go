package spei

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the gateway's account-type code.
type AccountType string

const (
	// AccountTypeCard addresses a 16-digit debit card.
	AccountTypeCard AccountType = "3"
	// AccountTypeClabe addresses an 18-digit CLABE.
	AccountTypeClabe AccountType = "40"
)

// Fixed payload values.
const (
	OrderingAccountType   = AccountTypeClabe
	PaymentTypeThirdParty = "1"
	RfcCurpNotDisclosed   = "ND"
	StatusInitialized     = "INITIALIZED"
	EstadoSettled         = "LQ"
	EstadoReturned        = "D"
)

// SendRequest carries the per-transfer fields of an outbound wire. Company
// and operating institution come from the client configuration.
type SendRequest struct {
	TrackingCode            string
	Concept                 string
	OrderingAccount         string
	OrderingName            string
	BeneficiaryAccount      string
	BeneficiaryName         string
	BeneficiaryAccountType  AccountType
	CounterpartyInstitution string
	Amount                  decimal.Decimal
	NumericReference        string
}

// InboundTransfer is a wire received on one of this system's CLABEs.
type InboundTransfer struct {
	ID                  string
	TrackingCode        string
	Amount              decimal.Decimal
	Concept             string
	NumericReference    string
	OrderingName        string
	OrderingAccount     string
	OrderingInstitution string
	BeneficiaryAccount  string
	BeneficiaryName     string
	Estado              string
	OperationDate       time.Time
	Raw                 map[string]any
}
