// Package speigateway is the HTTP client for the SPEI settlement gateway.
package speigateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/amirasaad/speibank/pkg/config"
	"github.com/amirasaad/speibank/pkg/domain/money"
	"github.com/amirasaad/speibank/pkg/provider/spei"
	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the lifetime of the per-call bearer token.
const TokenTTL = 60 * time.Second

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// Client implements spei.Gateway over HTTP/JSON. It never retries.
type Client struct {
	baseURL             string
	secret              []byte
	empresa             string
	institucionOperante string
	httpClient          *http.Client
	logger              *slog.Logger
	now                 func() time.Time
}

var _ spei.Gateway = (*Client)(nil)

// New creates a client from configuration. The HTTP client timeout is the
// only deadline applied to gateway calls besides ctx.
func New(cfg *config.Spei, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:             strings.TrimRight(cfg.BaseURL, "/"),
		secret:              []byte(cfg.SigningSecret),
		empresa:             cfg.Empresa,
		institucionOperante: cfg.InstitucionOperante,
		httpClient:          &http.Client{Timeout: cfg.HTTPTimeout},
		logger:              logger.With("provider", "spei"),
		now:                 time.Now,
	}
}

// transactionPayload is the wire shape of POST /transaction.
type transactionPayload struct {
	ClaveRastreo           string      `json:"claveRastreo"`
	ConceptoPago           string      `json:"conceptoPago"`
	CuentaOrdenante        string      `json:"cuentaOrdenante"`
	CuentaBeneficiario     string      `json:"cuentaBeneficiario"`
	Empresa                string      `json:"empresa"`
	InstitucionContraparte string      `json:"institucionContraparte"`
	InstitucionOperante    string      `json:"institucionOperante"`
	Monto                  json.Number `json:"monto"`
	NombreBeneficiario     string      `json:"nombreBeneficiario"`
	NombreOrdenante        string      `json:"nombreOrdenante"`
	ReferenciaNumerica     string      `json:"referenciaNumerica"`
	RfcCurpBeneficiario    string      `json:"rfcCurpBeneficiario"`
	RfcCurpOrdenante       string      `json:"rfcCurpOrdenante"`
	TipoCuentaBeneficiario string      `json:"tipoCuentaBeneficiario"`
	TipoCuentaOrdenante    string      `json:"tipoCuentaOrdenante"`
	TipoPago               string      `json:"tipoPago"`
}

func (c *Client) buildTransaction(req spei.SendRequest) transactionPayload {
	return transactionPayload{
		ClaveRastreo:           req.TrackingCode,
		ConceptoPago:           req.Concept,
		CuentaOrdenante:        req.OrderingAccount,
		CuentaBeneficiario:     req.BeneficiaryAccount,
		Empresa:                c.empresa,
		InstitucionContraparte: req.CounterpartyInstitution,
		InstitucionOperante:    c.institucionOperante,
		Monto:                  json.Number(money.Format(req.Amount)),
		NombreBeneficiario:     req.BeneficiaryName,
		NombreOrdenante:        req.OrderingName,
		ReferenciaNumerica:     req.NumericReference,
		RfcCurpBeneficiario:    spei.RfcCurpNotDisclosed,
		RfcCurpOrdenante:       spei.RfcCurpNotDisclosed,
		TipoCuentaBeneficiario: string(req.BeneficiaryAccountType),
		TipoCuentaOrdenante:    string(spei.OrderingAccountType),
		TipoPago:               spei.PaymentTypeThirdParty,
	}
}

// Send posts an outbound wire exactly once.
func (c *Client) Send(ctx context.Context, req spei.SendRequest) (spei.SendResult, error) {
	logger := c.logger.With("tracking_code", req.TrackingCode)
	logger.Info("🟢 [START] Sending SPEI transaction", "institution", req.CounterpartyInstitution)

	status, body, err := c.post(ctx, "/transaction", c.buildTransaction(req))
	if err != nil {
		logger.Error("❌ [ERROR] SPEI transaction request failed", "error", err)
		return nil, err
	}
	res := ParseSendResponse(status, body)
	switch r := res.(type) {
	case spei.Initialized:
		logger.Info("✅ [SUCCESS] SPEI transaction initialized", "tracking_id", r.TrackingID)
	case spei.Rejected:
		logger.Warn("SPEI transaction rejected", "http_status", status, "reason", r.Reason)
	case spei.Malformed:
		logger.Warn("SPEI transaction returned malformed response", "http_status", status)
	}
	return res, nil
}

// Status queries the settlement state of a wire.
func (c *Client) Status(ctx context.Context, trackingCode string) (spei.StatusResult, error) {
	status, body, err := c.post(ctx, "/transacciones", map[string]string{"claveRastreo": trackingCode})
	if err != nil {
		return nil, err
	}
	if status >= http.StatusBadRequest {
		return nil, spei.NewRejectedError(extractMessage(body))
	}
	return ParseStatusResponse(body)
}

// ListInbound lists wires received on beneficiaryClabe.
func (c *Client) ListInbound(ctx context.Context, beneficiaryClabe string) ([]spei.InboundTransfer, error) {
	status, body, err := c.post(ctx, "/transacciones", map[string]string{"cuentaBeneficiario": beneficiaryClabe})
	if err != nil {
		return nil, err
	}
	if status >= http.StatusBadRequest {
		return nil, spei.NewRejectedError(extractMessage(body))
	}
	return ParseInboundResponse(body)
}

type validatePayload struct {
	ClaveRastreo         string      `json:"claveRastreo"`
	Monto                json.Number `json:"monto"`
	CuentaOrdenante      string      `json:"cuentaOrdenante"`
	NombreOrdenante      string      `json:"nombreOrdenante"`
	InstitucionOrdenante string      `json:"institucionOrdenante"`
	CuentaBeneficiario   string      `json:"cuentaBeneficiario"`
	ReferenciaNumerica   string      `json:"referenciaNumerica"`
}

// ValidateDeposit asks the gateway to confirm an inbound wire.
func (c *Client) ValidateDeposit(ctx context.Context, in spei.InboundTransfer) error {
	status, body, err := c.post(ctx, "/validar-abono", validatePayload{
		ClaveRastreo:         in.TrackingCode,
		Monto:                json.Number(money.Format(in.Amount)),
		CuentaOrdenante:      in.OrderingAccount,
		NombreOrdenante:      in.OrderingName,
		InstitucionOrdenante: in.OrderingInstitution,
		CuentaBeneficiario:   in.BeneficiaryAccount,
		ReferenciaNumerica:   in.NumericReference,
	})
	if err != nil {
		return err
	}
	return ParseValidateResponse(status, body)
}

// Token mints the short-lived bearer token sent on every call.
func (c *Client) Token() (string, error) {
	now := c.now()
	claims := jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(TokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

func (c *Client) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	token, err := c.Token()
	if err != nil {
		return 0, nil, fmt.Errorf("failed to sign gateway token: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
