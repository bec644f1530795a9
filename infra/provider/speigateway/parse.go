package speigateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amirasaad/speibank/pkg/provider/spei"
	"github.com/shopspring/decimal"
)

// messageKeys are checked in order when surfacing a gateway message.
var messageKeys = []string{"message", "mensaje", "error", "descripcionError", "detail"}

// ParseSendResponse classifies a /transaction answer. Only a non-empty
// trackingId together with transactionStatus INITIALIZED is a success;
// every other JSON object is a rejection and anything else is malformed.
func ParseSendResponse(httpStatus int, body []byte) spei.SendResult {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil || m == nil {
		return spei.Malformed{Raw: string(body)}
	}
	trackingID, _ := m["trackingId"].(string)
	txStatus, _ := m["transactionStatus"].(string)
	if httpStatus < http.StatusMultipleChoices && trackingID != "" && txStatus == spei.StatusInitialized {
		return spei.Initialized{TrackingID: trackingID, Raw: m}
	}
	reason := messageFrom(m)
	if reason == "" && txStatus != "" {
		reason = fmt.Sprintf("transaction status %s", txStatus)
	}
	return spei.Rejected{Reason: reason, Raw: m}
}

type statusResponse struct {
	Estado          string `json:"estado"`
	CausaDevolucion string `json:"causaDevolucion"`
}

// ParseStatusResponse maps estado LQ to Settled and D to Returned. Every
// other state is Pending.
func ParseStatusResponse(body []byte) (spei.StatusResult, error) {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil || m == nil {
		return nil, fmt.Errorf("%w: %s", spei.ErrMalformedResponse, truncate(body))
	}
	var r statusResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", spei.ErrMalformedResponse, err)
	}
	switch strings.ToUpper(strings.TrimSpace(r.Estado)) {
	case spei.EstadoSettled:
		return spei.Settled{Raw: m}, nil
	case spei.EstadoReturned:
		reason := r.CausaDevolucion
		if reason == "" {
			reason = "returned by the receiving bank"
		}
		return spei.Returned{Reason: reason, Raw: m}, nil
	default:
		return spei.Pending{State: r.Estado, Raw: m}, nil
	}
}

type inboundRecord struct {
	ID                   json.RawMessage `json:"id"`
	ClaveRastreo         string          `json:"claveRastreo"`
	Monto                decimal.Decimal `json:"monto"`
	ConceptoPago         string          `json:"conceptoPago"`
	ReferenciaNumerica   json.RawMessage `json:"referenciaNumerica"`
	NombreOrdenante      string          `json:"nombreOrdenante"`
	CuentaOrdenante      string          `json:"cuentaOrdenante"`
	InstitucionOrdenante json.RawMessage `json:"institucionOrdenante"`
	CuentaBeneficiario   string          `json:"cuentaBeneficiario"`
	NombreBeneficiario   string          `json:"nombreBeneficiario"`
	Estado               string          `json:"estado"`
	FechaOperacion       json.RawMessage `json:"fechaOperacion"`
}

// ParseInboundResponse decodes the inbound listing. It accepts a bare array
// or an object wrapping it under "datos" or "data".
func ParseInboundResponse(body []byte) ([]spei.InboundTransfer, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", spei.ErrMalformedResponse, err)
		}
		inner, ok := wrapper["datos"]
		if !ok {
			inner, ok = wrapper["data"]
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", spei.ErrMalformedResponse, truncate(body))
		}
		trimmed = inner
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(trimmed, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", spei.ErrMalformedResponse, err)
	}
	out := make([]spei.InboundTransfer, 0, len(raws))
	for _, raw := range raws {
		var rec inboundRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("%w: %v", spei.ErrMalformedResponse, err)
		}
		var m map[string]any
		_ = json.Unmarshal(raw, &m)
		out = append(out, spei.InboundTransfer{
			ID:                  scalar(rec.ID),
			TrackingCode:        rec.ClaveRastreo,
			Amount:              rec.Monto,
			Concept:             rec.ConceptoPago,
			NumericReference:    scalar(rec.ReferenciaNumerica),
			OrderingName:        rec.NombreOrdenante,
			OrderingAccount:     rec.CuentaOrdenante,
			OrderingInstitution: scalar(rec.InstitucionOrdenante),
			BeneficiaryAccount:  rec.CuentaBeneficiario,
			BeneficiaryName:     rec.NombreBeneficiario,
			Estado:              rec.Estado,
			OperationDate:       parseOperationDate(rec.FechaOperacion),
			Raw:                 m,
		})
	}
	return out, nil
}

// ParseValidateResponse accepts a 2xx answer unless it explicitly carries a
// negative flag.
func ParseValidateResponse(httpStatus int, body []byte) error {
	var m map[string]any
	_ = json.Unmarshal(body, &m)
	if httpStatus >= http.StatusMultipleChoices {
		return spei.NewRejectedError(messageFrom(m))
	}
	for _, k := range []string{"success", "valido", "valid"} {
		if v, ok := m[k].(bool); ok && !v {
			return spei.NewRejectedError(messageFrom(m))
		}
	}
	return nil
}

func extractMessage(body []byte) string {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return ""
	}
	return messageFrom(m)
}

func messageFrom(m map[string]any) string {
	for _, k := range messageKeys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// scalar renders a JSON string or number as a plain string.
func scalar(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// parseOperationDate accepts epoch milliseconds, RFC 3339 or YYYYMMDD.
func parseOperationDate(raw json.RawMessage) time.Time {
	s := scalar(raw)
	if s == "" {
		return time.Time{}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil && len(s) > 8 {
		return time.UnixMilli(ms).UTC()
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "20060102"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func truncate(b []byte) string {
	const n = 256
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
