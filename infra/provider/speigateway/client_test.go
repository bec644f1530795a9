package speigateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirasaad/speibank/pkg/config"
	"github.com/amirasaad/speibank/pkg/provider/spei"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "gateway-secret"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(&config.Spei{
		BaseURL:             srv.URL + "/",
		SigningSecret:       testSecret,
		HTTPTimeout:         5 * time.Second,
		Empresa:             "CEDI",
		InstitucionOperante: "90646",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sampleRequest() spei.SendRequest {
	return spei.SendRequest{
		TrackingCode:            "CEDI12345678",
		Concept:                 "Renta",
		OrderingAccount:         "646180218000000123",
		OrderingName:            "Ana Lopez",
		BeneficiaryAccount:      "012180001234567891",
		BeneficiaryName:         "Luis Perez",
		BeneficiaryAccountType:  spei.AccountTypeClabe,
		CounterpartyInstitution: "40012",
		Amount:                  decimal.RequireFromString("100"),
		NumericReference:        "123456",
	}
}

func TestClient_Send_Initialized(t *testing.T) {
	var calls int32
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction", r.URL.Path)

		auth := r.Header.Get("Authorization")
		require.True(t, strings.HasPrefix(auth, "Bearer "))
		tok, err := jwt.Parse(strings.TrimPrefix(auth, "Bearer "), func(*jwt.Token) (any, error) {
			return []byte(testSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		require.NoError(t, err)
		claims := tok.Claims.(jwt.MapClaims)
		iat, _ := claims.GetIssuedAt()
		exp, _ := claims.GetExpirationTime()
		assert.Equal(t, TokenTTL, exp.Sub(iat.Time))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"trackingId":"abc","transactionStatus":"INITIALIZED"}`))
	})

	res, err := client.Send(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, spei.Initialized{TrackingID: "abc", Raw: map[string]any{
		"trackingId": "abc", "transactionStatus": "INITIALIZED",
	}}, res)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	assert.Equal(t, "CEDI12345678", body["claveRastreo"])
	assert.Equal(t, "CEDI", body["empresa"])
	assert.Equal(t, "90646", body["institucionOperante"])
	assert.Equal(t, "40012", body["institucionContraparte"])
	assert.InDelta(t, 100.0, body["monto"], 0.0001)
	assert.Equal(t, "123456", body["referenciaNumerica"])
	assert.Equal(t, "ND", body["rfcCurpBeneficiario"])
	assert.Equal(t, "ND", body["rfcCurpOrdenante"])
	assert.Equal(t, "40", body["tipoCuentaBeneficiario"])
	assert.Equal(t, "40", body["tipoCuentaOrdenante"])
	assert.Equal(t, "1", body["tipoPago"])
}

func TestClient_Send_CardBeneficiaryType(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"trackingId":"x","transactionStatus":"INITIALIZED"}`))
	})
	req := sampleRequest()
	req.BeneficiaryAccount = "4152313412345678"
	req.BeneficiaryAccountType = spei.AccountTypeCard

	_, err := client.Send(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "3", body["tipoCuentaBeneficiario"])
}

func TestClient_Send_NotInitialized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"trackingId":"abc","transactionStatus":"FAILED"}`))
	})

	res, err := client.Send(context.Background(), sampleRequest())
	require.NoError(t, err)
	rej, ok := res.(spei.Rejected)
	require.True(t, ok, "got %T", res)
	assert.Equal(t, "transaction status FAILED", rej.Reason)
}

func TestClient_Send_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	client := New(&config.Spei{BaseURL: srv.URL, HTTPTimeout: time.Second}, nil)

	res, err := client.Send(context.Background(), sampleRequest())
	assert.Error(t, err)
	assert.Nil(t, res)
}

func TestParseSendResponse(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   any
		reason string
	}{
		{"initialized", 200, `{"trackingId":"t1","transactionStatus":"INITIALIZED"}`, spei.Initialized{}, ""},
		{"missing tracking id", 200, `{"transactionStatus":"INITIALIZED"}`, spei.Rejected{}, "transaction status INITIALIZED"},
		{"gateway message", 400, `{"message":"Cuenta inválida"}`, spei.Rejected{}, "Cuenta inválida"},
		{"error status with success shape", 500, `{"trackingId":"t1","transactionStatus":"INITIALIZED"}`, spei.Rejected{}, "transaction status INITIALIZED"},
		{"empty object", 200, `{}`, spei.Rejected{}, ""},
		{"html", 502, `<html>bad gateway</html>`, spei.Malformed{}, ""},
		{"array", 200, `[]`, spei.Malformed{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSendResponse(tt.status, []byte(tt.body))
			assert.IsType(t, tt.want, got)
			if r, ok := got.(spei.Rejected); ok {
				assert.Equal(t, tt.reason, r.Reason)
			}
		})
	}
}

func TestClient_Status(t *testing.T) {
	tests := []struct {
		name string
		body string
		want any
	}{
		{"settled", `{"estado":"LQ"}`, spei.Settled{}},
		{"returned", `{"estado":"D","causaDevolucion":"Cuenta inexistente"}`, spei.Returned{}},
		{"pending", `{"estado":"A"}`, spei.Pending{}},
		{"no estado", `{}`, spei.Pending{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/transacciones", r.URL.Path)
				var req map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "CEDI00000001", req["claveRastreo"])
				_, _ = w.Write([]byte(tt.body))
			})

			got, err := client.Status(context.Background(), "CEDI00000001")
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
			if r, ok := got.(spei.Returned); ok {
				assert.Equal(t, "Cuenta inexistente", r.Reason)
			}
		})
	}
}

func TestClient_Status_Malformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	_, err := client.Status(context.Background(), "CEDI00000001")
	assert.ErrorIs(t, err, spei.ErrMalformedResponse)
}

func TestClient_ListInbound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "646180218000000123", req["cuentaBeneficiario"])
		_, _ = w.Write([]byte(`[
			{"id": 17, "claveRastreo":"BNET01", "monto": 250.5, "nombreOrdenante":"Luis", "cuentaOrdenante":"012180001234567891", "institucionOrdenante": 40012, "cuentaBeneficiario":"646180218000000123", "referenciaNumerica": 1234567, "fechaOperacion": "20250102"},
			{"id": "18", "claveRastreo":"BNET02", "monto": "10.00", "fechaOperacion": 1735776000000}
		]`))
	})

	got, err := client.ListInbound(context.Background(), "646180218000000123")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "17", got[0].ID)
	assert.Equal(t, "BNET01", got[0].TrackingCode)
	assert.True(t, decimal.RequireFromString("250.5").Equal(got[0].Amount))
	assert.Equal(t, "40012", got[0].OrderingInstitution)
	assert.Equal(t, "1234567", got[0].NumericReference)
	assert.Equal(t, 2025, got[0].OperationDate.Year())
	assert.Equal(t, "18", got[1].ID)
	assert.True(t, decimal.RequireFromString("10").Equal(got[1].Amount))
	assert.Equal(t, 2025, got[1].OperationDate.Year())
}

func TestParseInboundResponse_Wrapped(t *testing.T) {
	got, err := ParseInboundResponse([]byte(`{"datos":[{"claveRastreo":"X1","monto":1}]}`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "X1", got[0].TrackingCode)

	_, err = ParseInboundResponse([]byte(`{"foo":1}`))
	assert.ErrorIs(t, err, spei.ErrMalformedResponse)
}

func TestClient_ValidateDeposit(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/validar-abono", r.URL.Path)
			_, _ = w.Write([]byte(`{"success":true}`))
		})
		require.NoError(t, client.ValidateDeposit(context.Background(), spei.InboundTransfer{TrackingCode: "BNET01"}))
	})
	t.Run("explicitly invalid", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":false,"mensaje":"Ordenante no coincide"}`))
		})
		err := client.ValidateDeposit(context.Background(), spei.InboundTransfer{TrackingCode: "BNET01"})
		require.ErrorIs(t, err, spei.ErrRejected)
		assert.Contains(t, err.Error(), "Ordenante no coincide")
	})
	t.Run("http error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
		})
		err := client.ValidateDeposit(context.Background(), spei.InboundTransfer{TrackingCode: "BNET01"})
		require.ErrorIs(t, err, spei.ErrRejected)
		assert.Contains(t, err.Error(), spei.DefaultRejectReason)
	})
}
