package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/amirasaad/speibank/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

func testConfig() *config.App {
	return &config.App{
		Env:      "test",
		Log:      &config.Log{Level: 8},
		Auth:     &config.Auth{Jwt: &config.Jwt{Secret: "test-secret"}},
		Spei:     &config.Spei{UseMock: true},
		EventBus: &config.EventBus{Driver: "memory-sync"},
	}
}

func TestBuild_InMemory(t *testing.T) {
	fiberApp, services, err := build(testConfig())
	require.NoError(t, err)
	require.NotNil(t, services.TransferService)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"root", http.MethodGet, "/", http.StatusOK},
		{"protected without token", http.MethodGet, "/accounts/me", http.StatusUnauthorized},
		{"unknown route", http.MethodGet, "/doesnotexist", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := fiberApp.Test(httptest.NewRequest(tt.method, tt.path, nil))
			require.NoError(t, err)
			defer resp.Body.Close() //nolint: errcheck
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestBuild_UnknownEventBusDriver(t *testing.T) {
	cfg := testConfig()
	cfg.EventBus.Driver = "carrier-pigeon"
	_, _, err := build(cfg)
	assert.Error(t, err)
}
