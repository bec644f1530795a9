// Package testutils provides helpers shared by HTTP and database tests.
package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirasaad/speibank/infra"
	"github.com/amirasaad/speibank/pkg/apiutil"
	"github.com/gofiber/fiber/v2"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MakeRequest is a helper for making HTTP requests against a fiber app.
func MakeRequest(app *fiber.App, method, path, body, token string) *http.Response {
	return MakeRequestWithApp(app, method, path, body, token)
}

// MakeRequestWithApp is a helper for making HTTP requests with a standalone app (for non-suite tests)
func MakeRequestWithApp(app *fiber.App, method, path, body, token string) *http.Response {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, 1000000)
	if err != nil {
		panic(err) // For standalone tests, panic on error
	}
	return resp
}

// DecodeResponse reads a success envelope and closes the body.
func DecodeResponse(t testing.TB, resp *http.Response) apiutil.Response {
	t.Helper()
	defer resp.Body.Close() //nolint: errcheck
	var out apiutil.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

// DecodeProblem reads a problem details body and closes it.
func DecodeProblem(t testing.TB, resp *http.Response) apiutil.ProblemDetails {
	t.Helper()
	defer resp.Body.Close() //nolint: errcheck
	var out apiutil.ProblemDetails
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	return out
}

// SetupPostgres starts a throwaway Postgres with the schema migrated and
// returns a gorm handle and its DSN. The container is removed when the test
// ends.
func SetupPostgres(t testing.TB) (*gorm.DB, string) {
	t.Helper()
	ctx := context.Background()

	pg, err := startPostgresContainer(ctx)
	if err != nil {
		t.Fatalf("Failed to start Postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pg); err != nil {
			t.Logf("Failed to terminate Postgres container: %v", err)
		}
	})

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get Postgres DSN: %v", err)
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to connect to Postgres: %v", err)
	}
	if err := infra.RunMigrations(db, DiscardLogger()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db, dsn
}

func startPostgresContainer(ctx context.Context) (*tcpostgres.PostgresContainer, error) {
	return tcpostgres.Run(
		ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second),
		),
	)
}
