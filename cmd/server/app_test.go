package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/k3ss-official/total-recall/internal/config"
	"github.com/k3ss-official/total-recall/internal/service"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	return &config.Config{
		Server: config.ServerConfig{Port: 0, LogLevel: "error"},
		Auth: config.AuthConfig{
			JWTSecret:            "test-jwt-secret-that-is-long-enough!",
			Username:             "operator",
			PasswordHash:         string(hash),
			TokenLifetimeMinutes: 60,
			RefreshLifetimeHours: 24,
		},
		Task: config.TaskConfig{
			Retention:     time.Hour,
			SweepInterval: time.Minute,
		},
	}
}

func newTestApplication(t *testing.T) *application {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := newApplication(context.Background(), testConfig(t), logger)
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

func TestApplication_HealthCheck(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t)
	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestApplication_MetricsEndpoint(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t)
	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "recall_tasks_active")
}

func TestApplication_ProtectedRoutesRequireAuth(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t)
	for _, path := range []string{"/api/tasks", "/api/conversations", "/api/auth/status"} {
		rec := httptest.NewRecorder()
		app.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "path %s", path)
	}
}

func TestApplication_LoginFlow(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t)

	loginReq := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"username":"operator","password":"s3cret"}`))
	loginReq.Header.Set("Content-Type", "application/json")
	loginRec := httptest.NewRecorder()
	app.handler.ServeHTTP(loginRec, loginReq)
	require.Equal(t, http.StatusOK, loginRec.Code)

	var tokens struct {
		AccessToken string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(loginRec.Body.Bytes(), &tokens))
	require.NotEmpty(t, tokens.AccessToken)

	statusReq := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	statusReq.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	statusRec := httptest.NewRecorder()
	app.handler.ServeHTTP(statusRec, statusReq)
	assert.Equal(t, http.StatusOK, statusRec.Code)
	assert.Contains(t, statusRec.Body.String(), `"authenticated":true`)
}

func TestApplication_InjectionWithoutBridgeFailsTask(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t)

	record, err := app.injectionService.Start(context.Background(), []string{"some-conv"},
		service.InjectionConfig{RetryAttempts: 1, RetryDelay: time.Millisecond})
	require.NoError(t, err)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		got, err := app.tracker.Get(context.Background(), record.ID)
		require.NoError(t, err)
		if got.Status.Terminal() {
			assert.Contains(t, got.Message, "Setup failed")
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("injection task never reached a terminal status")
}
