package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k3ss-official/total-recall/internal/config"
	"github.com/k3ss-official/total-recall/internal/service/auth"
)

func newTestMiddleware(t *testing.T) (*AuthMiddleware, auth.JWTService) {
	t.Helper()
	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "test-jwt-secret-that-is-long-enough!",
		Username:             "operator",
		TokenLifetimeMinutes: 60,
		RefreshLifetimeHours: 24,
	})
	require.NoError(t, err)
	return NewAuthMiddleware(jwtService), jwtService
}

func protectedHandler(t *testing.T, wantUsername string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := GetUsername(r)
		assert.True(t, ok)
		assert.Equal(t, wantUsername, username)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_ValidToken(t *testing.T) {
	t.Parallel()

	mw, jwtService := newTestMiddleware(t)
	token, err := jwtService.GenerateToken(context.Background(), "operator")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	mw.Authenticate(protectedHandler(t, "operator")).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	t.Parallel()

	mw, _ := newTestMiddleware(t)
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rec := httptest.NewRecorder()

	mw.Authenticate(protectedHandler(t, "")).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_BadFormat(t *testing.T) {
	t.Parallel()

	mw, _ := newTestMiddleware(t)
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()

	mw.Authenticate(protectedHandler(t, "")).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	t.Parallel()

	mw, _ := newTestMiddleware(t)
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()

	mw.Authenticate(protectedHandler(t, "")).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_RefreshTokenRejected(t *testing.T) {
	t.Parallel()

	mw, jwtService := newTestMiddleware(t)
	refresh, err := jwtService.GenerateRefreshToken(context.Background(), "operator")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec := httptest.NewRecorder()

	mw.Authenticate(protectedHandler(t, "")).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
