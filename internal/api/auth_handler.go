package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/k3ss-official/total-recall/internal/api/middleware"
	"github.com/k3ss-official/total-recall/internal/api/shared"
	"github.com/k3ss-official/total-recall/internal/redact"
	"github.com/k3ss-official/total-recall/internal/service/auth"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	authenticator *auth.Authenticator
	jwtService    auth.JWTService
	validator     *validator.Validate
	logger        *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	authenticator *auth.Authenticator,
	jwtService auth.JWTService,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authenticator: authenticator,
		jwtService:    jwtService,
		validator:     validator.New(),
		logger:        logger.With("component", "auth_handler"),
	}
}

// Login handles POST /api/auth/login, exchanging operator credentials for an
// access/refresh token pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	if err := h.authenticator.Authenticate(req.Username, req.Password); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid credentials", err,
			shared.WithElevatedLogLevel())
		return
	}

	accessToken, err := h.jwtService.GenerateToken(r.Context(), req.Username)
	if err != nil {
		h.logger.Error("failed to generate access token", "error", redact.Error(err))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}
	refreshToken, err := h.jwtService.GenerateRefreshToken(r.Context(), req.Username)
	if err != nil {
		h.logger.Error("failed to generate refresh token", "error", redact.Error(err))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		Username:     req.Username,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// RefreshToken handles POST /api/auth/refresh, rotating a valid refresh
// token into a fresh token pair.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	accessToken, err := h.jwtService.GenerateToken(r.Context(), claims.Username)
	if err != nil {
		h.logger.Error("failed to generate access token", "error", redact.Error(err))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}
	refreshToken, err := h.jwtService.GenerateRefreshToken(r.Context(), claims.Username)
	if err != nil {
		h.logger.Error("failed to generate refresh token", "error", redact.Error(err))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// Status handles GET /api/auth/status behind the auth middleware, reporting
// the authenticated operator.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsername(r)
	if !ok {
		shared.RespondWithJSON(w, r, http.StatusOK, AuthStatusResponse{Authenticated: false})
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthStatusResponse{
		Authenticated: true,
		Username:      username,
	})
}
