package auth

import (
	"context"
	"time"
)

// Token types carried in the JWT "type" claim.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// JWTService defines operations for managing JWT authentication tokens.
// The server has a single operator identity; tokens carry the username.
type JWTService interface {
	// GenerateToken creates a signed JWT access token for the operator.
	GenerateToken(ctx context.Context, username string) (string, error)

	// ValidateToken validates an access token string and extracts the
	// claims. Returns ErrExpiredToken, ErrWrongTokenType, or
	// ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken creates a signed JWT refresh token with a
	// longer lifetime, used to obtain new access tokens.
	GenerateRefreshToken(ctx context.Context, username string) (string, error)

	// ValidateRefreshToken validates a refresh token string and extracts
	// the claims. Returns ErrExpiredRefreshToken, ErrWrongTokenType, or
	// ErrInvalidRefreshToken on failure.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the validated view of a token's contents.
type Claims struct {
	// Username identifies the operator the token was issued for.
	Username string `json:"username,omitempty"`

	// TokenType indicates the purpose of the token ("access" or "refresh").
	TokenType string `json:"type,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
