package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/k3ss-official/total-recall/internal/config"
)

// PasswordVerifier defines the interface for comparing passwords.
type PasswordVerifier interface {
	// Compare compares a hashed password with its possible plaintext
	// equivalent. Returns nil on success, or an error on mismatch.
	Compare(hashedPassword, password string) error
}

// BcryptVerifier implements PasswordVerifier using bcrypt.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a new BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare implements the PasswordVerifier interface using bcrypt.
func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// Authenticator checks credentials against the single configured operator.
type Authenticator struct {
	username     string
	passwordHash string
	verifier     PasswordVerifier
}

// NewAuthenticator creates an Authenticator from the auth configuration.
func NewAuthenticator(cfg config.AuthConfig, verifier PasswordVerifier) *Authenticator {
	return &Authenticator{
		username:     cfg.Username,
		passwordHash: cfg.PasswordHash,
		verifier:     verifier,
	}
}

// Authenticate verifies the username and password. The bcrypt comparison
// runs even for unknown usernames so both failure paths cost the same.
func (a *Authenticator) Authenticate(username, password string) error {
	compareErr := a.verifier.Compare(a.passwordHash, password)
	if username != a.username || compareErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}
