package auth

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
)

// User is the authenticated caller. ID is the owner id used by the profile store.
type User struct {
	ID            string
	Email         string
	EmailVerified bool
}

var (
	ErrNoToken      = errors.New("missing authorization header")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
	ErrUserDisabled = errors.New("user disabled")

	// ErrCertificateFetch means the identity provider's keys were unreachable.
	// Callers answer 503 rather than 401.
	ErrCertificateFetch = errors.New("failed to fetch certificates")
)

// Verifier validates a bearer token and returns the caller.
type Verifier interface {
	Verify(ctx context.Context, token string) (*User, error)
}

// ExtractBearerToken returns the token of an "Authorization: Bearer <token>" header.
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrNoToken
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}
