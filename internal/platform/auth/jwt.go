package auth

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenLifetime is used by Issue when the verifier has no explicit lifetime.
const DefaultTokenLifetime = 100 * time.Hour

// Claims accepts both the registered subject and the legacy {"user":{"id":...}}
// payload issued by older clients of this API.
type Claims struct {
	User  *claimsUser `json:"user,omitempty"`
	Email string      `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type claimsUser struct {
	ID string `json:"id"`
}

func (c *Claims) ownerID() string {
	if c.Subject != "" {
		return c.Subject
	}
	if c.User != nil {
		return c.User.ID
	}
	return ""
}

// JWTVerifier validates HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret   []byte
	lifetime time.Duration
}

func NewJWTVerifier(secret string, lifetime time.Duration) *JWTVerifier {
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}
	return &JWTVerifier{secret: []byte(secret), lifetime: lifetime}
}

func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (*User, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Newf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case err != nil:
		return nil, ErrInvalidToken
	}
	id := claims.ownerID()
	if id == "" {
		return nil, ErrInvalidToken
	}
	return &User{ID: id, Email: claims.Email}, nil
}

// Issue signs a token for ownerID. Used by local tooling and tests; this service
// does not expose a login endpoint.
func (v *JWTVerifier) Issue(ownerID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.lifetime)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

var _ Verifier = (*JWTVerifier)(nil)
