package auth

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/devconnector-api/internal/platform/logging"
)

// LegacyTokenHeader carries a bare token for clients that predate bearer auth.
const LegacyTokenHeader = "X-Auth-Token"

const (
	msgNoToken      = "No token, authorization denied"
	msgInvalidToken = "Token is not valid"
	msgUnavailable  = "authentication service temporarily unavailable"
)

type userContextKey struct{}

// NewAuthMiddleware authenticates operations that declare a Security requirement
// and stores the caller in the request context. Other operations pass through.
func NewAuthMiddleware(api huma.API, verifier Verifier) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if len(ctx.Operation().Security) == 0 {
			next(ctx)
			return
		}

		token, err := tokenFromRequest(ctx)
		if err != nil {
			applog.LogWarn(ctx.Context(), "auth failed: missing or malformed credentials",
				zap.String("reason", reason(err)))
			ctx.SetHeader("WWW-Authenticate", "Bearer")
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, msgNoToken)
			return
		}

		user, err := verifier.Verify(ctx.Context(), token)
		if err != nil {
			applog.LogWarn(ctx.Context(), "auth failed: token rejected",
				zap.String("reason", reason(err)))
			if errors.Is(err, ErrCertificateFetch) {
				ctx.SetHeader("Retry-After", "30")
				_ = huma.WriteErr(api, ctx, http.StatusServiceUnavailable, msgUnavailable)
				return
			}
			ctx.SetHeader("WWW-Authenticate", `Bearer error="invalid_token"`)
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, msgInvalidToken)
			return
		}

		ctx = huma.WithContext(ctx, applog.WithOwner(ctx.Context(), user.ID))
		next(huma.WithValue(ctx, userContextKey{}, user))
	}
}

func tokenFromRequest(ctx huma.Context) (string, error) {
	if h := ctx.Header("Authorization"); h != "" {
		return ExtractBearerToken(h)
	}
	if t := ctx.Header(LegacyTokenHeader); t != "" {
		return t, nil
	}
	return "", ErrNoToken
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrNoToken):
		return "no_token"
	case errors.Is(err, ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, ErrTokenRevoked):
		return "token_revoked"
	case errors.Is(err, ErrUserDisabled):
		return "user_disabled"
	case errors.Is(err, ErrCertificateFetch):
		return "certificate_fetch_failed"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	default:
		return "unknown"
	}
}

// UserFromContext returns the authenticated caller, or nil on public operations.
func UserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(userContextKey{}).(*User)
	return user
}

// WithUser returns ctx carrying user. Tests use it to call handlers directly.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}
