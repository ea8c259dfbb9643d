package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"msgboard/internal/common"
	"msgboard/internal/domain/model"
	"msgboard/internal/logging"
)

type contextKey string

const (
	UserCtxKey   contextKey = "user"
	ClaimsCtxKey contextKey = "claims"
)

const bearerPrefix = "Bearer "

// TokenAuthenticator resolves a bearer token into a live user.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, *model.TokenClaims, error)
}

// Authenticator requires a valid "Authorization: Bearer <token>" header and
// attaches the re-fetched user and its claims to the request context.
func Authenticator(auth TokenAuthenticator, log logging.Logger, production bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				common.RespondWithError(w, r, http.StatusUnauthorized, "Authorization token required")
				return
			}

			user, claims, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if !errors.Is(err, common.ErrUnauthorized) {
					log.Error(r.Context(), "authentication failed", "err", err)
				}
				common.RespondWithErr(w, r, err, production)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), user, claims)))
		})
	}
}

// RequireRole lets through only identities carrying role. A request that was
// never authenticated is refused the same way.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user.Role != role {
				common.RespondWithError(w, r, http.StatusForbidden, roleMessage(role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func AdminOnly(next http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin)(next)
}

func roleMessage(role string) string {
	if role == model.RoleAdmin {
		return "Admin access required"
	}
	return "Insufficient permissions"
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := header[len(bearerPrefix):]
	if token == "" || strings.TrimSpace(token) != token {
		return "", false
	}
	return token, true
}

// WithIdentity stores the authenticated user and claims on ctx.
func WithIdentity(ctx context.Context, user *model.User, claims *model.TokenClaims) context.Context {
	ctx = context.WithValue(ctx, UserCtxKey, user)
	return context.WithValue(ctx, ClaimsCtxKey, claims)
}

// Helper to get the authenticated user from context
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(UserCtxKey).(*model.User)
	return user, ok && user != nil
}

// Helper to get the verified token claims from context
func ClaimsFromContext(ctx context.Context) (*model.TokenClaims, bool) {
	claims, ok := ctx.Value(ClaimsCtxKey).(*model.TokenClaims)
	return claims, ok && claims != nil
}
