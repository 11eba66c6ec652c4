package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"peopleops/internal/auth"
	"peopleops/internal/domain/identity"
	"peopleops/internal/transport/http/api"
)

// PrincipalResolver loads the live principal for a token subject. Role and
// status come from the store on every request, not from the token, so a role
// change or suspension takes effect without waiting for token expiry.
type PrincipalResolver interface {
	Resolve(ctx context.Context, principalID string) (identity.ResolvedPrincipal, error)
}

func Auth(secret string, resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := resolver.Resolve(r.Context(), claims.PrincipalID)
			if err != nil {
				if errors.Is(err, identity.ErrAccountInactive) {
					api.Fail(w, http.StatusForbidden, "account_inactive", "account is not active", GetRequestID(r.Context()))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), principal)))
		})
	}
}
