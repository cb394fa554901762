// Package middleware provides net/http middleware backed by an
// adminauth.Engine.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shms-platform/adminauth"
)

type authContextKey struct{}

// AuthContextFromContext returns the verified identity placed on the
// request context by Guard.
func AuthContextFromContext(ctx context.Context) (*adminauth.AuthContext, bool) {
	ac, ok := ctx.Value(authContextKey{}).(*adminauth.AuthContext)
	return ac, ok
}

// Guard authorizes the bearer token on every request and attaches the
// resulting identity to the request context. When roles are given, the
// token's role must be one of them; an empty list admits any valid role.
func Guard(engine *adminauth.Engine, roles ...adminauth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ac, err := engine.Authorize(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if len(roles) > 0 && !roleAllowed(ac.Role, roles) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), authContextKey{}, ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func roleAllowed(role adminauth.Role, allowed []adminauth.Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
