package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/adminuser"
)

// AuthCookieName is the http-only cookie carrying the session token.
const AuthCookieName = "auth_token"

type contextKey string

const adminContextKey contextKey = "admin"

// Authorizer resolves a session token to its admin account.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (adminuser.Admin, error)
}

// AdminFrom returns the authenticated admin stored in the request context.
func AdminFrom(ctx context.Context) (adminuser.Admin, bool) {
	admin, ok := ctx.Value(adminContextKey).(adminuser.Admin)
	return admin, ok
}

// TokenFrom extracts the session token from the Authorization header or the
// auth cookie.
func TokenFrom(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):])
	}
	if cookie, err := r.Cookie(AuthCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAuth rejects requests without a live admin session and stores the
// resolved admin in the request context.
func RequireAuth(authorizer Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFrom(r)
			if token == "" {
				unauthorized(w, "missing authorization")
				return
			}
			admin, err := authorizer.Authorize(r.Context(), token)
			if err != nil {
				unauthorized(w, "invalid or expired session")
				return
			}
			ctx := context.WithValue(r.Context(), adminContextKey, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated requests whose admin lacks one of the
// given roles. Role checks never trust anything the client caches; the role
// comes from the server-side account record resolved by RequireAuth.
func RequireRole(roles ...adminuser.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin, ok := AdminFrom(r.Context())
			if !ok {
				unauthorized(w, "missing authorization")
				return
			}
			for _, role := range roles {
				if admin.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "insufficient role"})
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
