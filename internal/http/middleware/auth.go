package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/internal/auth"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/respond"
)

type TokenVerifier interface {
	Verify(token string) (auth.Principal, error)
}

// Authenticate requires an "Authorization: Bearer <jwt>" header and stores the
// verified principal in the request context.
func Authenticate(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respond.Error(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				respond.Error(w, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
				return
			}

			p, err := v.Verify(token)
			if err != nil {
				slog.WarnContext(r.Context(), "rejected token", "path", r.URL.Path, "error", err)

				msg := "Invalid token"
				if errors.Is(err, auth.ErrTokenExpired) {
					msg = "Token has expired"
				}

				respond.Error(w, http.StatusUnauthorized, msg)

				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireRoles admits only principals whose role is in the allow-list.
func RequireRoles(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.FromContext(r.Context())
			if !ok {
				respond.Error(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			if !p.HasRole(roles...) {
				respond.Error(w, http.StatusForbidden, "Access denied: insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UserID returns the authenticated user's ID, writing a 401 when the request
// did not pass through Authenticate.
func UserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}

	return p.UserID, true
}
