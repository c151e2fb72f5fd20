package middleware

import (
	"log/slog"
	"net/http"

	"github.com/motorlot/dealerd/internal"
	"github.com/motorlot/dealerd/internal/auth"
)

// Authenticator runs the login state machine for a set of credentials.
type Authenticator interface {
	Login(username, password string) (*auth.Principal, error)
}

// BasicAuth authenticates every request from its Basic credentials and
// injects the resulting principal. There are no sessions or tokens; a
// request either carries valid credentials or it is rejected. Failed
// attempts here feed the same lockout counter as any other login.
func BasicAuth(svc Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="dealerd"`)
				http.Error(w, "credentials required", http.StatusUnauthorized)
				return
			}

			principal, err := svc.Login(username, password)
			if err != nil {
				if appErr, isApp := internal.IsAppError(err); isApp {
					logger.Warn("request authentication failed", "username", username, "code", appErr.Code)
					http.Error(w, appErr.Message, appErr.StatusCode)
					return
				}
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			if principal.MustChangePassword {
				http.Error(w, "password change required before access is granted", http.StatusForbidden)
				return
			}

			ctx := auth.ContextWithPrincipal(r.Context(), principal)
			ctx = internal.ContextWithActor(ctx, internal.Actor{
				UserID:   principal.UserID,
				RoleID:   int64(principal.Role),
				Username: principal.Username,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates the handful of Admin-only operations with an
// explicit role check at the boundary.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !principal.IsAdmin() {
				logger.Warn("admin-only operation denied", "username", principal.Username, "role", principal.RoleName)
				http.Error(w, "only administrators can perform this operation", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission gates an operation on the principal's permission
// snapshot.
func RequirePermission(name string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !principal.HasPermission(name) {
				logger.Warn("access denied: insufficient permissions",
					"username", principal.Username,
					"required_permission", name)
				http.Error(w, "forbidden: insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
