package router

import (
	"log/slog"
	"net/http"

	"github.com/shandysiswandi/hrnotify/internal/pkg/jwt"
)

// Enforcer is satisfied by *casbin.Enforcer.
type Enforcer interface {
	Enforce(rvals ...any) (bool, error)
}

// RequirePermission rejects callers whose subject is not granted act on obj.
// It must run after authentication.
func RequirePermission(enforcer Enforcer, obj, act string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clm := jwt.GetAuth(r.Context())
			if clm == nil {
				writeJSON(w, errorResponse{Message: "Authentication required"}, http.StatusUnauthorized)
				return
			}

			ok, err := enforcer.Enforce(clm.Subject, obj, act)
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to check authorization", "subject", clm.Subject, "obj", obj, "act", act, "error", err)
				writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
				return
			}
			if !ok {
				writeJSON(w, errorResponse{Message: "Account not allowed"}, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
