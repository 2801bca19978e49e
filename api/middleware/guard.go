package middleware

import (
	"net/http"

	"github.com/socialai-labs/socialai-gateway/internal/user"
	"github.com/socialai-labs/socialai-gateway/pkg/logger"
)

// SessionChecker is the read surface the guard needs from the session
// manager.
type SessionChecker interface {
	CurrentUser() (user.User, bool)
}

const loginPath = "/login"

// RequireSession gates protected routes. The decision is a pure
// function of the current session and is re-evaluated on every request;
// unauthenticated requests are redirected to the login view and the
// originally requested path is discarded.
func RequireSession(sessions SessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := sessions.CurrentUser()
			if !ok {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}

			ctx := WithUserID(r.Context(), u.ID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, u.ID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
