package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/filesmanager/internal/ctxkeys"
	"github.com/templui/filesmanager/internal/response"
	"github.com/templui/filesmanager/internal/service"
)

// TokenHeader carries the session token on authenticated requests.
const TokenHeader = "X-Token"

// RequireAuth resolves X-Token to a user and adds user + token to context.
// Requests without a live session get 401.
func RequireAuth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(TokenHeader)

			user, err := authService.Authorize(r.Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrUnauthorized) {
					response.Error(w, http.StatusUnauthorized, service.ErrUnauthorized.Error())
					return
				}
				slog.Error("failed to authorize request", "error", err, "path", r.URL.Path)
				response.Error(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			ctx := ctxkeys.WithUser(r.Context(), user)
			ctx = ctxkeys.WithToken(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
