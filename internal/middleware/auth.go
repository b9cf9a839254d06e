package middleware

import (
	"net/http"
	"strings"

	"github.com/josh-kwaku/pos-ledger/internal/auth"
	"github.com/josh-kwaku/pos-ledger/internal/handler"
	"github.com/josh-kwaku/pos-ledger/internal/logging"
)

// Auth authenticates the bearer token and puts the actor id in the request
// context and on the request logger. Roles are checked later, per order.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			claims, err := auth.ValidateToken(token, secret)
			if err != nil {
				logging.FromContext(r.Context()).Debug("token rejected", "error", err)
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			ctx := auth.ContextWithActorID(r.Context(), claims.ActorID)
			ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With("actor_id", claims.ActorID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
