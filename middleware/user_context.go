package middleware

import (
	"context"
	"net/http"
	"strings"

	"courtmates_server/utils"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	UserIDHeader    = "X-User-ID"
	UserEmailHeader = "X-User-Email"
)

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	userEmailKey contextKey = "user_email"
)

// UserContext copies the identity the gateway forwards into the request
// context. It never rejects a request; see RequireUser.
func UserContext(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
			email := strings.TrimSpace(r.Header.Get(UserEmailHeader))

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, userEmailKey, email)

			if userID != "" {
				logger.Debug("user context", zap.String("uid", userID), zap.String("path", r.URL.Path))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser answers 401 when the gateway did not forward a user.
func RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if UserID(r.Context()) == "" {
			utils.WriteError(w, http.StatusUnauthorized, "missing X-User-ID: request must come through the gateway with auth context")
			return
		}
		next(w, r)
	}
}

func UserID(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}

func UserEmail(ctx context.Context) string {
	v, _ := ctx.Value(userEmailKey).(string)
	return v
}

// Stack returns the router middlewares in order. UserContext runs first
// so the request logger sees the forwarded user.
func Stack(logger *zap.Logger) []mux.MiddlewareFunc {
	return []mux.MiddlewareFunc{
		UserContext(logger),
		RequestLogger(logger.Named("http")),
	}
}
