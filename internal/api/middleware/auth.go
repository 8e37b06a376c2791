package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/sayantan/task-manager-api/internal/domain"
	"github.com/sayantan/task-manager-api/internal/service"
)

type contextKey string

const (
	UserKey  contextKey = "user"
	TokenKey contextKey = "token"
)

// Auth verifies the bearer token and resolves the session's user. Both the
// user and the exact token string go into the request context; logout needs
// the token to revoke just that session.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Printf("ERROR [middleware.Auth] missing authorization header")
				http.Error(w, "Please authenticate", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Printf("ERROR [middleware.Auth] invalid authorization header format")
				http.Error(w, "Please authenticate", http.StatusUnauthorized)
				return
			}

			user, err := authService.Authenticate(r.Context(), parts[1])
			if err != nil {
				log.Printf("ERROR [middleware.Auth] token authentication failed: %v", err)
				http.Error(w, "Please authenticate", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			ctx = context.WithValue(ctx, TokenKey, parts[1])
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok
}

func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}
