package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/marketplace/internal/auth"
	"github.com/example/marketplace/internal/domain/user"
)

// UserResolver loads the account a token was issued for. Deleted accounts
// must not keep working tokens alive.
type UserResolver interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

type contextKey string

const userContextKey contextKey = "user"

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// ExtractToken pulls the bearer token from the Authorization header.
func ExtractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// Auth validates the bearer token, confirms the account still exists, and
// attaches the user to the request context.
func Auth(jwtService *auth.JWTService, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := ExtractToken(r)
			if tokenString == "" {
				respondError(w, "No token provided", http.StatusUnauthorized)
				return
			}

			claims, err := jwtService.ValidateToken(tokenString)
			if err != nil {
				respondError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			u, err := users.FindByID(r.Context(), claims.UserID)
			if err != nil || u == nil {
				respondError(w, "Invalid user", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser retrieves the authenticated user from the request context.
func CurrentUser(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userContextKey).(*user.User)
	return u, ok
}

// CurrentUserID is a helper to get just the user id from context.
func CurrentUserID(ctx context.Context) string {
	u, ok := CurrentUser(ctx)
	if !ok {
		return ""
	}
	return u.ID
}
