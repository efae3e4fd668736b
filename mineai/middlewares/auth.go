// mineai/middlewares/auth.go
package middlewares

import (
	"context"
	"net/http"
	"strings"

	"mineai/mineai/config"
	httputils "mineai/mineai/utils/http"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// ResolveUserID verifies a bearer token and returns the subject user id.
// Tokens come from the external identity provider; we only verify the
// HMAC signature and read the "sub" claim.
func ResolveUserID(cfg config.Config, authHeader string) (string, bool) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", false
	}
	return sub, true
}

func AuthMiddleware(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				httputils.WriteError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			userID, ok := ResolveUserID(cfg, auth)
			if !ok {
				httputils.WriteError(w, http.StatusUnauthorized, "Invalid authentication")
				return
			}
			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
