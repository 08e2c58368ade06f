// Package middleware resolves the caller identity from a JWT and enforces
// the operator-only restriction outside the ledger core.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"github.com/minhtran-dev/savings-ledger/internal/config"
)

type ctxKey int

const accountIDKey ctxKey = iota

// AccountID returns the authenticated account identity stored in the request
// context by AuthMiddleware.
func AccountID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accountIDKey).(string)
	return id, ok && id != ""
}

// AuthMiddleware validates the Bearer token and stores its subject as the
// caller's account identity.
func AuthMiddleware(cfg *config.Config) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Missing Authorization header", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}
			subject, err := token.Claims.GetSubject()
			if err != nil || subject == "" {
				http.Error(w, "Invalid token subject", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), accountIDKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireOperator rejects callers other than the designated operator account.
// Restricted ledger operations are guarded here rather than inside the core.
func RequireOperator(cfg *config.Config) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := AccountID(r.Context())
			if !ok || id != cfg.OperatorAccount {
				http.Error(w, "Operator access required", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
