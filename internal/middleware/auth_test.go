package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhtran-dev/savings-ledger/internal/config"
)

func signToken(t *testing.T, secret, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthMiddlewareResolvesAccount(t *testing.T) {
	cfg := &config.Config{JWTSecret: "secret", OperatorAccount: "1"}

	var gotAccount string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccount, _ = AccountID(r.Context())
	})
	h := AuthMiddleware(cfg)(next)

	req := httptest.NewRequest(http.MethodGet, "/deposits", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", "42"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", gotAccount)
}

func TestAuthMiddlewareRejections(t *testing.T) {
	cfg := &config.Config{JWTSecret: "secret"}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	})
	h := AuthMiddleware(cfg)(next)

	for name, header := range map[string]string{
		"missing header": "",
		"bad scheme":     "Basic abc",
		"garbage token":  "Bearer garbage",
		"wrong key":      "Bearer " + signToken(t, "other-secret", "42"),
	} {
		req := httptest.NewRequest(http.MethodGet, "/deposits", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
}

func TestRequireOperator(t *testing.T) {
	cfg := &config.Config{JWTSecret: "secret", OperatorAccount: "1"}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := AuthMiddleware(cfg)(RequireOperator(cfg)(next))

	req := httptest.NewRequest(http.MethodPost, "/deposits", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", "1"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/deposits", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", "2"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
