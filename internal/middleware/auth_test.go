package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dan9191/family-ledger/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	var gotUID string
	h := AuthMiddleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	future := jwt.NewNumericDate(time.Now().Add(time.Hour))
	past := jwt.NewNumericDate(time.Now().Add(-time.Hour))

	tests := []struct {
		name   string
		header string
		status int
		uid    string
	}{
		{"valid", "Bearer " + signToken(t, "test-secret", jwt.RegisteredClaims{Subject: "u1", ExpiresAt: future}), http.StatusNoContent, "u1"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, ""},
		{"wrong secret", "Bearer " + signToken(t, "other", jwt.RegisteredClaims{Subject: "u1", ExpiresAt: future}), http.StatusUnauthorized, ""},
		{"expired", "Bearer " + signToken(t, "test-secret", jwt.RegisteredClaims{Subject: "u1", ExpiresAt: past}), http.StatusUnauthorized, ""},
		{"no expiry", "Bearer " + signToken(t, "test-secret", jwt.RegisteredClaims{Subject: "u1"}), http.StatusUnauthorized, ""},
		{"path in subject", "Bearer " + signToken(t, "test-secret", jwt.RegisteredClaims{Subject: "u1/accounts", ExpiresAt: future}), http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUID = ""
			req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d", rr.Code, tt.status)
			}
			if gotUID != tt.uid {
				t.Errorf("uid = %q, want %q", gotUID, tt.uid)
			}
		})
	}
}
