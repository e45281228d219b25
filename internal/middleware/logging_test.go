package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dan9191/family-ledger/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestRequestLoggerRecordsUser(t *testing.T) {
	log, hook := test.NewNullLogger()
	cfg := &config.Config{JWTSecret: "test-secret"}

	r := mux.NewRouter()
	r.Use(RequestLogger(log))
	api := r.PathPrefix("/").Subrouter()
	api.Use(AuthMiddleware(cfg))
	api.HandleFunc("/accounts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	token := signToken(t, "test-secret", jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	tests := []struct {
		name   string
		header string
		status int
		user   interface{}
	}{
		{"authenticated", "Bearer " + token, http.StatusNoContent, "u1"},
		{"anonymous", "", http.StatusUnauthorized, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook.Reset()
			req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			entry := hook.LastEntry()
			if entry == nil {
				t.Fatal("no request was logged")
			}
			if entry.Level != logrus.InfoLevel {
				t.Errorf("level = %v, want info", entry.Level)
			}
			if entry.Data["status"] != tt.status {
				t.Errorf("logged status = %v, want %d", entry.Data["status"], tt.status)
			}
			if entry.Data["user"] != tt.user {
				t.Errorf("logged user = %v, want %v", entry.Data["user"], tt.user)
			}
		})
	}
}
