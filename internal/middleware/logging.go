package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// requestUser is filled in by AuthMiddleware, which runs inside RequestLogger
// on a derived request the logger never sees.
type requestUser struct {
	uid string
}

const requestUserKey contextKey = "requestUser"

func setRequestUser(ctx context.Context, uid string) {
	if u, ok := ctx.Value(requestUserKey).(*requestUser); ok {
		u.uid = uid
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs one line per request with its status and duration.
func RequestLogger(log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			user := &requestUser{}
			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestUserKey, user)))

			entry := log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start).String(),
			})
			if user.uid != "" {
				entry = entry.WithField("user", user.uid)
			}
			if rec.status >= http.StatusInternalServerError {
				entry.Error("Request failed")
				return
			}
			entry.Info("Request handled")
		})
	}
}
