package api

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// loggingMiddleware пишет в лог каждый запрос
func loggingMiddleware(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			entry := logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"bytes":    rec.bytes,
				"duration": time.Since(start).Round(time.Millisecond),
			})
			if rec.status >= http.StatusInternalServerError {
				entry.Warn("Request failed")
				return
			}
			entry.Info("Request handled")
		})
	}
}

// recoveryMiddleware превращает панику обработчика в 500
func recoveryMiddleware(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					logger.WithFields(logrus.Fields{
						"panic": p,
						"path":  r.URL.Path,
						"stack": string(debug.Stack()),
					}).Error("Handler panicked")
					RespondWithError(w, http.StatusInternalServerError, "Erreur interne", "")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
