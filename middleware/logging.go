package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const maxLoggedPathLength = 1000

// ASCII control character constants
const (
	asciiControlCharMin = 32
	asciiControlCharMax = 127
)

// RequestLogger middleware tags every request with a UUID and logs method,
// path, status and duration on completion.
type RequestLogger struct {
	logger *logrus.Logger
}

func NewRequestLogger(logger *logrus.Logger) *RequestLogger {
	return &RequestLogger{logger: logger}
}

func (m *RequestLogger) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		m.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       sanitizePath(r.URL.Path),
			"remote":     r.RemoteAddr,
			"status":     recorder.status,
			"duration":   time.Since(start),
		}).Info("Request completed")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// sanitizePath removes control characters and limits length to prevent log injection
func sanitizePath(path string) string {
	sanitized := strings.Map(func(r rune) rune {
		if r < asciiControlCharMin || r == asciiControlCharMax {
			return -1
		}
		return r
	}, path)

	if len(sanitized) > maxLoggedPathLength {
		sanitized = sanitized[:maxLoggedPathLength] + "..."
	}

	return sanitized
}
