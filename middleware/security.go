package middleware

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/halvets/tunerank/config"
)

// Security header values applied to every response when enabled.
const (
	ContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'"
	XContentTypeOptions   = "nosniff"
	XFrameOptions         = "DENY"
	ReferrerPolicy        = "strict-origin-when-cross-origin"
)

// SecurityHeaders middleware adds security headers to HTTP responses
type SecurityHeaders struct {
	config *config.Config
	logger *logrus.Logger
}

func NewSecurityHeaders(cfg *config.Config, logger *logrus.Logger) *SecurityHeaders {
	return &SecurityHeaders{
		config: cfg,
		logger: logger,
	}
}

func (s *SecurityHeaders) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.config.SecurityHeadersEnabled {
			next.ServeHTTP(w, r)
			return
		}

		header := w.Header()
		header.Set("X-Content-Type-Options", XContentTypeOptions)
		header.Set("X-Frame-Options", XFrameOptions)
		header.Set("Content-Security-Policy", ContentSecurityPolicy)
		header.Set("Referrer-Policy", ReferrerPolicy)

		next.ServeHTTP(w, r)
	})
}
