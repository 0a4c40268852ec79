package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/halvets/tunerank/config"
	"github.com/halvets/tunerank/errors"
	"github.com/halvets/tunerank/handlers"
	"github.com/halvets/tunerank/middleware"
	"github.com/halvets/tunerank/preferences"
	"github.com/halvets/tunerank/ranking"
)

// Server timeouts
const (
	ReadTimeout  = 15 * time.Second
	WriteTimeout = 30 * time.Second
	IdleTimeout  = 60 * time.Second
)

const corsMaxAge = "86400"

type Server struct {
	config      *config.Config
	logger      *logrus.Logger
	ranking     *ranking.Service
	handlers    *handlers.Handler
	server      *http.Server
	rateLimiter *rate.Limiter
}

func New(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
		logger.WithError(err).Warn("Invalid log level, defaulting to info")
	}
	logger.SetLevel(level)

	// The stub store keeps the engine decoupled from any future feature
	// store; swap in a real implementation here once model serving lands.
	store := preferences.Empty{}
	rankingService := ranking.New(store, logger)
	handlersService := handlers.New(logger, rankingService, cfg)

	var rateLimiter *rate.Limiter
	if cfg.RateLimitEnabled {
		rateLimiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
		logger.WithFields(logrus.Fields{
			"rps":   cfg.RateLimitRPS,
			"burst": cfg.RateLimitBurst,
		}).Info("Rate limiting enabled")
	} else {
		logger.Info("Rate limiting disabled")
	}

	return &Server{
		config:      cfg,
		logger:      logger,
		ranking:     rankingService,
		handlers:    handlersService,
		rateLimiter: rateLimiter,
	}, nil
}

// Router builds the HTTP routing table with all middleware applied.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	if s.config.SecurityHeadersEnabled {
		securityMiddleware := middleware.NewSecurityHeaders(s.config, s.logger)
		router.Use(securityMiddleware.Handler)
		s.logger.Info("Security headers middleware enabled")
	}

	requestLogger := middleware.NewRequestLogger(s.logger)
	router.Use(requestLogger.Handler)
	router.Use(s.rateLimitMiddleware)

	if s.config.CORSEnabled {
		router.Use(s.corsMiddleware)
	}

	router.HandleFunc("/health", s.handlers.HandleHealth).Methods(http.MethodGet)
	router.HandleFunc("/rank", s.handlers.HandleRank).Methods(http.MethodPost)
	router.HandleFunc("/recommend", s.handlers.HandleRecommend).Methods(http.MethodPost)

	return router
}

func (s *Server) Start() error {
	if s.server != nil {
		return errors.ErrServerStart.WithContext("reason", "server already started")
	}

	s.server = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      s.Router(),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}

	s.logger.WithFields(logrus.Fields{
		"port": s.config.Port,
		"url":  fmt.Sprintf("http://localhost:%s", s.config.Port),
	}).Info("Starting ranking server")

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down ranking server...")

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			s.logger.WithError(err).Error("Failed to shutdown HTTP server")
			return errors.Wrap(err, errors.CategoryServer, "SHUTDOWN_FAILED", "failed to shutdown HTTP server")
		}
	}

	s.logger.Info("Ranking server shut down successfully")
	return nil
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.rateLimiter != nil && !s.rateLimiter.Allow() {
			s.logger.WithFields(logrus.Fields{
				"path":   r.URL.Path,
				"remote": r.RemoteAddr,
			}).Warn("Rate limit exceeded")
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if len(s.config.CORSAllowOrigins) > 0 {
			if s.config.CORSAllowOrigins[0] == "*" {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				for _, allowed := range s.config.CORSAllowOrigins {
					if origin == allowed {
						w.Header().Set("Access-Control-Allow-Origin", origin)
						break
					}
				}
			}
		}

		w.Header().Set("Access-Control-Allow-Methods", strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodOptions}, ", "))
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", corsMaxAge)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
