package handlers

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/halvets/tunerank/config"
	"github.com/halvets/tunerank/errors"
	"github.com/halvets/tunerank/models"
	"github.com/halvets/tunerank/ranking"
)

const ServiceName = "tunerank"

const MaxInputLength = 1000

// ASCII control character constants
const (
	asciiControlCharMin = 32
	asciiControlCharMax = 127
)

type Handler struct {
	logger   *logrus.Logger
	ranking  *ranking.Service
	validate *validator.Validate
	config   *config.Config
}

func New(logger *logrus.Logger, rankingService *ranking.Service, cfg *config.Config) *Handler {
	return &Handler{
		logger:   logger,
		ranking:  rankingService,
		validate: validator.New(),
		config:   cfg,
	}
}

// SanitizeForLogging removes control characters and limits length to prevent log injection
func SanitizeForLogging(input string) string {
	sanitized := strings.Map(func(r rune) rune {
		if r < asciiControlCharMin || r == asciiControlCharMax {
			return -1
		}
		return r
	}, input)

	if len(sanitized) > MaxInputLength {
		sanitized = sanitized[:MaxInputLength] + "..."
	}

	return sanitized
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:  "ok",
		Service: ServiceName,
	})
}

func (h *Handler) HandleRank(w http.ResponseWriter, r *http.Request) {
	var req models.RankRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	if !h.checkCatalogSize(w, len(req.Songs)) {
		return
	}

	if req.TopK == 0 {
		req.TopK = h.config.RankTopKDefault
	}

	results := h.ranking.Rank(req.UserID, req.Songs, req.Query, req.TopK)

	h.logger.WithFields(logrus.Fields{
		"userID":   SanitizeForLogging(req.UserID),
		"query":    SanitizeForLogging(req.Query),
		"catalog":  len(req.Songs),
		"returned": len(results),
	}).Info("Served rank request")

	h.writeJSON(w, http.StatusOK, models.RankResponse{Results: results})
}

func (h *Handler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	if !h.checkCatalogSize(w, len(req.Songs)) {
		return
	}

	if req.TopK == 0 {
		req.TopK = h.config.RecommendDefault
	}

	result := h.ranking.Recommend(req.UserID, req.UserData, req.Songs, req.TopK)

	h.logger.WithFields(logrus.Fields{
		"userID":   SanitizeForLogging(req.UserID),
		"catalog":  len(req.Songs),
		"returned": len(result.Songs),
	}).Info("Served recommend request")

	h.writeJSON(w, http.StatusOK, result)
}

// decodeRequest parses and validates a request body. On failure it writes
// the error response and returns false.
func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, h.config.MaxRequestBytes)

	if err := json.NewDecoder(body).Decode(req); err != nil {
		decodeErr := errors.Wrap(err, errors.CategoryValidation, "MALFORMED_REQUEST", "failed to decode request body")
		h.logger.WithError(decodeErr).Warn("Malformed request body")
		h.writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}

	if err := h.validate.Struct(req); err != nil {
		validationErr := errors.Wrap(err, errors.CategoryValidation, "VALIDATION_FAILED", "request validation failed")
		h.logger.WithError(validationErr).Warn("Request validation failed")
		h.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}

	return true
}

func (h *Handler) checkCatalogSize(w http.ResponseWriter, size int) bool {
	if size > h.config.MaxCatalogSize {
		sizeErr := errors.ErrCatalogTooLarge.
			WithContext("catalog_size", size).
			WithContext("max_allowed", h.config.MaxCatalogSize)
		h.logger.WithError(sizeErr).Warn("Catalog size exceeds limit")
		h.writeError(w, http.StatusBadRequest, "song catalog exceeds configured limit")
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		encodeErr := errors.Wrap(err, errors.CategoryServer, "RESPONSE_ENCODING_FAILED", "failed to encode response")
		h.logger.WithError(encodeErr).Error("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		h.logger.WithError(err).Error("Failed to encode error response")
	}
}
