package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/chartpulse/internal/app"
	"github.com/cesargomez89/chartpulse/internal/domain"
	"github.com/cesargomez89/chartpulse/internal/logger"
)

type Handler struct {
	Ingest    *app.IngestionService
	Charts    *app.ChartService
	Analytics *app.AnalyticsService
	Search    *app.SearchService
	Logger    *logger.Logger
	AdminKey  string
}

func NewHandler(ingest *app.IngestionService, charts *app.ChartService, analytics *app.AnalyticsService, search *app.SearchService, adminKey string, log *logger.Logger) *Handler {
	return &Handler{
		Ingest:    ingest,
		Charts:    charts,
		Analytics: analytics,
		Search:    search,
		Logger:    log.WithComponent("http"),
		AdminKey:  adminKey,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/charts/top-today", h.TodayChart)
		r.Get("/charts/top-year", h.YearChart)
		r.Get("/analytics/overview", h.Overview)
		r.Get("/analytics/top-artists", h.TopArtists)
		r.Get("/analytics/genres", h.GenreDistribution)
		r.Get("/analytics/compare-genres", h.CompareGenres)
		r.Get("/search/tracks/year/{year}", h.SearchTracksByYear)
		r.Get("/search/tracks/year-range/{range}", h.SearchTracksByYearRange)
		r.Get("/search/top-of-year/{year}", h.TopTracksOfYear)
		r.Post("/admin/ingest/run", h.TriggerIngest)
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses: bad input is
// the caller's fault, config gaps need an operator, source failures are
// retryable upstream trouble.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var (
		validationErr *domain.ValidationError
		configErr     *domain.ConfigError
		sourceErr     *domain.SourceUnavailableError
	)

	status := http.StatusInternalServerError
	kind := "internal"
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		kind = "validation"
	case errors.As(err, &configErr):
		status = http.StatusUnprocessableEntity
		kind = "config"
	case errors.As(err, &sourceErr):
		status = http.StatusBadGateway
		kind = "source_unavailable"
	}

	h.writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"kind":  kind,
	})
}
