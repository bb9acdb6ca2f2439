package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/chartpulse/internal/domain"
)

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) TodayChart(w http.ResponseWriter, r *http.Request) {
	market := r.URL.Query().Get("market")
	if market == "" {
		market = "IN"
	}

	chart, err := h.Charts.LatestChart(market)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, chart)
}

func (h *Handler) YearChart(w http.ResponseWriter, r *http.Request) {
	market := r.URL.Query().Get("market")
	if market == "" {
		market = "IN"
	}
	year, err := h.intParam(r.URL.Query().Get("year"), "year", 0)
	if err != nil {
		h.writeError(w, err)
		return
	}
	limit, err := h.intParam(r.URL.Query().Get("limit"), "limit", 50)
	if err != nil {
		h.writeError(w, err)
		return
	}

	chart, err := h.Charts.YearChart(market, year, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, chart)
}

func (h *Handler) TriggerIngest(w http.ResponseWriter, r *http.Request) {
	if h.AdminKey == "" || r.Header.Get("X-Admin-Key") != h.AdminKey {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid admin key"})
		return
	}

	market := r.URL.Query().Get("market")
	if market == "" {
		market = "IN"
	}

	result, err := h.Ingest.Ingest(r.Context(), market)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.Analytics.Overview()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, overview)
}

func (h *Handler) TopArtists(w http.ResponseWriter, r *http.Request) {
	limit, err := h.intParam(r.URL.Query().Get("limit"), "limit", 10)
	if err != nil {
		h.writeError(w, err)
		return
	}

	artists, err := h.Analytics.TopArtistsByTrackCount(limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"artists":    artists,
		"total":      len(artists),
		"fetched_at": time.Now().UTC(),
	})
}

func (h *Handler) GenreDistribution(w http.ResponseWriter, r *http.Request) {
	shares, err := h.Analytics.GenreDistribution()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"genres":     shares,
		"fetched_at": time.Now().UTC(),
	})
}

func (h *Handler) CompareGenres(w http.ResponseWriter, r *http.Request) {
	markets := r.URL.Query()["markets"]
	comparison, err := h.Analytics.CompareGenres(markets)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, comparison)
}

func (h *Handler) SearchTracksByYear(w http.ResponseWriter, r *http.Request) {
	year, err := h.intParam(chi.URLParam(r, "year"), "year", 0)
	if err != nil {
		h.writeError(w, err)
		return
	}
	query, market, limit, offset, err := h.searchParams(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.Search.TracksByYear(r.Context(), year, query, market, limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) SearchTracksByYearRange(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "range")
	parts := strings.SplitN(raw, "-", 2)
	if len(parts) != 2 {
		h.writeError(w, &domain.ValidationError{Field: "range", Reason: "must look like 2018-2022"})
		return
	}
	start, err := h.intParam(parts[0], "range", 0)
	if err != nil {
		h.writeError(w, err)
		return
	}
	end, err := h.intParam(parts[1], "range", 0)
	if err != nil {
		h.writeError(w, err)
		return
	}
	query, market, limit, offset, err := h.searchParams(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.Search.TracksByYearRange(r.Context(), start, end, query, market, limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) TopTracksOfYear(w http.ResponseWriter, r *http.Request) {
	year, err := h.intParam(chi.URLParam(r, "year"), "year", 0)
	if err != nil {
		h.writeError(w, err)
		return
	}
	limit, err := h.intParam(r.URL.Query().Get("limit"), "limit", 50)
	if err != nil {
		h.writeError(w, err)
		return
	}
	market := r.URL.Query().Get("market")
	if market == "" {
		market = "IN"
	}

	result, err := h.Search.TopTracksOfYear(r.Context(), year, r.URL.Query().Get("genre"), market, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// searchParams reads the shared query/market/limit/offset search parameters.
func (h *Handler) searchParams(r *http.Request) (query, market string, limit, offset int, err error) {
	query = r.URL.Query().Get("query")
	market = r.URL.Query().Get("market")
	if market == "" {
		market = "IN"
	}
	limit, err = h.intParam(r.URL.Query().Get("limit"), "limit", 50)
	if err != nil {
		return "", "", 0, 0, err
	}
	offset, err = h.intParam(r.URL.Query().Get("offset"), "offset", 0)
	if err != nil {
		return "", "", 0, 0, err
	}
	return query, market, limit, offset, nil
}

// intParam parses an integer parameter, falling back to a default when the
// value is absent.
func (h *Handler) intParam(raw, field string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.ValidationError{Field: field, Reason: "must be a number"}
	}
	return parsed, nil
}
