package app

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/cesargomez89/chartpulse/internal/domain"
	"github.com/cesargomez89/chartpulse/internal/logger"
)

// TrackSearcher is the external search capability the service depends on.
type TrackSearcher interface {
	SearchTracks(ctx context.Context, query, yearFilter, market string, limit, offset int) (*domain.TrackSearchResult, error)
}

// defaultSearchQuery anchors unqualified searches to the catalog this
// service tracks.
const defaultSearchQuery = "india bollywood hindi"

// maxSearchLimit is the source's per-page ceiling for search results.
const maxSearchLimit = 50

// topOfYearQueries are the probe queries combined to approximate a year's
// most popular tracks, since the source has no direct "top of year" endpoint.
var topOfYearQueries = []string{
	"top hits",
	"best songs",
	"popular music",
	"chart toppers",
	"greatest hits",
}

// SearchService answers release-year queries against the external source's
// live catalog, unlike the chart readers which only see ingested snapshots.
type SearchService struct {
	Searcher TrackSearcher
	Logger   *logger.Logger

	now func() time.Time
}

func NewSearchService(searcher TrackSearcher, log *logger.Logger) *SearchService {
	return &SearchService{
		Searcher: searcher,
		Logger:   log.WithComponent("search"),
		now:      time.Now,
	}
}

// SetClock overrides the time source for deterministic year validation in tests.
func (s *SearchService) SetClock(now func() time.Time) {
	s.now = now
}

// SearchedTrack is one search hit with its release year resolved from the
// source's variable-precision release date.
type SearchedTrack struct {
	SpotifyID   string   `json:"spotify_id"`
	TrackName   string   `json:"track_name"`
	Artists     []string `json:"artists"`
	Album       string   `json:"album"`
	ReleaseDate string   `json:"release_date"`
	Duration    string   `json:"duration"`
	PreviewURL  string   `json:"preview_url,omitempty"`
	SpotifyURL  string   `json:"spotify_url,omitempty"`
	ReleaseYear int      `json:"release_year"`
	Popularity  int      `json:"popularity"`
}

// YearSearch is one page of year-filtered search results.
type YearSearch struct {
	YearFilter string          `json:"year_filter"`
	Query      string          `json:"query"`
	NextOffset *int            `json:"next_offset,omitempty"`
	Tracks     []SearchedTrack `json:"tracks"`
	Total      int             `json:"total"`
	Limit      int             `json:"limit"`
	Offset     int             `json:"offset"`
}

// TracksByYear searches the live catalog for tracks released in one year.
func (s *SearchService) TracksByYear(ctx context.Context, year int, query, market string, limit, offset int) (*YearSearch, error) {
	if err := s.validateYear(year); err != nil {
		return nil, err
	}
	return s.search(ctx, strconv.Itoa(year), query, market, limit, offset)
}

// TracksByYearRange searches the live catalog across an inclusive year span
// of at most ten years.
func (s *SearchService) TracksByYearRange(ctx context.Context, startYear, endYear int, query, market string, limit, offset int) (*YearSearch, error) {
	if err := s.validateYear(startYear); err != nil {
		return nil, err
	}
	if err := s.validateYear(endYear); err != nil {
		return nil, err
	}
	if startYear > endYear {
		return nil, &domain.ValidationError{Field: "year range", Reason: "start year must not be after end year"}
	}
	if endYear-startYear > 10 {
		return nil, &domain.ValidationError{Field: "year range", Reason: "span must not exceed 10 years"}
	}
	return s.search(ctx, fmt.Sprintf("%d-%d", startYear, endYear), query, market, limit, offset)
}

// TopTracksOfYear approximates a year's most popular tracks by combining
// several broad searches, deduplicating and sorting by popularity.
func (s *SearchService) TopTracksOfYear(ctx context.Context, year int, genreFilter, market string, limit int) (*YearSearch, error) {
	if err := s.validateYear(year); err != nil {
		return nil, err
	}
	if limit < 1 || limit > maxSearchLimit {
		return nil, &domain.ValidationError{Field: "limit", Reason: fmt.Sprintf("must be between 1 and %d", maxSearchLimit)}
	}

	yearFilter := strconv.Itoa(year)
	seen := make(map[string]SearchedTrack)
	var lastErr error
	for _, q := range topOfYearQueries {
		if genreFilter != "" {
			q = genreFilter + " " + q
		}
		result, err := s.Searcher.SearchTracks(ctx, q, yearFilter, market, maxSearchLimit, 0)
		if err != nil {
			// One broad query failing only narrows the candidate pool
			s.Logger.Warn("Top-of-year probe query failed", "query", q, "year", year, "error", err)
			lastErr = err
			continue
		}
		for _, ft := range result.Tracks {
			if _, ok := seen[ft.SpotifyID]; !ok {
				seen[ft.SpotifyID] = viewSearchedTrack(ft)
			}
		}
	}
	if len(seen) == 0 && lastErr != nil {
		return nil, lastErr
	}

	tracks := make([]SearchedTrack, 0, len(seen))
	for _, tr := range seen {
		tracks = append(tracks, tr)
	}
	sort.Slice(tracks, func(i, j int) bool {
		if tracks[i].Popularity != tracks[j].Popularity {
			return tracks[i].Popularity > tracks[j].Popularity
		}
		return tracks[i].TrackName < tracks[j].TrackName
	})
	if len(tracks) > limit {
		tracks = tracks[:limit]
	}

	return &YearSearch{
		YearFilter: yearFilter,
		Query:      genreFilter,
		Tracks:     tracks,
		Total:      len(tracks),
		Limit:      limit,
	}, nil
}

func (s *SearchService) search(ctx context.Context, yearFilter, query, market string, limit, offset int) (*YearSearch, error) {
	if limit < 1 || limit > maxSearchLimit {
		return nil, &domain.ValidationError{Field: "limit", Reason: fmt.Sprintf("must be between 1 and %d", maxSearchLimit)}
	}
	if offset < 0 {
		return nil, &domain.ValidationError{Field: "offset", Reason: "must not be negative"}
	}
	if query == "" {
		query = defaultSearchQuery
	}

	result, err := s.Searcher.SearchTracks(ctx, query, yearFilter, market, limit, offset)
	if err != nil {
		return nil, err
	}

	search := &YearSearch{
		YearFilter: yearFilter,
		Query:      query,
		Tracks:     make([]SearchedTrack, 0, len(result.Tracks)),
		Total:      result.Total,
		Limit:      limit,
		Offset:     offset,
	}
	for _, ft := range result.Tracks {
		search.Tracks = append(search.Tracks, viewSearchedTrack(ft))
	}
	if len(search.Tracks) == limit {
		next := offset + limit
		search.NextOffset = &next
	}
	return search, nil
}

// validateYear bounds year parameters to the catalog's plausible range.
func (s *SearchService) validateYear(year int) error {
	current := s.now().Year()
	if year < 1900 || year > current+1 {
		return &domain.ValidationError{
			Field:  "year",
			Reason: fmt.Sprintf("must be between 1900 and %d", current+1),
		}
	}
	return nil
}

func viewSearchedTrack(ft domain.FetchedTrack) SearchedTrack {
	artists := make([]string, 0, len(ft.Artists))
	for _, a := range ft.Artists {
		artists = append(artists, a.Name)
	}
	return SearchedTrack{
		SpotifyID:   ft.SpotifyID,
		TrackName:   ft.Name,
		Artists:     artists,
		Album:       ft.Album,
		ReleaseDate: domain.FormatReleaseDate(ft.AlbumReleaseDate),
		ReleaseYear: domain.ReleaseYear(ft.AlbumReleaseDate),
		Duration:    domain.FormatDuration(ft.DurationMS),
		PreviewURL:  ft.PreviewURL,
		SpotifyURL:  ft.ExternalURL,
		Popularity:  ft.Popularity,
	}
}
