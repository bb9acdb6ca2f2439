package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cesargomez89/chartpulse/internal/domain"
)

// fakeSearcher records calls and serves one canned page per query.
type fakeSearcher struct {
	pages map[string]*domain.TrackSearchResult
	err   error
	calls []string
}

func (f *fakeSearcher) SearchTracks(ctx context.Context, query, yearFilter, market string, limit, offset int) (*domain.TrackSearchResult, error) {
	f.calls = append(f.calls, query+" year:"+yearFilter)
	if f.err != nil {
		return nil, f.err
	}
	if page, ok := f.pages[query]; ok {
		return page, nil
	}
	return &domain.TrackSearchResult{}, nil
}

func searchHit(id, name, releaseDate string, popularity int) domain.FetchedTrack {
	return domain.FetchedTrack{
		SpotifyID:        id,
		Name:             name,
		AlbumReleaseDate: releaseDate,
		Popularity:       popularity,
		Artists:          []domain.FetchedArtist{{SpotifyID: "a", Name: "Artist A"}},
	}
}

func newTestSearch(t *testing.T, searcher TrackSearcher) *SearchService {
	t.Helper()
	svc := NewSearchService(searcher, testLogger())
	svc.SetClock(func() time.Time {
		return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	})
	return svc
}

func TestSearchService_TracksByYear(t *testing.T) {
	searcher := &fakeSearcher{pages: map[string]*domain.TrackSearchResult{
		"tum hi ho": {
			Total: 120,
			Tracks: []domain.FetchedTrack{
				searchHit("t1", "Tum Hi Ho", "2013-02-18", 85),
				searchHit("t2", "Old Single", "2013", 60),
			},
		},
	}}
	svc := newTestSearch(t, searcher)

	result, err := svc.TracksByYear(context.Background(), 2013, "tum hi ho", "IN", 2, 0)
	if err != nil {
		t.Fatalf("TracksByYear failed: %v", err)
	}
	if result.YearFilter != "2013" {
		t.Errorf("Expected year filter 2013, got %q", result.YearFilter)
	}
	if result.Total != 120 {
		t.Errorf("Expected source total 120, got %d", result.Total)
	}
	if len(result.Tracks) != 2 {
		t.Fatalf("Expected 2 tracks, got %d", len(result.Tracks))
	}
	// Release year resolves from either date precision
	if result.Tracks[0].ReleaseYear != 2013 || result.Tracks[1].ReleaseYear != 2013 {
		t.Errorf("Expected release year 2013, got %d and %d", result.Tracks[0].ReleaseYear, result.Tracks[1].ReleaseYear)
	}
	if result.Tracks[0].ReleaseDate != "18 Feb 2013" {
		t.Errorf("Expected formatted release date, got %q", result.Tracks[0].ReleaseDate)
	}
	// Full page means there may be more
	if result.NextOffset == nil || *result.NextOffset != 2 {
		t.Errorf("Expected next offset 2, got %v", result.NextOffset)
	}
	if len(searcher.calls) != 1 || searcher.calls[0] != "tum hi ho year:2013" {
		t.Errorf("Unexpected search calls: %v", searcher.calls)
	}
}

func TestSearchService_TracksByYear_DefaultQuery(t *testing.T) {
	searcher := &fakeSearcher{pages: map[string]*domain.TrackSearchResult{}}
	svc := newTestSearch(t, searcher)

	result, err := svc.TracksByYear(context.Background(), 2020, "", "IN", 10, 0)
	if err != nil {
		t.Fatalf("TracksByYear failed: %v", err)
	}
	if result.Query != defaultSearchQuery {
		t.Errorf("Expected default query, got %q", result.Query)
	}
	// Short page: no further offset to fetch
	if result.NextOffset != nil {
		t.Errorf("Expected no next offset for a short page, got %v", result.NextOffset)
	}
}

func TestSearchService_TracksByYear_Validation(t *testing.T) {
	svc := newTestSearch(t, &fakeSearcher{})

	for name, call := range map[string]func() error{
		"year too old": func() error {
			_, err := svc.TracksByYear(context.Background(), 1850, "", "IN", 10, 0)
			return err
		},
		"year too far ahead": func() error {
			_, err := svc.TracksByYear(context.Background(), 2030, "", "IN", 10, 0)
			return err
		},
		"zero limit": func() error {
			_, err := svc.TracksByYear(context.Background(), 2020, "", "IN", 0, 0)
			return err
		},
		"oversized limit": func() error {
			_, err := svc.TracksByYear(context.Background(), 2020, "", "IN", 51, 0)
			return err
		},
		"negative offset": func() error {
			_, err := svc.TracksByYear(context.Background(), 2020, "", "IN", 10, -1)
			return err
		},
	} {
		var validationErr *domain.ValidationError
		if err := call(); !errors.As(err, &validationErr) {
			t.Errorf("%s: expected ValidationError, got %v", name, err)
		}
	}
}

func TestSearchService_TracksByYearRange_Validation(t *testing.T) {
	svc := newTestSearch(t, &fakeSearcher{})

	_, err := svc.TracksByYearRange(context.Background(), 2022, 2018, "", "IN", 10, 0)
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("Expected ValidationError for inverted range, got %v", err)
	}

	_, err = svc.TracksByYearRange(context.Background(), 2000, 2020, "", "IN", 10, 0)
	if !errors.As(err, &validationErr) {
		t.Errorf("Expected ValidationError for over-wide range, got %v", err)
	}

	result, err := svc.TracksByYearRange(context.Background(), 2018, 2022, "", "IN", 10, 0)
	if err != nil {
		t.Fatalf("TracksByYearRange failed: %v", err)
	}
	if result.YearFilter != "2018-2022" {
		t.Errorf("Expected range filter 2018-2022, got %q", result.YearFilter)
	}
}

func TestSearchService_TopTracksOfYear(t *testing.T) {
	// Two probe queries overlap on t1; popularity decides the order
	searcher := &fakeSearcher{pages: map[string]*domain.TrackSearchResult{
		"top hits": {Tracks: []domain.FetchedTrack{
			searchHit("t1", "Shared Hit", "2019-01-01", 90),
			searchHit("t2", "Deep Cut", "2019-05-01", 40),
		}},
		"best songs": {Tracks: []domain.FetchedTrack{
			searchHit("t1", "Shared Hit", "2019-01-01", 90),
			searchHit("t3", "Sleeper", "2019-07-01", 70),
		}},
	}}
	svc := newTestSearch(t, searcher)

	result, err := svc.TopTracksOfYear(context.Background(), 2019, "", "IN", 2)
	if err != nil {
		t.Fatalf("TopTracksOfYear failed: %v", err)
	}
	if len(searcher.calls) != len(topOfYearQueries) {
		t.Errorf("Expected %d probe queries, got %d", len(topOfYearQueries), len(searcher.calls))
	}
	if len(result.Tracks) != 2 {
		t.Fatalf("Expected 2 tracks after dedupe and truncation, got %d", len(result.Tracks))
	}
	if result.Tracks[0].SpotifyID != "t1" || result.Tracks[1].SpotifyID != "t3" {
		t.Errorf("Expected popularity order [t1 t3], got [%s %s]", result.Tracks[0].SpotifyID, result.Tracks[1].SpotifyID)
	}
}

func TestSearchService_TopTracksOfYear_GenrePrefix(t *testing.T) {
	searcher := &fakeSearcher{pages: map[string]*domain.TrackSearchResult{}}
	svc := newTestSearch(t, searcher)

	if _, err := svc.TopTracksOfYear(context.Background(), 2019, "bollywood", "IN", 10); err != nil {
		t.Fatalf("TopTracksOfYear failed: %v", err)
	}
	if searcher.calls[0] != "bollywood top hits year:2019" {
		t.Errorf("Expected genre-prefixed query, got %q", searcher.calls[0])
	}
}

func TestSearchService_TopTracksOfYear_AllQueriesFail(t *testing.T) {
	searcher := &fakeSearcher{err: &domain.SourceUnavailableError{Op: "/search", StatusCode: 503}}
	svc := newTestSearch(t, searcher)

	_, err := svc.TopTracksOfYear(context.Background(), 2019, "", "IN", 10)
	var sourceErr *domain.SourceUnavailableError
	if !errors.As(err, &sourceErr) {
		t.Fatalf("Expected SourceUnavailableError when every probe fails, got %v", err)
	}
}
