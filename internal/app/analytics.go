package app

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/cesargomez89/chartpulse/internal/constants"
	"github.com/cesargomez89/chartpulse/internal/domain"
	"github.com/cesargomez89/chartpulse/internal/genre"
	"github.com/cesargomez89/chartpulse/internal/store"
)

// growthWindowDays is the lookback for the overview growth figure.
const growthWindowDays = 30

// AnalyticsService computes cross-cutting statistics over the entity store
// and the latest snapshot per market.
type AnalyticsService struct {
	Store    *store.DB
	Classify genre.Classifier

	loc *time.Location
	now func() time.Time
}

func NewAnalyticsService(db *store.DB, loc *time.Location) *AnalyticsService {
	return &AnalyticsService{
		Store:    db,
		Classify: genre.Classify,
		loc:      loc,
		now:      time.Now,
	}
}

// SetClock overrides the time source for deterministic growth windows in tests.
func (s *AnalyticsService) SetClock(now func() time.Time) {
	s.now = now
}

// Overview returns store-wide cardinalities plus a growth figure computed
// from snapshot history: the share of tracks first charting in the last 30
// days.
func (s *AnalyticsService) Overview() (*domain.Overview, error) {
	tracks, err := s.Store.TrackCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count tracks: %w", err)
	}
	artists, err := s.Store.ArtistCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count artists: %w", err)
	}
	snapshots, err := s.Store.SnapshotCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count snapshots: %w", err)
	}
	lastUpdated, err := s.Store.LastFetchedAt()
	if err != nil {
		return nil, err
	}

	since := s.now().In(s.loc).AddDate(0, 0, -growthWindowDays).Format(constants.SnapshotDateLayout)
	newTracks, err := s.Store.TracksFirstSeenSince(since)
	if err != nil {
		return nil, err
	}

	growth := 0
	if tracks > 0 {
		growth = int(math.Round(float64(newTracks) / float64(tracks) * 100))
	}

	return &domain.Overview{
		TrackCount:    tracks,
		ArtistCount:   artists,
		SnapshotCount: snapshots,
		LastUpdated:   lastUpdated,
		NewTracks30d:  newTracks,
		TracksGrowth:  fmt.Sprintf("+%d%%", growth),
	}, nil
}

// TopArtistsByTrackCount ranks artists by distinct track count across the
// whole store. Rejects a non-positive limit.
func (s *AnalyticsService) TopArtistsByTrackCount(limit int) ([]domain.ArtistTrackCount, error) {
	if limit <= 0 {
		return nil, &domain.ValidationError{Field: "limit", Reason: "must be greater than zero"}
	}
	return s.Store.TopArtistsByTrackCount(limit)
}

// GenreDistribution buckets every stored track with the heuristic classifier
// and returns non-empty buckets with their share, largest first.
func (s *AnalyticsService) GenreDistribution() ([]domain.GenreShare, error) {
	credits, err := s.Store.ListTracksWithArtists()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, c := range credits {
		bucket := s.Classify(genre.Signal{
			TrackName:    c.TrackName,
			AlbumName:    c.Album,
			ArtistNames:  c.ArtistNames,
			ArtistGenres: c.ArtistGenres,
		})
		counts[bucket]++
	}

	total := len(credits)
	shares := make([]domain.GenreShare, 0, len(counts))
	for bucket, count := range counts {
		shares = append(shares, domain.GenreShare{
			Name:       bucket,
			Count:      count,
			Percentage: roundShare(count, total),
		})
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Count != shares[j].Count {
			return shares[i].Count > shares[j].Count
		}
		return shares[i].Name < shares[j].Name
	})

	return shares, nil
}

// CompareGenres buckets each requested market's latest chart and returns
// counts per bucket per market. Markets never ingested appear with all-zero
// counts rather than erroring.
func (s *AnalyticsService) CompareGenres(markets []string) (*domain.GenreComparison, error) {
	if len(markets) == 0 {
		return nil, &domain.ValidationError{Field: "markets", Reason: "at least one market is required"}
	}

	comparison := &domain.GenreComparison{
		Counts: make(map[string]map[string]int),
	}

	bucketSet := make(map[string]bool)
	for _, raw := range markets {
		market := strings.ToUpper(strings.TrimSpace(raw))
		if market == "" {
			continue
		}
		comparison.Markets = append(comparison.Markets, market)
		comparison.Counts[market] = make(map[string]int)

		date, err := s.Store.LatestSnapshotDate(market)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve snapshot for %s: %w", market, err)
		}
		if date == "" {
			continue
		}

		rows, err := s.Store.ChartForDate(market, date)
		if err != nil {
			return nil, fmt.Errorf("failed to read chart for %s: %w", market, err)
		}

		for _, row := range rows {
			bucket := s.Classify(genre.Signal{
				TrackName:    row.TrackName,
				AlbumName:    row.Album,
				ArtistNames:  row.ArtistNames,
				ArtistGenres: row.ArtistGenres,
			})
			comparison.Counts[market][bucket]++
			bucketSet[bucket] = true
		}
	}

	for bucket := range bucketSet {
		comparison.Buckets = append(comparison.Buckets, bucket)
	}
	sort.Strings(comparison.Buckets)

	// Fill zeroes so every market reports every observed bucket.
	for _, market := range comparison.Markets {
		for _, bucket := range comparison.Buckets {
			if _, ok := comparison.Counts[market][bucket]; !ok {
				comparison.Counts[market][bucket] = 0
			}
		}
	}

	return comparison, nil
}

func roundShare(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}
