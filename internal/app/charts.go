package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/cesargomez89/chartpulse/internal/constants"
	"github.com/cesargomez89/chartpulse/internal/domain"
	"github.com/cesargomez89/chartpulse/internal/store"
)

// ChartService reads recorded charts per market, both the latest snapshot
// and yearly aggregates. It reports what the snapshot log contains;
// freshness decisions belong to the caller.
type ChartService struct {
	Store *store.DB

	now func() time.Time
}

func NewChartService(db *store.DB) *ChartService {
	return &ChartService{Store: db, now: time.Now}
}

// SetClock overrides the time source for deterministic year validation in tests.
func (s *ChartService) SetClock(now func() time.Time) {
	s.now = now
}

// Chart is a market's chart on its most recent snapshot date.
type Chart struct {
	Market       string             `json:"market"`
	SnapshotDate string             `json:"snapshot_date,omitempty"`
	Tracks       []domain.ChartTrack `json:"tracks"`
}

// LatestChart returns the most recent chart for a market, ordered by rank
// ascending. A market with no snapshots yields an empty chart, not an error.
// Missing artist or album data degrades to display defaults.
func (s *ChartService) LatestChart(market string) (*Chart, error) {
	market = strings.ToUpper(strings.TrimSpace(market))

	chart := &Chart{Market: market, Tracks: []domain.ChartTrack{}}

	date, err := s.Store.LatestSnapshotDate(market)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve latest snapshot: %w", err)
	}
	if date == "" {
		return chart, nil
	}
	chart.SnapshotDate = date

	rows, err := s.Store.ChartForDate(market, date)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart: %w", err)
	}

	for _, row := range rows {
		artists := row.ArtistNames
		if len(artists) == 0 {
			artists = []string{constants.UnknownArtist}
		}
		album := row.Album
		if album == "" {
			album = constants.UnknownAlbum
		}

		chart.Tracks = append(chart.Tracks, domain.ChartTrack{
			Rank:        row.Rank,
			TrackName:   row.TrackName,
			Artists:     artists,
			Album:       album,
			ReleaseDate: domain.FormatReleaseDate(row.AlbumReleaseDate),
			Popularity:  row.Popularity,
			Explicit:    row.Explicit,
			PreviewURL:  row.PreviewURL,
			SpotifyURL:  row.ExternalURL,
			Duration:    domain.FormatDuration(row.DurationMS),
		})
	}

	return chart, nil
}

// YearlyTrack is one entry of a yearly chart: a track's aggregate run over
// the year's snapshots.
type YearlyTrack struct {
	TrackName   string  `json:"track_name"`
	ReleaseDate string  `json:"release_date"`
	FirstSeen   string  `json:"first_appearance"`
	LastSeen    string  `json:"last_appearance"`
	Appearances int     `json:"appearances"`
	AvgRank     float64 `json:"avg_rank"`
	BestRank    int     `json:"best_rank"`
	WorstRank   int     `json:"worst_rank"`
	Popularity  int     `json:"popularity"`
	DaysOnChart int     `json:"days_on_chart"`
	ReleaseYear int     `json:"release_year,omitempty"`
}

// YearlyChart ranks a market's tracks over one calendar year.
type YearlyChart struct {
	Market string        `json:"market"`
	Tracks []YearlyTrack `json:"tracks"`
	Year   int           `json:"year"`
	Total  int           `json:"total_tracks"`
}

// YearChart aggregates a market's snapshots for one year: tracks ranked by
// chart appearances, better average rank breaking ties. A year with no
// snapshots yields an empty chart, matching LatestChart's empty-state rule.
func (s *ChartService) YearChart(market string, year, limit int) (*YearlyChart, error) {
	market = strings.ToUpper(strings.TrimSpace(market))

	current := s.now().Year()
	if year < 1900 || year > current+1 {
		return nil, &domain.ValidationError{
			Field:  "year",
			Reason: fmt.Sprintf("must be between 1900 and %d", current+1),
		}
	}
	if limit < 1 || limit > 100 {
		return nil, &domain.ValidationError{Field: "limit", Reason: "must be between 1 and 100"}
	}

	stats, err := s.Store.YearlyTrackStats(market, year, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read yearly chart: %w", err)
	}

	chart := &YearlyChart{Market: market, Year: year, Tracks: make([]YearlyTrack, 0, len(stats))}
	for _, st := range stats {
		chart.Tracks = append(chart.Tracks, YearlyTrack{
			TrackName:   st.TrackName,
			ReleaseDate: domain.FormatReleaseDate(st.ReleaseDate),
			ReleaseYear: domain.ReleaseYear(st.ReleaseDate),
			FirstSeen:   st.FirstSeen,
			LastSeen:    st.LastSeen,
			Appearances: st.Appearances,
			AvgRank:     st.AvgRank,
			BestRank:    st.BestRank,
			WorstRank:   st.WorstRank,
			Popularity:  st.Popularity,
			DaysOnChart: st.Appearances,
		})
	}
	chart.Total = len(chart.Tracks)

	return chart, nil
}
