package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cesargomez89/chartpulse/internal/domain"
	"github.com/cesargomez89/chartpulse/internal/logger"
	"github.com/cesargomez89/chartpulse/internal/store"
)

// fakeFetcher serves canned charts keyed by playlist ID.
type fakeFetcher struct {
	playlists map[string]*domain.FetchedPlaylist
	err       error
	calls     int
}

func (f *fakeFetcher) GetPlaylistTracks(ctx context.Context, playlistID, market string) (*domain.FetchedPlaylist, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.playlists[playlistID]
	if !ok {
		return nil, &domain.ConfigError{Market: market, Reason: "unknown playlist"}
	}
	return p, nil
}

func newTestStore(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "text"})
}

func artist(id, name string) domain.FetchedArtist {
	return domain.FetchedArtist{SpotifyID: id, Name: name}
}

// sampleChart is three tracks by Artist A, Artist B, and a collaboration of
// Artist A and Artist C.
func sampleChart() *domain.FetchedPlaylist {
	return &domain.FetchedPlaylist{
		SpotifyID: "pl_in",
		Name:      "Top 50 - India",
		Tracks: []domain.FetchedTrack{
			{SpotifyID: "t1", Name: "Song One", Rank: 1, Artists: []domain.FetchedArtist{artist("a", "Artist A")}},
			{SpotifyID: "t2", Name: "Song Two", Rank: 2, Artists: []domain.FetchedArtist{artist("b", "Artist B")}},
			{SpotifyID: "t3", Name: "Song Three", Rank: 3, Artists: []domain.FetchedArtist{artist("a", "Artist A"), artist("c", "Artist C")}},
		},
	}
}

func newTestIngest(t *testing.T, db *store.DB, fetcher *fakeFetcher) *IngestionService {
	t.Helper()
	svc := NewIngestionService(db, fetcher, map[string]string{"IN": "pl_in"}, time.UTC, testLogger())
	svc.SetClock(func() time.Time {
		return time.Date(2026, 8, 30, 0, 30, 0, 0, time.UTC)
	})
	return svc
}

func TestIngestionService_Ingest(t *testing.T) {
	db := newTestStore(t)
	fetcher := &fakeFetcher{playlists: map[string]*domain.FetchedPlaylist{"pl_in": sampleChart()}}
	svc := newTestIngest(t, db, fetcher)

	result, err := svc.Ingest(context.Background(), "IN")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if result.RunID == "" {
		t.Error("Expected a run ID")
	}
	if result.SnapshotDate != "2026-08-30" {
		t.Errorf("Expected snapshot date 2026-08-30, got %q", result.SnapshotDate)
	}
	if result.TracksUpserted != 3 {
		t.Errorf("Expected 3 tracks upserted, got %d", result.TracksUpserted)
	}
	if result.ArtistsUpserted != 3 {
		t.Errorf("Expected 3 distinct artists upserted, got %d", result.ArtistsUpserted)
	}
	if result.SnapshotRows != 3 {
		t.Errorf("Expected 3 snapshot rows, got %d", result.SnapshotRows)
	}

	artists, err := db.ArtistCount()
	if err != nil {
		t.Fatalf("ArtistCount failed: %v", err)
	}
	if artists != 3 {
		t.Errorf("Expected 3 artist rows, got %d", artists)
	}

	// Artist A has two tracks; the leaderboard must say so
	top, err := db.TopArtistsByTrackCount(1)
	if err != nil {
		t.Fatalf("TopArtistsByTrackCount failed: %v", err)
	}
	if len(top) != 1 || top[0].Name != "Artist A" || top[0].TrackCount != 2 {
		t.Errorf("Expected [(Artist A, 2)], got %v", top)
	}
}

func TestIngestionService_Ingest_Idempotent(t *testing.T) {
	db := newTestStore(t)
	fetcher := &fakeFetcher{playlists: map[string]*domain.FetchedPlaylist{"pl_in": sampleChart()}}
	svc := newTestIngest(t, db, fetcher)

	if _, err := svc.Ingest(context.Background(), "IN"); err != nil {
		t.Fatalf("First ingest failed: %v", err)
	}
	if _, err := svc.Ingest(context.Background(), "IN"); err != nil {
		t.Fatalf("Second ingest failed: %v", err)
	}

	tracks, err := db.TrackCount()
	if err != nil {
		t.Fatalf("TrackCount failed: %v", err)
	}
	if tracks != 3 {
		t.Errorf("Expected 3 track rows after re-ingest, got %d", tracks)
	}

	snapshots, err := db.SnapshotCount()
	if err != nil {
		t.Fatalf("SnapshotCount failed: %v", err)
	}
	if snapshots != 3 {
		t.Errorf("Expected 3 snapshot rows after same-day re-ingest, got %d", snapshots)
	}
}

func TestIngestionService_Ingest_UnmappedMarket(t *testing.T) {
	db := newTestStore(t)
	fetcher := &fakeFetcher{playlists: map[string]*domain.FetchedPlaylist{"pl_in": sampleChart()}}
	svc := newTestIngest(t, db, fetcher)

	_, err := svc.Ingest(context.Background(), "ZZ")
	var configErr *domain.ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("Expected ConfigError, got %v", err)
	}
	if fetcher.calls != 0 {
		t.Errorf("Expected no fetch for unmapped market, got %d calls", fetcher.calls)
	}
}

func TestIngestionService_Ingest_FetchFailureWritesNothing(t *testing.T) {
	db := newTestStore(t)
	fetcher := &fakeFetcher{err: &domain.SourceUnavailableError{Op: "playlist tracks", StatusCode: 502}}
	svc := newTestIngest(t, db, fetcher)

	_, err := svc.Ingest(context.Background(), "IN")
	var sourceErr *domain.SourceUnavailableError
	if !errors.As(err, &sourceErr) {
		t.Fatalf("Expected SourceUnavailableError, got %v", err)
	}

	snapshots, err := db.SnapshotCount()
	if err != nil {
		t.Fatalf("SnapshotCount failed: %v", err)
	}
	if snapshots != 0 {
		t.Errorf("Expected no snapshot rows after failed fetch, got %d", snapshots)
	}
	playlist, err := db.GetPlaylistByMarket("IN")
	if err != nil {
		t.Fatalf("GetPlaylistByMarket failed: %v", err)
	}
	if playlist != nil {
		t.Error("Expected no playlist row after failed fetch")
	}
}

func TestIngestionService_Ingest_RankGapsPreserved(t *testing.T) {
	db := newTestStore(t)
	chart := &domain.FetchedPlaylist{
		SpotifyID: "pl_in",
		Name:      "Top 50 - India",
		Tracks: []domain.FetchedTrack{
			{SpotifyID: "t1", Name: "Song One", Rank: 1, Artists: []domain.FetchedArtist{artist("a", "Artist A")}},
			// Rank 2 was an unresolvable entry at the source
			{SpotifyID: "t3", Name: "Song Three", Rank: 3, Artists: []domain.FetchedArtist{artist("b", "Artist B")}},
		},
	}
	fetcher := &fakeFetcher{playlists: map[string]*domain.FetchedPlaylist{"pl_in": chart}}
	svc := newTestIngest(t, db, fetcher)

	if _, err := svc.Ingest(context.Background(), "IN"); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	rows, err := db.ChartForDate("IN", "2026-08-30")
	if err != nil {
		t.Fatalf("ChartForDate failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].Rank != 1 || rows[1].Rank != 3 {
		t.Errorf("Expected ranks [1 3], got [%d %d]", rows[0].Rank, rows[1].Rank)
	}
}

func TestIngestionService_Ingest_LowercaseMarket(t *testing.T) {
	db := newTestStore(t)
	fetcher := &fakeFetcher{playlists: map[string]*domain.FetchedPlaylist{"pl_in": sampleChart()}}
	svc := newTestIngest(t, db, fetcher)

	result, err := svc.Ingest(context.Background(), " in ")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if result.Market != "IN" {
		t.Errorf("Expected market normalized to IN, got %q", result.Market)
	}
}
