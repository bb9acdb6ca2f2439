// Package app holds the ingestion and read services built on the store.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/chartpulse/internal/constants"
	"github.com/cesargomez89/chartpulse/internal/domain"
	"github.com/cesargomez89/chartpulse/internal/logger"
	"github.com/cesargomez89/chartpulse/internal/store"
)

// PlaylistFetcher is the external chart source capability the ingestion
// service depends on.
type PlaylistFetcher interface {
	GetPlaylistTracks(ctx context.Context, playlistID, market string) (*domain.FetchedPlaylist, error)
}

// IngestionService runs one refresh cycle per market: fetch the chart,
// upsert entities, then replace the day's snapshot rank set.
type IngestionService struct {
	Store   *store.DB
	Fetcher PlaylistFetcher
	Logger  *logger.Logger

	playlists map[string]string // market -> playlist ID
	loc       *time.Location
	now       func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewIngestionService wires an ingestion service. playlists maps market
// codes to playlist IDs; loc decides what "today" means for snapshot dates.
func NewIngestionService(db *store.DB, fetcher PlaylistFetcher, playlists map[string]string, loc *time.Location, log *logger.Logger) *IngestionService {
	return &IngestionService{
		Store:     db,
		Fetcher:   fetcher,
		Logger:    log.WithComponent("ingest"),
		playlists: playlists,
		loc:       loc,
		now:       time.Now,
		locks:     make(map[string]*sync.Mutex),
	}
}

// SetClock overrides the time source. Snapshot dates become deterministic in
// tests.
func (s *IngestionService) SetClock(now func() time.Time) {
	s.now = now
}

// Ingest runs one refresh cycle for a market. Cycles for the same market
// serialize on a per-market lock; different markets run in parallel. Entity
// upserts commit before any snapshot row is written, and the day's rank set
// is replaced in a single transaction, so a reader never observes a partial
// chart.
func (s *IngestionService) Ingest(ctx context.Context, market string) (*domain.IngestResult, error) {
	market = strings.ToUpper(strings.TrimSpace(market))

	playlistID, ok := s.playlists[market]
	if !ok || playlistID == "" {
		return nil, &domain.ConfigError{Market: market, Reason: "no playlist mapping configured"}
	}

	lock := s.marketLock(market)
	lock.Lock()
	defer lock.Unlock()

	start := s.now()
	runID := uuid.New().String()
	log := s.Logger.WithRun(runID, market)
	log.Info("Starting ingest cycle", "playlist_id", playlistID)

	fetched, err := s.Fetcher.GetPlaylistTracks(ctx, playlistID, market)
	if err != nil {
		log.Error("Chart fetch failed", "error", err)
		return nil, err
	}

	result := &domain.IngestResult{
		RunID:        runID,
		Market:       market,
		SnapshotDate: start.In(s.loc).Format(constants.SnapshotDateLayout),
	}

	playlist := &domain.Playlist{
		SpotifyID:   playlistID,
		Name:        fetched.Name,
		Market:      market,
		Description: fetched.Description,
		ImageURL:    fetched.ImageURL,
		ExternalURL: fetched.ExternalURL,
	}
	if playlist.Name == "" {
		playlist.Name = "Top 50 - " + market
	}
	if err := s.Store.UpsertPlaylist(playlist); err != nil {
		return nil, fmt.Errorf("failed to upsert playlist: %w", err)
	}

	artistIDs := make(map[string]int64)
	fetchedAt := s.now().UTC()
	snapshots := make([]domain.Snapshot, 0, len(fetched.Tracks))

	for _, ft := range fetched.Tracks {
		trackID, err := s.upsertTrack(ft, artistIDs, result)
		if err != nil {
			log.Error("Failed to process track", "track_id", ft.SpotifyID, "track_name", ft.Name, "error", err)
			continue
		}

		snapshots = append(snapshots, domain.Snapshot{
			TrackID:   trackID,
			Rank:      ft.Rank,
			FetchedAt: fetchedAt,
			AddedAt:   ft.AddedAt,
		})
	}

	if err := s.Store.ReplaceSnapshots(playlist.ID, result.SnapshotDate, snapshots); err != nil {
		return nil, fmt.Errorf("failed to write snapshots: %w", err)
	}
	result.SnapshotRows = len(snapshots)

	result.Elapsed = s.now().Sub(start)
	result.DurationSeconds = result.Elapsed.Seconds()
	log.Info("Ingest cycle completed",
		"snapshot_date", result.SnapshotDate,
		"tracks", result.TracksUpserted,
		"artists", result.ArtistsUpserted,
		"snapshot_rows", result.SnapshotRows,
		"duration_seconds", result.DurationSeconds,
	)

	return result, nil
}

// upsertTrack writes one fetched track, its artists and the reconciled
// artist links. artistIDs caches upserts already done this cycle.
func (s *IngestionService) upsertTrack(ft domain.FetchedTrack, artistIDs map[string]int64, result *domain.IngestResult) (int64, error) {
	linked := make([]int64, 0, len(ft.Artists))
	for _, fa := range ft.Artists {
		id, ok := artistIDs[fa.SpotifyID]
		if !ok {
			artist := &domain.Artist{
				SpotifyID:   fa.SpotifyID,
				Name:        fa.Name,
				Popularity:  fa.Popularity,
				Followers:   fa.Followers,
				Genres:      domain.StringSlice(fa.Genres),
				ImageURL:    fa.ImageURL,
				ExternalURL: fa.ExternalURL,
			}
			if _, err := s.Store.UpsertArtist(artist); err != nil {
				return 0, err
			}
			id = artist.ID
			artistIDs[fa.SpotifyID] = id
			result.ArtistsUpserted++
		}
		linked = append(linked, id)
	}

	track := &domain.Track{
		SpotifyID:        ft.SpotifyID,
		Name:             ft.Name,
		Album:            ft.Album,
		AlbumReleaseDate: ft.AlbumReleaseDate,
		DurationMS:       ft.DurationMS,
		Explicit:         ft.Explicit,
		Popularity:       ft.Popularity,
		PreviewURL:       ft.PreviewURL,
		ExternalURL:      ft.ExternalURL,
	}
	if _, err := s.Store.UpsertTrack(track); err != nil {
		return 0, err
	}
	result.TracksUpserted++

	if err := s.Store.ReplaceTrackArtists(track.ID, linked); err != nil {
		return 0, err
	}

	return track.ID, nil
}

// marketLock returns the mutex serializing ingests for one market.
func (s *IngestionService) marketLock(market string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[market]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[market] = lock
	}
	return lock
}
