package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cesargomez89/chartpulse/internal/domain"
)

// UpsertTrack inserts a track or refreshes its mutable metadata when the
// spotify_id already exists. Identity fields never change; popularity and
// urls track the latest fetch. The track's ID is set on return.
func (db *DB) UpsertTrack(track *domain.Track) (bool, error) {
	now := time.Now().UTC()

	var existingID int64
	err := db.Get(&existingID, `SELECT id FROM tracks WHERE spotify_id = ?`, track.SpotifyID)
	created := errors.Is(err, sql.ErrNoRows)
	if err != nil && !created {
		return false, fmt.Errorf("failed to look up track %s: %w", track.SpotifyID, err)
	}

	track.UpdatedAt = now
	if created {
		track.CreatedAt = now
	}

	query := `INSERT INTO tracks (
		spotify_id, name, album, album_release_date, duration_ms, explicit, popularity,
		preview_url, external_url, danceability, energy, valence, tempo, created_at, updated_at
	) VALUES (
		:spotify_id, :name, :album, :album_release_date, :duration_ms, :explicit, :popularity,
		:preview_url, :external_url, :danceability, :energy, :valence, :tempo, :created_at, :updated_at
	)
	ON CONFLICT(spotify_id) DO UPDATE SET
		name = excluded.name,
		album = CASE WHEN excluded.album != '' THEN excluded.album ELSE album END,
		album_release_date = CASE WHEN excluded.album_release_date != '' THEN excluded.album_release_date ELSE album_release_date END,
		duration_ms = CASE WHEN excluded.duration_ms > 0 THEN excluded.duration_ms ELSE duration_ms END,
		explicit = excluded.explicit,
		popularity = excluded.popularity,
		preview_url = CASE WHEN excluded.preview_url != '' THEN excluded.preview_url ELSE preview_url END,
		external_url = CASE WHEN excluded.external_url != '' THEN excluded.external_url ELSE external_url END,
		danceability = COALESCE(excluded.danceability, danceability),
		energy = COALESCE(excluded.energy, energy),
		valence = COALESCE(excluded.valence, valence),
		tempo = COALESCE(excluded.tempo, tempo),
		updated_at = excluded.updated_at
	RETURNING id`

	rows, err := db.NamedQuery(query, track)
	if err != nil {
		return false, fmt.Errorf("failed to upsert track %s: %w", track.SpotifyID, err)
	}
	defer rows.Close() //nolint:errcheck // deferred cleanup

	if rows.Next() {
		if err := rows.Scan(&track.ID); err != nil {
			return false, fmt.Errorf("failed to scan track id: %w", err)
		}
	} else if err := rows.Err(); err != nil {
		return false, fmt.Errorf("error iterating returning rows: %w", err)
	}

	return created, nil
}

// ReplaceTrackArtists sets a track's artist links to exactly the given set,
// in credit order. Stale links from earlier fetches are removed.
func (db *DB) ReplaceTrackArtists(trackID int64, artistIDs []int64) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(`DELETE FROM track_artists WHERE track_id = ?`, trackID); err != nil {
		return fmt.Errorf("failed to clear track artists: %w", err)
	}

	for position, artistID := range artistIDs {
		_, err := tx.Exec(
			`INSERT INTO track_artists (track_id, artist_id, position) VALUES (?, ?, ?)
			ON CONFLICT(track_id, artist_id) DO NOTHING`,
			trackID, artistID, position,
		)
		if err != nil {
			return fmt.Errorf("failed to link artist %d to track %d: %w", artistID, trackID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit track artists: %w", err)
	}
	return nil
}

func (db *DB) GetTrackBySpotifyID(spotifyID string) (*domain.Track, error) {
	var track domain.Track
	err := db.Get(&track, `SELECT * FROM tracks WHERE spotify_id = ?`, spotifyID)
	if err != nil {
		return nil, err
	}
	return &track, nil
}

func (db *DB) TrackCount() (int, error) {
	var count int
	err := db.Get(&count, `SELECT COUNT(*) FROM tracks`)
	return count, err
}

// TrackCredits is a track joined with its artist credits, used by the
// genre bucketing heuristic.
type TrackCredits struct {
	TrackID      int64
	TrackName    string
	Album        string
	ArtistNames  []string
	ArtistGenres []string
}

// ListTracksWithArtists returns every track with its ordered artist names and
// the union of its artists' genre tags.
func (db *DB) ListTracksWithArtists() ([]TrackCredits, error) {
	type trackRow struct {
		ID    int64  `db:"id"`
		Name  string `db:"name"`
		Album string `db:"album"`
	}

	var tracks []trackRow
	if err := db.Select(&tracks, `SELECT id, name, album FROM tracks ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	if len(tracks) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(tracks))
	credits := make([]TrackCredits, len(tracks))
	index := make(map[int64]int, len(tracks))
	for i, tr := range tracks {
		ids[i] = tr.ID
		credits[i] = TrackCredits{TrackID: tr.ID, TrackName: tr.Name, Album: tr.Album}
		index[tr.ID] = i
	}

	if err := db.attachCredits(ids, func(trackID int64, name string, genres domain.StringSlice) {
		i := index[trackID]
		credits[i].ArtistNames = append(credits[i].ArtistNames, name)
		credits[i].ArtistGenres = append(credits[i].ArtistGenres, genres...)
	}); err != nil {
		return nil, err
	}

	return credits, nil
}

// attachCredits streams (track, artist name, artist genres) rows for the
// given track IDs in credit order.
func (db *DB) attachCredits(trackIDs []int64, visit func(trackID int64, name string, genres domain.StringSlice)) error {
	query, args, err := sqlx.In(
		`SELECT ta.track_id, a.name, a.genres
		FROM track_artists ta
		JOIN artists a ON a.id = ta.artist_id
		WHERE ta.track_id IN (?)
		ORDER BY ta.track_id, ta.position`,
		trackIDs,
	)
	if err != nil {
		return fmt.Errorf("failed to build credits query: %w", err)
	}

	rows, err := db.Queryx(db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("failed to query credits: %w", err)
	}
	defer rows.Close() //nolint:errcheck // deferred cleanup

	for rows.Next() {
		var (
			trackID int64
			name    string
			genres  domain.StringSlice
		)
		if err := rows.Scan(&trackID, &name, &genres); err != nil {
			return fmt.Errorf("failed to scan credit row: %w", err)
		}
		visit(trackID, name, genres)
	}
	return rows.Err()
}
