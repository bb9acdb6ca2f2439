package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cesargomez89/chartpulse/internal/domain"
)

// UpsertArtist inserts an artist or refreshes its mutable fields (name,
// popularity, followers, genres, urls) when the spotify_id already exists.
// The artist's ID is set on return. Reports whether a new row was created.
func (db *DB) UpsertArtist(artist *domain.Artist) (bool, error) {
	now := time.Now().UTC()

	var existingID int64
	err := db.Get(&existingID, `SELECT id FROM artists WHERE spotify_id = ?`, artist.SpotifyID)
	created := errors.Is(err, sql.ErrNoRows)
	if err != nil && !created {
		return false, fmt.Errorf("failed to look up artist %s: %w", artist.SpotifyID, err)
	}

	artist.UpdatedAt = now
	if created {
		artist.CreatedAt = now
	}

	query := `INSERT INTO artists (spotify_id, name, popularity, followers, genres, image_url, external_url, created_at, updated_at)
		VALUES (:spotify_id, :name, :popularity, :followers, :genres, :image_url, :external_url, :created_at, :updated_at)
		ON CONFLICT(spotify_id) DO UPDATE SET
			name = excluded.name,
			popularity = excluded.popularity,
			followers = excluded.followers,
			genres = excluded.genres,
			image_url = CASE WHEN excluded.image_url != '' THEN excluded.image_url ELSE image_url END,
			external_url = CASE WHEN excluded.external_url != '' THEN excluded.external_url ELSE external_url END,
			updated_at = excluded.updated_at
		RETURNING id`

	rows, err := db.NamedQuery(query, artist)
	if err != nil {
		return false, fmt.Errorf("failed to upsert artist %s: %w", artist.SpotifyID, err)
	}
	defer rows.Close() //nolint:errcheck // deferred cleanup

	if rows.Next() {
		if err := rows.Scan(&artist.ID); err != nil {
			return false, fmt.Errorf("failed to scan artist id: %w", err)
		}
	} else if err := rows.Err(); err != nil {
		return false, fmt.Errorf("error iterating returning rows: %w", err)
	}

	return created, nil
}

func (db *DB) GetArtistBySpotifyID(spotifyID string) (*domain.Artist, error) {
	var artist domain.Artist
	err := db.Get(&artist, `SELECT * FROM artists WHERE spotify_id = ?`, spotifyID)
	if err != nil {
		return nil, err
	}
	return &artist, nil
}

func (db *DB) ArtistCount() (int, error) {
	var count int
	err := db.Get(&count, `SELECT COUNT(*) FROM artists`)
	return count, err
}

// TopArtistsByTrackCount ranks artists by distinct linked tracks across the
// whole store, ties broken by name for a stable order. Grouping is by artist
// row, so two artists sharing a display name stay separate entries.
func (db *DB) TopArtistsByTrackCount(limit int) ([]domain.ArtistTrackCount, error) {
	query := `SELECT a.name AS name, COUNT(DISTINCT ta.track_id) AS track_count
		FROM artists a
		JOIN track_artists ta ON ta.artist_id = a.id
		GROUP BY a.id
		ORDER BY track_count DESC, a.name ASC
		LIMIT ?`

	var counts []domain.ArtistTrackCount
	if err := db.Select(&counts, query, limit); err != nil {
		return nil, fmt.Errorf("failed to rank artists: %w", err)
	}
	return counts, nil
}
