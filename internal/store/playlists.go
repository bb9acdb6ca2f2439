package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cesargomez89/chartpulse/internal/domain"
)

// UpsertPlaylist inserts the playlist row for a market, or refreshes its
// metadata with whatever non-empty fields the latest fetch supplied.
func (db *DB) UpsertPlaylist(playlist *domain.Playlist) error {
	now := time.Now().UTC()

	var existingID int64
	err := db.Get(&existingID, `SELECT id FROM playlists WHERE spotify_id = ?`, playlist.SpotifyID)
	created := errors.Is(err, sql.ErrNoRows)
	if err != nil && !created {
		return fmt.Errorf("failed to look up playlist %s: %w", playlist.SpotifyID, err)
	}

	playlist.UpdatedAt = now
	if created {
		playlist.CreatedAt = now
	}

	query := `INSERT INTO playlists (spotify_id, name, market, description, image_url, external_url, created_at, updated_at)
		VALUES (:spotify_id, :name, :market, :description, :image_url, :external_url, :created_at, :updated_at)
		ON CONFLICT(spotify_id) DO UPDATE SET
			name = CASE WHEN excluded.name != '' THEN excluded.name ELSE name END,
			description = CASE WHEN excluded.description != '' THEN excluded.description ELSE description END,
			image_url = CASE WHEN excluded.image_url != '' THEN excluded.image_url ELSE image_url END,
			external_url = CASE WHEN excluded.external_url != '' THEN excluded.external_url ELSE external_url END,
			updated_at = excluded.updated_at
		RETURNING id`

	rows, err := db.NamedQuery(query, playlist)
	if err != nil {
		return fmt.Errorf("failed to upsert playlist %s: %w", playlist.SpotifyID, err)
	}
	defer rows.Close() //nolint:errcheck // deferred cleanup

	if rows.Next() {
		if err := rows.Scan(&playlist.ID); err != nil {
			return fmt.Errorf("failed to scan playlist id: %w", err)
		}
	} else if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating returning rows: %w", err)
	}

	return nil
}

// GetPlaylistByMarket returns the playlist tracked for a market, or nil when
// the market has never been ingested.
func (db *DB) GetPlaylistByMarket(market string) (*domain.Playlist, error) {
	var playlist domain.Playlist
	err := db.Get(&playlist, `SELECT * FROM playlists WHERE market = ? LIMIT 1`, market)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}
