package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cesargomez89/chartpulse/internal/domain"
)

// ReplaceSnapshots atomically replaces a playlist's rank set for one calendar
// date. Re-running an ingest for the same day converges to the same rows; a
// reader sees either the previous complete set or the new one, never a mix.
func (db *DB) ReplaceSnapshots(playlistID int64, snapshotDate string, snapshots []domain.Snapshot) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(
		`DELETE FROM playlist_track_snapshots WHERE playlist_id = ? AND snapshot_date = ?`,
		playlistID, snapshotDate,
	); err != nil {
		return fmt.Errorf("failed to clear snapshot date: %w", err)
	}

	insert := `INSERT INTO playlist_track_snapshots (playlist_id, track_id, snapshot_date, rank, fetched_at, added_at)
		VALUES (:playlist_id, :track_id, :snapshot_date, :rank, :fetched_at, :added_at)`

	for i := range snapshots {
		snapshots[i].PlaylistID = playlistID
		snapshots[i].SnapshotDate = snapshotDate
		if _, err := tx.NamedExec(insert, &snapshots[i]); err != nil {
			return fmt.Errorf("failed to insert snapshot rank %d: %w", snapshots[i].Rank, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshots: %w", err)
	}
	return nil
}

// LatestSnapshotDate returns the most recent snapshot date recorded for a
// market's playlist, or "" when no snapshot exists yet.
func (db *DB) LatestSnapshotDate(market string) (string, error) {
	var date sql.NullString
	err := db.Get(&date,
		`SELECT MAX(s.snapshot_date)
		FROM playlist_track_snapshots s
		JOIN playlists p ON p.id = s.playlist_id
		WHERE p.market = ?`,
		market,
	)
	if errors.Is(err, sql.ErrNoRows) || !date.Valid {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to find latest snapshot date: %w", err)
	}
	return date.String, nil
}

// ChartRow is one snapshot row joined with its track, before artist credits
// are attached.
type ChartRow struct {
	TrackID          int64  `db:"track_id"`
	Rank             int    `db:"rank"`
	TrackName        string `db:"name"`
	Album            string `db:"album"`
	AlbumReleaseDate string `db:"album_release_date"`
	DurationMS       int    `db:"duration_ms"`
	Explicit         bool   `db:"explicit"`
	Popularity       int    `db:"popularity"`
	PreviewURL       string `db:"preview_url"`
	ExternalURL      string `db:"external_url"`
	ArtistNames      []string
	ArtistGenres     []string
}

// ChartForDate returns a market's chart rows for one snapshot date, ordered
// by ascending rank, with ordered artist credits attached.
func (db *DB) ChartForDate(market, snapshotDate string) ([]ChartRow, error) {
	query := `SELECT s.track_id, s.rank, t.name, t.album, t.album_release_date,
			t.duration_ms, t.explicit, t.popularity, t.preview_url, t.external_url
		FROM playlist_track_snapshots s
		JOIN tracks t ON t.id = s.track_id
		JOIN playlists p ON p.id = s.playlist_id
		WHERE p.market = ? AND s.snapshot_date = ?
		ORDER BY s.rank ASC`

	var rows []ChartRow
	if err := db.Select(&rows, query, market, snapshotDate); err != nil {
		return nil, fmt.Errorf("failed to query chart: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(rows))
	index := make(map[int64]int, len(rows))
	for i, row := range rows {
		ids[i] = row.TrackID
		index[row.TrackID] = i
	}

	if err := db.attachCredits(ids, func(trackID int64, name string, genres domain.StringSlice) {
		i := index[trackID]
		rows[i].ArtistNames = append(rows[i].ArtistNames, name)
		rows[i].ArtistGenres = append(rows[i].ArtistGenres, genres...)
	}); err != nil {
		return nil, err
	}

	return rows, nil
}

func (db *DB) SnapshotCount() (int, error) {
	var count int
	err := db.Get(&count, `SELECT COUNT(*) FROM playlist_track_snapshots`)
	return count, err
}

// LastFetchedAt returns the time of the most recent snapshot write, or nil
// when the log is empty. Selects the column directly so the driver keeps the
// DATETIME decltype; MAX() would strip it.
func (db *DB) LastFetchedAt() (*time.Time, error) {
	var fetched time.Time
	err := db.Get(&fetched, `SELECT fetched_at FROM playlist_track_snapshots ORDER BY fetched_at DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find last fetch time: %w", err)
	}
	return &fetched, nil
}

// TracksFirstSeenSince counts tracks whose first chart appearance is on or
// after the given date. Feeds the overview growth figure.
func (db *DB) TracksFirstSeenSince(snapshotDate string) (int, error) {
	var count int
	err := db.Get(&count,
		`SELECT COUNT(*) FROM (
			SELECT track_id, MIN(snapshot_date) AS first_seen
			FROM playlist_track_snapshots
			GROUP BY track_id
		) WHERE first_seen >= ?`,
		snapshotDate,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to count new tracks: %w", err)
	}
	return count, nil
}
