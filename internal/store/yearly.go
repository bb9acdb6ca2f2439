package store

import (
	"fmt"
)

// YearlyTrackStat aggregates one track's chart run over a calendar year.
type YearlyTrackStat struct {
	TrackID     int64   `db:"track_id"`
	TrackName   string  `db:"name"`
	ReleaseDate string  `db:"album_release_date"`
	Appearances int     `db:"appearances"`
	AvgRank     float64 `db:"avg_rank"`
	BestRank    int     `db:"best_rank"`
	WorstRank   int     `db:"worst_rank"`
	Popularity  int     `db:"popularity"`
	FirstSeen   string  `db:"first_seen"`
	LastSeen    string  `db:"last_seen"`
}

// YearlyTrackStats ranks a market's tracks by chart performance over one
// year: most snapshot appearances first, better average rank breaking ties.
func (db *DB) YearlyTrackStats(market string, year, limit int) ([]YearlyTrackStat, error) {
	query := `SELECT s.track_id, t.name, t.album_release_date, t.popularity,
			COUNT(s.id) AS appearances,
			AVG(s.rank) AS avg_rank,
			MIN(s.rank) AS best_rank,
			MAX(s.rank) AS worst_rank,
			MIN(s.snapshot_date) AS first_seen,
			MAX(s.snapshot_date) AS last_seen
		FROM playlist_track_snapshots s
		JOIN tracks t ON t.id = s.track_id
		JOIN playlists p ON p.id = s.playlist_id
		WHERE p.market = ? AND s.snapshot_date >= ? AND s.snapshot_date <= ?
		GROUP BY s.track_id
		ORDER BY appearances DESC, avg_rank ASC
		LIMIT ?`

	start := fmt.Sprintf("%04d-01-01", year)
	end := fmt.Sprintf("%04d-12-31", year)

	var stats []YearlyTrackStat
	if err := db.Select(&stats, query, market, start, end, limit); err != nil {
		return nil, fmt.Errorf("failed to aggregate yearly stats: %w", err)
	}
	return stats, nil
}
