package domain

import (
	"time"
)

// Artist is a normalized artist row, keyed by its Spotify ID.
// Mutable fields (popularity, followers, genres) are refreshed on every ingest.
type Artist struct {
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
	SpotifyID   string      `json:"spotify_id" db:"spotify_id"`
	Name        string      `json:"name" db:"name"`
	Genres      StringSlice `json:"genres" db:"genres"`
	ImageURL    string      `json:"image_url" db:"image_url"`
	ExternalURL string      `json:"external_url" db:"external_url"`
	ID          int64       `json:"id" db:"id"`
	Popularity  int         `json:"popularity" db:"popularity"`
	Followers   int         `json:"followers" db:"followers"`
}

// Track is a normalized track row, keyed by its Spotify ID.
// AlbumReleaseDate keeps the source's precision verbatim: "2023", "2023-12"
// or "2023-12-25".
type Track struct {
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
	SpotifyID        string    `json:"spotify_id" db:"spotify_id"`
	Name             string    `json:"name" db:"name"`
	Album            string    `json:"album" db:"album"`
	AlbumReleaseDate string    `json:"album_release_date" db:"album_release_date"`
	PreviewURL       string    `json:"preview_url" db:"preview_url"`
	ExternalURL      string    `json:"external_url" db:"external_url"`
	Danceability     *float64  `json:"danceability,omitempty" db:"danceability"`
	Energy           *float64  `json:"energy,omitempty" db:"energy"`
	Valence          *float64  `json:"valence,omitempty" db:"valence"`
	Tempo            *float64  `json:"tempo,omitempty" db:"tempo"`
	ID               int64     `json:"id" db:"id"`
	DurationMS       int       `json:"duration_ms" db:"duration_ms"`
	Popularity       int       `json:"popularity" db:"popularity"`
	Explicit         bool      `json:"explicit" db:"explicit"`
}

// Playlist is one tracked chart: one row per (logical chart, market) pair.
type Playlist struct {
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	SpotifyID   string    `json:"spotify_id" db:"spotify_id"`
	Name        string    `json:"name" db:"name"`
	Market      string    `json:"market" db:"market"`
	Description string    `json:"description" db:"description"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	ExternalURL string    `json:"external_url" db:"external_url"`
	ID          int64     `json:"id" db:"id"`
}

// Snapshot records one track's rank on one playlist on one calendar date.
// Rows are immutable once written; a re-ingest replaces the whole day's set.
type Snapshot struct {
	FetchedAt    time.Time  `json:"fetched_at" db:"fetched_at"`
	AddedAt      *time.Time `json:"added_at,omitempty" db:"added_at"`
	SnapshotDate string     `json:"snapshot_date" db:"snapshot_date"`
	ID           int64      `json:"id" db:"id"`
	PlaylistID   int64      `json:"playlist_id" db:"playlist_id"`
	TrackID      int64      `json:"track_id" db:"track_id"`
	Rank         int        `json:"rank" db:"rank"`
}

// ChartTrack is one entry of a rendered chart, ordered by rank.
type ChartTrack struct {
	TrackName   string   `json:"track_name"`
	Album       string   `json:"album"`
	ReleaseDate string   `json:"release_date"`
	Duration    string   `json:"duration"`
	PreviewURL  string   `json:"preview_url,omitempty"`
	SpotifyURL  string   `json:"spotify_url,omitempty"`
	Artists     []string `json:"artists"`
	Rank        int      `json:"rank"`
	Popularity  int      `json:"popularity"`
	Explicit    bool     `json:"explicit"`
}

// IngestResult summarizes one completed ingest cycle.
type IngestResult struct {
	RunID           string        `json:"run_id"`
	Market          string        `json:"market"`
	SnapshotDate    string        `json:"snapshot_date"`
	TracksUpserted  int           `json:"tracks_upserted"`
	ArtistsUpserted int           `json:"artists_upserted"`
	SnapshotRows    int           `json:"snapshot_rows"`
	Elapsed         time.Duration `json:"-"`
	DurationSeconds float64       `json:"duration_seconds"`
}

// Overview holds store-wide cardinalities for the dashboard.
type Overview struct {
	LastUpdated   *time.Time `json:"last_updated,omitempty"`
	TracksGrowth  string     `json:"tracks_growth"`
	TrackCount    int        `json:"total_tracks"`
	ArtistCount   int        `json:"total_artists"`
	SnapshotCount int        `json:"total_snapshots"`
	NewTracks30d  int        `json:"new_tracks_30d"`
}

// ArtistTrackCount is one leaderboard entry.
type ArtistTrackCount struct {
	Name       string `json:"name" db:"name"`
	TrackCount int    `json:"track_count" db:"track_count"`
}

// GenreShare is one bucket of the heuristic genre distribution.
type GenreShare struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// GenreComparison holds per-market bucket counts over the latest snapshots.
type GenreComparison struct {
	Counts  map[string]map[string]int `json:"counts"` // market -> bucket -> count
	Markets []string                  `json:"markets"`
	Buckets []string                  `json:"buckets"`
}

// FetchedArtist is an artist record as reported by the external chart source.
type FetchedArtist struct {
	SpotifyID   string
	Name        string
	Genres      []string
	ImageURL    string
	ExternalURL string
	Popularity  int
	Followers   int
}

// FetchedTrack is one chart entry as reported by the external source.
// Rank is 1-indexed and trusted verbatim.
type FetchedTrack struct {
	AddedAt          *time.Time
	SpotifyID        string
	Name             string
	Album            string
	AlbumReleaseDate string
	PreviewURL       string
	ExternalURL      string
	Artists          []FetchedArtist
	Rank             int
	DurationMS       int
	Popularity       int
	Explicit         bool
}

// FetchedPlaylist is one fetched chart snapshot plus playlist metadata.
type FetchedPlaylist struct {
	SpotifyID   string
	Name        string
	Description string
	ImageURL    string
	ExternalURL string
	Tracks      []FetchedTrack
}

// TrackSearchResult is one page of track search hits from the external
// source. Tracks carry no rank; Total is the source's full hit count.
type TrackSearchResult struct {
	Tracks []FetchedTrack
	Total  int
}
