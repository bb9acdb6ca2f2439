// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort           = "8080"
	DefaultDBPath         = "chartpulse.db"
	DefaultTimezone       = "Asia/Kolkata"
	DefaultMarkets        = "IN"
	DefaultSnapshotHour   = 0
	DefaultSnapshotMinute = 30
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultRetryCount     = 3
	DefaultRetryBase      = 1 * time.Second
)

// Spotify API
const (
	SpotifyAPIBaseURL  = "https://api.spotify.com/v1"
	SpotifyTokenURL    = "https://accounts.spotify.com/api/token"
	ChartSize          = 50
	ArtistBatchSize    = 50
	TokenRefreshLeeway = 30 * time.Second
)

// Default Top-50 playlist IDs per market. Any market without an explicit
// PLAYLIST_<MARKET> override falls back to the global chart.
const (
	IndiaTop50PlaylistID  = "37i9dQZEVXbLZ52XmnySJg"
	GlobalTop50PlaylistID = "37i9dQZEVXbMDoHDwVN2tF"
)

// Snapshot dates are stored as calendar dates, not timestamps.
const SnapshotDateLayout = "2006-01-02"

// Display defaults for partially missing source data
const (
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
)
