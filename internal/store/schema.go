package store

const Schema = `
CREATE TABLE IF NOT EXISTS artists (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	spotify_id TEXT UNIQUE NOT NULL,
	name TEXT NOT NULL,
	popularity INTEGER NOT NULL DEFAULT 0,
	followers INTEGER NOT NULL DEFAULT 0,
	genres TEXT NOT NULL DEFAULT '[]',  -- JSON array
	image_url TEXT NOT NULL DEFAULT '',
	external_url TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_artists_name ON artists(name);

CREATE TABLE IF NOT EXISTS tracks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	spotify_id TEXT UNIQUE NOT NULL,
	name TEXT NOT NULL,
	album TEXT NOT NULL DEFAULT '',
	album_release_date TEXT NOT NULL DEFAULT '',  -- precision as reported: YYYY, YYYY-MM or YYYY-MM-DD
	duration_ms INTEGER NOT NULL DEFAULT 0,
	explicit BOOLEAN NOT NULL DEFAULT 0,
	popularity INTEGER NOT NULL DEFAULT 0,
	preview_url TEXT NOT NULL DEFAULT '',
	external_url TEXT NOT NULL DEFAULT '',

	-- Audio features, filled in when the source supplies them
	danceability REAL,
	energy REAL,
	valence REAL,
	tempo REAL,

	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tracks_name ON tracks(name);

CREATE TABLE IF NOT EXISTS track_artists (
	track_id INTEGER NOT NULL REFERENCES tracks(id),
	artist_id INTEGER NOT NULL REFERENCES artists(id),
	position INTEGER NOT NULL DEFAULT 0,  -- display order of credits
	PRIMARY KEY (track_id, artist_id)
);

CREATE INDEX IF NOT EXISTS idx_track_artists_artist ON track_artists(artist_id);

CREATE TABLE IF NOT EXISTS playlists (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	spotify_id TEXT UNIQUE NOT NULL,
	name TEXT NOT NULL,
	market TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	external_url TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_playlists_market ON playlists(market);

CREATE TABLE IF NOT EXISTS playlist_track_snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	playlist_id INTEGER NOT NULL REFERENCES playlists(id),
	track_id INTEGER NOT NULL REFERENCES tracks(id),
	snapshot_date TEXT NOT NULL,  -- calendar date in the configured zone, YYYY-MM-DD
	rank INTEGER NOT NULL,
	fetched_at DATETIME NOT NULL,
	added_at DATETIME,

	UNIQUE (playlist_id, track_id, snapshot_date),
	UNIQUE (playlist_id, snapshot_date, rank)
);

CREATE INDEX IF NOT EXISTS idx_snapshots_playlist_date ON playlist_track_snapshots(playlist_id, snapshot_date);
CREATE INDEX IF NOT EXISTS idx_snapshots_date_rank ON playlist_track_snapshots(snapshot_date, rank);
`
