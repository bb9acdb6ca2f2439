package spotify

// Wire types for the subset of the Spotify Web API this service consumes.

type externalURLs struct {
	Spotify string `json:"spotify"`
}

type imageObject struct {
	URL string `json:"url"`
}

type followersObject struct {
	Total int `json:"total"`
}

type artistObject struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Popularity   int             `json:"popularity"`
	Genres       []string        `json:"genres"`
	Followers    followersObject `json:"followers"`
	Images       []imageObject   `json:"images"`
	ExternalURLs externalURLs    `json:"external_urls"`
}

type albumObject struct {
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

type trackObject struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Album        albumObject    `json:"album"`
	Artists      []artistObject `json:"artists"`
	DurationMS   int            `json:"duration_ms"`
	Explicit     bool           `json:"explicit"`
	Popularity   int            `json:"popularity"`
	PreviewURL   string         `json:"preview_url"`
	ExternalURLs externalURLs   `json:"external_urls"`
}

type playlistItem struct {
	AddedAt string       `json:"added_at"`
	Track   *trackObject `json:"track"`
}

type playlistTracksPage struct {
	Items []playlistItem `json:"items"`
	Total int            `json:"total"`
}

type playlistObject struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Images       []imageObject `json:"images"`
	ExternalURLs externalURLs  `json:"external_urls"`
}

type artistsPage struct {
	Artists []artistObject `json:"artists"`
}

type searchTracksPage struct {
	Items []trackObject `json:"items"`
	Total int           `json:"total"`
}

type searchResponse struct {
	Tracks searchTracksPage `json:"tracks"`
}
