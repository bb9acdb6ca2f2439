// Package spotify is the client for the external chart source. Fetch
// failures are reported as retryable SourceUnavailable errors; callers never
// see partial pages.
package spotify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/cesargomez89/chartpulse/internal/constants"
	"github.com/cesargomez89/chartpulse/internal/domain"
	"github.com/cesargomez89/chartpulse/internal/logger"
)

type Client struct {
	rest   *resty.Client
	tokens *tokenManager
	log    *logger.Logger
}

// NewClient builds a Spotify Web API client using the client-credentials
// flow. Rate-limited responses are retried with the server's Retry-After.
func NewClient(clientID, clientSecret string, log *logger.Logger) *Client {
	return newClient(clientID, clientSecret, constants.SpotifyAPIBaseURL, constants.SpotifyTokenURL, log)
}

func newClient(clientID, clientSecret, apiURL, tokenURL string, log *logger.Logger) *Client {
	rest := resty.New().
		SetBaseURL(apiURL).
		SetTimeout(constants.DefaultHTTPTimeout).
		SetRetryCount(constants.DefaultRetryCount).
		SetRetryWaitTime(constants.DefaultRetryBase).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetRetryAfter(func(c *resty.Client, r *resty.Response) (time.Duration, error) {
			if r == nil {
				return 0, nil
			}
			if seconds, err := strconv.Atoi(r.Header().Get("Retry-After")); err == nil && seconds > 0 {
				return time.Duration(seconds) * time.Second, nil
			}
			return 0, nil
		})

	return &Client{
		rest:   rest,
		tokens: newTokenManager(clientID, clientSecret, tokenURL),
		log:    log.WithComponent("spotify"),
	}
}

// GetPlaylistTracks fetches one playlist's ordered track list for a market,
// plus the playlist's own metadata. Ranks are 1-indexed in fetch order;
// entries without a track object (removed/local tracks) are skipped without
// renumbering gaps introduced upstream.
func (c *Client) GetPlaylistTracks(ctx context.Context, playlistID, market string) (*domain.FetchedPlaylist, error) {
	meta, err := c.getPlaylistMeta(ctx, playlistID, market)
	if err != nil {
		return nil, err
	}

	var page playlistTracksPage
	if err := c.get(ctx, fmt.Sprintf("/playlists/%s/tracks", playlistID), map[string]string{
		"market": market,
		"limit":  strconv.Itoa(constants.ChartSize),
	}, &page); err != nil {
		return nil, err
	}

	fetched := &domain.FetchedPlaylist{
		SpotifyID:   playlistID,
		Name:        meta.Name,
		Description: meta.Description,
		ExternalURL: meta.ExternalURLs.Spotify,
	}
	if len(meta.Images) > 0 {
		fetched.ImageURL = meta.Images[0].URL
	}

	for i, item := range page.Items {
		if item.Track == nil || item.Track.ID == "" {
			continue
		}
		fetched.Tracks = append(fetched.Tracks, convertTrack(item, i+1))
	}

	if err := c.enrichArtists(ctx, fetched); err != nil {
		// Artist details are an enrichment; the chart itself is already
		// complete, so a failed batch only costs popularity/genre freshness.
		c.log.Warn("Artist enrichment failed", "playlist_id", playlistID, "error", err)
	}

	c.log.Info("Fetched playlist tracks", "playlist_id", playlistID, "market", market, "tracks", len(fetched.Tracks))
	return fetched, nil
}

func (c *Client) getPlaylistMeta(ctx context.Context, playlistID, market string) (*playlistObject, error) {
	var meta playlistObject
	err := c.get(ctx, "/playlists/"+playlistID, map[string]string{
		"market": market,
		"fields": "id,name,description,images,external_urls",
	}, &meta)
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// enrichArtists fills in popularity, followers and genre tags, which the
// playlist payload's simplified artist objects omit.
func (c *Client) enrichArtists(ctx context.Context, fetched *domain.FetchedPlaylist) error {
	ids := make([]string, 0)
	seen := make(map[string]bool)
	for _, tr := range fetched.Tracks {
		for _, a := range tr.Artists {
			if !seen[a.SpotifyID] {
				seen[a.SpotifyID] = true
				ids = append(ids, a.SpotifyID)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	details := make(map[string]artistObject, len(ids))
	for start := 0; start < len(ids); start += constants.ArtistBatchSize {
		end := start + constants.ArtistBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		var page artistsPage
		if err := c.get(ctx, "/artists", map[string]string{
			"ids": strings.Join(ids[start:end], ","),
		}, &page); err != nil {
			return err
		}
		for _, a := range page.Artists {
			details[a.ID] = a
		}
	}

	for ti := range fetched.Tracks {
		for ai := range fetched.Tracks[ti].Artists {
			artist := &fetched.Tracks[ti].Artists[ai]
			d, ok := details[artist.SpotifyID]
			if !ok {
				continue
			}
			artist.Popularity = d.Popularity
			artist.Followers = d.Followers.Total
			artist.Genres = d.Genres
			if len(d.Images) > 0 {
				artist.ImageURL = d.Images[0].URL
			}
			if d.ExternalURLs.Spotify != "" {
				artist.ExternalURL = d.ExternalURLs.Spotify
			}
		}
	}
	return nil
}

// SearchTracks runs a track search, optionally filtered to a release year or
// year range ("2020" or "2018-2022"). Results carry no rank; the source's
// relevance order is kept.
func (c *Client) SearchTracks(ctx context.Context, query, yearFilter, market string, limit, offset int) (*domain.TrackSearchResult, error) {
	q := query
	if yearFilter != "" {
		q += " year:" + yearFilter
	}

	var resp searchResponse
	if err := c.get(ctx, "/search", map[string]string{
		"q":      q,
		"type":   "track",
		"market": market,
		"limit":  strconv.Itoa(limit),
		"offset": strconv.Itoa(offset),
	}, &resp); err != nil {
		return nil, err
	}

	result := &domain.TrackSearchResult{Total: resp.Tracks.Total}
	for _, tr := range resp.Tracks.Items {
		if tr.ID == "" {
			continue
		}
		track := tr
		result.Tracks = append(result.Tracks, convertTrack(playlistItem{Track: &track}, 0))
	}

	c.log.Info("Searched tracks", "query", q, "market", market, "hits", len(result.Tracks), "total", result.Total)
	return result, nil
}

// get performs an authenticated GET, retrying once with a fresh token on 401.
func (c *Client) get(ctx context.Context, path string, params map[string]string, out interface{}) error {
	for attempt := 0; attempt < 2; attempt++ {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return err
		}

		resp, err := c.rest.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetQueryParams(params).
			SetResult(out).
			Get(path)
		if err != nil {
			return &domain.SourceUnavailableError{Op: path, Err: err}
		}

		switch {
		case resp.IsSuccess():
			return nil
		case resp.StatusCode() == http.StatusUnauthorized && attempt == 0:
			c.tokens.invalidate()
			continue
		case resp.StatusCode() == http.StatusNotFound:
			return &domain.ConfigError{Reason: fmt.Sprintf("resource not found: %s", path)}
		default:
			return &domain.SourceUnavailableError{
				Op:         path,
				StatusCode: resp.StatusCode(),
				Err:        fmt.Errorf("spotify returned status %d", resp.StatusCode()),
			}
		}
	}
	return &domain.SourceUnavailableError{
		Op:         path,
		StatusCode: http.StatusUnauthorized,
		Err:        fmt.Errorf("authorization kept failing after token refresh"),
	}
}

func convertTrack(item playlistItem, rank int) domain.FetchedTrack {
	tr := item.Track
	fetched := domain.FetchedTrack{
		SpotifyID:        tr.ID,
		Name:             tr.Name,
		Album:            tr.Album.Name,
		AlbumReleaseDate: tr.Album.ReleaseDate,
		PreviewURL:       tr.PreviewURL,
		ExternalURL:      tr.ExternalURLs.Spotify,
		Rank:             rank,
		DurationMS:       tr.DurationMS,
		Popularity:       tr.Popularity,
		Explicit:         tr.Explicit,
	}

	if item.AddedAt != "" {
		if added, err := time.Parse(time.RFC3339, item.AddedAt); err == nil {
			fetched.AddedAt = &added
		}
	}

	for _, a := range tr.Artists {
		fetched.Artists = append(fetched.Artists, domain.FetchedArtist{
			SpotifyID:   a.ID,
			Name:        a.Name,
			Popularity:  a.Popularity,
			Followers:   a.Followers.Total,
			Genres:      a.Genres,
			ExternalURL: a.ExternalURLs.Spotify,
		})
	}

	return fetched
}
