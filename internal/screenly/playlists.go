package screenly

import (
	"context"
	"net/http"
	"net/url"

	"marquee/pkg/models"
)

// CreatePlaylist creates a playlist with the given eligibility predicate and
// returns the created resource.
func (c *Client) CreatePlaylist(ctx context.Context, token Token, title, predicate string) (*models.Playlist, error) {
	resp, err := c.do(ctx, token, requestOptions{
		method: http.MethodPost,
		path:   "/playlists",
		body: map[string]any{
			"title":     title,
			"predicate": predicate,
		},
		prefer:    true,
		operation: "create playlist",
	})
	if err != nil {
		return nil, err
	}

	var playlists []models.Playlist
	if err := decodeJSON(resp, &playlists); err != nil {
		return nil, err
	}
	if len(playlists) == 0 {
		return nil, &noDataError{resource: "playlists"}
	}

	return &playlists[0], nil
}

// ListPlaylists returns all playlists visible to the token.
func (c *Client) ListPlaylists(ctx context.Context, token Token) ([]models.Playlist, error) {
	resp, err := c.do(ctx, token, requestOptions{
		path:      "/playlists/",
		operation: "fetch playlists",
	})
	if err != nil {
		return nil, err
	}

	var playlists []models.Playlist
	if err := decodeJSON(resp, &playlists); err != nil {
		return nil, err
	}
	return playlists, nil
}

// CreatePlaylistItem links an asset into a playlist. A zero duration is
// omitted from the payload so the remote default applies.
func (c *Client) CreatePlaylistItem(ctx context.Context, token Token, assetID, playlistID string, duration int) (*models.PlaylistItem, error) {
	resp, err := c.do(ctx, token, requestOptions{
		method: http.MethodPost,
		path:   "/playlist-items/",
		body: models.PlaylistItem{
			AssetID:    assetID,
			PlaylistID: playlistID,
			Duration:   duration,
		},
		prefer:    true,
		operation: "add asset to playlist",
	})
	if err != nil {
		return nil, err
	}

	var items []models.PlaylistItem
	if err := decodeJSON(resp, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, &noDataError{resource: "playlist items"}
	}

	return &items[0], nil
}

// DeletePlaylist removes one playlist, reporting success as a boolean for
// best-effort bulk deletion.
func (c *Client) DeletePlaylist(ctx context.Context, token Token, playlistID string) (bool, error) {
	resp, err := c.do(ctx, token, requestOptions{
		method:             http.MethodDelete,
		path:               "/playlists/?id=eq." + url.QueryEscape(playlistID),
		skipThrowForStatus: true,
		operation:          "delete playlist",
	})
	if err != nil {
		return false, err
	}
	return resp.status == http.StatusOK, nil
}
