package screenly

import (
	"context"
	"net/http"
	"net/url"

	"marquee/pkg/models"

	"github.com/sirupsen/logrus"
)

// GetLabel fetches the label with the given name. An empty result is an
// error; use FindOrCreateLabel for the idempotent resolve.
func (c *Client) GetLabel(ctx context.Context, token Token, name string) (*models.Label, error) {
	resp, err := c.do(ctx, token, requestOptions{
		path:      "/labels/?name=eq." + url.QueryEscape(name),
		prefer:    true,
		operation: "fetch labels",
	})
	if err != nil {
		return nil, err
	}

	var labels []models.Label
	if err := decodeJSON(resp, &labels); err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, &noDataError{resource: "labels"}
	}

	return &labels[0], nil
}

// CreateLabel creates a new label.
func (c *Client) CreateLabel(ctx context.Context, token Token, name string) (*models.Label, error) {
	resp, err := c.do(ctx, token, requestOptions{
		method:    http.MethodPost,
		path:      "/labels/",
		body:      map[string]any{"name": name},
		prefer:    true,
		operation: "create label",
	})
	if err != nil {
		return nil, err
	}

	var labels []models.Label
	if err := decodeJSON(resp, &labels); err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, &noDataError{resource: "labels"}
	}

	return &labels[0], nil
}

// FindOrCreateLabel resolves a label by name, creating it when absent.
// Reusing an existing label keeps repeated workflow runs idempotent.
func (c *Client) FindOrCreateLabel(ctx context.Context, token Token, name string) (*models.Label, error) {
	resp, err := c.do(ctx, token, requestOptions{
		path:      "/labels?name=eq." + url.QueryEscape(name),
		prefer:    true,
		operation: "fetch labels",
	})
	if err != nil {
		return nil, err
	}

	var labels []models.Label
	if err := decodeJSON(resp, &labels); err != nil {
		return nil, err
	}
	if len(labels) > 0 {
		return &labels[0], nil
	}

	return c.CreateLabel(ctx, token, name)
}

// GetPlaylistsByLabel returns the playlist mappings attached to a label.
func (c *Client) GetPlaylistsByLabel(ctx context.Context, token Token, labelID string) ([]models.PlaylistLabel, error) {
	resp, err := c.do(ctx, token, requestOptions{
		path:      "/labels/playlists?label_id=eq." + url.QueryEscape(labelID),
		prefer:    true,
		operation: "fetch playlist to labels",
	})
	if err != nil {
		return nil, err
	}

	var mappings []models.PlaylistLabel
	if err := decodeJSON(resp, &mappings); err != nil {
		return nil, err
	}
	return mappings, nil
}

// AssignPlaylistToScreen associates a playlist with a screen via the label
// join resource. A 409 means the mapping already exists and is treated as
// success; every other error status propagates.
func (c *Client) AssignPlaylistToScreen(ctx context.Context, token Token, screenID, playlistID string) (*models.AssignmentResult, error) {
	resp, err := c.do(ctx, token, requestOptions{
		method: http.MethodPost,
		path:   "/labels/playlists",
		body: models.PlaylistLabel{
			PlaylistID: playlistID,
			LabelID:    screenID,
		},
		prefer:             true,
		skipThrowForStatus: true,
		operation:          "assign playlist to screen",
	})
	if err != nil {
		return nil, err
	}

	if resp.status == http.StatusConflict {
		c.logger.WithFields(logrus.Fields{
			"screen_id":   screenID,
			"playlist_id": playlistID,
		}).Info("Playlist already assigned to screen")
	} else if resp.status >= 400 {
		return nil, newAPIError(resp.status, resp.body, "assign playlist to screen")
	}

	return &models.AssignmentResult{
		ScreenID:   screenID,
		PlaylistID: playlistID,
		Message:    "Successfully assigned playlist to screen",
	}, nil
}
