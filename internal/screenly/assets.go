package screenly

import (
	"context"
	"net/http"
	"net/url"

	"marquee/pkg/models"
)

// listAssetsQuery excludes edge-app internals and limits results to assets
// whose processing has been accepted, matching what a scheduling caller can
// actually use.
const listAssetsQuery = "?and=(type.not.eq.edge-app-file,type.not.eq.edge-app)" +
	"&or=(status.eq.downloading,status.eq.processing,status.eq.finished)"

// CreateAssetParams are the inputs for a remote asset upload. The service
// fetches the file from SourceURL itself; no bytes pass through here.
type CreateAssetParams struct {
	Title               string
	SourceURL           string
	DisableVerification bool
}

// CreateAsset registers a new asset and returns the created resource.
func (c *Client) CreateAsset(ctx context.Context, token Token, params CreateAssetParams) (*models.Asset, error) {
	resp, err := c.do(ctx, token, requestOptions{
		method: http.MethodPost,
		path:   "/assets/",
		body: map[string]any{
			"title":                params.Title,
			"source_url":           params.SourceURL,
			"disable_verification": params.DisableVerification,
		},
		prefer:    true,
		operation: "upload asset",
	})
	if err != nil {
		return nil, err
	}

	var assets []models.Asset
	if err := decodeJSON(resp, &assets); err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, &noDataError{resource: "assets"}
	}

	return &assets[0], nil
}

// GetAssetStatus fetches the current processing status of one asset.
func (c *Client) GetAssetStatus(ctx context.Context, token Token, assetID string) (string, error) {
	resp, err := c.do(ctx, token, requestOptions{
		path:      "/assets?id=eq." + url.QueryEscape(assetID),
		operation: "check asset status",
	})
	if err != nil {
		return "", err
	}

	var assets []models.Asset
	if err := decodeJSON(resp, &assets); err != nil {
		return "", err
	}
	if len(assets) == 0 {
		return "", &noDataError{resource: "assets"}
	}

	return assets[0].Status, nil
}

// ListAssets returns the account's usable assets.
func (c *Client) ListAssets(ctx context.Context, token Token) ([]models.Asset, error) {
	resp, err := c.do(ctx, token, requestOptions{
		path:      "/assets/" + listAssetsQuery,
		operation: "fetch assets",
	})
	if err != nil {
		return nil, err
	}

	var assets []models.Asset
	if err := decodeJSON(resp, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// UpdateAssetDuration patches the display duration of an existing asset.
func (c *Client) UpdateAssetDuration(ctx context.Context, token Token, assetID string, seconds int) error {
	_, err := c.do(ctx, token, requestOptions{
		method:    http.MethodPatch,
		path:      "/assets/?id=eq." + url.QueryEscape(assetID),
		body:      map[string]any{"duration": seconds},
		prefer:    true,
		operation: "update asset duration",
	})
	return err
}

// DeleteAsset removes one asset. It reports success as a boolean instead of
// an error so bulk cleanup can tally outcomes without aborting.
func (c *Client) DeleteAsset(ctx context.Context, token Token, assetID string) (bool, error) {
	resp, err := c.do(ctx, token, requestOptions{
		method:             http.MethodDelete,
		path:               "/assets/?id=eq." + url.QueryEscape(assetID),
		skipThrowForStatus: true,
		operation:          "delete asset",
	})
	if err != nil {
		return false, err
	}
	return resp.status == http.StatusOK, nil
}
