package screenly

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// readyStates are the asset statuses past which scheduling may proceed: the
// upload has been accepted and is progressing or complete. An asset must
// never be attached to a playlist before reaching one of these.
var readyStates = []string{"downloading", "processing", "finished"}

// isReadyState reports whether the status is in the ready set.
func isReadyState(status string) bool {
	for _, s := range readyStates {
		if s == status {
			return true
		}
	}
	return false
}

// WaitForAssetReady polls the asset's status until it enters the ready set,
// returning the status that satisfied the wait. Each observed status is
// logged for operators chasing stuck uploads. The loop is bounded by the
// configured attempt budget and inter-poll delay; exhausting it surfaces
// ErrAssetNotReady. Any error from a status check aborts the wait.
func (c *Client) WaitForAssetReady(ctx context.Context, token Token, assetID string) (string, error) {
	for attempt := 1; attempt <= c.maxPollAttempts; attempt++ {
		status, err := c.GetAssetStatus(ctx, token, assetID)
		if err != nil {
			return "", err
		}

		c.logger.WithFields(logrus.Fields{
			"asset_id": assetID,
			"status":   status,
		}).Info("Asset status")

		if isReadyState(status) {
			return status, nil
		}

		if attempt == c.maxPollAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			c.sleep(c.pollInterval)
		}
	}

	return "", fmt.Errorf("asset %s: %w", assetID, ErrAssetNotReady)
}
