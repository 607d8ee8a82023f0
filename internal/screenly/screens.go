package screenly

import (
	"context"

	"marquee/pkg/models"
)

// ListScreens returns the account's registered screens.
func (c *Client) ListScreens(ctx context.Context, token Token) ([]models.Screen, error) {
	resp, err := c.do(ctx, token, requestOptions{
		path:      "/screens/",
		operation: "fetch screens",
	})
	if err != nil {
		return nil, err
	}

	var screens []models.Screen
	if err := decodeJSON(resp, &screens); err != nil {
		return nil, err
	}
	return screens, nil
}

// VerifyToken checks that the token can authenticate against the API. A nil
// return means the credential is usable.
func (c *Client) VerifyToken(ctx context.Context, token Token) error {
	_, err := c.do(ctx, token, requestOptions{
		path:      "/assets/",
		operation: "verify credentials",
	})
	return err
}
