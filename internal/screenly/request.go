package screenly

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// retryDelayBase is the first backoff step; each subsequent attempt
	// doubles it up to retryDelayMax.
	retryDelayBase = 1000 * time.Millisecond
	retryDelayMax  = 10000 * time.Millisecond
)

// requestOptions describes one logical API call. The executor may issue it
// more than once when the failure is transient.
type requestOptions struct {
	method string
	path   string // path plus query, resolved against the client base URL
	body   any    // JSON-encoded when non-nil

	// prefer adds the PostgREST "Prefer: return=representation" header so
	// that mutations echo the affected rows back.
	prefer bool

	// skipThrowForStatus returns the raw response for any HTTP status
	// instead of converting >= 400 into an error. Used by callers that
	// inspect a specific status themselves (the 409 assignment case and
	// the boolean delete helpers).
	skipThrowForStatus bool

	// operation names the call for the fallback error message of
	// uncategorized statuses, e.g. "Failed to create playlist (HTTP 418)".
	operation string
}

// apiResponse is the normalized result of a single request.
type apiResponse struct {
	status int
	body   []byte
}

// do performs the request with bounded retry. Transient conditions - HTTP
// 429 and connection-level failures - are retried up to the configured
// attempt budget with exponential backoff, honoring a server-provided
// Retry-After delay when present. Everything else surfaces immediately.
func (c *Client) do(ctx context.Context, token Token, opts requestOptions) (*apiResponse, error) {
	method := opts.method
	if method == "" {
		method = http.MethodGet
	}

	var payload []byte
	if opts.body != nil {
		encoded, err := json.Marshal(opts.body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = encoded
	}

	url := c.baseURL + opts.path

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c.logger.WithFields(logrus.Fields{
			"attempt": fmt.Sprintf("%d/%d", attempt, c.maxRetries),
			"method":  method,
			"url":     url,
		}).Debug("Making request")

		resp, err := c.send(ctx, token, method, url, payload, opts.prefer)
		if err != nil {
			if err == ErrEmptyResponse {
				return nil, err
			}
			// Connection refused, DNS failure, client timeout
			lastErr = ErrNetwork
			if attempt < c.maxRetries {
				delay := retryDelay(attempt, "")
				c.logger.WithError(err).WithField("delay", delay).Debug("Network error, retrying")
				c.sleep(delay)
				continue
			}
			return nil, lastErr
		}

		c.logger.WithFields(logrus.Fields{
			"status": resp.status,
			"url":    url,
		}).Debug("Response received")

		if resp.status == http.StatusTooManyRequests && attempt < c.maxRetries {
			delay := retryDelay(attempt, resp.retryAfter)
			c.logger.WithField("delay", delay).Debug("Rate limited, retrying")
			c.sleep(delay)
			continue
		}

		if opts.skipThrowForStatus {
			return &resp.apiResponse, nil
		}

		if resp.status >= 400 {
			return nil, newAPIError(resp.status, resp.body, opts.operation)
		}

		return &resp.apiResponse, nil
	}

	if lastErr == nil {
		lastErr = ErrNetwork
	}
	return nil, lastErr
}

// rawResponse carries the retry-relevant header alongside the normalized body.
type rawResponse struct {
	apiResponse
	retryAfter string
}

// send issues exactly one HTTP request. It reports ErrEmptyResponse for a
// truncated or unreadable body so callers never proceed with partial data.
func (c *Client) send(ctx context.Context, token Token, method, url string, payload []byte, prefer bool) (*rawResponse, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Token "+string(token))
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrEmptyResponse
	}

	return &rawResponse{
		apiResponse: apiResponse{status: resp.StatusCode, body: data},
		retryAfter:  resp.Header.Get("Retry-After"),
	}, nil
}

// retryDelay computes the wait before the next attempt. A server-provided
// Retry-After value (seconds) wins; otherwise exponential backoff from
// retryDelayBase, capped at retryDelayMax.
func retryDelay(attempt int, retryAfter string) time.Duration {
	if retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}

	delay := retryDelayBase << (attempt - 1)
	if delay > retryDelayMax {
		delay = retryDelayMax
	}
	return delay
}

// decodeJSON unmarshals a response body, treating an empty body as the
// empty-response failure rather than silently yielding zero values.
func decodeJSON(resp *apiResponse, dest any) error {
	if len(resp.body) == 0 {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal(resp.body, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
