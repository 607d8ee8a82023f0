package screenly

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when the remote side produced no usable
// response (no status line or a truncated body). It is never retried.
var ErrEmptyResponse = errors.New("empty response received")

// ErrNetwork is surfaced after connectivity failures exhaust the retry budget.
var ErrNetwork = errors.New("network error: unable to connect to the server")

// ErrAssetNotReady is returned when the readiness poller gives up before the
// asset leaves its pre-processing state.
var ErrAssetNotReady = errors.New("timed out waiting for asset to become ready")

// ErrNoData is the class of failure raised when a create or lookup call
// returned an empty collection where at least one element was expected.
var ErrNoData = errors.New("no data returned from the Screenly API")

// noDataError reports an empty collection from a call that expected at
// least one element. It matches ErrNoData under errors.Is.
type noDataError struct {
	resource string
}

func (e *noDataError) Error() string {
	return fmt.Sprintf("no %s returned from the Screenly API", e.resource)
}

func (e *noDataError) Is(target error) bool {
	return target == ErrNoData
}

// APIError is an HTTP-level failure from the Screenly API. The message it
// renders is category-specific per status code; callers and tests match on
// these categories, so they must stay stable.
type APIError struct {
	Status    int
	Detail    string // server-provided error detail, "unknown error" when absent
	Operation string // used by the fallback message for uncategorized statuses
}

func (e *APIError) Error() string {
	switch e.Status {
	case 400:
		return fmt.Sprintf("Bad request: %s", e.Detail)
	case 401:
		return fmt.Sprintf("Authentication failed: %s", e.Detail)
	case 403:
		return fmt.Sprintf("Permission denied: %s", e.Detail)
	case 404:
		return fmt.Sprintf("Resource not found: %s", e.Detail)
	case 413:
		return fmt.Sprintf("File too large: %s", e.Detail)
	case 415:
		return fmt.Sprintf("Unsupported media type: %s", e.Detail)
	case 429:
		return fmt.Sprintf("Rate limit exceeded: %s", e.Detail)
	case 500:
		return fmt.Sprintf("Server error: %s", e.Detail)
	case 502:
		return fmt.Sprintf("Bad gateway: %s", e.Detail)
	case 503:
		return fmt.Sprintf("Service unavailable: %s", e.Detail)
	case 504:
		return fmt.Sprintf("Gateway timeout: %s", e.Detail)
	default:
		op := e.Operation
		if op == "" {
			op = "perform operation"
		}
		return fmt.Sprintf("Failed to %s: %s (HTTP %d)", op, e.Detail, e.Status)
	}
}

// errorDetail extracts the most useful human-readable message from an API
// error body. Screenly responses carry one of "error", "detail" or "message".
func errorDetail(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Error != "":
			return payload.Error
		case payload.Detail != "":
			return payload.Detail
		case payload.Message != "":
			return payload.Message
		}
	}
	return "unknown error"
}

// newAPIError builds the categorized error for a >= 400 response.
func newAPIError(status int, body []byte, operation string) *APIError {
	return &APIError{
		Status:    status,
		Detail:    errorDetail(body),
		Operation: operation,
	}
}
