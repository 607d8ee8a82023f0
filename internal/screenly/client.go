package screenly

import (
	"net/http"
	"strings"
	"time"

	"marquee/internal/config"

	"github.com/sirupsen/logrus"
)

// Token is a Screenly API key. Every call takes the token explicitly so a
// single client can serve requests on behalf of different accounts; the
// client holds no ambient credential state.
type Token string

// Client talks to the Screenly v4 REST API. It owns the retry policy and the
// asset readiness poll bounds; all remote state lives on the Screenly side.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger

	maxRetries      int
	pollInterval    time.Duration
	maxPollAttempts int

	// sleep is swapped out in tests to avoid real backoff delays
	sleep func(time.Duration)
}

// NewClient creates a Screenly API client from the application configuration
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.New()
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.Screenly.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Screenly.RequestTimeout) * time.Second,
		},
		logger:          logger,
		maxRetries:      cfg.Screenly.MaxRetries,
		pollInterval:    time.Duration(cfg.Poll.IntervalMillis) * time.Millisecond,
		maxPollAttempts: cfg.Poll.MaxAttempts,
		sleep:           time.Sleep,
	}
}

// BaseURL returns the upstream API root the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}
