package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marquee/internal/config"

	"github.com/sirupsen/logrus"
)

func testConfig(upstreamURL, apiKey string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Screenly.BaseURL = upstreamURL
	cfg.Screenly.APIKey = apiKey
	cfg.Screenly.MaxRetries = 1 // no real backoff sleeps in tests
	cfg.Poll.IntervalMillis = 0
	cfg.Poll.MaxAttempts = 5
	cfg.History.Enabled = false
	cfg.Logging.RequestLogging = false
	cfg.Server.WatchForConfig = false
	return cfg
}

func newTestBridge(t *testing.T, upstreamURL, apiKey string) http.Handler {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	bs, err := NewBridgeServer(testConfig(upstreamURL, apiKey), "./config.toml", nil, logger)
	if err != nil {
		t.Fatalf("Failed to create bridge server: %v", err)
	}
	return bs.Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestBridge(t, "http://127.0.0.1:0", "key")

	rr := doJSON(t, handler, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var resp healthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("Expected ok status, got %q", resp.Status)
	}
	if resp.History != "disabled" {
		t.Errorf("Expected disabled history, got %q", resp.History)
	}
}

func TestMissingCredentialRejected(t *testing.T) {
	handler := newTestBridge(t, "http://127.0.0.1:0", "")

	rr := doJSON(t, handler, http.MethodGet, "/api/screens", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "API key is required") {
		t.Errorf("Unexpected body: %s", rr.Body.String())
	}
}

func TestCredentialForwarding(t *testing.T) {
	var gotAuth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `[]`)
	}))
	defer upstream.Close()

	handler := newTestBridge(t, upstream.URL, "default-key")

	t.Run("DefaultKey", func(t *testing.T) {
		rr := doJSON(t, handler, http.MethodGet, "/api/playlists", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		if gotAuth != "Token default-key" {
			t.Errorf("Expected default credential, got %q", gotAuth)
		}
	})

	t.Run("CallerKeyWins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/screens", nil)
		req.Header.Set("Authorization", "Bearer caller-key")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rr.Code)
		}
		if gotAuth != "Token caller-key" {
			t.Errorf("Expected caller credential to be forwarded, got %q", gotAuth)
		}
	})
}

func TestListingCacheAvoidsRepeatCalls(t *testing.T) {
	calls := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `[{"id": "s1", "name": "Lobby"}]`)
	}))
	defer upstream.Close()

	handler := newTestBridge(t, upstream.URL, "key")

	for i := 0; i < 3; i++ {
		rr := doJSON(t, handler, http.MethodGet, "/api/screens", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d", i, rr.Code)
		}
	}
	if calls != 1 {
		t.Errorf("Expected 1 upstream call for 3 requests, got %d", calls)
	}
}

func TestUpstreamErrorPassthrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail": "invalid token"}`)
	}))
	defer upstream.Close()

	handler := newTestBridge(t, upstream.URL, "bad-key")

	rr := doJSON(t, handler, http.MethodGet, "/api/auth/verify", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("Expected upstream 401 to pass through, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Authentication failed: invalid token") {
		t.Errorf("Unexpected body: %s", rr.Body.String())
	}
}

func TestUploadValidation(t *testing.T) {
	handler := newTestBridge(t, "http://127.0.0.1:0", "key")

	rr := doJSON(t, handler, http.MethodPost, "/api/assets", map[string]interface{}{
		"file":      "not-a-url",
		"title":     "",
		"file_type": "audio/mpeg",
		"duration":  -1,
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}

	var result ValidationResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode validation result: %v", err)
	}
	if result.Valid {
		t.Error("Expected invalid result")
	}
	if len(result.Errors) != 4 {
		t.Errorf("Expected 4 field errors, got %d: %+v", len(result.Errors), result.Errors)
	}
}

func TestUploadResolvesCloudLinks(t *testing.T) {
	var gotSourceURL string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if u, ok := body["source_url"].(string); ok {
			gotSourceURL = u
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `[{"id": "a1", "title": "Poster", "status": "none"}]`)
	}))
	defer upstream.Close()

	handler := newTestBridge(t, upstream.URL, "key")

	rr := doJSON(t, handler, http.MethodPost, "/api/assets", map[string]interface{}{
		"file":  "https://drive.google.com/file/d/abc123/view",
		"title": "Poster",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotSourceURL != "https://drive.google.com/uc?export=download&id=abc123" {
		t.Errorf("Expected resolved drive link, got %q", gotSourceURL)
	}
}

func TestAssignScreenTreatsDuplicateAsSuccess(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"detail": "duplicate"}`)
	}))
	defer upstream.Close()

	handler := newTestBridge(t, upstream.URL, "key")

	rr := doJSON(t, handler, http.MethodPost, "/api/screens/assign", map[string]string{
		"screen_id":   "s1",
		"playlist_id": "p1",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "Successfully assigned playlist to screen") {
		t.Errorf("Unexpected body: %s", rr.Body.String())
	}
}

func TestCompleteWorkflowRequiresPlaylistChoice(t *testing.T) {
	handler := newTestBridge(t, "http://127.0.0.1:0", "key")

	rr := doJSON(t, handler, http.MethodPost, "/api/workflows/complete", map[string]string{
		"file":      "https://example.com/a.png",
		"title":     "Promo",
		"screen_id": "s1",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Either select an existing playlist or provide a name for a new one") {
		t.Errorf("Unexpected body: %s", rr.Body.String())
	}
}

func TestCleanupRequiresConfirmation(t *testing.T) {
	handler := newTestBridge(t, "http://127.0.0.1:0", "key")

	rr := doJSON(t, handler, http.MethodPost, "/api/cleanup", map[string]bool{
		"confirm": false,
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Please confirm the cleanup operation") {
		t.Errorf("Unexpected body: %s", rr.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newTestBridge(t, "http://127.0.0.1:0", "key")

	testCases := []struct {
		method string
		path   string
	}{
		{http.MethodDelete, "/api/screens"},
		{http.MethodGet, "/api/screens/assign"},
		{http.MethodPut, "/api/assets"},
		{http.MethodGet, "/api/cleanup"},
		{http.MethodPost, "/api/runs"},
	}

	for _, tc := range testCases {
		rr := doJSON(t, handler, tc.method, tc.path, nil)
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected 405, got %d", tc.method, tc.path, rr.Code)
		}
	}
}

func TestRunsWithHistoryDisabled(t *testing.T) {
	handler := newTestBridge(t, "http://127.0.0.1:0", "key")

	rr := doJSON(t, handler, http.MethodGet, "/api/runs", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 when history is disabled, got %d", rr.Code)
	}
}

func TestInvalidJSONRejected(t *testing.T) {
	handler := newTestBridge(t, "http://127.0.0.1:0", "key")

	req := httptest.NewRequest(http.MethodPost, "/api/cleanup", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for invalid JSON, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Invalid JSON") {
		t.Errorf("Unexpected body: %s", rr.Body.String())
	}
}

func TestNetworkFailureMapsToBadGateway(t *testing.T) {
	// Unreachable upstream
	handler := newTestBridge(t, "http://127.0.0.1:1", "key")

	rr := doJSON(t, handler, http.MethodGet, "/api/playlists", nil)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502 for unreachable upstream, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "network error: unable to connect to the server") {
		t.Errorf("Unexpected body: %s", rr.Body.String())
	}
}
