package screenly

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCreateAsset(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{"id": "a1", "title": "Poster", "status": "none"}]`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, 3)
	asset, err := client.CreateAsset(context.Background(), "test-key", CreateAssetParams{
		Title:     "Poster",
		SourceURL: "https://example.com/poster.png",
	})
	if err != nil {
		t.Fatalf("CreateAsset failed: %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/assets/" {
		t.Errorf("Expected POST /assets/, got %s %s", gotMethod, gotPath)
	}
	if gotBody["title"] != "Poster" || gotBody["source_url"] != "https://example.com/poster.png" {
		t.Errorf("Unexpected request body: %v", gotBody)
	}
	if _, ok := gotBody["disable_verification"]; !ok {
		t.Error("Expected disable_verification in request body")
	}
	if asset.ID != "a1" || asset.Title != "Poster" {
		t.Errorf("Unexpected asset: %+v", asset)
	}
}

func TestCreateAssetEmptyCollection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, 3)
	_, err := client.CreateAsset(context.Background(), "test-key", CreateAssetParams{
		Title:     "Poster",
		SourceURL: "https://example.com/poster.png",
	})
	if err == nil {
		t.Fatal("Expected error for empty collection")
	}
	if !errors.Is(err, ErrNoData) {
		t.Errorf("Expected ErrNoData match, got %v", err)
	}
	if err.Error() != "no assets returned from the Screenly API" {
		t.Errorf("Unexpected error message: %q", err.Error())
	}
}

func TestListAssetsFiltersQuery(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[{"id": "a1", "title": "t", "status": "finished"}]`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, 3)
	assets, err := client.ListAssets(context.Background(), "test-key")
	if err != nil {
		t.Fatalf("ListAssets failed: %v", err)
	}
	if len(assets) != 1 {
		t.Fatalf("Expected 1 asset, got %d", len(assets))
	}
	if !strings.Contains(gotQuery, "edge-app") || !strings.Contains(gotQuery, "status.eq.finished") {
		t.Errorf("Expected edge-app and status filters in query, got %q", gotQuery)
	}
}

func TestDeleteAssetReportsBoolean(t *testing.T) {
	testCases := []struct {
		status   int
		expected bool
	}{
		{200, true},
		{404, false},
		{500, false},
	}

	for _, tc := range testCases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				t.Errorf("Expected DELETE, got %s", r.Method)
			}
			w.WriteHeader(tc.status)
		}))

		client, _ := newTestClient(server.URL, 3)
		ok, err := client.DeleteAsset(context.Background(), "test-key", "a1")
		server.Close()

		if err != nil {
			t.Fatalf("Status %d: expected no error, got %v", tc.status, err)
		}
		if ok != tc.expected {
			t.Errorf("Status %d: expected %v, got %v", tc.status, tc.expected, ok)
		}
	}
}

func TestCreatePlaylistItemOmitsZeroDuration(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`[{"id": "pi1", "asset_id": "a1", "playlist_id": "p1"}]`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, 3)
	item, err := client.CreatePlaylistItem(context.Background(), "test-key", "a1", "p1", 0)
	if err != nil {
		t.Fatalf("CreatePlaylistItem failed: %v", err)
	}
	if item.ID != "pi1" {
		t.Errorf("Unexpected item: %+v", item)
	}
	if _, present := gotBody["duration"]; present {
		t.Error("Zero duration must be omitted so the remote default applies")
	}

	if _, err := client.CreatePlaylistItem(context.Background(), "test-key", "a1", "p1", 15); err != nil {
		t.Fatalf("CreatePlaylistItem failed: %v", err)
	}
	if gotBody["duration"] != float64(15) {
		t.Errorf("Expected duration 15 in body, got %v", gotBody["duration"])
	}
}

func TestAssignPlaylistToScreen(t *testing.T) {
	t.Run("DuplicateIsSuccess", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"detail": "already exists"}`))
		}))
		defer server.Close()

		client, _ := newTestClient(server.URL, 3)
		result, err := client.AssignPlaylistToScreen(context.Background(), "test-key", "s1", "p1")
		if err != nil {
			t.Fatalf("Expected duplicate assignment to succeed, got %v", err)
		}
		if result.Message != "Successfully assigned playlist to screen" {
			t.Errorf("Unexpected message: %q", result.Message)
		}
		if result.ScreenID != "s1" || result.PlaylistID != "p1" {
			t.Errorf("Unexpected result: %+v", result)
		}
	})

	t.Run("ServerErrorPropagates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"detail": "db down"}`))
		}))
		defer server.Close()

		client, _ := newTestClient(server.URL, 3)
		_, err := client.AssignPlaylistToScreen(context.Background(), "test-key", "s1", "p1")
		if err == nil {
			t.Fatal("Expected error for server failure")
		}
		if err.Error() != "Server error: db down" {
			t.Errorf("Unexpected error message: %q", err.Error())
		}
	})

	t.Run("Created", func(t *testing.T) {
		var gotBody map[string]interface{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&gotBody)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`[{"playlist_id": "p1", "label_id": "s1"}]`))
		}))
		defer server.Close()

		client, _ := newTestClient(server.URL, 3)
		if _, err := client.AssignPlaylistToScreen(context.Background(), "test-key", "s1", "p1"); err != nil {
			t.Fatalf("AssignPlaylistToScreen failed: %v", err)
		}
		if gotBody["playlist_id"] != "p1" || gotBody["label_id"] != "s1" {
			t.Errorf("Unexpected join body: %v", gotBody)
		}
	})
}

func TestFindOrCreateLabel(t *testing.T) {
	created := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			created = true
			w.Write([]byte(`[{"id": "l1", "name": "managed"}]`))
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, 3)
	label, err := client.FindOrCreateLabel(context.Background(), "test-key", "managed")
	if err != nil {
		t.Fatalf("FindOrCreateLabel failed: %v", err)
	}
	if !created {
		t.Error("Expected a create call for a missing label")
	}
	if label.ID != "l1" {
		t.Errorf("Unexpected label: %+v", label)
	}
}

func TestFindOrCreateLabelReusesExisting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			t.Error("Existing label must not be recreated")
		}
		w.Write([]byte(`[{"id": "l1", "name": "managed"}]`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, 3)
	label, err := client.FindOrCreateLabel(context.Background(), "test-key", "managed")
	if err != nil {
		t.Fatalf("FindOrCreateLabel failed: %v", err)
	}
	if label.ID != "l1" {
		t.Errorf("Unexpected label: %+v", label)
	}
}

func TestGetLabelEmptyIsNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, 3)
	_, err := client.GetLabel(context.Background(), "test-key", "managed")
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("Expected ErrNoData, got %v", err)
	}
}

func TestVerifyToken(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		client, _ := newTestClient(server.URL, 3)
		if err := client.VerifyToken(context.Background(), "good-key"); err != nil {
			t.Fatalf("Expected valid token, got %v", err)
		}
	})

	t.Run("Rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail": "bad token"}`))
		}))
		defer server.Close()

		client, _ := newTestClient(server.URL, 3)
		err := client.VerifyToken(context.Background(), "bad-key")
		if err == nil {
			t.Fatal("Expected error for rejected token")
		}
		if err.Error() != "Authentication failed: bad token" {
			t.Errorf("Unexpected error message: %q", err.Error())
		}
	})
}
