package cache

import (
	"strings"
	"testing"
	"time"

	"marquee/pkg/models"
)

func TestMemoryCache(t *testing.T) {
	cache := NewMemoryCache(time.Minute)

	t.Run("SetAndGet", func(t *testing.T) {
		cache.Set("key1", "value1")

		value, exists := cache.Get("key1")
		if !exists {
			t.Fatal("Expected key1 to exist")
		}
		if value != "value1" {
			t.Errorf("Expected value1, got %v", value)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		if _, exists := cache.Get("missing"); exists {
			t.Error("Expected missing key to not exist")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		cache.Set("doomed", "value")
		cache.Delete("doomed")
		if _, exists := cache.Get("doomed"); exists {
			t.Error("Expected deleted key to not exist")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		cache.Set("a", 1)
		cache.Set("b", 2)
		cache.Clear()
		if cache.Size() != 0 {
			t.Errorf("Expected empty cache after clear, got %d items", cache.Size())
		}
	})
}

func TestMemoryCacheExpiration(t *testing.T) {
	cache := NewMemoryCache(10 * time.Millisecond)
	cache.Set("ephemeral", "value")

	time.Sleep(20 * time.Millisecond)

	if _, exists := cache.Get("ephemeral"); exists {
		t.Error("Expected entry to expire")
	}
}

func TestListingCacheKeys(t *testing.T) {
	lc := NewListingCache(time.Minute)

	keyA := lc.Key("screens", "token-a")
	keyB := lc.Key("screens", "token-b")
	if keyA == keyB {
		t.Error("Different tokens must produce different keys")
	}
	if keyA != lc.Key("screens", "token-a") {
		t.Error("Key derivation must be deterministic")
	}

	// The raw token must never appear in the key
	if strings.Contains(keyA, "token-a") {
		t.Errorf("Key leaks the credential: %q", keyA)
	}
}

func TestListingCachePerCredential(t *testing.T) {
	lc := NewListingCache(time.Minute)

	screensA := []models.Screen{{ID: "s1", Name: "Lobby"}}
	lc.SetScreens("token-a", screensA)

	got, exists := lc.GetScreens("token-a")
	if !exists {
		t.Fatal("Expected cached screens for token-a")
	}
	if len(got) != 1 || got[0].ID != "s1" {
		t.Errorf("Unexpected screens: %+v", got)
	}

	if _, exists := lc.GetScreens("token-b"); exists {
		t.Error("Listings must not leak across credentials")
	}
}

func TestListingCacheInvalidate(t *testing.T) {
	lc := NewListingCache(time.Minute)

	lc.SetScreens("token-a", []models.Screen{{ID: "s1"}})
	lc.SetPlaylists("token-a", []models.Playlist{{ID: "p1"}})
	lc.SetAssets("token-a", []models.Asset{{ID: "a1"}})
	lc.SetScreens("token-b", []models.Screen{{ID: "s2"}})

	lc.InvalidateListings("token-a")

	if _, exists := lc.GetScreens("token-a"); exists {
		t.Error("Expected screens for token-a to be invalidated")
	}
	if _, exists := lc.GetPlaylists("token-a"); exists {
		t.Error("Expected playlists for token-a to be invalidated")
	}
	if _, exists := lc.GetAssets("token-a"); exists {
		t.Error("Expected assets for token-a to be invalidated")
	}
	if _, exists := lc.GetScreens("token-b"); !exists {
		t.Error("Invalidation must not affect other credentials")
	}
}
