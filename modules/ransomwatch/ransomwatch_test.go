package ransomwatch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BriarPort/TILT/internal/store"
)

// TestMatch covers substring and token matching against post titles.
func TestMatch(t *testing.T) {
	posts := []Post{
		{PostTitle: "ACME Industries - full dump", GroupName: "lockbit3"},
		{PostTitle: "globex.com", GroupName: "alphv"},
		{PostTitle: "initech payroll data"},
	}

	tests := []struct {
		name     string
		vendor   string
		domain   string
		expected bool
	}{
		{"full name substring", "acme industries", "", true},
		{"domain substring", "", "globex.com", true},
		{"name token match", "Initech Holdings LLC", "", true},
		{"short tokens ignored", "LLC Inc Co", "", false},
		{"no match", "Umbrella", "umbrella.example", false},
		{"empty input", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(posts, tt.vendor, tt.domain); got != tt.expected {
				t.Errorf("Match(%q, %q) = %v; expected %v", tt.vendor, tt.domain, got, tt.expected)
			}
		})
	}
}

func TestMatch_EmptyFeed(t *testing.T) {
	if Match(nil, "acme", "acme.com") {
		t.Error("Match on empty feed = true; expected false")
	}
}

// TestFetchPosts_CacheAndStaleFallback verifies the 24h cache short-circuit
// and the stale-read fallback when the upstream fetch fails.
func TestFetchPosts_CacheAndStaleFallback(t *testing.T) {
	ctx := context.Background()

	var calls atomic.Int32
	var failing atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[{"post_title":"acme corp","group_name":"lockbit3"}]`))
	}))
	defer srv.Close()

	fileStore, err := store.NewFileStore(filepath.Join(t.TempDir(), "ransom_cache.json"))
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	cache := store.NewCache(fileStore, 24*time.Hour)
	client := NewClient(srv.URL, cache)

	// First call hits the network and populates the cache.
	posts, err := client.FetchPosts(ctx)
	if err != nil {
		t.Fatalf("FetchPosts failed: %v", err)
	}
	if len(posts) != 1 || posts[0].PostTitle != "acme corp" {
		t.Errorf("posts = %+v; expected one acme corp post", posts)
	}

	// Second call is served from the fresh cache.
	if _, err := client.FetchPosts(ctx); err != nil {
		t.Fatalf("cached FetchPosts failed: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("upstream calls = %d; expected 1 (cache hit)", calls.Load())
	}

	// Upstream breaks: a stale cache entry must still serve.
	failing.Store(true)
	staleCache := store.NewCache(fileStore, 0) // everything already stale
	staleClient := NewClient(srv.URL, staleCache)

	posts, err = staleClient.FetchPosts(ctx)
	if err == nil {
		t.Error("expected a stale-cache error marker when upstream fails")
	}
	if len(posts) != 1 {
		t.Errorf("stale posts = %+v; expected the cached post list", posts)
	}
}

// TestFetchPosts_NoCacheNoUpstream verifies the error path when neither the
// feed nor a cached copy is available.
func TestFetchPosts_NoCacheNoUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	if _, err := client.FetchPosts(context.Background()); err == nil {
		t.Error("expected an error with no cache and failing upstream")
	}
}
