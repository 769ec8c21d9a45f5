// Package ransomwatch checks vendors against the ransomwatch leak-site post
// feed. The feed is a public JSON dump refreshed on a 24h cycle, so results
// go through a durable cache with stale reads as the fallback when the
// upstream fetch fails.
package ransomwatch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/BriarPort/TILT/internal/store"
)

// DefaultFeedURL is the public ransomwatch post dump.
const DefaultFeedURL = "https://raw.githubusercontent.com/joshhighet/ransomwatch/main/posts.json"

const (
	userAgent    = "TILT-Dashboard/1.0"
	fetchTimeout = 30 * time.Second
	cacheKey     = "ransomwatch_posts"
)

// Post is a single leak-site post from the feed. Only the title is used for
// matching; the rest is kept for warning context.
type Post struct {
	PostTitle  string `json:"post_title"`
	GroupName  string `json:"group_name"`
	Discovered string `json:"discovered"`
}

// Client fetches and caches the ransomwatch feed.
type Client struct {
	httpClient *http.Client
	feedURL    string
	cache      *store.Cache
}

// NewClient creates a feed client. cache should be durable (file-backed)
// with a TTL on the order of 24h; a nil cache disables caching.
func NewClient(feedURL string, cache *store.Cache) *Client {
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: fetchTimeout},
		feedURL:    feedURL,
		cache:      cache,
	}
}

// FetchPosts returns the current post list. A fresh cache entry short-
// circuits the fetch; on fetch failure a stale entry is returned instead,
// and only when neither exists does the error surface.
func (c *Client) FetchPosts(ctx context.Context) ([]Post, error) {
	if posts, ok := c.cachedPosts(ctx, true); ok {
		return posts, nil
	}

	posts, err := c.fetch(ctx)
	if err != nil {
		// Stale-on-error: an old post list still beats no signal.
		if stale, ok := c.cachedPosts(ctx, false); ok {
			return stale, fmt.Errorf("using stale feed cache: %w", err)
		}
		return nil, err
	}

	if c.cache != nil {
		if raw, merr := json.Marshal(posts); merr == nil {
			_ = c.cache.Set(ctx, cacheKey, string(raw))
		}
	}

	return posts, nil
}

// cachedPosts reads the post list from cache. freshOnly restricts the read
// to entries within the TTL.
func (c *Client) cachedPosts(ctx context.Context, freshOnly bool) ([]Post, bool) {
	if c.cache == nil {
		return nil, false
	}

	raw, fresh, ok := c.cache.Get(ctx, cacheKey)
	if !ok || (freshOnly && !fresh) {
		return nil, false
	}

	var posts []Post
	if err := json.Unmarshal([]byte(raw), &posts); err != nil {
		return nil, false
	}
	return posts, true
}

// fetch downloads and decodes the feed.
func (c *Client) fetch(ctx context.Context) ([]Post, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building feed request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching ransomware feed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ransomware feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading feed body: %w", err)
	}

	var posts []Post
	if err := json.Unmarshal(body, &posts); err != nil {
		return nil, fmt.Errorf("decoding feed: %w", err)
	}

	return posts, nil
}

// Match reports whether the vendor name or domain appears in any post title.
// Titles are matched case-insensitively: first the full name and domain as
// substrings, then each name token longer than 3 runes, both literally and
// as a fuzzy (in-order subsequence) match to catch mangled spellings on leak
// sites.
func Match(posts []Post, vendorName, vendorDomain string) bool {
	name := strings.ToLower(strings.TrimSpace(vendorName))
	domain := strings.ToLower(strings.TrimSpace(vendorDomain))

	if name == "" && domain == "" {
		return false
	}

	var tokens []string
	for _, word := range strings.Fields(name) {
		if len([]rune(word)) > 3 {
			tokens = append(tokens, word)
		}
	}

	for _, post := range posts {
		title := strings.ToLower(post.PostTitle)
		if title == "" {
			continue
		}

		if name != "" && strings.Contains(title, name) {
			return true
		}
		if domain != "" && strings.Contains(title, domain) {
			return true
		}

		titleWords := strings.Fields(title)
		for _, token := range tokens {
			if strings.Contains(title, token) {
				return true
			}
			// Fuzzy pass is per title word, not the whole title, to keep
			// subsequence matching from firing on unrelated long strings.
			for _, word := range titleWords {
				if fuzzy.MatchNormalizedFold(token, word) {
					return true
				}
			}
		}
	}

	return false
}
