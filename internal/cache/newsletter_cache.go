package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/GTDGit/gtd_shop/internal/models"
)

const newsletterVersionKey = "newsletter:version"

// NewsletterPage is one cached page of the admin newsletter listing.
type NewsletterPage struct {
	Entries []models.NewsletterEntry `json:"entries"`
	Total   int                      `json:"total"`
}

// NewsletterCache caches listing pages. Pages are keyed under a version
// counter so a single INCR invalidates every cached page at once.
type NewsletterCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewNewsletterCache creates a NewsletterCache.
func NewNewsletterCache(redis *RedisClient, ttl time.Duration) *NewsletterCache {
	return &NewsletterCache{redis: redis, ttl: ttl}
}

// Get returns the cached page or ErrMiss, along with the key the page lives
// under at the version read now. On a miss, pass that key to Set after
// loading the page so an Invalidate that lands in between leaves the fresh
// page unreachable instead of caching stale rows under the new version.
func (c *NewsletterCache) Get(ctx context.Context, page, limit int, search string) (*NewsletterPage, string, error) {
	key, err := c.pageKey(ctx, page, limit, search)
	if err != nil {
		return nil, "", err
	}
	raw, err := c.redis.Get(ctx, key)
	if err != nil {
		return nil, key, err
	}
	var p NewsletterPage
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, key, fmt.Errorf("failed to unmarshal newsletter page: %w", err)
	}
	return &p, key, nil
}

// Set stores a page under key as returned by Get.
func (c *NewsletterCache) Set(ctx context.Context, key string, p *NewsletterPage) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal newsletter page: %w", err)
	}
	return c.redis.Set(ctx, key, string(data), c.ttl)
}

// Invalidate drops every cached page by bumping the version counter.
func (c *NewsletterCache) Invalidate(ctx context.Context) error {
	_, err := c.redis.Incr(ctx, newsletterVersionKey)
	return err
}

func (c *NewsletterCache) pageKey(ctx context.Context, page, limit int, search string) (string, error) {
	version := "0"
	v, err := c.redis.Get(ctx, newsletterVersionKey)
	switch {
	case err == nil:
		version = v
	case !errors.Is(err, ErrMiss):
		return "", err
	}
	return newsletterPageKey(version, page, limit, search), nil
}

func newsletterPageKey(version string, page, limit int, search string) string {
	return "newsletter:v" + version + ":p" + strconv.Itoa(page) + ":l" + strconv.Itoa(limit) + ":s" + search
}
