package store

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/voyagen/channelvault/internal/cache"
	"github.com/voyagen/channelvault/internal/models"
)

// Cache TTLs for different query shapes.
const (
	ttlCountries  = 5 * time.Minute
	ttlChannels   = 1 * time.Minute
	ttlChannel    = 5 * time.Minute
	ttlCategories = 5 * time.Minute
	ttlSearch     = 2 * time.Minute
)

// CachedStore wraps a Store with a Redis caching layer. Catalog reads are
// served from cache when possible; reconciliation writes invalidate the
// affected keys, so a refresh acts as a full catalog cache eviction.
type CachedStore struct {
	inner Store
	cache *cache.Redis
}

// NewCachedStore creates a CachedStore that wraps inner with Redis caching.
func NewCachedStore(inner Store, c *cache.Redis) *CachedStore {
	return &CachedStore{inner: inner, cache: c}
}

// --- cached read operations ---

func (c *CachedStore) ListActiveCountries(ctx context.Context) ([]models.Country, error) {
	const key = "countries:active"
	if v, err := cache.Get[[]models.Country](ctx, c.cache, key); err == nil {
		return v, nil
	}
	countries, err := c.inner.ListActiveCountries(ctx)
	if err != nil {
		return nil, err
	}
	if len(countries) > 0 {
		if err := cache.Set(ctx, c.cache, key, countries, ttlCountries); err != nil {
			log.Printf("cache: set %s: %v", key, err)
		}
	}
	return countries, nil
}

func (c *CachedStore) ListActiveChannelsByCountry(ctx context.Context, code string) ([]models.Channel, error) {
	key := "channels:" + code
	if v, err := cache.Get[[]models.Channel](ctx, c.cache, key); err == nil {
		return v, nil
	}
	channels, err := c.inner.ListActiveChannelsByCountry(ctx, code)
	if err != nil {
		return nil, err
	}
	if len(channels) > 0 {
		if err := cache.Set(ctx, c.cache, key, channels, ttlChannels); err != nil {
			log.Printf("cache: set %s: %v", key, err)
		}
	}
	return channels, nil
}

func (c *CachedStore) ListCategoriesByCountry(ctx context.Context, code string) ([]string, error) {
	key := "categories:" + code
	if v, err := cache.Get[[]string](ctx, c.cache, key); err == nil {
		return v, nil
	}
	categories, err := c.inner.ListCategoriesByCountry(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := cache.Set(ctx, c.cache, key, categories, ttlCategories); err != nil {
		log.Printf("cache: set %s: %v", key, err)
	}
	return categories, nil
}

func (c *CachedStore) ListChannelsByCategory(ctx context.Context, code, category string) ([]models.Channel, error) {
	key := fmt.Sprintf("bycat:%s:%s", code, shortHash(category))
	if v, err := cache.Get[[]models.Channel](ctx, c.cache, key); err == nil {
		return v, nil
	}
	channels, err := c.inner.ListChannelsByCategory(ctx, code, category)
	if err != nil {
		return nil, err
	}
	if err := cache.Set(ctx, c.cache, key, channels, ttlChannels); err != nil {
		log.Printf("cache: set %s: %v", key, err)
	}
	return channels, nil
}

func (c *CachedStore) SearchChannels(ctx context.Context, code, query string) ([]models.Channel, error) {
	key := fmt.Sprintf("search:%s:%s", code, shortHash(query))
	if v, err := cache.Get[[]models.Channel](ctx, c.cache, key); err == nil {
		return v, nil
	}
	channels, err := c.inner.SearchChannels(ctx, code, query)
	if err != nil {
		return nil, err
	}
	if err := cache.Set(ctx, c.cache, key, channels, ttlSearch); err != nil {
		log.Printf("cache: set %s: %v", key, err)
	}
	return channels, nil
}

func (c *CachedStore) GetChannelByID(ctx context.Context, id int64) (*models.Channel, error) {
	key := fmt.Sprintf("channel:%d", id)
	if v, err := cache.Get[models.Channel](ctx, c.cache, key); err == nil {
		return &v, nil
	}
	ch, err := c.inner.GetChannelByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := cache.Set(ctx, c.cache, key, ch, ttlChannel); err != nil {
		log.Printf("cache: set %s: %v", key, err)
	}
	return ch, nil
}

// --- write operations with cache invalidation ---

func (c *CachedStore) UpsertChannel(ctx context.Context, ch *models.Channel) (int64, error) {
	id, err := c.inner.UpsertChannel(ctx, ch)
	if err != nil {
		return 0, err
	}
	c.invalidateChannelCaches(ctx, id)
	return id, nil
}

func (c *CachedStore) UpsertPlaylistChannel(ctx context.Context, ch *models.Channel) (int64, error) {
	id, err := c.inner.UpsertPlaylistChannel(ctx, ch)
	if err != nil {
		return 0, err
	}
	c.invalidateChannelCaches(ctx, id)
	return id, nil
}

func (c *CachedStore) CreateCountry(ctx context.Context, co *models.Country) (int64, error) {
	id, err := c.inner.CreateCountry(ctx, co)
	if err != nil {
		return 0, err
	}
	c.invalidate(ctx, "countries:active")
	return id, nil
}

func (c *CachedStore) UpdateCountry(ctx context.Context, co *models.Country) error {
	if err := c.inner.UpdateCountry(ctx, co); err != nil {
		return err
	}
	c.invalidate(ctx, "countries:active")
	return nil
}

// --- passthrough (no caching) ---

// GetCountryByCode feeds the reconciler's diff-before-write comparison, which
// must see the stored value, not a cached one.
func (c *CachedStore) GetCountryByCode(ctx context.Context, code string) (*models.Country, error) {
	return c.inner.GetCountryByCode(ctx, code)
}

// --- helpers ---

func (c *CachedStore) invalidateChannelCaches(ctx context.Context, id int64) {
	c.invalidate(ctx, fmt.Sprintf("channel:%d", id))
	c.invalidatePattern(ctx, "channels:*", "bycat:*", "categories:*", "search:*")
}

// invalidate deletes exact cache keys, logging any errors.
func (c *CachedStore) invalidate(ctx context.Context, keys ...string) {
	if err := cache.Del(ctx, c.cache, keys...); err != nil && err != redis.Nil {
		log.Printf("cache: del %v: %v", keys, err)
	}
}

// invalidatePattern deletes all keys matching the given glob patterns.
func (c *CachedStore) invalidatePattern(ctx context.Context, patterns ...string) {
	for _, p := range patterns {
		if err := cache.DelPattern(ctx, c.cache, p); err != nil {
			log.Printf("cache: del pattern %s: %v", p, err)
		}
	}
}

// shortHash makes an arbitrary string (category name, search query) safe to
// embed in a cache key.
func shortHash(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", h[:8])
}
