package pnw

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pnw_raid_finder/internal/app"
	"pnw_raid_finder/internal/config"

	"github.com/rs/zerolog/log"
)

// APIClient is the subset of the API client the caching wrapper covers
type APIClient interface {
	GetNation(ctx context.Context, nationID int) (*app.Nation, error)
	GetNationsInRange(ctx context.Context, minScore, maxScore float64) ([]app.Nation, error)
	GetTradePrices(ctx context.Context) (map[string]float64, error)
}

// SnapshotStore persists fetched batches between runs so a restart inside
// the TTL window reuses the last snapshot instead of refetching it.
type SnapshotStore interface {
	LoadNationBatch(key string) ([]app.Nation, time.Time, error)
	SaveNationBatch(key string, nations []app.Nation) error
	LoadPrices() (map[string]float64, time.Time, error)
	SavePrices(prices map[string]float64) error
}

// CacheConfig configures caching behavior per data class
type CacheConfig struct {
	// OwnNationTTL is how long to cache single-nation lookups
	OwnNationTTL time.Duration
	// NationBatchTTL is how long to cache a candidate batch
	NationBatchTTL time.Duration
	// TradePricesTTL is how long to cache market prices
	TradePricesTTL time.Duration
}

// DefaultCacheConfig returns sensible cache defaults
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		OwnNationTTL:   config.OwnNationTTL,
		NationBatchTTL: config.NationBatchTTL,
		TradePricesTTL: config.TradePricesTTL,
	}
}

// CachedClient wraps an APIClient with TTL caching, optionally backed by a
// persistent snapshot store.
type CachedClient struct {
	client APIClient
	config CacheConfig
	store  SnapshotStore
	mutex  sync.RWMutex

	// Cache entries
	nations map[int]*cachedNation
	batches map[string]*cachedBatch
	prices  *cachedPrices
}

type cachedNation struct {
	data      *app.Nation
	timestamp time.Time
}

type cachedBatch struct {
	data      []app.Nation
	timestamp time.Time
}

type cachedPrices struct {
	data      map[string]float64
	timestamp time.Time
}

// NewCachedClient creates a caching wrapper around an APIClient. store may
// be nil for a purely in-memory cache.
func NewCachedClient(client APIClient, store SnapshotStore) *CachedClient {
	return &CachedClient{
		client:  client,
		config:  DefaultCacheConfig(),
		store:   store,
		nations: make(map[int]*cachedNation),
		batches: make(map[string]*cachedBatch),
	}
}

// GetNation returns a cached nation or fetches fresh data
func (c *CachedClient) GetNation(ctx context.Context, nationID int) (*app.Nation, error) {
	c.mutex.RLock()
	cached := c.nations[nationID]
	c.mutex.RUnlock()

	if cached != nil && time.Since(cached.timestamp) < c.config.OwnNationTTL {
		log.Debug().Int("nation_id", nationID).Msg("Using cached nation")
		return cached.data, nil
	}

	nation, err := c.client.GetNation(ctx, nationID)
	if err != nil {
		return nil, err
	}

	c.mutex.Lock()
	c.nations[nationID] = &cachedNation{data: nation, timestamp: time.Now()}
	c.mutex.Unlock()

	return nation, nil
}

// GetNationsInRange returns a cached candidate batch or fetches fresh data.
// Lookup order is memory, then the persistent store, then the API.
func (c *CachedClient) GetNationsInRange(ctx context.Context, minScore, maxScore float64) ([]app.Nation, error) {
	key := batchKey(minScore, maxScore)

	c.mutex.RLock()
	cached := c.batches[key]
	c.mutex.RUnlock()

	if cached != nil && time.Since(cached.timestamp) < c.config.NationBatchTTL {
		log.Debug().Str("batch", key).Msg("Using cached nation batch")
		return cached.data, nil
	}

	if c.store != nil {
		nations, storedAt, err := c.store.LoadNationBatch(key)
		if err == nil && time.Since(storedAt) < c.config.NationBatchTTL {
			log.Debug().
				Str("batch", key).
				Time("stored_at", storedAt).
				Msg("Using persisted nation batch")
			c.rememberBatch(key, nations, storedAt)
			return nations, nil
		}
	}

	nations, err := c.client.GetNationsInRange(ctx, minScore, maxScore)
	if err != nil {
		return nil, err
	}

	c.rememberBatch(key, nations, time.Now())
	if c.store != nil {
		if err := c.store.SaveNationBatch(key, nations); err != nil {
			log.Warn().Err(err).Str("batch", key).Msg("Failed to persist nation batch")
		}
	}

	return nations, nil
}

// GetTradePrices returns cached market prices or fetches fresh data
func (c *CachedClient) GetTradePrices(ctx context.Context) (map[string]float64, error) {
	c.mutex.RLock()
	cached := c.prices
	c.mutex.RUnlock()

	if cached != nil && time.Since(cached.timestamp) < c.config.TradePricesTTL {
		log.Debug().Msg("Using cached trade prices")
		return cached.data, nil
	}

	if c.store != nil {
		prices, storedAt, err := c.store.LoadPrices()
		if err == nil && time.Since(storedAt) < c.config.TradePricesTTL {
			log.Debug().Time("stored_at", storedAt).Msg("Using persisted trade prices")
			c.mutex.Lock()
			c.prices = &cachedPrices{data: prices, timestamp: storedAt}
			c.mutex.Unlock()
			return prices, nil
		}
	}

	prices, err := c.client.GetTradePrices(ctx)
	if err != nil {
		return nil, err
	}

	c.mutex.Lock()
	c.prices = &cachedPrices{data: prices, timestamp: time.Now()}
	c.mutex.Unlock()

	if c.store != nil {
		if err := c.store.SavePrices(prices); err != nil {
			log.Warn().Err(err).Msg("Failed to persist trade prices")
		}
	}

	return prices, nil
}

// ClearCache drops every in-memory entry. The persistent store is left
// alone; its entries age out through their stored-at timestamps.
func (c *CachedClient) ClearCache() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.nations = make(map[int]*cachedNation)
	c.batches = make(map[string]*cachedBatch)
	c.prices = nil

	log.Debug().Msg("API cache cleared")
}

func (c *CachedClient) rememberBatch(key string, nations []app.Nation, at time.Time) {
	c.mutex.Lock()
	c.batches[key] = &cachedBatch{data: nations, timestamp: at}
	c.mutex.Unlock()
}

func batchKey(minScore, maxScore float64) string {
	return fmt.Sprintf("range:%.2f:%.2f", minScore, maxScore)
}
