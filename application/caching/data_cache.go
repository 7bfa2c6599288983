package caching

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"listingsvc/application/ports"
	"listingsvc/domain/listing"
)

// AllListingsKey is the single cache key under which the whole collection
// is stored. The invalidator and the HTTP layer reference this constant;
// the literal appears nowhere else.
const AllListingsKey = "all_records"

// DefaultDataCacheTTL bounds how long a populated entry may outlive a
// missed invalidation signal.
const DefaultDataCacheTTL = time.Hour

// DataCache is the cache-aside read path for the listing collection: check
// the cache first, and on a miss load from the repository and populate the
// cache with a TTL.
//
// The cache layer is never allowed to turn into a correctness failure. A
// failing cache read or write degrades the request to a repository read; a
// failing repository propagates, since it is the source of truth.
//
// Between the repository read and the cache write of a miss, a concurrent
// mutation can land, leaving the freshly written entry stale until the next
// invalidation or TTL expiry. That window is accepted; there is no
// check-then-populate lock and concurrent misses may each query the
// repository independently.
type DataCache struct {
	store  ports.CacheStore
	repo   ports.ListingRepository
	ttl    time.Duration
	logger *zap.Logger
}

// NewDataCache creates a data cache with the given TTL. A non-positive TTL
// falls back to the default.
func NewDataCache(store ports.CacheStore, repo ports.ListingRepository, ttl time.Duration, logger *zap.Logger) *DataCache {
	if ttl <= 0 {
		ttl = DefaultDataCacheTTL
	}
	return &DataCache{
		store:  store,
		repo:   repo,
		ttl:    ttl,
		logger: logger,
	}
}

// TTL returns the configured entry lifetime
func (c *DataCache) TTL() time.Duration {
	return c.ttl
}

// Peek reports whether the collection entry is currently cached and how
// many snapshots it holds, without falling back to the repository. The
// lookup counts against the engine's hit/miss statistics like any other.
func (c *DataCache) Peek(ctx context.Context) (bool, int) {
	raw, found, err := c.store.Get(ctx, AllListingsKey)
	if err != nil || !found {
		return false, 0
	}

	var snapshots []listing.Snapshot
	if err := json.Unmarshal(raw, &snapshots); err != nil {
		return false, 0
	}
	return true, len(snapshots)
}

// GetAll returns every listing snapshot, reporting whether the cache served
// the read. An empty collection is cached as an empty sequence and counts
// as a hit on subsequent reads.
func (c *DataCache) GetAll(ctx context.Context) ([]listing.Snapshot, bool, error) {
	raw, found, err := c.store.Get(ctx, AllListingsKey)
	if err != nil {
		// Unreachable cache degrades to always-miss.
		c.logger.Warn("cache read failed, falling back to repository",
			zap.String("key", AllListingsKey),
			zap.Error(err),
		)
	}
	if found {
		var snapshots []listing.Snapshot
		if err := json.Unmarshal(raw, &snapshots); err == nil {
			c.logger.Debug("cache hit",
				zap.String("key", AllListingsKey),
				zap.Int("count", len(snapshots)),
			)
			return snapshots, true, nil
		}
		c.logger.Warn("discarding undecodable cache entry",
			zap.String("key", AllListingsKey),
			zap.Error(err),
		)
	}

	listings, err := c.repo.FindAll(ctx)
	if err != nil {
		return nil, false, err
	}

	snapshots := make([]listing.Snapshot, 0, len(listings))
	for _, l := range listings {
		snapshots = append(snapshots, l.Snapshot())
	}

	if data, err := json.Marshal(snapshots); err == nil {
		if err := c.store.Set(ctx, AllListingsKey, data, c.ttl); err != nil {
			// The fetched data is still returned; the next read just
			// misses again.
			c.logger.Warn("cache write failed",
				zap.String("key", AllListingsKey),
				zap.Error(err),
			)
		} else {
			c.logger.Debug("cache populated",
				zap.String("key", AllListingsKey),
				zap.Int("count", len(snapshots)),
				zap.Duration("ttl", c.ttl),
			)
		}
	}

	return snapshots, false, nil
}
