package di

import (
	"database/sql"

	"go.uber.org/zap"

	"listingsvc/application/caching"
	"listingsvc/application/listings"
	"listingsvc/application/ports"
	"listingsvc/infrastructure/cache"
	"listingsvc/infrastructure/config"
	"listingsvc/infrastructure/messaging/inproc"
	"listingsvc/infrastructure/persistence/sqlite"
	"listingsvc/interfaces/http/rest/middleware"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideCacheStore creates the configured cache store. Redis serves
// production; the in-memory store exists for development and tests.
func ProvideCacheStore(cfg *config.Config, logger *zap.Logger) ports.CacheStore {
	if cfg.CacheBackend == "memory" {
		logger.Info("using in-memory cache store")
		return cache.NewMemoryStore()
	}

	logger.Info("using redis cache store", zap.String("addr", cfg.RedisAddr))
	return cache.NewRedisStore(cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
}

// ProvideDB opens the listings database and runs migrations
func ProvideDB(cfg *config.Config) (*sql.DB, error) {
	return sqlite.Open(cfg.DatabasePath)
}

// ProvideListingRepository creates the listing repository
func ProvideListingRepository(db *sql.DB, logger *zap.Logger) *sqlite.ListingRepository {
	return sqlite.NewListingRepository(db, logger)
}

// ProvideEventBus creates the in-process event bus
func ProvideEventBus(logger *zap.Logger) *inproc.Bus {
	return inproc.NewBus(logger)
}

// ProvideListingService creates the mutation-owning listing service
func ProvideListingService(repo ports.ListingRepository, publisher ports.EventPublisher, logger *zap.Logger) *listings.Service {
	return listings.NewService(repo, publisher, logger)
}

// ProvideDataCache creates the cache-aside data cache
func ProvideDataCache(store ports.CacheStore, repo ports.ListingRepository, cfg *config.Config, logger *zap.Logger) *caching.DataCache {
	return caching.NewDataCache(store, repo, cfg.DataCacheTTL, logger)
}

// ProvideInvalidator creates the invalidator and subscribes it to the bus,
// so invalidation is armed before the first request is served.
func ProvideInvalidator(store ports.CacheStore, bus *inproc.Bus, logger *zap.Logger) *caching.Invalidator {
	invalidator := caching.NewInvalidator(store, logger)
	bus.Subscribe(invalidator)
	return invalidator
}

// ProvideCollector creates the cache metrics collector
func ProvideCollector(store ports.CacheStore) *caching.Collector {
	return caching.NewCollector(store)
}

// ProvideResponseCache creates the rendered-response cache middleware
func ProvideResponseCache(store ports.CacheStore, cfg *config.Config, logger *zap.Logger) *middleware.ResponseCache {
	return middleware.NewResponseCache(store, cfg.ResponseCacheTTL, logger)
}
