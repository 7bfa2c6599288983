package di

import (
	"database/sql"

	"go.uber.org/zap"

	"listingsvc/application/caching"
	"listingsvc/application/listings"
	"listingsvc/application/ports"
	"listingsvc/infrastructure/config"
	"listingsvc/infrastructure/messaging/inproc"
	"listingsvc/interfaces/http/rest/middleware"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	CacheStore    ports.CacheStore
	DB            *sql.DB
	EventBus      *inproc.Bus
	Service       *listings.Service
	DataCache     *caching.DataCache
	Invalidator   *caching.Invalidator
	Collector     *caching.Collector
	ResponseCache *middleware.ResponseCache
}

// Close releases the container's long-lived resources
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
