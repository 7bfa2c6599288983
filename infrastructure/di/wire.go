//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"listingsvc/application/ports"
	"listingsvc/infrastructure/config"
	"listingsvc/infrastructure/messaging/inproc"
	"listingsvc/infrastructure/persistence/sqlite"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideCacheStore,
	ProvideDB,
	ProvideListingRepository,
	ProvideEventBus,
	ProvideListingService,
	ProvideDataCache,
	ProvideInvalidator,
	ProvideCollector,
	ProvideResponseCache,
	wire.Bind(new(ports.EventPublisher), new(*inproc.Bus)),
	wire.Bind(new(ports.ListingRepository), new(*sqlite.ListingRepository)),
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
