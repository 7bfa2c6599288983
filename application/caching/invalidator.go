package caching

import (
	"context"

	"go.uber.org/zap"

	"listingsvc/domain/events"
)

// Invalidator deletes the collection cache entry whenever a listing
// mutation event arrives. Every mutation kind clears the whole entry;
// invalidation is always a full delete because the cached value models the
// collection as one unit.
//
// The publisher only emits events after the mutation has committed, so a
// failed deletion here can only leave a stale entry behind until its TTL
// expires. That failure is logged and absorbed; it never reaches the
// business operation that triggered it.
type Invalidator struct {
	store  deleter
	logger *zap.Logger
}

// deleter is the slice of the cache store the invalidator needs
type deleter interface {
	Delete(ctx context.Context, key string) (bool, error)
}

// NewInvalidator creates an invalidator over the given cache store
func NewInvalidator(store deleter, logger *zap.Logger) *Invalidator {
	return &Invalidator{store: store, logger: logger}
}

// Handle implements ports.EventHandler. Non-listing events are ignored.
func (i *Invalidator) Handle(ctx context.Context, event events.DomainEvent) {
	switch event.(type) {
	case events.ListingCreated, events.ListingUpdated, events.ListingDeleted:
	default:
		return
	}

	removed, err := i.store.Delete(ctx, AllListingsKey)
	if err != nil {
		i.logger.Error("cache invalidation failed",
			zap.String("key", AllListingsKey),
			zap.String("eventType", event.GetEventType()),
			zap.String("listingID", event.GetAggregateID()),
			zap.Error(err),
		)
		return
	}

	if removed {
		i.logger.Info("cache invalidated",
			zap.String("key", AllListingsKey),
			zap.String("eventType", event.GetEventType()),
			zap.String("listingID", event.GetAggregateID()),
		)
	} else {
		// Deleting an absent key is normal; logged only for observability.
		i.logger.Debug("cache invalidation found no entry",
			zap.String("key", AllListingsKey),
			zap.String("eventType", event.GetEventType()),
			zap.String("listingID", event.GetAggregateID()),
		)
	}
}

// Invalidate is the manual entry point, for administrative use and bulk
// operations that bypass the event flow. It reports whether an entry was
// actually removed.
func (i *Invalidator) Invalidate(ctx context.Context) (bool, error) {
	removed, err := i.store.Delete(ctx, AllListingsKey)
	if err != nil {
		i.logger.Error("manual cache invalidation failed",
			zap.String("key", AllListingsKey),
			zap.Error(err),
		)
		return false, err
	}

	if removed {
		i.logger.Info("manual cache invalidation cleared entry", zap.String("key", AllListingsKey))
	} else {
		i.logger.Info("manual cache invalidation found no entry", zap.String("key", AllListingsKey))
	}
	return removed, nil
}
