package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"listingsvc/domain/events"
	"listingsvc/domain/listing"
)

// CacheStore abstracts the key/value cache engine with TTL support.
// Implementations are shared, concurrency-safe resources; callers never
// hold locks around them. Constructed once at process start and injected
// so tests can substitute an in-memory fake.
type CacheStore interface {
	// Get returns the stored value and whether the key was present.
	// An expired or missing key is (nil, false, nil); only an unreachable
	// engine produces an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value under key for the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key and reports whether it was present. Deleting an
	// absent key is not an error.
	Delete(ctx context.Context, key string) (bool, error)

	// Stats returns the engine's cumulative, instance-wide counters.
	Stats(ctx context.Context) (CacheStats, error)
}

// CacheStats holds the cache engine's global statistics. The hit and miss
// counters span every key ever accessed on the instance, not just the keys
// this service owns.
type CacheStats struct {
	Hits             int64
	Misses           int64
	UsedMemory       int64
	UsedMemoryHuman  string
	ConnectedClients int64
	TotalCommands    int64
}

// ListingRepository defines the interface for listing persistence.
// This is a port in hexagonal architecture - the domain doesn't know about
// the implementation. It is the source of truth; its failures are never
// masked by the cache layer.
type ListingRepository interface {
	// FindAll retrieves the full collection, newest first
	FindAll(ctx context.Context) ([]*listing.Listing, error)

	// FindByID retrieves a single listing
	FindByID(ctx context.Context, id uuid.UUID) (*listing.Listing, error)

	// Count returns the number of persisted listings
	Count(ctx context.Context) (int64, error)

	// Create persists a new listing
	Create(ctx context.Context, l *listing.Listing) error

	// Update persists changes to an existing listing
	Update(ctx context.Context, l *listing.Listing) error

	// Delete removes a listing
	Delete(ctx context.Context, id uuid.UUID) error
}

// EventHandler reacts to a published domain event. Handler failures must
// stay local to the handler; the mutation that triggered the event has
// already committed.
type EventHandler interface {
	Handle(ctx context.Context, event events.DomainEvent)
}

// EventPublisher publishes domain events after durable commits
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent)
}

// EventSubscriber registers handlers for published events
type EventSubscriber interface {
	Subscribe(handler EventHandler)
}
