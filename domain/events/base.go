package events

import (
	"time"

	"listingsvc/domain/listing"
)

// DomainEvent is the base interface for all domain events.
// Events represent something that has happened in the past.
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// Listing Events
//
// Exactly three mutation kinds exist. Publishers emit them only after the
// mutation has been durably committed to the persistent store.

// ListingCreated is raised when a new listing is created
type ListingCreated struct {
	BaseEvent
	Listing listing.Snapshot `json:"listing"`
}

// NewListingCreated creates a ListingCreated event
func NewListingCreated(snapshot listing.Snapshot, timestamp time.Time) ListingCreated {
	return ListingCreated{
		BaseEvent: BaseEvent{
			AggregateID: snapshot.ID,
			EventType:   "listing.created",
			Timestamp:   timestamp,
		},
		Listing: snapshot,
	}
}

// ListingUpdated is raised when an existing listing is updated
type ListingUpdated struct {
	BaseEvent
	Listing listing.Snapshot `json:"listing"`
}

// NewListingUpdated creates a ListingUpdated event
func NewListingUpdated(snapshot listing.Snapshot, timestamp time.Time) ListingUpdated {
	return ListingUpdated{
		BaseEvent: BaseEvent{
			AggregateID: snapshot.ID,
			EventType:   "listing.updated",
			Timestamp:   timestamp,
		},
		Listing: snapshot,
	}
}

// ListingDeleted is raised when a listing is deleted
type ListingDeleted struct {
	BaseEvent
	ListingID string `json:"listing_id"`
}

// NewListingDeleted creates a ListingDeleted event
func NewListingDeleted(listingID string, timestamp time.Time) ListingDeleted {
	return ListingDeleted{
		BaseEvent: BaseEvent{
			AggregateID: listingID,
			EventType:   "listing.deleted",
			Timestamp:   timestamp,
		},
		ListingID: listingID,
	}
}
