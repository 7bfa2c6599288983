package listings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"listingsvc/application/ports"
	"listingsvc/domain/events"
	"listingsvc/domain/listing"
)

// Service owns the listing mutations. Every successful write publishes the
// matching mutation event, strictly after the repository has committed, so
// subscribers (the cache invalidator) can never observe an uncommitted
// change.
type Service struct {
	repo      ports.ListingRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewService creates a listing service
func NewService(repo ports.ListingRepository, publisher ports.EventPublisher, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateParams holds the attributes of a new listing
type CreateParams struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Location    string
}

// Create persists a new listing and publishes ListingCreated
func (s *Service) Create(ctx context.Context, params CreateParams) (*listing.Listing, error) {
	l, err := listing.NewListing(params.Title, params.Description, params.Price, params.Location)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("listing created",
		zap.String("listingID", l.ID().String()),
		zap.String("title", l.Title()),
	)
	s.publisher.Publish(ctx, events.NewListingCreated(l.Snapshot(), time.Now().UTC()))

	return l, nil
}

// UpdateParams holds the changed attributes; nil fields are left untouched
type UpdateParams struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	Location    *string
}

// Update applies changes to an existing listing and publishes ListingUpdated
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*listing.Listing, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := l.Update(params.Title, params.Description, params.Price, params.Location); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("listing updated", zap.String("listingID", l.ID().String()))
	s.publisher.Publish(ctx, events.NewListingUpdated(l.Snapshot(), time.Now().UTC()))

	return l, nil
}

// Delete removes a listing and publishes ListingDeleted
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("listing deleted", zap.String("listingID", id.String()))
	s.publisher.Publish(ctx, events.NewListingDeleted(id.String(), time.Now().UTC()))

	return nil
}

// Count returns the number of persisted listings
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
