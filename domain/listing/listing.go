package listing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "listingsvc/pkg/errors"
)

// Listing is the entity representing a single property listing.
// The persistent store owns the authoritative copy; everything the cache
// layer sees is a Snapshot, never the entity itself.
type Listing struct {
	id          uuid.UUID
	title       string
	description string
	price       decimal.Decimal
	location    string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewListing creates a listing with validated attributes.
func NewListing(title, description string, price decimal.Decimal, location string) (*Listing, error) {
	if strings.TrimSpace(title) == "" {
		return nil, pkgerrors.NewValidationError("title cannot be empty")
	}
	if strings.TrimSpace(location) == "" {
		return nil, pkgerrors.NewValidationError("location cannot be empty")
	}
	if price.IsNegative() {
		return nil, pkgerrors.NewValidationError("price cannot be negative")
	}

	now := time.Now().UTC()
	return &Listing{
		id:          uuid.New(),
		title:       title,
		description: description,
		price:       price,
		location:    location,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstitute rebuilds a listing from persisted state. It bypasses the
// constructor validation because stored rows are already valid.
func Reconstitute(id uuid.UUID, title, description string, price decimal.Decimal, location string, createdAt, updatedAt time.Time) *Listing {
	return &Listing{
		id:          id,
		title:       title,
		description: description,
		price:       price,
		location:    location,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (l *Listing) ID() uuid.UUID          { return l.id }
func (l *Listing) Title() string          { return l.title }
func (l *Listing) Description() string    { return l.description }
func (l *Listing) Price() decimal.Decimal { return l.price }
func (l *Listing) Location() string       { return l.location }
func (l *Listing) CreatedAt() time.Time   { return l.createdAt }
func (l *Listing) UpdatedAt() time.Time   { return l.updatedAt }

// Update applies the non-nil fields and revalidates the result.
func (l *Listing) Update(title, description *string, price *decimal.Decimal, location *string) error {
	if title != nil {
		if strings.TrimSpace(*title) == "" {
			return pkgerrors.NewValidationError("title cannot be empty")
		}
		l.title = *title
	}
	if description != nil {
		l.description = *description
	}
	if price != nil {
		if price.IsNegative() {
			return pkgerrors.NewValidationError("price cannot be negative")
		}
		l.price = *price
	}
	if location != nil {
		if strings.TrimSpace(*location) == "" {
			return pkgerrors.NewValidationError("location cannot be empty")
		}
		l.location = *location
	}
	l.updatedAt = time.Now().UTC()
	return nil
}

// Snapshot is the primitive-typed, serializable view of a listing. Cached
// values are sequences of snapshots so they survive independently of any
// database session and cannot be mutated through a live entity reference.
//
// JSON shape: price marshals as a decimal string, created_at as RFC 3339.
type Snapshot struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Location    string          `json:"location"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Snapshot converts the entity into its cacheable view.
func (l *Listing) Snapshot() Snapshot {
	return Snapshot{
		ID:          l.id.String(),
		Title:       l.title,
		Description: l.description,
		Price:       l.price,
		Location:    l.location,
		CreatedAt:   l.createdAt,
	}
}
