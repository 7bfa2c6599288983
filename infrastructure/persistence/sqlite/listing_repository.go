package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"listingsvc/domain/listing"
	pkgerrors "listingsvc/pkg/errors"
)

const createListingsTable = `
CREATE TABLE IF NOT EXISTS listings (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	price TEXT NOT NULL,
	location TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

// ListingRepository persists listings in SQLite. It is the source of truth
// for the collection; the cache layer only ever holds snapshots of it.
type ListingRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens the database at path and runs the schema migration. WAL and a
// busy timeout are set through _pragma DSN parameters, the syntax the
// modernc driver applies per connection.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, pkgerrors.NewRepositoryError("open", err)
	}

	if _, err := db.Exec(createListingsTable); err != nil {
		db.Close()
		return nil, pkgerrors.NewRepositoryError("migrate", err)
	}

	return db, nil
}

// NewListingRepository creates a repository over an opened database
func NewListingRepository(db *sql.DB, logger *zap.Logger) *ListingRepository {
	return &ListingRepository{db: db, logger: logger}
}

// FindAll retrieves the full collection, newest first
func (r *ListingRepository) FindAll(ctx context.Context) ([]*listing.Listing, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, price, location, created_at, updated_at
		 FROM listings ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, pkgerrors.NewRepositoryError("find_all", err)
	}
	defer rows.Close()

	listings := make([]*listing.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewRepositoryError("find_all", err)
	}

	return listings, nil
}

// FindByID retrieves a single listing
func (r *ListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*listing.Listing, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, price, location, created_at, updated_at
		 FROM listings WHERE id = ?`, id.String())

	return scanListing(row)
}

// Count returns the number of persisted listings
func (r *ListingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings`).Scan(&count); err != nil {
		return 0, pkgerrors.NewRepositoryError("count", err)
	}
	return count, nil
}

// Create persists a new listing
func (r *ListingRepository) Create(ctx context.Context, l *listing.Listing) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO listings (id, title, description, price, location, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.ID().String(), l.Title(), l.Description(), l.Price().String(), l.Location(),
		l.CreatedAt().UTC(), l.UpdatedAt().UTC(),
	)
	if err != nil {
		return pkgerrors.NewRepositoryError("create", err)
	}
	return nil
}

// Update persists changes to an existing listing
func (r *ListingRepository) Update(ctx context.Context, l *listing.Listing) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE listings SET title = ?, description = ?, price = ?, location = ?, updated_at = ?
		 WHERE id = ?`,
		l.Title(), l.Description(), l.Price().String(), l.Location(), l.UpdatedAt().UTC(),
		l.ID().String(),
	)
	if err != nil {
		return pkgerrors.NewRepositoryError("update", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return pkgerrors.NewNotFoundError("listing")
	}
	return nil
}

// Delete removes a listing
func (r *ListingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id.String())
	if err != nil {
		return pkgerrors.NewRepositoryError("delete", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return pkgerrors.NewNotFoundError("listing")
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanListing(row scanner) (*listing.Listing, error) {
	var (
		idStr, title, description, priceStr, location string
		createdAt, updatedAt                          time.Time
	)

	if err := row.Scan(&idStr, &title, &description, &priceStr, &location, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkgerrors.NewNotFoundError("listing")
		}
		return nil, pkgerrors.NewRepositoryError("scan", err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, pkgerrors.NewRepositoryError("scan", err)
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil, pkgerrors.NewRepositoryError("scan", err)
	}

	return listing.Reconstitute(id, title, description, price, location, createdAt, updatedAt), nil
}
