package integration

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"listingsvc/application/caching"
	"listingsvc/application/listings"
	"listingsvc/application/ports"
	"listingsvc/domain/listing"
	"listingsvc/infrastructure/cache"
	"listingsvc/infrastructure/messaging/inproc"
	"listingsvc/infrastructure/persistence/sqlite"
)

// countingRepo decorates the real repository so tests can assert exactly
// how often the database is consulted.
type countingRepo struct {
	ports.ListingRepository
	findAllCalls atomic.Int64
}

func (r *countingRepo) FindAll(ctx context.Context) ([]*listing.Listing, error) {
	r.findAllCalls.Add(1)
	return r.ListingRepository.FindAll(ctx)
}

type stack struct {
	store       *cache.MemoryStore
	repo        *countingRepo
	service     *listings.Service
	dataCache   *caching.DataCache
	invalidator *caching.Invalidator
	collector   *caching.Collector
}

func newStack(t *testing.T) *stack {
	t.Helper()
	logger := zap.NewNop()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "listings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := cache.NewMemoryStore()
	repo := &countingRepo{ListingRepository: sqlite.NewListingRepository(db, logger)}

	bus := inproc.NewBus(logger)
	service := listings.NewService(repo, bus, logger)
	invalidator := caching.NewInvalidator(store, logger)
	bus.Subscribe(invalidator)

	return &stack{
		store:       store,
		repo:        repo,
		service:     service,
		dataCache:   caching.NewDataCache(store, repo, time.Hour, logger),
		invalidator: invalidator,
		collector:   caching.NewCollector(store),
	}
}

func (s *stack) create(t *testing.T, ctx context.Context, title, price string) *listing.Listing {
	t.Helper()
	p, err := decimal.NewFromString(price)
	require.NoError(t, err)
	l, err := s.service.Create(ctx, listings.CreateParams{
		Title:    title,
		Price:    p,
		Location: "Riverside",
	})
	require.NoError(t, err)
	return l
}

func TestCreateIsVisibleAfterInvalidation(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)

	s.create(t, ctx, "First", "100.00")

	// Warm the cache.
	snapshots, hit, err := s.dataCache.GetAll(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, snapshots, 1)
	assert.Equal(t, int64(1), s.repo.findAllCalls.Load())

	snapshots, hit, err = s.dataCache.GetAll(ctx)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Len(t, snapshots, 1)
	assert.Equal(t, int64(1), s.repo.findAllCalls.Load(), "hit must not query the database")

	// The mutation event clears the entry synchronously.
	created := s.create(t, ctx, "Second", "200.00")

	snapshots, hit, err = s.dataCache.GetAll(ctx)
	require.NoError(t, err)
	assert.False(t, hit, "creation must have invalidated the collection entry")
	assert.Len(t, snapshots, 2)
	assert.Equal(t, int64(2), s.repo.findAllCalls.Load(), "exactly one reload after invalidation")

	titles := []string{snapshots[0].Title, snapshots[1].Title}
	assert.Contains(t, titles, created.Title())
}

func TestUpdateAndDeleteInvalidate(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	created := s.create(t, ctx, "Mutable", "300.00")

	_, _, err := s.dataCache.GetAll(ctx)
	require.NoError(t, err)

	newTitle := "Mutable, Revised"
	_, err = s.service.Update(ctx, created.ID(), listings.UpdateParams{Title: &newTitle})
	require.NoError(t, err)

	snapshots, hit, err := s.dataCache.GetAll(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "Mutable, Revised", snapshots[0].Title)

	require.NoError(t, s.service.Delete(ctx, created.ID()))

	snapshots, hit, err = s.dataCache.GetAll(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Empty(t, snapshots)
}

func TestManualInvalidationForcesReload(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	s.create(t, ctx, "Steady", "400.00")

	_, _, err := s.dataCache.GetAll(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), s.repo.findAllCalls.Load())

	removed, err := s.invalidator.Invalidate(ctx)
	require.NoError(t, err)
	assert.True(t, removed)

	_, hit, err := s.dataCache.GetAll(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, int64(2), s.repo.findAllCalls.Load())

	removed, err = s.invalidator.Invalidate(ctx)
	require.NoError(t, err)
	assert.True(t, removed, "the reload repopulated the entry")
}

func TestMetricsReflectTraffic(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	s.create(t, ctx, "Tracked", "500.00")

	// 1 miss, then 4 hits.
	for i := 0; i < 5; i++ {
		_, _, err := s.dataCache.GetAll(ctx)
		require.NoError(t, err)
	}

	snap, err := s.collector.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), snap.Hits)
	assert.Equal(t, int64(1), snap.Misses)
	assert.Equal(t, int64(5), snap.TotalRequests)
	assert.InDelta(t, 0.8, snap.HitRatio, 1e-9)
	assert.Equal(t, caching.StatusExcellent, snap.Status)
}
