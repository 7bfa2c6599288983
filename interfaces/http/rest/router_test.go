package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"listingsvc/application/caching"
	"listingsvc/application/listings"
	"listingsvc/application/ports"
	"listingsvc/infrastructure/cache"
	"listingsvc/infrastructure/config"
	"listingsvc/infrastructure/messaging/inproc"
	"listingsvc/infrastructure/persistence/sqlite"
	"listingsvc/interfaces/http/rest"
	"listingsvc/interfaces/http/rest/middleware"
	pkgerrors "listingsvc/pkg/errors"
)

// unavailableStatsStore is a working store whose statistics source is down
type unavailableStatsStore struct {
	*cache.MemoryStore
}

func (s unavailableStatsStore) Stats(ctx context.Context) (ports.CacheStats, error) {
	return ports.CacheStats{}, pkgerrors.NewStatsUnavailableError(context.DeadlineExceeded)
}

func newTestServer(t *testing.T, store ports.CacheStore) http.Handler {
	t.Helper()
	logger := zap.NewNop()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "listings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := sqlite.NewListingRepository(db, logger)

	bus := inproc.NewBus(logger)
	service := listings.NewService(repo, bus, logger)
	dataCache := caching.NewDataCache(store, repo, time.Hour, logger)
	invalidator := caching.NewInvalidator(store, logger)
	bus.Subscribe(invalidator)
	collector := caching.NewCollector(store)
	responseCache := middleware.NewResponseCache(store, time.Minute, logger)

	cfg := &config.Config{
		Environment:      "test",
		CacheBackend:     "memory",
		DataCacheTTL:     time.Hour,
		ResponseCacheTTL: time.Minute,
		EnableCORS:       false,
	}

	return rest.NewRouter(cfg, dataCache, invalidator, collector, service, responseCache, logger).Setup()
}

func do(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func createListing(t *testing.T, h http.Handler, title, price string) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/v1/listings", map[string]string{
		"title":    title,
		"price":    price,
		"location": "Harborview",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id, _ := decodeBody(t, rec)["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(t, cache.NewMemoryStore())

	rec := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestListEndpoint(t *testing.T) {
	t.Run("empty collection has the full response shape", func(t *testing.T) {
		h := newTestServer(t, cache.NewMemoryStore())

		rec := do(t, h, http.MethodGet, "/api/v1/listings", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, float64(0), body["count"])
		assert.Equal(t, []interface{}{}, body["items"])

		info, ok := body["cache_info"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "all_records", info["key"])
		assert.Equal(t, "database", info["source"])
		assert.Equal(t, float64(3600), info["ttl_seconds"])
	})

	t.Run("second request is served by the response cache", func(t *testing.T) {
		h := newTestServer(t, cache.NewMemoryStore())
		createListing(t, h, "Pier House", "540000.00")

		first := do(t, h, http.MethodGet, "/api/v1/listings", nil)
		require.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, "MISS", first.Header().Get("X-Response-Cache"))

		second := do(t, h, http.MethodGet, "/api/v1/listings", nil)
		require.Equal(t, http.StatusOK, second.Code)
		assert.Equal(t, "HIT", second.Header().Get("X-Response-Cache"))
		assert.Equal(t, first.Body.String(), second.Body.String())
	})

	t.Run("cached response outlives a data-cache invalidation", func(t *testing.T) {
		h := newTestServer(t, cache.NewMemoryStore())
		createListing(t, h, "Old Mill", "150000")

		before := do(t, h, http.MethodGet, "/api/v1/listings", nil)
		require.Equal(t, http.StatusOK, before.Code)

		// The mutation invalidates the data cache but not the rendered
		// response, which only expires by TTL.
		createListing(t, h, "Water Tower", "95000")

		stale := do(t, h, http.MethodGet, "/api/v1/listings", nil)
		assert.Equal(t, "HIT", stale.Header().Get("X-Response-Cache"))
		assert.Equal(t, float64(1), decodeBody(t, stale)["count"])

		fresh := do(t, h, http.MethodGet, "/api/v1/listings/raw", nil)
		assert.Equal(t, float64(2), decodeBody(t, fresh)["count"])
	})

	t.Run("price marshals as a decimal string", func(t *testing.T) {
		h := newTestServer(t, cache.NewMemoryStore())
		createListing(t, h, "Pier House", "540000.00")

		rec := do(t, h, http.MethodGet, "/api/v1/listings", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		items := decodeBody(t, rec)["items"].([]interface{})
		require.Len(t, items, 1)
		item := items[0].(map[string]interface{})
		assert.Equal(t, "540000.00", item["price"])
		assert.Equal(t, "Pier House", item["title"])
	})
}

func TestRawListEndpoint(t *testing.T) {
	h := newTestServer(t, cache.NewMemoryStore())
	createListing(t, h, "Canal View", "395000")

	t.Run("first read misses, second hits", func(t *testing.T) {
		first := do(t, h, http.MethodGet, "/api/v1/listings/raw", nil)
		require.Equal(t, http.StatusOK, first.Code)
		info := decodeBody(t, first)["cache_info"].(map[string]interface{})
		assert.Equal(t, false, info["hit"])
		assert.Equal(t, "database", info["source"])

		second := do(t, h, http.MethodGet, "/api/v1/listings/raw", nil)
		require.Equal(t, http.StatusOK, second.Code)
		info = decodeBody(t, second)["cache_info"].(map[string]interface{})
		assert.Equal(t, true, info["hit"])
		assert.Equal(t, "cache", info["source"])
	})

	t.Run("never passes through the response cache", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/v1/listings/raw", nil)
		assert.Empty(t, rec.Header().Get("X-Response-Cache"))
	})
}

func TestMutationsInvalidate(t *testing.T) {
	h := newTestServer(t, cache.NewMemoryStore())

	// Warm the data cache, then mutate.
	do(t, h, http.MethodGet, "/api/v1/listings/raw", nil)
	id := createListing(t, h, "New Build", "720000")

	t.Run("create is visible on the next raw read", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/v1/listings/raw", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, float64(1), body["count"])
		info := body["cache_info"].(map[string]interface{})
		assert.Equal(t, false, info["hit"], "mutation must have invalidated the entry")
	})

	t.Run("update is visible on the next raw read", func(t *testing.T) {
		rec := do(t, h, http.MethodPut, "/api/v1/listings/"+id, map[string]string{"title": "New Build, Reduced"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		list := do(t, h, http.MethodGet, "/api/v1/listings/raw", nil)
		items := decodeBody(t, list)["items"].([]interface{})
		require.Len(t, items, 1)
		assert.Equal(t, "New Build, Reduced", items[0].(map[string]interface{})["title"])
	})

	t.Run("delete is visible on the next raw read", func(t *testing.T) {
		rec := do(t, h, http.MethodDelete, "/api/v1/listings/"+id, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		list := do(t, h, http.MethodGet, "/api/v1/listings/raw", nil)
		assert.Equal(t, float64(0), decodeBody(t, list)["count"])
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		rec := do(t, h, http.MethodDelete, "/api/v1/listings/2a9f0f8e-1111-4aaa-bbbb-0123456789ab", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		rec := do(t, h, http.MethodDelete, "/api/v1/listings/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing required fields are rejected", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/v1/listings", map[string]string{"title": "No Price"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown body fields are rejected", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/v1/listings", map[string]string{
			"title":    "Sneaky",
			"price":    "1000",
			"location": "Nowhere",
			"surprise": "field",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCacheStatsEndpoint(t *testing.T) {
	t.Run("reports engine counters and derived analysis", func(t *testing.T) {
		h := newTestServer(t, cache.NewMemoryStore())
		createListing(t, h, "Rowhouse", "260000")

		// One miss then one hit on the collection key.
		do(t, h, http.MethodGet, "/api/v1/listings/raw", nil)
		do(t, h, http.MethodGet, "/api/v1/listings/raw", nil)

		rec := do(t, h, http.MethodGet, "/api/v1/cache/stats", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "all_records", body["cache_key"])
		assert.Equal(t, float64(1), body["database_count"])

		raw := body["raw_metrics"].(map[string]interface{})
		assert.GreaterOrEqual(t, raw["keyspace_hits"], float64(1))
		assert.GreaterOrEqual(t, raw["keyspace_misses"], float64(1))

		analysis := body["performance_analysis"].(map[string]interface{})
		assert.Contains(t, []interface{}{"excellent", "good", "fair", "poor"}, analysis["performance_status"])
		ratio := analysis["hit_ratio"].(float64)
		assert.GreaterOrEqual(t, ratio, 0.0)
		assert.LessOrEqual(t, ratio, 1.0)

		collection := body["collection"].(map[string]interface{})
		assert.Equal(t, true, collection["is_cached"])
		assert.Equal(t, float64(1), collection["cached_count"])

		metadata := body["metadata"].(map[string]interface{})
		collectedAt, _ := metadata["collected_at"].(string)
		_, err := time.Parse(time.RFC3339, collectedAt)
		assert.NoError(t, err)
	})

	t.Run("cold cache reports the collection as absent", func(t *testing.T) {
		h := newTestServer(t, cache.NewMemoryStore())

		rec := do(t, h, http.MethodGet, "/api/v1/cache/stats", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		collection := decodeBody(t, rec)["collection"].(map[string]interface{})
		assert.Equal(t, false, collection["is_cached"])
		assert.Equal(t, float64(0), collection["cached_count"])
	})

	t.Run("unreachable statistics source is 503", func(t *testing.T) {
		h := newTestServer(t, unavailableStatsStore{cache.NewMemoryStore()})

		rec := do(t, h, http.MethodGet, "/api/v1/cache/stats", nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "unavailable", body["status"])
		assert.Equal(t, "STATS_UNAVAILABLE", body["error"])
	})
}

func TestCacheInvalidateEndpoint(t *testing.T) {
	h := newTestServer(t, cache.NewMemoryStore())

	t.Run("only POST is accepted", func(t *testing.T) {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			rec := do(t, h, method, "/api/v1/cache/invalidate", nil)
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		}
	})

	t.Run("reports whether an entry was removed", func(t *testing.T) {
		// Populate the collection entry first.
		do(t, h, http.MethodGet, "/api/v1/listings/raw", nil)

		rec := do(t, h, http.MethodPost, "/api/v1/cache/invalidate", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, true, body["removed"])

		rec = do(t, h, http.MethodPost, "/api/v1/cache/invalidate", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body = decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, false, body["removed"])
	})
}
