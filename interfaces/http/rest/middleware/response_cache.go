package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"listingsvc/application/ports"
)

// DefaultResponseCacheTTL is deliberately much shorter than the data
// cache's TTL: the rendered-response layer has no invalidation signal, so
// expiry alone bounds how stale its presentation can get.
const DefaultResponseCacheTTL = 15 * time.Minute

// ResponseCache caches fully rendered responses keyed by request identity
// (method, path and query). It amortizes serialization cost on hot read
// endpoints and must only wrap handlers that never mutate state; a read
// served from here may lag a just-run invalidation by up to its TTL.
type ResponseCache struct {
	store  ports.CacheStore
	ttl    time.Duration
	logger *zap.Logger
}

// cachedResponse is the stored form of a rendered response
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// NewResponseCache creates a response cache with the given TTL. A
// non-positive TTL falls back to the default.
func NewResponseCache(store ports.CacheStore, ttl time.Duration, logger *zap.Logger) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultResponseCacheTTL
	}
	return &ResponseCache{
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// TTL returns the configured response lifetime
func (rc *ResponseCache) TTL() time.Duration {
	return rc.ttl
}

// Handler wraps next with response caching. Only successful GET responses
// are cached; everything else passes straight through.
func (rc *ResponseCache) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		key := responseKey(r)

		raw, found, err := rc.store.Get(r.Context(), key)
		if err != nil {
			// Unreachable cache degrades to pass-through.
			rc.logger.Warn("response cache read failed", zap.String("key", key), zap.Error(err))
		}
		if found {
			var cached cachedResponse
			if err := json.Unmarshal(raw, &cached); err == nil {
				w.Header().Set("Content-Type", cached.ContentType)
				w.Header().Set("X-Response-Cache", "HIT")
				w.WriteHeader(cached.Status)
				w.Write(cached.Body)
				return
			}
			rc.logger.Warn("discarding undecodable cached response", zap.String("key", key), zap.Error(err))
		}

		recorder := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		w.Header().Set("X-Response-Cache", "MISS")
		next.ServeHTTP(recorder, r)

		if recorder.status != http.StatusOK {
			return
		}

		entry := cachedResponse{
			Status:      recorder.status,
			ContentType: recorder.Header().Get("Content-Type"),
			Body:        recorder.body.Bytes(),
		}
		data, err := json.Marshal(entry)
		if err != nil {
			return
		}
		if err := rc.store.Set(r.Context(), key, data, rc.ttl); err != nil {
			rc.logger.Warn("response cache write failed", zap.String("key", key), zap.Error(err))
		}
	})
}

// responseKey builds the cache key from the request identity
func responseKey(r *http.Request) string {
	return fmt.Sprintf("response:%s:%s?%s", r.Method, r.URL.Path, r.URL.RawQuery)
}

// responseRecorder tees the response body so it can be cached after the
// handler finishes.
type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
