package handlers

import (
	"encoding/json"
	"math"
	"net/http"

	"go.uber.org/zap"

	"listingsvc/application/caching"
	"listingsvc/application/listings"
	pkgerrors "listingsvc/pkg/errors"
	"listingsvc/pkg/utils"
)

// CacheHandler exposes the cache-health and administration endpoints
type CacheHandler struct {
	collector   *caching.Collector
	invalidator *caching.Invalidator
	dataCache   *caching.DataCache
	service     *listings.Service
	logger      *zap.Logger
}

// NewCacheHandler creates a new cache handler
func NewCacheHandler(collector *caching.Collector, invalidator *caching.Invalidator, dataCache *caching.DataCache, service *listings.Service, logger *zap.Logger) *CacheHandler {
	return &CacheHandler{
		collector:   collector,
		invalidator: invalidator,
		dataCache:   dataCache,
		service:     service,
		logger:      logger,
	}
}

// StatsResponse is the JSON body of GET /cache/stats
type StatsResponse struct {
	CacheKey            string              `json:"cache_key"`
	Collection          CollectionInfo      `json:"collection"`
	RawMetrics          RawMetrics          `json:"raw_metrics"`
	PerformanceAnalysis PerformanceAnalysis `json:"performance_analysis"`
	DatabaseCount       int64               `json:"database_count"`
	Metadata            StatsMetadata       `json:"metadata"`
}

// CollectionInfo reports whether the collection entry is currently cached
type CollectionInfo struct {
	IsCached    bool `json:"is_cached"`
	CachedCount int  `json:"cached_count"`
}

// StatsMetadata describes the snapshot itself
type StatsMetadata struct {
	CollectedAt string `json:"collected_at"`
}

// RawMetrics carries the engine counters unmodified
type RawMetrics struct {
	KeyspaceHits           int64  `json:"keyspace_hits"`
	KeyspaceMisses         int64  `json:"keyspace_misses"`
	TotalRequests          int64  `json:"total_requests"`
	UsedMemoryBytes        int64  `json:"used_memory_bytes"`
	UsedMemoryHuman        string `json:"used_memory_human"`
	ConnectedClients       int64  `json:"connected_clients"`
	TotalCommandsProcessed int64  `json:"total_commands_processed"`
}

// PerformanceAnalysis carries the derived indicators
type PerformanceAnalysis struct {
	HitRatio          float64 `json:"hit_ratio"`
	HitRatioPercent   float64 `json:"hit_ratio_percentage"`
	MissRatioPercent  float64 `json:"miss_ratio_percentage"`
	PerformanceStatus string  `json:"performance_status"`
}

// Stats handles GET /cache/stats. An unreachable metrics source is reported
// as such, never as a zeroed snapshot.
func (h *CacheHandler) Stats(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.collector.Snapshot(r.Context())
	if err != nil {
		h.logger.Error("Failed to collect cache metrics", zap.Error(err))
		h.respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "unavailable",
			"error":   pkgerrors.ErrorTypeStatsUnavailable,
			"message": "cache statistics source is unreachable",
		})
		return
	}

	// The repository count is best-effort context next to the engine
	// counters; a failing repository should not hide working cache stats.
	dbCount, err := h.service.Count(r.Context())
	if err != nil {
		h.logger.Warn("Failed to count listings for stats", zap.Error(err))
		dbCount = -1
	}

	// Peeking runs after the engine counters are read, so the peek's own
	// hit or miss shows up first in the next snapshot.
	isCached, cachedCount := h.dataCache.Peek(r.Context())

	hitPct := round2(snapshot.HitRatio * 100)

	h.respondJSON(w, http.StatusOK, StatsResponse{
		CacheKey: caching.AllListingsKey,
		Collection: CollectionInfo{
			IsCached:    isCached,
			CachedCount: cachedCount,
		},
		RawMetrics: RawMetrics{
			KeyspaceHits:           snapshot.Hits,
			KeyspaceMisses:         snapshot.Misses,
			TotalRequests:          snapshot.TotalRequests,
			UsedMemoryBytes:        snapshot.UsedMemory,
			UsedMemoryHuman:        snapshot.UsedMemoryHuman,
			ConnectedClients:       snapshot.ConnectedClients,
			TotalCommandsProcessed: snapshot.TotalCommands,
		},
		PerformanceAnalysis: PerformanceAnalysis{
			HitRatio:          snapshot.HitRatio,
			HitRatioPercent:   hitPct,
			MissRatioPercent:  round2(100 - hitPct),
			PerformanceStatus: string(snapshot.Status),
		},
		DatabaseCount: dbCount,
		Metadata: StatsMetadata{
			CollectedAt: utils.NowRFC3339(),
		},
	})
}

// Invalidate handles POST /cache/invalidate, the manual invalidation path.
// Non-POST methods never reach here; the router answers them with 405.
func (h *CacheHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	removed, err := h.invalidator.Invalidate(r.Context())
	if err != nil {
		h.respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"success": false,
			"message": "cache invalidation failed",
		})
		return
	}

	message := "cache was already empty"
	if removed {
		message = "cache invalidated"
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"removed": removed,
		"message": message,
	})
}

func (h *CacheHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
