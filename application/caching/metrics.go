package caching

import (
	"context"

	"listingsvc/application/ports"
)

// PerformanceStatus classifies a hit ratio on a fixed ordinal scale. The
// thresholds are policy and can move without changing the contract.
type PerformanceStatus string

const (
	StatusExcellent PerformanceStatus = "excellent" // ratio >= 0.80
	StatusGood      PerformanceStatus = "good"      // ratio >= 0.60
	StatusFair      PerformanceStatus = "fair"      // ratio >= 0.40
	StatusPoor      PerformanceStatus = "poor"
)

// MetricsSnapshot is a point-in-time view over the cache engine's
// cumulative counters. It is recomputed on every request, never persisted.
type MetricsSnapshot struct {
	Hits             int64
	Misses           int64
	TotalRequests    int64
	HitRatio         float64
	Status           PerformanceStatus
	UsedMemory       int64
	UsedMemoryHuman  string
	ConnectedClients int64
	TotalCommands    int64
}

// Collector derives cache-health indicators from the engine's global
// statistics.
//
// The hit and miss counters cover every key ever accessed on the cache
// instance, not just the collection key, so on a shared instance the ratio
// blends in unrelated traffic. The engine exposes no per-key counters;
// treat the snapshot as whole-instance health rather than per-endpoint
// effectiveness.
type Collector struct {
	store ports.CacheStore
}

// NewCollector creates a metrics collector over the given cache store
func NewCollector(store ports.CacheStore) *Collector {
	return &Collector{store: store}
}

// Snapshot reads the engine counters and computes derived indicators. An
// unreachable statistics source returns an error, never a zeroed snapshot,
// so callers can tell a cold cache from a dead one.
func (c *Collector) Snapshot(ctx context.Context) (MetricsSnapshot, error) {
	stats, err := c.store.Stats(ctx)
	if err != nil {
		return MetricsSnapshot{}, err
	}

	total := stats.Hits + stats.Misses
	var ratio float64
	if total > 0 {
		ratio = float64(stats.Hits) / float64(total)
	}

	return MetricsSnapshot{
		Hits:             stats.Hits,
		Misses:           stats.Misses,
		TotalRequests:    total,
		HitRatio:         ratio,
		Status:           classify(ratio),
		UsedMemory:       stats.UsedMemory,
		UsedMemoryHuman:  stats.UsedMemoryHuman,
		ConnectedClients: stats.ConnectedClients,
		TotalCommands:    stats.TotalCommands,
	}, nil
}

func classify(ratio float64) PerformanceStatus {
	switch {
	case ratio >= 0.80:
		return StatusExcellent
	case ratio >= 0.60:
		return StatusGood
	case ratio >= 0.40:
		return StatusFair
	default:
		return StatusPoor
	}
}
