// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

//go:build meteorinstr

package engine

// nsMetrics holds the per-namespace instrumentation counters. Counters
// are updated through shared references held by read iterators; the
// engine is single-writer, so no atomics are needed.
type nsMetrics struct {
	cacheHits      uint64
	cacheMisses    uint64
	iterationCount uint64
	keysIterated   uint64
}

func (m *nsMetrics) recordCacheHit()  { m.cacheHits++ }
func (m *nsMetrics) recordCacheMiss() { m.cacheMisses++ }

func (m *nsMetrics) recordIteration(keyCount int) {
	m.iterationCount++
	m.keysIterated += uint64(keyCount)
}

// resetCacheCounters resets the cache metrics alongside a cache
// invalidation. Iteration metrics persist as lifetime statistics.
func (m *nsMetrics) resetCacheCounters() {
	m.cacheHits = 0
	m.cacheMisses = 0
}

// WorkspaceMetrics aggregates instrumentation counters across all
// namespace records.
type WorkspaceMetrics struct {
	CacheHits      uint64
	CacheMisses    uint64
	IterationCount uint64
	KeysIterated   uint64
}

// CacheHitRatio returns hits/(hits+misses), or 0 with no samples.
func (m *WorkspaceMetrics) CacheHitRatio() float64 {
	total := m.CacheHits + m.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(m.CacheHits) / float64(total)
}

func (w *EngineWorkspace) metricsSnapshot() *WorkspaceMetrics {
	var agg WorkspaceMetrics
	for _, nw := range w.namespaces {
		agg.CacheHits += nw.metrics.cacheHits
		agg.CacheMisses += nw.metrics.cacheMisses
		agg.IterationCount += nw.metrics.iterationCount
		agg.KeysIterated += nw.metrics.keysIterated
	}
	return &agg
}
