// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

//go:build !meteorinstr

package engine

// nsMetrics compiles to nothing without the meteorinstr build tag.
type nsMetrics struct{}

func (nsMetrics) recordCacheHit()     {}
func (nsMetrics) recordCacheMiss()    {}
func (nsMetrics) recordIteration(int) {}
func (nsMetrics) resetCacheCounters() {}

// WorkspaceMetrics aggregates instrumentation counters; it is only
// populated in builds with the meteorinstr tag.
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

func (w *EngineWorkspace) metricsSnapshot() *WorkspaceMetrics { return nil }
