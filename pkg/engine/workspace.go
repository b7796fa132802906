// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package engine

import (
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/kraklabs/meteor/pkg/meteor"
)

// nsKey addresses one per-namespace workspace record.
type nsKey struct {
	ctx string
	ns  string
}

// namespaceWorkspace is the engine-internal side table for one
// (context, namespace): insertion order, a fingerprinted query cache,
// and optional instrumentation counters. Nothing in here is visible
// through canonical queries.
type namespaceWorkspace struct {
	keyOrder     []string
	keySet       map[string]struct{}
	notation     map[string]string // flat key -> original notation
	queryCache   map[uint64][]string
	lastModified time.Time
	metrics      nsMetrics
}

func newNamespaceWorkspace(now time.Time) *namespaceWorkspace {
	return &namespaceWorkspace{
		keySet:       make(map[string]struct{}),
		notation:     make(map[string]string),
		queryCache:   make(map[uint64][]string),
		lastModified: now,
	}
}

// addKey appends a key to the insertion order on first insert; updates
// leave the order unchanged.
func (w *namespaceWorkspace) addKey(key meteor.TokenKey, now time.Time) {
	flat := key.Flat()
	if _, ok := w.keySet[flat]; !ok {
		w.keyOrder = append(w.keyOrder, flat)
		w.keySet[flat] = struct{}{}
	}
	// Always record the notation: the best-effort inverse cannot tell a
	// literal foo__bar key from a flattened foo[bar].
	w.notation[flat] = key.Notation()
	w.lastModified = now
}

func (w *namespaceWorkspace) removeKey(flat string, now time.Time) {
	if _, ok := w.keySet[flat]; !ok {
		return
	}
	delete(w.keySet, flat)
	delete(w.notation, flat)
	for i, k := range w.keyOrder {
		if k == flat {
			w.keyOrder = append(w.keyOrder[:i], w.keyOrder[i+1:]...)
			break
		}
	}
	w.lastModified = now
}

// invalidate clears the query cache and its counters; iteration counters
// persist as lifetime statistics.
func (w *namespaceWorkspace) invalidate(now time.Time) {
	clear(w.queryCache)
	w.metrics.resetCacheCounters()
	w.lastModified = now
}

// notationFor returns the original notation recorded for a flat key,
// falling back to the best-effort inverse transform.
func (w *namespaceWorkspace) notationFor(flat string) string {
	if n, ok := w.notation[flat]; ok {
		return n
	}
	return meteor.FlatToNotation(flat)
}

// cachedQuery looks up a pattern fingerprint in the query cache.
func (w *namespaceWorkspace) cachedQuery(pattern string) ([]string, bool) {
	keys, ok := w.queryCache[xxhash.Sum64String(pattern)]
	if ok {
		w.metrics.recordCacheHit()
	} else {
		w.metrics.recordCacheMiss()
	}
	return keys, ok
}

func (w *namespaceWorkspace) storeQuery(pattern string, keys []string) {
	w.queryCache[xxhash.Sum64String(pattern)] = keys
}

// ScratchSlot is a named scratch buffer for multi-step operations. Slots
// live in the workspace and are invisible to all canonical queries.
type ScratchSlot struct {
	name      string
	data      map[string]string
	createdAt time.Time
}

// Name returns the slot name.
func (s *ScratchSlot) Name() string { return s.name }

// CreatedAt returns the slot creation time.
func (s *ScratchSlot) CreatedAt() time.Time { return s.createdAt }

// Set stores a buffer entry.
func (s *ScratchSlot) Set(key, value string) { s.data[key] = value }

// Get reads a buffer entry.
func (s *ScratchSlot) Get(key string) (string, bool) {
	v, ok := s.data[key]
	return v, ok
}

// Delete removes a buffer entry and reports whether it existed.
func (s *ScratchSlot) Delete(key string) bool {
	_, ok := s.data[key]
	delete(s.data, key)
	return ok
}

// Contains reports whether the slot holds the key.
func (s *ScratchSlot) Contains(key string) bool {
	_, ok := s.data[key]
	return ok
}

// Clear removes all entries.
func (s *ScratchSlot) Clear() { clear(s.data) }

// Len returns the entry count.
func (s *ScratchSlot) Len() int { return len(s.data) }

// Keys returns the slot's keys, sorted.
func (s *ScratchSlot) Keys() []string {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EngineWorkspace tracks per-namespace ordering and caches plus scratch
// slots. It is owned by exactly one engine and never shared.
type EngineWorkspace struct {
	namespaces map[nsKey]*namespaceWorkspace
	scratch    map[string]*ScratchSlot
}

func newEngineWorkspace() *EngineWorkspace {
	return &EngineWorkspace{
		namespaces: make(map[nsKey]*namespaceWorkspace),
		scratch:    make(map[string]*ScratchSlot),
	}
}

func (w *EngineWorkspace) getOrCreate(ctx meteor.Context, ns meteor.Namespace, now time.Time) *namespaceWorkspace {
	k := nsKey{ctx: string(ctx), ns: ns.String()}
	nw, ok := w.namespaces[k]
	if !ok {
		nw = newNamespaceWorkspace(now)
		w.namespaces[k] = nw
	}
	return nw
}

func (w *EngineWorkspace) get(ctx meteor.Context, ns meteor.Namespace) (*namespaceWorkspace, bool) {
	nw, ok := w.namespaces[nsKey{ctx: string(ctx), ns: ns.String()}]
	return nw, ok
}

// removeNamespace drops the record for a namespace and, because
// namespace deletion removes nested namespaces too, any record below it.
func (w *EngineWorkspace) removeNamespace(ctx meteor.Context, ns meteor.Namespace) {
	prefix := ns.String() + "."
	for k := range w.namespaces {
		if k.ctx != string(ctx) {
			continue
		}
		if k.ns == ns.String() || strings.HasPrefix(k.ns, prefix) {
			delete(w.namespaces, k)
		}
	}
}

func (w *EngineWorkspace) removeContext(ctx meteor.Context) {
	for k := range w.namespaces {
		if k.ctx == string(ctx) {
			delete(w.namespaces, k)
		}
	}
}

// clearAll drops every namespace record and scratch slot.
func (w *EngineWorkspace) clearAll() {
	clear(w.namespaces)
	clear(w.scratch)
}

// WorkspaceStatus is a point-in-time snapshot of workspace internals.
// Counter fields are populated only in instrumented builds.
type WorkspaceStatus struct {
	NamespaceCount     int
	ScratchSlotCount   int
	TotalCachedQueries int
	TotalOrderedKeys   int
	Metrics            *WorkspaceMetrics
}

func (w *EngineWorkspace) status() WorkspaceStatus {
	st := WorkspaceStatus{
		NamespaceCount:   len(w.namespaces),
		ScratchSlotCount: len(w.scratch),
	}
	for _, nw := range w.namespaces {
		st.TotalCachedQueries += len(nw.queryCache)
		st.TotalOrderedKeys += len(nw.keyOrder)
	}
	st.Metrics = w.metricsSnapshot()
	return st
}
