// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package engine

import (
	"sort"
	"strings"

	"github.com/kraklabs/meteor/pkg/meteor"
)

// ContextStorage is the hybrid store for one context: a flat map from
// canonical keys to values for O(1) direct access, and a tree index for
// hierarchical queries. The flat map is the single source of truth; the
// tree is reconstructible from it.
type ContextStorage struct {
	flat map[string]string
	root *treeNode
}

// NewContextStorage returns an empty hybrid store.
func NewContextStorage() *ContextStorage {
	return &ContextStorage{
		flat: make(map[string]string),
		root: newDir(),
	}
}

// canonicalKey builds the flat-map key: "<namespace>:<flat key>", or just
// the flat key when the namespace is root.
func canonicalKey(ns meteor.Namespace, flatKey string) string {
	if ns.IsRoot() {
		return flatKey
	}
	return ns.String() + ":" + flatKey
}

// splitCanonical is the inverse of canonicalKey.
func splitCanonical(canonical string) (ns, flatKey string) {
	if i := strings.IndexByte(canonical, ':'); i >= 0 {
		return canonical[:i], canonical[i+1:]
	}
	return meteor.DefaultNamespace, canonical
}

// keySegments splits a flat key into tree segments. The reserved .index
// key is a single segment.
func keySegments(flatKey string) []string {
	if flatKey == meteor.IndexKey {
		return []string{flatKey}
	}
	return strings.Split(flatKey, ".")
}

// treeSegments builds the full tree path for a key in a namespace.
func treeSegments(ns meteor.Namespace, flatKey string) []string {
	segs := ns.Segments()
	out := make([]string, 0, len(segs)+2)
	out = append(out, segs...)
	return append(out, keySegments(flatKey)...)
}

// Set inserts or updates a key. The operation is atomic: the file/dir
// invariant is checked before either the flat map or the tree changes.
func (s *ContextStorage) Set(ns meteor.Namespace, flatKey, value string) error {
	canonical := canonicalKey(ns, flatKey)
	segs := treeSegments(ns, flatKey)
	if err := s.root.checkInsert(segs, canonical); err != nil {
		return err
	}
	s.flat[canonical] = value
	s.root.insert(segs, value, canonical)
	return nil
}

// Get reads a value from the flat map only.
func (s *ContextStorage) Get(ns meteor.Namespace, flatKey string) (string, bool) {
	v, ok := s.flat[canonicalKey(ns, flatKey)]
	return v, ok
}

// DeleteKey removes a key from both layers, pruning empty directories.
func (s *ContextStorage) DeleteKey(ns meteor.Namespace, flatKey string) bool {
	canonical := canonicalKey(ns, flatKey)
	if _, ok := s.flat[canonical]; !ok {
		return false
	}
	delete(s.flat, canonical)
	s.root.remove(treeSegments(ns, flatKey))
	return true
}

// DeleteNamespace removes the namespace and everything below it,
// including nested namespaces. It reports whether anything was removed.
func (s *ContextStorage) DeleteNamespace(ns meteor.Namespace) bool {
	if ns.IsRoot() {
		// Root namespace: drop only keys stored at the root, not the
		// whole context.
		removed := false
		for canonical := range s.flat {
			if !strings.ContainsRune(canonical, ':') {
				delete(s.flat, canonical)
				s.root.remove(keySegments(canonical))
				removed = true
			}
		}
		return removed
	}
	removedKeys := s.root.removeSubtree(ns.Segments())
	for _, canonical := range removedKeys {
		delete(s.flat, canonical)
	}
	return len(removedKeys) > 0
}

// Keys returns the flat keys stored directly in the namespace, sorted.
func (s *ContextStorage) Keys(ns meteor.Namespace) []string {
	var keys []string
	for canonical := range s.flat {
		cns, flatKey := splitCanonical(canonical)
		if cns == ns.String() {
			keys = append(keys, flatKey)
		}
	}
	sort.Strings(keys)
	return keys
}

// FindKeys returns the flat keys in the namespace matching a glob
// pattern, sorted. A "*" matches any run of non-separator characters.
func (s *ContextStorage) FindKeys(ns meteor.Namespace, pattern string) []string {
	var keys []string
	for _, k := range s.Keys(ns) {
		if matchGlob(pattern, k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// matchGlob matches pattern against s where '*' stands for any sequence
// of non-dot characters and every other character matches literally.
func matchGlob(pattern, s string) bool {
	for {
		star := strings.IndexByte(pattern, '*')
		if star < 0 {
			return pattern == s
		}
		if !strings.HasPrefix(s, pattern[:star]) {
			return false
		}
		s = s[star:]
		pattern = pattern[star+1:]
		// The star consumes the longest run of non-dot characters that
		// still lets the remainder match.
		run := len(s)
		if dot := strings.IndexByte(s, '.'); dot >= 0 {
			run = dot
		}
		for take := run; take >= 0; take-- {
			if matchGlob(pattern, s[take:]) {
				return true
			}
		}
		return false
	}
}

// IsFile reports whether the tree path (namespace plus optional key
// path) resolves to a file node.
func (s *ContextStorage) IsFile(ns meteor.Namespace, flatKey string) bool {
	n := s.root.descend(treeSegments(ns, flatKey))
	return n != nil && n.isFile
}

// IsDirectory reports whether the tree path resolves to a directory.
func (s *ContextStorage) IsDirectory(ns meteor.Namespace, dirPath string) bool {
	segs := ns.Segments()
	if dirPath != "" {
		segs = treeSegments(ns, dirPath)
	}
	n := s.root.descend(segs)
	return n != nil && !n.isFile
}

// NamespaceExists reports whether the namespace exists, either with
// direct keys or as a parent of deeper namespaces.
func (s *ContextStorage) NamespaceExists(ns meteor.Namespace) bool {
	if ns.IsRoot() {
		return len(s.flat) > 0
	}
	n := s.root.descend(ns.Segments())
	return n != nil && !n.isFile
}

// HasDefault reports whether the directory at the path carries a .index
// default value.
func (s *ContextStorage) HasDefault(ns meteor.Namespace, dirPath string) bool {
	_, ok := s.defaultNode(ns, dirPath)
	return ok
}

// GetDefault returns the directory's .index default value.
func (s *ContextStorage) GetDefault(ns meteor.Namespace, dirPath string) (string, bool) {
	return s.defaultNode(ns, dirPath)
}

func (s *ContextStorage) defaultNode(ns meteor.Namespace, dirPath string) (string, bool) {
	segs := ns.Segments()
	if dirPath != "" {
		segs = treeSegments(ns, dirPath)
	}
	dir := s.root.descend(segs)
	if dir == nil || dir.isFile {
		return "", false
	}
	idx, ok := dir.children[meteor.IndexKey]
	if !ok || !idx.isFile {
		return "", false
	}
	return idx.value, true
}

// Namespaces returns the sorted namespace names that hold at least one
// key directly.
func (s *ContextStorage) Namespaces() []string {
	seen := make(map[string]struct{})
	for canonical := range s.flat {
		ns, _ := splitCanonical(canonical)
		seen[ns] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for ns := range seen {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of stored keys.
func (s *ContextStorage) Len() int { return len(s.flat) }

// CheckInvariant verifies the flat/tree duality: every file reachable by
// a tree walk corresponds to exactly one flat entry with the same value,
// and vice versa. A violation is a bug in meteor, not bad input.
func (s *ContextStorage) CheckInvariant() error {
	count := 0
	var err error
	s.root.walk(func(canonical, value string) {
		count++
		if err != nil {
			return
		}
		v, ok := s.flat[canonical]
		if !ok {
			err = meteor.Errorf(meteor.KindInternalInvariant, "",
				"tree file %q has no flat entry", canonical)
		} else if v != value {
			err = meteor.Errorf(meteor.KindInternalInvariant, "",
				"tree file %q holds %q but flat holds %q", canonical, value, v)
		}
	})
	if err != nil {
		return err
	}
	if count != len(s.flat) {
		return meteor.Errorf(meteor.KindInternalInvariant, "",
			"tree has %d files but flat has %d entries", count, len(s.flat))
	}
	return nil
}

// StorageData is the multi-context store. Contexts are created implicitly
// on first write and share nothing.
type StorageData struct {
	contexts map[meteor.Context]*ContextStorage
}

// NewStorageData returns an empty store.
func NewStorageData() *StorageData {
	return &StorageData{contexts: make(map[meteor.Context]*ContextStorage)}
}

// Context returns the storage for a context, or nil.
func (d *StorageData) Context(ctx meteor.Context) *ContextStorage {
	return d.contexts[ctx]
}

// EnsureContext returns the storage for a context, creating it if
// needed. Creation fails when the compiled context limit is reached.
func (d *StorageData) EnsureContext(ctx meteor.Context) (*ContextStorage, error) {
	if cs, ok := d.contexts[ctx]; ok {
		return cs, nil
	}
	if len(d.contexts) >= meteor.MaxContexts {
		return nil, meteor.Errorf(meteor.KindLimitExceeded, "",
			"context limit reached (%d)", meteor.MaxContexts)
	}
	cs := NewContextStorage()
	d.contexts[ctx] = cs
	return cs, nil
}

// DeleteContext removes an entire context.
func (d *StorageData) DeleteContext(ctx meteor.Context) bool {
	if _, ok := d.contexts[ctx]; !ok {
		return false
	}
	delete(d.contexts, ctx)
	return true
}

// Contexts returns the sorted context names.
func (d *StorageData) Contexts() []meteor.Context {
	out := make([]meteor.Context, 0, len(d.contexts))
	for ctx := range d.contexts {
		out = append(out, ctx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NamespacesIn returns the sorted namespaces of a context.
func (d *StorageData) NamespacesIn(ctx meteor.Context) []string {
	cs, ok := d.contexts[ctx]
	if !ok {
		return nil
	}
	return cs.Namespaces()
}

// Len returns the total key count across all contexts.
func (d *StorageData) Len() int {
	n := 0
	for _, cs := range d.contexts {
		n += cs.Len()
	}
	return n
}
