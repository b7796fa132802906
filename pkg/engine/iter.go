// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package engine

import (
	"iter"

	"github.com/kraklabs/meteor/pkg/meteor"
)

// Contexts returns the sorted context names.
func (e *Engine) Contexts() []meteor.Context { return e.storage.Contexts() }

// Namespaces returns the sorted namespaces of a context.
func (e *Engine) Namespaces(ctx meteor.Context) []string {
	return e.storage.NamespacesIn(ctx)
}

// IterEntries yields every stored entry as (context, namespace, key,
// value). Within a namespace, keys follow workspace insertion order when
// a workspace record exists, sorted storage order otherwise. Nothing is
// captured when IterEntries is called: the context and namespace lists
// are read when iteration starts, and each namespace's key list is
// copied when iteration reaches it. Do not mutate the engine while
// iterating.
func (e *Engine) IterEntries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, ctx := range e.storage.Contexts() {
			cs := e.storage.Context(ctx)
			if cs == nil {
				continue
			}
			for _, nsName := range cs.Namespaces() {
				ns, err := meteor.ParseNamespace(nsName)
				if err != nil {
					continue
				}
				nw, keys := e.orderedKeys(ctx, ns, cs)
				for _, k := range keys {
					v, ok := cs.Get(ns, k)
					if !ok {
						continue
					}
					en := Entry{Context: string(ctx), Namespace: nsName, Key: k, Value: v}
					if nw != nil {
						en.notation = nw.notationFor(k)
					}
					if !yield(en) {
						return
					}
				}
			}
		}
	}
}

// orderedKeys returns a snapshot of the namespace's keys in workspace
// order, falling back to sorted storage keys, plus the workspace record
// when one exists.
func (e *Engine) orderedKeys(ctx meteor.Context, ns meteor.Namespace, cs *ContextStorage) (*namespaceWorkspace, []string) {
	if nw, ok := e.workspace.get(ctx, ns); ok {
		keys := make([]string, len(nw.keyOrder))
		copy(keys, nw.keyOrder)
		nw.metrics.recordIteration(len(keys))
		return nw, keys
	}
	return nil, cs.Keys(ns)
}

// NamespaceView is a read-only view of one namespace: metadata plus
// ordered access to its entries. Views snapshot their key list at
// creation.
type NamespaceView struct {
	Context    meteor.Context
	Namespace  meteor.Namespace
	EntryCount int
	HasDefault bool

	cs   *ContextStorage
	nw   *namespaceWorkspace
	keys []string
}

// NamespaceView returns a view of (ctx, ns), or nil when the namespace
// has no keys.
func (e *Engine) NamespaceView(ctx meteor.Context, ns meteor.Namespace) *NamespaceView {
	cs := e.storage.Context(ctx)
	if cs == nil {
		return nil
	}
	nw, keys := e.orderedKeys(ctx, ns, cs)
	if len(keys) == 0 {
		return nil
	}
	hasDefault := false
	for _, k := range keys {
		if k == meteor.IndexKey {
			hasDefault = true
			break
		}
	}
	return &NamespaceView{
		Context:    ctx,
		Namespace:  ns,
		EntryCount: len(keys),
		HasDefault: hasDefault,
		cs:         cs,
		nw:         nw,
		keys:       keys,
	}
}

// Keys returns the flat keys in insertion order.
func (v *NamespaceView) Keys() []string {
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}

// Values returns the values in key order.
func (v *NamespaceView) Values() []string {
	out := make([]string, 0, len(v.keys))
	for _, k := range v.keys {
		if val, ok := v.cs.Get(v.Namespace, k); ok {
			out = append(out, val)
		}
	}
	return out
}

// Entries returns the (key, value) pairs in key order.
func (v *NamespaceView) Entries() []Entry {
	out := make([]Entry, 0, len(v.keys))
	for _, k := range v.keys {
		val, ok := v.cs.Get(v.Namespace, k)
		if !ok {
			continue
		}
		en := Entry{Context: string(v.Context), Namespace: v.Namespace.String(), Key: k, Value: val}
		if v.nw != nil {
			en.notation = v.nw.notationFor(k)
		}
		out = append(out, en)
	}
	return out
}

// Get returns the value for a key, which may be given in either flat or
// bracket notation.
func (v *NamespaceView) Get(key string) (string, bool) {
	k, err := meteor.ParseTokenKey(key)
	if err != nil {
		return "", false
	}
	return v.cs.Get(v.Namespace, k.Flat())
}

// HasKey reports whether the view contains the key.
func (v *NamespaceView) HasKey(key string) bool {
	k, err := meteor.ParseTokenKey(key)
	if err != nil {
		return false
	}
	for _, have := range v.keys {
		if have == k.Flat() {
			return true
		}
	}
	return false
}

// FindKeys returns the keys matching a glob pattern, sorted.
func (v *NamespaceView) FindKeys(pattern string) []string {
	return v.cs.FindKeys(v.Namespace, pattern)
}

// notationOf resolves the display notation for a flat key in this view.
func (v *NamespaceView) notationOf(flat string) string {
	if v.nw != nil {
		return v.nw.notationFor(flat)
	}
	return meteor.FlatToNotation(flat)
}

// Meteors yields one meteor per (context, namespace) pair that holds at
// least one key. Tokens follow workspace insertion order and preserve
// original bracket notation.
func (e *Engine) Meteors() iter.Seq[meteor.Meteor] {
	return func(yield func(meteor.Meteor) bool) {
		for _, ctx := range e.storage.Contexts() {
			for _, nsName := range e.storage.NamespacesIn(ctx) {
				m, ok := e.meteorForName(ctx, nsName)
				if !ok {
					continue
				}
				if !yield(m) {
					return
				}
			}
		}
	}
}

// MeteorFor aggregates the tokens of (ctx, ns) into a meteor, reporting
// false when the namespace has no keys.
func (e *Engine) MeteorFor(ctx meteor.Context, ns meteor.Namespace) (meteor.Meteor, bool) {
	view := e.NamespaceView(ctx, ns)
	if view == nil {
		return meteor.Meteor{}, false
	}
	tokens := make([]meteor.Token, 0, len(view.keys))
	for _, flat := range view.keys {
		val, ok := view.cs.Get(view.Namespace, flat)
		if !ok {
			continue
		}
		key, err := meteor.ParseTokenKey(view.notationOf(flat))
		if err != nil {
			// The notation record is derived from a validated key; a
			// failure here means the flat key came from outside and the
			// best-effort inverse is not parseable. Keep the flat form.
			key, err = meteor.ParseTokenKey(flat)
			if err != nil {
				continue
			}
		}
		tokens = append(tokens, meteor.NewToken(key, val))
	}
	if len(tokens) == 0 {
		return meteor.Meteor{}, false
	}
	m, err := meteor.NewMeteor(ctx, ns, tokens)
	if err != nil {
		return meteor.Meteor{}, false
	}
	return m, true
}

func (e *Engine) meteorForName(ctx meteor.Context, nsName string) (meteor.Meteor, bool) {
	ns, err := meteor.ParseNamespace(nsName)
	if err != nil {
		return meteor.Meteor{}, false
	}
	return e.MeteorFor(ctx, ns)
}
