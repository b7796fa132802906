// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestKeyOrderInsertionPreserved(t *testing.T) {
	e := New()
	for _, k := range []string{"charlie", "alpha", "bravo"} {
		if err := e.StoreToken(k, "v"); err != nil {
			t.Fatal(err)
		}
	}

	view := e.NamespaceView("app", e.CurrentNamespace())
	if view == nil {
		t.Fatal("view missing")
	}
	want := []string{"charlie", "alpha", "bravo"}
	if diff := cmp.Diff(want, view.Keys()); diff != "" {
		t.Errorf("key order mismatch (-want +got):\n%s", diff)
	}
}

func TestKeyOrderUnchangedOnUpdate(t *testing.T) {
	e := New()
	for _, k := range []string{"one", "two", "three"} {
		if err := e.StoreToken(k, "v"); err != nil {
			t.Fatal(err)
		}
	}
	// Updating an existing key must not reorder.
	if err := e.StoreToken("one", "updated"); err != nil {
		t.Fatal(err)
	}

	view := e.NamespaceView("app", e.CurrentNamespace())
	want := []string{"one", "two", "three"}
	if diff := cmp.Diff(want, view.Keys()); diff != "" {
		t.Errorf("key order changed on update (-want +got):\n%s", diff)
	}
	if v, _ := view.Get("one"); v != "updated" {
		t.Errorf("value = %q", v)
	}
}

func TestKeyOrderDropsDeleted(t *testing.T) {
	e := New()
	for _, k := range []string{"a", "b", "c"} {
		if err := e.StoreToken(k, "v"); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := e.Delete("app:main:b"); err != nil {
		t.Fatal(err)
	}

	view := e.NamespaceView("app", e.CurrentNamespace())
	want := []string{"a", "c"}
	if diff := cmp.Diff(want, view.Keys()); diff != "" {
		t.Errorf("key order mismatch (-want +got):\n%s", diff)
	}
}

func TestQueryCacheInvalidation(t *testing.T) {
	e := New()
	if err := e.Set("app:ui:button", "click"); err != nil {
		t.Fatal(err)
	}

	// Prime the cache, then mutate, then re-query: results must always
	// equal a fresh scan.
	first, err := e.Find("app:ui:*")
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 1 {
		t.Fatalf("first find = %d entries", len(first))
	}
	if err := e.Set("app:ui:theme", "dark"); err != nil {
		t.Fatal(err)
	}
	second, err := e.Find("app:ui:*")
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 2 {
		t.Errorf("find after mutation = %d entries, want 2", len(second))
	}

	if _, err := e.Delete("app:ui:button"); err != nil {
		t.Fatal(err)
	}
	third, err := e.Find("app:ui:*")
	if err != nil {
		t.Fatal(err)
	}
	if len(third) != 1 || third[0].Key != "theme" {
		t.Errorf("find after delete = %+v", third)
	}
}

func TestWorkspaceStatus(t *testing.T) {
	e := New()
	if err := e.Set("app:ui:button", "click"); err != nil {
		t.Fatal(err)
	}
	if err := e.Set("doc:guides:intro", "w"); err != nil {
		t.Fatal(err)
	}
	e.ScratchSlot("tmp").Set("k", "v")
	if _, err := e.Find("app:ui:*"); err != nil {
		t.Fatal(err)
	}

	st := e.WorkspaceStatus()
	if st.NamespaceCount != 2 {
		t.Errorf("namespace count = %d", st.NamespaceCount)
	}
	if st.ScratchSlotCount != 1 {
		t.Errorf("scratch slot count = %d", st.ScratchSlotCount)
	}
	if st.TotalOrderedKeys != 2 {
		t.Errorf("ordered keys = %d", st.TotalOrderedKeys)
	}
	if st.TotalCachedQueries != 1 {
		t.Errorf("cached queries = %d", st.TotalCachedQueries)
	}
}

func TestWorkspaceRemovedWithNamespace(t *testing.T) {
	e := New()
	if err := e.Set("app:ui:button", "click"); err != nil {
		t.Fatal(err)
	}
	if err := e.Set("app:ui.widgets:lever", "pull"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Delete("app:ui"); err != nil {
		t.Fatal(err)
	}

	st := e.WorkspaceStatus()
	if st.NamespaceCount != 0 {
		t.Errorf("workspace records survived namespace delete: %d", st.NamespaceCount)
	}
}
