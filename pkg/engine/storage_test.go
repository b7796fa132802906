// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kraklabs/meteor/pkg/meteor"
)

func mustNS(t *testing.T, s string) meteor.Namespace {
	t.Helper()
	ns, err := meteor.ParseNamespace(s)
	if err != nil {
		t.Fatalf("ParseNamespace(%q): %v", s, err)
	}
	return ns
}

func TestContextStorageSetGet(t *testing.T) {
	cs := NewContextStorage()
	ui := mustNS(t, "ui")

	if err := cs.Set(ui, "button", "click"); err != nil {
		t.Fatal(err)
	}
	v, ok := cs.Get(ui, "button")
	if !ok || v != "click" {
		t.Errorf("Get = (%q, %v)", v, ok)
	}

	// Update in place.
	if err := cs.Set(ui, "button", "press"); err != nil {
		t.Fatal(err)
	}
	if v, _ := cs.Get(ui, "button"); v != "press" {
		t.Errorf("after update Get = %q", v)
	}

	if _, ok := cs.Get(ui, "missing"); ok {
		t.Error("missing key should not resolve")
	}
	if err := cs.CheckInvariant(); err != nil {
		t.Error(err)
	}
}

func TestContextStorageTypeConflict(t *testing.T) {
	cs := NewContextStorage()
	main := meteor.RootNamespace()

	if err := cs.Set(main, "user", "jose"); err != nil {
		t.Fatal(err)
	}
	err := cs.Set(main, "user.name", "dev")
	if !meteor.IsKind(err, meteor.KindTypeConflict) {
		t.Fatalf("file->dir write: got %v, want type conflict", err)
	}

	// Failed writes leave the store untouched.
	if v, _ := cs.Get(main, "user"); v != "jose" {
		t.Errorf("value changed after failed write: %q", v)
	}
	if _, ok := cs.Get(main, "user.name"); ok {
		t.Error("conflicting key must not be stored")
	}
	if err := cs.CheckInvariant(); err != nil {
		t.Error(err)
	}

	// The other direction conflicts too.
	cs2 := NewContextStorage()
	if err := cs2.Set(main, "user.name", "dev"); err != nil {
		t.Fatal(err)
	}
	if err := cs2.Set(main, "user", "jose"); !meteor.IsKind(err, meteor.KindTypeConflict) {
		t.Errorf("dir->file write: got %v, want type conflict", err)
	}

	// Resolving via delete unblocks the write.
	if !cs2.DeleteKey(main, "user.name") {
		t.Fatal("delete failed")
	}
	if err := cs2.Set(main, "user", "jose"); err != nil {
		t.Errorf("write after delete: %v", err)
	}
}

func TestContextStorageNamespaceKeyAmbiguity(t *testing.T) {
	// "a.b:c" and "a:b.c" share a tree path; binding both would break
	// the one-to-one flat/tree correspondence.
	cs := NewContextStorage()
	if err := cs.Set(mustNS(t, "a.b"), "c", "one"); err != nil {
		t.Fatal(err)
	}
	err := cs.Set(mustNS(t, "a"), "b.c", "two")
	if !meteor.IsKind(err, meteor.KindTypeConflict) {
		t.Errorf("ambiguous binding: got %v, want type conflict", err)
	}
	if err := cs.CheckInvariant(); err != nil {
		t.Error(err)
	}
}

func TestContextStorageDelete(t *testing.T) {
	cs := NewContextStorage()
	ui := mustNS(t, "ui")

	if err := cs.Set(ui, "button", "click"); err != nil {
		t.Fatal(err)
	}
	if err := cs.Set(ui, "theme", "dark"); err != nil {
		t.Fatal(err)
	}

	if !cs.DeleteKey(ui, "button") {
		t.Error("existing key should delete")
	}
	if cs.DeleteKey(ui, "button") {
		t.Error("second delete should report false")
	}
	if _, ok := cs.Get(ui, "button"); ok {
		t.Error("deleted key still resolves")
	}
	if err := cs.CheckInvariant(); err != nil {
		t.Error(err)
	}
}

func TestContextStorageDeleteNamespace(t *testing.T) {
	cs := NewContextStorage()
	ui := mustNS(t, "ui")
	widgets := mustNS(t, "ui.widgets")
	db := mustNS(t, "db")

	for _, w := range []struct {
		ns  meteor.Namespace
		key string
	}{
		{ui, "theme"},
		{widgets, "button"},
		{db, "host"},
	} {
		if err := cs.Set(w.ns, w.key, "v"); err != nil {
			t.Fatal(err)
		}
	}

	// Deleting ui removes nested ui.widgets too, but leaves db alone.
	if !cs.DeleteNamespace(ui) {
		t.Fatal("delete namespace failed")
	}
	if _, ok := cs.Get(ui, "theme"); ok {
		t.Error("ui:theme survived")
	}
	if _, ok := cs.Get(widgets, "button"); ok {
		t.Error("ui.widgets:button survived")
	}
	if _, ok := cs.Get(db, "host"); !ok {
		t.Error("db:host should survive")
	}
	if err := cs.CheckInvariant(); err != nil {
		t.Error(err)
	}

	want := []string{"db"}
	if diff := cmp.Diff(want, cs.Namespaces()); diff != "" {
		t.Errorf("namespaces mismatch (-want +got):\n%s", diff)
	}
}

func TestContextStorageFindKeys(t *testing.T) {
	cs := NewContextStorage()
	ui := mustNS(t, "ui")
	for _, k := range []string{"button", "banner", "theme", "nested.button"} {
		if err := cs.Set(ui, k, "v"); err != nil {
			t.Fatal(err)
		}
	}

	cases := []struct {
		pattern string
		want    []string
	}{
		{"*", []string{"banner", "button", "theme"}},
		{"b*", []string{"banner", "button"}},
		{"theme", []string{"theme"}},
		{"nested.*", []string{"nested.button"}},
		{"zzz*", nil},
	}
	for _, tc := range cases {
		got := cs.FindKeys(ui, tc.pattern)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("FindKeys(%q) mismatch (-want +got):\n%s", tc.pattern, diff)
		}
	}
}

func TestContextStorageGlobIsSegmentLocal(t *testing.T) {
	// '*' must not cross a dot separator.
	if matchGlob("*", "a.b") {
		t.Error("* should not match across segments")
	}
	if !matchGlob("*.b", "a.b") {
		t.Error("*.b should match a.b")
	}
	if !matchGlob("a.*", "a.b") {
		t.Error("a.* should match a.b")
	}
	if !matchGlob("b*n", "bn") {
		t.Error("* should match the empty run")
	}
}

func TestContextStorageDefaults(t *testing.T) {
	cs := NewContextStorage()
	guides := mustNS(t, "guides.install")

	if err := cs.Set(guides, "intro", "Welcome"); err != nil {
		t.Fatal(err)
	}
	if cs.HasDefault(guides, "") {
		t.Error("no default yet")
	}
	if err := cs.Set(guides, meteor.IndexKey, "default text"); err != nil {
		t.Fatal(err)
	}
	if !cs.HasDefault(guides, "") {
		t.Error("default should be detected")
	}
	v, ok := cs.GetDefault(guides, "")
	if !ok || v != "default text" {
		t.Errorf("GetDefault = (%q, %v)", v, ok)
	}
}

func TestContextStorageIsFileIsDirectory(t *testing.T) {
	cs := NewContextStorage()
	ui := mustNS(t, "ui")
	if err := cs.Set(ui, "forms.login", "page"); err != nil {
		t.Fatal(err)
	}

	if !cs.IsFile(ui, "forms.login") {
		t.Error("forms.login should be a file")
	}
	if cs.IsFile(ui, "forms") {
		t.Error("forms should not be a file")
	}
	if !cs.IsDirectory(ui, "forms") {
		t.Error("forms should be a directory")
	}
	if !cs.IsDirectory(ui, "") {
		t.Error("namespace root should be a directory")
	}
	if !cs.NamespaceExists(ui) {
		t.Error("ui should exist")
	}
	if cs.NamespaceExists(mustNS(t, "nope")) {
		t.Error("nope should not exist")
	}
}

func TestStorageDataContextIsolation(t *testing.T) {
	sd := NewStorageData()
	main := meteor.RootNamespace()

	appCS, err := sd.EnsureContext("app")
	if err != nil {
		t.Fatal(err)
	}
	userCS, err := sd.EnsureContext("user")
	if err != nil {
		t.Fatal(err)
	}

	if err := appCS.Set(main, "key", "app_value"); err != nil {
		t.Fatal(err)
	}
	if err := userCS.Set(main, "key", "user_value"); err != nil {
		t.Fatal(err)
	}

	if v, _ := appCS.Get(main, "key"); v != "app_value" {
		t.Errorf("app value = %q", v)
	}
	if v, _ := userCS.Get(main, "key"); v != "user_value" {
		t.Errorf("user value = %q", v)
	}

	// Mutating one context never changes another.
	appCS.DeleteKey(main, "key")
	if _, ok := userCS.Get(main, "key"); !ok {
		t.Error("user context affected by app delete")
	}

	want := []meteor.Context{"app", "user"}
	if diff := cmp.Diff(want, sd.Contexts()); diff != "" {
		t.Errorf("contexts mismatch (-want +got):\n%s", diff)
	}
}
