// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package engine

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func seedGuide(t *testing.T) *Engine {
	t.Helper()
	e := New()
	for _, step := range []struct{ path, value string }{
		{"doc:guide:section[intro]", "Welcome"},
		{"doc:guide:section[body]", "Content"},
		{"doc:guide:full", "Welcome Content"},
	} {
		if err := e.Set(step.path, step.value); err != nil {
			t.Fatal(err)
		}
	}
	return e
}

func TestExportNamespace(t *testing.T) {
	e := seedGuide(t)
	ns := mustNS(t, "guide")

	data, ok := e.ExportNamespace("doc", ns, FormatText)
	if !ok {
		t.Fatal("export failed")
	}
	if data.Metadata.TokenCount != 3 || len(data.Tokens) != 3 {
		t.Errorf("token count = %d", data.Metadata.TokenCount)
	}
	if data.Metadata.Checksum == "" {
		t.Error("checksum missing")
	}
	if data.Tokens[0].Key != "section[intro]" {
		t.Errorf("first key = %q, want original notation", data.Tokens[0].Key)
	}

	if _, ok := e.ExportNamespace("doc", mustNS(t, "empty"), FormatText); ok {
		t.Error("empty namespace should not export")
	}
}

func TestExportChecksumDeterministic(t *testing.T) {
	e := seedGuide(t)
	ns := mustNS(t, "guide")
	a, _ := e.ExportNamespace("doc", ns, FormatText)
	b, _ := e.ExportNamespace("doc", ns, FormatJSON)
	if a.Metadata.Checksum != b.Metadata.Checksum {
		t.Error("checksum should not depend on format")
	}

	if err := e.Set("doc:guide:extra", "x"); err != nil {
		t.Fatal(err)
	}
	c, _ := e.ExportNamespace("doc", ns, FormatText)
	if c.Metadata.Checksum == a.Metadata.Checksum {
		t.Error("checksum should change with content")
	}
}

func TestImportNamespace(t *testing.T) {
	e := seedGuide(t)
	ns := mustNS(t, "guide")
	data, _ := e.ExportNamespace("doc", ns, FormatText)

	// Import into a fresh engine: everything is added, checksum holds.
	e2 := New()
	result, err := e2.ImportNamespace(data)
	if err != nil {
		t.Fatal(err)
	}
	if result.Added != 3 || result.Updated != 0 || result.Unchanged != 0 {
		t.Errorf("diff = %+v", result)
	}
	if !result.ChecksumValid {
		t.Error("checksum should verify after clean import")
	}
	if v, _ := e2.Get("doc:guide:section[intro]"); v != "Welcome" {
		t.Errorf("imported value = %q", v)
	}

	// Re-import is a no-op diff.
	again, err := e2.ImportNamespace(data)
	if err != nil {
		t.Fatal(err)
	}
	if again.Unchanged != 3 || again.Added != 0 {
		t.Errorf("re-import diff = %+v", again)
	}

	// Changed values show as updates.
	if err := e2.Set("doc:guide:full", "rewritten"); err != nil {
		t.Fatal(err)
	}
	third, err := e2.ImportNamespace(data)
	if err != nil {
		t.Fatal(err)
	}
	if third.Updated != 1 || third.Unchanged != 2 {
		t.Errorf("third diff = %+v", third)
	}
}

func TestExportRenderFormats(t *testing.T) {
	e := seedGuide(t)
	ns := mustNS(t, "guide")

	text, _ := e.ExportNamespace("doc", ns, FormatText)
	out, err := text.Render()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "section[intro]=Welcome") {
		t.Errorf("text render missing token:\n%s", out)
	}

	jdata, _ := e.ExportNamespace("doc", ns, FormatJSON)
	out, err = jdata.Render()
	if err != nil {
		t.Fatal(err)
	}
	var back ExportData
	if err := json.Unmarshal([]byte(out), &back); err != nil {
		t.Fatalf("json render does not parse: %v", err)
	}
	if back.Context != "doc" || len(back.Tokens) != 3 {
		t.Errorf("json round trip = %+v", back)
	}

	ydata, _ := e.ExportNamespace("doc", ns, FormatYAML)
	out, err = ydata.Render()
	if err != nil {
		t.Fatal(err)
	}
	var yback ExportData
	if err := yaml.Unmarshal([]byte(out), &yback); err != nil {
		t.Fatalf("yaml render does not parse: %v", err)
	}
	if yback.Namespace != "guide" || yback.Metadata.Checksum != ydata.Metadata.Checksum {
		t.Errorf("yaml round trip = %+v", yback)
	}
}

func TestContentTypeOf(t *testing.T) {
	cases := map[string]ContentType{
		"section[intro]": ContentDocumentSection,
		"part[20]":       ContentScriptPart,
		"chunk[A18BfD]":  ContentChunk,
		"func[parse]":    ContentFunction,
		"function[x]":    ContentFunction,
		"lib[utils]":     ContentLibrary,
		"mod[parser]":    ContentModule,
		"blob[img]":      ContentBlob,
		"metadata[type]": ContentMetadata,
		"full":           ContentCanonical,
		"raw":            ContentCanonical,
		"port":           ContentSimpleValue,
		"custom[x]":      ContentSimpleValue,
	}
	for key, want := range cases {
		if got := ContentTypeOf(key); got != want {
			t.Errorf("ContentTypeOf(%q) = %s, want %s", key, got, want)
		}
	}
}
