// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package meteor

import (
	"strings"
	"testing"
)

func TestParseNamespace(t *testing.T) {
	ns, err := ParseNamespace("ui.widgets")
	if err != nil {
		t.Fatalf("ParseNamespace(ui.widgets): %v", err)
	}
	if ns.Depth() != 2 {
		t.Errorf("depth = %d, want 2", ns.Depth())
	}
	if ns.String() != "ui.widgets" {
		t.Errorf("String() = %q", ns.String())
	}

	root, err := ParseNamespace("")
	if err != nil {
		t.Fatal(err)
	}
	if !root.IsRoot() || root.String() != "main" {
		t.Errorf("empty namespace should be root main, got %q", root.String())
	}

	main, err := ParseNamespace("main")
	if err != nil {
		t.Fatal(err)
	}
	if !main.IsRoot() {
		t.Error("main should parse to the root namespace")
	}
}

func TestNamespaceDepthGate(t *testing.T) {
	seg := func(n int) string {
		parts := make([]string, n)
		for i := range parts {
			parts[i] = "s"
		}
		return strings.Join(parts, ".")
	}

	// At the error depth, construction fails.
	_, err := ParseNamespace(seg(NamespaceErrorDepth))
	if !IsKind(err, KindNamespaceTooDeep) {
		t.Errorf("depth %d: got %v, want namespace too deep", NamespaceErrorDepth, err)
	}

	// Just below the error depth, construction succeeds with a warning.
	ns, err := ParseNamespace(seg(NamespaceErrorDepth - 1))
	if err != nil {
		t.Fatalf("depth %d: %v", NamespaceErrorDepth-1, err)
	}
	if !ns.ShouldWarn() {
		t.Errorf("depth %d should warn", NamespaceErrorDepth-1)
	}

	// Below the warning depth, no warning.
	ns, err = ParseNamespace(seg(NamespaceWarningDepth - 1))
	if err != nil {
		t.Fatalf("depth %d: %v", NamespaceWarningDepth-1, err)
	}
	if ns.ShouldWarn() {
		t.Errorf("depth %d should not warn", NamespaceWarningDepth-1)
	}
}

func TestNamespaceSegmentValidation(t *testing.T) {
	for _, in := range []string{"ui..widgets", "ui.wid gets", "1ui", "ui.wid-gets"} {
		if _, err := ParseNamespace(in); err == nil {
			t.Errorf("ParseNamespace(%q) succeeded, want error", in)
		}
	}
	long := strings.Repeat("a", MaxNamespacePartLength+1)
	_, err := ParseNamespace(long)
	if !IsKind(err, KindLimitExceeded) {
		t.Errorf("over-long segment: got %v, want limit exceeded", err)
	}
}

func TestNamespaceIsParentOf(t *testing.T) {
	ui, _ := ParseNamespace("ui")
	widgets, _ := ParseNamespace("ui.widgets")
	other, _ := ParseNamespace("db.widgets")

	if !ui.IsParentOf(widgets) {
		t.Error("ui should be a parent of ui.widgets")
	}
	if widgets.IsParentOf(ui) {
		t.Error("ui.widgets should not be a parent of ui")
	}
	if ui.IsParentOf(other) {
		t.Error("ui should not be a parent of db.widgets")
	}
	if ui.IsParentOf(ui) {
		t.Error("a namespace is not its own parent")
	}
}
