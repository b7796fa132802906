// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package meteor

import "testing"

func mustKey(t *testing.T, s string) TokenKey {
	t.Helper()
	k, err := ParseTokenKey(s)
	if err != nil {
		t.Fatalf("ParseTokenKey(%q): %v", s, err)
	}
	return k
}

func TestMeteorString(t *testing.T) {
	ns, err := ParseNamespace("guides.install")
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewMeteor("doc", ns, []Token{
		NewToken(mustKey(t, "sections[intro]"), "W"),
		NewToken(mustKey(t, "sections[10_setup]"), "S1"),
		NewToken(mustKey(t, "sections[20_config]"), "S2"),
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "doc:guides.install:sections[intro]=W;sections[10_setup]=S1;sections[20_config]=S2"
	if got := m.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestMeteorStringQuotesValues(t *testing.T) {
	m, err := NewMeteor("app", RootNamespace(), []Token{
		NewToken(mustKey(t, "msg"), "semi;colon"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := m.String(); got != `app:main:msg="semi;colon"` {
		t.Errorf("String() = %q", got)
	}
}

func TestNewMeteorEmpty(t *testing.T) {
	if _, err := NewMeteor("app", RootNamespace(), nil); err == nil {
		t.Error("empty token list should fail")
	}
}
