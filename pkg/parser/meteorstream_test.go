// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package parser

import (
	"errors"
	"testing"

	"github.com/kraklabs/meteor/pkg/engine"
	"github.com/kraklabs/meteor/pkg/meteor"
)

func TestMeteorStreamExplicit(t *testing.T) {
	e := engine.New()
	// A bare token after the opening explicit token inherits the
	// meteor's address.
	if err := ProcessMeteorStream(e, "app:ui:button=click;theme=dark :;: user:main:profile=admin"); err != nil {
		t.Fatal(err)
	}
	for path, want := range map[string]string{
		"app:ui:button":     "click",
		"app:ui:theme":      "dark",
		"user:main:profile": "admin",
	} {
		if v, _ := e.Get(path); v != want {
			t.Errorf("%s = %q, want %q", path, v, want)
		}
	}
	// The cursor never moves.
	if e.Cursor().Position() != "app:main" {
		t.Errorf("cursor = %s", e.Cursor().Position())
	}
}

func TestMeteorStreamRejectsBareOpening(t *testing.T) {
	e := engine.New()
	if err := ProcessMeteorStream(e, "key=value"); err == nil {
		t.Error("a meteor must open with an explicit address")
	}
}

func TestMeteorStreamRejectsCursorControls(t *testing.T) {
	e := engine.New()
	if err := ProcessMeteorStream(e, "ns=ui"); err == nil {
		t.Error("ns= should be rejected")
	}
	if err := ProcessMeteorStream(e, "ctx=user"); err == nil {
		t.Error("ctx= should be rejected")
	}
	if e.Cursor().Position() != "app:main" {
		t.Error("cursor must not move")
	}
}

func TestMeteorStreamAllowsControlCommands(t *testing.T) {
	e := engine.New()
	if err := e.Set("app:ui:button", "click"); err != nil {
		t.Fatal(err)
	}
	if err := ProcessMeteorStream(e, "ctl:reset=cursor :;: app:ui:theme=dark"); err != nil {
		t.Fatal(err)
	}
	if v, _ := e.Get("app:ui:theme"); v != "dark" {
		t.Errorf("theme = %q", v)
	}
	last, ok := e.LastCommand()
	if !ok || last.Kind != "reset" || last.Target != "cursor" {
		t.Errorf("last command = %+v", last)
	}
}

func TestMeteorStreamMixedAddressStrict(t *testing.T) {
	e := engine.New()
	err := ProcessMeteorStream(e, "app:ui:button=click;user:main:profile=admin")
	if !meteor.IsKind(err, meteor.KindMixedAddress) {
		t.Fatalf("got %v, want mixed address", err)
	}
	// The first token applied; the conflicting one did not.
	if !e.Exists("app:ui:button") {
		t.Error("first token lost")
	}
	if e.Exists("user:main:profile") {
		t.Error("conflicting token applied under strict policy")
	}
}

func TestMeteorStreamMixedAddressLenient(t *testing.T) {
	e := engine.New()
	err := ProcessMeteorStreamOpts(e, "app:ui:button=click;user:main:profile=admin",
		MeteorStreamOptions{Lenient: true})
	if err != nil {
		t.Fatal(err)
	}
	if !e.Exists("app:ui:button") || !e.Exists("user:main:profile") {
		t.Error("lenient policy should apply both tokens")
	}
}

func TestMeteorStreamQuotedDelimiter(t *testing.T) {
	e := engine.New()
	if err := ProcessMeteorStream(e, `app:ui:note="a :;: b"`); err != nil {
		t.Fatal(err)
	}
	if v, _ := e.Get("app:ui:note"); v != "a :;: b" {
		t.Errorf("note = %q", v)
	}
}

func TestValidateMeteorStream(t *testing.T) {
	if err := ValidateMeteorStream("app:ui:key=value"); err != nil {
		t.Errorf("valid meteor rejected: %v", err)
	}
	if err := ValidateMeteorStream("app:ui:key=value :;: user:main:profile=admin"); err != nil {
		t.Errorf("valid stream rejected: %v", err)
	}
	if err := ValidateMeteorStream("invalid format"); err == nil {
		t.Error("invalid stream accepted")
	}
	if err := ValidateMeteorStream("key=value"); err == nil {
		t.Error("bare token accepted by meteor validation")
	}
}

func TestParseMeteorDisplayRoundTrip(t *testing.T) {
	e := engine.New()
	for _, step := range []struct{ path, value string }{
		{"doc:guides.install:sections[intro]", "W"},
		{"doc:guides.install:sections[10_setup]", "S1"},
		{"doc:guides.install:msg", "semi;colon"},
	} {
		if err := e.Set(step.path, step.value); err != nil {
			t.Fatal(err)
		}
	}
	ns, err := meteor.ParseNamespace("guides.install")
	if err != nil {
		t.Fatal(err)
	}
	m, ok := e.MeteorFor("doc", ns)
	if !ok {
		t.Fatal("meteor missing")
	}

	back, err := ParseMeteor(m.String())
	if err != nil {
		t.Fatalf("ParseMeteor(%q): %v", m.String(), err)
	}
	if back.String() != m.String() {
		t.Errorf("round trip:\n  first:  %q\n  second: %q", m.String(), back.String())
	}
	if back.Len() != m.Len() {
		t.Errorf("token count changed: %d -> %d", m.Len(), back.Len())
	}
	for i, tok := range back.Tokens() {
		orig := m.Tokens()[i]
		if tok.Key().Notation() != orig.Key().Notation() || tok.Value() != orig.Value() {
			t.Errorf("token %d changed: %s=%q -> %s=%q", i,
				orig.Key().Notation(), orig.Value(), tok.Key().Notation(), tok.Value())
		}
	}
}

func TestParseMeteorErrors(t *testing.T) {
	if _, err := ParseMeteor("key=value"); err == nil {
		t.Error("meteor must open with a full address")
	}
	_, err := ParseMeteor("app:ui:a=1;user:main:b=2")
	var me *meteor.Error
	if !errors.As(err, &me) || me.Kind != meteor.KindMixedAddress {
		t.Errorf("mixed address parse: got %v", err)
	}
}
