// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package meteor

import (
	"strings"
	"testing"
)

func TestParseToken(t *testing.T) {
	tok, err := ParseToken("button=click")
	if err != nil {
		t.Fatal(err)
	}
	if tok.Key().Flat() != "button" || tok.Value() != "click" {
		t.Errorf("got (%s, %s)", tok.Key().Flat(), tok.Value())
	}

	tok, err = ParseToken(`msg="hello; world"`)
	if err != nil {
		t.Fatal(err)
	}
	if tok.Value() != "hello; world" {
		t.Errorf("quoted value = %q", tok.Value())
	}

	tok, err = ParseToken("list[0]=first")
	if err != nil {
		t.Fatal(err)
	}
	if tok.Key().Flat() != "list__i_0" || tok.Key().Notation() != "list[0]" {
		t.Errorf("bracket key = (%s, %s)", tok.Key().Flat(), tok.Key().Notation())
	}

	// Values keep '=' after the first one.
	tok, err = ParseToken("eq=a=b")
	if err != nil {
		t.Fatal(err)
	}
	if tok.Value() != "a=b" {
		t.Errorf("value = %q, want a=b", tok.Value())
	}
}

func TestParseTokenErrors(t *testing.T) {
	if _, err := ParseToken("no_equals"); err == nil {
		t.Error("missing '=' should fail")
	}
	if _, err := ParseToken("=value"); err == nil {
		t.Error("empty key should fail")
	}
	long := strings.Repeat("v", MaxTokenValueLength+1)
	if _, err := ParseToken("k=" + long); !IsKind(err, KindLimitExceeded) {
		t.Error("over-long value should exceed limit")
	}
}

func TestTokenString(t *testing.T) {
	tok, err := ParseToken("sections[intro]=Welcome")
	if err != nil {
		t.Fatal(err)
	}
	if got := tok.String(); got != "sections[intro]=Welcome" {
		t.Errorf("String() = %q", got)
	}
}
