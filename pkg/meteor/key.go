// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package meteor

import "strings"

// IndexKey is the reserved key name that provides a directory's default
// value ("has default" / "get default" queries).
const IndexKey = ".index"

// appendMarker is the flat-form index for append brackets: queue[] maps
// to queue__i_APPEND.
const appendMarker = "APPEND"

// TokenKey is a leaf key that may use bracket notation (list[0],
// grid[2,3], queue[], sections[intro]). It carries both the original
// notation and the canonical flat form; the original is cached verbatim
// so Notation never recomputes from the flat form.
//
// Transform rules:
//
//	name[i,j,...]  all-numeric  ->  name__i_<i>_<j>_...
//	name[]         append       ->  name__i_APPEND
//	name[label]    non-numeric  ->  name__label
//
// Keys may be dotted paths (user.name); only the final segment may carry
// a bracket.
type TokenKey struct {
	notation string
	flat     string
}

// ParseTokenKey validates a key against the token key grammar and
// computes its flat form.
func ParseTokenKey(s string) (TokenKey, error) {
	if s == "" {
		return TokenKey{}, Errorf(KindInvalidKey, "", "key cannot be empty")
	}
	if len(s) > MaxTokenKeyLength {
		return TokenKey{}, Errorf(KindLimitExceeded, "", "key %q exceeds %d characters", s, MaxTokenKeyLength)
	}
	if s == IndexKey {
		return TokenKey{notation: s, flat: s}, nil
	}
	segs := strings.Split(s, ".")
	flat := make([]string, len(segs))
	for i, seg := range segs {
		hasBracket := strings.ContainsAny(seg, "[]")
		if hasBracket && i != len(segs)-1 {
			return TokenKey{}, Errorf(KindInvalidKey, "", "key %q: brackets are only allowed on the final segment", s)
		}
		if !hasBracket {
			if err := validateKeyIdent(seg, s); err != nil {
				return TokenKey{}, err
			}
			flat[i] = seg
			continue
		}
		f, err := flattenBracketSegment(seg, s)
		if err != nil {
			return TokenKey{}, err
		}
		flat[i] = f
	}
	return TokenKey{notation: s, flat: strings.Join(flat, ".")}, nil
}

func validateKeyIdent(seg, whole string) error {
	if seg == "" {
		return Errorf(KindInvalidKey, "", "key %q has an empty segment", whole)
	}
	if !isIdentStart(rune(seg[0])) {
		return Errorf(KindInvalidKey, "", "key segment %q must start with a letter or underscore", seg)
	}
	for _, r := range seg[1:] {
		if !isIdentPart(r) {
			return Errorf(KindInvalidKey, "", "key segment %q contains invalid character %q", seg, r)
		}
	}
	return nil
}

// flattenBracketSegment transforms one bracketed segment to flat form.
func flattenBracketSegment(seg, whole string) (string, error) {
	open := strings.IndexByte(seg, '[')
	if open <= 0 || !strings.HasSuffix(seg, "]") {
		return "", Errorf(KindInvalidKey, "", "key %q has malformed brackets", whole)
	}
	base := seg[:open]
	content := seg[open+1 : len(seg)-1]
	if err := validateKeyIdent(base, whole); err != nil {
		return "", err
	}
	if strings.ContainsAny(content, "[]") {
		return "", Errorf(KindInvalidKey, "", "key %q has nested brackets", whole)
	}

	// Empty brackets are the append form.
	if content == "" {
		return base + "__i_" + appendMarker, nil
	}

	parts := strings.Split(content, ",")
	allNumeric := true
	for _, p := range parts {
		if !isNumeric(strings.TrimSpace(p)) {
			allNumeric = false
			break
		}
	}
	if allNumeric {
		idx := make([]string, len(parts))
		for i, p := range parts {
			idx[i] = strings.TrimSpace(p)
		}
		return base + "__i_" + strings.Join(idx, "_"), nil
	}
	if len(parts) > 1 {
		return "", Errorf(KindInvalidKey, "", "key %q: multi-index brackets must be all numeric", whole)
	}
	label := strings.TrimSpace(content)
	for _, r := range label {
		if !isIdentPart(r) {
			return "", Errorf(KindInvalidKey, "", "key %q: bracket label contains invalid character %q", whole, r)
		}
	}
	return base + "__" + label, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Flat returns the canonical flat form used as the storage key.
func (k TokenKey) Flat() string { return k.flat }

// Notation returns the original key form, cached verbatim.
func (k TokenKey) Notation() string { return k.notation }

// HasBrackets reports whether the original form used bracket notation.
func (k TokenKey) HasBrackets() bool { return strings.ContainsRune(k.notation, '[') }

// IsZero reports whether the key is the zero value.
func (k TokenKey) IsZero() bool { return k.notation == "" }

func (k TokenKey) String() string { return k.flat }

// FlatToNotation performs the best-effort inverse transform for flat
// strings that entered the system without an original form (external
// imports, display paths). Bracket keys produced by ParseTokenKey such as
// list[0], grid[2,3], queue[] and sections[intro] round-trip exactly.
// Others do not: a key containing "__" outside the brackets (foo__bar)
// comes back with brackets (foo[bar]), a label starting with "i_" is read
// as an index (s[i_x] comes back as s[x]), and spaces inside brackets are
// dropped (grid[2, 3] comes back as grid[2,3]).
func FlatToNotation(s string) string {
	segs := strings.Split(s, ".")
	for i, seg := range segs {
		segs[i] = flatSegmentToNotation(seg)
	}
	return strings.Join(segs, ".")
}

func flatSegmentToNotation(seg string) string {
	dunder := strings.Index(seg, "__")
	if dunder <= 0 {
		return seg
	}
	base := seg[:dunder]
	suffix := seg[dunder+2:]
	if suffix == "" {
		return seg
	}
	if rest, ok := strings.CutPrefix(suffix, "i_"); ok {
		if rest == appendMarker {
			return base + "[]"
		}
		return base + "[" + strings.ReplaceAll(rest, "_", ",") + "]"
	}
	return base + "[" + suffix + "]"
}
