// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package meteor

import "strings"

// DefaultNamespace is the reserved token naming the empty namespace.
const DefaultNamespace = "main"

// Namespace is an ordered sequence of dot-separated identifier segments
// within a context (e.g. "ui.widgets.buttons"). The zero value is the
// root namespace, spelled "main".
type Namespace struct {
	segments []string
}

// RootNamespace returns the empty ("main") namespace.
func RootNamespace() Namespace { return Namespace{} }

// ParseNamespace validates a dotted namespace string against the segment
// grammar, the per-segment length limit, and the compile-time depth gate.
// "" and "main" both parse to the root namespace.
func ParseNamespace(s string) (Namespace, error) {
	if s == "" || s == DefaultNamespace {
		return Namespace{}, nil
	}
	segs := strings.Split(s, ".")
	for _, seg := range segs {
		if err := validateSegment(seg); err != nil {
			return Namespace{}, err
		}
	}
	if len(segs) >= NamespaceErrorDepth {
		return Namespace{}, Errorf(KindNamespaceTooDeep, "",
			"namespace %q is %d levels deep (limit %d)", s, len(segs), NamespaceErrorDepth)
	}
	return Namespace{segments: segs}, nil
}

func validateSegment(seg string) error {
	if seg == "" {
		return Errorf(KindInvalidPath, "", "namespace segment cannot be empty")
	}
	if len(seg) > MaxNamespacePartLength {
		return Errorf(KindLimitExceeded, "",
			"namespace segment %q exceeds %d characters", seg, MaxNamespacePartLength)
	}
	if !isIdentStart(rune(seg[0])) {
		return Errorf(KindInvalidPath, "", "namespace segment %q must start with a letter or underscore", seg)
	}
	for _, r := range seg[1:] {
		if !isIdentPart(r) {
			return Errorf(KindInvalidPath, "", "namespace segment %q contains invalid character %q", seg, r)
		}
	}
	return nil
}

// Segments returns the namespace segments; nil for the root namespace.
func (n Namespace) Segments() []string { return n.segments }

// Depth returns the segment count; the root namespace has depth 0.
func (n Namespace) Depth() int { return len(n.segments) }

// IsRoot reports whether this is the root ("main") namespace.
func (n Namespace) IsRoot() bool { return len(n.segments) == 0 }

// ShouldWarn reports whether the namespace is at or beyond the warning
// depth but still below the error depth.
func (n Namespace) ShouldWarn() bool {
	return len(n.segments) >= NamespaceWarningDepth
}

// IsParentOf reports whether n is a strict prefix of other.
func (n Namespace) IsParentOf(other Namespace) bool {
	if len(n.segments) >= len(other.segments) {
		return false
	}
	for i, seg := range n.segments {
		if other.segments[i] != seg {
			return false
		}
	}
	return true
}

// String renders the dotted form, or "main" for the root namespace.
func (n Namespace) String() string {
	if len(n.segments) == 0 {
		return DefaultNamespace
	}
	return strings.Join(n.segments, ".")
}
