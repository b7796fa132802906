// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package meteor

import (
	"errors"
	"fmt"
)

// Kind classifies meteor errors. Kinds are stable across releases; message
// text is not.
type Kind uint8

const (
	// KindInvalidPath reports a malformed context:namespace:key path.
	KindInvalidPath Kind = iota + 1
	// KindInvalidKey reports a key that violates the token key grammar.
	KindInvalidKey
	// KindInvalidContext reports an empty or malformed context name.
	KindInvalidContext
	// KindNamespaceTooDeep reports a namespace at or beyond the error depth.
	KindNamespaceTooDeep
	// KindTypeConflict reports a file/directory clash at a tree path.
	KindTypeConflict
	// KindMixedAddress reports conflicting addresses inside one meteor.
	KindMixedAddress
	// KindUnknownControlCommand reports an unrecognized ctl verb or target.
	KindUnknownControlCommand
	// KindLimitExceeded reports a compile-time limit violation.
	KindLimitExceeded
	// KindInternalInvariant reports a flat/tree duality violation. It
	// indicates a bug in meteor, not bad input.
	KindInternalInvariant
)

func (k Kind) String() string {
	switch k {
	case KindInvalidPath:
		return "invalid path"
	case KindInvalidKey:
		return "invalid key"
	case KindInvalidContext:
		return "invalid context"
	case KindNamespaceTooDeep:
		return "namespace too deep"
	case KindTypeConflict:
		return "type conflict"
	case KindMixedAddress:
		return "mixed address"
	case KindUnknownControlCommand:
		return "unknown control command"
	case KindLimitExceeded:
		return "limit exceeded"
	case KindInternalInvariant:
		return "internal invariant violated"
	default:
		return "unknown error"
	}
}

// Error is the typed error returned by all meteor operations. Op names the
// failing operation ("set", "parse", "import"); user-visible rendering is
// "<op> failed: <reason>".
type Error struct {
	Kind    Kind
	Op      string
	Message string
}

func (e *Error) Error() string {
	if e.Op != "" {
		return e.Op + " failed: " + e.Message
	}
	return e.Message
}

// Is matches any *Error with the same Kind, so sentinel comparisons like
// errors.Is(err, meteor.ErrTypeConflict) work regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrInvalidPath           = &Error{Kind: KindInvalidPath}
	ErrInvalidKey            = &Error{Kind: KindInvalidKey}
	ErrInvalidContext        = &Error{Kind: KindInvalidContext}
	ErrNamespaceTooDeep      = &Error{Kind: KindNamespaceTooDeep}
	ErrTypeConflict          = &Error{Kind: KindTypeConflict}
	ErrMixedAddress          = &Error{Kind: KindMixedAddress}
	ErrUnknownControlCommand = &Error{Kind: KindUnknownControlCommand}
	ErrLimitExceeded         = &Error{Kind: KindLimitExceeded}
	ErrInternalInvariant     = &Error{Kind: KindInternalInvariant}
)

// Errorf builds a typed error with a formatted message.
func Errorf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err (or anything it wraps) is a meteor error of
// the given kind.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
