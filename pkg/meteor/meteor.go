// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package meteor

import "strings"

// Meteor is a group of tokens sharing one (context, namespace) address.
// Token order is significant and preserved.
type Meteor struct {
	context   Context
	namespace Namespace
	tokens    []Token
}

// NewMeteor builds a meteor from an ordered token list. The token list
// must be non-empty; the shared-address invariant is enforced by
// construction since tokens carry no address of their own.
func NewMeteor(ctx Context, ns Namespace, tokens []Token) (Meteor, error) {
	if len(tokens) == 0 {
		return Meteor{}, Errorf(KindInvalidPath, "", "meteor for %s:%s has no tokens", ctx, ns)
	}
	return Meteor{context: ctx, namespace: ns, tokens: tokens}, nil
}

// Context returns the meteor's context.
func (m Meteor) Context() Context { return m.context }

// Namespace returns the meteor's namespace.
func (m Meteor) Namespace() Namespace { return m.namespace }

// Tokens returns the ordered token list.
func (m Meteor) Tokens() []Token { return m.tokens }

// Len returns the token count.
func (m Meteor) Len() int { return len(m.tokens) }

// String renders "<ctx>:<ns>:<k1>=<v1>;<k2>=<v2>;..." with keys in their
// original notation. Parsing the rendered form reproduces the same keys
// and values in the same order.
func (m Meteor) String() string {
	var b strings.Builder
	b.WriteString(string(m.context))
	b.WriteByte(':')
	b.WriteString(m.namespace.String())
	b.WriteByte(':')
	for i, t := range m.tokens {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(t.key.Notation())
		b.WriteByte('=')
		b.WriteString(QuoteValue(t.value))
	}
	return b.String()
}
