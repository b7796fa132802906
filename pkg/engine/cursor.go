// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package engine

import "github.com/kraklabs/meteor/pkg/meteor"

// Cursor is a lightweight accessor for the engine's current
// (context, namespace) position.
type Cursor struct {
	engine *Engine
}

// Cursor returns an accessor for reading and moving the cursor.
func (e *Engine) Cursor() Cursor { return Cursor{engine: e} }

// Context returns the cursor context.
func (c Cursor) Context() meteor.Context { return c.engine.cursorCtx }

// Namespace returns the cursor namespace.
func (c Cursor) Namespace() meteor.Namespace { return c.engine.cursorNS }

// SetContext validates and switches the cursor context.
func (c Cursor) SetContext(name string) error {
	ctx, err := meteor.ParseContext(name)
	if err != nil {
		return err
	}
	c.engine.cursorCtx = ctx
	return nil
}

// SetNamespace validates and switches the cursor namespace.
func (c Cursor) SetNamespace(name string) error {
	ns, err := meteor.ParseNamespace(name)
	if err != nil {
		return err
	}
	c.engine.cursorNS = ns
	return nil
}

// Reset restores the cursor to (app, main).
func (c Cursor) Reset() { c.engine.ResetCursor() }

// Position renders the cursor as "context:namespace".
func (c Cursor) Position() string {
	return string(c.engine.cursorCtx) + ":" + c.engine.cursorNS.String()
}

// CursorGuard captures the cursor for later restoration. Guards nest;
// each restores its own saved position.
type CursorGuard struct {
	engine   *Engine
	savedCtx meteor.Context
	savedNS  meteor.Namespace
}

// CursorGuard captures the current cursor. Restore it with defer so the
// position comes back on every exit path, including panics:
//
//	defer e.CursorGuard().Restore()
func (e *Engine) CursorGuard() *CursorGuard {
	return &CursorGuard{engine: e, savedCtx: e.cursorCtx, savedNS: e.cursorNS}
}

// Restore puts the cursor back to the position captured at guard
// creation.
func (g *CursorGuard) Restore() {
	g.engine.cursorCtx = g.savedCtx
	g.engine.cursorNS = g.savedNS
}

// WithCursor runs fn with the cursor temporarily moved to (ctx, ns),
// restoring the previous position afterward even if fn panics.
func (e *Engine) WithCursor(ctx meteor.Context, ns meteor.Namespace, fn func(*Engine) error) error {
	defer e.CursorGuard().Restore()
	e.cursorCtx = ctx
	e.cursorNS = ns
	return fn(e)
}
