// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

// Package parser implements the two meteor stream dialects. The token
// stream dialect folds on the engine cursor and accepts the control
// tokens ns=, ctx=, and ctl:<verb>=<target>. The meteor stream dialect
// requires each meteor to open with explicit context:namespace:key=value
// addressing, uses the :;: meteor delimiter, and rejects ns= and ctx=,
// so only a ctl:reset command can move the cursor there.
//
// Parsers validate input and delegate every mutation to pkg/engine;
// they hold no state of their own and are not transactional: side
// effects applied before a failure stay applied.
package parser
