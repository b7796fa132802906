// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

// Package engine implements the stateful meteor engine: a multi-context
// hybrid store (flat map plus tree index kept in lockstep), an internal
// workspace for insertion ordering, query caching, and scratch buffers,
// a folding cursor, control commands with a bounded audit trail, and
// the iteration, view, and aggregation surfaces consumers read through.
//
// The engine is single-writer. All mutation goes through Engine methods;
// parsers in pkg/parser validate input and delegate here. One engine
// must not be shared across goroutines without external
// synchronization; independent engines are fine.
package engine
