// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

// Package meteor defines the core value types of the meteor data model:
// contexts, namespaces, token keys with bracket notation, tokens, and
// meteors (addressed token groups). It also provides path parsing for the
// context:namespace:key addressing scheme, value quoting and escaping for
// the wire grammar, the error taxonomy shared by the engine and parsers,
// and the compile-time limit profiles.
//
// The stateful engine lives in pkg/engine; the stream dialects live in
// pkg/parser. This package has no dependencies on either.
package meteor
