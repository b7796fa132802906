// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

//go:build meteor_embedded

package meteor

// Embedded profile: lower limits for memory-constrained environments.
const (
	ProfileName = "embedded"

	MaxNamespacePartLength = 32
	NamespaceWarningDepth  = 3
	NamespaceErrorDepth    = 4
	MaxMeteorsPerBatch     = 100
	MaxCommandHistory      = 100
	MaxContexts            = 10
	MaxTokenKeyLength      = 32
	MaxTokenValueLength    = 256
)
