// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

//go:build meteor_strict

package meteor

// Strict profile: minimal limits for high-security environments.
const (
	ProfileName = "strict"

	MaxNamespacePartLength = 16
	NamespaceWarningDepth  = 3
	NamespaceErrorDepth    = 4
	MaxMeteorsPerBatch     = 50
	MaxCommandHistory      = 500
	MaxContexts            = 5
	MaxTokenKeyLength      = 16
	MaxTokenValueLength    = 128
)
