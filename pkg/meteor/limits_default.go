// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

//go:build !meteor_enterprise && !meteor_embedded && !meteor_strict

package meteor

// Default profile: balanced limits for general use.
const (
	ProfileName = "default"

	MaxNamespacePartLength = 64
	NamespaceWarningDepth  = 5
	NamespaceErrorDepth    = 6
	MaxMeteorsPerBatch     = 1000
	MaxCommandHistory      = 1000
	MaxContexts            = 100
	MaxTokenKeyLength      = 128
	MaxTokenValueLength    = 2048
)
