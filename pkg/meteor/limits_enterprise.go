// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

//go:build meteor_enterprise

package meteor

// Enterprise profile: higher limits for large-scale deployments.
const (
	ProfileName = "enterprise"

	MaxNamespacePartLength = 128
	NamespaceWarningDepth  = 6
	NamespaceErrorDepth    = 8
	MaxMeteorsPerBatch     = 10000
	MaxCommandHistory      = 10000
	MaxContexts            = 1000
	MaxTokenKeyLength      = 256
	MaxTokenValueLength    = 8192
)
