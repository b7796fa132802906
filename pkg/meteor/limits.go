// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package meteor

import "fmt"

// Compile-time limits are selected by build tag: meteor_enterprise,
// meteor_embedded, meteor_strict, or none for the default profile. The
// limits_*.go files define one constant set each; exactly one set is
// compiled into a given binary. The core reads no runtime configuration.

// LimitSummary renders the compiled profile and its limits, one per line.
func LimitSummary() string {
	return fmt.Sprintf(`Meteor configuration profile: %s
  Max namespace part length: %d
  Namespace warning depth:   %d
  Namespace error depth:     %d
  Max meteors per batch:     %d
  Max command history:       %d
  Max contexts:              %d
  Max token key length:      %d
  Max token value length:    %d`,
		ProfileName,
		MaxNamespacePartLength,
		NamespaceWarningDepth,
		NamespaceErrorDepth,
		MaxMeteorsPerBatch,
		MaxCommandHistory,
		MaxContexts,
		MaxTokenKeyLength,
		MaxTokenValueLength)
}
