// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/meteor/pkg/meteor"
)

// StatusResult is the JSON shape of the status command.
type StatusResult struct {
	Version                string `json:"version"`
	Profile                string `json:"profile"`
	MaxNamespacePartLength int    `json:"max_namespace_part_length"`
	NamespaceWarningDepth  int    `json:"namespace_warning_depth"`
	NamespaceErrorDepth    int    `json:"namespace_error_depth"`
	MaxMeteorsPerBatch     int    `json:"max_meteors_per_batch"`
	MaxCommandHistory      int    `json:"max_command_history"`
	MaxContexts            int    `json:"max_contexts"`
	MaxTokenKeyLength      int    `json:"max_token_key_length"`
	MaxTokenValueLength    int    `json:"max_token_value_length"`
}

// runStatus displays the compiled limit profile.
func runStatus(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: meteor status

Description:
  Display the compile-time limit profile baked into this binary.

Options (inherited):
  --json    Output as JSON

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(ExitUsage)
	}

	if globals.JSON {
		result := StatusResult{
			Version:                meteorVersion,
			Profile:                meteor.ProfileName,
			MaxNamespacePartLength: meteor.MaxNamespacePartLength,
			NamespaceWarningDepth:  meteor.NamespaceWarningDepth,
			NamespaceErrorDepth:    meteor.NamespaceErrorDepth,
			MaxMeteorsPerBatch:     meteor.MaxMeteorsPerBatch,
			MaxCommandHistory:      meteor.MaxCommandHistory,
			MaxContexts:            meteor.MaxContexts,
			MaxTokenKeyLength:      meteor.MaxTokenKeyLength,
			MaxTokenValueLength:    meteor.MaxTokenValueLength,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
		return
	}

	fmt.Printf("meteor %s\n\n", meteorVersion)
	fmt.Println(meteor.LimitSummary())
}
