// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	flag "github.com/spf13/pflag"

	"github.com/kraklabs/meteor/pkg/engine"
	"github.com/kraklabs/meteor/pkg/parser"
)

// ParseResult is the JSON shape of a parse run.
type ParseResult struct {
	Input    string       `json:"input"`
	Meteors  []string     `json:"meteors"`
	Entries  []EntryJSON  `json:"entries"`
	Cursor   string       `json:"cursor"`
	Commands int          `json:"commands"`
	Error    string       `json:"error,omitempty"`
}

// EntryJSON is one stored entry in JSON output.
type EntryJSON struct {
	Path  string `json:"path"`
	Value string `json:"value"`
}

// runParse parses a token or meteor stream into a fresh engine and
// prints the resulting state.
func runParse(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	format := fs.String("format", "", "Output format: text, json, or debug")
	meteorStream := fs.Bool("meteor", false, "Parse as an explicit meteor stream (:;: delimited)")
	lenient := fs.Bool("lenient", false, "Allow mixed addresses within one meteor (meteor streams only)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: meteor parse [options] <stream>

Description:
  Parse a stream into a fresh engine and print the stored result.
  Reads from stdin when no stream argument is given.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  meteor parse "button=click;ns=ui;theme=dark"
  meteor parse --meteor "app:ui:button=click :;: user:main:profile=admin"
  echo "key=value" | meteor parse

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(ExitUsage)
	}

	input := strings.Join(fs.Args(), " ")
	if input == "" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot read stdin: %v\n", err)
			os.Exit(ExitParse)
		}
		input = strings.TrimSpace(string(raw))
	}
	if input == "" {
		fmt.Fprintln(os.Stderr, "Error: no input provided")
		fs.Usage()
		os.Exit(ExitUsage)
	}

	outFormat := *format
	if outFormat == "" {
		outFormat = loadConfigOrDefault().Output.Format
	}
	if globals.JSON {
		outFormat = "json"
	}

	eng := engine.New()
	var parseErr error
	if *meteorStream {
		parseErr = parser.ProcessMeteorStreamOpts(eng, input, parser.MeteorStreamOptions{Lenient: *lenient})
	} else {
		parseErr = parser.ProcessTokenStream(eng, input)
	}

	switch outFormat {
	case "json":
		printParseJSON(eng, input, parseErr)
	case "debug":
		printParseDebug(eng, input, parseErr)
	default:
		printParseText(eng, input, parseErr, globals)
	}
	if parseErr != nil {
		os.Exit(ExitParse)
	}
}

func printParseText(eng *engine.Engine, input string, parseErr error, globals GlobalFlags) {
	for m := range eng.Meteors() {
		fmt.Println(m)
	}
	if !globals.Quiet {
		fmt.Printf("cursor: %s\n", eng.Cursor().Position())
	}
	if parseErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", parseErr)
	}
}

func printParseJSON(eng *engine.Engine, input string, parseErr error) {
	result := ParseResult{
		Input:    input,
		Cursor:   eng.Cursor().Position(),
		Commands: len(eng.CommandHistory()),
	}
	for m := range eng.Meteors() {
		result.Meteors = append(result.Meteors, m.String())
	}
	for en := range eng.IterEntries() {
		result.Entries = append(result.Entries, EntryJSON{Path: en.Path(), Value: en.Value})
	}
	if parseErr != nil {
		result.Error = parseErr.Error()
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
}

func printParseDebug(eng *engine.Engine, input string, parseErr error) {
	fmt.Printf("input: %q\n\n", input)
	entries := 0
	for range eng.IterEntries() {
		entries++
	}
	for _, ctx := range eng.Contexts() {
		if rendered, ok := eng.RenderTree(ctx); ok {
			fmt.Print(rendered)
		}
	}
	st := eng.WorkspaceStatus()
	fmt.Printf("\nentries: %s  namespaces: %s  cursor: %s\n",
		humanize.Comma(int64(entries)),
		humanize.Comma(int64(st.NamespaceCount)),
		eng.Cursor().Position())
	if st.Metrics != nil {
		fmt.Printf("cache hits/misses: %d/%d  iterations: %d\n",
			st.Metrics.CacheHits, st.Metrics.CacheMisses, st.Metrics.IterationCount)
	}
	if parseErr != nil {
		fmt.Printf("error: %v\n", parseErr)
	}
}
