// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"
)

const meteorVersion = "0.2.0"

// Exit codes.
const (
	ExitUsage  = 2
	ExitParse  = 1
	ExitConfig = 3
)

// GlobalFlags are shared by all subcommands.
type GlobalFlags struct {
	JSON  bool
	Quiet bool
}

func main() {
	flags := flag.NewFlagSet("meteor", flag.ExitOnError)
	jsonOut := flags.Bool("json", false, "Output as JSON where supported")
	quiet := flags.Bool("quiet", false, "Suppress informational output")
	showVersion := flags.Bool("version", false, "Print version and exit")
	flags.SetInterspersed(false)

	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: meteor [options] <command> [args]

Commands:
  parse     Parse a token or meteor stream and print the result
  export    Parse a stream and export one namespace
  status    Show the compiled limit profile
  repl      Start the interactive shell
  init      Create a .meteor/config.yaml with defaults
  version   Print version

Options:
`)
		flags.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  meteor parse "button=click;ns=ui;theme=dark"
  meteor parse --meteor "app:ui:button=click :;: user:main:profile=admin"
  meteor export --target doc:guides --format yaml "doc:guides:intro=Welcome"
  meteor repl

`)
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(ExitUsage)
	}

	globals := GlobalFlags{JSON: *jsonOut, Quiet: *quiet}
	setupLogging(globals)

	if *showVersion {
		fmt.Printf("meteor %s\n", meteorVersion)
		return
	}

	args := flags.Args()
	if len(args) == 0 {
		flags.Usage()
		os.Exit(ExitUsage)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "parse":
		runParse(rest, globals)
	case "export":
		runExport(rest, globals)
	case "status":
		runStatus(rest, globals)
	case "repl":
		runRepl(rest, globals)
	case "init":
		runInit(rest, globals)
	case "version":
		fmt.Printf("meteor %s\n", meteorVersion)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", cmd)
		flags.Usage()
		os.Exit(ExitUsage)
	}
}

func setupLogging(globals GlobalFlags) {
	level := slog.LevelInfo
	if globals.Quiet {
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
