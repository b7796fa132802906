// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dustin/go-humanize"
	flag "github.com/spf13/pflag"

	"github.com/kraklabs/meteor/pkg/engine"
	"github.com/kraklabs/meteor/pkg/meteor"
	"github.com/kraklabs/meteor/pkg/parser"
)

// runRepl starts the interactive shell against a single in-memory
// engine. The prompt tracks the engine cursor.
func runRepl(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: meteor repl

Description:
  Start an interactive shell with a single in-memory engine. Type
  'help' inside the shell for the command list.

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(ExitUsage)
	}

	cfg := loadConfigOrDefault()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "app:main> ",
		HistoryFile:  cfg.Repl.HistoryFile,
		AutoComplete: replCompleter,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitConfig)
	}
	defer rl.Close()

	if !globals.Quiet {
		fmt.Printf("meteor %s (%s profile). Type 'help' for commands.\n", meteorVersion, meteor.ProfileName)
	}

	eng := engine.New()
	for {
		rl.SetPrompt(eng.Cursor().Position() + "> ")
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		if cmd == "exit" || cmd == "quit" {
			return
		}
		replDispatch(eng, cmd, rest)
	}
}

var replCompleter = readline.NewPrefixCompleter(
	readline.PcItem("parse"),
	readline.PcItem("meteor"),
	readline.PcItem("set"),
	readline.PcItem("get"),
	readline.PcItem("delete"),
	readline.PcItem("find"),
	readline.PcItem("list"),
	readline.PcItem("contexts"),
	readline.PcItem("namespaces"),
	readline.PcItem("meteors"),
	readline.PcItem("tree"),
	readline.PcItem("history"),
	readline.PcItem("scratch"),
	readline.PcItem("mem"),
	readline.PcItem("ns"),
	readline.PcItem("ctx"),
	readline.PcItem("reset", readline.PcItem("cursor"), readline.PcItem("storage"), readline.PcItem("all")),
	readline.PcItem("help"),
	readline.PcItem("exit"),
)

func replDispatch(eng *engine.Engine, cmd, rest string) {
	switch cmd {
	case "help":
		replHelp()
	case "parse":
		if err := parser.ProcessTokenStream(eng, rest); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	case "meteor":
		if err := parser.ProcessMeteorStream(eng, rest); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	case "set":
		path, value, ok := strings.Cut(rest, " ")
		if !ok {
			fmt.Println("usage: set <path> <value>")
			return
		}
		if err := eng.Set(path, strings.TrimSpace(value)); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	case "get":
		if v, ok := eng.Get(rest); ok {
			fmt.Println(v)
		} else {
			fmt.Printf("%s: not found\n", rest)
		}
	case "delete":
		deleted, err := eng.Delete(rest)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
		} else if !deleted {
			fmt.Printf("%s: not found\n", rest)
		}
	case "find":
		entries, err := eng.Find(rest)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		for _, en := range entries {
			fmt.Printf("%s = %s\n", en.Path(), en.Value)
		}
	case "list":
		replList(eng, rest)
	case "contexts":
		for _, ctx := range eng.Contexts() {
			fmt.Println(ctx)
		}
	case "namespaces":
		ctx := meteor.Context(rest)
		if rest == "" {
			ctx = eng.CurrentContext()
		}
		for _, ns := range eng.Namespaces(ctx) {
			fmt.Println(ns)
		}
	case "meteors":
		for m := range eng.Meteors() {
			fmt.Println(m)
		}
	case "tree":
		ctx := meteor.Context(rest)
		if rest == "" {
			ctx = eng.CurrentContext()
		}
		if rendered, ok := eng.RenderTree(ctx); ok {
			fmt.Print(rendered)
		} else {
			fmt.Printf("%s: no such context\n", ctx)
		}
	case "history":
		for _, rec := range eng.CommandHistory() {
			status := "ok"
			if !rec.Success {
				status = "failed: " + rec.Err
			}
			fmt.Printf("%s  %s %s  %s\n", rec.Timestamp.Format("15:04:05"), rec.Kind, rec.Target, status)
		}
	case "scratch":
		for _, name := range eng.ListScratchSlots() {
			slot := eng.ScratchSlot(name)
			fmt.Printf("%s (%d entries)\n", name, slot.Len())
		}
	case "mem":
		replMem(eng)
	case "ns":
		if err := eng.Cursor().SetNamespace(rest); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	case "ctx":
		if err := eng.Cursor().SetContext(rest); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	case "reset":
		if rest == "" {
			fmt.Println("usage: reset cursor|storage|all|<context>")
			return
		}
		if err := eng.ExecuteControlCommand("reset", rest); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	default:
		fmt.Printf("unknown command %q; type 'help'\n", cmd)
	}
}

func replList(eng *engine.Engine, target string) {
	ctx := eng.CurrentContext()
	ns := eng.CurrentNamespace()
	if target != "" {
		ctxPart, nsPart, ok := strings.Cut(target, ":")
		if !ok {
			fmt.Println("usage: list [ctx:ns]")
			return
		}
		parsedCtx, err := meteor.ParseContext(ctxPart)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		parsedNS, err := meteor.ParseNamespace(nsPart)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		ctx, ns = parsedCtx, parsedNS
	}
	view := eng.NamespaceView(ctx, ns)
	if view == nil {
		fmt.Printf("%s:%s: empty\n", ctx, ns)
		return
	}
	if view.HasDefault {
		fmt.Printf("%s:%s (%d entries, has default)\n", ctx, ns, view.EntryCount)
	} else {
		fmt.Printf("%s:%s (%d entries)\n", ctx, ns, view.EntryCount)
	}
	for _, en := range view.Entries() {
		fmt.Printf("  %s = %s\n", en.Path(), en.Value)
	}
}

func replMem(eng *engine.Engine) {
	st := eng.WorkspaceStatus()
	entries := 0
	for range eng.IterEntries() {
		entries++
	}
	fmt.Printf("contexts:        %s\n", humanize.Comma(int64(len(eng.Contexts()))))
	fmt.Printf("entries:         %s\n", humanize.Comma(int64(entries)))
	fmt.Printf("namespaces:      %s\n", humanize.Comma(int64(st.NamespaceCount)))
	fmt.Printf("cached queries:  %s\n", humanize.Comma(int64(st.TotalCachedQueries)))
	fmt.Printf("ordered keys:    %s\n", humanize.Comma(int64(st.TotalOrderedKeys)))
	fmt.Printf("scratch slots:   %s\n", humanize.Comma(int64(st.ScratchSlotCount)))
	if st.Metrics != nil {
		fmt.Printf("cache hit ratio: %.2f\n", st.Metrics.CacheHitRatio())
	}
}

func replHelp() {
	fmt.Print(`Commands:
  parse <stream>       Run a token stream (cursor folding)
  meteor <stream>      Run an explicit meteor stream
  set <path> <value>   Store one value
  get <path>           Read one value
  delete <path>        Delete key, namespace, or context
  find <pattern>       Glob search (* within a namespace)
  list [ctx:ns]        Show a namespace view
  contexts             List contexts
  namespaces [ctx]     List namespaces
  meteors              Show all meteors
  tree [ctx]           Render the tree index
  history              Show the control-command audit trail
  scratch              List scratch slots
  mem                  Show workspace statistics
  ns <namespace>       Move the cursor namespace
  ctx <context>        Move the cursor context
  reset <target>       reset cursor|storage|all|<context>
  help, exit
`)
}
