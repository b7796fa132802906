// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config holds front-end preferences only. The core engine reads no
// runtime configuration; its limits are compiled in.
type Config struct {
	Output struct {
		// Format is the default output format for parse/export
		// (text, json, or yaml for export).
		Format string `yaml:"format"`
	} `yaml:"output"`
	Repl struct {
		// HistoryFile is where the REPL persists its input history.
		HistoryFile string `yaml:"history_file"`
	} `yaml:"repl"`
}

// DefaultConfig returns the built-in front-end defaults.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Output.Format = "text"
	cfg.Repl.HistoryFile = filepath.Join(".meteor", "repl_history")
	return cfg
}

// ConfigPath returns the config file location under dir.
func ConfigPath(dir string) string {
	return filepath.Join(dir, ".meteor", "config.yaml")
}

// LoadConfig reads a config file, returning defaults for any field not
// set in the file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes a config file, creating the .meteor directory.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// loadConfigOrDefault resolves the working-directory config, falling
// back to defaults when none exists.
func loadConfigOrDefault() *Config {
	cwd, err := os.Getwd()
	if err != nil {
		return DefaultConfig()
	}
	cfg, err := LoadConfig(ConfigPath(cwd))
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// runInit creates a new .meteor/config.yaml configuration file.
func runInit(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite existing configuration")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: meteor init [options]

Description:
  Create a new .meteor/config.yaml configuration file in the current
  directory with front-end defaults. Engine limits are compiled in and
  are not configurable here; see 'meteor status'.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(ExitUsage)
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot determine working directory: %v\n", err)
		os.Exit(ExitConfig)
	}
	path := ConfigPath(cwd)
	if _, err := os.Stat(path); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Error: %s already exists\n", path)
		fmt.Fprintf(os.Stderr, "Use --force to overwrite\n")
		os.Exit(ExitConfig)
	}
	if err := SaveConfig(DefaultConfig(), path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitConfig)
	}
	if !globals.Quiet {
		fmt.Printf("Created %s\n", path)
	}
}
