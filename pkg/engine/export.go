// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package engine

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/meteor/pkg/meteor"
)

// ExportFormat selects the rendering of exported namespace data.
type ExportFormat string

const (
	// FormatText renders one key=value line per token.
	FormatText ExportFormat = "text"
	// FormatJSON renders the export as indented JSON.
	FormatJSON ExportFormat = "json"
	// FormatYAML renders the export as YAML.
	FormatYAML ExportFormat = "yaml"
)

// ParseExportFormat validates a format name.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(s) {
	case FormatText, FormatJSON, FormatYAML:
		return ExportFormat(s), nil
	default:
		return "", fmt.Errorf("unknown export format %q (want text, json, or yaml)", s)
	}
}

// ExportToken is one exported key/value pair. Keys are rendered in
// original bracket notation.
type ExportToken struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// ExportMetadata describes an export for later verification.
type ExportMetadata struct {
	Checksum   string       `json:"checksum" yaml:"checksum"`
	TokenCount int          `json:"token_count" yaml:"token_count"`
	Format     ExportFormat `json:"format" yaml:"format"`
}

// ExportData is a namespace snapshot in workspace key order.
type ExportData struct {
	Context   string         `json:"context" yaml:"context"`
	Namespace string         `json:"namespace" yaml:"namespace"`
	Tokens    []ExportToken  `json:"tokens" yaml:"tokens"`
	Metadata  ExportMetadata `json:"metadata" yaml:"metadata"`
}

// ExportNamespace snapshots a namespace with checksum metadata. It
// reports false when the namespace has no tokens.
func (e *Engine) ExportNamespace(ctx meteor.Context, ns meteor.Namespace, format ExportFormat) (*ExportData, bool) {
	view := e.NamespaceView(ctx, ns)
	if view == nil {
		return nil, false
	}
	data := &ExportData{
		Context:   string(ctx),
		Namespace: ns.String(),
	}
	for _, en := range view.Entries() {
		data.Tokens = append(data.Tokens, ExportToken{Key: view.notationOf(en.Key), Value: en.Value})
	}
	if len(data.Tokens) == 0 {
		return nil, false
	}
	data.Metadata = ExportMetadata{
		Checksum:   data.checksum(),
		TokenCount: len(data.Tokens),
		Format:     format,
	}
	return data, true
}

// checksum hashes the address and ordered tokens, sha256 truncated to
// 16 hex characters.
func (d *ExportData) checksum() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s:%s\n", d.Context, d.Namespace)
	for _, t := range d.Tokens {
		fmt.Fprintf(h, "%s=%s\n", t.Key, t.Value)
	}
	return fmt.Sprintf("%x", h.Sum(nil)[:8])
}

// Render serializes the export in its metadata format.
func (d *ExportData) Render() (string, error) {
	switch d.Metadata.Format {
	case FormatJSON:
		out, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	case FormatYAML:
		out, err := yaml.Marshal(d)
		if err != nil {
			return "", err
		}
		return string(out), nil
	default:
		var b strings.Builder
		fmt.Fprintf(&b, "# %s:%s (%d tokens, checksum %s)\n",
			d.Context, d.Namespace, d.Metadata.TokenCount, d.Metadata.Checksum)
		for _, t := range d.Tokens {
			if ct := ContentTypeOf(t.Key); ct != ContentSimpleValue {
				fmt.Fprintf(&b, "%s=%s  # %s\n", t.Key, meteor.QuoteValue(t.Value), ct)
			} else {
				fmt.Fprintf(&b, "%s=%s\n", t.Key, meteor.QuoteValue(t.Value))
			}
		}
		return b.String(), nil
	}
}

// ImportDiff records what happened to one token during import.
type ImportDiff struct {
	Key      string
	Op       string // "added", "updated", "unchanged"
	OldValue string
	NewValue string
}

// ImportResult summarizes an import.
type ImportResult struct {
	Added         int
	Updated       int
	Unchanged     int
	ChecksumValid bool
	Diff          []ImportDiff
}

// ImportNamespace applies exported data to this engine, diffing against
// existing values and re-verifying the checksum after the import.
func (e *Engine) ImportNamespace(data *ExportData) (*ImportResult, error) {
	ctx, err := meteor.ParseContext(data.Context)
	if err != nil {
		return nil, opErr("import", err)
	}
	ns, err := meteor.ParseNamespace(data.Namespace)
	if err != nil {
		return nil, opErr("import", err)
	}

	result := &ImportResult{}
	for _, t := range data.Tokens {
		key, err := meteor.ParseTokenKey(t.Key)
		if err != nil {
			return nil, opErr("import", err)
		}
		p := meteor.Path{Context: ctx, Namespace: ns, Key: key}
		old, existed := e.GetAt(p)
		if existed && old == t.Value {
			result.Unchanged++
			result.Diff = append(result.Diff, ImportDiff{Key: t.Key, Op: "unchanged", OldValue: old, NewValue: t.Value})
			continue
		}
		if err := e.SetAt(p, t.Value); err != nil {
			return nil, err
		}
		if existed {
			result.Updated++
			result.Diff = append(result.Diff, ImportDiff{Key: t.Key, Op: "updated", OldValue: old, NewValue: t.Value})
		} else {
			result.Added++
			result.Diff = append(result.Diff, ImportDiff{Key: t.Key, Op: "added", NewValue: t.Value})
		}
	}

	recalc, ok := e.ExportNamespace(ctx, ns, data.Metadata.Format)
	result.ChecksumValid = ok && recalc.Metadata.Checksum == data.Metadata.Checksum
	return result, nil
}

// ContentType classifies a key by the bracket conventions used for
// content organization. The classification is a hint; nothing enforces
// the conventions.
type ContentType string

const (
	ContentDocumentSection ContentType = "section"
	ContentScriptPart      ContentType = "part"
	ContentChunk           ContentType = "chunk"
	ContentFunction        ContentType = "function"
	ContentLibrary         ContentType = "library"
	ContentModule          ContentType = "module"
	ContentBlob            ContentType = "blob"
	ContentMetadata        ContentType = "metadata"
	ContentCanonical       ContentType = "canonical"
	ContentSimpleValue     ContentType = "value"
)

// ContentTypeOf recognizes the standard bracket patterns: section[...],
// part[...], chunk[...], func[...]/function[...], lib[...]/library[...],
// mod[...]/module[...], blob[...], metadata[...], and the canonical
// whole-document keys full, raw, and packed.
func ContentTypeOf(key string) ContentType {
	switch key {
	case "full", "raw", "packed":
		return ContentCanonical
	}
	base, _, ok := strings.Cut(key, "[")
	if !ok {
		return ContentSimpleValue
	}
	switch base {
	case "section":
		return ContentDocumentSection
	case "part":
		return ContentScriptPart
	case "chunk":
		return ContentChunk
	case "function", "func":
		return ContentFunction
	case "library", "lib":
		return ContentLibrary
	case "module", "mod":
		return ContentModule
	case "blob":
		return ContentBlob
	case "metadata":
		return ContentMetadata
	default:
		return ContentSimpleValue
	}
}
