// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package parser

import (
	"strings"

	"github.com/kraklabs/meteor/pkg/meteor"
)

// SmartSplit splits input on delim occurrences that are outside balanced
// quotes (double or single) and outside balanced [...] groups. Escaped
// characters inside double quotes never terminate a quote. Empty
// segments are dropped; segments are trimmed. Unbalanced quotes fail
// the whole call.
func SmartSplit(input string, delim byte) ([]string, error) {
	var (
		parts        []string
		start        int
		inDouble     bool
		inSingle     bool
		bracketDepth int
		escaped      bool
	)
	flush := func(end int) {
		seg := strings.TrimSpace(input[start:end])
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	for i := 0; i < len(input); i++ {
		c := input[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inDouble:
			escaped = true
		case c == '"' && !inSingle:
			inDouble = !inDouble
		case c == '\'' && !inDouble:
			inSingle = !inSingle
		case inDouble || inSingle:
		case c == '[':
			bracketDepth++
		case c == ']':
			if bracketDepth > 0 {
				bracketDepth--
			}
		case c == delim && bracketDepth == 0:
			flush(i)
			start = i + 1
		}
	}
	if inDouble || inSingle {
		return nil, meteor.Errorf(meteor.KindInvalidPath, "parse", "unbalanced quote in %q", input)
	}
	flush(len(input))
	return parts, nil
}

// SplitMeteors splits a stream on the three-character meteor delimiter
// ":;:" outside quotes.
func SplitMeteors(input string) ([]string, error) {
	var (
		parts    []string
		cur      strings.Builder
		inDouble bool
		inSingle bool
		escaped  bool
	)
	flush := func() {
		seg := strings.TrimSpace(cur.String())
		if seg != "" {
			parts = append(parts, seg)
		}
		cur.Reset()
	}
	for i := 0; i < len(input); i++ {
		c := input[i]
		if escaped {
			cur.WriteByte(c)
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inDouble:
			cur.WriteByte(c)
			escaped = true
		case c == '"' && !inSingle:
			cur.WriteByte(c)
			inDouble = !inDouble
		case c == '\'' && !inDouble:
			cur.WriteByte(c)
			inSingle = !inSingle
		case !inDouble && !inSingle && c == ':' && strings.HasPrefix(input[i:], meteorDelimiter):
			flush()
			i += len(meteorDelimiter) - 1
		default:
			cur.WriteByte(c)
		}
	}
	if inDouble || inSingle {
		return nil, meteor.Errorf(meteor.KindInvalidPath, "parse", "unbalanced quote in %q", input)
	}
	flush()
	return parts, nil
}
