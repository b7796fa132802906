// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package parser

import (
	"strings"

	"go.uber.org/multierr"

	"github.com/kraklabs/meteor/pkg/engine"
	"github.com/kraklabs/meteor/pkg/meteor"
)

// Control token prefixes of the token stream dialect.
const (
	ctlPrefix = "ctl:"
	nsPrefix  = "ns="
	ctxPrefix = "ctx="
)

// ProcessTokenStream runs a token stream against an engine with cursor
// folding: ns= and ctx= move the cursor, ctl: tokens execute control
// commands, bare key=value tokens store at the cursor, and explicit
// ctx:ns:key=value tokens store at their address without moving the
// cursor. Cursor state persists across calls on the same engine.
//
// Unbalanced quotes fail the whole call. Other per-token failures are
// collected and the remainder of the stream still runs; side effects
// applied before a failure stay applied.
func ProcessTokenStream(e *engine.Engine, input string) error {
	parts, err := SmartSplit(input, ';')
	if err != nil {
		return err
	}
	var errs error
	for _, part := range parts {
		if err := processTokenPart(e, part); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func processTokenPart(e *engine.Engine, part string) error {
	switch {
	case strings.HasPrefix(part, ctlPrefix):
		return processControl(e, part)
	case strings.HasPrefix(part, nsPrefix):
		ns, err := meteor.ParseNamespace(part[len(nsPrefix):])
		if err != nil {
			return err
		}
		e.SwitchNamespace(ns)
		return nil
	case strings.HasPrefix(part, ctxPrefix):
		ctx, err := meteor.ParseContext(part[len(ctxPrefix):])
		if err != nil {
			return err
		}
		e.SwitchContext(ctx)
		return nil
	}

	keyPart, valPart, ok := strings.Cut(part, "=")
	if !ok {
		return meteor.Errorf(meteor.KindInvalidPath, "parse", "token %q is missing '='", part)
	}
	value, err := meteor.UnquoteValue(valPart)
	if err != nil {
		return err
	}

	keyPart = strings.TrimSpace(keyPart)
	if strings.ContainsRune(keyPart, ':') {
		// Explicit addressing stores without moving the cursor.
		p, err := meteor.ParsePath(keyPart)
		if err != nil {
			return err
		}
		return e.SetAt(p, value)
	}

	key, err := meteor.ParseTokenKey(keyPart)
	if err != nil {
		return err
	}
	return e.SetAt(meteor.Path{
		Context:   e.CurrentContext(),
		Namespace: e.CurrentNamespace(),
		Key:       key,
	}, value)
}

// processControl parses "ctl:<verb>=<target>" and delegates to the
// engine, which records the outcome in its audit trail either way.
func processControl(e *engine.Engine, part string) error {
	verb, target, ok := strings.Cut(part[len(ctlPrefix):], "=")
	if !ok {
		return meteor.Errorf(meteor.KindInvalidPath, "parse", "control token %q is missing '='", part)
	}
	return e.ExecuteControlCommand(verb, target)
}

// ValidateTokenStream checks a token stream without touching an engine.
func ValidateTokenStream(input string) error {
	parts, err := SmartSplit(input, ';')
	if err != nil {
		return err
	}
	var errs error
	for _, part := range parts {
		errs = multierr.Append(errs, validateTokenPart(part))
	}
	return errs
}

func validateTokenPart(part string) error {
	switch {
	case strings.HasPrefix(part, ctlPrefix):
		if _, _, ok := strings.Cut(part[len(ctlPrefix):], "="); !ok {
			return meteor.Errorf(meteor.KindInvalidPath, "parse", "control token %q is missing '='", part)
		}
		return nil
	case strings.HasPrefix(part, nsPrefix):
		_, err := meteor.ParseNamespace(part[len(nsPrefix):])
		return err
	case strings.HasPrefix(part, ctxPrefix):
		_, err := meteor.ParseContext(part[len(ctxPrefix):])
		return err
	}
	keyPart, valPart, ok := strings.Cut(part, "=")
	if !ok {
		return meteor.Errorf(meteor.KindInvalidPath, "parse", "token %q is missing '='", part)
	}
	if _, err := meteor.UnquoteValue(valPart); err != nil {
		return err
	}
	keyPart = strings.TrimSpace(keyPart)
	if strings.ContainsRune(keyPart, ':') {
		_, err := meteor.ParsePath(keyPart)
		return err
	}
	_, err := meteor.ParseTokenKey(keyPart)
	return err
}
