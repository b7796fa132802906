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

// meteorDelimiter separates meteors in a meteor stream.
const meteorDelimiter = ":;:"

// MeteorStreamOptions tunes the explicit dialect. The zero value is the
// strict policy.
type MeteorStreamOptions struct {
	// Lenient allows a meteor segment to mix addresses, effectively
	// splitting it into multiple meteors, instead of failing with
	// MixedAddress.
	Lenient bool
}

// ProcessMeteorStream runs a meteor stream against an engine with the
// strict mixed-address policy. Each meteor opens with an explicit
// ctx:ns:key=value token that binds its address; later bare key=value
// tokens inherit it, and explicit tokens must match it. Cursor control
// tokens (ns=, ctx=) are rejected, so data tokens never move the cursor;
// ctl: commands remain allowed, and ctl:reset=cursor or ctl:reset=all
// does reset it.
func ProcessMeteorStream(e *engine.Engine, input string) error {
	return ProcessMeteorStreamOpts(e, input, MeteorStreamOptions{})
}

// ProcessMeteorStreamOpts runs a meteor stream with explicit options.
func ProcessMeteorStreamOpts(e *engine.Engine, input string, opts MeteorStreamOptions) error {
	meteors, err := SplitMeteors(input)
	if err != nil {
		return err
	}
	if len(meteors) > meteor.MaxMeteorsPerBatch {
		return meteor.Errorf(meteor.KindLimitExceeded, "parse",
			"stream has %d meteors (limit %d)", len(meteors), meteor.MaxMeteorsPerBatch)
	}
	var errs error
	for _, m := range meteors {
		if err := processSingleMeteor(e, m, opts); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func processSingleMeteor(e *engine.Engine, input string, opts MeteorStreamOptions) error {
	tokens, err := SmartSplit(input, ';')
	if err != nil {
		return err
	}
	var (
		errs     error
		bound    bool
		boundCtx meteor.Context
		boundNS  meteor.Namespace
	)
	for _, tok := range tokens {
		if strings.HasPrefix(tok, ctlPrefix) {
			errs = multierr.Append(errs, processControl(e, tok))
			continue
		}
		if strings.HasPrefix(tok, nsPrefix) || strings.HasPrefix(tok, ctxPrefix) {
			errs = multierr.Append(errs, meteor.Errorf(meteor.KindInvalidPath, "parse",
				"cursor control token %q is not allowed in a meteor stream", tok))
			continue
		}

		keyPart, valPart, ok := strings.Cut(tok, "=")
		if !ok {
			errs = multierr.Append(errs, meteor.Errorf(meteor.KindInvalidPath, "parse",
				"token %q is missing '='", tok))
			continue
		}
		keyPart = strings.TrimSpace(keyPart)

		var p meteor.Path
		switch strings.Count(keyPart, ":") {
		case 2:
			parsed, err := meteor.ParsePath(keyPart)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			p = parsed
			if bound && (p.Context != boundCtx || p.Namespace.String() != boundNS.String()) {
				if !opts.Lenient {
					errs = multierr.Append(errs, meteor.Errorf(meteor.KindMixedAddress, "parse",
						"token %q does not match meteor address %s:%s", tok, boundCtx, boundNS))
					continue
				}
				boundCtx = p.Context
				boundNS = p.Namespace
			} else if !bound {
				bound = true
				boundCtx = p.Context
				boundNS = p.Namespace
			}
		case 0:
			// Bare tokens inherit the meteor's bound address; the first
			// token of a meteor must be explicit.
			if !bound {
				errs = multierr.Append(errs, meteor.Errorf(meteor.KindInvalidPath, "parse",
					"meteor must open with explicit context:namespace:key addressing, got %q", tok))
				continue
			}
			key, err := meteor.ParseTokenKey(keyPart)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			p = meteor.Path{Context: boundCtx, Namespace: boundNS, Key: key}
		default:
			errs = multierr.Append(errs, meteor.Errorf(meteor.KindInvalidPath, "parse",
				"token %q must use explicit context:namespace:key addressing", tok))
			continue
		}
		value, err := meteor.UnquoteValue(valPart)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		errs = multierr.Append(errs, e.SetAt(p, value))
	}
	return errs
}

// ValidateMeteorStream checks a meteor stream without touching an
// engine, using the strict policy.
func ValidateMeteorStream(input string) error {
	meteors, err := SplitMeteors(input)
	if err != nil {
		return err
	}
	if len(meteors) > meteor.MaxMeteorsPerBatch {
		return meteor.Errorf(meteor.KindLimitExceeded, "parse",
			"stream has %d meteors (limit %d)", len(meteors), meteor.MaxMeteorsPerBatch)
	}
	var errs error
	for _, m := range meteors {
		if _, err := ParseMeteorTokens(m); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// ParseMeteor parses one rendered meteor ("ctx:ns:k1=v1;k2=v2;...")
// back into a Meteor value. The first token must carry the full
// address; later tokens may be bare key=value or repeat the same
// address. This is the inverse of Meteor.String.
func ParseMeteor(input string) (meteor.Meteor, error) {
	m, err := ParseMeteorTokens(input)
	if err != nil {
		return meteor.Meteor{}, err
	}
	return m, nil
}

// ParseMeteorTokens does the parsing work shared by ParseMeteor and
// stream validation.
func ParseMeteorTokens(input string) (meteor.Meteor, error) {
	tokens, err := SmartSplit(input, ';')
	if err != nil {
		return meteor.Meteor{}, err
	}
	if len(tokens) == 0 {
		return meteor.Meteor{}, meteor.Errorf(meteor.KindInvalidPath, "parse", "empty meteor")
	}

	keyPart, valPart, ok := strings.Cut(tokens[0], "=")
	if !ok {
		return meteor.Meteor{}, meteor.Errorf(meteor.KindInvalidPath, "parse",
			"token %q is missing '='", tokens[0])
	}
	keyPart = strings.TrimSpace(keyPart)
	if strings.Count(keyPart, ":") != 2 {
		return meteor.Meteor{}, meteor.Errorf(meteor.KindInvalidPath, "parse",
			"meteor must open with explicit context:namespace:key addressing, got %q", tokens[0])
	}
	p, err := meteor.ParsePath(keyPart)
	if err != nil {
		return meteor.Meteor{}, err
	}
	value, err := meteor.UnquoteValue(valPart)
	if err != nil {
		return meteor.Meteor{}, err
	}
	toks := []meteor.Token{meteor.NewToken(p.Key, value)}

	for _, tok := range tokens[1:] {
		keyPart, valPart, ok := strings.Cut(tok, "=")
		if !ok {
			return meteor.Meteor{}, meteor.Errorf(meteor.KindInvalidPath, "parse",
				"token %q is missing '='", tok)
		}
		keyPart = strings.TrimSpace(keyPart)
		var key meteor.TokenKey
		if strings.ContainsRune(keyPart, ':') {
			tp, err := meteor.ParsePath(keyPart)
			if err != nil {
				return meteor.Meteor{}, err
			}
			if tp.Context != p.Context || tp.Namespace.String() != p.Namespace.String() {
				return meteor.Meteor{}, meteor.Errorf(meteor.KindMixedAddress, "parse",
					"token %q does not match meteor address %s:%s", tok, p.Context, p.Namespace)
			}
			key = tp.Key
		} else {
			key, err = meteor.ParseTokenKey(keyPart)
			if err != nil {
				return meteor.Meteor{}, err
			}
		}
		value, err := meteor.UnquoteValue(valPart)
		if err != nil {
			return meteor.Meteor{}, err
		}
		toks = append(toks, meteor.NewToken(key, value))
	}
	return meteor.NewMeteor(p.Context, p.Namespace, toks)
}
