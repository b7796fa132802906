// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package meteor

import "strings"

// Path is a fully resolved data address: context, namespace, and key.
type Path struct {
	Context   Context
	Namespace Namespace
	Key       TokenKey
}

// String renders the canonical three-part form.
func (p Path) String() string {
	return string(p.Context) + ":" + p.Namespace.String() + ":" + p.Key.Notation()
}

// ParsePath parses a data address of 1-3 colon-separated parts:
//
//	"key"          -> (app, main, key)
//	"ns:key"       -> (app, ns, key)
//	"ctx:ns:key"   -> (ctx, ns, key)
//
// Each part is validated; four or more parts fail.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, Errorf(KindInvalidPath, "", "path cannot be empty")
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return Path{}, Errorf(KindInvalidPath, "", "path %q has too many colons", s)
	}

	ctxPart := string(DefaultContext)
	nsPart := ""
	var keyPart string
	switch len(parts) {
	case 1:
		keyPart = parts[0]
	case 2:
		nsPart = parts[0]
		keyPart = parts[1]
	case 3:
		ctxPart = parts[0]
		nsPart = parts[1]
		keyPart = parts[2]
	}

	ctx, err := ParseContext(ctxPart)
	if err != nil {
		return Path{}, err
	}
	ns, err := ParseNamespace(nsPart)
	if err != nil {
		return Path{}, err
	}
	key, err := ParseTokenKey(keyPart)
	if err != nil {
		return Path{}, err
	}
	return Path{Context: ctx, Namespace: ns, Key: key}, nil
}

// Target is a deletion or directory address. Unlike Path, the namespace
// and key parts are optional: "ctx" targets a whole context, "ctx:ns" a
// namespace, "ctx:ns:key" a single key or directory.
type Target struct {
	Context      Context
	Namespace    Namespace
	Key          TokenKey
	HasNamespace bool
	HasKey       bool
}

// ParseTarget parses a target of 1-3 colon-separated parts.
func ParseTarget(s string) (Target, error) {
	if s == "" {
		return Target{}, Errorf(KindInvalidPath, "", "target cannot be empty")
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return Target{}, Errorf(KindInvalidPath, "", "target %q has too many colons", s)
	}

	ctx, err := ParseContext(parts[0])
	if err != nil {
		return Target{}, err
	}
	t := Target{Context: ctx}
	if len(parts) >= 2 {
		ns, err := ParseNamespace(parts[1])
		if err != nil {
			return Target{}, err
		}
		t.Namespace = ns
		t.HasNamespace = true
	}
	if len(parts) == 3 && parts[2] != "" {
		key, err := ParseTokenKey(parts[2])
		if err != nil {
			return Target{}, err
		}
		t.Key = key
		t.HasKey = true
	}
	return t, nil
}
