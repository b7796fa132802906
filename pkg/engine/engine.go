// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package engine

import (
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/kraklabs/meteor/pkg/meteor"
)

// ControlCommand is one audit-trail record. Every call to
// ExecuteControlCommand appends exactly one record, success or not.
type ControlCommand struct {
	Timestamp time.Time
	Kind      string
	Target    string
	Success   bool
	Err       string
}

// Config configures a new engine. The zero value is ready to use.
type Config struct {
	// Context overrides the initial cursor context (default "app").
	Context meteor.Context
	// Clock supplies audit-trail timestamps; tests inject a mock.
	Clock clock.Clock
	// Logger receives depth warnings and control-command failures.
	Logger *slog.Logger
}

// Engine is the stateful data-manipulation engine. It owns a multi-
// context store, an internal workspace, a cursor, and a bounded
// control-command history. An engine must not be shared across
// goroutines without external synchronization.
type Engine struct {
	storage   *StorageData
	workspace *EngineWorkspace

	cursorCtx meteor.Context
	cursorNS  meteor.Namespace

	history []ControlCommand
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates an engine with the default cursor (app, main).
func New() *Engine {
	return NewWithConfig(Config{})
}

// NewWithConfig creates an engine from a Config.
func NewWithConfig(cfg Config) *Engine {
	ctx := cfg.Context
	if ctx == "" {
		ctx = meteor.DefaultContext
	}
	ck := cfg.Clock
	if ck == nil {
		ck = clock.New()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		storage:   NewStorageData(),
		workspace: newEngineWorkspace(),
		cursorCtx: ctx,
		cursorNS:  meteor.RootNamespace(),
		clock:     ck,
		logger:    logger,
	}
}

// CurrentContext returns the cursor context.
func (e *Engine) CurrentContext() meteor.Context { return e.cursorCtx }

// CurrentNamespace returns the cursor namespace.
func (e *Engine) CurrentNamespace() meteor.Namespace { return e.cursorNS }

// SwitchContext moves the cursor to another context.
func (e *Engine) SwitchContext(ctx meteor.Context) { e.cursorCtx = ctx }

// SwitchNamespace moves the cursor to another namespace.
func (e *Engine) SwitchNamespace(ns meteor.Namespace) { e.cursorNS = ns }

// ResetCursor restores the cursor to (app, main).
func (e *Engine) ResetCursor() {
	e.cursorCtx = meteor.DefaultContext
	e.cursorNS = meteor.RootNamespace()
}

// ClearStorage drops all stored data and the workspace, including
// scratch slots. The cursor and history are untouched.
func (e *Engine) ClearStorage() {
	e.storage = NewStorageData()
	e.workspace.clearAll()
}

// ResetAll resets the cursor and clears storage.
func (e *Engine) ResetAll() {
	e.ResetCursor()
	e.ClearStorage()
}

// Set parses and validates a path, then writes the value. The write is
// atomic: on error, storage, workspace, and caches are unchanged.
func (e *Engine) Set(path, value string) error {
	p, err := meteor.ParsePath(path)
	if err != nil {
		return opErr("set", err)
	}
	return e.SetAt(p, value)
}

// SetAt writes a value at an already-parsed path.
func (e *Engine) SetAt(p meteor.Path, value string) error {
	if len(value) > meteor.MaxTokenValueLength {
		return meteor.Errorf(meteor.KindLimitExceeded, "set",
			"value for %q exceeds %d characters", p.String(), meteor.MaxTokenValueLength)
	}
	if p.Namespace.ShouldWarn() {
		e.logger.Warn("namespace depth near limit",
			"namespace", p.Namespace.String(), "depth", p.Namespace.Depth())
	}
	cs, err := e.storage.EnsureContext(p.Context)
	if err != nil {
		return opErr("set", err)
	}
	if err := cs.Set(p.Namespace, p.Key.Flat(), value); err != nil {
		return opErr("set", err)
	}
	now := e.clock.Now()
	nw := e.workspace.getOrCreate(p.Context, p.Namespace, now)
	nw.addKey(p.Key, now)
	nw.invalidate(now)
	return nil
}

// StoreToken writes a key/value pair at the current cursor.
func (e *Engine) StoreToken(key, value string) error {
	k, err := meteor.ParseTokenKey(key)
	if err != nil {
		return opErr("store", err)
	}
	return e.SetAt(meteor.Path{Context: e.cursorCtx, Namespace: e.cursorNS, Key: k}, value)
}

// Get resolves a path to its value via the flat map. Invalid paths
// simply miss.
func (e *Engine) Get(path string) (string, bool) {
	p, err := meteor.ParsePath(path)
	if err != nil {
		return "", false
	}
	return e.GetAt(p)
}

// GetAt reads the value at an already-parsed path.
func (e *Engine) GetAt(p meteor.Path) (string, bool) {
	cs := e.storage.Context(p.Context)
	if cs == nil {
		return "", false
	}
	return cs.Get(p.Namespace, p.Key.Flat())
}

// Exists reports whether a path resolves to a value.
func (e *Engine) Exists(path string) bool {
	_, ok := e.Get(path)
	return ok
}

// Delete removes a key (three-part target), a namespace (two-part), or
// an entire context (one-part). It reports whether anything was removed.
func (e *Engine) Delete(path string) (bool, error) {
	t, err := meteor.ParseTarget(path)
	if err != nil {
		return false, opErr("delete", err)
	}
	switch {
	case t.HasKey:
		cs := e.storage.Context(t.Context)
		if cs == nil {
			return false, nil
		}
		flat := t.Key.Flat()
		if !cs.DeleteKey(t.Namespace, flat) {
			return false, nil
		}
		now := e.clock.Now()
		if nw, ok := e.workspace.get(t.Context, t.Namespace); ok {
			nw.removeKey(flat, now)
			nw.invalidate(now)
		}
		return true, nil
	case t.HasNamespace:
		cs := e.storage.Context(t.Context)
		if cs == nil {
			return false, nil
		}
		if !cs.DeleteNamespace(t.Namespace) {
			return false, nil
		}
		e.workspace.removeNamespace(t.Context, t.Namespace)
		return true, nil
	default:
		if !e.storage.DeleteContext(t.Context) {
			return false, nil
		}
		e.workspace.removeContext(t.Context)
		return true, nil
	}
}

// Entry is one stored key/value pair with its address. Key is the
// canonical flat form; Path renders the display form.
type Entry struct {
	Context   string
	Namespace string
	Key       string
	Value     string

	notation string
}

// Path renders "<ctx>:<ns>:<key>" with the key in original notation.
func (en Entry) Path() string {
	key := en.notation
	if key == "" {
		key = meteor.FlatToNotation(en.Key)
	}
	return en.Context + ":" + en.Namespace + ":" + key
}

// Find returns the entries matching a pattern. The pattern uses path
// shorthand ("ns:pat", "ctx:ns:pat") and "*" matches any run of
// non-separator characters within the key. Results come from the query
// cache when a fingerprint is live; any mutation in the namespace
// invalidates it.
func (e *Engine) Find(pattern string) ([]Entry, error) {
	parts := strings.Split(pattern, ":")
	if len(parts) > 3 {
		return nil, meteor.Errorf(meteor.KindInvalidPath, "find", "pattern %q has too many colons", pattern)
	}
	ctxPart := string(meteor.DefaultContext)
	nsPart := ""
	keyPat := parts[len(parts)-1]
	if len(parts) >= 2 {
		nsPart = parts[len(parts)-2]
	}
	if len(parts) == 3 {
		ctxPart = parts[0]
	}
	ctx, err := meteor.ParseContext(ctxPart)
	if err != nil {
		return nil, opErr("find", err)
	}
	ns, err := meteor.ParseNamespace(nsPart)
	if err != nil {
		return nil, opErr("find", err)
	}

	cs := e.storage.Context(ctx)
	if cs == nil {
		return nil, nil
	}

	var keys []string
	nw, hasWorkspace := e.workspace.get(ctx, ns)
	if hasWorkspace {
		if cached, ok := nw.cachedQuery(keyPat); ok {
			keys = cached
		} else {
			keys = cs.FindKeys(ns, keyPat)
			nw.storeQuery(keyPat, keys)
		}
	} else {
		keys = cs.FindKeys(ns, keyPat)
	}

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		v, ok := cs.Get(ns, k)
		if !ok {
			continue
		}
		en := Entry{Context: string(ctx), Namespace: ns.String(), Key: k, Value: v}
		if hasWorkspace {
			en.notation = nw.notationFor(k)
		}
		entries = append(entries, en)
	}
	return entries, nil
}

// IsFile reports whether the path resolves to a value node in the tree.
func (e *Engine) IsFile(path string) bool {
	t, err := meteor.ParseTarget(path)
	if err != nil || !t.HasKey {
		return false
	}
	cs := e.storage.Context(t.Context)
	return cs != nil && cs.IsFile(t.Namespace, t.Key.Flat())
}

// IsDirectory reports whether the path resolves to a directory: a
// context, an existing namespace, or an internal tree node.
func (e *Engine) IsDirectory(path string) bool {
	t, err := meteor.ParseTarget(path)
	if err != nil {
		return false
	}
	cs := e.storage.Context(t.Context)
	if cs == nil {
		return false
	}
	switch {
	case t.HasKey:
		return cs.IsDirectory(t.Namespace, t.Key.Flat())
	case t.HasNamespace:
		return cs.NamespaceExists(t.Namespace)
	default:
		return true
	}
}

// HasDefault reports whether the directory at path carries a .index
// default value.
func (e *Engine) HasDefault(path string) bool {
	_, ok := e.GetDefault(path)
	return ok
}

// GetDefault returns the .index default value of the directory at path.
func (e *Engine) GetDefault(path string) (string, bool) {
	t, err := meteor.ParseTarget(path)
	if err != nil {
		return "", false
	}
	cs := e.storage.Context(t.Context)
	if cs == nil {
		return "", false
	}
	dirPath := ""
	if t.HasKey {
		dirPath = t.Key.Flat()
	}
	return cs.GetDefault(t.Namespace, dirPath)
}

// ExecuteControlCommand dispatches a control verb and appends one audit
// record with the outcome. Supported: "delete" with a target path, and
// "reset" with cursor, storage, all, or a context name.
func (e *Engine) ExecuteControlCommand(kind, target string) error {
	err := e.runControl(kind, target)
	rec := ControlCommand{
		Timestamp: e.clock.Now(),
		Kind:      kind,
		Target:    target,
		Success:   err == nil,
	}
	if err != nil {
		rec.Err = err.Error()
		e.logger.Debug("control command failed", "kind", kind, "target", target, "err", err)
	}
	e.history = append(e.history, rec)
	if len(e.history) > meteor.MaxCommandHistory {
		e.history = e.history[len(e.history)-meteor.MaxCommandHistory:]
	}
	return err
}

func (e *Engine) runControl(kind, target string) error {
	switch kind {
	case "delete":
		_, err := e.Delete(target)
		return err
	case "reset":
		switch target {
		case "cursor":
			e.ResetCursor()
			return nil
		case "storage":
			e.ClearStorage()
			return nil
		case "all":
			e.ResetAll()
			return nil
		default:
			ctx, err := meteor.ParseContext(target)
			if err != nil {
				return meteor.Errorf(meteor.KindUnknownControlCommand, "reset", "unknown reset target %q", target)
			}
			if !e.storage.DeleteContext(ctx) {
				return meteor.Errorf(meteor.KindUnknownControlCommand, "reset", "unknown reset target %q", target)
			}
			e.workspace.removeContext(ctx)
			return nil
		}
	default:
		return meteor.Errorf(meteor.KindUnknownControlCommand, "", "unknown control command %q", kind)
	}
}

// CommandHistory returns the audit trail, oldest first.
func (e *Engine) CommandHistory() []ControlCommand {
	out := make([]ControlCommand, len(e.history))
	copy(out, e.history)
	return out
}

// LastCommand returns the most recent audit record.
func (e *Engine) LastCommand() (ControlCommand, bool) {
	if len(e.history) == 0 {
		return ControlCommand{}, false
	}
	return e.history[len(e.history)-1], true
}

// FailedCommands returns the audit records of failed commands.
func (e *Engine) FailedCommands() []ControlCommand {
	var out []ControlCommand
	for _, rec := range e.history {
		if !rec.Success {
			out = append(out, rec)
		}
	}
	return out
}

// ClearHistory drops the audit trail.
func (e *Engine) ClearHistory() { e.history = nil }

// ScratchSlot returns the named scratch slot, creating it if needed.
// Scratch slots are invisible to all canonical queries.
func (e *Engine) ScratchSlot(name string) *ScratchSlot {
	slot, ok := e.workspace.scratch[name]
	if !ok {
		slot = &ScratchSlot{name: name, data: make(map[string]string), createdAt: e.clock.Now()}
		e.workspace.scratch[name] = slot
	}
	return slot
}

// WithScratchSlot runs fn with a scratch slot that is removed when fn
// returns, on every exit path.
func (e *Engine) WithScratchSlot(name string, fn func(*ScratchSlot) error) error {
	slot := e.ScratchSlot(name)
	defer e.RemoveScratchSlot(name)
	return fn(slot)
}

// RemoveScratchSlot deletes a scratch slot by name.
func (e *Engine) RemoveScratchSlot(name string) bool {
	_, ok := e.workspace.scratch[name]
	delete(e.workspace.scratch, name)
	return ok
}

// HasScratchSlot reports whether a slot exists.
func (e *Engine) HasScratchSlot(name string) bool {
	_, ok := e.workspace.scratch[name]
	return ok
}

// ListScratchSlots returns the sorted slot names.
func (e *Engine) ListScratchSlots() []string {
	names := make([]string, 0, len(e.workspace.scratch))
	for name := range e.workspace.scratch {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ClearAllScratch removes every scratch slot.
func (e *Engine) ClearAllScratch() { clear(e.workspace.scratch) }

// WorkspaceStatus returns a snapshot of workspace internals. Counter
// fields are populated only in builds with the meteorinstr tag.
func (e *Engine) WorkspaceStatus() WorkspaceStatus { return e.workspace.status() }

// RenderTree renders the tree index of a context as ASCII art.
func (e *Engine) RenderTree(ctx meteor.Context) (string, bool) {
	cs := e.storage.Context(ctx)
	if cs == nil {
		return "", false
	}
	return renderTree(cs.root, string(ctx)), true
}

// CheckInvariants verifies the flat/tree duality of every context.
func (e *Engine) CheckInvariants() error {
	for _, ctx := range e.storage.Contexts() {
		if err := e.storage.Context(ctx).CheckInvariant(); err != nil {
			return err
		}
	}
	return nil
}

// Storage exposes the underlying store read-only for collaborators such
// as the export subsystem.
func (e *Engine) Storage() *StorageData { return e.storage }

// opErr stamps the failing operation onto a typed error that does not
// carry one yet.
func opErr(op string, err error) error {
	var me *meteor.Error
	if errors.As(err, &me) && me.Op == "" {
		return &meteor.Error{Kind: me.Kind, Op: op, Message: me.Message}
	}
	return err
}
