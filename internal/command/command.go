// Package command implements spec.md's C5: the command table and the
// per-frame dispatch driver that threads a parsed command through session
// mode gating, execution, and write propagation. Grounded on the
// table-driven dispatch style of the evanstukalov and flonle reference
// servers, adapted to this store's four value kinds and to the
// transaction/subscribed mode machine spec.md §4.6 adds on top.
package command

import (
	"strings"

	"github.com/rsms/gored/internal/pubsub"
	"github.com/rsms/gored/internal/registry"
	"github.com/rsms/gored/internal/replication"
	"github.com/rsms/gored/internal/resp"
	"github.com/rsms/gored/internal/session"
	"github.com/rsms/gored/internal/store"
)

// Flags classify a command for dispatch-time gating.
type Flags uint8

const (
	// FlagWrite marks a command whose successful execution must be
	// propagated to connected replicas and counted toward the repl offset.
	FlagWrite Flags = 1 << iota
	// FlagControl marks EXEC/DISCARD: the only commands that run immediately
	// even while a session is queueing (spec.md §4.6).
	FlagControl
	// FlagSubscribedOK marks commands usable while a session is in
	// subscribed mode (spec.md §4.6: SUBSCRIBE, UNSUBSCRIBE, PING).
	FlagSubscribedOK
)

// HandlerFunc executes one command. It writes its reply directly to w and
// reports whether it mutated the store (used to decide write propagation).
type HandlerFunc func(ctx *Context, w *resp.Writer, args [][]byte) (mutated bool)

// Entry is one row of the command table. Arity counts arguments AFTER the
// command name, matching spec.md §4.5's table directly: positive is exact,
// negative is a minimum (handlers that accept more than one valid shape,
// e.g. SET's optional "px ms", validate the exact shape themselves).
type Entry struct {
	Name  string
	Arity int
	Flags Flags
	Fn    HandlerFunc
}

// Context is the set of server-wide collaborators a handler needs.
type Context struct {
	Store   *store.Store
	PubSub  *pubsub.Hub
	Repl    *replication.Manager
	Session *session.Session
	Table   *Table // only needed by EXEC, to replay queued commands

	Dir        string
	DBFilename string
}

// Table holds every registered command, keyed by upper-cased name. Backed
// by registry.Registry the way the original server's CommandRegistrar binds
// each command class into a single keyed factory at startup.
type Table struct {
	reg *registry.Registry[string, *Entry]
}

func NewTable() *Table {
	return &Table{reg: registry.New[string, *Entry]()}
}

// Register binds a command entry by its upper-cased name.
func (t *Table) Register(e *Entry) {
	t.reg.Register(strings.ToUpper(e.Name), e)
}

// Lookup finds a command by name (case-insensitive).
func (t *Table) Lookup(name string) (*Entry, bool) {
	return t.reg.Lookup(strings.ToUpper(name))
}

// checkArity reports whether argc (arguments after the command name)
// satisfies e.Arity.
func checkArity(e *Entry, argc int) bool {
	if e.Arity >= 0 {
		return argc == e.Arity
	}
	return argc >= -e.Arity
}

// Dispatch runs one parsed command frame against ctx.Session, handling
// transaction queueing, subscribed-mode gating, execution, and write
// propagation — the single entry point the server's connection loop and
// the replica apply loop both call through.
func Dispatch(t *Table, ctx *Context, w *resp.Writer, rawArgs [][]byte) {
	if len(rawArgs) == 0 {
		return
	}
	name := strings.ToUpper(string(rawArgs[0]))
	args := rawArgs[1:]

	e, ok := t.reg.Lookup(name)
	if !ok {
		w.Error("ERR unknown command '" + string(rawArgs[0]) + "'")
		return
	}
	if !checkArity(e, len(args)) {
		w.Error("ERR wrong number of arguments for '" + strings.ToLower(name) + "' command")
		return
	}

	sess := ctx.Session
	if sess != nil {
		if sess.Mode == session.ModeSubscribed && e.Flags&FlagSubscribedOK == 0 {
			w.Error("ERR Can't execute '" + strings.ToLower(name) + "' in subscribed mode")
			return
		}
		if sess.Mode == session.ModeTransaction && e.Flags&FlagControl == 0 {
			sess.Enqueue(name, args)
			w.SimpleString("QUEUED")
			return
		}
	}

	mutated := e.Fn(ctx, w, args)

	if mutated && e.Flags&FlagWrite != 0 && ctx.Repl != nil && ctx.Repl.Role() == replication.RoleMaster {
		ctx.Repl.PropagateWrite(resp.EncodeCommand(toStrings(rawArgs)...))
	}
}

func toStrings(args [][]byte) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = string(a)
	}
	return out
}
