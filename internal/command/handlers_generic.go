package command

import (
	"strconv"
	"strings"

	"github.com/rsms/gored/internal/replication"
	"github.com/rsms/gored/internal/resp"
	"github.com/rsms/gored/internal/session"
)

func pingHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	if ctx.Session != nil && ctx.Session.Mode == session.ModeSubscribed {
		w.ArrayHeader(2)
		w.BulkStringS("pong")
		w.BulkString(nil)
		return false
	}
	w.SimpleString("PONG")
	return false
}

func echoHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	w.BulkString(args[0])
	return false
}

func typeHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	w.SimpleString(ctx.Store.Type(string(args[0])))
	return false
}

func keysHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	if string(args[0]) != "*" {
		w.Error("ERR KEYS only supports the '*' pattern")
		return false
	}
	keys := ctx.Store.Keys()
	items := make([][]byte, len(keys))
	for i, k := range keys {
		items[i] = []byte(k)
	}
	w.BulkStringArray(items...)
	return false
}

func delHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	keys := make([]string, len(args))
	for i, a := range args {
		keys[i] = string(a)
	}
	n := ctx.Store.Del(keys...)
	w.Integer(int64(n))
	return n > 0
}

func existsHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	n := 0
	for _, a := range args {
		if ctx.Store.Exists(string(a)) {
			n++
		}
	}
	w.Integer(int64(n))
	return false
}

func configHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	if !strings.EqualFold(string(args[0]), "GET") || !strings.EqualFold(string(args[1]), "dir") {
		w.Error("ERR unsupported CONFIG subcommand")
		return false
	}
	if ctx.Repl != nil && ctx.Repl.Role() != replication.RoleMaster {
		w.Error("ERR CONFIG GET dir is only allowed in master mode")
		return false
	}
	w.ArrayHeader(2)
	w.BulkStringS("dir")
	w.BulkStringS(ctx.Dir)
	return false
}

func infoHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	var sb strings.Builder
	if ctx.Repl != nil && ctx.Repl.Role() == replication.RoleMaster {
		sb.WriteString("role:master\n")
		sb.WriteString("master_replid:" + ctx.Repl.ReplID() + "\n")
		sb.WriteString("master_repl_offset:" + strconv.FormatInt(ctx.Repl.Offset(), 10) + "\n")
	} else {
		sb.WriteString("role:slave\n")
	}
	w.BulkStringS(sb.String())
	return false
}
