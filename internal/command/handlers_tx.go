package command

import (
	"github.com/rsms/gored/internal/resp"
	"github.com/rsms/gored/internal/session"
)

func multiHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	ctx.Session.EnterTransaction()
	w.SimpleString("OK")
	return false
}

func execHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	sess := ctx.Session
	if sess.Mode != session.ModeTransaction {
		w.Error("ERR EXEC without MULTI")
		return false
	}
	queue := sess.LeaveTransaction()
	w.ArrayHeader(len(queue))
	for _, q := range queue {
		rawArgs := make([][]byte, 0, len(q.Args)+1)
		rawArgs = append(rawArgs, []byte(q.Name))
		rawArgs = append(rawArgs, q.Args...)
		Dispatch(ctx.Table, ctx, w, rawArgs)
	}
	return false
}

func discardHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	sess := ctx.Session
	if sess.Mode != session.ModeTransaction {
		w.Error("ERR DISCARD without MULTI")
		return false
	}
	sess.LeaveTransaction()
	w.SimpleString("OK")
	return false
}
