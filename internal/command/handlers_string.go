package command

import (
	"strconv"
	"strings"
	"time"

	"github.com/rsms/gored/internal/resp"
)

func setHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	if len(args) != 2 && len(args) != 4 {
		w.Error("ERR wrong number of arguments for 'set' command")
		return false
	}
	var expiry time.Time
	if len(args) == 4 {
		if !strings.EqualFold(string(args[2]), "px") {
			w.Error("ERR syntax error")
			return false
		}
		ms, err := strconv.ParseInt(string(args[3]), 10, 64)
		if err != nil {
			w.Error("ERR value is not an integer or out of range")
			return false
		}
		expiry = time.Now().Add(time.Duration(ms) * time.Millisecond)
	}
	ctx.Store.SetString(string(args[0]), args[1], expiry)
	w.SimpleString("OK")
	return true
}

func getHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	val, ok, err := ctx.Store.GetString(string(args[0]))
	if err != nil {
		writeStoreErr(w, err)
		return false
	}
	if !ok {
		w.BulkString(nil)
		return false
	}
	w.BulkString(val)
	return false
}

func incrHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	n, err := ctx.Store.Incr(string(args[0]))
	if err != nil {
		writeStoreErr(w, err)
		return false
	}
	w.Integer(n)
	return true
}
