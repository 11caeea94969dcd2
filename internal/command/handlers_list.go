package command

import (
	"strconv"
	"time"

	"github.com/rsms/gored/internal/resp"
)

func rpushHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	n, err := ctx.Store.ListPushBack(string(args[0]), args[1:])
	if err != nil {
		writeStoreErr(w, err)
		return false
	}
	w.Integer(int64(n))
	return true
}

func lpushHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	n, err := ctx.Store.ListPushFront(string(args[0]), args[1:])
	if err != nil {
		writeStoreErr(w, err)
		return false
	}
	w.Integer(int64(n))
	return true
}

func llenHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	n, err := ctx.Store.ListLen(string(args[0]))
	if err != nil {
		writeStoreErr(w, err)
		return false
	}
	w.Integer(int64(n))
	return false
}

func lrangeHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	start, err1 := strconv.Atoi(string(args[1]))
	stop, err2 := strconv.Atoi(string(args[2]))
	if err1 != nil || err2 != nil {
		w.Error("ERR value is not an integer or out of range")
		return false
	}
	items, err := ctx.Store.ListRange(string(args[0]), start, stop)
	if err != nil {
		writeStoreErr(w, err)
		return false
	}
	w.BulkStringArray(items...)
	return false
}

func lpopHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	if len(args) > 2 {
		w.Error("ERR wrong number of arguments for 'lpop' command")
		return false
	}
	count := 1
	hasCount := len(args) == 2
	if hasCount {
		n, err := strconv.Atoi(string(args[1]))
		if err != nil || n < 0 {
			w.Error("ERR value is not an integer or out of range")
			return false
		}
		count = n
	}
	_, items, err := ctx.Store.ListPopFront(string(args[0]), count, nil)
	if err != nil {
		writeStoreErr(w, err)
		return false
	}
	if !hasCount {
		if len(items) == 0 {
			w.BulkString(nil)
			return false
		}
		w.BulkString(items[0])
		return len(items) > 0
	}
	if len(items) == 0 {
		w.ArrayHeader(-1)
		return false
	}
	w.BulkStringArray(items...)
	return true
}

func blpopHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	secs, err := strconv.ParseFloat(string(args[1]), 64)
	if err != nil || secs < 0 {
		w.Error("ERR timeout is not a float or out of range")
		return false
	}
	timeout := time.Duration(secs * float64(time.Second))
	timedOut, items, err := ctx.Store.ListPopFront(string(args[0]), 1, &timeout)
	if err != nil {
		writeStoreErr(w, err)
		return false
	}
	if timedOut || len(items) == 0 {
		w.BulkString(nil)
		return false
	}
	w.ArrayHeader(2)
	w.BulkStringS(string(args[0]))
	w.BulkString(items[0])
	return true
}
