package command

import (
	"strconv"

	"github.com/rsms/gored/internal/resp"
)

func zaddHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	score, err := strconv.ParseFloat(string(args[1]), 64)
	if err != nil {
		w.Error("ERR value is not a valid float")
		return false
	}
	inserted, err := ctx.Store.ZAdd(string(args[0]), score, string(args[2]))
	if err != nil {
		writeStoreErr(w, err)
		return false
	}
	if inserted {
		w.Integer(1)
	} else {
		w.Integer(0)
	}
	return true
}

func zscoreHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	score, ok, err := ctx.Store.ZScore(string(args[0]), string(args[1]))
	if err != nil {
		writeStoreErr(w, err)
		return false
	}
	if !ok {
		w.BulkString(nil)
		return false
	}
	w.BulkStringS(strconv.FormatFloat(score, 'g', -1, 64))
	return false
}

func zrankHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	rank, ok, err := ctx.Store.ZRank(string(args[0]), string(args[1]))
	if err != nil {
		writeStoreErr(w, err)
		return false
	}
	if !ok {
		w.BulkString(nil)
		return false
	}
	w.Integer(int64(rank))
	return false
}

func zcardHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	n, err := ctx.Store.ZCard(string(args[0]))
	if err != nil {
		writeStoreErr(w, err)
		return false
	}
	w.Integer(int64(n))
	return false
}

func zrangeHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	start, err1 := strconv.Atoi(string(args[1]))
	stop, err2 := strconv.Atoi(string(args[2]))
	if err1 != nil || err2 != nil {
		w.Error("ERR value is not an integer or out of range")
		return false
	}
	members, err := ctx.Store.ZRange(string(args[0]), start, stop)
	if err != nil {
		writeStoreErr(w, err)
		return false
	}
	items := make([][]byte, len(members))
	for i, m := range members {
		items[i] = []byte(m)
	}
	w.BulkStringArray(items...)
	return false
}

func zremHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	removed, err := ctx.Store.ZRem(string(args[0]), string(args[1]))
	if err != nil {
		writeStoreErr(w, err)
		return false
	}
	if removed {
		w.Integer(1)
		return true
	}
	w.Integer(0)
	return false
}
