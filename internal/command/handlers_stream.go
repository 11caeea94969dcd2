package command

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rsms/gored/internal/resp"
	"github.com/rsms/gored/internal/store"
)

func xaddHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	fields := args[2:]
	if len(fields) == 0 || len(fields)%2 != 0 {
		w.Error("ERR wrong number of arguments for 'xadd' command")
		return false
	}
	fs := make([]string, len(fields))
	for i, f := range fields {
		fs[i] = string(f)
	}
	id, err := ctx.Store.StreamAdd(string(args[0]), string(args[1]), fs, time.Now())
	if err != nil {
		writeStoreErr(w, err)
		return false
	}
	w.BulkStringS(id.String())
	return true
}

func xrangeHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	start, err := parseStreamBound(string(args[1]), false)
	if err != nil {
		w.Error("ERR " + err.Error())
		return false
	}
	end, err := parseStreamBound(string(args[2]), true)
	if err != nil {
		w.Error("ERR " + err.Error())
		return false
	}
	entries, err := ctx.Store.StreamRange(string(args[0]), start, end)
	if err != nil {
		writeStoreErr(w, err)
		return false
	}
	writeStreamEntries(w, entries)
	return false
}

func parseStreamBound(s string, isEnd bool) (store.StreamID, error) {
	switch s {
	case "-":
		return store.StreamID{}, nil
	case "+":
		return store.StreamID{MS: math.MaxUint64, Seq: math.MaxUint64}, nil
	}
	seqIfOmitted := uint64(0)
	if isEnd {
		seqIfOmitted = math.MaxUint64
	}
	return store.ParseStreamID(s, seqIfOmitted)
}

func writeStreamEntries(w *resp.Writer, entries []store.StreamEntry) {
	w.ArrayHeader(len(entries))
	for _, e := range entries {
		w.ArrayHeader(2)
		w.BulkStringS(e.ID.String())
		items := make([][]byte, len(e.Fields))
		for i, f := range e.Fields {
			items[i] = []byte(f)
		}
		w.BulkStringArray(items...)
	}
}

func xreadHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	i := 0
	var timeout *time.Duration
	if i < len(args) && strings.EqualFold(string(args[i]), "block") {
		if i+1 >= len(args) {
			w.Error("ERR syntax error")
			return false
		}
		ms, err := strconv.ParseInt(string(args[i+1]), 10, 64)
		if err != nil || ms < 0 {
			w.Error("ERR timeout is not an integer or out of range")
			return false
		}
		d := time.Duration(ms) * time.Millisecond
		timeout = &d
		i += 2
	}
	if i >= len(args) || !strings.EqualFold(string(args[i]), "streams") {
		w.Error("ERR syntax error")
		return false
	}
	i++
	rest := args[i:]
	if len(rest) == 0 || len(rest)%2 != 0 {
		w.Error("ERR Unbalanced XREAD list of streams: for each stream key an ID or '$' must be specified")
		return false
	}
	n := len(rest) / 2
	keys := make([]string, n)
	starts := make([]store.StreamID, n)
	for j := 0; j < n; j++ {
		keys[j] = string(rest[j])
		idArg := string(rest[n+j])
		if idArg == "$" {
			top, hasTop := ctx.Store.TopStreamID(keys[j])
			if hasTop {
				starts[j] = top
			}
			continue
		}
		id, err := store.ParseStreamID(idArg, 0)
		if err != nil {
			w.Error("ERR " + err.Error())
			return false
		}
		starts[j] = id
	}

	timedOut, result, err := ctx.Store.StreamReadAny(keys, starts, timeout)
	if err != nil {
		writeStoreErr(w, err)
		return false
	}
	if timedOut || len(result) == 0 {
		w.BulkString(nil)
		return false
	}
	present := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := result[k]; ok {
			present = append(present, k)
		}
	}
	w.ArrayHeader(len(present))
	for _, k := range present {
		w.ArrayHeader(2)
		w.BulkStringS(k)
		writeStreamEntries(w, result[k])
	}
	return false
}
