package command

import (
	"strconv"
	"strings"
	"time"

	"github.com/rsms/gored/internal/rdb"
	"github.com/rsms/gored/internal/resp"
)

func replconfHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	sub := strings.ToUpper(string(args[0]))
	switch sub {
	case "LISTENING-PORT":
		port, err := strconv.Atoi(string(args[1]))
		if err != nil {
			w.Error("ERR invalid listening-port")
			return false
		}
		ctx.Session.ListeningPort = port
		ctx.Session.IsReplica = true
		ctx.Repl.RegisterSlave(ctx.Session.ID, ctx.Session)
		w.SimpleString("OK")
	case "ACK":
		n, err := strconv.ParseInt(string(args[1]), 10, 64)
		if err == nil {
			ctx.Repl.Ack(ctx.Session.ID, n)
		}
		// no reply: a master never answers a replica's ACK.
	default: // CAPA and anything else we don't need to act on
		w.SimpleString("OK")
	}
	return false
}

func psyncHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	snapshot := rdb.WriteSnapshot(ctx.Store)
	w.SimpleString("FULLRESYNC " + ctx.Repl.ReplID() + " " + strconv.FormatInt(ctx.Repl.Offset(), 10))
	w.RawBulkHeader(len(snapshot))
	w.Raw(snapshot)
	return false
}

func waitHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	numReplicas, err1 := strconv.Atoi(string(args[0]))
	timeoutMS, err2 := strconv.ParseInt(string(args[1]), 10, 64)
	if err1 != nil || err2 != nil {
		w.Error("ERR value is not an integer or out of range")
		return false
	}
	getack := func() {
		ctx.Repl.Broadcast(resp.EncodeCommand("REPLCONF", "GETACK", "*"))
	}
	n := ctx.Repl.Wait(numReplicas, time.Duration(timeoutMS)*time.Millisecond, getack)
	w.Integer(int64(n))
	return false
}
