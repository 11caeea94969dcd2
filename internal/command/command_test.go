package command

import (
	"bytes"
	"net"
	"testing"

	"github.com/rsms/go-testutil"

	"github.com/rsms/gored/internal/pubsub"
	"github.com/rsms/gored/internal/replication"
	"github.com/rsms/gored/internal/resp"
	"github.com/rsms/gored/internal/session"
	"github.com/rsms/gored/internal/store"
)

func newTestContext() (*Context, *session.Session) {
	client, _ := net.Pipe()
	sess := session.New(1, client)
	return &Context{
		Store:  store.New(),
		PubSub: pubsub.NewHub(0),
		Repl:   replication.NewMaster(),
		Table:  NewDefaultTable(),
	}, sess
}

func dispatch(t *Table, ctx *Context, args ...string) string {
	var buf bytes.Buffer
	w := resp.NewWriter(&buf)
	raw := make([][]byte, len(args))
	for i, a := range args {
		raw[i] = []byte(a)
	}
	Dispatch(t, ctx, w, raw)
	w.Flush()
	return buf.String()
}

func TestSetGetRoundTrip(t *testing.T) {
	assert := testutil.NewAssert(t)
	ctx, sess := newTestContext()
	ctx.Session = sess

	got := dispatch(ctx.Table, ctx, "SET", "foo", "bar")
	assert.Eq("set reply", got, "+OK\r\n")

	got = dispatch(ctx.Table, ctx, "GET", "foo")
	assert.Eq("get reply", got, "$3\r\nbar\r\n")
}

func TestTransactionQueueingAndExec(t *testing.T) {
	assert := testutil.NewAssert(t)
	ctx, sess := newTestContext()
	ctx.Session = sess

	got := dispatch(ctx.Table, ctx, "MULTI")
	assert.Eq("multi", got, "+OK\r\n")

	got = dispatch(ctx.Table, ctx, "SET", "a", "1")
	assert.Eq("queued", got, "+QUEUED\r\n")

	got = dispatch(ctx.Table, ctx, "INCR", "a")
	assert.Eq("queued", got, "+QUEUED\r\n")

	got = dispatch(ctx.Table, ctx, "EXEC")
	assert.Eq("exec replies", got, "*2\r\n+OK\r\n:2\r\n")
	assert.Eq("back to plain", sess.Mode, session.ModePlain)
}

func TestExecWithoutMultiErrors(t *testing.T) {
	assert := testutil.NewAssert(t)
	ctx, sess := newTestContext()
	ctx.Session = sess

	got := dispatch(ctx.Table, ctx, "EXEC")
	assert.Eq("exec without multi", got, "-ERR EXEC without MULTI\r\n")
}

func TestSubscribedModeGating(t *testing.T) {
	assert := testutil.NewAssert(t)
	ctx, sess := newTestContext()
	ctx.Session = sess

	got := dispatch(ctx.Table, ctx, "SUBSCRIBE", "ch")
	assert.Eq("subscribe reply", got, "*3\r\n$9\r\nsubscribe\r\n$2\r\nch\r\n:1\r\n")
	assert.Eq("mode", sess.Mode, session.ModeSubscribed)

	got = dispatch(ctx.Table, ctx, "GET", "foo")
	assert.Eq("rejected in subscribed mode", got, "-ERR Can't execute 'get' in subscribed mode\r\n")

	got = dispatch(ctx.Table, ctx, "PING")
	assert.Eq("ping allowed", got, "*2\r\n$4\r\npong\r\n$-1\r\n")
}

func TestWrongArityRejected(t *testing.T) {
	assert := testutil.NewAssert(t)
	ctx, sess := newTestContext()
	ctx.Session = sess

	got := dispatch(ctx.Table, ctx, "GET")
	assert.Eq("wrong arity", got, "-ERR wrong number of arguments for 'get' command\r\n")
}
