package server

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rsms/go-testutil"

	"github.com/rsms/gored/internal/logx"
)

// startServer boots a Server on an ephemeral port and returns a connected
// go-redis client, tearing both down when the test completes.
func startServer(t *testing.T, cfg Config) *redis.Client {
	t.Helper()

	cfg.Port = 0
	srv := New(cfg, logx.New("test"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.Run(ctx)
		close(done)
	}()

	addr := srv.Addr()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	cli := redis.NewClient(&redis.Options{Addr: addr.String()})
	t.Cleanup(func() { cli.Close() })
	return cli
}

func TestSetGetExpiry(t *testing.T) {
	assert := testutil.NewAssert(t)
	ctx := context.Background()
	cli := startServer(t, Config{})

	assert.Ok("set ok", cli.Set(ctx, "k", "v", 0).Err() == nil)
	v, err := cli.Get(ctx, "k").Result()
	assert.Ok("get ok", err == nil)
	assert.Eq("value", v, "v")

	assert.Ok("px set ok", cli.Set(ctx, "short", "x", 20*time.Millisecond).Err() == nil)
	time.Sleep(100 * time.Millisecond)
	_, err = cli.Get(ctx, "short").Result()
	assert.Ok("expired key is redis.Nil", err == redis.Nil)
}

func TestStreamAddAndRangeRejectsDuplicateID(t *testing.T) {
	assert := testutil.NewAssert(t)
	ctx := context.Background()
	cli := startServer(t, Config{})

	id, err := cli.XAdd(ctx, &redis.XAddArgs{
		Stream: "s",
		ID:     "1-1",
		Values: map[string]interface{}{"a": "1"},
	}).Result()
	assert.Ok("xadd ok", err == nil)
	assert.Eq("id echoed", id, "1-1")

	_, err = cli.XAdd(ctx, &redis.XAddArgs{
		Stream: "s",
		ID:     "1-1",
		Values: map[string]interface{}{"a": "2"},
	}).Result()
	assert.Ok("duplicate id rejected", err != nil)

	entries, err := cli.XRange(ctx, "s", "-", "+").Result()
	assert.Ok("xrange ok", err == nil)
	assert.Eq("one entry", len(entries), 1)
}

func TestBlockingPopWakesOnPush(t *testing.T) {
	assert := testutil.NewAssert(t)
	ctx := context.Background()
	cli := startServer(t, Config{})

	result := make(chan string, 1)
	go func() {
		v, err := cli.BLPop(ctx, 2*time.Second, "q").Result()
		if err != nil {
			result <- "error: " + err.Error()
			return
		}
		result <- fmt.Sprint(v)
	}()

	time.Sleep(50 * time.Millisecond)
	assert.Ok("push ok", cli.LPush(ctx, "q", "hello").Err() == nil)

	select {
	case v := <-result:
		assert.Eq("popped value", v, "[q hello]")
	case <-time.After(2 * time.Second):
		t.Fatal("blpop never woke up")
	}
}

func TestSubscribeAndPublish(t *testing.T) {
	assert := testutil.NewAssert(t)
	ctx := context.Background()
	cli := startServer(t, Config{})

	sub := cli.Subscribe(ctx, "chan")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	assert.Ok("subscribe confirmed", err == nil)

	n, err := cli.Publish(ctx, "chan", "hi").Result()
	assert.Ok("publish ok", err == nil)
	assert.Eq("one subscriber reached", n, int64(1))

	msg, err := sub.ReceiveMessage(ctx)
	assert.Ok("message received", err == nil)
	assert.Eq("payload", msg.Payload, "hi")
}

func TestMultiExecTransaction(t *testing.T) {
	assert := testutil.NewAssert(t)
	ctx := context.Background()
	cli := startServer(t, Config{})

	pipe := cli.TxPipeline()
	pipe.Set(ctx, "tx1", "a", 0)
	pipe.Set(ctx, "tx2", "b", 0)
	_, err := pipe.Exec(ctx)
	assert.Ok("exec ok", err == nil)

	v1, _ := cli.Get(ctx, "tx1").Result()
	v2, _ := cli.Get(ctx, "tx2").Result()
	assert.Eq("tx1", v1, "a")
	assert.Eq("tx2", v2, "b")
}
