package pubsub

import (
	"sync"
	"testing"
	"time"

	"github.com/rsms/go-testutil"
)

type recorder struct {
	mu   sync.Mutex
	msgs [][]byte
	fail bool
}

func (r *recorder) Send(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errSend
	}
	r.msgs = append(r.msgs, data)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

type sendErr struct{}

func (sendErr) Error() string { return "send failed" }

var errSend = sendErr{}

func waitUntil(t *testing.T, deadline time.Duration, cond func() bool) bool {
	end := time.Now().Add(deadline)
	for time.Now().Before(end) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}

func TestPublishDeliversToAllSubscribers(t *testing.T) {
	assert := testutil.NewAssert(t)

	h := NewHub(2)
	r1 := &recorder{}
	r2 := &recorder{}
	h.Subscribe("news", r1)
	h.Subscribe("news", r2)

	n := h.Publish("news", []byte("hello"))
	assert.Eq("delivery count", n, 2)

	assert.Ok("r1 delivered", waitUntil(t, time.Second, func() bool { return r1.count() == 1 }))
	assert.Ok("r2 delivered", waitUntil(t, time.Second, func() bool { return r2.count() == 1 }))
}

func TestPublishToEmptyChannel(t *testing.T) {
	assert := testutil.NewAssert(t)

	h := NewHub(1)
	n := h.Publish("nobody-home", []byte("x"))
	assert.Eq("no subscribers", n, 0)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	assert := testutil.NewAssert(t)

	h := NewHub(1)
	r := &recorder{}
	sub := h.Subscribe("ch", r)
	sub.Close()

	n := h.Publish("ch", []byte("x"))
	assert.Eq("channel forgotten after last unsubscribe", n, 0)
}

func TestDeadSubscriberIsDroppedOnError(t *testing.T) {
	assert := testutil.NewAssert(t)

	h := NewHub(1)
	bad := &recorder{fail: true}
	h.Subscribe("ch", bad)

	h.Publish("ch", []byte("x"))
	assert.Ok("bad subscriber removed", waitUntil(t, time.Second, func() bool {
		return h.Publish("ch", []byte("y")) == 0
	}))
}
