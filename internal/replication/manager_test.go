package replication

import (
	"sync"
	"testing"
	"time"

	"github.com/rsms/go-testutil"
)

type fakeLink struct {
	mu  sync.Mutex
	got [][]byte
}

func (f *fakeLink) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := append([]byte(nil), data...)
	f.got = append(f.got, cp)
	return nil
}

func (f *fakeLink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

func TestPropagateWriteBumpsOffsetAndFansOut(t *testing.T) {
	assert := testutil.NewAssert(t)

	m := NewMaster()
	link := &fakeLink{}
	m.RegisterSlave(1, link)

	m.PropagateWrite([]byte("*1\r\n$4\r\nPING\r\n"))
	assert.Eq("offset bumped", m.Offset(), int64(len("*1\r\n$4\r\nPING\r\n")))
	assert.Eq("slave received it", link.count(), 1)
}

func TestBroadcastDoesNotBumpOffset(t *testing.T) {
	assert := testutil.NewAssert(t)

	m := NewMaster()
	link := &fakeLink{}
	m.RegisterSlave(1, link)

	before := m.Offset()
	m.Broadcast([]byte("*3\r\n$8\r\nREPLCONF\r\n$6\r\nGETACK\r\n$1\r\n*\r\n"))
	assert.Eq("offset unchanged", m.Offset(), before)
	assert.Eq("slave still received it", link.count(), 1)
}

func TestWaitSatisfiedByAck(t *testing.T) {
	assert := testutil.NewAssert(t)

	m := NewMaster()
	link := &fakeLink{}
	m.RegisterSlave(1, link)
	m.PropagateWrite([]byte("*1\r\n$4\r\nPING\r\n"))

	go func() {
		time.Sleep(10 * time.Millisecond)
		m.Ack(1, m.Offset())
	}()

	n := m.Wait(1, time.Second, func() {})
	assert.Eq("quorum reached", n, 1)
}

func TestWaitTimesOutWithoutAck(t *testing.T) {
	assert := testutil.NewAssert(t)

	m := NewMaster()
	m.RegisterSlave(1, &fakeLink{})
	m.PropagateWrite([]byte("*1\r\n$4\r\nPING\r\n"))

	n := m.Wait(1, 30*time.Millisecond, func() {})
	assert.Eq("no acks arrived", n, 0)
}
