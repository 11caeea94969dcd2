// Package session holds per-connection state: the command/transaction/
// subscribed mode machine of spec.md §4.6, plus the single write path every
// connection's goroutine and any pubsub/replication fan-out goroutine must
// share safely.
package session

import (
	"net"
	"sync"

	"github.com/rsms/gored/internal/pubsub"
)

// Mode is the per-connection command-processing mode, spec.md §4.6.
type Mode int

const (
	ModePlain Mode = iota
	ModeTransaction
	ModeSubscribed
)

// QueuedCommand is one command captured while Mode == ModeTransaction,
// replayed in order on EXEC.
type QueuedCommand struct {
	Name string
	Args [][]byte
}

// Session is the per-connection state the command dispatcher reads and
// mutates. A Session is not used concurrently by its own read loop — only
// writeMu needs to guard against concurrent writers (the read loop itself,
// plus any pubsub/replication goroutine delivering to this connection).
type Session struct {
	ID   uint64
	Conn net.Conn

	writeMu sync.Mutex

	IsReplica     bool // true once this connection sent REPLCONF listening-port and became a replica link
	ListeningPort int  // set by REPLCONF listening-port, spec.md §9 decision 2

	Mode  Mode
	Queue []QueuedCommand

	subs map[string]*pubsub.Subscription
}

func New(id uint64, conn net.Conn) *Session {
	return &Session{
		ID:   id,
		Conn: conn,
		subs: make(map[string]*pubsub.Subscription),
	}
}

// Send writes data atomically with respect to any other writer of this
// connection (the session's own reply path, or a pubsub/replication
// dispatch goroutine). Implements pubsub.Subscriber and replication's
// SlaveLink.
func (s *Session) Send(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.Conn.Write(data)
	return err
}

// EnterTransaction switches the session into queueing mode (MULTI).
func (s *Session) EnterTransaction() {
	s.Mode = ModeTransaction
	s.Queue = nil
}

// LeaveTransaction drains and returns the queue, restoring plain mode
// (EXEC/DISCARD).
func (s *Session) LeaveTransaction() []QueuedCommand {
	q := s.Queue
	s.Queue = nil
	s.Mode = ModePlain
	return q
}

// Enqueue appends a command to the transaction queue (MULTI body).
func (s *Session) Enqueue(name string, args [][]byte) {
	s.Queue = append(s.Queue, QueuedCommand{Name: name, Args: args})
}

// AddSubscription records a channel subscription, switching into
// subscribed mode the way spec.md §4.6 requires on the first SUBSCRIBE.
func (s *Session) AddSubscription(channel string, sub *pubsub.Subscription) {
	if old := s.subs[channel]; old != nil {
		old.Close()
	}
	s.subs[channel] = sub
	s.Mode = ModeSubscribed
}

// RemoveSubscription closes and forgets a channel subscription, dropping
// back to plain mode once none remain.
func (s *Session) RemoveSubscription(channel string) {
	if sub := s.subs[channel]; sub != nil {
		sub.Close()
		delete(s.subs, channel)
	}
	if len(s.subs) == 0 && s.Mode == ModeSubscribed {
		s.Mode = ModePlain
	}
}

// SubscriptionCount reports how many channels this session subscribes to.
func (s *Session) SubscriptionCount() int { return len(s.subs) }

// Channels returns the names of all subscribed channels, in no particular
// order.
func (s *Session) Channels() []string {
	out := make([]string, 0, len(s.subs))
	for ch := range s.subs {
		out = append(out, ch)
	}
	return out
}

// Close tears down every subscription this session holds — called when the
// connection drops.
func (s *Session) Close() {
	for ch, sub := range s.subs {
		sub.Close()
		delete(s.subs, ch)
	}
}
