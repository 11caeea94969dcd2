// Package replication implements spec.md's C8: master-side write fan-out
// and offset/WAIT bookkeeping, and replica-side handshake/streaming-apply.
// Grounded on the teacher's concurrency style (mutex-guarded shared state,
// no package-level globals) generalized from rsms-ent's single-process
// model to the master/replica split spec.md §4.8 requires.
package replication

import (
	"sync"
	"time"

	"github.com/rsms/go-uuid"
)

type Role int

const (
	RoleMaster Role = iota
	RoleReplica
)

// SlaveLink is the write path to one connected replica. session.Session
// implements it; kept as an interface so this package never imports
// session.
type SlaveLink interface {
	Send(data []byte) error
}

type slaveState struct {
	link      SlaveLink
	ackOffset int64
}

// Manager tracks replication role and offset bookkeeping for one server
// instance. A server is either a master (fanning writes out to zero or
// more replicas) or a replica (applying a stream from one master) — never
// both, per spec.md §4.8.
type Manager struct {
	mu   sync.Mutex
	cond *sync.Cond

	role   Role
	replID string

	// master side
	offset int64
	slaves map[uint64]*slaveState

	// replica side
	masterHost    string
	masterPort    string
	bytesReceived int64
}

func NewMaster() *Manager {
	m := &Manager{
		role:   RoleMaster,
		replID: uuid.MustGen().String(),
		slaves: make(map[uint64]*slaveState),
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

func NewReplica(host, port string) *Manager {
	m := &Manager{
		role:       RoleReplica,
		replID:     uuid.MustGen().String(),
		slaves:     make(map[uint64]*slaveState),
		masterHost: host,
		masterPort: port,
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

func (m *Manager) Role() Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.role
}

func (m *Manager) ReplID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replID
}

// Offset returns the current propagated-bytes offset (master) or the
// number of bytes applied from the master stream so far (replica).
func (m *Manager) Offset() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.role == RoleReplica {
		return m.bytesReceived
	}
	return m.offset
}

// RegisterSlave adds a connected replica to the fan-out set, keyed by its
// session ID (spec.md §9 decision: triggered by REPLCONF listening-port).
func (m *Manager) RegisterSlave(sessionID uint64, link SlaveLink) {
	m.mu.Lock()
	m.slaves[sessionID] = &slaveState{link: link}
	m.mu.Unlock()
}

func (m *Manager) UnregisterSlave(sessionID uint64) {
	m.mu.Lock()
	delete(m.slaves, sessionID)
	m.cond.Broadcast()
	m.mu.Unlock()
}

func (m *Manager) SlaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slaves)
}

// PropagateWrite bumps the master offset by len(raw) and fans raw out to
// every connected replica, all while holding the same lock — keeping the
// offset bump and the fan-out atomic with respect to a concurrent WAIT
// snapshotting the target offset (spec.md §4.8, §9 decision 1).
func (m *Manager) PropagateWrite(raw []byte) {
	m.mu.Lock()
	m.offset += int64(len(raw))
	for id, sl := range m.slaves {
		if err := sl.link.Send(raw); err != nil {
			delete(m.slaves, id)
		}
	}
	m.mu.Unlock()
}

// Broadcast sends raw to every connected replica without touching the
// master offset — used for REPLCONF GETACK, which is control traffic, not
// a propagated write (spec.md §9: offset counts write-command bytes only).
func (m *Manager) Broadcast(raw []byte) {
	m.mu.Lock()
	for id, sl := range m.slaves {
		if err := sl.link.Send(raw); err != nil {
			delete(m.slaves, id)
		}
	}
	m.mu.Unlock()
}

// Ack records a replica's REPLCONF ACK <offset> and wakes any WAIT call
// blocked on it.
func (m *Manager) Ack(sessionID uint64, offset int64) {
	m.mu.Lock()
	if sl := m.slaves[sessionID]; sl != nil && offset > sl.ackOffset {
		sl.ackOffset = offset
	}
	m.cond.Broadcast()
	m.mu.Unlock()
}

func (m *Manager) countAcked(target int64) int {
	n := 0
	for _, sl := range m.slaves {
		if sl.ackOffset >= target {
			n++
		}
	}
	return n
}

// Wait implements the WAIT command: request an ACK from every connected
// replica, then block until numReplicas have acknowledged at least the
// offset current at call time, or timeout elapses (timeout <= 0 waits
// forever, per spec.md's general blocking-command convention).
func (m *Manager) Wait(numReplicas int, timeout time.Duration, getack func()) int {
	m.mu.Lock()
	target := m.offset
	already := m.countAcked(target)
	m.mu.Unlock()

	if already >= numReplicas || numReplicas <= 0 {
		return already
	}
	if getack != nil {
		getack()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var timedOut bool
	var timer *time.Timer
	if timeout > 0 {
		timer = time.AfterFunc(timeout, func() {
			m.mu.Lock()
			timedOut = true
			m.cond.Broadcast()
			m.mu.Unlock()
		})
		defer timer.Stop()
	}
	for m.countAcked(target) < numReplicas && !timedOut {
		m.cond.Wait()
	}
	return m.countAcked(target)
}

// RecordApplied advances the replica-side applied-bytes counter. Used by
// the streaming-apply loop after each command it executes from the master.
func (m *Manager) RecordApplied(n int64) {
	m.mu.Lock()
	m.bytesReceived += n
	m.mu.Unlock()
}

// MasterAddr returns the configured master host:port (replica role only).
func (m *Manager) MasterAddr() (host, port string) {
	return m.masterHost, m.masterPort
}
