// Package store implements the process-wide typed key/value store: a single
// concurrent map holding string, list, stream and sorted-set variants, with
// lazy expiry and blocking reads over per-key wait queues.
package store

import (
	"errors"
	"sync"
	"time"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNone Kind = iota
	KindString
	KindList
	KindStream
	KindZSet
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindStream:
		return "stream"
	case KindZSet:
		// "set" matches the original server's TYPE reply for a sorted set,
		// not "zset" — kept for wire compatibility even though the Go type
		// is named KindZSet internally.
		return "set"
	default:
		return "none"
	}
}

var (
	// ErrWrongType is returned when a command operates on a key holding a
	// different variant than the one it expects (e.g. LPUSH on a string).
	ErrWrongType = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")
	ErrNotFound  = errors.New("no such key")
)

// entry is the internal representation of a stored value. It is never
// handed out directly; callers receive copies so that no lock is held while
// a reply is being serialized.
type entry struct {
	kind   Kind
	expiry time.Time // zero means "no expiry"

	str    []byte
	list   [][]byte
	stream []StreamEntry
	zset   *zset
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiry.IsZero() && !now.Before(e.expiry)
}

// Store is the process-wide singleton holding all keys. A single RWMutex
// guards the map; fine-grained per-key locking is not required at this
// scale (contention is acceptable per spec).
type Store struct {
	mu sync.RWMutex
	m  map[string]*entry

	qmu    sync.Mutex
	queues map[string]*BlockingQueue
}

// New creates an empty store.
func New() *Store {
	return &Store{
		m:      make(map[string]*entry),
		queues: make(map[string]*BlockingQueue),
	}
}

// lookupLocked returns the live (non-expired) entry for key, or nil.
// Caller must hold s.mu (read or write).
func (s *Store) lookupLocked(key string, now time.Time) *entry {
	e := s.m[key]
	if e == nil || e.expired(now) {
		return nil
	}
	return e
}

// queueFor returns the (lazily created) BlockingQueue for key. Queues are
// never destroyed before shutdown, matching spec.md's BlockingQueue
// lifetime rule.
func (s *Store) queueFor(key string) *BlockingQueue {
	s.qmu.Lock()
	defer s.qmu.Unlock()
	q := s.queues[key]
	if q == nil {
		q = newBlockingQueue()
		s.queues[key] = q
	}
	return q
}

func (s *Store) notify(key string) {
	s.qmu.Lock()
	q := s.queues[key]
	s.qmu.Unlock()
	if q != nil {
		q.NotifyAll()
	}
}

// Type reports the RESP type name for key: "string", "list", "stream",
// "set" (sorted set), or "none" if missing/expired.
func (s *Store) Type(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e := s.lookupLocked(key, time.Now())
	if e == nil {
		return "none"
	}
	return e.kind.String()
}

// Exists reports whether key currently holds a live value.
func (s *Store) Exists(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupLocked(key, time.Now()) != nil
}

// Del removes keys, returning the number actually removed. Deleting a key
// wakes its BlockingQueue; a woken waiter re-checks the key, finds nothing
// and goes back to waiting until its own timeout.
func (s *Store) Del(keys ...string) int {
	now := time.Now()
	n := 0
	s.mu.Lock()
	for _, k := range keys {
		if e := s.m[k]; e != nil && !e.expired(now) {
			n++
		}
		delete(s.m, k)
	}
	s.mu.Unlock()
	for _, k := range keys {
		s.notify(k)
	}
	return n
}

// Keys returns all live keys. Only "*" is a supported pattern at the
// command layer; Keys itself has no pattern concept.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := time.Now()
	out := make([]string, 0, len(s.m))
	for k, e := range s.m {
		if !e.expired(now) {
			out = append(out, k)
		}
	}
	return out
}

// StringEntry is one key snapshotted by StringEntries.
type StringEntry struct {
	Key    string
	Value  []byte
	Expiry time.Time
}

// StringEntries returns a snapshot of every live string key, for the RDB
// writer (spec.md §9 decision 3: list/stream/zset keys are not part of the
// snapshot format this server writes).
func (s *Store) StringEntries() []StringEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := time.Now()
	out := make([]StringEntry, 0, len(s.m))
	for k, e := range s.m {
		if e.expired(now) || e.kind != KindString {
			continue
		}
		v := make([]byte, len(e.str))
		copy(v, e.str)
		out = append(out, StringEntry{Key: k, Value: v, Expiry: e.expiry})
	}
	return out
}

// ---- string ----

// SetString stores a byte string under key with an optional absolute
// expiry (zero time means no expiry).
func (s *Store) SetString(key string, value []byte, expiry time.Time) {
	s.mu.Lock()
	s.m[key] = &entry{kind: KindString, str: value, expiry: expiry}
	s.mu.Unlock()
	s.notify(key)
}

// GetString returns a copy of the string at key. ok is false if the key is
// missing/expired; err is ErrWrongType if key holds a non-string variant.
func (s *Store) GetString(key string) (value []byte, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e := s.lookupLocked(key, time.Now())
	if e == nil {
		return nil, false, nil
	}
	if e.kind != KindString {
		return nil, false, ErrWrongType
	}
	out := make([]byte, len(e.str))
	copy(out, e.str)
	return out, true, nil
}
