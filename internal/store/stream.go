package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// StreamID is the 128-bit-equivalent (ms, seq) pair identifying a stream
// entry. Ids are compared lexicographically on (ms, seq).
type StreamID struct {
	MS, Seq uint64
}

func (id StreamID) Less(o StreamID) bool {
	if id.MS != o.MS {
		return id.MS < o.MS
	}
	return id.Seq < o.Seq
}

func (id StreamID) LessEq(o StreamID) bool {
	return id == o || id.Less(o)
}

func (id StreamID) String() string {
	return strconv.FormatUint(id.MS, 10) + "-" + strconv.FormatUint(id.Seq, 10)
}

// StreamEntry is one record in a stream: an id plus a flat field/value list.
type StreamEntry struct {
	ID     StreamID
	Fields []string // field,value,field,value,...
}

var (
	errStreamIDZero       = errors.New("The ID specified in XADD must be greater than 0-0")
	errStreamIDNotGreater = errors.New("The ID specified in XADD is equal or smaller than the target stream top item")
	errStreamIDFuture     = errors.New("The timestamp in ID is from the future")
)

// ParseStreamID parses "ms-seq", "ms", "ms-*" (seq wildcard) is handled by
// the caller (StreamAdd); this only parses fully-specified ids, used by
// XRANGE bounds (after - / + sentinels are resolved by the caller).
func ParseStreamID(s string, seqIfOmitted uint64) (StreamID, error) {
	if i := strings.IndexByte(s, '-'); i >= 0 {
		ms, err := strconv.ParseUint(s[:i], 10, 64)
		if err != nil {
			return StreamID{}, fmt.Errorf("invalid stream ID %q", s)
		}
		seq, err := strconv.ParseUint(s[i+1:], 10, 64)
		if err != nil {
			return StreamID{}, fmt.Errorf("invalid stream ID %q", s)
		}
		return StreamID{MS: ms, Seq: seq}, nil
	}
	ms, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return StreamID{}, fmt.Errorf("invalid stream ID %q", s)
	}
	return StreamID{MS: ms, Seq: seqIfOmitted}, nil
}

// StreamAdd assigns an id to fields per idSpec and appends it to the stream
// at key, creating the stream if necessary. idSpec is one of "*", "ms-*",
// or "ms-seq".
func (s *Store) StreamAdd(key, idSpec string, fields []string, now time.Time) (StreamID, error) {
	s.mu.Lock()
	e := s.m[key]
	if e != nil && e.expired(now) {
		e = nil
	}
	if e == nil {
		e = &entry{kind: KindStream}
	} else if e.kind != KindStream {
		s.mu.Unlock()
		return StreamID{}, ErrWrongType
	}

	var top StreamID
	hasTop := len(e.stream) > 0
	if hasTop {
		top = e.stream[len(e.stream)-1].ID
	}

	id, err := nextStreamID(idSpec, top, hasTop, now)
	if err != nil {
		s.mu.Unlock()
		return StreamID{}, err
	}
	if id == (StreamID{}) {
		s.mu.Unlock()
		return StreamID{}, errStreamIDZero
	}
	if hasTop && !top.Less(id) {
		s.mu.Unlock()
		return StreamID{}, errStreamIDNotGreater
	}

	e.stream = append(e.stream, StreamEntry{ID: id, Fields: append([]string(nil), fields...)})
	s.m[key] = e
	s.mu.Unlock()
	s.notify(key)
	return id, nil
}

func nextStreamID(idSpec string, top StreamID, hasTop bool, now time.Time) (StreamID, error) {
	nowMS := uint64(now.UnixMilli())

	if idSpec == "*" {
		if hasTop && top.MS == nowMS {
			return StreamID{MS: nowMS, Seq: top.Seq + 1}, nil
		}
		seq := uint64(0)
		if nowMS == 0 {
			seq = 1
		}
		return StreamID{MS: nowMS, Seq: seq}, nil
	}

	if strings.HasSuffix(idSpec, "-*") {
		msPart := strings.TrimSuffix(idSpec, "-*")
		ms, err := strconv.ParseUint(msPart, 10, 64)
		if err != nil {
			return StreamID{}, fmt.Errorf("invalid stream ID %q", idSpec)
		}
		if ms > nowMS {
			return StreamID{}, errStreamIDFuture
		}
		if hasTop && ms == top.MS {
			return StreamID{MS: ms, Seq: top.Seq + 1}, nil
		}
		seq := uint64(0)
		if ms == 0 {
			seq = 1
		}
		return StreamID{MS: ms, Seq: seq}, nil
	}

	id, err := ParseStreamID(idSpec, 0)
	if err != nil {
		return StreamID{}, err
	}
	if id.MS > nowMS {
		return StreamID{}, errStreamIDFuture
	}
	return id, nil
}

// StreamRange returns entries in [start,end] inclusive.
func (s *Store) StreamRange(key string, start, end StreamID) ([]StreamEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e := s.lookupLocked(key, time.Now())
	if e == nil {
		return nil, nil
	}
	if e.kind != KindStream {
		return nil, ErrWrongType
	}
	var out []StreamEntry
	for _, se := range e.stream {
		if start.LessEq(se.ID) && se.ID.LessEq(end) {
			out = append(out, StreamEntry{ID: se.ID, Fields: append([]string(nil), se.Fields...)})
		}
	}
	return out, nil
}

// TopStreamID returns the last (highest) id in the stream at key, and
// whether the stream exists and is non-empty.
func (s *Store) TopStreamID(key string) (StreamID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e := s.lookupLocked(key, time.Now())
	if e == nil || e.kind != KindStream || len(e.stream) == 0 {
		return StreamID{}, false
	}
	return e.stream[len(e.stream)-1].ID, true
}

// StreamReadSince returns entries with id strictly greater than after.
func (s *Store) StreamReadSince(key string, after StreamID) ([]StreamEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e := s.lookupLocked(key, time.Now())
	if e == nil {
		return nil, nil
	}
	if e.kind != KindStream {
		return nil, ErrWrongType
	}
	var out []StreamEntry
	for _, se := range e.stream {
		if after.Less(se.ID) {
			out = append(out, StreamEntry{ID: se.ID, Fields: append([]string(nil), se.Fields...)})
		}
	}
	return out, nil
}

// StreamReadAny implements XREAD's blocking multi-key read. starts gives
// the base id per key (already resolved from "$" by the caller using
// TopStreamID). It probes once; if all keys are empty and timeout is set,
// it waits on one token per key until any key is notified, then rescans.
func (s *Store) StreamReadAny(keys []string, starts []StreamID, timeout *time.Duration) (timedOut bool, result map[string][]StreamEntry, err error) {
	probe := func() (map[string][]StreamEntry, error) {
		out := make(map[string][]StreamEntry)
		for i, k := range keys {
			entries, err := s.StreamReadSince(k, starts[i])
			if err != nil {
				return nil, err
			}
			if len(entries) > 0 {
				out[k] = entries
			}
		}
		return out, nil
	}

	res, err := probe()
	if err != nil {
		return false, nil, err
	}
	if len(res) > 0 || timeout == nil {
		return false, res, nil
	}

	var deadline time.Time
	hasDeadline := *timeout > 0
	if hasDeadline {
		deadline = time.Now().Add(*timeout)
	}

	for {
		queues := make([]*BlockingQueue, len(keys))
		tokens := make([]*WaitToken, len(keys))
		for i, k := range keys {
			queues[i] = s.queueFor(k)
			tokens[i] = queues[i].Wait()
		}

		var timer *time.Timer
		var timerC <-chan time.Time
		if hasDeadline {
			d := time.Until(deadline)
			if d <= 0 {
				for i := range tokens {
					queues[i].Remove(tokens[i])
				}
				return true, nil, nil
			}
			timer = time.NewTimer(d)
			timerC = timer.C
		}

		woke := waitAny(tokens, timerC)
		for i := range tokens {
			queues[i].Remove(tokens[i])
		}
		if timer != nil {
			timer.Stop()
		}
		if !woke {
			return true, nil, nil
		}

		res, err = probe()
		if err != nil {
			return false, nil, err
		}
		if len(res) > 0 {
			return false, res, nil
		}
	}
}

// waitAny blocks until any token is woken or timerC fires, returning false
// on timeout.
func waitAny(tokens []*WaitToken, timerC <-chan time.Time) bool {
	cases := make([]chan struct{}, len(tokens))
	for i, t := range tokens {
		cases[i] = t.ch
	}
	// a simple fan-in is sufficient here: poll with a short ticker rather
	// than building a dynamic reflect.Select, since the number of keys in
	// a single XREAD is small and this path is not hot.
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		for _, ch := range cases {
			select {
			case <-ch:
				return true
			default:
			}
		}
		select {
		case <-timerC:
			return false
		case <-ticker.C:
		}
	}
}
