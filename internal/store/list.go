package store

import "time"

// ListPushFront prepends values (in argument order, so the last argument
// ends up closest to the front) and returns the new length.
func (s *Store) ListPushFront(key string, values [][]byte) (int, error) {
	return s.listPush(key, values, true)
}

// ListPushBack appends values and returns the new length.
func (s *Store) ListPushBack(key string, values [][]byte) (int, error) {
	return s.listPush(key, values, false)
}

func (s *Store) listPush(key string, values [][]byte, front bool) (int, error) {
	s.mu.Lock()
	e := s.m[key]
	if e != nil && e.expired(time.Now()) {
		e = nil
	}
	if e == nil {
		e = &entry{kind: KindList}
		s.m[key] = e
	} else if e.kind != KindList {
		s.mu.Unlock()
		return 0, ErrWrongType
	}
	if front {
		// values are pushed one at a time from the left, so later args end
		// up closer to the head: prepend them in reverse order as one block.
		reversed := make([][]byte, len(values))
		for i, v := range values {
			reversed[len(values)-1-i] = v
		}
		e.list = append(reversed, e.list...)
	} else {
		e.list = append(e.list, values...)
	}
	n := len(e.list)
	s.mu.Unlock()
	s.notify(key)
	return n, nil
}

// ListLen returns the length of the list at key (0 if missing).
func (s *Store) ListLen(key string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e := s.lookupLocked(key, time.Now())
	if e == nil {
		return 0, nil
	}
	if e.kind != KindList {
		return 0, ErrWrongType
	}
	return len(e.list), nil
}

// ListRange returns a copy of the [start,stop] inclusive slice, with
// negative indices counting from the end and clamping to [0, size-1].
func (s *Store) ListRange(key string, start, stop int) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e := s.lookupLocked(key, time.Now())
	if e == nil {
		return nil, nil
	}
	if e.kind != KindList {
		return nil, ErrWrongType
	}
	a, b, ok := normalizeRange(start, stop, len(e.list))
	if !ok {
		return nil, nil
	}
	out := make([][]byte, b-a+1)
	for i := a; i <= b; i++ {
		out[i-a] = append([]byte(nil), e.list[i]...)
	}
	return out, nil
}

// normalizeRange applies Redis-style negative index normalization: negative
// indices count from the end, both bounds clamp to [0, size-1], and the
// range is empty (ok=false) if the normalized start exceeds stop or size==0.
func normalizeRange(start, stop, size int) (a, b int, ok bool) {
	if size == 0 {
		return 0, 0, false
	}
	if start < 0 {
		start += size
	}
	if stop < 0 {
		stop += size
	}
	if start < 0 {
		start = 0
	}
	if stop >= size {
		stop = size - 1
	}
	if start > stop || start >= size || stop < 0 {
		return 0, 0, false
	}
	return start, stop, true
}

// ListPopFront pops up to count items from the front of the list at key.
//
// If timeout is nil, a single non-blocking attempt is made (LPOP semantics).
// If timeout is non-nil and nothing could be popped, the call blocks until
// an attempt pops at least one item or the deadline elapses; *timeout == 0
// means wait forever (BLPOP semantics). It returns whatever that attempt
// popped (at most count items); it does not wait for count items to gather.
func (s *Store) ListPopFront(key string, count int, timeout *time.Duration) (timedOut bool, items [][]byte, err error) {
	items, err = s.tryPopFront(key, count)
	if err != nil {
		return false, nil, err
	}
	if len(items) > 0 || timeout == nil {
		return false, items, nil
	}

	var deadline time.Time
	hasDeadline := *timeout > 0
	if hasDeadline {
		deadline = time.Now().Add(*timeout)
	}

	q := s.queueFor(key)
	for {
		tok := q.Wait()
		var timer *time.Timer
		var timerC <-chan time.Time
		if hasDeadline {
			d := time.Until(deadline)
			if d <= 0 {
				q.Remove(tok)
				return true, nil, nil
			}
			timer = time.NewTimer(d)
			timerC = timer.C
		}
		select {
		case <-tok.Woken():
			q.Remove(tok)
		case <-timerC:
			q.Remove(tok)
			return true, nil, nil
		}
		if timer != nil {
			timer.Stop()
		}
		items, err = s.tryPopFront(key, count)
		if err != nil {
			return false, nil, err
		}
		if len(items) > 0 {
			return false, items, nil
		}
	}
}

func (s *Store) tryPopFront(key string, count int) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.lookupLocked(key, time.Now())
	if e == nil {
		return nil, nil
	}
	if e.kind != KindList {
		return nil, ErrWrongType
	}
	n := count
	if n > len(e.list) {
		n = len(e.list)
	}
	if n == 0 {
		return nil, nil
	}
	out := make([][]byte, n)
	copy(out, e.list[:n])
	e.list = e.list[n:]
	return out, nil
}
