package store

import (
	"errors"
	"strconv"
	"time"
)

// ErrNotAnInteger is returned by Incr when the stored string does not
// parse as a base-10 int64.
var ErrNotAnInteger = errors.New("value is not an integer or out of range")

// Incr parses the string at key as an int64, adds 1, and stores the result
// back as a string. A missing key is treated as 0. Returns the new value.
func (s *Store) Incr(key string) (int64, error) {
	s.mu.Lock()
	e := s.m[key]
	if e != nil && e.expired(time.Now()) {
		e = nil
	}
	var cur int64
	if e != nil {
		if e.kind != KindString {
			s.mu.Unlock()
			return 0, ErrWrongType
		}
		n, err := strconv.ParseInt(string(e.str), 10, 64)
		if err != nil {
			s.mu.Unlock()
			return 0, ErrNotAnInteger
		}
		cur = n
	}
	cur++
	buf := strconv.AppendInt(nil, cur, 10)
	if e == nil {
		e = &entry{kind: KindString}
		s.m[key] = e
	}
	e.str = buf
	s.mu.Unlock()
	s.notify(key)
	return cur, nil
}
