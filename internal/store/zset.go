package store

import (
	"sort"
	"time"
)

// zmember is one (score, member) pair in a zset's ordered index.
type zmember struct {
	score  float64
	member string
}

func zless(a, b zmember) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	return a.member < b.member
}

// zset is an adaptation of the teacher's sorted id-set pattern (idset.go)
// from a flat unsorted slice with linear Add/Del into a slice kept sorted
// by (score, member), giving binary-search rank/insert/remove instead of
// idset.go's O(n) linear scans.
type zset struct {
	byMember map[string]float64
	ordered  []zmember // kept sorted by (score, member)
}

func newZSet() *zset {
	return &zset{byMember: make(map[string]float64)}
}

func (z *zset) search(m zmember) int {
	return sort.Search(len(z.ordered), func(i int) bool {
		return !zless(z.ordered[i], m)
	})
}

// add inserts or updates member's score, returning true if member is new.
func (z *zset) add(member string, score float64) bool {
	if oldScore, exists := z.byMember[member]; exists {
		old := zmember{score: oldScore, member: member}
		i := z.search(old)
		if i < len(z.ordered) && z.ordered[i] == old {
			z.ordered = append(z.ordered[:i], z.ordered[i+1:]...)
		}
		z.insert(zmember{score: score, member: member})
		z.byMember[member] = score
		return false
	}
	z.insert(zmember{score: score, member: member})
	z.byMember[member] = score
	return true
}

func (z *zset) insert(m zmember) {
	i := z.search(m)
	z.ordered = append(z.ordered, zmember{})
	copy(z.ordered[i+1:], z.ordered[i:])
	z.ordered[i] = m
}

func (z *zset) remove(member string) bool {
	score, exists := z.byMember[member]
	if !exists {
		return false
	}
	m := zmember{score: score, member: member}
	i := z.search(m)
	if i < len(z.ordered) && z.ordered[i] == m {
		z.ordered = append(z.ordered[:i], z.ordered[i+1:]...)
	}
	delete(z.byMember, member)
	return true
}

func (z *zset) rank(member string) (int, bool) {
	score, exists := z.byMember[member]
	if !exists {
		return 0, false
	}
	i := z.search(zmember{score: score, member: member})
	return i, true
}

// ZAdd inserts or updates member's score in the zset at key, returning true
// iff member is new.
func (s *Store) ZAdd(key string, score float64, member string) (bool, error) {
	s.mu.Lock()
	e := s.m[key]
	if e != nil && e.expired(time.Now()) {
		e = nil
	}
	if e == nil {
		e = &entry{kind: KindZSet, zset: newZSet()}
		s.m[key] = e
	} else if e.kind != KindZSet {
		s.mu.Unlock()
		return false, ErrWrongType
	}
	inserted := e.zset.add(member, score)
	s.mu.Unlock()
	s.notify(key)
	return inserted, nil
}

// ZScore returns member's score and whether it exists.
func (s *Store) ZScore(key, member string) (float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e := s.lookupLocked(key, time.Now())
	if e == nil {
		return 0, false, nil
	}
	if e.kind != KindZSet {
		return 0, false, ErrWrongType
	}
	score, ok := e.zset.byMember[member]
	return score, ok, nil
}

// ZRank returns member's 0-based rank in score order, and whether it exists.
func (s *Store) ZRank(key, member string) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e := s.lookupLocked(key, time.Now())
	if e == nil {
		return 0, false, nil
	}
	if e.kind != KindZSet {
		return 0, false, ErrWrongType
	}
	rank, ok := e.zset.rank(member)
	return rank, ok, nil
}

// ZRem removes member, returning true iff it was present.
func (s *Store) ZRem(key, member string) (bool, error) {
	s.mu.Lock()
	e := s.m[key]
	if e == nil || e.expired(time.Now()) {
		s.mu.Unlock()
		return false, nil
	}
	if e.kind != KindZSet {
		s.mu.Unlock()
		return false, ErrWrongType
	}
	removed := e.zset.remove(member)
	s.mu.Unlock()
	return removed, nil
}

// ZCard returns the number of members in the zset at key.
func (s *Store) ZCard(key string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e := s.lookupLocked(key, time.Now())
	if e == nil {
		return 0, nil
	}
	if e.kind != KindZSet {
		return 0, ErrWrongType
	}
	return len(e.zset.ordered), nil
}

// ZRange returns members (without scores) in [start,stop] inclusive rank
// order, using the same negative-index normalization as ListRange.
func (s *Store) ZRange(key string, start, stop int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e := s.lookupLocked(key, time.Now())
	if e == nil {
		return nil, nil
	}
	if e.kind != KindZSet {
		return nil, ErrWrongType
	}
	a, b, ok := normalizeRange(start, stop, len(e.zset.ordered))
	if !ok {
		return nil, nil
	}
	out := make([]string, b-a+1)
	for i := a; i <= b; i++ {
		out[i-a] = e.zset.ordered[i].member
	}
	return out, nil
}
