package store

import (
	"testing"
	"time"

	"github.com/rsms/go-testutil"
)

func TestStringExpiry(t *testing.T) {
	assert := testutil.NewAssert(t)

	s := New()
	s.SetString("k", []byte("v"), time.Now().Add(-time.Second))
	_, ok, err := s.GetString("k")
	assert.Ok("no err", err == nil)
	assert.Ok("expired key reads as missing", !ok)

	s.SetString("k2", []byte("v2"), time.Time{})
	v, ok, err := s.GetString("k2")
	assert.Ok("no err", err == nil)
	assert.Ok("present", ok)
	assert.Eq("value", string(v), "v2")
}

func TestWrongTypeLeavesValueUntouched(t *testing.T) {
	assert := testutil.NewAssert(t)

	s := New()
	s.SetString("k", []byte("v"), time.Time{})
	_, err := s.ListLen("k")
	assert.Ok("wrong type", err == ErrWrongType)

	v, ok, _ := s.GetString("k")
	assert.Ok("still present", ok)
	assert.Eq("value unchanged", string(v), "v")
}

func TestListPushAndRange(t *testing.T) {
	assert := testutil.NewAssert(t)

	s := New()
	n, err := s.ListPushBack("list", [][]byte{[]byte("a"), []byte("b")})
	assert.Ok("no err", err == nil)
	assert.Eq("len", n, 2)

	n, err = s.ListPushFront("list", [][]byte{[]byte("x"), []byte("y")})
	assert.Ok("no err", err == nil)
	assert.Eq("len", n, 4)

	items, err := s.ListRange("list", 0, -1)
	assert.Ok("no err", err == nil)
	got := make([]string, len(items))
	for i, it := range items {
		got[i] = string(it)
	}
	assert.Eq("order", got, []string{"y", "x", "a", "b"})
}

func TestListPopFrontBlockingWakeup(t *testing.T) {
	assert := testutil.NewAssert(t)

	s := New()
	done := make(chan [][]byte, 1)
	timeout := 2 * time.Second
	go func() {
		_, items, _ := s.ListPopFront("q", 1, &timeout)
		done <- items
	}()

	time.Sleep(20 * time.Millisecond)
	_, err := s.ListPushBack("q", [][]byte{[]byte("v")})
	assert.Ok("no err", err == nil)

	select {
	case items := <-done:
		assert.Eq("woken with value", string(items[0]), "v")
	case <-time.After(time.Second):
		t.Fatal("blocked popper was never woken")
	}
}

func TestStreamMonotonicIDs(t *testing.T) {
	assert := testutil.NewAssert(t)

	s := New()
	now := time.Now()
	id1, err := s.StreamAdd("st", "1-1", []string{"f", "v"}, now)
	assert.Ok("no err", err == nil)
	assert.Eq("id1", id1.String(), "1-1")

	_, err = s.StreamAdd("st", "1-1", []string{"f", "v"}, now)
	assert.Ok("duplicate id rejected", err != nil)

	_, err = s.StreamAdd("st", "1-0", []string{"f", "v"}, now)
	assert.Ok("smaller id rejected", err != nil)

	id2, err := s.StreamAdd("st", "1-*", []string{"f", "v"}, now)
	assert.Ok("no err", err == nil)
	assert.Eq("id2 seq bumped", id2.String(), "1-2")
}

func TestZSetOrdering(t *testing.T) {
	assert := testutil.NewAssert(t)

	s := New()
	for _, m := range []struct {
		member string
		score  float64
	}{{"a", 3}, {"b", 1}, {"c", 2}} {
		_, err := s.ZAdd("z", m.score, m.member)
		assert.Ok("no err", err == nil)
	}

	members, err := s.ZRange("z", 0, -1)
	assert.Ok("no err", err == nil)
	assert.Eq("ordered by score", members, []string{"b", "c", "a"})

	rank, ok, _ := s.ZRank("z", "c")
	assert.Ok("found", ok)
	assert.Eq("rank", rank, 1)

	removed, _ := s.ZRem("z", "b")
	assert.Ok("removed", removed)
	members, _ = s.ZRange("z", 0, -1)
	assert.Eq("after remove", members, []string{"c", "a"})
}
