package rdb

import (
	"testing"
	"time"

	"github.com/rsms/go-testutil"

	"github.com/rsms/gored/internal/store"
)

func TestEmptyStoreSnapshotIsLiteralBytes(t *testing.T) {
	assert := testutil.NewAssert(t)

	st := store.New()
	snap := WriteSnapshot(st)
	assert.Eq("matches literal empty snapshot", string(snap), string(EmptySnapshot))
}

func TestWriteLoadRoundTrip(t *testing.T) {
	assert := testutil.NewAssert(t)

	st := store.New()
	st.SetString("a", []byte("1"), time.Time{})
	st.SetString("b", []byte("2"), time.Now().Add(time.Hour))

	snap := WriteSnapshot(st)

	loaded := store.New()
	err := Load(snap, loaded)
	assert.Ok("load ok", err == nil)

	v, ok, err := loaded.GetString("a")
	assert.Ok("a loaded", ok && err == nil)
	assert.Eq("a value", string(v), "1")

	v, ok, err = loaded.GetString("b")
	assert.Ok("b loaded", ok && err == nil)
	assert.Eq("b value", string(v), "2")
}

func TestLoadEmptySnapshot(t *testing.T) {
	assert := testutil.NewAssert(t)

	st := store.New()
	err := Load(EmptySnapshot, st)
	assert.Ok("load ok", err == nil)
	assert.Eq("no keys", len(st.Keys()), 0)
}
