package sets

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cqkv/lsmset/engine"
)

func TestSAddCreatesAndCounts(t *testing.T) {
	e := newTestEngine(t)

	added, err := e.SAdd([]byte("s"), bs("a", "b", "c"))
	assert.Nil(t, err)
	assert.Equal(t, 3, added)

	card, err := e.SCard([]byte("s"))
	assert.Nil(t, err)
	assert.Equal(t, int32(3), card)
}

func TestSAddDedupsWithinCall(t *testing.T) {
	e := newTestEngine(t)

	added, err := e.SAdd([]byte("s"), bs("a", "a", "b"))
	assert.Nil(t, err)
	assert.Equal(t, 2, added)
}

func TestSAddIgnoresExistingMembers(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.SAdd([]byte("s"), bs("a", "b"))
	assert.Nil(t, err)

	added, err := e.SAdd([]byte("s"), bs("b", "c"))
	assert.Nil(t, err)
	assert.Equal(t, 1, added)

	card, _ := e.SCard([]byte("s"))
	assert.Equal(t, int32(3), card)
}

func TestSAddThenSIsMember(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.SAdd([]byte("s"), bs("a"))
	assert.Nil(t, err)

	ok, err := e.SIsMember([]byte("s"), []byte("a"))
	assert.Nil(t, err)
	assert.True(t, ok)

	ok, err = e.SIsMember([]byte("s"), []byte("missing"))
	assert.Nil(t, err)
	assert.False(t, ok)
}

func TestSAddSCardOnMissingKeyIsNotFound(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.SCard([]byte("nope"))
	assert.True(t, IsNotFound(err))
}

func TestSMembersOrderIsMemberLex(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.SAdd([]byte("s"), bs("banana", "apple", "cherry"))
	assert.Nil(t, err)

	members, err := e.SMembers([]byte("s"))
	assert.Nil(t, err)

	got := memberStrings(members)
	want := append([]string(nil), got...)
	sort.Strings(want)
	assert.Equal(t, want, got)
}

func TestSMembersWithTTLPermanent(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.SAdd([]byte("s"), bs("a"))
	assert.Nil(t, err)

	withTTL, err := e.SMembersWithTTL([]byte("s"))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(withTTL))
	assert.Equal(t, int64(-1), withTTL[0].TTLSecs)
}

// TestSAddResurrectsStaleSet covers the version-bump logical-delete
// path: once a set is stale, SAdd starts a fresh generation with only
// the newly-added members.
func TestSAddResurrectsStaleSet(t *testing.T) {
	e := newTestEngine(t)

	added, err := e.SAdd([]byte("s"), bs("old"))
	assert.Nil(t, err)
	assert.Equal(t, 1, added)

	// force staleness by writing an already-expired meta directly.
	now := e.nowSeconds()
	meta, _, err := loadSetMeta(e.db, now, []byte("s"))
	assert.Nil(t, err)
	expired := EncodeSetMeta(meta.Count(), meta.Version(), now-1, meta.Ctime())
	assert.Nil(t, e.db.Put(engine.MetaCF, []byte("s"), expired))

	added, err = e.SAdd([]byte("s"), bs("new"))
	assert.Nil(t, err)
	assert.Equal(t, 1, added)

	ok, err := e.SIsMember([]byte("s"), []byte("old"))
	assert.Nil(t, err)
	assert.False(t, ok)

	ok, err = e.SIsMember([]byte("s"), []byte("new"))
	assert.Nil(t, err)
	assert.True(t, ok)
}
