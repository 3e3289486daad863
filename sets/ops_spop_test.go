package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSPopFewerThanCount(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.SAdd([]byte("s"), bs("a", "b", "c", "d"))
	assert.Nil(t, err)

	popped, err := e.SPop([]byte("s"), 2)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(popped))

	card, err := e.SCard([]byte("s"))
	assert.Nil(t, err)
	assert.Equal(t, int32(2), card)

	for _, m := range popped {
		ok, _ := e.SIsMember([]byte("s"), m)
		assert.False(t, ok)
	}
}

func TestSPopAllDeletesMeta(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.SAdd([]byte("s"), bs("a", "b"))
	assert.Nil(t, err)

	popped, err := e.SPop([]byte("s"), 10)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(popped))

	_, err = e.SCard([]byte("s"))
	assert.True(t, IsNotFound(err))

	// a fresh SADD after a full pop starts a clean set, not a ghost of
	// the popped generation.
	added, err := e.SAdd([]byte("s"), bs("a"))
	assert.Nil(t, err)
	assert.Equal(t, 1, added)
	card, _ := e.SCard([]byte("s"))
	assert.Equal(t, int32(1), card)
}

func TestSPopOnMissingKeyIsNotFound(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.SPop([]byte("nope"), 1)
	assert.True(t, IsNotFound(err))
}

func TestSPopAccumulatesCounterAcrossPartialPops(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.SAdd([]byte("s"), bs("a", "b", "c", "d", "e"))
	assert.Nil(t, err)

	_, err = e.SPop([]byte("s"), 2)
	assert.Nil(t, err)
	count, ok := e.spop.Lookup("s")
	assert.True(t, ok)
	assert.Equal(t, 2, count)

	_, err = e.SPop([]byte("s"), 1)
	assert.Nil(t, err)
	count, ok = e.spop.Lookup("s")
	assert.True(t, ok)
	assert.Equal(t, 3, count)
}

func TestSPopDrainingSetClearsCounter(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.SAdd([]byte("s"), bs("a", "b"))
	assert.Nil(t, err)

	_, err = e.SPop([]byte("s"), 1)
	assert.Nil(t, err)
	_, ok := e.spop.Lookup("s")
	assert.True(t, ok)

	_, err = e.SPop([]byte("s"), 10)
	assert.Nil(t, err)
	_, ok = e.spop.Lookup("s")
	assert.False(t, ok)
}

func TestSpopCacheContract(t *testing.T) {
	c, err := newSpopCache(4)
	assert.Nil(t, err)

	_, ok := c.Lookup("k")
	assert.False(t, ok)

	c.Insert("k", 3)
	got, ok := c.Lookup("k")
	assert.True(t, ok)
	assert.Equal(t, 3, got)

	c.Remove("k")
	_, ok = c.Lookup("k")
	assert.False(t, ok)
}

func TestSRandMemberPositiveCountNoDuplicates(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.SAdd([]byte("s"), bs("a", "b", "c"))
	assert.Nil(t, err)

	got, err := e.SRandMember([]byte("s"), 2)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(got))
	assert.NotEqual(t, string(got[0]), string(got[1]))

	// members still present: SRANDMEMBER never mutates.
	card, _ := e.SCard([]byte("s"))
	assert.Equal(t, int32(3), card)
}

func TestSRandMemberCountExceedsSetSize(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.SAdd([]byte("s"), bs("a", "b"))
	assert.Nil(t, err)

	got, err := e.SRandMember([]byte("s"), 10)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(got))
}

func TestSRandMemberNegativeCountAllowsDuplicates(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.SAdd([]byte("s"), bs("only"))
	assert.Nil(t, err)

	got, err := e.SRandMember([]byte("s"), -5)
	assert.Nil(t, err)
	assert.Equal(t, 5, len(got))
	for _, m := range got {
		assert.Equal(t, "only", string(m))
	}
}
