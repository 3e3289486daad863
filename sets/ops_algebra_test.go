package sets

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func seedSet(t *testing.T, e *Engine, key string, members ...string) {
	t.Helper()
	_, err := e.SAdd([]byte(key), bs(members...))
	assert.Nil(t, err)
}

func TestSDiff(t *testing.T) {
	e := newTestEngine(t)
	seedSet(t, e, "a", "x", "y", "z")
	seedSet(t, e, "b", "y")
	seedSet(t, e, "c", "z")

	got, err := e.SDiff(bs("a", "b", "c"))
	assert.Nil(t, err)
	assert.Equal(t, []string{"x"}, memberStrings(got))
}

func TestSDiffMissingSubtrahendContributesEmptySet(t *testing.T) {
	e := newTestEngine(t)
	seedSet(t, e, "a", "x", "y")

	got, err := e.SDiff(bs("a", "missing"))
	assert.Nil(t, err)
	sorted := memberStrings(got)
	sort.Strings(sorted)
	assert.Equal(t, []string{"x", "y"}, sorted)
}

func TestSDiffMissingFirstKeyIsEmptyResult(t *testing.T) {
	e := newTestEngine(t)
	seedSet(t, e, "b", "x")

	got, err := e.SDiff(bs("missing", "b"))
	assert.Nil(t, err)
	assert.Nil(t, got)
}

func TestSInter(t *testing.T) {
	e := newTestEngine(t)
	seedSet(t, e, "a", "x", "y", "z")
	seedSet(t, e, "b", "y", "z", "w")

	got, err := e.SInter(bs("a", "b"))
	assert.Nil(t, err)
	sorted := memberStrings(got)
	sort.Strings(sorted)
	assert.Equal(t, []string{"y", "z"}, sorted)
}

func TestSInterMissingKeyForcesEmpty(t *testing.T) {
	e := newTestEngine(t)
	seedSet(t, e, "a", "x")

	got, err := e.SInter(bs("a", "missing"))
	assert.Nil(t, err)
	assert.Nil(t, got)
}

func TestSUnion(t *testing.T) {
	e := newTestEngine(t)
	seedSet(t, e, "a", "x", "y")
	seedSet(t, e, "b", "y", "z")

	got, err := e.SUnion(bs("a", "b"))
	assert.Nil(t, err)
	sorted := memberStrings(got)
	sort.Strings(sorted)
	assert.Equal(t, []string{"x", "y", "z"}, sorted)
}

func TestSUnionSkipsMissingKeys(t *testing.T) {
	e := newTestEngine(t)
	seedSet(t, e, "a", "x")

	got, err := e.SUnion(bs("a", "missing"))
	assert.Nil(t, err)
	assert.Equal(t, []string{"x"}, memberStrings(got))
}

func TestSDiffStoreWritesResultSet(t *testing.T) {
	e := newTestEngine(t)
	seedSet(t, e, "a", "x", "y")
	seedSet(t, e, "b", "y")

	n, err := e.SDiffStore([]byte("dest"), bs("a", "b"))
	assert.Nil(t, err)
	assert.Equal(t, int32(1), n)

	ok, err := e.SIsMember([]byte("dest"), []byte("x"))
	assert.Nil(t, err)
	assert.True(t, ok)
}

func TestSInterStoreOverwritesExistingDestination(t *testing.T) {
	e := newTestEngine(t)
	seedSet(t, e, "a", "x", "y")
	seedSet(t, e, "b", "y")
	seedSet(t, e, "dest", "stale-member")

	n, err := e.SInterStore([]byte("dest"), bs("a", "b"))
	assert.Nil(t, err)
	assert.Equal(t, int32(1), n)

	ok, _ := e.SIsMember([]byte("dest"), []byte("stale-member"))
	assert.False(t, ok)
	ok, _ = e.SIsMember([]byte("dest"), []byte("y"))
	assert.True(t, ok)
}

func TestSUnionStoreEmptyResultLeavesDestAbsent(t *testing.T) {
	e := newTestEngine(t)

	n, err := e.SUnionStore([]byte("dest"), bs("missing1", "missing2"))
	assert.Nil(t, err)
	assert.Equal(t, int32(0), n)

	_, err = e.SCard([]byte("dest"))
	assert.True(t, IsNotFound(err))
}

func TestAlgebraRejectsEmptyKeyList(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.SDiff(nil)
	assert.NotNil(t, err)
	_, err = e.SInter(nil)
	assert.NotNil(t, err)
	_, err = e.SUnion(nil)
	assert.NotNil(t, err)
}
