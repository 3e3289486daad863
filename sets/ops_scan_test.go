package sets

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSScanReturnsAllMembersInOnePass(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.SAdd([]byte("s"), bs("apple", "banana", "cherry"))
	assert.Nil(t, err)

	cursor, members, err := e.SScan([]byte("s"), 0, "*", 10)
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), cursor)
	got := memberStrings(members)
	sort.Strings(got)
	assert.Equal(t, []string{"apple", "banana", "cherry"}, got)
}

func TestSScanPaginatesWithCursor(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.SAdd([]byte("s"), bs("a", "b", "c", "d", "e"))
	assert.Nil(t, err)

	seen := make(map[string]bool)
	var cursor uint64
	for i := 0; i < 10; i++ {
		var members [][]byte
		var err error
		cursor, members, err = e.SScan([]byte("s"), cursor, "*", 2)
		assert.Nil(t, err)
		for _, m := range members {
			seen[string(m)] = true
		}
		if cursor == 0 {
			break
		}
	}
	assert.Equal(t, 5, len(seen))
}

func TestSScanGlobPatternFiltersMembers(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.SAdd([]byte("s"), bs("foo1", "foo2", "bar1"))
	assert.Nil(t, err)

	_, members, err := e.SScan([]byte("s"), 0, "foo*", 10)
	assert.Nil(t, err)
	got := memberStrings(members)
	sort.Strings(got)
	assert.Equal(t, []string{"foo1", "foo2"}, got)
}

func TestSScanOnMissingKeyIsNotFound(t *testing.T) {
	e := newTestEngine(t)
	_, _, err := e.SScan([]byte("nope"), 0, "*", 10)
	assert.True(t, IsNotFound(err))
}

func TestLiteralPrefix(t *testing.T) {
	lit, ok := literalPrefix("foo*")
	assert.True(t, ok)
	assert.Equal(t, "foo", lit)

	lit, ok = literalPrefix("foo")
	assert.True(t, ok)
	assert.Equal(t, "foo", lit)

	_, ok = literalPrefix("*foo")
	assert.False(t, ok)

	_, ok = literalPrefix("f?o")
	assert.False(t, ok)

	_, ok = literalPrefix("f[a-z]o")
	assert.False(t, ok)
}
