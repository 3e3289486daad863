package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMoveMovesMember(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.SAdd([]byte("src"), bs("a", "b"))
	assert.Nil(t, err)
	_, err = e.SAdd([]byte("dst"), bs("x"))
	assert.Nil(t, err)

	moved, err := e.SMove([]byte("src"), []byte("dst"), []byte("a"))
	assert.Nil(t, err)
	assert.True(t, moved)

	ok, _ := e.SIsMember([]byte("src"), []byte("a"))
	assert.False(t, ok)
	ok, _ = e.SIsMember([]byte("dst"), []byte("a"))
	assert.True(t, ok)

	card, _ := e.SCard([]byte("dst"))
	assert.Equal(t, int32(2), card)
}

func TestSMoveToNewDestinationCreatesIt(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.SAdd([]byte("src"), bs("a"))
	assert.Nil(t, err)

	moved, err := e.SMove([]byte("src"), []byte("dst"), []byte("a"))
	assert.Nil(t, err)
	assert.True(t, moved)

	card, err := e.SCard([]byte("dst"))
	assert.Nil(t, err)
	assert.Equal(t, int32(1), card)
}

func TestSMoveMemberNotInSourceIsNotFound(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.SAdd([]byte("src"), bs("a"))
	assert.Nil(t, err)

	_, err = e.SMove([]byte("src"), []byte("dst"), []byte("missing"))
	assert.True(t, IsNotFound(err))
}

func TestSMoveMemberAlreadyInDestination(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.SAdd([]byte("src"), bs("a"))
	assert.Nil(t, err)
	_, err = e.SAdd([]byte("dst"), bs("a"))
	assert.Nil(t, err)

	moved, err := e.SMove([]byte("src"), []byte("dst"), []byte("a"))
	assert.Nil(t, err)
	assert.True(t, moved)

	// dst count should not double-count a member it already had.
	card, err := e.SCard([]byte("dst"))
	assert.Nil(t, err)
	assert.Equal(t, int32(1), card)

	// src is now empty, which the Type Guard treats as not-live.
	_, err = e.SCard([]byte("src"))
	assert.True(t, IsNotFound(err))
}
