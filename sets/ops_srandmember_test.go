package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSRandMemberPositiveCountIsDistinctSubset(t *testing.T) {
	e := newTestEngine(t)
	seedSet(t, e, "k", "a", "b", "c", "d", "e")

	got, err := e.SRandMember([]byte("k"), 3)
	assert.Nil(t, err)
	assert.Len(t, got, 3)

	seen := map[string]bool{}
	for _, m := range got {
		assert.False(t, seen[string(m)], "duplicate member returned for positive count")
		seen[string(m)] = true
	}
}

func TestSRandMemberPositiveCountAboveCardinalityClampsToCardinality(t *testing.T) {
	e := newTestEngine(t)
	seedSet(t, e, "k", "a", "b")

	got, err := e.SRandMember([]byte("k"), 10)
	assert.Nil(t, err)
	assert.Len(t, got, 2)
}

func TestSRandMemberNegativeCountAllowsRepeats(t *testing.T) {
	e := newTestEngine(t)
	seedSet(t, e, "k", "a")

	got, err := e.SRandMember([]byte("k"), -5)
	assert.Nil(t, err)
	assert.Len(t, got, 5)
	for _, m := range got {
		assert.Equal(t, "a", string(m))
	}
}

func TestSRandMemberZeroCountReturnsEmpty(t *testing.T) {
	e := newTestEngine(t)
	seedSet(t, e, "k", "a", "b")

	got, err := e.SRandMember([]byte("k"), 0)
	assert.Nil(t, err)
	assert.Len(t, got, 0)
}

func TestSRandMemberOnMissingKeyIsNotFound(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.SRandMember([]byte("nope"), 1)
	assert.NotNil(t, err)
	se, ok := err.(*StatusError)
	assert.True(t, ok)
	assert.Equal(t, KindNotFound, se.Kind)
}
