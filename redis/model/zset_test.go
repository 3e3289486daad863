package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZSetMarshalKeyOrdering(t *testing.T) {
	zs := NewZSet(1)

	_, lowScore := zs.MarshalZSetKey([]byte("z"), []byte("a"), 1.0)
	_, highScore := zs.MarshalZSetKey([]byte("z"), []byte("b"), 5.0)

	// byte-wise comparison of the score component must match numeric
	// order, since scoreKey is what a range scan sorts by.
	assert.True(t, string(lowScore) < string(highScore))

	_, negScore := zs.MarshalZSetKey([]byte("z"), []byte("c"), -1.0)
	assert.True(t, string(negScore) < string(lowScore))
}

func TestZSetMarshalKeyDataKey(t *testing.T) {
	zs := NewZSet(2)
	dataKey, _ := zs.MarshalZSetKey([]byte("z"), []byte("member"), 42)

	assert.Equal(t, ZSetDataKey, dataKey[len("z")+8])
	assert.Equal(t, []byte("member"), dataKey[len("z")+8+1:])
}
