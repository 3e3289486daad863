package engine

import (
	"encoding/binary"
	"fmt"
)

// CF names a column family: an independently-indexed logical subspace
// of the engine sharing the same physical log segments. The Set Layer
// uses exactly two; more can be registered at Open via
// WithColumnFamilies for other data-type layers built on this engine.
type CF string

const (
	// MetaCF holds one record per user key across all data types.
	MetaCF CF = "meta"
	// SetsDataCF holds one record per (user key, version, member).
	SetsDataCF CF = "sets_data"
)

// defaultColumnFamilies is the tag-assignment order used when the
// caller doesn't override it with WithColumnFamilies. The order is
// part of the on-disk contract: a store must always be reopened with
// the same CF list in the same order.
var defaultColumnFamilies = []CF{MetaCF, SetsDataCF}

func cfTags(cfs []CF) (tagOf map[CF]byte, cfOf map[byte]CF, err error) {
	if len(cfs) == 0 || len(cfs) > 255 {
		return nil, nil, fmt.Errorf("engine: invalid column family count %d", len(cfs))
	}
	tagOf = make(map[CF]byte, len(cfs))
	cfOf = make(map[byte]CF, len(cfs))
	for i, cf := range cfs {
		tag := byte(i)
		if _, dup := tagOf[cf]; dup {
			return nil, nil, fmt.Errorf("engine: duplicate column family %q", cf)
		}
		tagOf[cf] = tag
		cfOf[tag] = cf
	}
	return tagOf, cfOf, nil
}

// physicalKey prepends the column family's tag byte to a logical key
// so a single shared log can be replayed into per-CF indexes.
func physicalKey(tag byte, key []byte) []byte {
	return physicalKeySeq(noTransactionSeq, tag, key)
}

// txFinishTag marks a batch's finish record; it is never a real
// column family so loadIndexFromDataFiles can recognize and skip it.
const txFinishTag byte = 0xFF

const noTransactionSeq uint64 = 0

// physicalKeySeq prepends a varint transaction sequence number and the
// column family tag to a logical key: seq || tag || key. seq lets
// WriteBatch.Commit tag every record it writes so a crash mid-batch
// never leaves a partial write visible (see loadIndexFromDataFiles).
func physicalKeySeq(seq uint64, tag byte, key []byte) []byte {
	buf := make([]byte, binary.MaxVarintLen64+1+len(key))
	n := binary.PutUvarint(buf, seq)
	buf[n] = tag
	copy(buf[n+1:], key)
	return buf[:n+1+len(key)]
}

func splitPhysicalKeySeq(pk []byte) (seq uint64, tag byte, key []byte) {
	seq, n := binary.Uvarint(pk)
	return seq, pk[n], pk[n+1:]
}

func splitPhysicalKey(pk []byte) (tag byte, key []byte) {
	_, tag, key = splitPhysicalKeySeq(pk)
	return tag, key
}
