package keydir

import "github.com/cqkv/lsmset/engine/model"

// Index is the in-memory ordered map from a column family's logical
// key to its on-disk position. Any ordered map could implement this;
// BTree (backed by google/btree) is the only implementation this
// module ships.
type Index interface {
	Put(key []byte, pos *model.RecordPos) bool
	Get(key []byte) *model.RecordPos
	Delete(key []byte) bool
	Len() int

	// Range iterates [start, stop) in key order. stop == nil means
	// "to the end". The callback returning false stops iteration early.
	Range(start, stop []byte, fn func(key []byte, pos *model.RecordPos) bool)

	// Clone returns a point-in-time, copy-on-write snapshot of the
	// index: subsequent writes to the original do not affect it.
	Clone() Index
}
