package engine

import (
	"bytes"

	"github.com/cqkv/lsmset/engine/keydir"
	"github.com/cqkv/lsmset/engine/model"
)

// Iterator walks a column family's keys in ascending byte order,
// bounded to [start, stop). A nil stop means "to the end of the CF".
// Exposes the usual Seek/Valid/Next/Key/Value/starts_with surface.
type Iterator struct {
	db    *DB
	idx   keydir.Index
	start []byte
	stop  []byte

	keys []([]byte)
	vals []*model.RecordPos
	pos  int
	err  error
}

// NewIterator seeks to the first key >= start within the live index.
func (db *DB) NewIterator(cf CF, start, stop []byte) *Iterator {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return newIterator(db, db.indexOf(cf), start, stop)
}

func newIterator(db *DB, idx keydir.Index, start, stop []byte) *Iterator {
	it := &Iterator{db: db, idx: idx, start: start, stop: stop}
	idx.Range(start, stop, func(key []byte, pos *model.RecordPos) bool {
		cp := make([]byte, len(key))
		copy(cp, key)
		it.keys = append(it.keys, cp)
		it.vals = append(it.vals, pos)
		return true
	})
	return it
}

// Seek repositions the iterator at the first buffered key >= prefix.
func (it *Iterator) Seek(prefix []byte) {
	lo, hi := 0, len(it.keys)
	for lo < hi {
		mid := (lo + hi) / 2
		if bytes.Compare(it.keys[mid], prefix) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	it.pos = lo
}

func (it *Iterator) Valid() bool { return it.err == nil && it.pos < len(it.keys) }

func (it *Iterator) Next() { it.pos++ }

func (it *Iterator) Key() []byte { return it.keys[it.pos] }

// Value reads the record's value from the log. A miss here (record
// deleted or overwritten concurrently with this buffered listing)
// surfaces as an error from Err().
func (it *Iterator) Value() ([]byte, error) {
	v, err := it.db.readValueAt(it.vals[it.pos])
	if err != nil {
		it.err = err
	}
	return v, err
}

func (it *Iterator) Err() error { return it.err }

func (it *Iterator) Close() {}

// StartsWith reports whether the current key has the given prefix.
func (it *Iterator) StartsWith(prefix []byte) bool {
	return it.Valid() && bytes.HasPrefix(it.Key(), prefix)
}
