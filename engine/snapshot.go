package engine

import "github.com/cqkv/lsmset/engine/keydir"

// Snapshot is a point-in-time, read-only view over one or more column
// families, acquired via NewSnapshot. Every multi-key read operation
// in the Set Layer (SMEMBERS, SDIFF/SINTER/SUNION, SSCAN, ...) opens
// one before its first read so that all subsequent reads and iterator
// creations observe the same instant.
//
// Implementation: engine/keydir.BTree.Clone() is a copy-on-write clone
// of the live index, O(1) to take; it never blocks concurrent writers
// and concurrent writers never mutate the clone.
type Snapshot struct {
	db      *DB
	indexes map[CF]keydir.Index
}

// NewSnapshot clones the requested column families (all of them if
// none given) as of now. Release has no resources to free beyond
// letting the clones become garbage — kept as a method so call sites
// read like a familiar scoped-resource idiom (defer snap.Release()).
func (db *DB) NewSnapshot(cfs ...CF) *Snapshot {
	if len(cfs) == 0 {
		for cf := range db.indexes {
			cfs = append(cfs, cf)
		}
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	clones := make(map[CF]keydir.Index, len(cfs))
	for _, cf := range cfs {
		clones[cf] = db.indexOf(cf).Clone()
	}
	return &Snapshot{db: db, indexes: clones}
}

func (s *Snapshot) Release() {}

func (s *Snapshot) Get(cf CF, key []byte) ([]byte, error) {
	idx, ok := s.indexes[cf]
	if !ok {
		return nil, ErrUnknownCF
	}
	return s.db.get(cf, idx, key)
}

func (s *Snapshot) NewIterator(cf CF, start, stop []byte) *Iterator {
	idx, ok := s.indexes[cf]
	if !ok {
		return &Iterator{db: s.db, err: ErrUnknownCF}
	}
	return newIterator(s.db, idx, start, stop)
}
