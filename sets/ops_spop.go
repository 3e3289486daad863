package sets

import (
	"math/rand"

	"github.com/cqkv/lsmset/engine"
)

// SPop removes and returns up to n random members from key. When
// n >= count every member is removed and the meta record is deleted
// outright rather than version-bumped: both converge on correctness
// since the next SADD recreates the meta, and the compaction filter
// treats a missing-meta member record as reclaimable regardless of
// which path produced it (see Engine.RegisterCompactionFilter).
func (e *Engine) SPop(key []byte, n int32) (popped [][]byte, err error) {
	unlock := e.locks.ScopeRecordLock(string(key))
	defer unlock()

	now := e.nowSeconds()
	meta, live, err := loadSetMeta(e.db, now, key)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, newNotFound()
	}

	version := meta.Version()
	count := meta.Count()

	members, err := e.listMembers(e.db, key, version)
	if err != nil {
		return nil, err
	}

	wb := e.db.NewWriteBatch()

	if n >= count {
		for _, m := range members {
			if err := wb.Delete(engine.SetsDataCF, EncodeMemberKey(key, version, m)); err != nil {
				return nil, err
			}
		}
		if err := wb.Delete(engine.MetaCF, key); err != nil {
			return nil, err
		}
		if err := wb.Commit(); err != nil {
			return nil, err
		}
		// the generation ends here; any pop budget tracked for key no
		// longer applies once the set itself is gone.
		e.spop.Remove(string(key))
		return members, nil
	}

	indices := randomDistinctIndices(int(count), int(n))
	selected := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		selected[idx] = struct{}{}
	}

	var chosen [][]byte
	for i, m := range members {
		if _, ok := selected[i]; !ok {
			continue
		}
		chosen = append(chosen, m)
		if err := wb.Delete(engine.SetsDataCF, EncodeMemberKey(key, version, m)); err != nil {
			return nil, err
		}
	}

	newCount := count - int32(len(chosen))
	metaBytes := EncodeSetMeta(newCount, version, meta.Etime(), meta.Ctime())
	if err := wb.Put(engine.MetaCF, key, metaBytes); err != nil {
		return nil, err
	}
	if err := wb.Commit(); err != nil {
		return nil, err
	}

	prior, _ := e.spop.Lookup(string(key))
	e.spop.Insert(string(key), prior+len(chosen))

	return chosen, nil
}

// listMembers materializes every member of (key, version) in
// iteration (byte-lex member) order.
func (e *Engine) listMembers(r reader, key []byte, version uint64) ([][]byte, error) {
	rangeReader, ok := r.(rangeReader)
	if !ok {
		rangeReader = e.db
	}
	prefix := EncodeMemberSeekPrefix(key, version)
	it := rangeReader.NewIterator(engine.SetsDataCF, prefix, prefixUpperBound(prefix))
	defer it.Close()

	var out [][]byte
	for it.Seek(prefix); it.Valid() && it.StartsWith(prefix); it.Next() {
		parsed, err := ParseMemberKey(it.Key())
		if err != nil {
			return nil, err
		}
		out = append(out, append([]byte(nil), parsed.Member...))
	}
	return out, it.Err()
}

// rangeReader is the iteration surface both *engine.DB and
// *engine.Snapshot expose.
type rangeReader interface {
	NewIterator(cf engine.CF, start, stop []byte) *engine.Iterator
}

// randomDistinctIndices chooses n distinct integers uniformly from
// [0, count), seeded from wall-clock time — a non-cryptographic,
// "uniform enough" source, matching math/rand's usage elsewhere in
// this layer.
func randomDistinctIndices(count, n int) []int {
	r := rand.New(rand.NewSource(nowNanoForRand()))
	perm := r.Perm(count)
	return perm[:n]
}

// nowNanoForRand isolates the one non-deterministic time read in this
// file so tests can substitute it if SPOP's exact selection ever needs
// to be pinned; production always calls the real clock.
var nowNanoForRand = func() int64 {
	return int64(realClockUnixNano())
}
