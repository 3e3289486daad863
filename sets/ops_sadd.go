package sets

import (
	"time"

	"github.com/cqkv/lsmset/engine"
)

// SAdd adds members to key, creating or resurrecting it as needed.
// Members are deduplicated preserving first-occurrence order before
// any member record is looked up or written.
func (e *Engine) SAdd(key []byte, members [][]byte) (added int, err error) {
	unlock := e.locks.ScopeRecordLock(string(key))
	defer unlock()

	now := e.nowSeconds()
	meta, live, err := loadSetMeta(e.db, now, key)
	if err != nil {
		return 0, err
	}

	unique := dedupPreserveOrder(members)

	wb := e.db.NewWriteBatch()

	var version uint64
	var toInsert [][]byte

	if !live {
		version, _ = meta.InitialMetaValue(e.clock())
		toInsert = unique
	} else {
		version = meta.Version()
		for _, m := range unique {
			mk := EncodeMemberKey(key, version, m)
			if _, getErr := e.db.Get(engine.SetsDataCF, mk); getErr == engine.ErrNoRecord {
				toInsert = append(toInsert, m)
			} else if getErr != nil {
				return 0, getErr
			}
		}
	}

	if live {
		if !meta.CheckModifyCount(int32(len(toInsert))) {
			return 0, newOverflow()
		}
	} else if !CheckSetCount(int64(len(toInsert))) {
		return 0, newOverflow()
	}

	for _, m := range toInsert {
		if err := wb.Put(engine.SetsDataCF, EncodeMemberKey(key, version, m), memberSentinel); err != nil {
			return 0, err
		}
	}

	newCount := int32(len(toInsert))
	if live {
		newCount = meta.Count() + int32(len(toInsert))
	}
	metaBytes := EncodeSetMeta(newCount, version, metaEtime(meta, live), metaCtime(meta, live, e.clock()))
	if err := wb.Put(engine.MetaCF, key, metaBytes); err != nil {
		return 0, err
	}

	if err := wb.Commit(); err != nil {
		return 0, err
	}
	return len(toInsert), nil
}

func dedupPreserveOrder(in [][]byte) [][]byte {
	seen := make(map[string]struct{}, len(in))
	out := make([][]byte, 0, len(in))
	for _, m := range in {
		k := string(m)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, m)
	}
	return out
}

// metaEtime preserves a live set's existing expiration; a freshly
// created set (via InitialMetaValue) has none.
func metaEtime(meta MetaView, live bool) uint64 {
	if live {
		return meta.Etime()
	}
	return 0
}

// metaCtime preserves a live set's creation time; a freshly created
// set is stamped with now.
func metaCtime(meta MetaView, live bool, now time.Time) uint64 {
	if live {
		return meta.Ctime()
	}
	return uint64(now.Unix())
}
