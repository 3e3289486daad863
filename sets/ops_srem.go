package sets

import "github.com/cqkv/lsmset/engine"

// SRem removes members from key, returning how many were actually
// present.
func (e *Engine) SRem(key []byte, members [][]byte) (removed int, err error) {
	unlock := e.locks.ScopeRecordLock(string(key))
	defer unlock()

	now := e.nowSeconds()
	meta, live, err := loadSetMeta(e.db, now, key)
	if err != nil {
		return 0, err
	}
	if !live {
		return 0, newNotFound()
	}

	version := meta.Version()
	unique := dedupPreserveOrder(members)

	wb := e.db.NewWriteBatch()

	var toDelete [][]byte
	for _, m := range unique {
		mk := EncodeMemberKey(key, version, m)
		if _, getErr := e.db.Get(engine.SetsDataCF, mk); getErr == nil {
			toDelete = append(toDelete, m)
		} else if getErr != engine.ErrNoRecord {
			return 0, getErr
		}
	}

	if len(toDelete) == 0 {
		return 0, nil
	}
	if !meta.CheckModifyCount(-int32(len(toDelete))) {
		return 0, newOverflow()
	}

	for _, m := range toDelete {
		if err := wb.Delete(engine.SetsDataCF, EncodeMemberKey(key, version, m)); err != nil {
			return 0, err
		}
	}

	newCount := meta.Count() - int32(len(toDelete))
	metaBytes := EncodeSetMeta(newCount, version, meta.Etime(), meta.Ctime())
	if err := wb.Put(engine.MetaCF, key, metaBytes); err != nil {
		return 0, err
	}

	if err := wb.Commit(); err != nil {
		return 0, err
	}
	return len(toDelete), nil
}
