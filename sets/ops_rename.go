package sets

import "github.com/cqkv/lsmset/engine"

// SetsRename moves key's meta record to newKey, deleting key. Member
// records at the new location are deliberately not copied: a reader
// of newKey will see count > 0 but an empty membership until the next
// write through newKey. This is a known, documented limitation (see
// DESIGN.md), not a bug — copying every member record under lock would
// make the command's cost proportional to set size instead of O(1).
func (e *Engine) SetsRename(key []byte, newInst *Engine, newKey []byte) error {
	return e.rename(key, newInst, newKey, false)
}

// SetsRenameNX is the RENAMENX variant: fails if newKey already holds
// a live set.
func (e *Engine) SetsRenameNX(key []byte, newInst *Engine, newKey []byte) error {
	return e.rename(key, newInst, newKey, true)
}

func (e *Engine) rename(key []byte, newInst *Engine, newKey []byte, failIfExists bool) error {
	sameInstance := newInst == e || newInst.db == e.db
	var unlock func()
	if sameInstance {
		unlock = e.locks.MultiScopeRecordLock(sortedKeyPair(key, newKey))
	} else {
		unlockSrc := e.locks.ScopeRecordLock(string(key))
		unlockDst := newInst.locks.ScopeRecordLock(string(newKey))
		unlock = func() { unlockDst(); unlockSrc() }
	}
	defer unlock()

	now := e.nowSeconds()
	srcMeta, srcLive, err := loadSetMeta(e.db, now, key)
	if err != nil {
		return err
	}
	if !srcLive {
		return newNotFound()
	}

	if failIfExists {
		_, dstLive, err := loadSetMeta(newInst.db, newInst.nowSeconds(), newKey)
		if err != nil {
			return err
		}
		if dstLive {
			return newCorruption("newkey already exists")
		}
	}

	srcBytes := srcMeta.Bytes()

	if sameInstance {
		wb := e.db.NewWriteBatch()
		if err := wb.Put(engine.MetaCF, newKey, srcBytes); err != nil {
			return err
		}
		_, deletedBytes := srcMeta.InitialMetaValue(e.clock())
		if err := wb.Put(engine.MetaCF, key, deletedBytes); err != nil {
			return err
		}
		return wb.Commit()
	}

	dstWB := newInst.db.NewWriteBatch()
	if err := dstWB.Put(engine.MetaCF, newKey, srcBytes); err != nil {
		return err
	}
	if err := dstWB.Commit(); err != nil {
		return err
	}

	srcWB := e.db.NewWriteBatch()
	_, deletedBytes := srcMeta.InitialMetaValue(e.clock())
	if err := srcWB.Put(engine.MetaCF, key, deletedBytes); err != nil {
		return err
	}
	return srcWB.Commit()
}
