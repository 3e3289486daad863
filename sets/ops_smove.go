package sets

import (
	"sort"

	"github.com/cqkv/lsmset/engine"
)

// SMove moves member from source to destination atomically. Locks
// source and destination in a fixed lexicographic order via
// MultiScopeRecordLock so two SMOVEs racing over the same key pair can
// never deadlock.
func (e *Engine) SMove(source, destination, member []byte) (moved bool, err error) {
	unlock := e.locks.MultiScopeRecordLock(sortedKeyPair(source, destination))
	defer unlock()

	now := e.nowSeconds()

	srcMeta, srcLive, err := loadSetMeta(e.db, now, source)
	if err != nil {
		return false, err
	}
	if !srcLive {
		return false, newNotFound()
	}

	srcVersion := srcMeta.Version()
	srcMK := EncodeMemberKey(source, srcVersion, member)
	if _, getErr := e.db.Get(engine.SetsDataCF, srcMK); getErr == engine.ErrNoRecord {
		return false, newNotFound()
	} else if getErr != nil {
		return false, getErr
	}

	// moving a member onto its own set changes nothing.
	if string(source) == string(destination) {
		return true, nil
	}

	dstMeta, dstLive, err := loadSetMeta(e.db, now, destination)
	if err != nil {
		return false, err
	}

	wb := e.db.NewWriteBatch()

	if !srcMeta.CheckModifyCount(-1) {
		return false, newOverflow()
	}
	if err := wb.Delete(engine.SetsDataCF, srcMK); err != nil {
		return false, err
	}
	newSrcCount := srcMeta.Count() - 1
	if err := wb.Put(engine.MetaCF, source, EncodeSetMeta(newSrcCount, srcVersion, srcMeta.Etime(), srcMeta.Ctime())); err != nil {
		return false, err
	}

	var dstVersion uint64
	var dstAlreadyHasMember bool
	if dstLive {
		dstVersion = dstMeta.Version()
		if _, getErr := e.db.Get(engine.SetsDataCF, EncodeMemberKey(destination, dstVersion, member)); getErr == nil {
			dstAlreadyHasMember = true
		} else if getErr != engine.ErrNoRecord {
			return false, getErr
		}
	} else {
		dstVersion, _ = dstMeta.InitialMetaValue(e.clock())
	}

	if !dstAlreadyHasMember {
		if dstLive {
			if !dstMeta.CheckModifyCount(1) {
				return false, newOverflow()
			}
		} else if !CheckSetCount(1) {
			return false, newOverflow()
		}
		if err := wb.Put(engine.SetsDataCF, EncodeMemberKey(destination, dstVersion, member), memberSentinel); err != nil {
			return false, err
		}
	}

	newDstCount := int32(1)
	if dstLive {
		newDstCount = dstMeta.Count()
		if !dstAlreadyHasMember {
			newDstCount++
		}
	}
	dstBytes := EncodeSetMeta(newDstCount, dstVersion, metaEtime(dstMeta, dstLive), metaCtime(dstMeta, dstLive, e.clock()))
	if err := wb.Put(engine.MetaCF, destination, dstBytes); err != nil {
		return false, err
	}

	if err := wb.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func sortedKeyPair(a, b []byte) []string {
	pair := []string{string(a), string(b)}
	sort.Strings(pair)
	return pair
}
