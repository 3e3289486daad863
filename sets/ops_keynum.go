package sets

import "github.com/cqkv/lsmset/engine"

// KeyInfo summarizes a SCANSETSKEYNUM() pass over every set-typed key
// in MetaCF.
type KeyInfo struct {
	Keys                int64
	Expired             int64
	PermanentKeys       int64
	TransientKeys       int64
	AvgTransientTTLSecs float64
}

// ScanSetsKeyNum iterates MetaCF, counts every record whose tag is
// SET, and partitions it into expired/permanent/transient, tracking
// the average remaining TTL across live transient keys.
func (e *Engine) ScanSetsKeyNum() (KeyInfo, error) {
	now := e.nowSeconds()

	it := e.db.NewIterator(engine.MetaCF, nil, nil)
	defer it.Close()

	var info KeyInfo
	var ttlSum uint64

	for it.Seek(nil); it.Valid(); it.Next() {
		value, verr := it.Value()
		if verr != nil {
			return KeyInfo{}, verr
		}
		if len(value) == 0 || value[0] != TypeSet {
			continue
		}

		meta := ParseSetMeta(value)
		info.Keys++

		if meta.IsStale(now) {
			info.Expired++
			continue
		}
		if meta.IsPermanent() {
			info.PermanentKeys++
			continue
		}
		info.TransientKeys++
		ttlSum += meta.Etime() - now
	}
	if err := it.Err(); err != nil {
		return KeyInfo{}, err
	}

	if info.TransientKeys > 0 {
		info.AvgTransientTTLSecs = float64(ttlSum) / float64(info.TransientKeys)
	}
	return info, nil
}
