package sets

import "github.com/cqkv/lsmset/engine"

// SDiff returns members(keys[0]) minus the union of members(keys[1:]).
// All reads use a single snapshot.
func (e *Engine) SDiff(keys [][]byte) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, newCorruption("sdiff invalid parameter, no keys")
	}
	snap := e.db.NewSnapshot(engine.MetaCF, engine.SetsDataCF)
	defer snap.Release()
	return e.diffUnder(snap, keys)
}

// SDiffStore implements the STORE variant: writes the result as a new
// set at dest and returns its size.
func (e *Engine) SDiffStore(dest []byte, keys [][]byte) (int32, error) {
	return e.algebraStore(dest, keys, e.diffUnder)
}

func (e *Engine) diffUnder(snap *engine.Snapshot, keys [][]byte) ([][]byte, error) {
	now := e.nowSeconds()

	first, ok, err := e.liveMemberSet(snap, keys[0], now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	rest := make([]memberOrderedSet, 0, len(keys)-1)
	for _, k := range keys[1:] {
		set, ok, err := e.liveMemberSet(snap, k, now)
		if err != nil {
			return nil, err
		}
		if !ok {
			// stale/missing sets in keys[1:] contribute the empty set.
			continue
		}
		rest = append(rest, set)
	}

	var out [][]byte
	for _, m := range first.order {
		excluded := false
		for _, set := range rest {
			if set.has(m) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, m)
		}
	}
	return out, nil
}

// SInter returns the intersection of members across keys.
func (e *Engine) SInter(keys [][]byte) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, newCorruption("sinter invalid parameter, no keys")
	}
	snap := e.db.NewSnapshot(engine.MetaCF, engine.SetsDataCF)
	defer snap.Release()
	return e.interUnder(snap, keys)
}

// SInterStore implements the STORE variant.
func (e *Engine) SInterStore(dest []byte, keys [][]byte) (int32, error) {
	return e.algebraStore(dest, keys, e.interUnder)
}

func (e *Engine) interUnder(snap *engine.Snapshot, keys [][]byte) ([][]byte, error) {
	now := e.nowSeconds()

	first, ok, err := e.liveMemberSet(snap, keys[0], now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	others := make([]memberOrderedSet, 0, len(keys)-1)
	for _, k := range keys[1:] {
		set, ok, err := e.liveMemberSet(snap, k, now)
		if err != nil {
			return nil, err
		}
		if !ok {
			// any missing/stale input forces an empty intersection.
			return nil, nil
		}
		others = append(others, set)
	}

	var out [][]byte
	for _, m := range first.order {
		inAll := true
		for _, set := range others {
			if !set.has(m) {
				inAll = false
				break
			}
		}
		if inAll {
			out = append(out, m)
		}
	}
	return out, nil
}

// SUnion returns the union of members across keys.
func (e *Engine) SUnion(keys [][]byte) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, newCorruption("sunion invalid parameter, no keys")
	}
	snap := e.db.NewSnapshot(engine.MetaCF, engine.SetsDataCF)
	defer snap.Release()
	return e.unionUnder(snap, keys)
}

// SUnionStore implements the STORE variant.
func (e *Engine) SUnionStore(dest []byte, keys [][]byte) (int32, error) {
	return e.algebraStore(dest, keys, e.unionUnder)
}

func (e *Engine) unionUnder(snap *engine.Snapshot, keys [][]byte) ([][]byte, error) {
	now := e.nowSeconds()

	seen := make(map[string]struct{})
	var out [][]byte
	for _, k := range keys {
		set, ok, err := e.liveMemberSet(snap, k, now)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		for _, m := range set.order {
			s := string(m)
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, m)
		}
	}
	return out, nil
}

// algebraStore shares the write path across SDIFFSTORE/SINTERSTORE/
// SUNIONSTORE: compute under a snapshot, then acquire dest's write
// lock and write the result as a fresh set.
func (e *Engine) algebraStore(dest []byte, keys [][]byte, compute func(*engine.Snapshot, [][]byte) ([][]byte, error)) (int32, error) {
	if len(keys) == 0 {
		return 0, newCorruption("algebra store invalid parameter, no keys")
	}

	snap := e.db.NewSnapshot(engine.MetaCF, engine.SetsDataCF)
	result, err := compute(snap, keys)
	snap.Release()
	if err != nil {
		return 0, err
	}

	unlock := e.locks.ScopeRecordLock(string(dest))
	defer unlock()

	now := e.nowSeconds()
	dstMeta, _, err := loadSetMeta(e.db, now, dest)
	if err != nil {
		return 0, err
	}

	if !CheckSetCount(int64(len(result))) {
		return 0, newOverflow()
	}

	version, _ := dstMeta.InitialMetaValue(e.clock())

	wb := e.db.NewWriteBatch()
	for _, m := range result {
		if err := wb.Put(engine.SetsDataCF, EncodeMemberKey(dest, version, m), memberSentinel); err != nil {
			return 0, err
		}
	}
	metaBytes := EncodeSetMeta(int32(len(result)), version, 0, uint64(e.clock().Unix()))
	if err := wb.Put(engine.MetaCF, dest, metaBytes); err != nil {
		return 0, err
	}
	if err := wb.Commit(); err != nil {
		return 0, err
	}
	return int32(len(result)), nil
}

// memberOrderedSet pairs a lookup set with the original iteration
// order, so set-algebra results preserve keys[0]'s member-lex order.
type memberOrderedSet struct {
	lookup map[string]struct{}
	order  [][]byte
}

func (m memberOrderedSet) has(member []byte) bool {
	_, ok := m.lookup[string(member)]
	return ok
}

// liveMemberSet reads a key's members under snap, returning ok=false
// (with no error) for a missing or stale key, matching the "stale or
// missing sets contribute the empty set" rule shared by
// SDIFF/SINTER/SUNION.
func (e *Engine) liveMemberSet(snap *engine.Snapshot, key []byte, now uint64) (memberOrderedSet, bool, error) {
	meta, live, err := loadSetMeta(snap, now, key)
	if err != nil {
		return memberOrderedSet{}, false, err
	}
	if !live {
		return memberOrderedSet{}, false, nil
	}

	members, err := e.listMembers(snap, key, meta.Version())
	if err != nil {
		return memberOrderedSet{}, false, err
	}

	set := memberOrderedSet{lookup: make(map[string]struct{}, len(members)), order: members}
	for _, m := range members {
		set.lookup[string(m)] = struct{}{}
	}
	return set, true, nil
}
