package sets

import "github.com/cqkv/lsmset/engine"

// SCard returns the number of members in key.
func (e *Engine) SCard(key []byte) (int32, error) {
	now := e.nowSeconds()
	meta, live, err := loadSetMeta(e.db, now, key)
	if err != nil {
		return 0, err
	}
	if !live {
		return 0, newNotFound()
	}
	return meta.Count(), nil
}

// SIsMember reports whether member belongs to key.
func (e *Engine) SIsMember(key, member []byte) (bool, error) {
	now := e.nowSeconds()
	meta, live, err := loadSetMeta(e.db, now, key)
	if err != nil {
		return false, err
	}
	if !live {
		return false, newNotFound()
	}

	mk := EncodeMemberKey(key, meta.Version(), member)
	_, err = e.db.Get(engine.SetsDataCF, mk)
	if err == engine.ErrNoRecord {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SMember pairs a member with its remaining TTL, as returned by
// SMembersWithTTL.
type SMember struct {
	Member  []byte
	TTLSecs int64 // -1 permanent, -2 already expired but meta not yet stale, else seconds remaining
}

// SMembers returns every member of key in byte-lex order. Reads under
// a scoped snapshot so concurrent mutation of key can't be observed
// mid-iteration.
func (e *Engine) SMembers(key []byte) ([][]byte, error) {
	withTTL, err := e.smembers(key)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(withTTL))
	for i, m := range withTTL {
		out[i] = m.Member
	}
	return out, nil
}

// SMembersWithTTL is SMembers' TTL-annotated variant.
func (e *Engine) SMembersWithTTL(key []byte) ([]SMember, error) {
	return e.smembers(key)
}

func (e *Engine) smembers(key []byte) ([]SMember, error) {
	snap := e.db.NewSnapshot(engine.MetaCF, engine.SetsDataCF)
	defer snap.Release()

	now := e.nowSeconds()
	meta, live, err := loadSetMeta(snap, now, key)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, newNotFound()
	}

	ttl := ttlSeconds(meta, now)

	prefix := EncodeMemberSeekPrefix(key, meta.Version())
	it := snap.NewIterator(engine.SetsDataCF, prefix, prefixUpperBound(prefix))
	defer it.Close()

	var out []SMember
	for it.Seek(prefix); it.Valid() && it.StartsWith(prefix); it.Next() {
		parsed, perr := ParseMemberKey(it.Key())
		if perr != nil {
			return nil, perr
		}
		out = append(out, SMember{Member: append([]byte(nil), parsed.Member...), TTLSecs: ttl})
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ttlSeconds computes the remaining-TTL value: -1 permanent, -2
// expired-but-not-yet-observed-stale, else the number of seconds left.
func ttlSeconds(meta MetaView, now uint64) int64 {
	if meta.IsPermanent() {
		return -1
	}
	e := meta.Etime()
	if e <= now {
		return -2
	}
	return int64(e - now)
}
