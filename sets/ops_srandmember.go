package sets

import (
	"math/rand"

	"github.com/cqkv/lsmset/engine"
)

// SRandMember returns count random members without removing them.
// Read-only: it takes no lock at all, since a read lock would suffice
// and this package skips locking entirely for commands that never
// mutate. It still opens a snapshot before its first read so the meta
// count and the member listing observe the same instant.
func (e *Engine) SRandMember(key []byte, count int) ([][]byte, error) {
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

	members, err := e.listMembers(snap, key, meta.Version())
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	r := rand.New(rand.NewSource(nowNanoForRand()))

	if count >= 0 {
		n := count
		if n > len(members) {
			n = len(members)
		}
		idx := r.Perm(len(members))[:n]
		out := make([][]byte, n)
		for i, x := range idx {
			out[i] = members[x]
		}
		return out, nil
	}

	n := -count
	out := make([][]byte, n)
	for i := 0; i < n; i++ {
		out[i] = members[r.Intn(len(members))]
	}
	return out, nil
}
