package sets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cqkv/lsmset/engine"
)

func putSetMeta(t *testing.T, e *Engine, key string, count int32, version uint64, etime uint64) {
	t.Helper()
	meta := EncodeSetMeta(count, version, etime, uint64(e.clock().Unix()))
	assert.Nil(t, e.db.Put(engine.MetaCF, []byte(key), meta))
}

func TestScanSetsKeyNumPartitionsByTTL(t *testing.T) {
	e := newTestEngine(t)
	fixedNow := time.Unix(1_700_000_000, 0)
	withFixedClock(e, fixedNow)
	now := uint64(fixedNow.Unix())

	putSetMeta(t, e, "permanent", 1, 1, 0)
	putSetMeta(t, e, "transient1", 1, 2, now+100)
	putSetMeta(t, e, "transient2", 1, 3, now+200)

	info, err := e.ScanSetsKeyNum()
	assert.Nil(t, err)
	assert.Equal(t, int64(3), info.Keys)
	assert.Equal(t, int64(0), info.Expired)
	assert.Equal(t, int64(1), info.PermanentKeys)
	assert.Equal(t, int64(2), info.TransientKeys)
	assert.Equal(t, float64(150), info.AvgTransientTTLSecs)
}

func TestScanSetsKeyNumCountsExpiredSeparately(t *testing.T) {
	e := newTestEngine(t)
	fixedNow := time.Unix(1_700_000_000, 0)
	withFixedClock(e, fixedNow)
	now := uint64(fixedNow.Unix())

	putSetMeta(t, e, "soon-gone", 1, 1, now-5)

	info, err := e.ScanSetsKeyNum()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), info.Keys)
	assert.Equal(t, int64(1), info.Expired)
	assert.Equal(t, int64(0), info.PermanentKeys)
	assert.Equal(t, int64(0), info.TransientKeys)
}

func TestScanSetsKeyNumIgnoresOtherTypeTags(t *testing.T) {
	e := newTestEngine(t)
	raw := make([]byte, MetaValueSize)
	raw[0] = TypeHash
	assert.Nil(t, e.db.Put(engine.MetaCF, []byte("h"), raw))

	_, err := e.SAdd([]byte("s"), bs("a"))
	assert.Nil(t, err)

	info, err := e.ScanSetsKeyNum()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), info.Keys)
}

func TestScanSetsKeyNumOnEmptyDBIsZero(t *testing.T) {
	e := newTestEngine(t)
	info, err := e.ScanSetsKeyNum()
	assert.Nil(t, err)
	assert.Equal(t, int64(0), info.Keys)
	assert.Equal(t, float64(0), info.AvgTransientTTLSecs)
}
