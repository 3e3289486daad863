package sets

import (
	"time"

	"github.com/cqkv/lsmset/engine"
	"github.com/cqkv/lsmset/lockmgr"
)

// Engine is the Set Operations Engine: it orchestrates meta/data
// reads, locking, snapshotting, and batched writes for every set
// command this package exposes. One Engine wraps one *engine.DB and is
// safe for concurrent use by many goroutines.
type Engine struct {
	db    *engine.DB
	locks lockmgr.Manager
	spop  *spopCache
	scans *scanCursorStore

	// now is swappable in tests that need deterministic TTL behavior;
	// production code leaves it nil and gets time.Now.
	now func() time.Time
}

// NewEngine wires an Engine around db and locks. spopCacheSize and
// scanCacheSize configure the SPOP counter and scan cursor caches (see
// spopcache.go, scancursor.go); both fall back to sane defaults when
// <= 0.
func NewEngine(db *engine.DB, locks lockmgr.Manager, spopCacheSize, scanCacheSize int) (*Engine, error) {
	spop, err := newSpopCache(spopCacheSize)
	if err != nil {
		return nil, err
	}
	scans, err := newScanCursorStore(scanCacheSize)
	if err != nil {
		return nil, err
	}
	return &Engine{db: db, locks: locks, spop: spop, scans: scans}, nil
}

func (e *Engine) clock() time.Time {
	if e.now != nil {
		return e.now()
	}
	return time.Now()
}

func (e *Engine) nowSeconds() uint64 { return uint64(e.clock().Unix()) }

func realClockUnixNano() int64 { return time.Now().UnixNano() }

// RegisterCompactionFilter installs the Set Layer's reclaim filter on
// the underlying engine: it drops SetsDataCF records whose embedded
// version is behind the key's current live version, and drops stale
// MetaCF set records whose count is zero.
func (e *Engine) RegisterCompactionFilter() {
	e.db.RegisterCompactionFilter(func(cf engine.CF, key, value []byte) bool {
		switch cf {
		case engine.SetsDataCF:
			parsed, err := ParseMemberKey(key)
			if err != nil {
				return false
			}
			raw, err := e.db.Get(engine.MetaCF, parsed.UserKey)
			if err != nil {
				// meta gone entirely: the member record is orphaned.
				return err == engine.ErrNoRecord
			}
			if len(raw) == 0 || raw[0] != TypeSet {
				return false
			}
			meta := ParseSetMeta(raw)
			return parsed.Version != meta.Version()
		case engine.MetaCF:
			if len(value) == 0 || value[0] != TypeSet {
				return false
			}
			meta := ParseSetMeta(value)
			return meta.IsStale(e.nowSeconds()) && meta.Count() == 0
		default:
			return false
		}
	})
}
