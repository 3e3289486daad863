package sets

import (
	"testing"
	"time"

	"github.com/cqkv/lsmset/engine"
	"github.com/cqkv/lsmset/lockmgr"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	db, err := engine.Open(t.TempDir(), engine.WithColumnFamilies(engine.MetaCF, engine.SetsDataCF))
	if err != nil {
		t.Fatalf("open engine: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	e, err := NewEngine(db, lockmgr.New(16), 64, 64)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

// withFixedClock pins e.clock() to a fixed instant for tests that need
// deterministic version numbers or TTL math.
func withFixedClock(e *Engine, now time.Time) {
	e.now = func() time.Time { return now }
}

func bs(strs ...string) [][]byte {
	out := make([][]byte, len(strs))
	for i, s := range strs {
		out[i] = []byte(s)
	}
	return out
}

func memberStrings(members [][]byte) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = string(m)
	}
	return out
}
