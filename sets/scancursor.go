package sets

import lru "github.com/hashicorp/golang-lru"

const defaultScanCacheSize = 4096

// cursorKey identifies one SSCAN continuation: the data type (fixed
// to TypeSet in this package, but the key carries it so the same
// store shape generalizes to other types), the user key, the glob
// pattern, and the cursor value the client sent.
type cursorKey struct {
	dataType TypeTag
	key      string
	pattern  string
	cursor   uint64
}

// scanCursorStore is the Scan Cursor Store: it persists the last
// member seen for a given (type, key, pattern, cursor), so the next
// SSCAN call with cursor == cursor+count resumes exactly where the
// last one left off instead of restarting the prefix seek. A missing
// entry is not an error — it just means "start from the beginning".
type scanCursorStore struct {
	cache *lru.Cache
}

func newScanCursorStore(size int) (*scanCursorStore, error) {
	if size <= 0 {
		size = defaultScanCacheSize
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &scanCursorStore{cache: c}, nil
}

func (s *scanCursorStore) Insert(k cursorKey, nextMember []byte) {
	cp := make([]byte, len(nextMember))
	copy(cp, nextMember)
	s.cache.Add(k, cp)
}

func (s *scanCursorStore) Lookup(k cursorKey) ([]byte, bool) {
	v, ok := s.cache.Get(k)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}
