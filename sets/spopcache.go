package sets

import lru "github.com/hashicorp/golang-lru"

const defaultSpopCacheSize = 1024

// spopCache is the SPOP Counter: a bounded LRU mapping user key to how
// many elements have been popped from it across the set's current
// generation. SPop updates it on every partial pop and clears the
// entry once a pop drains the set entirely. Higher-level protocol
// wrappers can consult it to cap total pops per logical key within a
// replication round; that policy is out of scope here.
type spopCache struct {
	cache *lru.Cache
}

func newSpopCache(size int) (*spopCache, error) {
	if size <= 0 {
		size = defaultSpopCacheSize
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &spopCache{cache: c}, nil
}

func (s *spopCache) Insert(key string, count int) {
	s.cache.Add(key, count)
}

func (s *spopCache) Lookup(key string) (count int, ok bool) {
	v, ok := s.cache.Get(key)
	if !ok {
		return 0, false
	}
	return v.(int), true
}

func (s *spopCache) Remove(key string) {
	s.cache.Remove(key)
}
