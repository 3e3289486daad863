package keydir

import (
	"bytes"
	"sync"

	"github.com/google/btree"

	"github.com/cqkv/lsmset/engine/model"
)

const defaultDegree = 32

var _ Index = (*BTree)(nil)

// item implements btree.Item over a raw key/position pair.
type item struct {
	key []byte
	pos *model.RecordPos
}

func (i *item) Less(than btree.Item) bool {
	return bytes.Compare(i.key, than.(*item).key) < 0
}

// BTree is the default Index: an in-memory, ordered, copy-on-write
// tree. Copy-on-write is what lets engine.Snapshot hand out a frozen
// view cheaply — Clone() is O(1) and subsequent mutations on either
// tree only copy the nodes they touch.
type BTree struct {
	tree *btree.BTree
	lock *sync.RWMutex
}

func NewBTree(degree int) *BTree {
	if degree <= 0 {
		degree = defaultDegree
	}
	return &BTree{
		tree: btree.New(degree),
		lock: &sync.RWMutex{},
	}
}

func (bt *BTree) Put(key []byte, pos *model.RecordPos) bool {
	bt.lock.Lock()
	defer bt.lock.Unlock()
	bt.tree.ReplaceOrInsert(&item{key: key, pos: pos})
	return true
}

func (bt *BTree) Get(key []byte) *model.RecordPos {
	bt.lock.RLock()
	defer bt.lock.RUnlock()
	found := bt.tree.Get(&item{key: key})
	if found == nil {
		return nil
	}
	return found.(*item).pos
}

func (bt *BTree) Delete(key []byte) bool {
	bt.lock.Lock()
	defer bt.lock.Unlock()
	return bt.tree.Delete(&item{key: key}) != nil
}

func (bt *BTree) Len() int {
	bt.lock.RLock()
	defer bt.lock.RUnlock()
	return bt.tree.Len()
}

func (bt *BTree) Range(start, stop []byte, fn func(key []byte, pos *model.RecordPos) bool) {
	bt.lock.RLock()
	defer bt.lock.RUnlock()

	visit := func(bi btree.Item) bool {
		it := bi.(*item)
		if stop != nil && bytes.Compare(it.key, stop) >= 0 {
			return false
		}
		return fn(it.key, it.pos)
	}

	if start == nil {
		bt.tree.Ascend(visit)
		return
	}
	bt.tree.AscendGreaterOrEqual(&item{key: start}, visit)
}

// Clone snapshots the tree in O(1) via google/btree's copy-on-write
// clone; the returned BTree shares no mutable state with bt going
// forward.
func (bt *BTree) Clone() Index {
	bt.lock.Lock()
	defer bt.lock.Unlock()
	return &BTree{
		tree: bt.tree.Clone(),
		lock: &sync.RWMutex{},
	}
}
