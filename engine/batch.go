package engine

import (
	"sync"

	"github.com/cqkv/lsmset/engine/model"
)

// pendingWrite is one write buffered in a WriteBatch before Commit.
type pendingWrite struct {
	cf       CF
	key      []byte
	value    []byte
	isDelete bool
}

// WriteBatch buffers writes across any number of column families and
// applies them atomically: either every write becomes visible or none
// does, even across a crash. Every Set Layer command that touches both
// MetaCF and SetsDataCF goes through one of these instead of calling
// DB.Put/Delete directly.
//
// The atomicity mechanism is a transaction sequence number stamped on
// every record the batch writes, followed by a dedicated finish
// record carrying the same sequence. DB.loadIndexFromDataFiles only
// applies records whose sequence has a matching finish record, so a
// batch that crashes before writing its finish record is replayed as
// if it never happened.
type WriteBatch struct {
	db      *DB
	mu      sync.Mutex
	pending []pendingWrite
	options options
}

// NewWriteBatch starts a new batch. The batch holds no DB lock until
// Commit; buffer writes freely, then call Commit once.
func (db *DB) NewWriteBatch() *WriteBatch {
	return &WriteBatch{db: db, options: db.options}
}

func (wb *WriteBatch) Put(cf CF, key, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	wb.mu.Lock()
	defer wb.mu.Unlock()
	wb.pending = append(wb.pending, pendingWrite{cf: cf, key: cloneBytes(key), value: cloneBytes(value)})
	return nil
}

func (wb *WriteBatch) Delete(cf CF, key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	wb.mu.Lock()
	defer wb.mu.Unlock()
	wb.pending = append(wb.pending, pendingWrite{cf: cf, key: cloneBytes(key), isDelete: true})
	return nil
}

// Commit writes every buffered record tagged with a single fresh
// transaction sequence number, then writes the finish record, then
// applies all of them to the in-memory indexes under the DB lock. If
// the batch is empty, Commit is a no-op.
func (wb *WriteBatch) Commit() error {
	wb.mu.Lock()
	writes := wb.pending
	wb.pending = nil
	wb.mu.Unlock()

	if len(writes) == 0 {
		return nil
	}
	if len(writes) > maxWriteBatchNum {
		return ErrExceedMaxBatchNum
	}

	db := wb.db
	db.mu.Lock()
	defer db.mu.Unlock()

	seq := db.nextTxSeq()

	positions := make([]*model.RecordPos, len(writes))
	for i, w := range writes {
		pos, err := db.appendRecordSeq(seq, w.cf, &model.Record{Key: w.key, Value: w.value, IsDelete: w.isDelete})
		if err != nil {
			return err
		}
		positions[i] = pos
	}

	finishKey := physicalKeySeq(seq, txFinishTag, nil)
	if _, err := db.appendRawRecord(finishKey, nil); err != nil {
		return err
	}

	for i, w := range writes {
		idx := db.indexOf(w.cf)
		if w.isDelete {
			idx.Delete(w.key)
		} else {
			idx.Put(w.key, positions[i])
		}
	}
	return nil
}

// maxWriteBatchNum bounds a single batch so one Commit can't blow past
// a single data file's size; the Set Layer's largest batch is an SADD
// of a whole member slice plus one meta record, far below this.
const maxWriteBatchNum = 1_000_000

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}
