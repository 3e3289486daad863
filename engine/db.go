package engine

import (
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/gofrs/flock"

	"github.com/cqkv/lsmset/engine/fio"
	"github.com/cqkv/lsmset/engine/keydir"
	"github.com/cqkv/lsmset/engine/model"
	"github.com/cqkv/lsmset/engine/utils"
)

// DB is an ordered, embedded, single-process key-value engine: an
// append-only log of segment files plus an in-memory ordered index
// per column family (engine/keydir).
type DB struct {
	mu sync.RWMutex

	activeFile *model.DataFile
	olderFiles map[uint32]*model.DataFile

	indexes map[CF]keydir.Index
	tagOf   map[CF]byte
	cfOf    map[byte]CF

	options   options
	dirLock   *flock.Flock
	txSeq     uint64
	isMerging bool

	compactionFilters []CompactionFilter
}

// CompactionFilter is invoked per-record during Merge; returning true
// drops the record instead of copying it forward. The Set Layer
// registers one that reclaims member records of superseded versions.
type CompactionFilter func(cf CF, key, value []byte) (drop bool)

func Open(dirPath string, opts ...Option) (*DB, error) {
	o := defaultOptions()
	o.dirPath = dirPath
	for _, opt := range opts {
		opt(&o)
	}
	if o.dirPath == "" {
		return nil, ErrNoDataFile
	}

	if _, err := os.Stat(o.dirPath); os.IsNotExist(err) {
		if err := os.MkdirAll(o.dirPath, os.ModePerm); err != nil {
			return nil, err
		}
	}

	dirLock := fio.NewFlock(o.dirPath)
	locked, err := dirLock.TryLock()
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrDirIsUsing
	}

	tagOf, cfOf, err := cfTags(o.columnFamilies)
	if err != nil {
		_ = dirLock.Unlock()
		return nil, err
	}

	db := &DB{
		olderFiles: make(map[uint32]*model.DataFile),
		indexes:    make(map[CF]keydir.Index, len(o.columnFamilies)),
		tagOf:      tagOf,
		cfOf:       cfOf,
		options:    o,
		dirLock:    dirLock,
	}
	for _, cf := range o.columnFamilies {
		db.indexes[cf] = keydir.NewBTree(o.degree)
	}

	if err := db.loadMergeFiles(); err != nil {
		return nil, err
	}
	if err := db.loadDataFiles(); err != nil {
		return nil, err
	}
	if err := db.loadIndexFromDataFiles(); err != nil {
		return nil, err
	}

	return db, nil
}

// RegisterCompactionFilter adds a filter consulted during Merge. Order
// matters only in that a record dropped by any filter is dropped.
func (db *DB) RegisterCompactionFilter(f CompactionFilter) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.compactionFilters = append(db.compactionFilters, f)
}

// Put writes a single key in column family cf outside of any batch. Most Set
// Layer writes go through WriteBatch instead, since every command
// mutates at least a meta record and zero-or-more member records
// atomically.
func (db *DB) Put(cf CF, key []byte, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	pos, err := db.appendRecord(cf, &model.Record{Key: key, Value: value})
	if err != nil {
		return err
	}
	db.indexOf(cf).Put(key, pos)
	return nil
}

func (db *DB) Delete(cf CF, key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.indexOf(cf).Get(key) == nil {
		return nil
	}
	if _, err := db.appendRecord(cf, &model.Record{Key: key, IsDelete: true}); err != nil {
		return err
	}
	db.indexOf(cf).Delete(key)
	return nil
}

// Get performs a point lookup against the live index.
func (db *DB) Get(cf CF, key []byte) ([]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.get(cf, db.indexOf(cf), key)
}

func (db *DB) get(cf CF, idx keydir.Index, key []byte) ([]byte, error) {
	pos := idx.Get(key)
	if pos == nil {
		return nil, ErrNoRecord
	}
	return db.readValueAt(pos)
}

func (db *DB) readValueAt(pos *model.RecordPos) ([]byte, error) {
	var file *model.DataFile
	if db.activeFile != nil && pos.Fid == db.activeFile.Fid {
		file = db.activeFile
	} else {
		file = db.olderFiles[pos.Fid]
	}
	if file == nil {
		return nil, ErrNoDataFile
	}

	record, err := db.readRecordAt(file, pos.Offset)
	if err != nil {
		return nil, err
	}
	if record.IsDelete {
		return nil, ErrNoRecord
	}
	return record.Value, nil
}

func (db *DB) indexOf(cf CF) keydir.Index {
	idx, ok := db.indexes[cf]
	if !ok {
		panic("engine: " + string(cf) + ": " + ErrUnknownCF.Error())
	}
	return idx
}

// Close flushes and releases the directory lock.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.activeFile != nil {
		if err := db.activeFile.Sync(); err != nil {
			return err
		}
		if err := db.activeFile.Close(); err != nil {
			return err
		}
	}
	for _, f := range db.olderFiles {
		if err := f.Close(); err != nil {
			return err
		}
	}
	return db.dirLock.Unlock()
}

func (db *DB) Sync() error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.activeFile == nil {
		return nil
	}
	return db.activeFile.Sync()
}

// ListKeys returns every live logical key in the given column family,
// in ascending order.
func (db *DB) ListKeys(cf CF) [][]byte {
	db.mu.RLock()
	defer db.mu.RUnlock()

	keys := make([][]byte, 0, db.indexOf(cf).Len())
	db.indexOf(cf).Range(nil, nil, func(key []byte, _ *model.RecordPos) bool {
		cp := make([]byte, len(key))
		copy(cp, key)
		keys = append(keys, cp)
		return true
	})
	return keys
}

func (db *DB) appendRecord(cf CF, record *model.Record) (*model.RecordPos, error) {
	return db.appendRecordSeq(noTransactionSeq, cf, record)
}

// appendRecordSeq writes one physical record tagged with a transaction
// sequence number. seq == noTransactionSeq means the record is applied
// unconditionally on replay; any other seq is only applied if a
// matching finish marker record was also found (see loadIndexFromDataFiles).
func (db *DB) appendRecordSeq(seq uint64, cf CF, record *model.Record) (*model.RecordPos, error) {
	pk := physicalKeySeq(seq, db.tagOf[cf], record.Key)
	return db.appendPhysical(&model.Record{Key: pk, Value: record.Value, IsDelete: record.IsDelete})
}

// nextTxSeq hands out the next transaction sequence number. seq 0 is
// reserved for unbatched writes (noTransactionSeq), so sequences start
// at 1.
func (db *DB) nextTxSeq() uint64 {
	db.txSeq++
	return db.txSeq
}

// appendRawRecord writes a record whose physical key is already fully
// formed (seq, tag and logical key all baked in by the caller). Used by
// WriteBatch.Commit to write the finish marker, which carries
// txFinishTag rather than any registered CF's tag.
func (db *DB) appendRawRecord(pk []byte, value []byte) (*model.RecordPos, error) {
	return db.appendPhysical(&model.Record{Key: pk, Value: value})
}

func (db *DB) appendPhysical(physical *model.Record) (*model.RecordPos, error) {
	if db.activeFile == nil {
		if err := db.setActiveDataFile(); err != nil {
			return nil, err
		}
	}

	data, size, err := db.marshalRecord(physical)
	if err != nil {
		return nil, err
	}
	if size > db.options.dataFileSize {
		return nil, ErrBigValue
	}

	if db.activeFile.WriteOffset+size > db.options.dataFileSize {
		if err := db.activeFile.Sync(); err != nil {
			return nil, err
		}
		db.olderFiles[db.activeFile.Fid] = db.activeFile
		if err := db.setActiveDataFile(); err != nil {
			return nil, err
		}
	}

	writeOffset := db.activeFile.WriteOffset
	if err := db.activeFile.Write(data); err != nil {
		return nil, err
	}
	if db.options.sync {
		if err := db.activeFile.Sync(); err != nil {
			return nil, err
		}
	}

	return &model.RecordPos{Fid: db.activeFile.Fid, Offset: writeOffset, Size: uint32(size)}, nil
}

func (db *DB) marshalRecord(record *model.Record) ([]byte, int64, error) {
	header := &model.RecordHeader{
		IsDelete:  record.IsDelete,
		KeySize:   int64(len(record.Key)),
		ValueSize: int64(len(record.Value)),
	}
	headerBuf, headerSize, err := db.options.codec.MarshalRecordHeader(header)
	if err != nil {
		return nil, 0, err
	}

	body, bodySize, err := db.options.codec.MarshalRecord(record)
	if err != nil {
		return nil, 0, err
	}

	crc := utils.GenerateCrc(append(headerBuf[4:headerSize:headerSize], body...))
	binaryPutCrc(headerBuf, crc)

	data := make([]byte, 0, headerSize+bodySize)
	data = append(data, headerBuf[:headerSize]...)
	data = append(data, body...)
	return data, int64(len(data)), nil
}

func binaryPutCrc(buf []byte, crc uint32) {
	buf[0] = byte(crc >> 24)
	buf[1] = byte(crc >> 16)
	buf[2] = byte(crc >> 8)
	buf[3] = byte(crc)
}

func (db *DB) setActiveDataFile() error {
	var initialFid uint32
	if db.activeFile != nil {
		initialFid = db.activeFile.Fid + 1
	}

	ioManager, err := db.options.ioManagerCreator(db.options.dirPath, initialFid)
	if err != nil {
		return err
	}
	db.activeFile = model.OpenDataFile(initialFid, ioManager)
	return nil
}

func (db *DB) loadDataFiles() error {
	entries, err := os.ReadDir(db.options.dirPath)
	if err != nil {
		return err
	}

	var fids []uint32
	for _, e := range entries {
		if !bytes.HasSuffix([]byte(e.Name()), []byte(model.DataFileSuffix)) {
			continue
		}
		var fid uint32
		if _, err := parseFid(e.Name(), &fid); err != nil {
			continue
		}
		fids = append(fids, fid)
	}
	sortUint32(fids)

	for i, fid := range fids {
		ioManager, err := db.options.ioManagerCreator(db.options.dirPath, fid)
		if err != nil {
			return err
		}
		file := model.OpenDataFile(fid, ioManager)
		if i == len(fids)-1 {
			size, err := ioManager.Size()
			if err != nil {
				return err
			}
			file.WriteOffset = size
			db.activeFile = file
		} else {
			db.olderFiles[fid] = file
		}
	}
	return nil
}

// loadIndexFromDataFiles replays the log in two passes so a WriteBatch
// that crashed partway through never surfaces a partial write: pass one
// finds every transaction sequence number that has a finish marker
// (written last by WriteBatch.Commit); pass two applies a record if it
// carries noTransactionSeq (unbatched writes) or a seq present in that
// finished set, and skips everything else, including finish markers
// themselves.
func (db *DB) loadIndexFromDataFiles() error {
	files := make(map[uint32]*model.DataFile, len(db.olderFiles)+1)
	for fid, f := range db.olderFiles {
		files[fid] = f
	}
	if db.activeFile != nil {
		files[db.activeFile.Fid] = db.activeFile
	}

	fids := make([]uint32, 0, len(files))
	for fid := range files {
		fids = append(fids, fid)
	}
	sortUint32(fids)

	finished := make(map[uint64]struct{})
	var maxSeq uint64

	for _, fid := range fids {
		file := files[fid]
		var offset int64
		for {
			record, size, err := db.getRecordFromDataFile(file, offset)
			if err != nil {
				if err == io.EOF {
					break
				}
				return err
			}

			seq, tag, _ := splitPhysicalKeySeq(record.Key)
			if tag == txFinishTag {
				finished[seq] = struct{}{}
			}
			if seq > maxSeq {
				maxSeq = seq
			}
			offset += size
		}
	}

	for _, fid := range fids {
		file := files[fid]
		var offset int64
		for {
			record, size, err := db.getRecordFromDataFile(file, offset)
			if err != nil {
				if err == io.EOF {
					break
				}
				return err
			}

			seq, tag, logicalKey := splitPhysicalKeySeq(record.Key)
			if tag == txFinishTag {
				offset += size
				continue
			}
			if seq != noTransactionSeq {
				if _, ok := finished[seq]; !ok {
					offset += size
					continue
				}
			}

			cf, ok := db.cfOf[tag]
			if !ok {
				offset += size
				continue
			}

			if record.IsDelete {
				db.indexes[cf].Delete(logicalKey)
			} else {
				db.indexes[cf].Put(logicalKey, &model.RecordPos{Fid: fid, Offset: offset, Size: uint32(size)})
			}
			offset += size
		}
	}

	db.txSeq = maxSeq
	return nil
}

// getRecordFromDataFile reads and decodes one record at offset,
// returning the record, its total encoded size, and io.EOF once the
// file is exhausted.
func (db *DB) getRecordFromDataFile(file *model.DataFile, offset int64) (*model.Record, int64, error) {
	headerBuf, err := file.ReadRecordHeader(offset)
	if err != nil {
		return nil, 0, err
	}
	if len(headerBuf) == 0 {
		return nil, 0, io.EOF
	}

	header := &model.RecordHeader{}
	headerSize, err := db.options.codec.UnmarshalRecordHeader(headerBuf, header)
	if err != nil {
		return nil, 0, io.EOF
	}
	bodySize := header.KeySize + header.ValueSize
	body, err := file.ReadRecord(offset+headerSize, bodySize)
	if err != nil {
		return nil, 0, err
	}

	if !utils.CheckCrc(header.Crc, append(headerBuf[4:headerSize:headerSize], body...)) {
		return nil, 0, ErrDataFileCorrupted
	}

	record := &model.Record{}
	if err := db.options.codec.UnmarshalRecord(body, header, record); err != nil {
		return nil, 0, err
	}

	return record, headerSize + bodySize, nil
}

func (db *DB) readRecordAt(file *model.DataFile, offset int64) (*model.Record, error) {
	record, _, err := db.getRecordFromDataFile(file, offset)
	return record, err
}
