package engine

import (
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/cqkv/lsmset/engine/fio"
	"github.com/cqkv/lsmset/engine/model"
)

const (
	mergeDirPathSuffix = "-lsmset-merge"
	mergeFinishedKey   = "merge.finished"
)

// Merge rewrites every column family's live records into a fresh set
// of segment files plus a hint file, dropping superseded and
// tombstoned records and anything a registered CompactionFilter marks
// for removal (this is where the Set Layer's member-record reclamation
// runs). It blocks the caller; Set Layer callers that want it off the
// request path run it from their own goroutine.
func (db *DB) Merge() error {
	if db.activeFile == nil {
		return nil
	}

	db.mu.Lock()
	if db.isMerging {
		db.mu.Unlock()
		return ErrMergeIsInProgress
	}
	db.isMerging = true
	slog.Info("merge starting", "dir", db.options.dirPath, "older_files", len(db.olderFiles))
	defer func() {
		db.mu.Lock()
		db.isMerging = false
		db.mu.Unlock()
	}()

	if err := db.activeFile.Sync(); err != nil {
		db.mu.Unlock()
		return err
	}
	db.olderFiles[db.activeFile.Fid] = db.activeFile
	if err := db.setActiveDataFile(); err != nil {
		db.mu.Unlock()
		return err
	}

	noMergeFid := db.activeFile.Fid
	mergeFiles := make([]*model.DataFile, 0, len(db.olderFiles))
	for _, f := range db.olderFiles {
		mergeFiles = append(mergeFiles, f)
	}
	filters := append([]CompactionFilter(nil), db.compactionFilters...)
	db.mu.Unlock()

	sort.Slice(mergeFiles, func(i, j int) bool { return mergeFiles[i].Fid < mergeFiles[j].Fid })

	mergeDirPath := db.getMergeDirPath()
	if _, err := os.Stat(mergeDirPath); err == nil {
		if err := os.RemoveAll(mergeDirPath); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(mergeDirPath, os.ModePerm); err != nil {
		return err
	}

	mergeDb, err := Open(mergeDirPath, WithColumnFamilies(db.columnFamiliesInOrder()...), WithDataFileSize(db.options.dataFileSize), WithCodec(db.options.codec))
	if err != nil {
		return err
	}
	defer mergeDb.Close()

	hintPath := model.GetDataFileName(mergeDirPath, model.HintFileType, 0)
	hintIoManager, err := fio.NewFileIO(hintPath)
	if err != nil {
		return err
	}
	defer hintIoManager.Close()
	hintFile := model.OpenDataFile(0, hintIoManager)

	var kept, reclaimed int

	for _, dataFile := range mergeFiles {
		var offset int64
		for {
			record, size, err := db.getRecordFromDataFile(dataFile, offset)
			if err != nil {
				if err == io.EOF {
					break
				}
				return err
			}

			seq, tag, logicalKey := splitPhysicalKeySeq(record.Key)
			offsetAfter := offset + size
			offset = offsetAfter

			if tag == txFinishTag {
				continue
			}
			cf, ok := db.cfOf[tag]
			if !ok {
				continue
			}

			pos := db.indexes[cf].Get(logicalKey)
			if pos == nil || pos.Fid != dataFile.Fid || pos.Offset != offset-size {
				continue
			}
			if record.IsDelete {
				continue
			}
			_ = seq

			if filterDrops(filters, cf, logicalKey, record.Value) {
				reclaimed++
				continue
			}
			kept++

			newPos, err := mergeDb.appendRecord(cf, &model.Record{Key: logicalKey, Value: record.Value})
			if err != nil {
				return err
			}

			hintData, err := db.marshalPosRecord(tag, logicalKey, newPos)
			if err != nil {
				return err
			}
			if err := hintFile.Write(hintData); err != nil {
				return err
			}
		}
	}

	if err := hintFile.Sync(); err != nil {
		return err
	}
	if err := mergeDb.Sync(); err != nil {
		return err
	}

	slog.Info("merge finished", "kept", kept, "reclaimed", reclaimed)
	return db.writeMergeFinishedFile(mergeDirPath, noMergeFid)
}

func filterDrops(filters []CompactionFilter, cf CF, key, value []byte) bool {
	for _, f := range filters {
		if f(cf, key, value) {
			return true
		}
	}
	return false
}

func (db *DB) columnFamiliesInOrder() []CF {
	cfs := make([]CF, len(db.cfOf))
	for tag, cf := range db.cfOf {
		cfs[tag] = cf
	}
	return cfs
}

// marshalPosRecord encodes one hint-file entry: tag || logicalKey as
// the record key, the record's new position as the value.
func (db *DB) marshalPosRecord(tag byte, key []byte, pos *model.RecordPos) ([]byte, error) {
	posValue, err := db.options.codec.MarshalRecordPos(pos)
	if err != nil {
		return nil, err
	}
	hintKey := make([]byte, 0, 1+len(key))
	hintKey = append(hintKey, tag)
	hintKey = append(hintKey, key...)
	data, _, err := db.marshalRecord(&model.Record{Key: hintKey, Value: posValue})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (db *DB) writeMergeFinishedFile(mergeDirPath string, fid uint32) error {
	path := model.GetDataFileName(mergeDirPath, model.MergeFinishedFileType, 0)
	ioManager, err := fio.NewFileIO(path)
	if err != nil {
		return err
	}
	defer ioManager.Close()

	file := model.OpenDataFile(0, ioManager)
	record := &model.Record{Key: []byte(mergeFinishedKey), Value: []byte(strconv.Itoa(int(fid)))}
	data, _, err := db.marshalRecord(record)
	if err != nil {
		return err
	}
	if err := file.Write(data); err != nil {
		return err
	}
	return file.Sync()
}

func (db *DB) getMergeDirPath() string {
	dir := path.Dir(path.Clean(db.options.dirPath))
	base := path.Base(db.options.dirPath)
	return path.Join(dir, base+mergeDirPathSuffix)
}

// loadMergeFiles runs at Open, before loadDataFiles: if a prior Merge
// completed (its finished marker is present), it removes the segments
// that merge made obsolete and moves the merged segment plus hint
// file into the main directory. An incomplete merge directory (no
// finished marker) is discarded — the main directory's own log is
// still the source of truth.
func (db *DB) loadMergeFiles() error {
	mergePath := db.getMergeDirPath()
	if _, err := os.Stat(mergePath); os.IsNotExist(err) {
		return nil
	}
	defer func() { _ = os.RemoveAll(mergePath) }()

	entries, err := os.ReadDir(mergePath)
	if err != nil {
		return err
	}

	var finished bool
	var names []string
	for _, e := range entries {
		if e.Name() == model.MergeFinishedFileName {
			finished = true
			names = append(names, e.Name())
			continue
		}
		if strings.HasSuffix(e.Name(), model.DataFileSuffix) || strings.HasSuffix(e.Name(), model.HintFileSuffix) {
			names = append(names, e.Name())
		}
	}
	if !finished {
		return nil
	}

	noMergedFid, err := db.getNotMergeFid(mergePath)
	if err != nil {
		return err
	}

	var fid uint32
	for ; fid < noMergedFid; fid++ {
		fileName := model.GetDataFileName(db.options.dirPath, model.DataFileType, fid)
		if _, err := os.Stat(fileName); err == nil {
			if err := os.Remove(fileName); err != nil {
				return err
			}
		}
	}

	for _, name := range names {
		if name == model.MergeFinishedFileName {
			continue
		}
		src := filepath.Join(mergePath, name)
		dst := filepath.Join(db.options.dirPath, name)
		if err := os.Rename(src, dst); err != nil {
			slog.Error("merge: failed adopting merged segment", "file", name, "err", err)
			return err
		}
	}

	return nil
}

func (db *DB) getNotMergeFid(dir string) (uint32, error) {
	path := model.GetDataFileName(dir, model.MergeFinishedFileType, 0)
	ioManager, err := fio.NewFileIO(path)
	if err != nil {
		return 0, err
	}
	defer ioManager.Close()

	file := model.OpenDataFile(0, ioManager)
	record, _, err := db.getRecordFromDataFile(file, 0)
	if err != nil {
		return 0, err
	}
	if string(record.Key) != mergeFinishedKey {
		return 0, ErrInvalidMergeFinishedFile
	}
	fid, err := strconv.Atoi(string(record.Value))
	if err != nil {
		return 0, err
	}
	return uint32(fid), nil
}

