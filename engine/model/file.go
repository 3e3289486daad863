package model

import "github.com/cqkv/lsmset/engine/fio"

const (
	DataFileSuffix          = ".cq"
	HintFileSuffix          = ".hint"
	MergeFinishedFileSuffix = ".mgfin"
	MergeFinishedFileName   = "merge" + MergeFinishedFileSuffix
)

type FileType uint8

const (
	DataFileType FileType = iota
	HintFileType
	MergeFinishedFileType
)

// DataFile is one append-only log segment.
type DataFile struct {
	Fid         uint32
	WriteOffset int64 // only the active data file uses this field
	IoManager   fio.IOManager
}

func OpenDataFile(fid uint32, ioManager fio.IOManager) *DataFile {
	return &DataFile{Fid: fid, IoManager: ioManager}
}

func (df *DataFile) Sync() error {
	return df.IoManager.Sync()
}

func (df *DataFile) Close() error {
	return df.IoManager.Close()
}

// Write appends data at the current write offset.
func (df *DataFile) Write(data []byte) error {
	size, err := df.IoManager.Write(data)
	if err != nil {
		return err
	}
	df.WriteOffset += int64(size)
	return nil
}

// ReadRecordHeader returns up to MaxHeaderSize bytes starting at offset,
// truncated to the file's actual remaining size.
func (df *DataFile) ReadRecordHeader(offset int64) ([]byte, error) {
	fileSize, err := df.IoManager.Size()
	if err != nil {
		return nil, err
	}

	headerBuf := int64(MaxHeaderSize)
	if headerBuf+offset > fileSize {
		headerBuf = fileSize - offset
	}
	if headerBuf <= 0 {
		return nil, nil
	}

	return df.readNBytes(offset, headerBuf)
}

func (df *DataFile) ReadRecord(off, size int64) ([]byte, error) {
	return df.readNBytes(off, size)
}

func (df *DataFile) readNBytes(offset, n int64) ([]byte, error) {
	buf := make([]byte, n)
	_, err := df.IoManager.Read(buf, offset)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func GetDataFileName(dirPath string, ft FileType, fid uint32) string {
	switch ft {
	case HintFileType:
		return dirPath + "/000000000" + HintFileSuffix
	case MergeFinishedFileType:
		return dirPath + "/" + MergeFinishedFileName
	default:
		return dirPath + "/" + fidName(fid) + DataFileSuffix
	}
}

func fidName(fid uint32) string {
	const width = 9
	s := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		s[i] = byte('0' + fid%10)
		fid /= 10
	}
	return string(s)
}
