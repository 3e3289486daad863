package engine

import (
	"fmt"
	"path/filepath"

	"github.com/cqkv/lsmset/engine/codec"
	"github.com/cqkv/lsmset/engine/fio"
)

type options struct {
	dirPath      string
	dataFileSize int64
	columnFamilies []CF
	degree       int
	sync         bool

	ioManagerCreator func(dirPath string, fid uint32) (fio.IOManager, error)
	codec            codec.Codec
}

const defaultDataFileSize = 256 * 1024 * 1024

var defaultIOManagerCreator = func(dirPath string, fid uint32) (fio.IOManager, error) {
	return fio.NewFileIO(filepath.Join(dirPath, fmt.Sprintf("%09d.cq", fid)))
}

func defaultOptions() options {
	return options{
		dataFileSize:     defaultDataFileSize,
		columnFamilies:   defaultColumnFamilies,
		degree:           32,
		ioManagerCreator: defaultIOManagerCreator,
		codec:            codec.NewCodecImpl(),
	}
}

// Option configures the engine at Open, following the package's
// functional-options convention.
type Option func(*options)

func WithDirPath(dirPath string) Option {
	return func(o *options) { o.dirPath = dirPath }
}

func WithDataFileSize(size int64) Option {
	return func(o *options) { o.dataFileSize = size }
}

func WithIOManagerCreator(fn func(dirPath string, fid uint32) (fio.IOManager, error)) Option {
	return func(o *options) { o.ioManagerCreator = fn }
}

func WithCodec(c codec.Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithColumnFamilies overrides the tag-assignment order for column
// families. Must be identical across every Open of the same directory.
func WithColumnFamilies(cfs ...CF) Option {
	return func(o *options) { o.columnFamilies = cfs }
}

// WithSyncWrites forces an fsync after every record appended to the
// active data file (single Put/Delete writes and each record of a
// WriteBatch alike).
func WithSyncWrites(sync bool) Option {
	return func(o *options) { o.sync = sync }
}

// WithIndexDegree sets the btree degree backing each column family's
// in-memory index.
func WithIndexDegree(degree int) Option {
	return func(o *options) { o.degree = degree }
}
