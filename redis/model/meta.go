// Metadata is the non-set counterpart to sets.MetaView: the same
// tag(1) + size(4) + version(8) + etime(8) + ctime(8) layout (29
// bytes), with Head/Tail appended for ListType. Keeping one shape
// across every data type means the tag byte at offset 0 of a MetaCF
// record is enough to dispatch, without a second format to parse
// before even knowing what the record holds.
package model

import (
	"encoding/binary"
	"math"
	"time"
)

const (
	baseMetaSize  = 1 + 4 + 8 + 8 + 8
	extraListSize = 8 + 8

	initialListMark = math.MaxUint64 / 2
)

type Metadata struct {
	DataType   RdsType
	Size       int32
	Version    uint64
	Etime      uint64
	Ctime      uint64
	Head, Tail uint64 // list only
}

// NewMetadata builds a fresh record for dataType, deriving Version
// from the current time the same way sets.InitialMetaValue does, and
// converting ttl into an absolute Unix-seconds Etime (0 meaning no
// expiration).
func NewMetadata(dataType RdsType, ttl time.Duration) *Metadata {
	now := time.Now()
	var etime uint64
	if ttl > 0 {
		etime = uint64(now.Add(ttl).Unix())
	}

	meta := &Metadata{
		DataType: dataType,
		Version:  uint64(now.UnixNano()),
		Etime:    etime,
		Ctime:    uint64(now.Unix()),
	}

	if dataType == ListType {
		meta.Head = initialListMark
		meta.Tail = initialListMark
	}

	return meta
}

func MarshalMetadata(mt *Metadata) []byte {
	sz := baseMetaSize
	if mt.DataType == ListType {
		sz += extraListSize
	}

	buf := make([]byte, sz)
	buf[0] = mt.DataType
	binary.LittleEndian.PutUint32(buf[1:5], uint32(mt.Size))
	binary.LittleEndian.PutUint64(buf[5:13], mt.Version)
	binary.LittleEndian.PutUint64(buf[13:21], mt.Etime)
	binary.LittleEndian.PutUint64(buf[21:29], mt.Ctime)

	if mt.DataType == ListType {
		binary.LittleEndian.PutUint64(buf[29:37], mt.Head)
		binary.LittleEndian.PutUint64(buf[37:45], mt.Tail)
	}

	return buf
}

func UnmarshalMetadata(buf []byte) *Metadata {
	meta := &Metadata{
		DataType: buf[0],
		Size:     int32(binary.LittleEndian.Uint32(buf[1:5])),
		Version:  binary.LittleEndian.Uint64(buf[5:13]),
		Etime:    binary.LittleEndian.Uint64(buf[13:21]),
		Ctime:    binary.LittleEndian.Uint64(buf[21:29]),
	}

	if meta.DataType == ListType && len(buf) >= baseMetaSize+extraListSize {
		meta.Head = binary.LittleEndian.Uint64(buf[29:37])
		meta.Tail = binary.LittleEndian.Uint64(buf[37:45])
	}

	return meta
}

// IsStale reports whether mt's expiration has passed as of nowUnix
// (seconds), mirroring sets.MetaView.IsStale.
func (mt *Metadata) IsStale(nowUnix uint64) bool {
	return mt.Etime != 0 && mt.Etime <= nowUnix
}
