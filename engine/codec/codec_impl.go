package codec

import (
	"encoding/binary"
	"io"

	"github.com/cqkv/lsmset/engine/model"
)

// CodecImpl is the default Codec.
//
// record header: crc(4) | isDelete(1) | keySize(varint) | valueSize(varint)
// record body:   key | value
type CodecImpl struct{}

func NewCodecImpl() *CodecImpl {
	return &CodecImpl{}
}

func (c *CodecImpl) MarshalRecordHeader(header *model.RecordHeader) ([]byte, int64, error) {
	data := make([]byte, model.MaxHeaderSize)

	binary.BigEndian.PutUint32(data[:4], header.Crc)
	if header.IsDelete {
		data[4] = 1
	}

	idx := 5
	idx += binary.PutVarint(data[idx:], header.KeySize)
	idx += binary.PutVarint(data[idx:], header.ValueSize)

	return data, int64(idx), nil
}

func (c *CodecImpl) UnmarshalRecordHeader(headerData []byte, header *model.RecordHeader) (int64, error) {
	if len(headerData) < 6 {
		return 0, io.EOF
	}

	header.Crc = binary.BigEndian.Uint32(headerData[:4])
	header.IsDelete = headerData[4] == 1

	idx := 5
	keySize, n := binary.Varint(headerData[idx:])
	if n <= 0 {
		return 0, io.EOF
	}
	idx += n

	valueSize, n := binary.Varint(headerData[idx:])
	if n <= 0 {
		return 0, io.EOF
	}
	idx += n

	header.KeySize = keySize
	header.ValueSize = valueSize

	return int64(idx), nil
}

func (c *CodecImpl) MarshalRecord(record *model.Record) ([]byte, int64, error) {
	data := make([]byte, 0, len(record.Key)+len(record.Value))
	data = append(data, record.Key...)
	data = append(data, record.Value...)
	return data, int64(len(data)), nil
}

func (c *CodecImpl) UnmarshalRecord(data []byte, header *model.RecordHeader, record *model.Record) error {
	kz, vz := header.KeySize, header.ValueSize
	if int64(len(data)) < kz+vz {
		return io.ErrUnexpectedEOF
	}
	record.Key = data[:kz]
	record.Value = data[kz : kz+vz]
	record.IsDelete = header.IsDelete
	return nil
}

func (c *CodecImpl) MarshalRecordPos(pos *model.RecordPos) ([]byte, error) {
	buf := make([]byte, binary.MaxVarintLen32*2+binary.MaxVarintLen64)
	idx := 0
	idx += binary.PutVarint(buf[idx:], int64(pos.Fid))
	idx += binary.PutVarint(buf[idx:], pos.Offset)
	idx += binary.PutVarint(buf[idx:], int64(pos.Size))
	return buf[:idx], nil
}

func (c *CodecImpl) UnmarshalRecordPos(buf []byte, pos *model.RecordPos) error {
	idx := 0
	fid, n := binary.Varint(buf[idx:])
	idx += n
	offset, n := binary.Varint(buf[idx:])
	idx += n
	size, _ := binary.Varint(buf[idx:])

	pos.Fid = uint32(fid)
	pos.Offset = offset
	pos.Size = uint32(size)
	return nil
}
