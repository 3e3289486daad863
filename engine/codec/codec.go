package codec

import "github.com/cqkv/lsmset/engine/model"

// Codec marshals/unmarshals the on-disk record format. Swappable via
// engine.WithCodec.
type Codec interface {
	MarshalRecordHeader(*model.RecordHeader) ([]byte, int64, error)
	UnmarshalRecordHeader([]byte, *model.RecordHeader) (int64, error)

	MarshalRecord(*model.Record) ([]byte, int64, error)
	UnmarshalRecord([]byte, *model.RecordHeader, *model.Record) error

	MarshalRecordPos(*model.RecordPos) ([]byte, error)
	UnmarshalRecordPos([]byte, *model.RecordPos) error
}
