package model

// MaxHeaderSize bounds a marshaled RecordHeader: crc(4) + isDelete(1) +
// keySize varint(<=10) + valueSize varint(<=10).
const MaxHeaderSize = 4 + 1 + 10 + 10

// RecordHeader is the fixed-shape prefix of every on-disk record.
type RecordHeader struct {
	Crc       uint32
	IsDelete  bool
	KeySize   int64
	ValueSize int64
}

// Record is a physical key/value pair as it lives in a data file. Key
// already carries the transaction sequence and column-family tag
// prefix (see engine.CF) — the log format never sees bare logical
// keys, while each column family's keydir index is keyed by the
// logical key with that prefix stripped.
type Record struct {
	Key      []byte
	Value    []byte
	IsDelete bool
}

// RecordPos locates a Record inside the log: which segment file, at
// which byte offset, and how many bytes the encoded record occupies.
type RecordPos struct {
	Fid    uint32
	Offset int64
	Size   uint32
}
