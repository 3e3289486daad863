package redis

import (
	"encoding/binary"
	"time"

	"github.com/cqkv/lsmset/engine"
	"github.com/cqkv/lsmset/sets"
)

// strHeaderSize mirrors the shared meta-value layout: tag(1) +
// size(4) + version(8) + etime(8) + ctime(8), with the payload
// appended after it in the same MetaCF record — this type has no
// second column family, unlike sets.
const strHeaderSize = 1 + 4 + 8 + 8 + 8

// Set stores value under key as a string, with an optional absolute
// expiration. It exists only so the Set Layer's WRONGTYPE path is
// observable end to end: SADD against a key holding a string.
func (rds *RdsServer) Set(key, value []byte, ttl time.Duration) error {
	now := time.Now()
	var etime uint64
	if ttl > 0 {
		etime = uint64(now.Add(ttl).Unix())
	}

	buf := make([]byte, strHeaderSize+len(value))
	buf[0] = sets.TypeString
	binary.LittleEndian.PutUint32(buf[1:5], uint32(len(value)))
	binary.LittleEndian.PutUint64(buf[5:13], uint64(now.UnixNano()))
	binary.LittleEndian.PutUint64(buf[13:21], etime)
	binary.LittleEndian.PutUint64(buf[21:29], uint64(now.Unix()))
	copy(buf[strHeaderSize:], value)

	return rds.db.Put(engine.MetaCF, key, buf)
}

// Get returns key's string value, or engine.ErrNoRecord if it's
// missing, stale, or not a string.
func (rds *RdsServer) Get(key []byte) ([]byte, error) {
	raw, err := rds.db.Get(engine.MetaCF, key)
	if err != nil {
		return nil, err
	}
	if len(raw) < strHeaderSize || raw[0] != sets.TypeString {
		return nil, engine.ErrNoRecord
	}

	etime := binary.LittleEndian.Uint64(raw[13:21])
	if etime != 0 && etime <= uint64(time.Now().Unix()) {
		return nil, engine.ErrNoRecord
	}

	return raw[strHeaderSize:], nil
}
