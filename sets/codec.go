// Package sets implements the Set Operations Engine: unordered
// collections of unique byte-string members with TTL and logical
// deletion via versioning, over two engine column families (meta and
// member data). Its member-key encoding is a length-prefixed variant
// of a fixed-width key | version | member layout, so user keys of any
// length round-trip; its meta value uses the fixed 29-byte layout
// shared by every data type (redis/model/meta.go).
package sets

import (
	"encoding/binary"
	"fmt"
)

// TypeTag is the one-byte type discriminant stored in every meta
// value. SET is this package's own tag; the other values are reserved
// for the other data types the engine's meta format supports, kept
// elsewhere in this module (package redis's minimal string type).
type TypeTag = byte

const (
	TypeString TypeTag = iota
	TypeHash
	TypeSet
	TypeZSet
	TypeList
)

func typeName(t TypeTag) string {
	switch t {
	case TypeString:
		return "strings"
	case TypeHash:
		return "hash"
	case TypeSet:
		return "sets"
	case TypeZSet:
		return "zset"
	case TypeList:
		return "list"
	default:
		return fmt.Sprintf("unknown(%d)", t)
	}
}

// MetaValueSize is the fixed wire size of a set meta value: tag(1) +
// count(4) + version(8) + etime(8) + ctime(8).
const MetaValueSize = 1 + 4 + 8 + 8 + 8

// EncodeMetaKey is the identity function: the meta column family is
// already keyed by the user key directly, one record per user key
// across every data type. Kept as a named function so call sites read
// like a codec contract rather than a raw pass-through.
func EncodeMetaKey(userKey []byte) []byte {
	return userKey
}

// EncodeSetMeta serializes a set's header: byte 0 = SET tag, bytes
// 1..5 = count (LE u32, signed i32), bytes 5..13 = version (LE u64),
// bytes 13..21 = etime (LE u64), bytes 21..29 = ctime (LE u64).
func EncodeSetMeta(count int32, version uint64, etime uint64, ctime uint64) []byte {
	buf := make([]byte, MetaValueSize)
	buf[0] = TypeSet
	binary.LittleEndian.PutUint32(buf[1:5], uint32(count))
	binary.LittleEndian.PutUint64(buf[5:13], version)
	binary.LittleEndian.PutUint64(buf[13:21], etime)
	binary.LittleEndian.PutUint64(buf[21:29], ctime)
	return buf
}

// EncodeMemberKey packs a member-key: varint-len(user key) ||
// user-key-bytes || version (BE u64) || member-bytes. version is
// big-endian so members of one generation sort contiguously and a
// Seek(EncodeMemberSeekPrefix(k,v)) yields them in byte-lexicographic
// member order.
func EncodeMemberKey(userKey []byte, version uint64, member []byte) []byte {
	lenBuf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(lenBuf, uint64(len(userKey)))

	buf := make([]byte, 0, n+len(userKey)+8+len(member))
	buf = append(buf, lenBuf[:n]...)
	buf = append(buf, userKey...)

	var verBuf [8]byte
	binary.BigEndian.PutUint64(verBuf[:], version)
	buf = append(buf, verBuf[:]...)

	buf = append(buf, member...)
	return buf
}

// EncodeMemberSeekPrefix returns the fixed-length prefix shared by
// every member of (userKey, version): everything EncodeMemberKey
// writes before the member bytes. Seeking this prefix and iterating
// while StartsWith(prefix) holds visits exactly that generation's
// members in member-lex order.
func EncodeMemberSeekPrefix(userKey []byte, version uint64) []byte {
	return EncodeMemberKey(userKey, version, nil)
}

// ParsedMemberKey is the decomposition ParseMemberKey returns.
type ParsedMemberKey struct {
	UserKey []byte
	Version uint64
	Member  []byte
}

// ParseMemberKey inverts EncodeMemberKey.
func ParseMemberKey(raw []byte) (ParsedMemberKey, error) {
	keyLen, n := binary.Uvarint(raw)
	if n <= 0 {
		return ParsedMemberKey{}, fmt.Errorf("sets: malformed member key: bad length varint")
	}
	raw = raw[n:]
	if uint64(len(raw)) < keyLen+8 {
		return ParsedMemberKey{}, fmt.Errorf("sets: malformed member key: truncated")
	}

	userKey := raw[:keyLen]
	version := binary.BigEndian.Uint64(raw[keyLen : keyLen+8])
	member := raw[keyLen+8:]

	return ParsedMemberKey{UserKey: userKey, Version: version, Member: member}, nil
}

// memberSentinel is the opaque placeholder written as every member
// record's value: its presence, not its content, is the membership
// fact.
var memberSentinel = []byte{0x00}
