package sets

import (
	"encoding/binary"
	"math"
	"time"
)

// MetaView interprets a set's 29-byte meta value in place: tag, count,
// version, expiration, staleness, and the overflow guards and
// logical-delete primitive the Set Operations Engine relies on.
type MetaView struct {
	raw     [MetaValueSize]byte
	present bool // false for a not-yet-existing key; NewMetaView leaves a zero view
}

// ParseSetMeta decodes a raw meta value. The caller must have already
// verified the tag is TypeSet (see TypeGuard) unless it's deliberately
// inspecting a foreign-typed record.
func ParseSetMeta(raw []byte) MetaView {
	var v MetaView
	copy(v.raw[:], raw)
	v.present = true
	return v
}

// NewMetaView constructs a fresh, absent view — used for a missing key
// (or a stale key of another type) that callers may then pass to
// InitialMetaValue.
func NewMetaView() MetaView {
	return MetaView{}
}

func (v MetaView) TypeTag() TypeTag { return v.raw[0] }

func (v MetaView) Count() int32 {
	return int32(binary.LittleEndian.Uint32(v.raw[1:5]))
}

func (v MetaView) Version() uint64 {
	return binary.LittleEndian.Uint64(v.raw[5:13])
}

func (v MetaView) Etime() uint64 {
	return binary.LittleEndian.Uint64(v.raw[13:21])
}

func (v MetaView) Ctime() uint64 {
	return binary.LittleEndian.Uint64(v.raw[21:29])
}

// IsStale reports whether the set has expired as of now (seconds since
// epoch): etime != 0 && etime <= now.
func (v MetaView) IsStale(now uint64) bool {
	e := v.Etime()
	return e != 0 && e <= now
}

func (v MetaView) IsPermanent() bool { return v.Etime() == 0 }

// Exists reports whether this view was populated from an actual
// record (as opposed to a fresh NewMetaView for a missing key).
func (v MetaView) Exists() bool { return v.present }

// Bytes returns the wire encoding of the current header state.
func (v MetaView) Bytes() []byte {
	cp := make([]byte, MetaValueSize)
	copy(cp, v.raw[:])
	return cp
}

// SetCount overwrites the count field in place and returns the
// updated bytes.
func (v *MetaView) SetCount(n int32) []byte {
	binary.LittleEndian.PutUint32(v.raw[1:5], uint32(n))
	return v.Bytes()
}

// ModifyCount adds delta to the count field in place and returns the
// updated bytes. Callers must call CheckModifyCount(delta) first.
func (v *MetaView) ModifyCount(delta int32) []byte {
	return v.SetCount(v.Count() + delta)
}

// CheckModifyCount reports whether count+delta would overflow signed
// 32-bit or go negative.
func (v MetaView) CheckModifyCount(delta int32) bool {
	sum := int64(v.Count()) + int64(delta)
	return sum >= 0 && sum <= math.MaxInt32
}

// CheckSetCount reports whether n is a valid absolute count (signed
// 32-bit, non-negative).
func CheckSetCount(n int64) bool {
	return n >= 0 && n <= math.MaxInt32
}

// InitialMetaValue is the single logical-delete primitive: it chooses
// a version strictly greater than the current one, zeroes count,
// clears etime, and returns the new version and the encoded bytes
// ready to Put back. The new version is now in Unix nanoseconds, or
// the current version plus one when now would not be greater; an
// absent view (NewMetaView) has no current version and takes now as is.
func (v *MetaView) InitialMetaValue(now time.Time) (newVersion uint64, encoded []byte) {
	newVersion = uint64(now.UnixNano())
	if v.present && newVersion <= v.Version() {
		newVersion = v.Version() + 1
	}
	encoded = EncodeSetMeta(0, newVersion, 0, uint64(now.Unix()))
	return newVersion, encoded
}
