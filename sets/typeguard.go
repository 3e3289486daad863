package sets

import (
	"errors"
	"fmt"

	"github.com/cqkv/lsmset/engine"
)

// Kind discriminates the status taxonomy this package reports.
// Every command reports failures through one of these instead of an
// ad hoc error string, so callers can branch on Kind.
type Kind int

const (
	KindOK Kind = iota
	KindNotFound
	KindWrongType
	KindInvalidArgument
	KindCorruption
)

// StatusError is the typed failure every Set Operations Engine command
// returns. Engine-level I/O errors are propagated unchanged, not
// wrapped in StatusError.
type StatusError struct {
	Kind Kind
	Msg  string
}

func (e *StatusError) Error() string { return e.Msg }

func newNotFound() error { return &StatusError{Kind: KindNotFound, Msg: "NotFound"} }

func newWrongType(key []byte, actual TypeTag) error {
	return &StatusError{
		Kind: KindWrongType,
		Msg: fmt.Sprintf("WRONGTYPE, key: %s, expect type: sets, get type: %s",
			key, typeName(actual)),
	}
}

func newOverflow() error {
	return &StatusError{Kind: KindInvalidArgument, Msg: "set size overflow"}
}

func newCorruption(msg string) error {
	return &StatusError{Kind: KindCorruption, Msg: "Corruption: " + msg}
}

// IsNotFound reports whether err is (or wraps) a NotFound status.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Kind == KindNotFound
}

// loadSetMeta reads key's meta record and applies the Type Guard: a
// missing record, a stale record of any type, or a live record whose
// count is zero all resolve to "not live" with no error — the caller
// decides whether that's NotFound or "about to create". A live record
// of a foreign type is WrongType; anything else is handed back as a
// live MetaView.
func loadSetMeta(r reader, now uint64, key []byte) (meta MetaView, live bool, err error) {
	raw, err := r.Get(engine.MetaCF, key)
	if err != nil {
		if err == engine.ErrNoRecord {
			return NewMetaView(), false, nil
		}
		return MetaView{}, false, err
	}

	if len(raw) == 0 {
		return NewMetaView(), false, nil
	}
	tag := raw[0]

	if tag != TypeSet {
		v := genericMetaView{raw: raw}
		if v.isStaleGeneric(now) {
			return NewMetaView(), false, nil
		}
		return MetaView{}, false, newWrongType(key, tag)
	}

	v := ParseSetMeta(raw)
	if v.IsStale(now) {
		// keep the stale view so InitialMetaValue picks a version above it.
		return v, false, nil
	}
	return v, v.Count() > 0, nil
}

// genericMetaView reads just enough of a foreign-typed meta value to
// decide staleness without knowing its type-specific layout: every
// data type in this engine shares the same
// tag|count|version|etime|ctime header shape.
type genericMetaView struct{ raw []byte }

func (g genericMetaView) isStaleGeneric(now uint64) bool {
	if len(g.raw) < MetaValueSize {
		return false
	}
	etime := leU64(g.raw[13:21])
	return etime != 0 && etime <= now
}

func leU64(b []byte) uint64 {
	var n uint64
	for i := 7; i >= 0; i-- {
		n = n<<8 | uint64(b[i])
	}
	return n
}

// reader is the read surface loadSetMeta and the read-only commands
// need: either *engine.DB directly or an *engine.Snapshot, both of
// which expose Get for a given column family.
type reader interface {
	Get(cf engine.CF, key []byte) ([]byte, error)
}
