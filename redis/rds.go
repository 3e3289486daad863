// Package redis is the facade a protocol handler would sit on top of:
// it wires an *engine.DB, a lockmgr.Manager, the Set Operations
// Engine, and a minimal string type into one handle.
package redis

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/cqkv/lsmset/engine"
	"github.com/cqkv/lsmset/lockmgr"
	"github.com/cqkv/lsmset/sets"
)

// Options configures Open beyond the engine's own functional options.
type Options struct {
	LockShards     int
	SpopCacheSize  int
	ScanCursorSize int
}

// RdsServer is the top-level handle: one engine, one lock manager, one
// Set Operations Engine, and the minimal string type needed to
// exercise WRONGTYPE. It owns construction and teardown of all of its
// singletons.
type RdsServer struct {
	db    *engine.DB
	locks lockmgr.Manager
	Sets  *sets.Engine
}

// Open starts an engine at dir (creating MetaCF/SetsDataCF) and wires
// every component around it.
func Open(dir string, ropts Options, eopts ...engine.Option) (*RdsServer, error) {
	eopts = append([]engine.Option{engine.WithColumnFamilies(engine.MetaCF, engine.SetsDataCF)}, eopts...)
	db, err := engine.Open(dir, eopts...)
	if err != nil {
		return nil, err
	}

	locks := lockmgr.New(ropts.LockShards)
	setsEngine, err := sets.NewEngine(db, locks, ropts.SpopCacheSize, ropts.ScanCursorSize)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	setsEngine.RegisterCompactionFilter()

	return &RdsServer{db: db, locks: locks, Sets: setsEngine}, nil
}

func (rds *RdsServer) Close() error {
	return rds.db.Close()
}

// Type reports the data-type name of key, or "none" if it doesn't
// exist or is stale.
func (rds *RdsServer) Type(key []byte) (string, error) {
	raw, err := rds.db.Get(engine.MetaCF, key)
	if err != nil {
		if errors.Is(err, engine.ErrNoRecord) {
			return "none", nil
		}
		return "", err
	}
	if len(raw) == 0 {
		return "none", nil
	}
	if len(raw) >= 21 {
		etime := binary.LittleEndian.Uint64(raw[13:21])
		if etime != 0 && etime <= uint64(time.Now().Unix()) {
			return "none", nil
		}
	}
	return typeName(raw[0]), nil
}

func typeName(tag byte) string {
	switch tag {
	case sets.TypeString:
		return "string"
	case sets.TypeHash:
		return "hash"
	case sets.TypeSet:
		return "set"
	case sets.TypeZSet:
		return "zset"
	case sets.TypeList:
		return "list"
	default:
		return "none"
	}
}

// Del removes key's meta record outright, regardless of its type.
// Member/field/element records are left for the compaction filter to
// reclaim.
func (rds *RdsServer) Del(key []byte) error {
	return rds.db.Delete(engine.MetaCF, key)
}
