// Package model holds Metadata, the meta-value header shared by every
// data type this engine's tag byte can name, plus ZSet's key encoder
// as a forward stub for a type with no command layer yet. Hash, List,
// and Set no longer have encoders here: sets.EncodeMemberKey is the
// real, wired encoder for the one type this engine actually
// implements, and hash/list had no command layer to exercise them
// either, so keeping fixed-width duplicates around served no one.
// redis.RdsServer's string type is implemented directly in package
// redis instead of here, since it's the other type actually exercised
// by a command.
package model

import (
	"errors"

	"github.com/cqkv/lsmset/sets"
)

// RdsType re-exports the Set Layer's tag type so every data type in
// this engine shares one tag namespace instead of each package
// minting its own.
type RdsType = sets.TypeTag

const (
	StringType = sets.TypeString
	HashType   = sets.TypeHash
	SetType    = sets.TypeSet
	ZSetType   = sets.TypeZSet
	ListType   = sets.TypeList
)

var ErrWrongTypeOp = errors.New("(error) WRONGTYPE Operation against a key holding the wrong kind of value")
