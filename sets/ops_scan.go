package sets

import (
	"path/filepath"

	"github.com/cqkv/lsmset/engine"
)

// SScan iterates key's members in batches of roughly count, matching
// pattern. cursor == 0 means "start"; the engine consults the Scan
// Cursor Store for a prior continuation keyed by (SET, key, pattern,
// cursor). Matching uses glob semantics (*, ?, [set], \ escape) via
// path/filepath.Match, the same algorithm Go's standard library
// already implements for shell-style globs. As in filepath.Match, '*'
// and '?' never match '/', so a member containing '/' matches only a
// pattern that spells out each '/' literally.
func (e *Engine) SScan(key []byte, cursor uint64, pattern string, count int) (nextCursor uint64, members [][]byte, err error) {
	now := e.nowSeconds()
	meta, live, err := loadSetMeta(e.db, now, key)
	if err != nil {
		return 0, nil, err
	}
	if !live {
		return 0, nil, newNotFound()
	}
	if count <= 0 {
		count = 10
	}

	version := meta.Version()
	basePrefix := EncodeMemberSeekPrefix(key, version)

	seekFrom := basePrefix
	if cursor != 0 {
		ck := cursorKey{dataType: TypeSet, key: string(key), pattern: pattern, cursor: cursor}
		if last, ok := e.scans.Lookup(ck); ok {
			// last || 0x00 is the smallest key strictly after last.
			seekFrom = append(append([]byte(nil), last...), 0x00)
		}
	}

	scanPrefix := basePrefix
	if lit, ok := literalPrefix(pattern); ok {
		scanPrefix = append(append([]byte(nil), basePrefix...), lit...)
	}
	if len(seekFrom) < len(scanPrefix) {
		seekFrom = scanPrefix
	}

	it := e.db.NewIterator(engine.SetsDataCF, seekFrom, prefixUpperBound(basePrefix))
	defer it.Close()

	var out [][]byte
	var lastKey []byte
	scanned := 0
	for it.Seek(seekFrom); it.Valid() && it.StartsWith(basePrefix) && scanned < count; it.Next() {
		scanned++
		lastKey = append([]byte(nil), it.Key()...)

		parsed, perr := ParseMemberKey(it.Key())
		if perr != nil {
			return 0, nil, perr
		}
		matched, merr := filepath.Match(pattern, string(parsed.Member))
		if merr != nil {
			return 0, nil, newCorruption("invalid scan pattern")
		}
		if matched {
			out = append(out, append([]byte(nil), parsed.Member...))
		}
	}
	if err := it.Err(); err != nil {
		return 0, nil, err
	}

	if !it.Valid() || !it.StartsWith(basePrefix) {
		return 0, out, nil
	}

	next := cursor + uint64(count)
	ck := cursorKey{dataType: TypeSet, key: string(key), pattern: pattern, cursor: next}
	e.scans.Insert(ck, lastKey)
	return next, out, nil
}

// literalPrefix returns the fixed literal prefix of a glob pattern
// whose only wildcard is a trailing "*", letting the seek narrow past
// that prefix instead of scanning the whole generation. Any other
// wildcard shape (leading/mid-pattern *, ?, [...]) returns ok=false
// since no literal prefix can be derived.
func literalPrefix(pattern string) (string, bool) {
	for i, r := range pattern {
		switch r {
		case '*':
			if i == len(pattern)-1 {
				return pattern[:i], true
			}
			return "", false
		case '?', '[', '\\':
			return "", false
		}
	}
	return pattern, true
}
