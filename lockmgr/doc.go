// Package lockmgr provides scoped, in-process record locks keyed by an
// arbitrary string. It is the Set Layer's lock manager facade: every
// writing command acquires one on entry and releases it on every exit
// path, and multi-key commands (SMOVE, SETSRENAME) acquire all of
// their keys' locks in one deterministic, sorted order so two
// commands racing over the same key pair can never deadlock.
//
// Locks are striped across a fixed number of shards hashed from the
// key, so unrelated keys hardly ever contend on the same mutex while
// the manager itself stays a small, fixed-size object regardless of
// how many distinct keys are ever locked.
package lockmgr
