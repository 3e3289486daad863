package lockmgr

// Manager exposes single-key and ordered multi-key scoped locks. The
// Set Operations Engine only ever uses it through this interface.
type Manager interface {
	// ScopeRecordLock locks key and returns a closure that unlocks it.
	// Callers defer the closure immediately so every return path,
	// including early error returns, releases the lock.
	ScopeRecordLock(key string) func()

	// MultiScopeRecordLock locks every key in keys, in sorted order,
	// and returns one closure that unlocks them all in reverse order.
	// Locking in a fixed order across all callers is what prevents two
	// commands that share a key pair (e.g. two SMOVEs swapping the
	// same two sets) from deadlocking against each other.
	MultiScopeRecordLock(keys []string) func()
}
