package sets

// prefixUpperBound returns the smallest key that sorts strictly after
// every key beginning with prefix, so Range(prefix, prefixUpperBound(prefix))
// visits exactly that prefix's keys instead of scanning to the end of
// the column family. Returns nil (unbounded) only for an all-0xFF
// prefix, which can't happen here: every member-key prefix carries a
// version's big-endian bytes, essentially never all 0xFF.
func prefixUpperBound(prefix []byte) []byte {
	bound := append([]byte(nil), prefix...)
	for i := len(bound) - 1; i >= 0; i-- {
		if bound[i] != 0xFF {
			bound[i]++
			return bound[:i+1]
		}
	}
	return nil
}
