package engine

import "fmt"

var (
	ErrEmptyKey   = addPrefix("the key is empty")
	ErrBigValue   = addPrefix("value is too big")
	ErrNoRecord   = addPrefix("no record in keydir")
	ErrUnknownCF  = addPrefix("unknown column family")
	ErrClosed     = addPrefix("engine is closed")

	ErrNoDataFile        = addPrefix("no data file")
	ErrNoIOManager       = addPrefix("no io manager")
	ErrDirIsUsing        = addPrefix("data directory is in use by another process")
	ErrDataFileCorrupted = addPrefix("data file may be corrupted")

	ErrMergeIsInProgress       = addPrefix("merge is already in progress")
	ErrInvalidMergeFinishedFile = addPrefix("invalid merge finished file")

	ErrExceedMaxBatchNum = addPrefix("exceed the max batch num")
)

func addPrefix(errStr string) error {
	return fmt.Errorf("lsmset engine: %s", errStr)
}
