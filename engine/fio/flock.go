package fio

import (
	"path/filepath"

	"github.com/gofrs/flock"
)

const flockName = "flock"

// NewFlock returns an advisory directory lock guarding a data
// directory against being opened by two engine instances at once.
func NewFlock(dirPath string) *flock.Flock {
	return flock.New(filepath.Join(dirPath, flockName))
}
