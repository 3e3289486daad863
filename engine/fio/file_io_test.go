package fio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileIO_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	f, err := NewFileIO(path)
	assert.Nil(t, err)
	defer f.fd.Close()

	n, err := f.Write([]byte("hello"))
	assert.Nil(t, err)
	assert.Equal(t, 5, n)
}

func TestFileIO_Read(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	f, err := NewFileIO(path)
	assert.Nil(t, err)
	defer f.fd.Close()

	n, err := f.Write([]byte("hello"))
	assert.Nil(t, err)
	assert.Equal(t, 5, n)

	buf := make([]byte, 5)
	n, err = f.Read(buf, 0)
	assert.Nil(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []byte("hello"), buf)
}

func TestFileIO_Sync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	f, err := NewFileIO(path)
	assert.Nil(t, err)
	defer f.fd.Close()

	_, err = f.Write([]byte("hello"))
	assert.Nil(t, err)
	assert.Nil(t, f.Sync())
}

func TestFileIO_Close(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	f, err := NewFileIO(path)
	assert.Nil(t, err)
	assert.Nil(t, f.fd.Close())

	_, statErr := os.Stat(path)
	assert.Nil(t, statErr)
}
