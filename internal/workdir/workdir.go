// Package workdir manages the scratch directory used to exchange files with
// the external image codec.
package workdir

import (
	"os"
)

// ramBacked is preferred for codec scratch files to keep the decode/encode
// round trip off disk.
const ramBacked = "/dev/shm"

// Dir is a temporary working directory removed by Close.
type Dir struct {
	path string
}

// New creates a working directory. If base is empty, a RAM-backed location
// is preferred when available, falling back to the system temp directory.
func New(base string) (*Dir, error) {
	if base == "" {
		if info, err := os.Stat(ramBacked); err == nil && info.IsDir() {
			base = ramBacked
		}
	}
	path, err := os.MkdirTemp(base, "ckptedit-*")
	if err != nil {
		return nil, err
	}
	return &Dir{path: path}, nil
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// Close removes the directory and everything in it.
func (d *Dir) Close() error {
	return os.RemoveAll(d.path)
}
