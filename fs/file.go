// Package fs provides file-based storage for reports.
package fs

import (
	"os"
	"path/filepath"
)

// File is a report file with atomic update semantics. Writes go to a
// temporary file next to the target, which replaces the target on Commit.
// A previous report at the same path stays intact until then.
type File struct {
	path string
	tmp  *os.File
	done bool
}

// Create opens a temporary file for the report at path, creating parent
// directories as needed.
func Create(path string) (*File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, err
	}

	return &File{path: path, tmp: tmp}, nil
}

// Write writes to the temporary file.
func (f *File) Write(p []byte) (int, error) {
	return f.tmp.Write(p)
}

// Path returns the final path of the file.
func (f *File) Path() string {
	return f.path
}

// Commit moves the temporary file to the final path.
func (f *File) Commit() error {
	if f.done {
		return nil
	}
	f.done = true

	if err := f.tmp.Close(); err != nil {
		_ = os.Remove(f.tmp.Name())
		return err
	}
	if err := os.Chmod(f.tmp.Name(), 0644); err != nil {
		_ = os.Remove(f.tmp.Name())
		return err
	}
	return os.Rename(f.tmp.Name(), f.path)
}

// Abort discards the temporary file. Abort after Commit is a no-op.
func (f *File) Abort() error {
	if f.done {
		return nil
	}
	f.done = true

	_ = f.tmp.Close()
	return os.Remove(f.tmp.Name())
}
