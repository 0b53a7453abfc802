// Package vfs provides the file-descriptor abstraction the data-file reader
// and writer are built against, so tests can substitute an in-memory
// implementation without touching the real filesystem.
package vfs

import (
	"io"
	"os"
)

// FD is a single open file: positioned reads and writes, a durability
// barrier, and a close. The data/sma/head/tomb files of a file group are
// each opened as one FD.
type FD interface {
	io.ReaderAt
	io.WriterAt
	io.Closer

	// Truncate resizes the file, cutting it short or zero-extending it.
	Truncate(size int64) error

	// Fsync flushes file content and metadata to stable storage.
	Fsync() error

	// Size returns the current file size.
	Size() (int64, error)
}

// FS opens the files a file group is made of.
type FS interface {
	// Create creates a new file, truncating it if it already exists.
	Create(name string) (FD, error)

	// Open opens an existing file read/write.
	Open(name string) (FD, error)

	// OpenReadOnly opens an existing file for reads only.
	OpenReadOnly(name string) (FD, error)

	// Exists reports whether name refers to an existing file.
	Exists(name string) bool

	// Remove deletes name. Missing files are not an error.
	Remove(name string) error

	// Rename atomically replaces newname with oldname's contents.
	Rename(oldname, newname string) error
}

// osFS implements FS on top of the real filesystem.
type osFS struct{}

// Default returns the real OS filesystem.
func Default() FS { return osFS{} }

func (osFS) Create(name string) (FD, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return &osFD{f: f}, nil
}

func (osFS) Open(name string) (FD, error) {
	f, err := os.OpenFile(name, os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	return &osFD{f: f}, nil
}

func (osFS) OpenReadOnly(name string) (FD, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return &osFD{f: f}, nil
}

func (osFS) Exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

func (osFS) Remove(name string) error {
	err := os.Remove(name)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (osFS) Rename(oldname, newname string) error {
	return os.Rename(oldname, newname)
}

type osFD struct {
	f *os.File
}

func (d *osFD) ReadAt(p []byte, off int64) (int, error)  { return d.f.ReadAt(p, off) }
func (d *osFD) WriteAt(p []byte, off int64) (int, error) { return d.f.WriteAt(p, off) }
func (d *osFD) Close() error                             { return d.f.Close() }
func (d *osFD) Truncate(size int64) error                { return d.f.Truncate(size) }
func (d *osFD) Fsync() error                             { return d.f.Sync() }

func (d *osFD) Size() (int64, error) {
	info, err := d.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
