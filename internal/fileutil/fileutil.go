package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const tempPattern = ".*.partial"

// AtomicFile is a temporary sibling of a destination path. Nothing is visible
// at the destination until Commit renames the temporary file into place.
type AtomicFile struct {
	file    *os.File
	dest    string
	written int64
	done    bool
}

// CreateAtomic opens a temporary file next to dest, creating the parent
// directory if needed.
func CreateAtomic(dest string) (*AtomicFile, error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+tempPattern)
	if err != nil {
		return nil, fmt.Errorf("create temp file for %q: %w", dest, err)
	}
	return &AtomicFile{file: tmp, dest: dest}, nil
}

// Write records the number of bytes written so Commit can verify sizes.
func (a *AtomicFile) Write(p []byte) (int, error) {
	n, err := a.file.Write(p)
	a.written += int64(n)
	return n, err
}

// Written reports the bytes written so far.
func (a *AtomicFile) Written() int64 {
	return a.written
}

// Name returns the temporary file path.
func (a *AtomicFile) Name() string {
	return a.file.Name()
}

// Dest returns the final destination path.
func (a *AtomicFile) Dest() string {
	return a.dest
}

// Commit syncs, closes, and renames the temporary file onto the destination.
func (a *AtomicFile) Commit() error {
	if a.done {
		return errors.New("atomic file already finished")
	}
	a.done = true
	if err := a.file.Sync(); err != nil {
		_ = a.file.Close()
		_ = os.Remove(a.Name())
		return fmt.Errorf("sync %q: %w", a.dest, err)
	}
	if err := a.file.Close(); err != nil {
		_ = os.Remove(a.Name())
		return fmt.Errorf("close %q: %w", a.dest, err)
	}
	if err := os.Chmod(a.Name(), 0o644); err != nil {
		_ = os.Remove(a.Name())
		return fmt.Errorf("chmod %q: %w", a.dest, err)
	}
	if err := os.Rename(a.Name(), a.dest); err != nil {
		_ = os.Remove(a.Name())
		return fmt.Errorf("rename into %q: %w", a.dest, err)
	}
	return nil
}

// Abort discards the temporary file. It is safe to call after Commit.
func (a *AtomicFile) Abort() {
	if a.done {
		return
	}
	a.done = true
	_ = a.file.Close()
	_ = os.Remove(a.Name())
}

// WriteAtomic streams write into a temporary file and renames it onto dest
// only when write succeeds.
func WriteAtomic(dest string, write func(io.Writer) error) error {
	file, err := CreateAtomic(dest)
	if err != nil {
		return err
	}
	defer file.Abort()
	if err := write(file); err != nil {
		return err
	}
	return file.Commit()
}

// NonEmptyFile reports whether path is a regular file with non-zero size.
func NonEmptyFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular() && info.Size() > 0, nil
}

// DirExists reports whether path is an existing directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
