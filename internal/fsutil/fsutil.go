// Package fsutil holds the filesystem helpers shared by the build step:
// atomic file replacement and the IOError type that carries the offending
// path for every source or artifact access failure.
package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

// ErrIO is matched by every *IOError.
var ErrIO = errors.New("assetpipe: I/O failure")

// IOError reports a source or artifact file that could not be accessed.
type IOError struct {
	Op   string // "read", "write", "stat", "walk", "remove"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return "assetpipe: " + e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error { return e.Err }

// Is reports whether target is ErrIO.
func (e *IOError) Is(target error) bool { return target == ErrIO }

// Wrap returns err wrapped in an *IOError, or nil if err is nil.
func Wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return err
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// ReadFile reads path and wraps failures in an *IOError.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, Wrap("read", path, err)
	}
	return data, nil
}

// WriteFileAtomic writes data to a temporary file in the destination
// directory, syncs it, and renames it over path. Readers observe either the
// previous content or the new content, never a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Wrap("write", path, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return Wrap("write", path, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return Wrap("write", path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return Wrap("write", path, err)
	}
	if err := tmp.Sync(); err != nil {
		return Wrap("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		return Wrap("write", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return Wrap("write", path, err)
	}
	committed = true
	return syncDir(dir)
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func syncDir(dir string) error {
	// Directory handles cannot be synced on Windows.
	if runtime.GOOS == "windows" {
		return nil
	}
	d, err := os.Open(dir)
	if err != nil {
		return Wrap("write", dir, err)
	}
	defer func() { _ = d.Close() }()
	if err := d.Sync(); err != nil {
		return Wrap("write", dir, err)
	}
	return nil
}
