package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// lockFile guards the state directory against concurrent processes.
// Two parlor processes sharing one state directory are the terminal
// analog of two browser tabs sharing localStorage.
const lockFile = ".lock"

// File is a KV backed by one file per key inside a state directory.
//
// Writes are atomic (temp file + rename) and every operation takes an
// exclusive advisory lock on <dir>/.lock. The lock scopes one operation:
// single reads and writes never tear, but a read-modify-write built from
// separate Get and Set calls is not atomic across processes, and the last
// writer wins.
type File struct {
	dir  string
	lock *flock.Flock
}

// NewFile creates a file-backed KV rooted at dir, creating the directory
// if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	return &File{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, lockFile)),
	}, nil
}

// Dir returns the state directory this store is rooted at.
func (f *File) Dir() string { return f.dir }

func (f *File) path(key string) string {
	return filepath.Join(f.dir, key)
}

func (f *File) withLock(fn func() error) error {
	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("locking state directory: %w", err)
	}
	defer func() { _ = f.lock.Unlock() }()
	return fn()
}

// Get implements KV.
func (f *File) Get(key string) (string, bool, error) {
	if !validKey(key) {
		return "", false, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	var data []byte
	err := f.withLock(func() error {
		var readErr error
		data, readErr = os.ReadFile(f.path(key))
		return readErr
	})
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading key %q: %w", key, err)
	}
	return string(data), true, nil
}

// Set implements KV. The value is written to a temp file in the same
// directory and renamed into place, so readers never observe a torn write.
func (f *File) Set(key, value string) error {
	if !validKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	return f.withLock(func() error {
		tmp, err := os.CreateTemp(f.dir, key+".tmp-*")
		if err != nil {
			return fmt.Errorf("creating temp file for key %q: %w", key, err)
		}
		tmpName := tmp.Name()

		if _, err := tmp.WriteString(value); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
			return fmt.Errorf("writing key %q: %w", key, err)
		}
		if err := tmp.Close(); err != nil {
			_ = os.Remove(tmpName)
			return fmt.Errorf("closing temp file for key %q: %w", key, err)
		}
		if err := os.Rename(tmpName, f.path(key)); err != nil {
			_ = os.Remove(tmpName)
			return fmt.Errorf("committing key %q: %w", key, err)
		}
		return nil
	})
}

// Remove implements KV.
func (f *File) Remove(key string) error {
	if !validKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	return f.withLock(func() error {
		if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing key %q: %w", key, err)
		}
		return nil
	})
}

// Clear implements KV. It deletes every key file but leaves the directory
// and lock file in place.
func (f *File) Clear() error {
	return f.withLock(func() error {
		entries, err := os.ReadDir(f.dir)
		if err != nil {
			return fmt.Errorf("listing state directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || entry.Name() == lockFile {
				continue
			}
			if err := os.Remove(filepath.Join(f.dir, entry.Name())); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing %q: %w", entry.Name(), err)
			}
		}
		return nil
	})
}

// Compile-time interface verification.
var _ KV = (*File)(nil)
