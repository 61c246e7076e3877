// Package filelock provides a simple file-based mutual exclusion lock used
// to keep two export runs from writing into the same output directory at
// the same time, even across processes.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// ErrLockHeld is returned when attempting to acquire a lock that is already held.
var ErrLockHeld = fmt.Errorf("lock already held")

// Lock represents a held directory lock.
type Lock struct {
	path string
}

const lockFileName = ".yoyo-export.lock"

// AcquireDir attempts to take an exclusive lock on the given directory by
// creating a lock file inside it. The holder's PID is written into the file
// to aid debugging a stuck lock. Returns ErrLockHeld if another run holds it.
func AcquireDir(dir string) (*Lock, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	lockPath := filepath.Join(absDir, lockFileName)

	// O_EXCL ensures that this call creates the file - if it already exists,
	// another run owns the directory.
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrLockHeld
		}
		return nil, fmt.Errorf("failed to create lock file: %w", err)
	}
	_, _ = f.WriteString(strconv.Itoa(os.Getpid()))
	if err := f.Close(); err != nil {
		os.Remove(lockPath)
		return nil, fmt.Errorf("failed to write lock file: %w", err)
	}

	return &Lock{path: lockPath}, nil
}

// Release removes the lock file. Safe to call more than once.
func (l *Lock) Release() {
	if l.path == "" {
		return
	}
	os.Remove(l.path)
	l.path = ""
}
