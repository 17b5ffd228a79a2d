// Package lock serializes index recreation across local processes.
package lock

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/Aman-CERP/ftmodel/internal/errors"
)

// RetryDelay is how often a blocked Lock polls.
const RetryDelay = 50 * time.Millisecond

// FileLock is an exclusive cross-process lock backed by gofrs/flock.
type FileLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// DefaultDir returns ~/.ftmodel/locks, or a temp directory without a home.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".ftmodel", "locks")
	}
	return filepath.Join(home, ".ftmodel", "locks")
}

// New creates a lock on path. Nothing is touched until Lock or TryLock.
func New(path string) *FileLock {
	return &FileLock{path: path, flock: flock.New(path)}
}

// ForIndex returns the lock guarding index under dir.
func ForIndex(dir, index string) *FileLock {
	name := strings.NewReplacer("/", "_", string(os.PathSeparator), "_").Replace(index)
	return New(filepath.Join(dir, name+".lock"))
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.path
}

// Locked reports whether this FileLock holds the lock.
func (l *FileLock) Locked() bool {
	return l.locked
}

// Lock blocks until the lock is acquired or ctx is done.
func (l *FileLock) Lock(ctx context.Context) error {
	if err := l.ensureDir(); err != nil {
		return err
	}

	ok, err := l.flock.TryLockContext(ctx, RetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return errors.New(errors.ErrCodeLockFailed, "timed out waiting for lock "+l.path, ctx.Err()).
				WithSuggestion("Another ftmodel process is recreating this index; retry when it finishes")
		}
		return errors.New(errors.ErrCodeLockFailed, "failed to acquire lock "+l.path, err)
	}
	if !ok {
		return errors.New(errors.ErrCodeLockFailed, "failed to acquire lock "+l.path, nil)
	}
	l.locked = true
	return nil
}

// TryLock acquires the lock without blocking.
// It returns false when another process holds it.
func (l *FileLock) TryLock() (bool, error) {
	if err := l.ensureDir(); err != nil {
		return false, err
	}

	ok, err := l.flock.TryLock()
	if err != nil {
		return false, errors.New(errors.ErrCodeLockFailed, "failed to acquire lock "+l.path, err)
	}
	l.locked = ok
	return ok, nil
}

// Unlock releases the lock. Unlocking an unheld lock is a no-op.
func (l *FileLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return errors.New(errors.ErrCodeLockFailed, "failed to release lock "+l.path, err)
	}
	return nil
}

func (l *FileLock) ensureDir() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return errors.New(errors.ErrCodeLockFailed, "failed to create lock directory", err)
	}
	return nil
}
