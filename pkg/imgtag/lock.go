package imgtag

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"k8s.io/klog/v2"
)

// ErrLocked is returned when another process holds the directory lock.
var ErrLocked = errors.New("directory is locked by another imgtagman process")

// LockDir is where lock files are created. Defaults to the OS temp dir.
var LockDir = os.TempDir()

// DirLock serializes mutating runs against one directory.
type DirLock struct {
	path string
	lock *flock.Flock
}

// LockPath returns the lock file used for dir.
func LockPath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs: %w", err)
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(LockDir, "imgtagman-"+hex.EncodeToString(sum[:8])+".lock"), nil
}

// AcquireLock takes the lock for dir without blocking.
func AcquireLock(dir string) (*DirLock, error) {
	path, err := LockPath(dir)
	if err != nil {
		return nil, err
	}

	l := flock.New(path)
	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s (%s): %w", dir, path, ErrLocked)
	}
	klog.V(1).Infof("locked %s via %s", dir, path)
	return &DirLock{path: path, lock: l}, nil
}

// Release drops the lock.
func (d *DirLock) Release() error {
	if err := d.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
