package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"tagwater/internal/config"
	"tagwater/internal/fileutil"
)

// ErrLocked is returned when another process holds the vault lock.
var ErrLocked = errors.New("vault is locked by another process")

const lockRetryDelay = 100 * time.Millisecond

// Vault stores file contents by entry ID.
type Vault struct {
	root       string
	storageDir string
	lockPath   string
	lock       *flock.Flock
}

// Open prepares the vault layout described by cfg.
func Open(cfg *config.Config) (*Vault, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return &Vault{
		root:       cfg.Paths.VaultDir,
		storageDir: cfg.StorageDir(),
		lockPath:   cfg.LockPath(),
		lock:       flock.New(cfg.LockPath()),
	}, nil
}

// Root returns the vault directory.
func (v *Vault) Root() string {
	return v.root
}

// PathFor returns the storage location of an entry's bytes.
func (v *Vault) PathFor(entryID int64, ext string) string {
	name := strconv.FormatInt(entryID, 10)
	if ext != "" {
		name += "." + ext
	}
	return filepath.Join(v.storageDir, name)
}

// Check reports whether path names a regular file the current process can
// read.
func (v *Vault) Check(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Store copies src into the vault under entryID. The source is left in place.
func (v *Vault) Store(src string, entryID int64, ext string) error {
	if _, err := fileutil.CopyVerified(src, v.PathFor(entryID, ext)); err != nil {
		return err
	}
	return nil
}

// Lock acquires the vault lock, waiting up to the context deadline. Without
// a deadline it fails immediately when the lock is held elsewhere.
func (v *Vault) Lock(ctx context.Context) error {
	var (
		ok  bool
		err error
	)
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		ok, err = v.lock.TryLockContext(ctx, lockRetryDelay)
	} else {
		ok, err = v.lock.TryLock()
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %s", ErrLocked, v.lockPath)
		}
		return fmt.Errorf("acquire vault lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLocked, v.lockPath)
	}
	return nil
}

// Unlock releases the vault lock.
func (v *Vault) Unlock() error {
	return v.lock.Unlock()
}
