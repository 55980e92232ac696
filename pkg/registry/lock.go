package registry

import (
	"fmt"
	"os"
	"time"

	"github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/logging"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

const lockSuffix = ".lock"

// lockStaleAfter is how old a lock file may get before it is considered
// abandoned (a crashed invocation) and broken. CLI mutations finish in
// well under this.
const lockStaleAfter = 10 * time.Minute

// FileLock is an exclusive advisory lock backed by a lock file beside
// the registry document. Registry mutation commands are single-writer:
// they hold this lock across their read-modify-write cycle.
type FileLock struct {
	fs   types.FS
	path string
}

// NewFileLock creates a lock at the given path.
func NewFileLock(fs types.FS, path string) *FileLock {
	return &FileLock{fs: fs, path: path}
}

// Acquire takes the lock. Fails with LOCKED when another invocation
// holds a fresh lock file; stale lock files are broken and replaced.
func (l *FileLock) Acquire() error {
	if info, err := l.fs.Stat(l.path); err == nil {
		if time.Since(info.ModTime()) < lockStaleAfter {
			return errors.Newf(errors.ErrLocked,
				"registry is locked by another dotkeep invocation (%s)", l.path)
		}
		log := logging.GetLogger("registry")
		log.Warn().
			Str("lock", l.path).
			Msg("breaking stale registry lock")
		_ = l.fs.Remove(l.path)
	}
	content := fmt.Sprintf("%d\n", os.Getpid())
	if err := l.fs.WriteFile(l.path, []byte(content), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to create lock %s", l.path)
	}
	return nil
}

// Release removes the lock file.
func (l *FileLock) Release() error {
	if err := l.fs.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrIO, "failed to remove lock %s", l.path)
	}
	return nil
}
