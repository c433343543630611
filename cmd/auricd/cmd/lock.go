package cmd

import (
	"os"
	"syscall"

	"auric/config"

	"github.com/pkg/errors"
)

// acquireHomeDirLock takes an exclusive, non-blocking flock on homeDir's
// lock file so a second auricd pointed at the same home directory fails
// fast instead of corrupting the db/chain files underneath the first.
// The returned func releases the lock and should be deferred.
func acquireHomeDirLock(homeDir string) (func(), error) {
	path := config.ExpandLockPath(homeDir)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, errors.Wrap(err, "error opening lock file")
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		return nil, errors.New("another auricd instance is already running against this home directory")
	}

	return func() {
		syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
		f.Close()
	}, nil
}
