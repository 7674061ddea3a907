package doublefork

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gofrs/flock"
)

const (
	pidFilePerm = 0644

	// A status check holds the lock for a moment. Retry for a little
	// while before deciding that another daemon owns the pid file.
	pidFileLockTimeout = 500 * time.Millisecond
	pidFileLockRetry   = 25 * time.Millisecond
)

// pidFile is a pid file that stays locked for as long as the daemon runs.
type pidFile struct {
	path string
	lock *flock.Flock
}

func newPidFile(path string) *pidFile {
	return &pidFile{
		path: path,
		lock: flock.New(path),
	}
}

func (o *pidFile) acquire(pid int) error {
	ctx, cancel := context.WithTimeout(context.Background(), pidFileLockTimeout)
	defer cancel()

	locked, err := o.lock.TryLockContext(ctx, pidFileLockRetry)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed to lock pid file '%s' - %w", o.path, err)
	}

	if !locked {
		return fmt.Errorf("pid file '%s' is locked - %w", o.path, ErrAlreadyRunning)
	}

	err = os.WriteFile(o.path, []byte(strconv.Itoa(pid)+"\n"), pidFilePerm)
	if err != nil {
		o.lock.Unlock()
		return fmt.Errorf("failed to write daemon pid to pid file - %w", err)
	}

	return nil
}

// release empties the pid file, so readers know the daemon stopped
// cleanly, and unlocks it.
func (o *pidFile) release() error {
	err := os.Truncate(o.path, 0)
	if err != nil {
		o.lock.Unlock()
		return fmt.Errorf("failed to truncate pid file - %w", err)
	}

	return o.lock.Unlock()
}
