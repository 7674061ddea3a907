package control

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
)

const stopPollInterval = 50 * time.Millisecond

type pidFileController struct {
	config ControllerConfig
}

// NewController returns a Controller for the daemon that locks
// config.PidFilePath.
func NewController(config ControllerConfig) (Controller, error) {
	err := config.Validate()
	if err != nil {
		return nil, err
	}

	if config.StopTimeout == 0 {
		config.StopTimeout = DefaultStopTimeout
	}

	return &pidFileController{
		config: config,
	}, nil
}

func (o *pidFileController) Status() (Status, error) {
	status, _, err := o.inspect()
	return status, err
}

func (o *pidFileController) Stop() error {
	status, pid, err := o.inspect()
	if err != nil {
		return err
	}

	if status != Running {
		return fmt.Errorf("'%s' is %s - %w", o.config.DaemonID, status.String(), ErrNotRunning)
	}

	p, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d - %w", pid, err)
	}

	err = p.Signal(syscall.SIGTERM)
	if err != nil {
		return fmt.Errorf("failed to signal process %d - %w", pid, err)
	}

	deadline := time.Now().Add(o.config.StopTimeout)
	for {
		status, _, err = o.inspect()
		if err != nil {
			return err
		}

		if status != Running {
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("'%s' (pid %d) did not stop within %s",
				o.config.DaemonID, pid, o.config.StopTimeout)
		}

		time.Sleep(stopPollInterval)
	}
}

// inspect returns the daemon's status and, if the pid file holds one,
// the pid it recorded.
func (o *pidFileController) inspect() (Status, int, error) {
	contents, err := os.ReadFile(o.config.PidFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Unknown, 0, nil
		}

		return Unknown, 0, fmt.Errorf("failed to read pid file - %w", err)
	}

	pid := 0
	raw := strings.TrimSpace(string(contents))
	if len(raw) > 0 {
		pid, err = strconv.Atoi(raw)
		if err != nil || pid <= 0 {
			return Unknown, 0, fmt.Errorf("pid file '%s' holds an invalid pid '%s'", o.config.PidFilePath, raw)
		}
	}

	// A shared lock keeps concurrent status checks from conflicting with
	// each other. The daemon retries its exclusive lock for a short while,
	// so holding this one for a moment does not make it fail.
	lock := flock.New(o.config.PidFilePath)
	locked, err := lock.TryRLock()
	if err != nil {
		return Unknown, 0, fmt.Errorf("failed to check pid file lock - %w", err)
	}

	if !locked {
		if pid == 0 {
			// Locked, but the pid has not been written yet.
			return Unknown, 0, nil
		}

		return Running, pid, nil
	}

	lock.Unlock()

	if pid == 0 {
		return Stopped, 0, nil
	}

	return StoppedDead, pid, nil
}
