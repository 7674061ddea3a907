package control

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Unknown     Status = "unknown"
	Running     Status = "running"
	Stopped     Status = "stopped"
	StoppedDead Status = "stopped_dead"

	GetStatus Command = "status"
	Stop      Command = "stop"

	// DefaultStopTimeout is how long Stop waits for the daemon to
	// release its pid file when ControllerConfig.StopTimeout is zero.
	DefaultStopTimeout = 10 * time.Second
)

// ErrNotRunning is returned by Stop when the daemon is not running.
var ErrNotRunning = errors.New("daemon is not running")

// Status represents the status of a daemon.
type Status string

func (o Status) String() string {
	return string(o)
}

// Command represents a command that can be issued to a daemon Controller.
type Command string

func (o Command) string() string {
	return string(o)
}

// Controller is an interface for controlling the state of a daemon.
//
// Stopping a daemon requires permission to send it signals, so a daemon
// owned by another user can usually only be stopped by root.
type Controller interface {
	// Status returns the current status of the daemon.
	Status() (Status, error)

	// Stop stops the daemon.
	Stop() error
}

// ControllerConfig configures a daemon Controller.
type ControllerConfig struct {
	// DaemonID is the string used to identify a daemon in messages
	// (for example, "filewriter").
	DaemonID string

	// PidFilePath is the pid file the daemon locks while it runs.
	PidFilePath string

	// StopTimeout is how long Stop waits for the daemon to exit.
	// DefaultStopTimeout is used if it is zero.
	StopTimeout time.Duration
}

func (o ControllerConfig) Validate() error {
	if len(o.DaemonID) == 0 {
		return fmt.Errorf("daemon id must be provided to controller config")
	}

	if len(o.PidFilePath) == 0 {
		return fmt.Errorf("pid file path must be provided to controller config")
	}

	if o.StopTimeout < 0 {
		return fmt.Errorf("stop timeout cannot be negative")
	}

	return nil
}

// SupportedCommandsString returns a printable string that represents a list of
// supported daemon control commands.
func SupportedCommandsString() string {
	return fmt.Sprintf("'%s'", strings.Join(SupportedCommands(), "', '"))
}

// SupportedCommands returns a slice of supported daemon control commands.
func SupportedCommands() []string {
	return []string{
		GetStatus.string(),
		Stop.string(),
	}
}

// Execute executes a control command using the provided daemon controller.
// This helper function is used to turn raw user input (a command line
// argument, for example) into a Controller execution. The function returns
// any information that is associated with the Controller execution (e.g.,
// the status of the daemon).
func Execute(command Command, controller Controller) (output string, err error) {
	switch command {
	case GetStatus:
		status, err := controller.Status()
		if err != nil {
			return "", fmt.Errorf("failed to get daemon status - %w", err)
		}

		return status.String(), nil
	case Stop:
		err := controller.Stop()
		if err != nil {
			return "", fmt.Errorf("failed to stop daemon - %w", err)
		}

		return "", nil
	}

	return "", fmt.Errorf("unknown daemon command '%s'", command.string())
}
