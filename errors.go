package doublefork

import (
	"errors"
)

// ErrAlreadyRunning is returned when the daemon's pid file is locked by
// another process.
var ErrAlreadyRunning = errors.New("another daemon instance is already running")

// DaemonError is returned when daemonization fails. Step is the step that
// failed and Err is its cause.
type DaemonError struct {
	Step Step
	Err  error
}

func (o *DaemonError) Error() string {
	msg := "failed to daemonize at step '" + o.Step.string() + "'"
	if o.Err != nil {
		msg = msg + " - " + o.Err.Error()
	}

	return msg
}

func (o *DaemonError) Unwrap() error {
	return o.Err
}
