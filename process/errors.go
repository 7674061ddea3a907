package process

import (
	"errors"
	"strconv"
)

var (
	// ErrInvalidArgument is wrapped by errors caused by a bad argument,
	// such as a nil signal handler or a running directory that is not
	// a directory.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupported is returned by System implementations for
	// platforms without the required primitives.
	ErrUnsupported = errors.New("process control is not supported on this platform")
)

// ForkError is returned when the operating system fails to create a child
// process. No child exists when this error is returned.
type ForkError struct {
	Err error
}

func (o *ForkError) Error() string {
	if o.Err == nil {
		return "failed to fork"
	}

	return "failed to fork - " + o.Err.Error()
}

func (o *ForkError) Unwrap() error {
	return o.Err
}

// WaitError is returned when waiting for a child process fails.
type WaitError struct {
	PID int
	Err error
}

func (o *WaitError) Error() string {
	msg := "failed to wait for pid " + strconv.Itoa(o.PID)
	if o.Err != nil {
		msg = msg + " - " + o.Err.Error()
	}

	return msg
}

func (o *WaitError) Unwrap() error {
	return o.Err
}

// ProcessError is returned when a single process-control step fails.
// Op names the step (for example "change directory" or "set sid").
type ProcessError struct {
	Op     string
	Reason string
	Err    error
}

func (o *ProcessError) Error() string {
	msg := "failed to " + o.Op
	if len(o.Reason) > 0 {
		msg = msg + ". " + o.Reason
	}

	if o.Err != nil {
		msg = msg + " - " + o.Err.Error()
	}

	return msg
}

func (o *ProcessError) Unwrap() error {
	return o.Err
}
