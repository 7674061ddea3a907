// Package testsupport provides fakes shared by the module's tests.
package testsupport

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/stephen-fox/doublefork/process"
)

// ForkOutcome is the result returned by one System.Fork call.
type ForkOutcome struct {
	Result process.ForkResult
	Err    error
}

// Stream is a fake standard stream.
type Stream struct {
	Name     string
	CloseErr error
	Closed   bool
}

func (o *Stream) Close() error {
	if o.CloseErr != nil {
		return o.CloseErr
	}

	o.Closed = true

	return nil
}

func (o *Stream) String() string {
	return o.Name
}

// System is a process.System that records every call and never touches
// the process state of the test binary. Stat uses the real file system so
// tests can point it at temporary files and directories.
type System struct {
	Forks []ForkOutcome

	WaitPID    int
	WaitStatus int
	WaitErr    error

	SessionID int
	SetsidErr error

	// Unreadable lists paths for which Access fails.
	Unreadable map[string]bool
	ChdirErr   error
	Cwd        string

	Mask int
	// StuckMask makes Umask report changes without applying them.
	StuckMask bool

	Stdin  *Stream
	Stdout *Stream
	Stderr *Stream

	NotifyErr error
	Notified  map[syscall.Signal]chan<- os.Signal
	Ignored   []syscall.Signal
	Defaulted []syscall.Signal
	Stopped   bool

	Calls []string
}

// NewSystem returns a System with a 022 mask, "/" as the current
// directory, and open standard streams.
func NewSystem() *System {
	return &System{
		SessionID:  1000,
		Unreadable: make(map[string]bool),
		Cwd:        "/",
		Mask:       0o022,
		Stdin:      &Stream{Name: "stdin"},
		Stdout:     &Stream{Name: "stdout"},
		Stderr:     &Stream{Name: "stderr"},
		Notified:   make(map[syscall.Signal]chan<- os.Signal),
	}
}

// QueueForks appends fork results, consumed in order by Fork.
func (o *System) QueueForks(results ...process.ForkResult) *System {
	for _, result := range results {
		o.Forks = append(o.Forks, ForkOutcome{Result: result})
	}

	return o
}

// Deliver simulates the operating system delivering sig.
func (o *System) Deliver(sig syscall.Signal) bool {
	c, ok := o.Notified[sig]
	if !ok {
		return false
	}

	c <- sig

	return true
}

// Called reports whether op was called.
func (o *System) Called(op string) bool {
	for _, call := range o.Calls {
		if call == op {
			return true
		}
	}

	return false
}

func (o *System) record(op string) {
	o.Calls = append(o.Calls, op)
}

func (o *System) Fork() (process.ForkResult, error) {
	o.record("fork")
	if len(o.Forks) == 0 {
		return process.ForkResult{}, errors.New("no fork outcome queued")
	}

	next := o.Forks[0]
	o.Forks = o.Forks[1:]

	return next.Result, next.Err
}

func (o *System) Wait(pid int, options int) (int, int, error) {
	o.record("wait")
	if o.WaitErr != nil {
		return -1, 0, o.WaitErr
	}

	return o.WaitPID, o.WaitStatus, nil
}

func (o *System) Setsid() (int, error) {
	o.record("setsid")
	if o.SetsidErr != nil {
		return -1, o.SetsidErr
	}

	return o.SessionID, nil
}

func (o *System) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

func (o *System) Access(path string) error {
	if o.Unreadable[path] {
		return fmt.Errorf("access '%s' - %w", path, os.ErrPermission)
	}

	return nil
}

func (o *System) Chdir(path string) error {
	o.record("chdir")
	if o.ChdirErr != nil {
		return o.ChdirErr
	}

	o.Cwd = path

	return nil
}

func (o *System) Getwd() (string, error) {
	return o.Cwd, nil
}

func (o *System) Umask(mask int) int {
	before := o.Mask
	if !o.StuckMask {
		o.Mask = mask
	}

	return before
}

func (o *System) Streams() (io.Closer, io.Closer, io.Closer) {
	return o.Stdin, o.Stdout, o.Stderr
}

func (o *System) Notify(c chan<- os.Signal, sig syscall.Signal) error {
	o.record("notify")
	if o.NotifyErr != nil {
		return o.NotifyErr
	}

	o.Notified[sig] = c

	return nil
}

func (o *System) Ignore(sig syscall.Signal) error {
	o.Ignored = append(o.Ignored, sig)

	return nil
}

func (o *System) Reset(sig syscall.Signal) error {
	o.Defaulted = append(o.Defaulted, sig)

	return nil
}

func (o *System) StopNotify(c chan<- os.Signal) {
	o.Stopped = true
}
