package process

import (
	"fmt"
	"io"
	"os"
	"syscall"
)

const pendingSignalsBuffer = 32

// Controller controls the current process image through a System.
//
// A Controller is owned by exactly one process image. Forking copies the
// logical state into the new image, and each image then updates its own
// copy. A Controller is not safe for concurrent use.
type Controller struct {
	system          System
	isParent        bool
	isChild         bool
	isForked        bool
	childPID        int
	waitStatus      int
	caughtSignal    syscall.Signal
	handlingSignals map[syscall.Signal]Handler
	pending         chan os.Signal
}

// NewController returns a Controller for the current process image. The
// image starts out as a parent that has not forked.
func NewController(system System) *Controller {
	return &Controller{
		system:          system,
		isParent:        true,
		handlingSignals: make(map[syscall.Signal]Handler),
	}
}

// System returns the System the Controller uses.
func (o *Controller) System() System {
	return o.system
}

// Fork forks the current process image. On success, IsParentProcess
// is true in the calling image and IsChildProcess is true in the new one.
func (o *Controller) Fork() (ForkResult, error) {
	result, err := o.system.Fork()
	if err != nil {
		return ForkResult{}, &ForkError{Err: err}
	}

	if !result.IsChild() && !result.IsParent() {
		return ForkResult{}, &ForkError{Err: fmt.Errorf("fork reported pid %d", result.PID())}
	}

	o.isForked = true
	o.isChild = result.IsChild()
	o.isParent = result.IsParent()
	if o.isParent {
		o.childPID = result.PID()
	}

	return result, nil
}

// IsForked reports whether this process image has forked, or was created
// by a fork.
func (o *Controller) IsForked() bool {
	return o.isForked
}

func (o *Controller) IsParentProcess() bool {
	return o.isParent
}

func (o *Controller) IsChildProcess() bool {
	return o.isChild
}

// ChildPID returns the pid of the child created by the most recent fork
// in which this image was the parent, or 0 if there is none.
func (o *Controller) ChildPID() int {
	return o.childPID
}

// MarkRole overrides the parent and child flags of this image. It is used
// by orchestration code that knows more about the image's role than the
// last fork result does.
func (o *Controller) MarkRole(parent bool, child bool) {
	o.isParent = parent
	o.isChild = child
}

// WaitForChild waits for the child identified by pid (-1 for any child)
// and returns the pid of the child whose state changed. It blocks unless
// options includes NoHang, in which case 0 is returned when no child has
// changed state.
func (o *Controller) WaitForChild(pid int, options int) (int, error) {
	wpid, status, err := o.system.Wait(pid, options)
	if err != nil {
		return -1, &WaitError{PID: pid, Err: err}
	}

	if wpid < 0 {
		return -1, &WaitError{PID: pid, Err: fmt.Errorf("wait reported pid %d", wpid)}
	}

	o.waitStatus = status

	return wpid, nil
}

// WaitStatus returns the raw status reported by the last successful
// WaitForChild call.
func (o *Controller) WaitStatus() int {
	return o.waitStatus
}

// BecomeSessionLeader creates a new session with this image as its leader
// and returns the session id. It fails if the image is already a process
// group leader.
func (o *Controller) BecomeSessionLeader() (int, error) {
	sid, err := o.system.Setsid()
	if err != nil {
		return -1, &ProcessError{
			Op:     "set sid",
			Reason: fmt.Sprintf("pid=[%d]", os.Getpid()),
			Err:    err,
		}
	}

	return sid, nil
}

// ValidateDirectory returns an error wrapping ErrInvalidArgument unless
// path is an existing, readable directory.
func (o *Controller) ValidateDirectory(path string) error {
	info, err := o.system.Stat(path)
	if err != nil {
		return fmt.Errorf("'%s' does not exist - %w", path, ErrInvalidArgument)
	}

	if !info.IsDir() {
		return fmt.Errorf("'%s' is not a directory - %w", path, ErrInvalidArgument)
	}

	err = o.system.Access(path)
	if err != nil {
		return fmt.Errorf("'%s' is not readable - %w", path, ErrInvalidArgument)
	}

	return nil
}

// ChangeWorkingDirectory changes the current directory to path. The
// directory is validated before the change is attempted, and the current
// directory is left as is on failure.
func (o *Controller) ChangeWorkingDirectory(path string) error {
	err := o.ValidateDirectory(path)
	if err != nil {
		return &ProcessError{Op: "change directory", Err: err}
	}

	err = o.system.Chdir(path)
	if err != nil {
		actual, _ := o.system.Getwd()
		return &ProcessError{
			Op:     "change directory",
			Reason: fmt.Sprintf("expects=[%s], actual=[%s]", path, actual),
			Err:    err,
		}
	}

	return nil
}

// FileModeCreationMask returns the current file mode creation mask.
func (o *Controller) FileModeCreationMask() int {
	current := o.system.Umask(0)
	o.system.Umask(current)

	return current
}

// SetFileModeCreationMask sets the file mode creation mask and returns
// the previous one.
//
// The mask is read back after it is set. If it still equals the previous
// mask the change is reported as failed. This also happens when mask is
// equal to the mask that was already in effect.
func (o *Controller) SetFileModeCreationMask(mask int) (int, error) {
	before := o.system.Umask(mask)
	if o.FileModeCreationMask() == before {
		return before, &ProcessError{
			Op:     "change umask",
			Reason: fmt.Sprintf("expect=[%#o], before=[%#o]", mask, before),
		}
	}

	return before, nil
}

// CloseStream closes stream.
func (o *Controller) CloseStream(stream io.Closer) error {
	if stream == nil {
		return &ProcessError{Op: "close", Err: fmt.Errorf("stream is nil - %w", ErrInvalidArgument)}
	}

	err := stream.Close()
	if err != nil {
		return &ProcessError{Op: "close", Reason: fmt.Sprintf("descriptor=[%v]", stream), Err: err}
	}

	return nil
}

// RegisterSignal registers h for sig.
//
// If h is Ignore or Default, the corresponding disposition is applied and
// nothing is recorded. Otherwise the Controller's dispatcher is installed
// for sig and h is recorded, to be called by DispatchSignals.
func (o *Controller) RegisterSignal(sig syscall.Signal, h Handler) error {
	err := o.registerSignal(sig, h)
	if err != nil {
		return &ProcessError{
			Op:     "register signal",
			Reason: fmt.Sprintf("signal=[%d], callback=[%s]", int(sig), describeHandler(h)),
			Err:    err,
		}
	}

	return nil
}

func (o *Controller) registerSignal(sig syscall.Signal, h Handler) error {
	h, err := normalizeHandler(h)
	if err != nil {
		return err
	}

	if d, ok := h.(disposition); ok {
		if d == Ignore {
			return o.system.Ignore(sig)
		}

		return o.system.Reset(sig)
	}

	if o.pending == nil {
		o.pending = make(chan os.Signal, pendingSignalsBuffer)
	}

	err = o.system.Notify(o.pending, sig)
	if err != nil {
		return err
	}

	o.handlingSignals[sig] = h

	return nil
}

// HandleSignal records sig as caught and calls the handler registered
// for it, if any.
func (o *Controller) HandleSignal(sig syscall.Signal) {
	o.caughtSignal = sig

	h, ok := o.handlingSignals[sig]
	if !ok || isDisposition(h) {
		return
	}

	h.HandleSignal(sig)
}

// DispatchSignals handles every signal delivery that is pending, without
// blocking. It returns the number of deliveries handled.
func (o *Controller) DispatchSignals() int {
	if o.pending == nil {
		return 0
	}

	dispatched := 0
	for {
		select {
		case delivered := <-o.pending:
			sig, ok := delivered.(syscall.Signal)
			if !ok {
				continue
			}
			o.HandleSignal(sig)
			dispatched++
		default:
			return dispatched
		}
	}
}

// RegisteredSignals returns a copy of the registered signal handlers.
func (o *Controller) RegisteredSignals() map[syscall.Signal]Handler {
	snapshot := make(map[syscall.Signal]Handler, len(o.handlingSignals))
	for sig, h := range o.handlingSignals {
		snapshot[sig] = h
	}

	return snapshot
}

// CatchesSignal reports whether a signal has been caught.
func (o *Controller) CatchesSignal() bool {
	return o.caughtSignal != 0
}

// CaughtSignal returns the most recently caught signal, or 0.
func (o *Controller) CaughtSignal() syscall.Signal {
	return o.caughtSignal
}

// ReleaseSignals stops the delivery of signals to the dispatcher.
// Registered handlers are kept, but are no longer called for new
// deliveries.
func (o *Controller) ReleaseSignals() {
	if o.pending == nil {
		return
	}

	o.system.StopNotify(o.pending)
}
