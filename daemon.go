package doublefork

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/stephen-fox/doublefork/process"
	"github.com/stephen-fox/doublefork/worker"
)

// DefaultRunningDirectory is the directory a daemon changes to unless
// configured otherwise.
const DefaultRunningDirectory = string(os.PathSeparator)

// signalGate decides when the run loop stops and delivers pending signals.
type signalGate interface {
	CatchesSignal() bool
	DispatchSignals() int
}

// Daemon detaches the current process from its terminal and runs a worker.
// It embeds the process.Controller of the current process image.
type Daemon struct {
	*process.Controller
	worker           worker.Worker
	logger           *slog.Logger
	runningDirectory string
	pidFile          *pidFile
	role             Role
	gate             signalGate
}

// Option configures a Daemon.
type Option func(*options)

type options struct {
	system           process.System
	logger           *slog.Logger
	runningDirectory string
	pidFilePath      string
}

// WithSystem sets the process.System the Daemon uses. By default, the
// System returned by process.NewSystem is used.
func WithSystem(system process.System) Option {
	return func(o *options) {
		o.system = system
	}
}

// WithLogger sets the Daemon's logger. By default, the worker's logger is
// used. If the worker has none, log messages are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRunningDirectory sets the directory the daemon changes to.
func WithRunningDirectory(dir string) Option {
	return func(o *options) {
		o.runningDirectory = dir
	}
}

// WithPidFile makes the daemon lock path and write its pid to it once it
// has detached. The lock is held until Start returns.
func WithPidFile(path string) Option {
	return func(o *options) {
		o.pidFilePath = path
	}
}

// New returns a Daemon that runs w. Every signal w declares that has a
// callback is registered with the Daemon's process.Controller.
func New(w worker.Worker, opts ...Option) (*Daemon, error) {
	if w == nil {
		return nil, fmt.Errorf("worker is nil - %w", process.ErrInvalidArgument)
	}

	config := &options{
		runningDirectory: DefaultRunningDirectory,
	}
	for _, opt := range opts {
		opt(config)
	}

	if config.system == nil {
		config.system = process.NewSystem()
	}

	logger := config.logger
	if logger == nil {
		logger = w.Logger()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	d := &Daemon{
		Controller: process.NewController(config.system),
		worker:     w,
		logger:     logger,
	}
	d.gate = d.Controller

	for _, sig := range w.RegistrationSignals() {
		if !w.HasCallback(sig) {
			continue
		}

		err := d.RegisterSignal(sig, w.Callback(sig))
		if err != nil {
			return nil, err
		}
	}

	err := d.SetRunningDirectory(config.runningDirectory)
	if err != nil {
		return nil, err
	}

	if len(config.pidFilePath) > 0 {
		pidFilePath, err := filepath.Abs(config.pidFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve pid file path - %w", err)
		}

		d.pidFile = newPidFile(pidFilePath)
	}

	return d, nil
}

// SetRunningDirectory sets the directory the daemon changes to. The
// directory must exist and be readable.
func (o *Daemon) SetRunningDirectory(dir string) error {
	err := o.ValidateDirectory(dir)
	if err != nil {
		return fmt.Errorf("invalid running directory - %w", err)
	}

	o.runningDirectory = dir

	return nil
}

func (o *Daemon) RunningDirectory() string {
	return o.runningDirectory
}

func (o *Daemon) Worker() worker.Worker {
	return o.worker
}

// Role returns the role of the current process image in the most recent
// daemonization.
func (o *Daemon) Role() Role {
	return o.role
}

// IsDaemon reports whether the current process image completed the
// daemonization sequence.
func (o *Daemon) IsDaemon() bool {
	return o.role == RoleDaemon
}

// Daemonize performs the double fork. It returns nil in all three process
// images when it succeeds; use Role or IsDaemon to tell them apart. If any
// step fails, a *DaemonError is returned and IsDaemon is false.
func (o *Daemon) Daemonize() error {
	o.role = RoleNone

	role, step, err := o.daemonize()
	if err != nil {
		o.logger.Debug("daemonization failed",
			slog.String("step", step.string()),
			slog.String("error", err.Error()))
		return &DaemonError{Step: step, Err: err}
	}

	o.role = role
	o.logger.Debug("daemonization finished",
		slog.String("role", role.String()),
		slog.Int("pid", os.Getpid()))

	return nil
}

func (o *Daemon) daemonize() (Role, Step, error) {
	_, err := o.Fork()
	if err != nil {
		return RoleNone, StepFirstFork, err
	}

	if o.IsParentProcess() {
		return RoleOriginal, "", nil
	}

	// A session leader has no controlling terminal, but it could still
	// acquire one. The second fork makes sure the daemon is not a
	// session leader.
	_, err = o.BecomeSessionLeader()
	if err != nil {
		return RoleNone, StepSession, err
	}

	_, err = o.Fork()
	if err != nil {
		return RoleNone, StepSecondFork, err
	}

	if o.IsParentProcess() {
		o.MarkRole(false, true)
		return RoleIntermediate, "", nil
	}

	o.MarkRole(false, false)

	err = o.ChangeWorkingDirectory(o.runningDirectory)
	if err != nil {
		return RoleNone, StepChdir, err
	}

	_, err = o.SetFileModeCreationMask(0)
	if err != nil {
		return RoleNone, StepUmask, err
	}

	stdin, stdout, stderr := o.System().Streams()
	err = o.CloseStream(stdin)
	if err != nil {
		return RoleNone, StepCloseStdin, err
	}

	err = o.CloseStream(stdout)
	if err != nil {
		return RoleNone, StepCloseStdout, err
	}

	err = o.CloseStream(stderr)
	if err != nil {
		return RoleNone, StepCloseStderr, err
	}

	if o.pidFile != nil {
		err = o.pidFile.acquire(os.Getpid())
		if err != nil {
			return RoleNone, StepPidFile, err
		}
	}

	return RoleDaemon, "", nil
}

// Start daemonizes the current process. In the original and intermediate
// processes it returns nil right away, and the caller is expected to exit.
// In the daemon process it starts the worker and runs it until a signal
// is caught. Worker errors are returned unchanged.
func (o *Daemon) Start() error {
	err := o.Daemonize()
	if err != nil {
		return err
	}

	if !o.IsDaemon() {
		return nil
	}

	if o.pidFile != nil {
		defer o.pidFile.release()
	}

	err = o.worker.Start()
	if err != nil {
		return err
	}

	return o.Run()
}

// Stop stops the worker.
func (o *Daemon) Stop() error {
	return o.worker.Stop(o.CaughtSignal())
}

// Run calls the worker's Work method, followed by dispatching pending
// signals, until a signal has been caught.
func (o *Daemon) Run() error {
	for !o.gate.CatchesSignal() {
		err := o.worker.Work()
		if err != nil {
			return err
		}

		o.gate.DispatchSignals()
	}

	o.logger.Debug("signal caught, leaving run loop",
		slog.Int("signal", int(o.CaughtSignal())))

	return nil
}
