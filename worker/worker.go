// Package worker defines the contract between a daemon and the code it runs.
//
// A Worker is started once the daemon has detached, and its Work method is
// called repeatedly until a signal is caught. Workers declare the signals
// they want delivered by registering callbacks, usually through an embedded
// Base, before they are handed to a daemon.
package worker

import (
	"log/slog"
	"sort"
	"syscall"

	"github.com/stephen-fox/doublefork/process"
)

// Worker is the repeating task run by a daemon.
type Worker interface {
	// Logger returns the worker's logger, or nil if it has none.
	Logger() *slog.Logger

	// Start prepares the worker. It is called once, in the daemon
	// process, before the first call to Work.
	Start() error

	// Work performs one unit of the worker's task.
	Work() error

	// Stop shuts the worker down. sig is the signal that caused the
	// shutdown, or 0 if there was none.
	Stop(sig syscall.Signal) error

	// RegistrationSignals returns the signals the worker wants to
	// be delivered.
	RegistrationSignals() []syscall.Signal

	HasCallback(sig syscall.Signal) bool

	// Callback returns the callback for sig, or nil if there is none.
	Callback(sig syscall.Signal) process.Handler
}

// Base implements the callback and logger bookkeeping of a Worker.
// Embed it in a concrete worker and populate it with SetCallback before
// the worker is handed to a daemon.
type Base struct {
	logger    *slog.Logger
	callbacks map[syscall.Signal]process.Handler
}

func (o *Base) SetLogger(logger *slog.Logger) *Base {
	o.logger = logger

	return o
}

func (o *Base) Logger() *slog.Logger {
	return o.logger
}

// RegistrationSignals returns the signals that have a callback, in
// ascending order.
func (o *Base) RegistrationSignals() []syscall.Signal {
	signals := make([]syscall.Signal, 0, len(o.callbacks))
	for sig := range o.callbacks {
		signals = append(signals, sig)
	}

	sort.Slice(signals, func(i, j int) bool {
		return signals[i] < signals[j]
	})

	return signals
}

// HasCallback reports whether a non-nil callback is set for sig.
func (o *Base) HasCallback(sig syscall.Signal) bool {
	return o.callbacks[sig] != nil
}

func (o *Base) Callback(sig syscall.Signal) process.Handler {
	return o.callbacks[sig]
}

// SetCallback sets the callback for sig. The callback may also be one of
// the process.Ignore or process.Default dispositions.
func (o *Base) SetCallback(sig syscall.Signal, callback process.Handler) *Base {
	if o.callbacks == nil {
		o.callbacks = make(map[syscall.Signal]process.Handler)
	}

	o.callbacks[sig] = callback

	return o
}
