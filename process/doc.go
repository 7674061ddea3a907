// Package process wraps the operating system's process-control primitives.
//
// The package provides the following types:
// 	- Controller
// 	- System
// 	- Handler
//
// A Controller tracks the state of the current process image (whether it
// forked, and which side of the fork it is on) and validates the outcome of
// every primitive it calls. Each failed primitive is reported as one of the
// typed errors in this package (ForkError, WaitError or ProcessError).
//
// The System interface is the layer of raw operating system calls the
// Controller is built on. NewSystem returns the real implementation. Tests
// and callers that need to observe the sequence of calls can substitute
// their own.
//
// Forking
//
// The Go runtime is multi-threaded, and a forked copy of it only receives
// the calling thread. The real System therefore "forks" by re-executing the
// current executable. Each image carries its fork generation in the
// GenerationEnv environment variable. When the new image reaches the same
// Fork call, the call returns the child side of the fork instead of starting
// yet another process. Code that runs before a Fork call must be
// deterministic so every image reaches the same call.
//
// Signals
//
// Signal callbacks are never installed as operating system handlers. The
// Controller registers an internal channel for the signal, and pending
// deliveries are handed to the callbacks when DispatchSignals is called.
package process
