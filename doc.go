// Package doublefork turns a foreground process into a daemon using the
// classic double-fork technique, and then runs a worker until a signal is
// caught.
//
// Usage
//
// The top-level package provides the following types:
// 	- Daemon
// 	- Config
//
// A Daemon is constructed with a worker.Worker. Calling Start detaches the
// process from its terminal and session:
//
// 	1. The original process forks and returns
// 	2. The first child becomes a session leader, forks again and returns
// 	3. The second child changes to the running directory, clears its
// 	   file mode creation mask and closes its standard streams
//
// Start returns nil in the original and the intermediate process. Both are
// expected to exit. In the daemon process, Start starts the worker and
// calls its Work method until a signal is caught.
//
// Gotchas
//
// Go programs cannot fork their runtime, so the process.System used by
// default re-executes the current executable for each fork. Everything that
// runs before Start (flag parsing, configuration, constructing the Daemon)
// runs again in every process. It must be deterministic, and it must not
// have side effects that cannot be repeated.
//
// The daemon closes its standard streams and does not reopen them on
// /dev/null. Files opened afterwards reuse descriptors 0, 1 and 2: the pid
// file lock usually takes descriptor 0, and the worker's first file takes
// descriptor 1. The Go runtime writes fatal error traces to descriptor 2,
// so they end up in whichever file holds it.
//
// The 'doublefork/control' subpackage queries and stops a running daemon
// through its pid file. Please review its package documentation for more
// information.
package doublefork
