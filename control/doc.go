// Package control provides functionality for managing a running daemon.
//
// The control subpackage provides the following interface:
// 	- Controller
//
// The Controller is used to query a daemon's status and to stop it. The
// implementation returned by NewController inspects the pid file that a
// daemon locks for as long as it runs:
// 	- A locked pid file means the daemon is running
// 	- An empty, unlocked pid file means the daemon stopped cleanly
// 	- An unlocked pid file that still holds a pid means the daemon
// 	  died without cleaning up
//
// A Controller is configured using the ControllerConfig struct.
package control
