package process

import (
	"io"
	"os"
	"syscall"
)

// GenerationEnv is the environment variable that tells a re-executed
// image how many forks its ancestors already performed.
const GenerationEnv = "DOUBLEFORK_GENERATION"

// System is the layer of raw operating system calls used by a Controller.
type System interface {
	// Fork creates a new process image. It returns the parent side
	// (with the child's pid) in the calling image, and the child
	// side in the new image.
	Fork() (ForkResult, error)

	// Wait waits for a child process to change state. It returns
	// the pid of the child and its raw wait status.
	Wait(pid int, options int) (int, int, error)

	// Setsid creates a new session and returns its id.
	Setsid() (int, error)

	Stat(path string) (os.FileInfo, error)

	// Access returns a non-nil error if path is not readable by
	// the current process.
	Access(path string) error

	Chdir(path string) error

	Getwd() (string, error)

	// Umask sets the file mode creation mask and returns the
	// previous one.
	Umask(mask int) int

	// Streams returns the standard input, output, and error streams.
	Streams() (stdin io.Closer, stdout io.Closer, stderr io.Closer)

	// Notify relays deliveries of sig to c.
	Notify(c chan<- os.Signal, sig syscall.Signal) error

	Ignore(sig syscall.Signal) error

	Reset(sig syscall.Signal) error

	// StopNotify stops relaying signals to c.
	StopNotify(c chan<- os.Signal)
}

// ForkResult is the outcome of a successful fork as seen by one process
// image: either the parent side, which knows the child's pid, or the
// child side.
type ForkResult struct {
	pid int
}

// ParentResult returns the parent side of a fork that created pid.
func ParentResult(pid int) ForkResult {
	return ForkResult{pid: pid}
}

// ChildResult returns the child side of a fork.
func ChildResult() ForkResult {
	return ForkResult{}
}

func (o ForkResult) IsParent() bool {
	return o.pid > 0
}

func (o ForkResult) IsChild() bool {
	return o.pid == 0
}

// PID returns the child's pid on the parent side, and 0 on the child side.
func (o ForkResult) PID() int {
	return o.pid
}

// SystemOption configures the System returned by NewSystem.
type SystemOption func(*systemConfig)

type systemConfig struct {
	args []string
	env  []string
}

// ExecArgs sets the command line arguments (excluding the program name)
// that re-executed images are started with. By default, the arguments of
// the current process are reused.
func ExecArgs(args ...string) SystemOption {
	return func(config *systemConfig) {
		config.args = append([]string{}, args...)
	}
}

// ExecEnv adds "key=value" environment variables to re-executed images.
func ExecEnv(env ...string) SystemOption {
	return func(config *systemConfig) {
		config.env = append(config.env, env...)
	}
}
