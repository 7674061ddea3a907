//go:build unix

package process

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// NoHang makes WaitForChild return immediately if no child has exited.
const NoHang = unix.WNOHANG

type unixSystem struct {
	args       []string
	env        []string
	generation int
	forks      int
}

// NewSystem returns the System for the current operating system.
func NewSystem(options ...SystemOption) System {
	config := &systemConfig{}
	for _, option := range options {
		option(config)
	}

	generation, err := strconv.Atoi(os.Getenv(GenerationEnv))
	if err != nil || generation < 0 {
		generation = 0
	}

	// The marker describes this image only. Processes started later by
	// the worker must not inherit it.
	os.Unsetenv(GenerationEnv)

	return &unixSystem{
		args:       config.args,
		env:        config.env,
		generation: generation,
	}
}

// replaying reports whether the image is still re-running steps that one
// of its ancestors already performed.
func (o *unixSystem) replaying() bool {
	return o.forks < o.generation
}

func (o *unixSystem) Fork() (ForkResult, error) {
	o.forks++
	if o.forks <= o.generation {
		return ChildResult(), nil
	}

	exePath, err := os.Executable()
	if err != nil {
		o.forks--
		return ForkResult{}, fmt.Errorf("failed to get executable path - %w", err)
	}

	args := o.args
	if args == nil {
		args = os.Args[1:]
	}

	env := append(environWithout(os.Environ(), o.env), o.env...)
	env = append(env, GenerationEnv+"="+strconv.Itoa(o.forks))

	child, err := os.StartProcess(exePath, append([]string{os.Args[0]}, args...), &os.ProcAttr{
		Env:   env,
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	})
	if err != nil {
		o.forks--
		return ForkResult{}, err
	}

	pid := child.Pid

	// The child is reaped through Wait, not through os.Process.
	child.Release()

	return ParentResult(pid), nil
}

func (o *unixSystem) Wait(pid int, options int) (int, int, error) {
	var status unix.WaitStatus
	wpid, err := unix.Wait4(pid, &status, options, nil)
	if err != nil {
		return -1, 0, err
	}

	return wpid, int(status), nil
}

func (o *unixSystem) Setsid() (int, error) {
	if o.replaying() {
		// An ancestor already created the session this image
		// was born into.
		return unix.Getsid(0)
	}

	return unix.Setsid()
}

func (o *unixSystem) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

func (o *unixSystem) Access(path string) error {
	return unix.Access(path, unix.R_OK)
}

func (o *unixSystem) Chdir(path string) error {
	return os.Chdir(path)
}

func (o *unixSystem) Getwd() (string, error) {
	return os.Getwd()
}

func (o *unixSystem) Umask(mask int) int {
	return unix.Umask(mask)
}

func (o *unixSystem) Streams() (io.Closer, io.Closer, io.Closer) {
	return os.Stdin, os.Stdout, os.Stderr
}

func (o *unixSystem) Notify(c chan<- os.Signal, sig syscall.Signal) error {
	err := checkCatchable(sig)
	if err != nil {
		return err
	}

	signal.Notify(c, sig)

	return nil
}

func (o *unixSystem) Ignore(sig syscall.Signal) error {
	err := checkCatchable(sig)
	if err != nil {
		return err
	}

	signal.Ignore(sig)

	return nil
}

func (o *unixSystem) Reset(sig syscall.Signal) error {
	signal.Reset(sig)

	return nil
}

func (o *unixSystem) StopNotify(c chan<- os.Signal) {
	signal.Stop(c)
}

func checkCatchable(sig syscall.Signal) error {
	switch sig {
	case unix.SIGKILL, unix.SIGSTOP:
		return fmt.Errorf("signal %d cannot be caught or ignored", int(sig))
	}

	if sig <= 0 {
		return fmt.Errorf("signal %d is not a valid signal", int(sig))
	}

	return nil
}

// environWithout returns environ minus the generation marker and any
// variable that is overridden by extra.
func environWithout(environ []string, extra []string) []string {
	drop := map[string]struct{}{
		GenerationEnv: {},
	}
	for _, kv := range extra {
		drop[envKey(kv)] = struct{}{}
	}

	var result []string
	for _, kv := range environ {
		if _, ok := drop[envKey(kv)]; ok {
			continue
		}
		result = append(result, kv)
	}

	return result
}

func envKey(kv string) string {
	if i := strings.IndexByte(kv, '='); i >= 0 {
		return kv[:i]
	}

	return kv
}
