//go:build !unix

package process

import (
	"io"
	"os"
	"syscall"
)

// NoHang makes WaitForChild return immediately if no child has exited.
const NoHang = 1

type unsupportedSystem struct{}

// NewSystem returns the System for the current operating system. On this
// platform, process-control calls fail with ErrUnsupported.
func NewSystem(options ...SystemOption) System {
	return unsupportedSystem{}
}

func (o unsupportedSystem) Fork() (ForkResult, error) {
	return ForkResult{}, ErrUnsupported
}

func (o unsupportedSystem) Wait(int, int) (int, int, error) {
	return -1, 0, ErrUnsupported
}

func (o unsupportedSystem) Setsid() (int, error) {
	return -1, ErrUnsupported
}

func (o unsupportedSystem) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

func (o unsupportedSystem) Access(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	return f.Close()
}

func (o unsupportedSystem) Chdir(path string) error {
	return os.Chdir(path)
}

func (o unsupportedSystem) Getwd() (string, error) {
	return os.Getwd()
}

func (o unsupportedSystem) Umask(int) int {
	return 0
}

func (o unsupportedSystem) Streams() (io.Closer, io.Closer, io.Closer) {
	return os.Stdin, os.Stdout, os.Stderr
}

func (o unsupportedSystem) Notify(chan<- os.Signal, syscall.Signal) error {
	return ErrUnsupported
}

func (o unsupportedSystem) Ignore(syscall.Signal) error {
	return ErrUnsupported
}

func (o unsupportedSystem) Reset(syscall.Signal) error {
	return ErrUnsupported
}

func (o unsupportedSystem) StopNotify(chan<- os.Signal) {}
