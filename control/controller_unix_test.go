//go:build unix

package control

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gofrs/flock"
)

func newTestController(t *testing.T, pidFilePath string) Controller {
	t.Helper()

	controller, err := NewController(ControllerConfig{
		DaemonID:    "test",
		PidFilePath: pidFilePath,
		StopTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewController returned error: %v", err)
	}

	return controller
}

// holdPidFile locks path and writes pid to it, the way a running daemon
// does.
func holdPidFile(t *testing.T, path string, pid int) *flock.Flock {
	t.Helper()

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("unable to lock pid file: locked=%v err=%v", locked, err)
	}

	err = os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o644)
	if err != nil {
		t.Fatalf("write pid file: %v", err)
	}

	return lock
}

func TestStatus(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		contents string
		lock     bool
		want     Status
	}{
		{name: "running", contents: "1234\n", lock: true, want: Running},
		{name: "stopped cleanly", contents: "", want: Stopped},
		{name: "died", contents: "1234\n", want: StoppedDead},
		{name: "starting", contents: "", lock: true, want: Unknown},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(dir, test.name+".pid")
			err := os.WriteFile(path, []byte(test.contents), 0o644)
			if err != nil {
				t.Fatalf("write pid file: %v", err)
			}

			if test.lock {
				lock := flock.New(path)
				locked, err := lock.TryLock()
				if err != nil || !locked {
					t.Fatalf("unable to lock pid file: locked=%v err=%v", locked, err)
				}
				defer lock.Unlock()
			}

			status, err := newTestController(t, path).Status()
			if err != nil {
				t.Fatalf("Status returned error: %v", err)
			}
			if status != test.want {
				t.Fatalf("unexpected status: got %s want %s", status, test.want)
			}
		})
	}
}

func TestStatusWithoutPidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.pid")

	status, err := newTestController(t, path).Status()
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if status != Unknown {
		t.Fatalf("unexpected status: %s", status)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("expected Status not to create the pid file")
	}
}

func TestStatusRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.pid")
	if err := os.WriteFile(path, []byte("not a pid"), 0o644); err != nil {
		t.Fatalf("write pid file: %v", err)
	}

	_, err := newTestController(t, path).Status()
	if err == nil {
		t.Fatal("expected an error for an invalid pid")
	}
}

func TestStopWhenNotRunning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stopped.pid")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write pid file: %v", err)
	}

	err := newTestController(t, path).Stop()
	if !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}
}

func TestStopSignalsDaemon(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	if err := cmd.Start(); err != nil {
		t.Skipf("unable to start child process: %v", err)
	}

	path := filepath.Join(t.TempDir(), "daemon.pid")
	lock := holdPidFile(t, path, cmd.Process.Pid)

	// Stand in for the daemon's own cleanup once it has been signaled.
	exited := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		os.Truncate(path, 0)
		lock.Unlock()
		exited <- err
	}()

	err := newTestController(t, path).Stop()
	if err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}

	select {
	case err := <-exited:
		if err == nil {
			t.Fatal("expected the child to be terminated by a signal")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("child process did not exit")
	}

	status, err := newTestController(t, path).Status()
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if status != Stopped {
		t.Fatalf("unexpected status after stop: %s", status)
	}
}

func TestStatusReleasesItsLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stopped.pid")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write pid file: %v", err)
	}

	other := flock.New(path)
	locked, err := other.TryRLock()
	if err != nil || !locked {
		t.Fatalf("unable to take a shared lock: locked=%v err=%v", locked, err)
	}

	status, err := newTestController(t, path).Status()
	other.Unlock()
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if status != Stopped {
		t.Fatalf("expected concurrent status checks to agree on %s, got %s", Stopped, status)
	}

	daemonLock := flock.New(path)
	locked, err = daemonLock.TryLock()
	if err != nil || !locked {
		t.Fatalf("expected the pid file to be free for the daemon: locked=%v err=%v", locked, err)
	}
	daemonLock.Unlock()
}
