package worker_test

import (
	"errors"
	"io"
	"log/slog"
	"syscall"
	"testing"

	"github.com/stephen-fox/doublefork/process"
	"github.com/stephen-fox/doublefork/worker"
)

type countingWorker struct {
	worker.Base
	works int
}

func (o *countingWorker) Start() error {
	return nil
}

func (o *countingWorker) Work() error {
	o.works++
	return nil
}

func (o *countingWorker) Stop(syscall.Signal) error {
	return nil
}

var _ worker.Worker = (*countingWorker)(nil)

func TestBaseDefaults(t *testing.T) {
	w := &countingWorker{}

	if w.Logger() != nil {
		t.Fatal("expected no logger by default")
	}
	if len(w.RegistrationSignals()) != 0 {
		t.Fatalf("expected no registration signals, got %v", w.RegistrationSignals())
	}
	if w.HasCallback(syscall.SIGHUP) {
		t.Fatal("expected no callback for SIGHUP")
	}
	if w.Callback(syscall.SIGHUP) != nil {
		t.Fatal("expected a nil callback for SIGHUP")
	}
}

func TestBaseCallbacks(t *testing.T) {
	w := &countingWorker{}
	called := false
	w.SetCallback(syscall.SIGTERM, process.HandlerFunc(func(syscall.Signal) {
		called = true
	}))
	w.SetCallback(syscall.SIGHUP, process.Ignore)

	signals := w.RegistrationSignals()
	if len(signals) != 2 || signals[0] != syscall.SIGHUP || signals[1] != syscall.SIGTERM {
		t.Fatalf("unexpected registration signals: %v", signals)
	}
	if !w.HasCallback(syscall.SIGTERM) {
		t.Fatal("expected a callback for SIGTERM")
	}
	if w.Callback(syscall.SIGHUP) != process.Ignore {
		t.Fatal("expected the SIGHUP callback to be the ignore disposition")
	}

	w.Callback(syscall.SIGTERM).HandleSignal(syscall.SIGTERM)
	if !called {
		t.Fatal("expected the SIGTERM callback to run")
	}
}

func TestBaseNilCallbackIsNotACallback(t *testing.T) {
	w := &countingWorker{}
	w.SetCallback(syscall.SIGTERM, nil)

	if w.HasCallback(syscall.SIGTERM) {
		t.Fatal("expected a nil callback not to count as a callback")
	}
	if signals := w.RegistrationSignals(); len(signals) != 1 || signals[0] != syscall.SIGTERM {
		t.Fatalf("expected SIGTERM to still be declared, got %v", signals)
	}
}

func TestBaseLogger(t *testing.T) {
	w := &countingWorker{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	w.SetLogger(logger)

	if w.Logger() != logger {
		t.Fatal("expected the configured logger")
	}
}

func TestError(t *testing.T) {
	cause := errors.New("disk full")
	err := worker.NewError("work", cause)

	if err.Error() != "worker failed to work - disk full" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected the error to wrap its cause")
	}
}
