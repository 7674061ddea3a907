package process

import (
	"fmt"
	"syscall"
)

const (
	// Ignore asks the operating system to discard the signal.
	Ignore = disposition("SIG_IGN")

	// Default restores the operating system's default behavior for
	// the signal.
	Default = disposition("SIG_DFL")
)

// Handler responds to a delivered signal.
type Handler interface {
	HandleSignal(sig syscall.Signal)
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(sig syscall.Signal)

func (o HandlerFunc) HandleSignal(sig syscall.Signal) {
	o(sig)
}

// disposition is an operating system signal disposition. It satisfies
// Handler so it can be passed wherever a callback is accepted, but it is
// never stored or invoked as one.
type disposition string

func (o disposition) HandleSignal(syscall.Signal) {}

func (o disposition) String() string {
	return string(o)
}

func isDisposition(h Handler) bool {
	_, ok := h.(disposition)
	return ok
}

func normalizeHandler(h Handler) (Handler, error) {
	switch v := h.(type) {
	case nil:
		return nil, fmt.Errorf("signal handler is nil - %w", ErrInvalidArgument)
	case disposition:
		if v != Ignore && v != Default {
			return nil, fmt.Errorf("unknown signal disposition '%s' - %w", string(v), ErrInvalidArgument)
		}
	case HandlerFunc:
		if v == nil {
			return nil, fmt.Errorf("signal handler function is nil - %w", ErrInvalidArgument)
		}
	}

	return h, nil
}

func describeHandler(h Handler) string {
	switch v := h.(type) {
	case nil:
		return "<nil>"
	case disposition:
		return string(v)
	case fmt.Stringer:
		return v.String()
	}

	return fmt.Sprintf("%T", h)
}
