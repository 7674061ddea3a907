// Package logging assembles the slog loggers used by daemons and their
// workers.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const logFilePerm = 0644

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string

	// Path is the log file. Output is used when it is empty.
	Path string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// New constructs a logger. The returned io.Closer closes the log file, if
// one was opened.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	output := opts.Output
	var closer io.Closer = nopCloser{}
	if len(opts.Path) > 0 {
		f, err := os.OpenFile(opts.Path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, logFilePerm)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file - %w", err)
		}
		output = f
		closer = f
	}
	if output == nil {
		output = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	}

	var handler slog.Handler
	switch resolveFormat(opts.Format, output) {
	case "json":
		handler = slog.NewJSONHandler(output, handlerOpts)
	case "console":
		handler = slog.NewTextHandler(output, handlerOpts)
	default:
		closer.Close()
		return nil, nil, fmt.Errorf("unsupported log format '%s'", opts.Format)
	}

	return slog.New(handler), closer, nil
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	return slog.LevelInfo
}

func resolveFormat(format string, output io.Writer) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "" && format != "auto" {
		return format
	}

	if f, ok := output.(*os.File); ok && isTerminal(f.Fd()) {
		return "console"
	}

	return "json"
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type nopCloser struct{}

func (nopCloser) Close() error {
	return nil
}
