package doublefork

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the file-based configuration of a daemon.
type Config struct {
	// RunningDirectory is the directory the daemon changes to.
	RunningDirectory string `toml:"running_directory"`

	// PidFile is the path of the daemon's pid file. No pid file is
	// used if it is empty.
	PidFile string `toml:"pid_file"`

	Logging LoggingConfig `toml:"logging"`
}

// LoggingConfig configures the logger handed to the daemon's worker.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn" or "error".
	Level string `toml:"level"`

	// Format is one of "console", "json" or "auto". "auto" selects
	// "console" when writing to a terminal.
	Format string `toml:"format"`

	// File is the log file path. The daemon closes its standard
	// streams, so a daemon without a log file logs nothing once it
	// has detached.
	File string `toml:"file"`
}

// DefaultConfig returns the configuration used for values that are
// missing from a configuration file.
func DefaultConfig() Config {
	return Config{
		RunningDirectory: DefaultRunningDirectory,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// LoadConfig reads a TOML configuration file. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	contents, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file - %w", err)
	}

	decoder := toml.NewDecoder(bytes.NewReader(contents))
	decoder.DisallowUnknownFields()
	err = decoder.Decode(&config)
	if err != nil {
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			return Config{}, fmt.Errorf("failed to parse config file '%s' - %w\n%s", path, err, strictErr.String())
		}

		return Config{}, fmt.Errorf("failed to parse config file '%s' - %w", path, err)
	}

	err = config.Validate()
	if err != nil {
		return Config{}, err
	}

	return config, nil
}

func (o Config) Validate() error {
	if len(strings.TrimSpace(o.RunningDirectory)) == 0 {
		return fmt.Errorf("running directory must be provided in config")
	}

	switch strings.ToLower(o.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level '%s'", o.Logging.Level)
	}

	switch strings.ToLower(o.Logging.Format) {
	case "", "console", "json", "auto":
	default:
		return fmt.Errorf("unsupported log format '%s'", o.Logging.Format)
	}

	return nil
}

// Options returns the Daemon options described by the configuration.
func (o Config) Options() []Option {
	opts := []Option{
		WithRunningDirectory(o.RunningDirectory),
	}

	if len(o.PidFile) > 0 {
		opts = append(opts, WithPidFile(o.PidFile))
	}

	return opts
}
