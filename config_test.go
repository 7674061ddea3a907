package doublefork

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/stephen-fox/doublefork/internal/testsupport"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	err := os.WriteFile(path, []byte(contents), 0o600)
	if err != nil {
		t.Fatalf("write config: %v", err)
	}

	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `pid_file = "/tmp/example.pid"`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if config.RunningDirectory != DefaultRunningDirectory {
		t.Fatalf("unexpected running directory: %q", config.RunningDirectory)
	}
	if config.PidFile != "/tmp/example.pid" {
		t.Fatalf("unexpected pid file: %q", config.PidFile)
	}
	if config.Logging.Level != "info" || config.Logging.Format != "auto" {
		t.Fatalf("unexpected logging defaults: %+v", config.Logging)
	}
}

func TestLoadConfigReadsAllFields(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
running_directory = "`+dir+`"
pid_file = "`+filepath.Join(dir, "d.pid")+`"

[logging]
level = "debug"
format = "json"
file = "`+filepath.Join(dir, "d.log")+`"
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if config.RunningDirectory != dir {
		t.Fatalf("unexpected running directory: %q", config.RunningDirectory)
	}
	if config.Logging.Level != "debug" || config.Logging.Format != "json" {
		t.Fatalf("unexpected logging config: %+v", config.Logging)
	}
	if config.Logging.File != filepath.Join(dir, "d.log") {
		t.Fatalf("unexpected log file: %q", config.Logging.File)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `running_dir = "/"`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected an error for an unknown key")
	}
	if !strings.Contains(err.Error(), "running_dir") {
		t.Fatalf("expected the error to name the unknown key, got %v", err)
	}

	var strictErr *toml.StrictMissingError
	if !errors.As(err, &strictErr) {
		t.Fatalf("expected the decoder error to be wrapped, got %T", err)
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"empty running directory": `running_directory = " "`,
		"log level":               "[logging]\nlevel = \"verbose\"",
		"log format":              "[logging]\nformat = \"xml\"",
		"malformed":               `running_directory = `,
	}

	for name, contents := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, contents))
			if err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestConfigOptions(t *testing.T) {
	dir := t.TempDir()
	config := DefaultConfig()
	config.RunningDirectory = dir
	config.PidFile = filepath.Join(dir, "d.pid")

	d, err := New(&stubWorker{}, append(config.Options(), WithSystem(testsupport.NewSystem()))...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if d.RunningDirectory() != dir {
		t.Fatalf("unexpected running directory: %q", d.RunningDirectory())
	}
	if d.pidFile == nil || d.pidFile.path != config.PidFile {
		t.Fatal("expected the pid file option to be applied")
	}
}
