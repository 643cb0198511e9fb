package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/kwscan/internal/shared"
	tu "github.com/desertthunder/kwscan/internal/testing"
)

func TestSetup(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		runner, output := newTestRunner(t, "")
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := runApp(runner, "setup", "config", "--config", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, path)
		if !strings.Contains(output.String(), "Config written to") {
			t.Errorf("unexpected output %q", output.String())
		}

		if err := runApp(runner, "setup", "config", "--config", path); err == nil {
			t.Error("expected error when config already exists")
		}
	})

	t.Run("database", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "config.toml")
		dbPath := filepath.Join(dir, "kwscan.db")
		config := "[database]\npath = \"" + filepath.ToSlash(dbPath) + "\"\n"
		if err := os.WriteFile(configPath, []byte(config), 0o644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: io.Discard, MaxCores: 2})
		if err := runApp(runner, "setup", "database", "--config", configPath); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, dbPath)
	})
}
