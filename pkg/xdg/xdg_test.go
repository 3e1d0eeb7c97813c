package xdg

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestDefaultDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	dir := DefaultDataDir()
	if dir != filepath.Join("/custom/data", AppName) {
		t.Errorf("DefaultDataDir() = %q, want %q", dir, filepath.Join("/custom/data", AppName))
	}

	t.Setenv("XDG_DATA_HOME", "")
	dir = DefaultDataDir()
	if dir == "" {
		t.Error("DefaultDataDir() should not be empty")
	}
	if !strings.Contains(dir, AppName) {
		t.Errorf("DefaultDataDir() = %q, should contain %q", dir, AppName)
	}
}

func TestDefaultConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if dir := DefaultConfigDir(); dir != filepath.Join("/custom/config", AppName) {
		t.Errorf("DefaultConfigDir() = %q", dir)
	}
}

func TestDefaultStateDir(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/custom/state")
	if dir := DefaultStateDir(); dir != filepath.Join("/custom/state", AppName) {
		t.Errorf("DefaultStateDir() = %q", dir)
	}

	t.Setenv("XDG_STATE_HOME", "")
	if runtime.GOOS == "linux" {
		home, err := os.UserHomeDir()
		if err == nil {
			want := filepath.Join(home, ".local", "state", AppName)
			if dir := DefaultStateDir(); dir != want {
				t.Errorf("DefaultStateDir() = %q, want %q", dir, want)
			}
		}
	}
}

func TestDefaultLogDir(t *testing.T) {
	t.Setenv(EnvLogDir, "")
	t.Setenv("XDG_STATE_HOME", "/custom/state")
	if dir := DefaultLogDir(); dir != filepath.Join("/custom/state", AppName, "logs") {
		t.Errorf("DefaultLogDir() = %q", dir)
	}

	t.Setenv(EnvLogDir, "/override/logs")
	if dir := DefaultLogDir(); dir != "/override/logs" {
		t.Errorf("DefaultLogDir() with env = %q, want /override/logs", dir)
	}
}

func TestDefaultArtifactDir(t *testing.T) {
	t.Setenv(EnvArtifactDir, "")
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	if dir := DefaultArtifactDir(); dir != filepath.Join("/custom/data", AppName, "artifacts") {
		t.Errorf("DefaultArtifactDir() = %q", dir)
	}

	t.Setenv(EnvArtifactDir, "/override/artifacts")
	if dir := DefaultArtifactDir(); dir != "/override/artifacts" {
		t.Errorf("DefaultArtifactDir() with env = %q", dir)
	}
}

func TestTempDir(t *testing.T) {
	if dir := TempDir(); filepath.Base(dir) != AppName {
		t.Errorf("TempDir() = %q, want basename %q", dir, AppName)
	}
}
