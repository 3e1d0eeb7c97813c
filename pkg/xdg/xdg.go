// Package xdg resolves kitir's default directories.
//
// Directory structure follows the XDG Base Directory Specification:
//   - Config: ~/.config/kitir/ (user preferences)
//   - Data:   ~/.local/share/kitir/ (artifacts such as pip traces)
//   - State:  ~/.local/state/kitir/ (transaction logs, run logs)
package xdg

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the directory name used under each base directory.
const AppName = "kitir"

// Env overrides for the two directories most tools write to.
const (
	EnvLogDir      = "KITIR_LOG_DIR"
	EnvArtifactDir = "KITIR_ARTIFACT_DIR"
)

// DefaultDataDir returns the default data directory following XDG spec.
func DefaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+AppName, "data")
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", AppName)
	case "windows":
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
		return filepath.Join(home, "AppData", "Local", AppName)
	}
	return filepath.Join(home, ".local", "share", AppName)
}

// DefaultConfigDir returns the default config directory following XDG spec.
func DefaultConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+AppName, "config")
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Preferences", AppName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
		return filepath.Join(home, "AppData", "Roaming", AppName)
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultStateDir returns the default state directory following XDG spec.
func DefaultStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+AppName, "state")
	}
	switch runtime.GOOS {
	case "darwin":
		// macOS has no state dir convention
		return filepath.Join(home, "Library", "Application Support", AppName, "state")
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, AppName, "state")
		}
		return filepath.Join(home, "AppData", "Local", AppName, "state")
	}
	return filepath.Join(home, ".local", "state", AppName)
}

// DefaultLogDir is the root under which REST clients create their
// per-client transaction directories. KITIR_LOG_DIR overrides it.
func DefaultLogDir() string {
	if dir := os.Getenv(EnvLogDir); dir != "" {
		return dir
	}
	return filepath.Join(DefaultStateDir(), "logs")
}

// DefaultArtifactDir holds trace output from external tools (pip, shell).
// KITIR_ARTIFACT_DIR overrides it.
func DefaultArtifactDir() string {
	if dir := os.Getenv(EnvArtifactDir); dir != "" {
		return dir
	}
	return filepath.Join(DefaultDataDir(), "artifacts")
}

// TempDir returns a kitir-specific directory under the OS temp dir.
func TempDir() string {
	return filepath.Join(os.TempDir(), AppName)
}
