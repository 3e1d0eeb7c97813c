// Package cliconfig provides configuration types and loading for the kitir CLI.
package cliconfig

import "time"

// Config represents the complete configuration for the kitir CLI.
// Configuration values can come from multiple sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. Local config file (.kitirrc.yaml in current directory, or --config)
// 4. Global config file (~/.config/kitir/config.yaml)
// 5. Default values (lowest priority)
type Config struct {
	// Transaction logging
	LogDir       string        `yaml:"logDir" json:"logDir"`
	Name         string        `yaml:"name" json:"name"`
	// Timeout of zero means restful.DefaultTimeout.
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	FullRequest  bool          `yaml:"fullRequest" json:"fullRequest"`
	FullResponse bool          `yaml:"fullResponse" json:"fullResponse"`
	OnlyNotOK    bool          `yaml:"onlyNotOk" json:"onlyNotOk"`

	// Diagnostics
	LogLevel  string `yaml:"logLevel" json:"logLevel"`
	LogFormat string `yaml:"logFormat" json:"logFormat"`
	LogFile   string `yaml:"logFile,omitempty" json:"logFile,omitempty"`

	// Artifacts written by external commands
	ArtifactDir string `yaml:"artifactDir" json:"artifactDir"`

	// Output settings
	JSON bool `yaml:"json" json:"json"`

	// Sources tracks where each value came from (for debugging)
	Sources map[string]string `yaml:"-" json:"-"`

	// SetFields records which keys were present in a loaded file, so that
	// an explicit false can be told apart from an absent boolean.
	SetFields map[string]bool `yaml:"-" json:"-"`
}

// ConfigSource identifies where a config value originated.
const (
	SourceDefault = "default"
	SourceEnv     = "env"
	SourceGlobal  = "global"
	SourceLocal   = "local"
	SourceFlag    = "flag"
)
