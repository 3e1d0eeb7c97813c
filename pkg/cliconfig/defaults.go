package cliconfig

import (
	"github.com/kitir/kitir/pkg/restful"
	"github.com/kitir/kitir/pkg/xdg"
)

// DefaultLogLevel is the default diagnostic log level.
const DefaultLogLevel = "info"

// DefaultLogFormat is the default diagnostic log format.
const DefaultLogFormat = "text"

// NewDefault creates a new Config with default values.
func NewDefault() *Config {
	cfg := &Config{
		LogDir:      xdg.DefaultLogDir(),
		Name:        restful.DefaultName,
		Timeout:     restful.DefaultTimeout,
		LogLevel:    DefaultLogLevel,
		LogFormat:   DefaultLogFormat,
		ArtifactDir: xdg.DefaultArtifactDir(),
		Sources:     make(map[string]string),
	}

	// Mark all as default source
	for _, key := range []string{
		"logDir", "name", "timeout", "fullRequest", "fullResponse", "onlyNotOk",
		"logLevel", "logFormat", "artifactDir", "json",
	} {
		cfg.Sources[key] = SourceDefault
	}
	return cfg
}

// LogDefaults returns the client-wide transaction logging defaults.
func (c *Config) LogDefaults() restful.LogDefaults {
	return restful.LogDefaults{
		FullRequest:  c.FullRequest,
		FullResponse: c.FullResponse,
		OnlyNotOK:    c.OnlyNotOK,
	}
}
