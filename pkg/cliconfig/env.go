package cliconfig

import (
	"os"
	"strconv"
	"time"

	"github.com/kitir/kitir/pkg/xdg"
)

// Environment variable names
const (
	EnvConfig       = "KITIR_CONFIG"
	EnvLogDir       = xdg.EnvLogDir
	EnvArtifactDir  = xdg.EnvArtifactDir
	EnvLogLevel     = "KITIR_LOG_LEVEL"
	EnvLogFormat    = "KITIR_LOG_FORMAT"
	EnvLogFile      = "KITIR_LOG_FILE"
	EnvTimeout      = "KITIR_TIMEOUT"
	EnvName         = "KITIR_NAME"
	EnvFullRequest  = "KITIR_FULL_REQUEST"
	EnvFullResponse = "KITIR_FULL_RESPONSE"
	EnvOnlyNotOK    = "KITIR_ONLY_NOT_OK"
)

// LoadEnvConfig loads configuration from environment variables.
// It only sets values that are present in the environment.
func LoadEnvConfig(cfg *Config) {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}

	setString := func(env, key string, dst *string) {
		if v := os.Getenv(env); v != "" {
			*dst = v
			cfg.Sources[key] = SourceEnv
		}
	}
	setBool := func(env, key string, dst *bool) {
		if v := os.Getenv(env); v != "" {
			*dst = parseBool(v)
			cfg.Sources[key] = SourceEnv
		}
	}

	setString(EnvLogDir, "logDir", &cfg.LogDir)
	setString(EnvArtifactDir, "artifactDir", &cfg.ArtifactDir)
	setString(EnvLogLevel, "logLevel", &cfg.LogLevel)
	setString(EnvLogFormat, "logFormat", &cfg.LogFormat)
	setString(EnvLogFile, "logFile", &cfg.LogFile)
	setString(EnvName, "name", &cfg.Name)

	// KITIR_TIMEOUT accepts a duration ("90s") or whole seconds ("90").
	// Zero leaves the timeout unchanged, as it does in config files.
	if v := os.Getenv(EnvTimeout); v != "" {
		if d, ok := parseTimeout(v); ok && d != 0 {
			cfg.Timeout = d
			cfg.Sources["timeout"] = SourceEnv
		}
	}

	setBool(EnvFullRequest, "fullRequest", &cfg.FullRequest)
	setBool(EnvFullResponse, "fullResponse", &cfg.FullResponse)
	setBool(EnvOnlyNotOK, "onlyNotOk", &cfg.OnlyNotOK)
}

func parseBool(v string) bool {
	return v == "true" || v == "1" || v == "yes"
}

func parseTimeout(v string) (time.Duration, bool) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, true
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	return 0, false
}
