package cliconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kitir/kitir/pkg/util"
)

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.LogLevel) {
	case "", "trace", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("logLevel %q is not one of trace, debug, info, warn, error", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logFormat %q is not one of text, json", c.LogFormat))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout %s must not be negative", c.Timeout))
	}
	if c.Name != "" && util.SafeFileName(c.Name) != c.Name {
		errs = append(errs, fmt.Errorf("name %q is not a valid directory name", c.Name))
	}
	return errors.Join(errs...)
}
