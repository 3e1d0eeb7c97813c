package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kitir/kitir/pkg/cliconfig"
	"github.com/kitir/kitir/pkg/csvutil"
	"github.com/kitir/kitir/pkg/logging"
)

var (
	// Persistent flags available to all subcommands
	configPath string
	logLevel   string
	logFormat  string
	logFile    string
	jsonOutput bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// Resolved by loadConfig before any subcommand runs.
var (
	cfg      *cliconfig.Config
	logger   = logging.Nop()
	closeLog = func() error { return nil }
)

// errSilent exits non-zero without printing anything more.
var errSilent = errors.New("")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kitir",
	Short: "kitir sends REST requests and keeps a transaction log of every call",
	Long: `kitir is a toolkit for scripted API work. Every REST call made through it is
recorded as a transaction: the request and the response are written to
<log dir>/<client name>/request and .../response under an increasing id.

Configuration can be provided via flags, environment variables (KITIR_*), or a
configuration file (.kitirrc.yaml in the current directory, or
~/.config/kitir/config.yaml).`,
	SilenceUsage:      true,
	SilenceErrors:     true, // We handle errors in Main()
	PersistentPreRunE: loadConfig,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

// Main runs the CLI with os.Args and returns the process exit code.
func Main() int {
	err := rootCmd.Execute()
	_ = closeLog()
	if err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return 1
	}
	return 0
}

// Execute runs the CLI and exits. It is called by main.main().
func Execute() {
	os.Exit(Main())
}

// loadConfig merges config files, env and flags, then sets up logging.
func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := cliconfig.LoadAll(configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		loaded.LogLevel = logLevel
		loaded.Sources["logLevel"] = cliconfig.SourceFlag
	}
	if flags.Changed("log-format") {
		loaded.LogFormat = logFormat
		loaded.Sources["logFormat"] = cliconfig.SourceFlag
	}
	if flags.Changed("log-file") {
		loaded.LogFile = logFile
		loaded.Sources["logFile"] = cliconfig.SourceFlag
	}
	if flags.Changed("json") {
		loaded.JSON = jsonOutput
		loaded.Sources["json"] = cliconfig.SourceFlag
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = loaded
	jsonOutput = cfg.JSON

	l, closer, err := logging.Open(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
		Output: os.Stderr,
		File:   cfg.LogFile,
	})
	if err != nil {
		return err
	}
	logger, closeLog = l, closer
	slog.SetDefault(logger)
	csvutil.SetLogger(logger)
	return nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file path (default: .kitirrc.yaml, then ~/.config/kitir/config.yaml)")
	pf.StringVar(&logLevel, "log-level", cliconfig.DefaultLogLevel, "Diagnostic log level: trace, debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", cliconfig.DefaultLogFormat, "Diagnostic log format: text or json")
	pf.StringVar(&logFile, "log-file", "", "Also write diagnostics (at trace level) to this file")
	pf.BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}
