package pip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/kitir/kitir/pkg/logging"
	"github.com/kitir/kitir/pkg/restful"
	"github.com/kitir/kitir/pkg/shell"
	"github.com/kitir/kitir/pkg/xdg"
)

// GetPipURL is the bootstrap script used when no pip is found.
const GetPipURL = "https://bootstrap.pypa.io/get-pip.py"

var (
	// ErrInvalidMode is returned for a mode other than install or uninstall.
	ErrInvalidMode = errors.New("pip: invalid mode")
	// ErrNoPip is returned when no working pip could be found.
	ErrNoPip = errors.New("pip: no pip found")
)

// Mode is the pip sub-command.
type Mode string

// Supported modes.
const (
	Install   Mode = "install"
	Uninstall Mode = "uninstall"
)

// ParseMode validates s as a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Install, Uninstall:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Base is the argv prefix that invokes pip, e.g. [python -m pip].
type Base []string

func (b Base) String() string { return strings.Join(b, " ") }

// Bases lists the pip invocations tried on goos, in order.
func Bases(goos string) []Base {
	bases := []Base{{"python", "-m", "pip"}, {"pip"}}
	if goos == "linux" {
		bases = append(bases, Base{"sudo", "-H", "pip"})
	}
	return bases
}

// Runner executes a command.
type Runner interface {
	Run(ctx context.Context, argv []string, opts shell.Options) (*shell.Result, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, argv []string, opts shell.Options) (*shell.Result, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, argv []string, opts shell.Options) (*shell.Result, error) {
	return f(ctx, argv, opts)
}

// Pip runs pip commands.
type Pip struct {
	runner      Runner
	client      *restful.Client
	logger      *slog.Logger
	goos        string
	artifactDir string
	cacheDir    string
	getPipURL   string
}

// Option configures a Pip.
type Option func(*Pip)

// WithRunner replaces shell.Run.
func WithRunner(r Runner) Option {
	return func(p *Pip) {
		p.runner = r
	}
}

// WithClient sets the client used to download get-pip.py.
func WithClient(c *restful.Client) Option {
	return func(p *Pip) {
		p.client = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pip) {
		p.logger = l
	}
}

// WithGOOS overrides runtime.GOOS when choosing bases.
func WithGOOS(goos string) Option {
	return func(p *Pip) {
		p.goos = goos
	}
}

// WithArtifactDir sets where trace files go by default.
func WithArtifactDir(dir string) Option {
	return func(p *Pip) {
		p.artifactDir = dir
	}
}

// WithCacheDir sets the pip cache removed by Options.ClearCache.
func WithCacheDir(dir string) Option {
	return func(p *Pip) {
		p.cacheDir = dir
	}
}

// WithGetPipURL overrides GetPipURL.
func WithGetPipURL(u string) Option {
	return func(p *Pip) {
		p.getPipURL = u
	}
}

// New creates a Pip.
func New(opts ...Option) *Pip {
	p := &Pip{
		runner:      RunnerFunc(shell.Run),
		logger:      logging.Nop(),
		goos:        runtime.GOOS,
		artifactDir: xdg.DefaultArtifactDir(),
		getPipURL:   GetPipURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.cacheDir == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			p.cacheDir = filepath.Join(dir, "pip")
		}
	}
	if p.client == nil {
		p.client = restful.New("", restful.WithName("pip"),
			restful.WithLogRoot(filepath.Join(p.artifactDir, "packages")), restful.WithLogger(p.logger))
	}
	return p
}

func (p *Pip) traceDir() string {
	return filepath.Join(p.artifactDir, "packages", "pip")
}

// VerifyOptions configures Verify.
type VerifyOptions struct {
	// GetIfNeeded downloads and runs get-pip.py when no base works (Linux only).
	GetIfNeeded bool
	// RaiseOnFailure returns ErrNoPip instead of an empty Base.
	RaiseOnFailure bool
	// TraceFile defaults to <artifacts>/packages/pip/verify_pip.trace.out.
	TraceFile string
	ToConsole bool
}

// Verify returns the first base whose "--version" succeeds and mentions pip.
func (p *Pip) Verify(ctx context.Context, o VerifyOptions) (Base, error) {
	p.logger.Log(ctx, logging.LevelTrace, "verifying pip exists", "get_if_needed", o.GetIfNeeded)
	sopts := shell.Options{
		ToConsole: o.ToConsole,
		TraceFile: o.TraceFile,
		Logger:    p.logger,
	}
	if sopts.TraceFile == "" {
		sopts.TraceFile = filepath.Join(p.traceDir(), "verify_pip.trace.out")
	}

	base := p.findBase(ctx, sopts)
	canGet := o.GetIfNeeded && p.goos == "linux"
	if base == nil && canGet {
		p.logger.Warn("pip was missing, trying to install")
		if err := p.getPip(ctx, sopts); err != nil {
			p.logger.Error("get-pip failed", "error", err)
		}
		base = p.findBase(ctx, sopts)
	}

	if base == nil {
		if canGet {
			p.logger.Error("pip failed even after trying to install")
		} else {
			p.logger.Error("pip is missing from machine")
		}
		if o.RaiseOnFailure {
			return nil, ErrNoPip
		}
		return nil, nil
	}
	return base, nil
}

func (p *Pip) findBase(ctx context.Context, sopts shell.Options) Base {
	for _, base := range Bases(p.goos) {
		argv := append(append([]string(nil), base...), "--version")
		res, err := p.runner.Run(ctx, argv, sopts)
		if err != nil {
			p.logger.Debug("pip candidate failed", "base", base.String(), "error", err)
			continue
		}
		if res.Good() && res.Contains("pip") {
			p.logger.Log(ctx, logging.LevelTrace, "pip verified", "base", base.String(), "out", res.Out)
			return base
		}
	}
	return nil
}

// getPip downloads get-pip.py and runs it with python.
func (p *Pip) getPip(ctx context.Context, sopts shell.Options) error {
	resp, err := p.client.Get(ctx, p.getPipURL, nil, &restful.LogOptions{
		TransactionName: "get-pip",
		SaveResponse:    restful.Bool(false),
	})
	if err != nil {
		return err
	}
	if resp == nil || !resp.OK() {
		return fmt.Errorf("download %s: unexpected response", p.getPipURL)
	}

	script := filepath.Join(xdg.TempDir(), "get-pip.py")
	if err := os.MkdirAll(filepath.Dir(script), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(script, resp.Content, 0o644); err != nil {
		return err
	}
	_, err = p.runner.Run(ctx, []string{"python", script}, sopts)
	return err
}

// Options configures Command. The zero value turns every flag off; see
// DefaultOptions.
type Options struct {
	Upgrade        bool
	Egg            bool
	ForceReinstall bool
	Isolated       bool
	NoCacheDir     bool
	Yes            bool

	// ClearCache removes the pip cache directory before running.
	ClearCache bool

	// TraceFile defaults to <artifacts>/packages/pip/pip_exec_trace.out.
	TraceFile string
	ToConsole bool

	Verify VerifyOptions
}

// DefaultOptions upgrades, force-reinstalls and confirms uninstalls,
// printing pip's output. --egg stays off since current pip rejects it.
func DefaultOptions() Options {
	return Options{
		Upgrade:        true,
		ForceReinstall: true,
		Yes:            true,
		ToConsole:      true,
		Verify: VerifyOptions{
			GetIfNeeded:    true,
			RaiseOnFailure: true,
		},
	}
}

// BuildArgs assembles the argv for mode with the flags that apply to it.
func BuildArgs(base Base, mode Mode, packages []string, o Options) ([]string, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	args := append(append([]string(nil), base...), string(mode))
	if mode == Install {
		if o.Upgrade {
			args = append(args, "--upgrade")
		}
		if o.Egg {
			args = append(args, "--egg")
		}
		if o.ForceReinstall {
			args = append(args, "--force-reinstall")
		}
		if o.Isolated {
			args = append(args, "--isolated")
		}
		if o.NoCacheDir {
			args = append(args, "--no-cache-dir")
		}
	}
	if mode == Uninstall && o.Yes {
		args = append(args, "--yes")
	}
	return append(args, packages...), nil
}

// Command runs pip in mode for packages. On Windows the base is
// "python -m pip" without verification.
func (p *Pip) Command(ctx context.Context, mode Mode, packages []string, o Options) (*shell.Result, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	if o.ClearCache && p.cacheDir != "" {
		if err := os.RemoveAll(p.cacheDir); err != nil {
			p.logger.Warn("clear pip cache failed", "dir", p.cacheDir, "error", err)
		}
	}

	var base Base
	if p.goos == "windows" {
		base = Base{"python", "-m", "pip"}
	} else {
		var err error
		if base, err = p.Verify(ctx, o.Verify); err != nil {
			return nil, err
		}
		if base == nil {
			return nil, ErrNoPip
		}
	}

	argv, err := BuildArgs(base, mode, packages, o)
	if err != nil {
		return nil, err
	}
	sopts := shell.Options{
		ToConsole: o.ToConsole,
		TraceFile: o.TraceFile,
		Logger:    p.logger,
	}
	if sopts.TraceFile == "" {
		sopts.TraceFile = filepath.Join(p.traceDir(), "pip_exec_trace.out")
	}
	p.logger.Info("running pip", "args", argv)
	return p.runner.Run(ctx, argv, sopts)
}
