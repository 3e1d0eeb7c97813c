package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kitir/kitir/pkg/logging"
)

var (
	// ErrEmptyCommand is returned when argv is empty.
	ErrEmptyCommand = errors.New("shell: empty command")
	// ErrTimeout is returned when the command outlived Options.Timeout.
	ErrTimeout = errors.New("shell: command timed out")
)

// waitDelay bounds how long Run waits for output after the process is gone.
const waitDelay = 2 * time.Second

// Options configures Run.
type Options struct {
	// Dir is the working directory. Empty means the current one.
	Dir string
	// Env replaces the environment when non-nil.
	Env []string

	// ToConsole copies every output line to Console (os.Stdout when nil).
	ToConsole bool
	Console   io.Writer
	// OnLine receives each output line, without its newline, as it is
	// produced. Calls are serialized.
	OnLine func(line string)

	// TraceFile receives every output line as it is produced.
	TraceFile string
	// DumpFile receives Result.DumpData after the command exits.
	DumpFile string
	// DumpOptions includes the process options in the dump file.
	DumpOptions bool

	// Timeout kills the process group when exceeded. Zero means none.
	Timeout time.Duration

	Logger *slog.Logger
}

// Result describes a finished command.
type Result struct {
	Args     []string
	RC       int
	Out      string
	Err      string
	Duration time.Duration
	// Options are the process options that were set, keyed by name.
	Options map[string]string
}

// Good reports whether the command exited with status 0.
func (r *Result) Good() bool {
	return r.RC == 0
}

// Contains reports whether stdout contains every one of subs.
func (r *Result) Contains(subs ...string) bool {
	for _, s := range subs {
		if !strings.Contains(r.Out, s) {
			return false
		}
	}
	return true
}

// OptionsDump renders the process options one "key: value" per line in
// key order, under a "<process options>" heading.
func (r *Result) OptionsDump() string {
	keys := make([]string, 0, len(r.Options))
	for k := range r.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys)+1)
	lines = append(lines, "<process options>")
	for _, k := range keys {
		lines = append(lines, k+": "+r.Options[k])
	}
	return strings.Join(lines, "\n")
}

// DumpData renders the command, its exit status and its output.
func (r *Result) DumpData(withOptions bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<command>\n%s\n", strings.Join(r.Args, " "))
	fmt.Fprintf(&b, "<rc>\n%d\n", r.RC)
	fmt.Fprintf(&b, "<duration>\n%s\n", r.Duration)
	fmt.Fprintf(&b, "<stdout>\n%s\n", r.Out)
	fmt.Fprintf(&b, "<stderr>\n%s\n", r.Err)
	if withOptions {
		b.WriteString(r.OptionsDump())
		b.WriteString("\n")
	}
	return b.String()
}

// Run executes argv and waits for it. A non-zero exit status is reported in
// Result.RC, not as an error. Errors cover failing to start the process,
// a timeout (the partial Result is returned with ErrTimeout) and context
// cancellation.
func Run(ctx context.Context, argv []string, opts Options) (*Result, error) {
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = opts.Dir
	cmd.Env = opts.Env
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }

	res := &Result{Args: append([]string(nil), argv...), Options: optionMap(opts)}

	var sinks []io.Writer
	if opts.ToConsole {
		console := opts.Console
		if console == nil {
			console = os.Stdout
		}
		sinks = append(sinks, console)
	}
	if opts.TraceFile != "" {
		f, err := createFile(opts.TraceFile)
		if err != nil {
			return nil, fmt.Errorf("shell: open trace file: %w", err)
		}
		defer func() { _ = f.Close() }()
		sinks = append(sinks, f)
	}

	var mu sync.Mutex
	emit := func(line string) {
		mu.Lock()
		defer mu.Unlock()
		for _, w := range sinks {
			_, _ = io.WriteString(w, line+"\n")
		}
		if opts.OnLine != nil {
			opts.OnLine(line)
		}
	}
	var stdout, stderr bytes.Buffer
	outW := &lineWriter{buf: &stdout, emit: emit}
	errW := &lineWriter{buf: &stderr, emit: emit}
	cmd.Stdout = outW
	cmd.Stderr = errW

	log.Debug("exec", "args", argv, "dir", opts.Dir)
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("shell: start %s: %w", argv[0], err)
	}
	waitErr := cmd.Wait()
	res.Duration = time.Since(start)
	outW.flush()
	errW.flush()
	res.Out = stdout.String()
	res.Err = stderr.String()

	var runErr error
	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.RC = -1
		runErr = fmt.Errorf("%w after %s", ErrTimeout, opts.Timeout)
	case ctx.Err() != nil:
		res.RC = -1
		runErr = ctx.Err()
	case errors.As(waitErr, &exitErr):
		res.RC = exitErr.ExitCode()
	default:
		res.RC = -1
		runErr = waitErr
	}
	log.Debug("exec finished", "args", argv, "rc", res.RC, "duration", res.Duration)

	if opts.DumpFile != "" {
		if err := writeDump(opts.DumpFile, res.DumpData(opts.DumpOptions)); err != nil {
			log.Error("write dump file failed", "path", opts.DumpFile, "error", err)
		}
	}
	return res, runErr
}

func optionMap(opts Options) map[string]string {
	m := make(map[string]string)
	if opts.Dir != "" {
		m["cwd"] = opts.Dir
	}
	if opts.Env != nil {
		m["env"] = strings.Join(opts.Env, " ")
	}
	if opts.Timeout > 0 {
		m["timeout"] = opts.Timeout.String()
	}
	return m
}

func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

func writeDump(path, data string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(data), 0o644)
}

// lineWriter collects everything written to it and hands each complete
// line to emit.
type lineWriter struct {
	buf     *bytes.Buffer
	partial []byte
	emit    func(string)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	w.partial = append(w.partial, p...)
	for {
		i := bytes.IndexByte(w.partial, '\n')
		if i < 0 {
			break
		}
		w.emit(strings.TrimSuffix(string(w.partial[:i]), "\r"))
		w.partial = w.partial[i+1:]
	}
	return len(p), nil
}

func (w *lineWriter) flush() {
	if len(w.partial) > 0 {
		w.emit(string(w.partial))
		w.partial = nil
	}
}
