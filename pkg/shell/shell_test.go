package shell

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell")
	}
}

func TestRun_EmptyCommand(t *testing.T) {
	_, err := Run(context.Background(), nil, Options{})
	assert.ErrorIs(t, err, ErrEmptyCommand)
}

func TestRun_StartFailure(t *testing.T) {
	_, err := Run(context.Background(), []string{"kitir-no-such-binary"}, Options{})
	assert.Error(t, err)
}

func TestRun_Output(t *testing.T) {
	skipOnWindows(t)
	res, err := Run(context.Background(), []string{"sh", "-c", "echo hello; echo oops >&2; exit 3"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.RC)
	assert.False(t, res.Good())
	assert.Equal(t, "hello\n", res.Out)
	assert.Equal(t, "oops\n", res.Err)
	assert.True(t, res.Contains("hel", "llo"))
	assert.False(t, res.Contains("hello", "bye"))
}

func TestRun_DumpOptionsTrue(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	dump := filepath.Join(t.TempDir(), "dump", "run.dump.txt")

	res, err := Run(context.Background(), []string{"pwd"}, Options{Dir: dir, DumpFile: dump, DumpOptions: true})
	require.NoError(t, err)
	assert.True(t, res.Good())

	assert.Equal(t, map[string]string{"cwd": dir}, res.Options)
	want := "<process options>\ncwd: " + dir
	assert.Equal(t, want, res.OptionsDump())

	data, err := os.ReadFile(dump)
	require.NoError(t, err)
	assert.Contains(t, string(data), want)
	assert.Contains(t, string(data), "<rc>\n0\n")
}

func TestRun_DumpOptionsFalse(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	dump := filepath.Join(t.TempDir(), "run.dump.txt")

	res, err := Run(context.Background(), []string{"pwd"}, Options{Dir: dir, DumpFile: dump})
	require.NoError(t, err)
	assert.Equal(t, "<process options>\ncwd: "+dir, res.OptionsDump())
	assert.NotContains(t, res.DumpData(false), "options")

	data, err := os.ReadFile(dump)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "<process options>")
}

func TestRun_Streaming(t *testing.T) {
	skipOnWindows(t)
	var mu sync.Mutex
	var stamps []time.Time
	var lines []string

	res, err := Run(context.Background(),
		[]string{"sh", "-c", "for i in 1 2 3 4; do echo line$i; sleep 0.2; done"},
		Options{OnLine: func(line string) {
			mu.Lock()
			defer mu.Unlock()
			stamps = append(stamps, time.Now())
			lines = append(lines, line)
		}})
	require.NoError(t, err)
	assert.True(t, res.Good())
	assert.Equal(t, []string{"line1", "line2", "line3", "line4"}, lines)
	require.Len(t, stamps, 4)
	assert.Greater(t, stamps[3].Sub(stamps[0]), 300*time.Millisecond)
}

func TestRun_TraceFileAndConsole(t *testing.T) {
	skipOnWindows(t)
	trace := filepath.Join(t.TempDir(), "trace", "out.txt")
	var console strings.Builder

	_, err := Run(context.Background(), []string{"sh", "-c", "printf 'a\\nb'"},
		Options{TraceFile: trace, ToConsole: true, Console: &console})
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", console.String())

	data, err := os.ReadFile(trace)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", string(data))
}

func TestRun_Timeout(t *testing.T) {
	skipOnWindows(t)
	start := time.Now()
	res, err := Run(context.Background(), []string{"sh", "-c", "echo started; sleep 30"},
		Options{Timeout: 300 * time.Millisecond})
	require.ErrorIs(t, err, ErrTimeout)
	require.NotNil(t, res)
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.Equal(t, "started\n", res.Out)
	assert.False(t, res.Good())
}
