package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mdwatch/internal/watch"
)

// executeCommand is a test helper that runs the CLI with the given args and
// captures both stdout and stderr.
func executeCommand(args ...string) (stdout, stderr string, err error) {
	cmd := NewRootCommand()
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()

	return outBuf.String(), errBuf.String(), err
}

// chanSource is a synthetic watch.Source fed by the test.
type chanSource struct {
	events chan watch.Event
	errs   chan error
}

func (s *chanSource) Subscribe(string) (watch.Subscription, error) { return s, nil }
func (s *chanSource) Events() <-chan watch.Event { return s.events }
func (s *chanSource) Errors() <-chan error { return s.errs }
func (s *chanSource) Close() error { return nil }

// useChanSource replaces the notification source for the duration of the test.
func useChanSource(t *testing.T) *chanSource {
	t.Helper()

	src := &chanSource{events: make(chan watch.Event), errs: make(chan error)}
	prev := newSource
	newSource = func() watch.Source { return src }

	t.Cleanup(func() { newSource = prev })

	return src
}

type runResult struct {
	code   int
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// startWatch runs the root command in the background. The returned channel
// yields the result once the command finishes.
func startWatch(ctx context.Context, args ...string) <-chan runResult {
	res := runResult{stdout: new(bytes.Buffer), stderr: new(bytes.Buffer)}

	cmd := NewRootCommand()
	cmd.SetOut(res.stdout)
	cmd.SetErr(res.stderr)
	cmd.SetArgs(args)

	done := make(chan runResult, 1)

	go func() {
		res.code = execute(ctx, cmd)
		done <- res
	}()

	return done
}

func waitResult(t *testing.T, done <-chan runResult) runResult {
	t.Helper()

	select {
	case r := <-done:
		return r
	case <-time.After(3 * time.Second):
		t.Fatal("command did not finish in time")
		return runResult{}
	}
}

func sendEvent(t *testing.T, src *chanSource, ev watch.Event) {
	t.Helper()

	select {
	case src.events <- ev:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not accept event")
	}
}

// ---------------------------------------------------------------------------
// Help output
// ---------------------------------------------------------------------------

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := executeCommand("--help")
	require.NoError(t, err)

	for _, sub := range []string{"convert", "config", "version", "completion"} {
		assert.Contains(t, stdout, sub, "help should mention %q subcommand", sub)
	}

	for _, flag := range []string{
		"--input", "--output", "--template", "--debounce", "--on-unsupported",
		"--show-diff", "--config", "--log-level", "--log-format", "--quiet",
	} {
		assert.Contains(t, stdout, flag, "help should mention %q flag", flag)
	}
}

// ---------------------------------------------------------------------------
// Exit codes
// ---------------------------------------------------------------------------

func TestRootCommand_UnknownFlag(t *testing.T) {
	_, stderr, err := executeCommand("--nonexistent")
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Empty(t, stderr, "cobra should not print errors to stderr (SilenceErrors)")
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	_, _, err := executeCommand("--config", "/nonexistent/path.yaml", "config")

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestRootCommand_InvalidLogLevel(t *testing.T) {
	_, _, err := executeCommand("--log-level", "trace", "config")

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestRootCommand_RejectsArgs(t *testing.T) {
	_, _, err := executeCommand("docs")
	require.Error(t, err)
}

func TestExecute_ReportsErrorPrefix(t *testing.T) {
	cmd := NewRootCommand()
	errBuf := new(bytes.Buffer)
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{"--input", "/nonexistent/dir/12345"})

	code := execute(context.Background(), cmd)
	assert.Equal(t, 2, code)
	assert.Contains(t, errBuf.String(), "ERROR: invalid input directory")
}

func TestExitError(t *testing.T) {
	assert.Equal(t, "exit code 3", (&ExitError{Code: 3}).Error())

	err := &ExitError{Code: 1, Err: assert.AnError}
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, assert.AnError.Error(), err.Error())
}

// ---------------------------------------------------------------------------
// Watch sessions
// ---------------------------------------------------------------------------

func TestWatch_ConvertsMarkdown(t *testing.T) {
	src := useChanSource(t)
	in, out := t.TempDir(), t.TempDir()
	note := filepath.Join(in, "note.md")
	require.NoError(t, os.WriteFile(note, []byte("# Hi"), 0o644)) //nolint:gosec // test

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := startWatch(ctx, "-i", in, "-o", out, "--debounce", "20ms")
	sendEvent(t, src, watch.Event{Path: note, Op: watch.OpWrite})

	outPath := filepath.Join(out, "note.html")
	require.Eventually(t, func() bool {
		_, err := os.Stat(outPath)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()

	res := waitResult(t, done)
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout.String(), "generated "+note)

	got, err := os.ReadFile(outPath) //nolint:gosec // test
	require.NoError(t, err)
	assert.Equal(t, "<h1>Hi</h1>\n", string(got))
}

func TestWatch_UnsupportedFileExitsNonZero(t *testing.T) {
	src := useChanSource(t)
	in, out := t.TempDir(), t.TempDir()

	done := startWatch(context.Background(), "-i", in, "-o", out, "--debounce", "20ms")
	sendEvent(t, src, watch.Event{Path: filepath.Join(in, "readme.txt"), Op: watch.OpWrite})

	res := waitResult(t, done)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr.String(), "ERROR: unsupported conversion")
}

func TestWatch_MissingTemplateFailsAtStartup(t *testing.T) {
	src := useChanSource(t)
	in, out := t.TempDir(), t.TempDir()
	note := filepath.Join(in, "note.md")
	require.NoError(t, os.WriteFile(note, []byte("# Hi"), 0o644)) //nolint:gosec // test

	done := startWatch(context.Background(),
		"-i", in, "-o", out, "-t", filepath.Join(in, "missing.tmpl"))

	res := waitResult(t, done)
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr.String(), "ERROR: template")

	// No session was started, so nothing consumes events.
	select {
	case src.events <- watch.Event{Path: note, Op: watch.OpWrite}:
		t.Fatal("event consumed after startup failure")
	default:
	}

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWatch_WithTemplateAndSkipPolicy(t *testing.T) {
	src := useChanSource(t)
	in, out := t.TempDir(), t.TempDir()
	note := filepath.Join(in, "note.md")
	tmpl := filepath.Join(t.TempDir(), "page.tmpl")
	require.NoError(t, os.WriteFile(note, []byte("~~x~~"), 0o644))                   //nolint:gosec // test
	require.NoError(t, os.WriteFile(tmpl, []byte("<body>{{{html}}}</body>"), 0o644)) //nolint:gosec // test

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := startWatch(ctx, "-i", in, "-o", out, "-t", tmpl,
		"--debounce", "20ms", "--on-unsupported", "skip")

	sendEvent(t, src, watch.Event{Path: filepath.Join(in, "image.png"), Op: watch.OpWrite})
	sendEvent(t, src, watch.Event{Path: note, Op: watch.OpWrite})

	outPath := filepath.Join(out, "note.html")
	require.Eventually(t, func() bool {
		_, err := os.Stat(outPath)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()

	res := waitResult(t, done)
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stderr.String(), "skipping unsupported file")

	got, err := os.ReadFile(outPath) //nolint:gosec // test
	require.NoError(t, err)
	assert.Equal(t, "<body><p><del>x</del></p>\n</body>", string(got))
}
