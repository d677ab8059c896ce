package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// HandleFunc converts the Markdown file at path and returns the path of the
// generated output.
type HandleFunc func(ctx context.Context, path string) (string, error)

// Policy selects how writes to unsupported files are treated.
type Policy string

// Unsupported-file policies.
const (
	// PolicyFail ends the session with an UnsupportedFileError.
	PolicyFail Policy = "fail"
	// PolicySkip logs a warning and keeps watching.
	PolicySkip Policy = "skip"
)

// ParsePolicy converts s into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(s)); p {
	case PolicyFail, PolicySkip:
		return p, nil
	default:
		return "", fmt.Errorf("invalid unsupported-file policy %q: must be one of fail, skip", s)
	}
}

// Options configures a Watcher.
type Options struct {
	// InputDir is watched for Markdown writes (non-recursive).
	InputDir string

	// OutputDir receives generated files. It is only validated here.
	OutputDir string

	// Debounce is the quiet period before a write is dispatched.
	Debounce time.Duration

	// OnUnsupported selects the policy for non-Markdown files.
	OnUnsupported Policy

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out is the writer for user-facing status messages.
	Out io.Writer

	// Quiet suppresses the startup banner. Confirmation lines are still
	// written to Out.
	Quiet bool
}

// DefaultOptions returns the default watch options.
func DefaultOptions() Options {
	return Options{
		InputDir:      ".",
		OutputDir:     ".",
		Debounce:      time.Second,
		OnUnsupported: PolicyFail,
		Logger:        slog.Default(),
		Out:           os.Stdout,
	}
}

// Watcher is a single watch session. A Watcher runs at most once.
type Watcher struct {
	source Source
	handle HandleFunc
	opts   Options

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a Watcher that reads notifications from src and converts
// settled Markdown writes with handle.
func New(src Source, handle HandleFunc, opts Options) *Watcher {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	if opts.OnUnsupported == "" {
		opts.OnUnsupported = PolicyFail
	}

	return &Watcher{
		source: src,
		handle: handle,
		opts:   opts,
		stop:   make(chan struct{}),
	}
}

// Stop ends the session. Run returns nil once the in-flight conversion, if
// any, has finished.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}

// Run validates the directories, subscribes to the input directory and
// processes events until ctx is cancelled, Stop is called, or a fatal error
// occurs. Transport errors are logged and do not end the session.
func (w *Watcher) Run(ctx context.Context) error {
	if err := ValidateDirs(w.opts.InputDir, w.opts.OutputDir); err != nil {
		return err
	}

	sub, err := w.source.Subscribe(w.opts.InputDir)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", w.opts.InputDir, err)
	}
	defer sub.Close()

	debouncer := NewDebouncer(w.opts.Debounce)
	defer debouncer.Stop()

	if !w.opts.Quiet {
		fmt.Fprintf(w.opts.Out, "watching %s -> %s (debounce=%s)\n",
			w.opts.InputDir, w.opts.OutputDir, w.opts.Debounce)
	}

	events, errs := sub.Events(), sub.Errors()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-w.stop:
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}

			if !event.Op.Has(OpWrite) {
				if event.Op.Has(OpRename) {
					w.opts.Logger.Debug("ignoring rename", slog.String("path", event.Path))
				}

				continue
			}

			debouncer.Trigger(event)

		case event := <-debouncer.C():
			if err := w.dispatch(ctx, event); err != nil {
				return err
			}

		case watchErr, ok := <-errs:
			if !ok {
				return nil
			}

			w.opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// dispatch handles a single settled write.
func (w *Watcher) dispatch(ctx context.Context, event Event) error {
	convertible, err := CheckExtension(event.Path)
	if err != nil {
		return w.unsupported(err)
	}

	if !convertible {
		return nil
	}

	out, err := w.handle(ctx, event.Path)
	if err != nil {
		return fmt.Errorf("converting %s: %w", event.Path, err)
	}

	fmt.Fprintf(w.opts.Out, "[%s] generated %s -> %s\n", time.Now().Format("15:04:05"), event.Path, out)

	return nil
}

// CheckExtension classifies path by its extension. Markdown files are
// convertible; HTML files are not convertible but accepted; anything else
// yields an *UnsupportedFileError.
func CheckExtension(path string) (bool, error) {
	ext, ok := extension(filepath.Base(path))

	switch {
	case !ok:
		return false, &UnsupportedFileError{Path: path, Reason: ReasonNoExtension}
	case ext == "html":
		return false, nil
	case ext != "md":
		return false, &UnsupportedFileError{Path: path, Ext: ext, Reason: ReasonExtension}
	default:
		return true, nil
	}
}

func (w *Watcher) unsupported(err error) error {
	return ApplyPolicy(w.opts.OnUnsupported, w.opts.Logger, err)
}

// ApplyPolicy returns err under PolicyFail. Under PolicySkip it logs err as a
// warning and returns nil.
func ApplyPolicy(p Policy, logger *slog.Logger, err error) error {
	if p != PolicySkip {
		return err
	}

	logger.Warn("skipping unsupported file", slog.String("reason", err.Error()))

	return nil
}

// extension returns the text after the last dot of name. A leading dot alone
// does not start an extension, so ".md" has none.
func extension(name string) (string, bool) {
	i := strings.LastIndex(name, ".")
	if i <= 0 {
		return "", false
	}

	return name[i+1:], true
}

// ValidateDirs checks that both directories exist and are directories.
func ValidateDirs(inputDir, outputDir string) error {
	if err := ValidateDir("input", inputDir); err != nil {
		return err
	}

	return ValidateDir("output", outputDir)
}

// ValidateDir checks that path exists and is a directory. role names the
// directory in the returned *DirectoryError.
func ValidateDir(role, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &DirectoryError{Role: role, Path: path, Err: err}
	}

	if !info.IsDir() {
		return &DirectoryError{Role: role, Path: path, Err: errNotDirectory}
	}

	return nil
}
