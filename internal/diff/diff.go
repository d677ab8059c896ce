// Package diff computes unified diffs between successive generations of an
// output file.
package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Result holds the result of a unified diff computation.
type Result struct {
	Unified        string
	HasDifferences bool
	Added          int
	Removed        int
}

// Options configures diff computation.
type Options struct {
	OldLabel string
	NewLabel string
	Context  int
}

// DefaultOptions returns the default diff options.
func DefaultOptions() Options {
	return Options{
		OldLabel: "previous",
		NewLabel: "generated",
		Context:  3,
	}
}

// Compute computes a unified diff between two documents.
func Compute(oldDoc, newDoc string, opts Options) (*Result, error) {
	ud := difflib.UnifiedDiff{
		A:        splitLines(oldDoc),
		B:        splitLines(newDoc),
		FromFile: opts.OldLabel,
		ToFile:   opts.NewLabel,
		Context:  opts.Context,
	}

	unified, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return nil, fmt.Errorf("computing diff: %w", err)
	}

	res := &Result{
		Unified:        unified,
		HasDifferences: unified != "",
	}

	for _, line := range strings.Split(unified, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			res.Added++
		case strings.HasPrefix(line, "-"):
			res.Removed++
		}
	}

	return res, nil
}

// Summary returns a one-line description such as "+3 -1 lines".
func (r *Result) Summary() string {
	if !r.HasDifferences {
		return "no changes"
	}

	return fmt.Sprintf("+%d -%d lines", r.Added, r.Removed)
}

// Write writes the diff to w with optional ANSI colors.
func Write(w io.Writer, r *Result, color bool) {
	if !r.HasDifferences {
		_, _ = fmt.Fprintln(w, "No differences found.")
		return
	}

	for _, line := range strings.Split(strings.TrimSuffix(r.Unified, "\n"), "\n") {
		if color {
			writeColorLine(w, line)
		} else {
			_, _ = fmt.Fprintln(w, line)
		}
	}
}

func writeColorLine(w io.Writer, line string) {
	const (
		red   = "\033[31m"
		green = "\033[32m"
		cyan  = "\033[36m"
		bold  = "\033[1m"
		reset = "\033[0m"
	)

	switch {
	case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
		_, _ = fmt.Fprintf(w, "%s%s%s\n", bold, line, reset)
	case strings.HasPrefix(line, "@@"):
		_, _ = fmt.Fprintf(w, "%s%s%s\n", cyan, line, reset)
	case strings.HasPrefix(line, "-"):
		_, _ = fmt.Fprintf(w, "%s%s%s\n", red, line, reset)
	case strings.HasPrefix(line, "+"):
		_, _ = fmt.Fprintf(w, "%s%s%s\n", green, line, reset)
	default:
		_, _ = fmt.Fprintln(w, line)
	}
}

// splitLines keeps trailing newlines on each element as difflib expects.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}

	return strings.SplitAfter(s, "\n")
}
