// Package convert implements the per-file conversion pipeline:
// read Markdown, render HTML, apply the optional template, write the result.
package convert

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/hupe1980/mdwatch/internal/diff"
	"github.com/hupe1980/mdwatch/internal/fileio"
	"github.com/hupe1980/mdwatch/internal/markdown"
	"github.com/hupe1980/mdwatch/internal/render"
)

// Request describes a single conversion. It lives for one event only.
type Request struct {
	// Input is the Markdown source path as reported by the watcher.
	Input string
	// Output is the derived HTML destination.
	Output string
	// Template is the optional template path; empty means none.
	Template string
}

// NewRequest derives the request for input, placing the output in outputDir.
func NewRequest(input, outputDir, template string) Request {
	return Request{
		Input:    input,
		Output:   OutputPath(outputDir, input),
		Template: template,
	}
}

// OutputPath returns {outputDir}/{stem}.html where stem is the input file name
// without its final extension. Input subdirectories are not reproduced.
func OutputPath(outputDir, input string) string {
	name := filepath.Base(input)
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	return filepath.Join(outputDir, stem+".html")
}

// Result reports a completed conversion.
type Result struct {
	Request
	// OutputAbs is the absolute path of the written file.
	OutputAbs string
	// Bytes is the number of bytes written.
	Bytes int
	// Diff is set when diff reporting is enabled and an earlier output existed.
	Diff *diff.Result
}

// Options configures a Pipeline.
type Options struct {
	// OutputDir receives the generated HTML files.
	OutputDir string

	// Template is the optional template path.
	Template string

	// ShowDiff prints a unified diff against the previous output to DiffOut.
	ShowDiff bool

	// DiffOut receives diffs when ShowDiff is set.
	DiffOut io.Writer

	// Color enables ANSI colors in diffs.
	Color bool

	// Logger is used for structured logging.
	Logger *slog.Logger
}

// Pipeline converts Markdown files into HTML files. It keeps no state
// between conversions.
type Pipeline struct {
	opts      Options
	converter *markdown.Converter
	renderer  *render.Renderer
}

// New creates a Pipeline.
func New(opts Options) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.DiffOut == nil {
		opts.DiffOut = io.Discard
	}

	return &Pipeline{
		opts:      opts,
		converter: markdown.New(),
		renderer:  render.New(opts.Template),
	}
}

// Check validates the configured template by loading and parsing it.
func (p *Pipeline) Check() error {
	return p.renderer.Check()
}

// Convert runs the full pipeline for the Markdown file at input.
func (p *Pipeline) Convert(ctx context.Context, input string) (*Result, error) {
	req := NewRequest(input, p.opts.OutputDir, p.opts.Template)

	return p.Run(ctx, req)
}

// Run executes req.
func (p *Pipeline) Run(_ context.Context, req Request) (*Result, error) {
	src, err := fileio.ReadMarkdown(req.Input)
	if err != nil {
		return nil, err
	}

	html, err := p.converter.Convert([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", req.Input, err)
	}

	out, err := p.renderer.Render(string(html))
	if err != nil {
		return nil, err
	}

	w := fileio.NewFileWriter(req.Output, fileio.WithLogger(p.opts.Logger))
	if err := w.Write([]byte(out)); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(req.Output)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", req.Output, err)
	}

	res := &Result{Request: req, OutputAbs: abs, Bytes: len(out)}

	if p.opts.ShowDiff {
		if prev, existed := w.Previous(); existed {
			d, diffErr := diff.Compute(prev, out, diff.DefaultOptions())
			if diffErr != nil {
				return nil, diffErr
			}

			res.Diff = d
			diff.Write(p.opts.DiffOut, d, p.opts.Color)
		}
	}

	p.opts.Logger.Debug("converted",
		slog.String("input", req.Input),
		slog.String("output", abs),
		slog.Int("bytes", len(out)),
	)

	return res, nil
}
