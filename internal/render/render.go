// Package render wraps converted HTML in an optional user-supplied template.
//
// Templates use Go template syntax with the sprig function library. The
// converted document is bound to the key "html", so both {{ .html }} and the
// handlebars-style {{html}} / {{{html}}} placeholders resolve to it. The
// output is never HTML-escaped unless the template asks for it, as in
// {{ .html | html }}.
package render

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// HTMLKey is the single template variable bound at render time.
const HTMLKey = "html"

// TemplateError reports a template that could not be loaded, parsed, or
// executed.
type TemplateError struct {
	Path string
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %v", e.Path, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// Renderer applies a template file to converted HTML. The file is reloaded on
// every call so edits to the template take effect on the next conversion.
type Renderer struct {
	path       string
	missingKey string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithStrictKeys makes references to keys other than "html" fail at render
// time instead of producing "<no value>".
func WithStrictKeys() Option {
	return func(r *Renderer) {
		r.missingKey = "error"
	}
}

// New creates a Renderer for the template at path. An empty path disables
// templating and Render returns its input unchanged.
func New(path string, opts ...Option) *Renderer {
	r := &Renderer{
		path:       path,
		missingKey: "default",
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Enabled reports whether a template path is configured.
func (r *Renderer) Enabled() bool {
	return r.path != ""
}

// Path returns the configured template path.
func (r *Renderer) Path() string {
	return r.path
}

// Check loads and parses the template without executing it.
func (r *Renderer) Check() error {
	if !r.Enabled() {
		return nil
	}

	_, err := r.load("")

	return err
}

// Render returns html wrapped in the template, or html itself when no template
// is configured.
func (r *Renderer) Render(html string) (string, error) {
	if !r.Enabled() {
		return html, nil
	}

	tmpl, err := r.load(html)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{HTMLKey: html}); err != nil {
		return "", &TemplateError{Path: r.path, Err: fmt.Errorf("executing: %w", err)}
	}

	return buf.String(), nil
}

func (r *Renderer) load(html string) (*template.Template, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, &TemplateError{Path: r.path, Err: fmt.Errorf("reading: %w", err)}
	}

	// The template-local "html" func shadows the builtin escaper: with no
	// arguments it yields the document, otherwise it escapes like the builtin.
	funcs := sprig.TxtFuncMap()
	funcs[HTMLKey] = func(args ...any) string {
		if len(args) == 0 {
			return html
		}

		return template.HTMLEscaper(args...)
	}

	tmpl, err := template.New("template").
		Option("missingkey=" + r.missingKey).
		Funcs(funcs).
		Parse(normalizeTripleStash(string(data)))
	if err != nil {
		return nil, &TemplateError{Path: r.path, Err: fmt.Errorf("parsing: %w", err)}
	}

	return tmpl, nil
}

var tripleStash = regexp.MustCompile(`\{\{\{\s*([\w.]+)\s*\}\}\}`)

// normalizeTripleStash rewrites handlebars placeholders such as {{{html}}}
// into {{html}}. Other braces are left untouched.
func normalizeTripleStash(src string) string {
	return tripleStash.ReplaceAllString(src, "{{$1}}")
}
