// Package markdown converts Markdown source into HTML.
//
// Only CommonMark plus the table and strikethrough extensions are enabled.
// Raw HTML embedded in the source is passed through unchanged.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Converter renders Markdown into HTML. A Converter holds no per-call state
// and is safe for concurrent use.
type Converter struct {
	engine goldmark.Markdown
}

// New creates a Converter with tables and strikethrough enabled.
func New() *Converter {
	return &Converter{
		engine: goldmark.New(
			goldmark.WithExtensions(
				extension.Table,
				extension.Strikethrough,
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
		),
	}
}

// Convert renders src into HTML.
func (c *Converter) Convert(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.engine.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}

	return buf.Bytes(), nil
}

var defaultConverter = New()

// ToHTML renders src with the default converter. Markdown has no invalid
// input, and rendering into memory cannot fail, so ToHTML never errors.
func ToHTML(src string) string {
	out, err := defaultConverter.Convert([]byte(src))
	if err != nil {
		return ""
	}

	return string(out)
}
