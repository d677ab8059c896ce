// Package fileio reads Markdown sources and writes generated HTML files.
package fileio

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"unicode/utf8"
)

// ErrInvalidEncoding is returned when a source file is not valid UTF-8.
var ErrInvalidEncoding = errors.New("invalid UTF-8 encoding")

// ReadMarkdown reads the full contents of the file at path as text.
func ReadMarkdown(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the watched directory
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("reading %s: %w", path, ErrInvalidEncoding)
	}

	return string(data), nil
}

// FileWriter writes generated output to a single file, creating or
// truncating it.
type FileWriter struct {
	path     string
	perm     os.FileMode
	logger   *slog.Logger
	previous []byte
	existed  bool
}

// FileWriterOption configures a FileWriter.
type FileWriterOption func(*FileWriter)

// WithPermissions overrides the default file permissions (0644).
func WithPermissions(perm os.FileMode) FileWriterOption {
	return func(fw *FileWriter) {
		fw.perm = perm
	}
}

// WithLogger sets a logger for the FileWriter.
func WithLogger(logger *slog.Logger) FileWriterOption {
	return func(fw *FileWriter) {
		fw.logger = logger
	}
}

// NewFileWriter creates a writer that writes to the specified file path.
func NewFileWriter(path string, opts ...FileWriterOption) *FileWriter {
	fw := &FileWriter{
		path:   path,
		perm:   0o644,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(fw)
	}

	return fw
}

// Write replaces the file contents with data. The parent directory must
// already exist.
func (fw *FileWriter) Write(data []byte) error {
	fw.previous, fw.existed = nil, false

	if prev, err := os.ReadFile(fw.path); err == nil {
		fw.previous, fw.existed = prev, true
		fw.logger.Debug("overwriting existing file", slog.String("path", fw.path))
	}

	if err := os.WriteFile(fw.path, data, fw.perm); err != nil {
		return fmt.Errorf("writing file %s: %w", fw.path, err)
	}

	return nil
}

// Previous returns the contents the file held before the last Write and
// whether the file existed at that point.
func (fw *FileWriter) Previous() (string, bool) {
	return string(fw.previous), fw.existed
}

// Path returns the output file path.
func (fw *FileWriter) Path() string {
	return fw.path
}
