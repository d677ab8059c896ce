package watch

import (
	"errors"
	"fmt"
)

// Reason classifies why a file was rejected.
type Reason int

// Rejection reasons.
const (
	// ReasonNoExtension means the file name has no extension.
	ReasonNoExtension Reason = iota + 1
	// ReasonExtension means the extension is neither md nor html.
	ReasonExtension
)

// UnsupportedFileError reports a write to a file that cannot be converted.
type UnsupportedFileError struct {
	Path   string
	Ext    string
	Reason Reason
}

func (e *UnsupportedFileError) Error() string {
	if e.Reason == ReasonNoExtension {
		return fmt.Sprintf("unsupported conversion: no file extension found: %s", e.Path)
	}

	return fmt.Sprintf("unsupported conversion: only markdown files can be converted, got %q: %s", e.Ext, e.Path)
}

var errNotDirectory = errors.New("not a directory")

// DirectoryError reports an input or output directory that does not exist
// or is not a directory.
type DirectoryError struct {
	Role string
	Path string
	Err  error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("invalid %s directory %q: %v", e.Role, e.Path, e.Err)
}

func (e *DirectoryError) Unwrap() error { return e.Err }
