// Package watch drives the Markdown-to-HTML workflow. It subscribes to
// change notifications for a single directory, collapses bursts of writes to
// the same file, and dispatches each settled write according to the file's
// extension:
//
//   - .md files are handed to the conversion callback.
//   - .html files are ignored, so generated output written into the watched
//     directory does not feed back into the loop.
//   - Anything else, including files without an extension, is rejected with
//     an [UnsupportedFileError] that ends the session, unless the
//     [PolicySkip] policy is selected.
//
// Filesystem notifications come from a [Source]; [NewFSNotifySource] is the
// production implementation.
package watch
