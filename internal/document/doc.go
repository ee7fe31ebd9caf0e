// Package document is the user-facing entry point for extraction: it sniffs
// a document's type, binds the content to the type's resolved pipeline via
// the dispatcher, and exposes lazy Get access to every declared output.
//
// The package owns the only file I/O in the repository; the pipeline engine
// itself never touches the filesystem.
package document
