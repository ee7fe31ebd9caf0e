// Package app assembles a runnable pipedox application: operator registry,
// built-in and user-supplied pipeline declarations, dispatcher, and the
// extraction run itself.
package app
