// Package pipeline implements the document processing graph engine.
//
// A document type is described by a Declaration: an ordered list of node
// specs, references to other declared types, and configuration defaults.
// Order encodes priority; when two entries produce the same output name the
// earlier one wins, and anything pulled in through a reference ranks below
// the referencing declaration's own entries.
//
// Declarations are flattened once per document type into an immutable
// ResolvedGraph mapping each output name to its single producing node. A
// Dispatcher hands out resolved graphs by type key, falling back to the
// universal Wildcard key. Each open document gets an Instance, which resolves
// requested output names lazily and recursively, memoizing the results of
// cacheable nodes so every producing operator runs at most once per document.
//
// The engine itself performs no I/O and knows nothing about PDF geometry,
// OCR or NLP models; those are operators plugged in via the operator and
// registry packages.
package pipeline
