// Package operator defines the contract between the pipeline engine and the
// pluggable extraction computations it orchestrates.
//
// An operator is a named unit of computation: it declares which named inputs
// it consumes, which named outputs it produces, and whether its result may be
// memoized per document instance. The engine treats operators as opaque; PDF
// geometry, OCR, NLP inference and friends all live behind this interface.
//
// Operators are registered by string name in the registry package and wired
// into per-document-type graphs by the pipeline package.
package operator
