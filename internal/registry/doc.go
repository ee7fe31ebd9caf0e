// Package registry provides the central "glue" for the extractor module
// system.
//
// The Registry stores the mapping between the operator names used in
// pipeline declarations (e.g. "htmlText") and the compiled Go operators that
// implement them. It is populated from modules during application startup
// and consulted by the pipeline builder, so a declaration naming an
// unregistered operator fails when its graph is built, not mid-extraction.
package registry
