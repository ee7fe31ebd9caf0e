// Package hcldecl loads pipeline declarations from HCL files.
//
// Each file holds one or more `pipeline "<type>"` blocks. A pipeline body is
// an ordered mix of node, alias, constant, config and ref blocks; the engine
// treats source order as priority order, so the loader preserves it exactly.
//
//	pipeline "html" {
//	  seeds = ["fobj", "source", "filename"]
//
//	  node "full_text" {
//	    operator = "htmlText"
//	    inputs   = { html = "raw_content" }
//	    outputs  = ["full_text", "markdown"]
//	  }
//
//	  constant "mime_type" { value = "text/html" }
//	  config { top_k = 5 }
//	  ref "base" {}
//	}
//
// The loader is a front end over the pipeline package's declaration model;
// declarations authored in Go and in HCL are interchangeable.
package hcldecl
