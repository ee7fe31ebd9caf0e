// Package defaults holds the built-in pipeline declarations: a universal
// wildcard graph plus per-type graphs that inherit from it. User-supplied
// HCL declarations are merged over this set, shadowing it key by key.
package defaults

import "github.com/vk/pipedox/internal/pipeline"

// SeedNames are the constructor attributes every built-in pipeline may
// reference: the file object, the source locator, the file name, and the
// resolved document-type key.
var SeedNames = []string{"fobj", "source", "filename", "document_type"}

// Set returns a fresh copy of the built-in declaration set.
func Set() pipeline.DeclarationSet {
	base := &pipeline.Declaration{
		Seeds: SeedNames,
		Entries: []pipeline.Entry{
			pipeline.Node("rawText").Bind("fobj", "fobj").Out("full_text"),
			pipeline.Node("textLines").Bind("full_text", "full_text").Out("text_lines"),
			pipeline.Node("urls").Bind("full_text", "full_text").Out("urls"),
			pipeline.Node("keywords").
				Bind("full_text", "full_text").
				BindOpt("top_k", "top_k").
				Out("keywords"),
			pipeline.Node("detectLanguage").Bind("full_text", "full_text").Out("lang"),
			pipeline.Alias("text", "full_text"),
			pipeline.Alias("source", "source"),
			pipeline.Alias("filename", "filename"),
			pipeline.Constant("mime_type", "application/octet-stream"),
			pipeline.Config(map[string]any{"top_k": 10}),
		},
	}

	html := &pipeline.Declaration{
		Entries: []pipeline.Entry{
			pipeline.Node("htmlText").Bind("fobj", "fobj").Out("full_text", "raw_content"),
			pipeline.Constant("mime_type", "text/html"),
			pipeline.Ref(pipeline.Wildcard),
		},
	}

	text := &pipeline.Declaration{
		Entries: []pipeline.Entry{
			pipeline.Constant("mime_type", "text/plain"),
			pipeline.Ref(pipeline.Wildcard),
		},
	}

	return pipeline.DeclarationSet{
		pipeline.Wildcard: base,
		"html":            html,
		"text":            text,
	}
}

// Merge layers user declarations over the built-in set: a user-declared type
// key replaces the built-in declaration of the same key wholesale, while
// untouched built-in keys stay referenceable from user pipelines.
func Merge(builtin, user pipeline.DeclarationSet) pipeline.DeclarationSet {
	merged := make(pipeline.DeclarationSet, len(builtin)+len(user))
	for key, decl := range builtin {
		merged[key] = decl
	}
	for key, decl := range user {
		merged[key] = decl
	}
	return merged
}
