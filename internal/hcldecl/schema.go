package hcldecl

import "github.com/hashicorp/hcl/v2"

// topSchema matches the top level of a declaration file: pipeline blocks only.
var topSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "pipeline", LabelNames: []string{"type"}},
	},
}

// pipelineSchema matches the body of a pipeline block. Block order is
// significant and preserved by the parser.
var pipelineSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "seeds"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "node", LabelNames: []string{"name"}},
		{Type: "alias", LabelNames: []string{"name"}},
		{Type: "constant", LabelNames: []string{"name"}},
		{Type: "config"},
		{Type: "ref", LabelNames: []string{"key"}},
	},
}

// nodeBody is the decoded content of a node block. The block label names the
// node's primary output; outputs, when set, replaces it with the full ordered
// list. cache defaults to the operator's own metadata when omitted.
type nodeBody struct {
	Operator       string         `hcl:"operator"`
	Inputs         hcl.Expression `hcl:"inputs,optional"`
	OptionalInputs hcl.Expression `hcl:"optional_inputs,optional"`
	Outputs        []string       `hcl:"outputs,optional"`
	Cache          *bool          `hcl:"cache,optional"`
}

// aliasBody is the decoded content of an alias block.
type aliasBody struct {
	Target string `hcl:"target"`
}

// constantBody is the decoded content of a constant block.
type constantBody struct {
	Value hcl.Expression `hcl:"value"`
}

// refBody is the decoded content of a ref block, which carries nothing but
// its label.
type refBody struct{}
