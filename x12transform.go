// Package x12transform is the facade tying the tokenizer, HL tree builder,
// schema loader, and document processor into the single operation this
// module exposes: process(x12_bytes, schema_handle) -> json_bytes.
package x12transform

import (
	"github.com/logward/x12transform/document"
	"github.com/logward/x12transform/errs"
	"github.com/logward/x12transform/hltree"
	"github.com/logward/x12transform/processor"
	"github.com/logward/x12transform/schema"
	"github.com/logward/x12transform/transformctx"
)

// Schema is a loaded, immutable mapping document; safe to share across
// concurrent Process calls.
type Schema = schema.Schema

// LoadSchema parses schema JSON bytes into a *Schema.
func LoadSchema(schemaJSON []byte) (*Schema, error) {
	return schema.Load(schemaJSON)
}

// LoadSchemaYAML parses a YAML-authored schema document into a *Schema.
func LoadSchemaYAML(schemaYAML []byte) (*Schema, error) {
	return schema.LoadYAML(schemaYAML)
}

// Process tokenizes x12, builds its HL forest when the document contains
// any HL segments, and runs sch's document processor over both, returning
// the resulting JSON document. A document with no HL segments is valid
// and simply skips the hierarchical phase.
func Process(x12 []byte, sch *Schema) ([]byte, error) {
	return ProcessWithContext(x12, sch, transformctx.New(""))
}

// ProcessWithContext is Process with an explicit, caller-supplied
// transformctx.Ctx (for correlation ids set by the outer, non-core
// caller).
func ProcessWithContext(x12 []byte, sch *Schema, ctx *transformctx.Ctx) ([]byte, error) {
	if sch == nil {
		return nil, errs.New(errs.InvalidArgument, "nil schema")
	}

	doc, err := document.Tokenize(x12)
	if err != nil {
		return nil, err
	}

	var tree *hltree.Tree
	if doc.Count("HL") > 0 {
		tree, err = hltree.Build(doc)
		if err != nil {
			return nil, err
		}
	}

	out, err := processor.Process(doc, tree, sch, ctx)
	if err != nil {
		return nil, err
	}
	return out.Stringify(), nil
}
