// Package processor implements the document processor: the
// orchestration of header, sequential-section, hierarchical, and trailer
// phases that walks a Document and HL Tree under a Schema to populate a
// jsontree.Tree.
package processor

import (
	"github.com/logward/x12transform/document"
	"github.com/logward/x12transform/errs"
	"github.com/logward/x12transform/hltree"
	"github.com/logward/x12transform/jsontree"
	"github.com/logward/x12transform/schema"
	"github.com/logward/x12transform/transformctx"
)

type processor struct {
	doc    *document.Document
	tree   *hltree.Tree
	schema *schema.Schema
	ctx    *transformctx.Ctx
	out    *jsontree.Tree
}

// Process runs all four phases and returns the populated JSON tree. tree
// may be nil for schemas with no hierarchical structure to
// walk (e.g. a header/trailer-only document with no HL segments).
func Process(doc *document.Document, tree *hltree.Tree, sch *schema.Schema, ctx *transformctx.Ctx) (*jsontree.Tree, error) {
	p := &processor{doc: doc, tree: tree, schema: sch, ctx: ctx, out: jsontree.New()}

	if err := p.runSegmentDefs(p.out.RootObject(), sch.HeaderSegments, 0, doc.SegmentCount()); err != nil {
		return nil, err
	}
	if err := p.runSequentialSections(); err != nil {
		return nil, err
	}
	if tree != nil {
		for _, root := range tree.Roots {
			if err := p.emitNode(p.out.RootObject(), root); err != nil {
				return nil, err
			}
		}
	}
	if err := p.runSegmentDefs(p.out.RootObject(), sch.TrailerSegments, 0, doc.SegmentCount()); err != nil {
		return nil, err
	}
	return p.out, nil
}

// runSegmentDefs applies each SegmentDef in defs, in order, writing into
// scope. Each def scans doc.Segments[start:end] for its first (or, when
// Multiple, every) matching occurrence. Required-but-missing is fatal.
func (p *processor) runSegmentDefs(scope *jsontree.Object, defs []schema.SegmentDef, start, end int) error {
	segs, err := p.doc.Range(start, end)
	if err != nil {
		return err
	}
	for i := range defs {
		def := &defs[i]
		if err := p.runSegmentDef(scope, segs, def); err != nil {
			return err
		}
	}
	return nil
}

func (p *processor) runSegmentDef(scope *jsontree.Object, segs []document.Segment, def *schema.SegmentDef) error {
	offset := 0
	found := false
	for {
		seg, idx, ok := findInRange(segs, def, offset)
		if !ok {
			break
		}
		found = true
		if err := p.applySegment(scope, seg, def); err != nil {
			return err
		}
		offset = idx + 1
		if !def.Multiple {
			break
		}
	}
	if !found && !def.Optional {
		return errs.New(errs.ParseError, "required segment %q not found", def.ID).
			WithContext("segment", def.ID)
	}
	return nil
}

// runSequentialSections implements Phase B: each SequentialSection starts
// at the document position of its first SegmentDef's first matching
// segment; its SegmentDefs are then applied in order from there.
func (p *processor) runSequentialSections() error {
	for _, section := range p.schema.SequentialSections {
		if len(section.Segments) == 0 {
			continue
		}
		startIdx, ok := p.doc.FindIndex(section.Segments[0].ID, 0)
		if !ok {
			continue
		}
		if err := p.applySequentialSection(section, startIdx); err != nil {
			return err
		}
	}
	return nil
}

func (p *processor) applySequentialSection(section schema.SequentialSection, startIdx int) error {
	target, err := jsontree.EnsureObjectPath(p.out.RootObject(), section.OutputPath)
	if err != nil {
		return err
	}
	return p.runSegmentDefs(target, section.Segments, startIdx, p.doc.SegmentCount())
}
