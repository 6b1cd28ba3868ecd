package processor

import (
	"github.com/logward/x12transform/document"
	"github.com/logward/x12transform/errs"
	"github.com/logward/x12transform/jsontree"
	"github.com/logward/x12transform/schema"
	"github.com/logward/x12transform/transformfuncs"
)

// applySegment applies the matched segment
// seg against def, writing into scope. doc supplies the composite
// delimiter and, when def.Group is set, the forward scan for group
// members.
func (p *processor) applySegment(scope *jsontree.Object, seg document.Segment, def *schema.SegmentDef) error {
	if err := p.applyElementMappings(scope, seg, def.Elements, def.ID); err != nil {
		return err
	}
	if len(def.Group) > 1 {
		if err := p.applyGroup(scope, seg, def); err != nil {
			return err
		}
	}
	if def.RepeatingElements != nil {
		if err := p.applyRepeatingElements(scope, seg, def.RepeatingElements); err != nil {
			return err
		}
	}
	return nil
}

// applyElementMappings applies every mapping in mappings whose Seg is empty
// or equals segID against seg, writing into scope.
func (p *processor) applyElementMappings(scope *jsontree.Object, seg document.Segment, mappings []schema.ElementMapping, segID string) error {
	for _, m := range mappings {
		if m.Seg != "" && m.Seg != segID {
			continue
		}
		if err := p.applyElementMapping(scope, seg, m); err != nil {
			return err
		}
	}
	return nil
}

func (p *processor) applyElementMapping(scope *jsontree.Object, seg document.Segment, m schema.ElementMapping) error {
	elem, ok := seg.Elem(m.Pos)
	if !ok {
		if !m.IsOptional() && m.Expect != nil {
			return errs.New(errs.ParseError, "missing required field at %s pos %d", seg.IDString(), m.Pos).
				WithContext("segment", seg.IDString()).WithContext("path", m.Path)
		}
		return nil
	}

	raw := elem.Value
	if len(m.Composite) > 0 {
		comp, ok := elem.Component(m.Composite[0])
		if !ok || len(comp) == 0 {
			return nil
		}
		raw = comp
	}

	value := string(raw)
	for _, name := range m.Transforms {
		fn, err := transformfuncs.Lookup(name)
		if err != nil {
			return err
		}
		value, err = fn(p.ctx, value, m.Script)
		if err != nil {
			return err
		}
	}

	if m.ValueMap != nil {
		if mapped, ok := m.ValueMap[value]; ok {
			value = mapped
		}
	}

	if m.Expect != nil && value != *m.Expect {
		return nil
	}

	return jsontree.SetIn(scope, m.Path, jsontree.StringValue(value))
}

// applyGroup implements the group search: starting just after
// seg, scan forward in document order for each subsequent id in def.Group,
// halting on any id in the schema's boundary set or a repeat of the
// trigger (def.Group[0] == def.ID) id. A matched member receives only the
// mappings whose Seg equals that member's id.
func (p *processor) applyGroup(scope *jsontree.Object, seg document.Segment, def *schema.SegmentDef) error {
	cursor := seg.Index + 1
	for _, memberID := range def.Group[1:] {
		for cursor < p.doc.SegmentCount() {
			cand := p.doc.Segments[cursor]
			if cand.IDString() == def.ID || p.schema.InBoundarySet(cand.IDString()) {
				return nil
			}
			if cand.IDString() == memberID {
				for _, m := range def.Elements {
					if m.Seg != memberID {
						continue
					}
					if err := p.applyElementMapping(scope, cand, m); err != nil {
						return err
					}
				}
				cursor++
				break
			}
			cursor++
		}
	}
	return nil
}

// applyRepeatingElements implements the repeating-element process: every
// element of seg (positions 1..n, i.e. physical index
// 1..len-1) is split on the pattern separator; its 0th component is the
// qualifier, matched against each pattern's WhenQualifier set.
func (p *processor) applyRepeatingElements(scope *jsontree.Object, seg document.Segment, re *schema.RepeatingElements) error {
	sep := re.SepByte()
	for pos := 0; ; pos++ {
		elem, ok := seg.Elem(pos)
		if !ok {
			break
		}
		comps := document.SplitOn(elem.Value, sep)
		if len(comps) == 0 || len(comps[0]) == 0 {
			continue
		}
		qualifier := string(comps[0])
		for _, pattern := range re.Patterns {
			if !containsStr(pattern.WhenQualifier, qualifier) {
				continue
			}
			obj := jsontree.NewObjectValue()
			for _, f := range pattern.Fields {
				if f.ComponentIndex < 0 || f.ComponentIndex >= len(comps) {
					continue
				}
				if err := jsontree.SetIn(obj.Object, f.Name, jsontree.StringValue(string(comps[f.ComponentIndex]))); err != nil {
					return err
				}
			}
			if _, err := jsontree.PushToArrayIn(scope, pattern.OutputArray, obj); err != nil {
				return err
			}
			break
		}
	}
	return nil
}

func containsStr(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
