package processor

import (
	"strings"

	"github.com/logward/x12transform/document"
	"github.com/logward/x12transform/schema"
)

// qualifierMatches implements qualifier matching: a SegmentDef
// with a resolved (pos, literal) qualifier matches iff
// segment.element[pos+1].value == literal; a ValuePrefix qualifier matches
// iff that element's value starts with the literal. No qualifier at all
// matches any segment with the right id.
func qualifierMatches(seg document.Segment, def *schema.SegmentDef) bool {
	if q := def.ResolvedQualifier(); q != nil {
		val, ok := seg.ElemValue(q.Pos)
		return ok && string(val) == q.Literal
	}
	if def.ValuePrefixPos != nil {
		val, ok := seg.ElemValue(*def.ValuePrefixPos)
		return ok && strings.HasPrefix(string(val), def.ValuePrefixLiteral)
	}
	return true
}

func matchesDef(seg document.Segment, def *schema.SegmentDef) bool {
	return seg.IDString() == def.ID && qualifierMatches(seg, def)
}

// findInRange scans segs (a view already restricted to some window) for the
// first segment matching def at or after fromOffset (an index into segs),
// returning the segment and its offset within segs.
func findInRange(segs []document.Segment, def *schema.SegmentDef, fromOffset int) (document.Segment, int, bool) {
	for i := fromOffset; i < len(segs); i++ {
		if matchesDef(segs[i], def) {
			return segs[i], i, true
		}
	}
	return document.Segment{}, 0, false
}
