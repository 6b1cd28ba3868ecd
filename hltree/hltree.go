// Package hltree reconstructs the parent/child forest implied by a flat
// run of X12 HL*id*parent*level*has_children segments and partitions the
// document's segment stream into per-node ranges.
package hltree

import (
	"github.com/logward/x12transform/document"
	"github.com/logward/x12transform/errs"
)

// Node is one HL segment's place in the hierarchy.
type Node struct {
	ID             string
	ParentID       string
	LevelCode      string
	HasChildren    bool
	HLSegmentIndex int
	SegmentStart   int
	SegmentEnd     int
	Children       []*Node
}

// Segments returns the half-open document range [SegmentStart, SegmentEnd)
// owned by this node.
func (n *Node) Segments(doc *document.Document) ([]document.Segment, error) {
	return doc.Range(n.SegmentStart, n.SegmentEnd)
}

// Tree is the forest of HL nodes rooted at every record with no parent.
type Tree struct {
	Roots []*Node
	byID  map[string]*Node
}

// FindByID returns the node with the given HL id, if any.
func (t *Tree) FindByID(id string) (*Node, bool) {
	n, ok := t.byID[id]
	return n, ok
}

// NodesByLevelCode returns every node (pre-order) whose LevelCode matches.
func (t *Tree) NodesByLevelCode(code string) []*Node {
	var out []*Node
	t.Walk(func(n *Node) {
		if n.LevelCode == code {
			out = append(out, n)
		}
	})
	return out
}

// CountNodes returns the total number of nodes in the forest.
func (t *Tree) CountNodes() int {
	n := 0
	t.Walk(func(*Node) { n++ })
	return n
}

// DescendantsCount returns the number of descendants of n (not including n
// itself).
func (t *Tree) DescendantsCount(n *Node) int {
	count := 0
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, c := range cur.Children {
			count++
			walk(c)
		}
	}
	walk(n)
	return count
}

// Walk visits every node in the forest in pre-order.
func (t *Tree) Walk(visit func(*Node)) {
	var walk func(*Node)
	walk = func(n *Node) {
		visit(n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, r := range t.Roots {
		walk(r)
	}
}

type record struct {
	id             string
	parentID       string
	levelCode      string
	hasChildren    bool
	hlSegmentIndex int
	segmentStart   int
	segmentEnd     int
	childIDs       []string
}

// Build runs a four-pass algorithm over every HL segment in doc,
// producing the forest.
func Build(doc *document.Document) (*Tree, error) {
	hlSegs := doc.FindAll("HL")
	if len(hlSegs) == 0 {
		return nil, errs.New(errs.ParseError, "no HL segments found in document")
	}

	// Pass 1: enumerate records.
	recs := make(map[string]*record, len(hlSegs))
	order := make([]string, 0, len(hlSegs))
	for _, seg := range hlSegs {
		id, ok := seg.ElemValue(0)
		if !ok || len(id) == 0 {
			return nil, errs.New(errs.ParseError, "HL segment at index %d missing HL01 id", seg.Index)
		}
		levelCode, ok := seg.ElemValue(2)
		if !ok || len(levelCode) == 0 {
			return nil, errs.New(errs.ParseError, "HL segment %s missing HL03 level code", string(id))
		}
		parentID, _ := seg.ElemValue(1)
		hasChildrenRaw, _ := seg.ElemValue(3)

		idStr := string(id)
		r := &record{
			id:             idStr,
			parentID:       string(parentID),
			levelCode:      string(levelCode),
			hasChildren:    string(hasChildrenRaw) == "1",
			hlSegmentIndex: seg.Index,
			segmentStart:   seg.Index,
		}
		recs[idStr] = r
		order = append(order, idStr)
	}

	// Pass 2: link children, preserving document order.
	for _, id := range order {
		r := recs[id]
		if r.parentID == "" {
			continue
		}
		parent, ok := recs[r.parentID]
		if !ok {
			return nil, errs.New(errs.ParseError, "HL %s references unknown parent %s", r.id, r.parentID)
		}
		parent.childIDs = append(parent.childIDs, r.id)
	}

	// Pass 3: range assignment, derived from document order of HL segments.
	for i, id := range order {
		r := recs[id]
		if i+1 < len(order) {
			r.segmentEnd = recs[order[i+1]].hlSegmentIndex
		} else {
			r.segmentEnd = doc.SegmentCount()
		}
	}

	// Pass 4: forest materialization.
	byID := make(map[string]*Node, len(recs))
	var materialize func(id string) *Node
	materialize = func(id string) *Node {
		if n, ok := byID[id]; ok {
			return n
		}
		r := recs[id]
		n := &Node{
			ID:             r.id,
			ParentID:       r.parentID,
			LevelCode:      r.levelCode,
			HasChildren:    r.hasChildren,
			HLSegmentIndex: r.hlSegmentIndex,
			SegmentStart:   r.segmentStart,
			SegmentEnd:     r.segmentEnd,
		}
		byID[id] = n
		for _, cid := range r.childIDs {
			n.Children = append(n.Children, materialize(cid))
		}
		return n
	}

	var roots []*Node
	for _, id := range order {
		if recs[id].parentID == "" {
			roots = append(roots, materialize(id))
		}
	}
	if len(roots) == 0 {
		return nil, errs.New(errs.ParseError, "no root HL nodes found (every HL has a parent)")
	}
	// Ensure every record got materialized even if reachable only via a
	// root discovered later in `order`.
	for _, id := range order {
		materialize(id)
	}

	return &Tree{Roots: roots, byID: byID}, nil
}
