package processor

import (
	"github.com/logward/x12transform/errs"
	"github.com/logward/x12transform/hltree"
	"github.com/logward/x12transform/jsontree"
)

// emitNode implements the hierarchical phase's per-node recursion: look up
// the node's HL level, build its object, apply the level's own segments
// and non-hierarchical loops within the node's document
// range, append the object to its output array inside parentScope, then
// recurse into children, which write into that same (already appended)
// object.
func (p *processor) emitNode(parentScope *jsontree.Object, node *hltree.Node) error {
	level, ok := p.schema.HLLevels[node.LevelCode]
	if !ok {
		return errs.New(errs.UnknownHLLevel, "HL node %s has unknown level code %q", node.ID, node.LevelCode).
			WithContext("level_code", node.LevelCode)
	}

	obj := jsontree.NewObjectValue()

	if err := p.runSegmentDefs(obj.Object, level.Segments, node.SegmentStart, node.SegmentEnd); err != nil {
		return err
	}

	for _, loop := range level.NonHierarchicalLoops {
		if err := p.runLoop(obj.Object, &loop, node.SegmentStart, node.SegmentEnd); err != nil {
			return err
		}
	}

	outputArray := p.schema.HierarchicalOutputArray
	if parentScope != p.out.RootObject() {
		outputArray = level.OutputArray
		if outputArray == "" {
			return errs.New(errs.UnknownHLLevel,
				"HL level %q (code %q) has no output_array but is nested under another level",
				level.Name, node.LevelCode).WithContext("level_code", node.LevelCode)
		}
	}
	if outputArray != "" {
		if _, err := jsontree.PushToArrayIn(parentScope, outputArray, obj); err != nil {
			return err
		}
	}

	for _, child := range node.Children {
		if err := p.emitNode(obj.Object, child); err != nil {
			return err
		}
	}

	return nil
}
