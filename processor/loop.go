package processor

import (
	"github.com/logward/x12transform/jsontree"
	"github.com/logward/x12transform/schema"
)

// runLoop implements non-hierarchical loop processing and its repeated
// search/collect cycle over the window [start, end). Each loop instance is scoped to
// [triggerIdx, nextBoundary), where nextBoundary is the lesser of: the next
// trigger occurrence, the next HL segment, or end.
func (p *processor) runLoop(scope *jsontree.Object, loop *schema.NonHierarchicalLoop, start, end int) error {
	cursor := start
	for cursor < end {
		triggerIdx, ok := p.doc.FindIndexInRange(loop.Trigger, cursor, end)
		if !ok {
			break // terminal state: no more triggers before end.
		}
		nextBoundary := p.loopInstanceEnd(loop.Trigger, triggerIdx, end)

		instance := jsontree.NewObjectValue()
		if err := p.runSegmentDefs(instance.Object, loop.Segments, triggerIdx, nextBoundary); err != nil {
			return err
		}
		for i := range loop.NestedLoops {
			if err := p.runLoop(instance.Object, &loop.NestedLoops[i], triggerIdx, nextBoundary); err != nil {
				return err
			}
		}
		if _, err := jsontree.PushToArrayIn(scope, loop.OutputArray, instance); err != nil {
			return err
		}

		cursor = nextBoundary
	}
	return nil
}

// loopInstanceEnd returns the lesser of: the next occurrence of triggerID at
// or beyond triggerIdx+1, the next "HL" segment, or end.
func (p *processor) loopInstanceEnd(triggerID string, triggerIdx, end int) int {
	boundary := end
	if idx, ok := p.doc.FindIndexInRange(triggerID, triggerIdx+1, end); ok && idx < boundary {
		boundary = idx
	}
	if idx, ok := p.doc.FindIndexInRange("HL", triggerIdx+1, end); ok && idx < boundary {
		boundary = idx
	}
	return boundary
}
