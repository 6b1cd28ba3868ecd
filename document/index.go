package document

import "github.com/logward/x12transform/errs"

// FindFirst returns the first segment with the given id, if any.
func (d *Document) FindFirst(id string) (*Segment, bool) {
	return d.FindIndexFrom(id, 0)
}

// FindIndexFrom returns the first segment with the given id at or after
// start, if any, as a pointer plus ok.
func (d *Document) FindIndexFrom(id string, start int) (*Segment, bool) {
	idx, ok := d.FindIndex(id, start)
	if !ok {
		return nil, false
	}
	return &d.Segments[idx], true
}

// FindIndex returns the document index of the first segment with the given
// id at or after start.
func (d *Document) FindIndex(id string, start int) (int, bool) {
	if start < 0 {
		start = 0
	}
	for i := start; i < len(d.Segments); i++ {
		if d.Segments[i].IDString() == id {
			return i, true
		}
	}
	return 0, false
}

// FindIndexInRange returns the document index of the first segment with
// the given id within [start, end).
func (d *Document) FindIndexInRange(id string, start, end int) (int, bool) {
	if start < 0 {
		start = 0
	}
	if end > len(d.Segments) {
		end = len(d.Segments)
	}
	for i := start; i < end; i++ {
		if d.Segments[i].IDString() == id {
			return i, true
		}
	}
	return 0, false
}

// FindAll returns every segment with the given id, in document order.
func (d *Document) FindAll(id string) []*Segment {
	var out []*Segment
	for i := range d.Segments {
		if d.Segments[i].IDString() == id {
			out = append(out, &d.Segments[i])
		}
	}
	return out
}

// Count returns the number of segments with the given id.
func (d *Document) Count(id string) int {
	n := 0
	for i := range d.Segments {
		if d.Segments[i].IDString() == id {
			n++
		}
	}
	return n
}

// Range returns the half-open slice of segments [start, end), bounds
// checked against the document's segment count.
func (d *Document) Range(start, end int) ([]Segment, error) {
	if start < 0 || end > len(d.Segments) || start > end {
		return nil, errs.New(errs.InvalidArgument,
			"invalid document range [%d, %d) over %d segments", start, end, len(d.Segments))
	}
	return d.Segments[start:end], nil
}

// FindFollowing returns, starting at document index after (exclusive),
// every segment with the given id within maxDistance segments, aborting the
// scan as soon as it encounters any segment whose id is in stopSet. The
// schema-driven processor does not call this directly; it is a
// general-purpose bounded forward-lookup exposed for callers that need one.
func (d *Document) FindFollowing(id string, after, maxDistance int, stopSet map[string]struct{}) []*Segment {
	var out []*Segment
	end := after + 1 + maxDistance
	if end > len(d.Segments) {
		end = len(d.Segments)
	}
	for i := after + 1; i < end; i++ {
		s := &d.Segments[i]
		if _, stop := stopSet[s.IDString()]; stop {
			break
		}
		if s.IDString() == id {
			out = append(out, s)
		}
	}
	return out
}

// SegmentCount returns the number of segments in the document.
func (d *Document) SegmentCount() int {
	return len(d.Segments)
}
