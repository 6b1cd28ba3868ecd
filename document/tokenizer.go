package document

import (
	"bytes"

	"github.com/jf-tech/go-corelib/strs"

	"github.com/logward/x12transform/errs"
)

// Document owns the normalized input buffer (with '\n'/'\r' stripped), the
// delimiters detected from its ISA segment, and the ordered sequence of
// segments parsed from it. A Document is built once from a byte buffer and
// is not mutated afterward; all Segment/Element slices borrow from buf and
// are invalid once the Document is discarded.
type Document struct {
	buf      []byte
	Delims   Delimiters
	Segments []Segment
}

var (
	crBytes = []byte("\r")
	lfBytes = []byte("\n")
	isaTag  = []byte("ISA")
	ieaTag  = []byte("IEA")
)

// noEscape is passed to strs.ByteSplitWithEsc everywhere in this package:
// X12, unlike HL7 or EDIFACT in release-character mode, has no escape
// character, so every split below degrades to a plain delimiter split.
var noEscape []byte

// Tokenize normalizes x12 (stripping CR/LF), detects delimiters from the
// ISA segment, and splits the result into segments/elements/components.
// It is the sole entry point into this package for turning raw bytes into
// a Document.
func Tokenize(x12 []byte) (*Document, error) {
	buf := normalize(x12)
	delims, err := detectDelimiters(buf)
	if err != nil {
		return nil, err
	}
	segs, err := splitSegments(buf, delims)
	if err != nil {
		return nil, err
	}
	if err := validateEnvelope(segs); err != nil {
		return nil, err
	}
	return &Document{buf: buf, Delims: delims, Segments: segs}, nil
}

func normalize(x12 []byte) []byte {
	out := make([]byte, 0, len(x12))
	for _, b := range x12 {
		if b == '\n' || b == '\r' {
			continue
		}
		out = append(out, b)
	}
	return out
}

func detectDelimiters(buf []byte) (Delimiters, error) {
	if len(buf) < isaMinLen {
		return Delimiters{}, errs.New(errs.InvalidISA,
			"input must be at least %d bytes, got %d bytes", isaMinLen, len(buf))
	}
	if !bytes.HasPrefix(buf, isaTag) {
		return Delimiters{}, errs.New(errs.ParseError, "missing ISA segment at start of input")
	}
	return Delimiters{
		Element:           buf[isaElementOffset],
		Repetition:        buf[isaRepetitionOffset],
		Composite:         buf[isaCompositeOffset],
		SegmentTerminator: buf[isaSegTermOffset],
	}, nil
}

func splitOnByte(raw []byte, sep byte) [][]byte {
	if bytes.IndexByte(raw, sep) < 0 {
		return [][]byte{raw}
	}
	return strs.ByteSplitWithEsc(raw, []byte{sep}, noEscape, 8)
}

func splitSegments(buf []byte, delims Delimiters) ([]Segment, error) {
	pieces := strs.ByteSplitWithEsc(buf, []byte{delims.SegmentTerminator}, noEscape, 64)
	segs := make([]Segment, 0, len(pieces))
	for _, piece := range pieces {
		trimmed := bytes.TrimSpace(piece)
		if len(trimmed) == 0 {
			continue
		}
		seg, err := parseSegment(trimmed, len(segs), delims)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

func parseSegment(raw []byte, index int, delims Delimiters) (Segment, error) {
	parts := strs.ByteSplitWithEsc(raw, []byte{delims.Element}, noEscape, 32)
	if len(parts) == 0 || len(parts[0]) == 0 {
		return Segment{}, errs.New(errs.ParseError, "segment %d has an empty id", index)
	}
	elems := make([]Element, len(parts))
	for i, p := range parts {
		elems[i] = parseElement(p, delims)
	}
	return Segment{
		ID:       elems[0].Value,
		Elements: elems,
		Index:    index,
	}, nil
}

func parseElement(raw []byte, delims Delimiters) Element {
	elem := Element{Value: raw}
	if bytes.IndexByte(raw, delims.Composite) >= 0 {
		elem.Components = strs.ByteSplitWithEsc(raw, []byte{delims.Composite}, noEscape, 8)
	}
	return elem
}

func validateEnvelope(segs []Segment) error {
	hasISA, hasIEA := false, false
	for _, s := range segs {
		switch {
		case bytes.Equal(s.ID, isaTag):
			hasISA = true
		case bytes.Equal(s.ID, ieaTag):
			hasIEA = true
		}
	}
	if !hasISA {
		return errs.New(errs.ParseError, "missing ISA segment")
	}
	if !hasIEA {
		return errs.New(errs.ParseError, "missing IEA segment")
	}
	return nil
}
