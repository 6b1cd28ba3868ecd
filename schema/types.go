// Package schema loads the declarative JSON (or YAML) mapping documents
// that drive x12transform's document processor: which segments to expect,
// how their elements map onto JSON paths, how HL levels nest, and where
// non-hierarchical loops (CLM, LX, ...) live inside each level.
package schema

// ElementMapping describes how a single element (or composite component)
// of a matched segment is written into the output JSON tree.
type ElementMapping struct {
	// Seg, if non-empty, restricts this mapping to segments with this id —
	// used for group members (see SegmentDef.Group) where several distinct
	// segment ids contribute elements to the same output object.
	Seg string `json:"seg,omitempty"`
	// Pos is the 0-based element index inside the segment, where 0 is the
	// first element after the segment id.
	Pos int `json:"pos"`
	// Path is the dotted output path this value is written to.
	Path string `json:"path"`
	// Expect, if set, is a literal the value must equal after Transforms and
	// ValueMap have been applied; otherwise the element is silently skipped
	// (not fatal).
	Expect *string `json:"expect,omitempty"`
	// ValueMap remaps a literal raw value to another literal output value.
	ValueMap map[string]string `json:"value_map,omitempty"`
	// Transforms are applied, in order, before ValueMap/Expect/Path
	// handling (see processor.applyElementMapping for the exact order).
	Transforms []string `json:"transforms,omitempty"`
	// Script is the javascript transform's expression source; unused by
	// every other transform.
	Script string `json:"script,omitempty"`
	// Composite, if non-empty, splits the raw value on the document's
	// composite delimiter and selects component Composite[0]. Per
	// Only the first index is honored; deeper composite nesting is not.
	Composite []int `json:"composite,omitempty"`
	// Optional, when explicitly false together with Expect set, turns a
	// missing element into a fatal ParseError ("missing required field")
	// instead of a silent skip.
	Optional *bool `json:"optional,omitempty"`
}

// IsOptional reports whether this mapping should be treated as optional
// (the default when Optional is unset).
func (m ElementMapping) IsOptional() bool {
	return m.Optional == nil || *m.Optional
}

// RepeatingField names one field within a repeating-element pattern match.
type RepeatingField struct {
	ComponentIndex int    `json:"component_index"`
	Name           string `json:"name"`
}

// RepeatingElementPattern matches a repetition-delimited element whose
// first component (the qualifier) is in WhenQualifier, emitting an object
// with the named Fields into OutputArray.
type RepeatingElementPattern struct {
	WhenQualifier []string         `json:"when_qualifier"`
	OutputArray   string           `json:"output_array"`
	Fields        []RepeatingField `json:"fields"`
}

// RepeatingElements configures the repeating-element process run over every
// element of a matched segment (e.g. HI diagnosis codes).
type RepeatingElements struct {
	Separator string                    `json:"separator"`
	Patterns  []RepeatingElementPattern `json:"patterns"`
}

// SepByte returns the configured separator as a single byte. It defaults to
// '^', the common X12 repetition delimiter, when unset (mirroring the
// document's own detected repetition delimiter is the caller's job: the
// schema's Separator is usually "^" literally and is independent of the
// per-document detected byte, since repeating_elements targets the element
// value itself rather than the tokenizer's repetition-split elements).
func (r RepeatingElements) SepByte() byte {
	if len(r.Separator) == 0 {
		return '^'
	}
	return r.Separator[0]
}

// Qualifier pins a SegmentDef to segments whose element at Pos equals
// Literal. Pos is schema-relative (physical element index is Pos+1).
type Qualifier struct {
	Pos     int
	Literal string
}

// SegmentDef describes one segment (or segment-initiated group) a schema
// expects to find within some window of the document.
type SegmentDef struct {
	ID        string          `json:"id"`
	Qualifier *[2]interface{} `json:"qualifier,omitempty"`
	// ValuePrefix, when set, matches any segment whose qualifier-position
	// element starts with this literal, a looser alternative to Qualifier.
	ValuePrefixPos     *int   `json:"value_prefix_pos,omitempty"`
	ValuePrefixLiteral string `json:"value_prefix,omitempty"`
	// Group is an ordered list of segment ids (first entry equals ID)
	// whose members, found in document order after ID, also contribute
	// ElementMapping entries (matched by their own Seg).
	Group             []string           `json:"group,omitempty"`
	Elements          []ElementMapping   `json:"elements,omitempty"`
	RepeatingElements *RepeatingElements `json:"repeating_elements,omitempty"`
	Optional          bool               `json:"optional,omitempty"`
	Multiple          bool               `json:"multiple,omitempty"`
	MaxUse            int                `json:"max_use,omitempty"`

	qualifier *Qualifier // resolved from Qualifier at load time
}

// ResolvedQualifier returns the decoded (pos, literal) qualifier, if any.
func (s *SegmentDef) ResolvedQualifier() *Qualifier {
	return s.qualifier
}

// NonHierarchicalLoop is a repeatable sub-structure detected by a trigger
// segment id rather than HL nesting (e.g. CLM starts a claim loop).
type NonHierarchicalLoop struct {
	Name        string                `json:"name"`
	Trigger     string                `json:"trigger"`
	OutputArray string                `json:"output_array"`
	Segments    []SegmentDef          `json:"segments,omitempty"`
	NestedLoops []NonHierarchicalLoop `json:"nested_loops,omitempty"`
}

// HLLevel describes how one HL level code is rendered: its own segments,
// any non-hierarchical loops nested in it, and which level codes are
// expected as children (informational; the processor derives actual
// parent/child structure from the HL tree itself).
type HLLevel struct {
	Code                 string                `json:"-"`
	Name                 string                `json:"name"`
	OutputArray          string                `json:"output_array,omitempty"`
	Segments             []SegmentDef          `json:"segments,omitempty"`
	ChildLevels          []string              `json:"child_levels,omitempty"`
	NonHierarchicalLoops []NonHierarchicalLoop `json:"non_hierarchical_loops,omitempty"`
}

// SequentialSection is an ordered group of segments found once, starting at
// the document position of its first segment's first occurrence.
type SequentialSection struct {
	Name       string       `json:"name"`
	OutputPath string       `json:"output_path"`
	Segments   []SegmentDef `json:"segments,omitempty"`
}

// TransactionInfo documents which X12 transaction this schema targets; it
// is metadata only and not consumed by the processor.
type TransactionInfo struct {
	ID          string `json:"id"`
	Version     string `json:"version"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Schema is the fully loaded, $ref-resolved, immutable mapping document.
// A *Schema may be shared across any number of concurrent Process calls.
type Schema struct {
	Version              string              `json:"schema_version"`
	Transaction          TransactionInfo     `json:"transaction"`
	HeaderSegments       []SegmentDef        `json:"-"`
	SequentialSections   []SequentialSection `json:"-"`
	HLLevels             map[string]*HLLevel `json:"-"`
	TrailerSegments      []SegmentDef        `json:"-"`
	HierarchicalOutputArray string           `json:"-"`

	boundarySet map[string]struct{}
}

// BoundarySet returns the read-only union of {"HL"} and every loop trigger
// in the schema (recursively through nested_loops), used to bound group and
// loop scans.
func (s *Schema) BoundarySet() map[string]struct{} {
	return s.boundarySet
}

// InBoundarySet reports whether id is a member of the schema's boundary
// set.
func (s *Schema) InBoundarySet(id string) bool {
	_, ok := s.boundarySet[id]
	return ok
}
