package schema

import (
	"github.com/logward/x12transform/errs"
)

// rawSchema mirrors the on-disk JSON shape exactly (including the nested
// transaction_header/hierarchical_structure/transaction_trailer wrapper
// objects a schema author writes); Schema is the flattened, processor-facing
// view built from it.
type rawSchema struct {
	SchemaVersion         string              `json:"schema_version"`
	Transaction           TransactionInfo     `json:"transaction"`
	TransactionHeader     struct {
		Segments []SegmentDef `json:"segments"`
	} `json:"transaction_header"`
	SequentialSections []SequentialSection `json:"sequential_sections"`
	HierarchicalStructure struct {
		OutputArray string             `json:"output_array"`
		Levels      map[string]HLLevel `json:"levels"`
	} `json:"hierarchical_structure"`
	TransactionTrailer struct {
		Segments []SegmentDef `json:"segments"`
	} `json:"transaction_trailer"`
}

func (rs *rawSchema) build() (*Schema, error) {
	s := &Schema{
		Version:                 rs.SchemaVersion,
		Transaction:             rs.Transaction,
		HeaderSegments:          rs.TransactionHeader.Segments,
		SequentialSections:      rs.SequentialSections,
		TrailerSegments:         rs.TransactionTrailer.Segments,
		HierarchicalOutputArray: rs.HierarchicalStructure.OutputArray,
		HLLevels:                make(map[string]*HLLevel, len(rs.HierarchicalStructure.Levels)),
	}

	if len(rs.HierarchicalStructure.Levels) == 0 {
		return nil, errs.New(errs.SchemaLoadError, "hierarchical_structure.levels must not be empty")
	}

	for code, level := range rs.HierarchicalStructure.Levels {
		level := level
		level.Code = code
		if err := resolveSegmentDefs(level.Segments); err != nil {
			return nil, err
		}
		if err := resolveLoops(level.NonHierarchicalLoops); err != nil {
			return nil, err
		}
		s.HLLevels[code] = &level
	}

	if err := resolveSegmentDefs(s.HeaderSegments); err != nil {
		return nil, err
	}
	if err := resolveSegmentDefs(s.TrailerSegments); err != nil {
		return nil, err
	}
	for i := range s.SequentialSections {
		if err := resolveSegmentDefs(s.SequentialSections[i].Segments); err != nil {
			return nil, err
		}
	}

	s.boundarySet = deriveBoundarySet(s.HLLevels)

	return s, nil
}

// resolveSegmentDefs decodes each SegmentDef's wire-format Qualifier
// ([pos, literal]) into its typed *Qualifier.
func resolveSegmentDefs(defs []SegmentDef) error {
	for i := range defs {
		if err := resolveSegmentDef(&defs[i]); err != nil {
			return err
		}
	}
	return nil
}

func resolveSegmentDef(def *SegmentDef) error {
	if def.ID == "" {
		return errs.New(errs.SchemaLoadError, "segment definition missing required \"id\"")
	}
	if def.Qualifier != nil {
		q, err := decodeQualifier(*def.Qualifier)
		if err != nil {
			return err
		}
		def.qualifier = q
	}
	return nil
}

func decodeQualifier(raw [2]interface{}) (*Qualifier, error) {
	posFloat, ok := raw[0].(float64)
	if !ok {
		return nil, errs.New(errs.SchemaLoadError, "qualifier position must be an integer, got %T", raw[0])
	}
	literal, ok := raw[1].(string)
	if !ok {
		return nil, errs.New(errs.SchemaLoadError, "qualifier literal must be a string, got %T", raw[1])
	}
	return &Qualifier{Pos: int(posFloat), Literal: literal}, nil
}

func resolveLoops(loops []NonHierarchicalLoop) error {
	for i := range loops {
		if err := resolveSegmentDefs(loops[i].Segments); err != nil {
			return err
		}
		if err := resolveLoops(loops[i].NestedLoops); err != nil {
			return err
		}
	}
	return nil
}

func deriveBoundarySet(levels map[string]*HLLevel) map[string]struct{} {
	set := map[string]struct{}{"HL": {}}
	var walk func(loops []NonHierarchicalLoop)
	walk = func(loops []NonHierarchicalLoop) {
		for _, l := range loops {
			if l.Trigger != "" {
				set[l.Trigger] = struct{}{}
			}
			walk(l.NestedLoops)
		}
	}
	for _, level := range levels {
		walk(level.NonHierarchicalLoops)
	}
	return set
}
