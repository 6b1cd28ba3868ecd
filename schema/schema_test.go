package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logward/x12transform/errs"
)

const minimalSchemaJSON = `{
  "schema_version": "1.0",
  "transaction": {"id": "837", "version": "005010X222A1", "type": "P", "description": "test"},
  "transaction_header": {
    "segments": [
      {"id": "ST", "elements": [{"pos": 0, "path": "transaction_set_id"}]}
    ]
  },
  "hierarchical_structure": {
    "output_array": "claims",
    "levels": {
      "20": {
        "name": "billing_provider",
        "output_array": "billing_providers",
        "segments": [
          {"id": "NM1", "elements": [{"pos": 2, "path": "name"}]}
        ],
        "child_levels": ["22"]
      },
      "22": {
        "name": "subscriber",
        "output_array": "subscribers",
        "segments": [
          {"id": "NM1", "elements": [{"pos": 2, "path": "name"}]}
        ]
      }
    }
  },
  "transaction_trailer": {
    "segments": [
      {"id": "SE", "elements": [{"pos": 0, "path": "segment_count"}]}
    ]
  }
}`

func TestLoad_MinimalSchema(t *testing.T) {
	sch, err := Load([]byte(minimalSchemaJSON))
	require.NoError(t, err)
	assert.Equal(t, "1.0", sch.Version)
	assert.Equal(t, "837", sch.Transaction.ID)
	require.Len(t, sch.HeaderSegments, 1)
	assert.Equal(t, "ST", sch.HeaderSegments[0].ID)
	require.Contains(t, sch.HLLevels, "20")
	require.Contains(t, sch.HLLevels, "22")
	assert.Equal(t, "claims", sch.HierarchicalOutputArray)
}

func TestLoad_MissingLevelsIsSchemaLoadError(t *testing.T) {
	const noLevels = `{
		"schema_version": "1.0",
		"transaction": {"id": "837", "version": "v", "type": "P", "description": "d"},
		"transaction_header": {"segments": []},
		"hierarchical_structure": {"output_array": "claims", "levels": {}},
		"transaction_trailer": {"segments": []}
	}`
	_, err := Load([]byte(noLevels))
	require.Error(t, err)
	assert.Equal(t, errs.SchemaLoadError, errs.CodeOf(err))
}

func TestLoad_MissingSegmentIDIsSchemaLoadError(t *testing.T) {
	const badSeg = `{
		"schema_version": "1.0",
		"transaction": {"id": "837", "version": "v", "type": "P", "description": "d"},
		"transaction_header": {"segments": [{"elements": []}]},
		"hierarchical_structure": {"output_array": "claims", "levels": {"20": {"name": "n"}}},
		"transaction_trailer": {"segments": []}
	}`
	_, err := Load([]byte(badSeg))
	require.Error(t, err)
	assert.Equal(t, errs.SchemaLoadError, errs.CodeOf(err))
}

func TestLoad_Qualifier(t *testing.T) {
	const withQual = `{
		"schema_version": "1.0",
		"transaction": {"id": "837", "version": "v", "type": "P", "description": "d"},
		"transaction_header": {
			"segments": [
				{"id": "NM1", "qualifier": [0, "85"], "elements": [{"pos": 2, "path": "name"}]}
			]
		},
		"hierarchical_structure": {"output_array": "claims", "levels": {"20": {"name": "n"}}},
		"transaction_trailer": {"segments": []}
	}`
	sch, err := Load([]byte(withQual))
	require.NoError(t, err)
	q := sch.HeaderSegments[0].ResolvedQualifier()
	require.NotNil(t, q)
	assert.Equal(t, 0, q.Pos)
	assert.Equal(t, "85", q.Literal)
}

func TestLoad_RefResolutionWithSiblingOverride(t *testing.T) {
	const withRef = `{
		"schema_version": "1.0",
		"transaction": {"id": "837", "version": "v", "type": "P", "description": "d"},
		"definitions": {
			"segments": {
				"nm1_name": {"id": "NM1", "elements": [{"pos": 2, "path": "name"}]}
			}
		},
		"transaction_header": {
			"segments": [
				{"$ref": "#/definitions/segments/nm1_name", "qualifier": [0, "85"]}
			]
		},
		"hierarchical_structure": {"output_array": "claims", "levels": {"20": {"name": "n"}}},
		"transaction_trailer": {"segments": []}
	}`
	sch, err := Load([]byte(withRef))
	require.NoError(t, err)
	require.Len(t, sch.HeaderSegments, 1)
	assert.Equal(t, "NM1", sch.HeaderSegments[0].ID)
	q := sch.HeaderSegments[0].ResolvedQualifier()
	require.NotNil(t, q)
	assert.Equal(t, "85", q.Literal)
}

func TestLoad_UnresolvedRefIsSchemaLoadError(t *testing.T) {
	const badRef = `{
		"schema_version": "1.0",
		"transaction": {"id": "837", "version": "v", "type": "P", "description": "d"},
		"transaction_header": {
			"segments": [{"$ref": "#/definitions/segments/missing"}]
		},
		"hierarchical_structure": {"output_array": "claims", "levels": {"20": {"name": "n"}}},
		"transaction_trailer": {"segments": []}
	}`
	_, err := Load([]byte(badRef))
	require.Error(t, err)
	assert.Equal(t, errs.SchemaLoadError, errs.CodeOf(err))
}

func TestLoad_MalformedJSONFailsMetaSchemaValidation(t *testing.T) {
	_, err := Load([]byte(`{not valid json`))
	require.Error(t, err)
	assert.Equal(t, errs.SchemaLoadError, errs.CodeOf(err))
}

func TestSchema_BoundarySetIncludesHLAndLoopTriggers(t *testing.T) {
	const withLoop = `{
		"schema_version": "1.0",
		"transaction": {"id": "837", "version": "v", "type": "P", "description": "d"},
		"transaction_header": {"segments": []},
		"hierarchical_structure": {
			"output_array": "claims",
			"levels": {
				"20": {
					"name": "billing_provider",
					"non_hierarchical_loops": [
						{"name": "claim", "trigger": "CLM", "output_array": "claims",
						 "nested_loops": [{"name": "service_line", "trigger": "LX", "output_array": "lines"}]}
					]
				}
			}
		},
		"transaction_trailer": {"segments": []}
	}`
	sch, err := Load([]byte(withLoop))
	require.NoError(t, err)
	assert.True(t, sch.InBoundarySet("HL"))
	assert.True(t, sch.InBoundarySet("CLM"))
	assert.True(t, sch.InBoundarySet("LX"))
	assert.False(t, sch.InBoundarySet("NM1"))
}

func TestLoadYAML_ConvertsToJSONAndLoads(t *testing.T) {
	const yamlSchema = `
schema_version: "1.0"
transaction:
  id: "837"
  version: "v"
  type: "P"
  description: "d"
transaction_header:
  segments:
    - id: ST
      elements:
        - pos: 0
          path: transaction_set_id
hierarchical_structure:
  output_array: claims
  levels:
    "20":
      name: billing_provider
transaction_trailer:
  segments: []
`
	sch, err := LoadYAML([]byte(yamlSchema))
	require.NoError(t, err)
	assert.Equal(t, "1.0", sch.Version)
	require.Len(t, sch.HeaderSegments, 1)
	assert.Equal(t, "ST", sch.HeaderSegments[0].ID)
}

func TestElementMapping_IsOptionalDefaultsTrue(t *testing.T) {
	m := ElementMapping{}
	assert.True(t, m.IsOptional())
	f := false
	m.Optional = &f
	assert.False(t, m.IsOptional())
}

func TestRepeatingElements_SepByteDefault(t *testing.T) {
	re := RepeatingElements{}
	assert.Equal(t, byte('^'), re.SepByte())
	re.Separator = ":"
	assert.Equal(t, byte(':'), re.SepByte())
}
