package schema

// metaSchemaJSON is a JSON-Schema (draft-7) description of the top-level
// shape every x12transform schema document must satisfy. It is intentionally
// loose below the top level (segments/elements are still validated by the
// hand-written structural walk in build.go) — its job is to catch the
// common authoring mistakes (missing transaction block, wrong top-level
// types) with a clear JSON-pointer-rooted message before the rest of the
// loader runs, via github.com/xeipuuv/gojsonschema.
const metaSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["schema_version", "transaction", "transaction_header", "hierarchical_structure", "transaction_trailer"],
  "properties": {
    "schema_version": {"type": "string"},
    "transaction": {
      "type": "object",
      "required": ["id", "version", "type", "description"],
      "properties": {
        "id": {"type": "string"},
        "version": {"type": "string"},
        "type": {"type": "string"},
        "description": {"type": "string"}
      }
    },
    "transaction_header": {
      "type": "object",
      "required": ["segments"],
      "properties": {"segments": {"type": "array"}}
    },
    "sequential_sections": {"type": "array"},
    "hierarchical_structure": {
      "type": "object",
      "required": ["output_array", "levels"],
      "properties": {
        "output_array": {"type": "string"},
        "levels": {"type": "object"}
      }
    },
    "transaction_trailer": {
      "type": "object",
      "required": ["segments"],
      "properties": {"segments": {"type": "array"}}
    },
    "definitions": {"type": "object"}
  }
}`
