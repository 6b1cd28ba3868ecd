package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v2"

	"github.com/logward/x12transform/errs"
)

// maxRefDepth bounds $ref clone recursion, guarding against cycles instead
// of detecting them outright.
const maxRefDepth = 32

// Load parses schema JSON bytes into a fully resolved, immutable *Schema.
func Load(raw []byte) (*Schema, error) {
	if err := validateAgainstMetaSchema(raw); err != nil {
		return nil, err
	}

	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, errs.New(errs.SchemaLoadError, "malformed schema JSON: %s", err)
	}

	defs, _ := generic["definitions"].(map[string]interface{})
	loopDefs, _ := defs["loops"].(map[string]interface{})
	segDefs, _ := defs["segments"].(map[string]interface{})

	resolver := &refResolver{loops: loopDefs, segments: segDefs}
	resolved, err := resolver.resolveAny(generic, 0)
	if err != nil {
		return nil, err
	}
	generic = resolved.(map[string]interface{})

	resolvedJSON, err := json.Marshal(generic)
	if err != nil {
		return nil, errs.New(errs.SchemaLoadError, "internal error re-marshaling resolved schema: %s", err)
	}

	var rs rawSchema
	if err := json.Unmarshal(resolvedJSON, &rs); err != nil {
		return nil, errs.New(errs.SchemaLoadError, "malformed schema after $ref resolution: %s", err)
	}

	return rs.build()
}

// LoadYAML accepts a YAML-authored schema document, converts it to the
// canonical JSON form, and feeds it through Load. This is additive sugar
// over the canonical JSON schema format; $ref pointers and all worked
// examples use JSON.
func LoadYAML(raw []byte) (*Schema, error) {
	var generic interface{}
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, errs.New(errs.SchemaLoadError, "malformed schema YAML: %s", err)
	}
	normalized := normalizeYAMLKeys(generic)
	jsonBytes, err := json.Marshal(normalized)
	if err != nil {
		return nil, errs.New(errs.SchemaLoadError, "cannot convert YAML schema to JSON: %s", err)
	}
	return Load(jsonBytes)
}

// normalizeYAMLKeys recursively converts map[interface{}]interface{} (what
// gopkg.in/yaml.v2 produces) into map[string]interface{} so encoding/json
// can marshal it.
func normalizeYAMLKeys(v interface{}) interface{} {
	switch val := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, v := range val {
			out[fmt.Sprintf("%v", k)] = normalizeYAMLKeys(v)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, v := range val {
			out[k] = normalizeYAMLKeys(v)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, e := range val {
			out[i] = normalizeYAMLKeys(e)
		}
		return out
	default:
		return val
	}
}

func validateAgainstMetaSchema(raw []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(metaSchemaJSON)
	docLoader := gojsonschema.NewBytesLoader(raw)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return errs.New(errs.SchemaLoadError, "cannot validate schema document: %s", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return errs.New(errs.SchemaLoadError, "schema document fails structural validation: %s",
			strings.Join(msgs, "; "))
	}
	return nil
}

// refResolver deep-clones definitions/{loops,segments} entries in place of
// any {"$ref": "#/definitions/..."} node, applying sibling override fields.
type refResolver struct {
	loops    map[string]interface{}
	segments map[string]interface{}
}

func (r *refResolver) resolveAny(v interface{}, depth int) (interface{}, error) {
	if depth > maxRefDepth {
		return nil, errs.New(errs.SchemaLoadError, "$ref resolution exceeded max depth %d (cycle?)", maxRefDepth)
	}
	switch val := v.(type) {
	case map[string]interface{}:
		return r.resolveObject(val, depth)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, e := range val {
			resolved, err := r.resolveAny(e, depth)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return v, nil
	}
}

func (r *refResolver) resolveObject(obj map[string]interface{}, depth int) (interface{}, error) {
	refPath, hasRef := obj["$ref"].(string)
	if !hasRef {
		out := make(map[string]interface{}, len(obj))
		for k, v := range obj {
			resolved, err := r.resolveAny(v, depth)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	}

	target, err := r.lookup(refPath)
	if err != nil {
		return nil, err
	}
	cloned, err := r.resolveAny(deepClone(target), depth+1)
	if err != nil {
		return nil, err
	}
	clonedMap, ok := cloned.(map[string]interface{})
	if !ok {
		return nil, errs.New(errs.SchemaLoadError, "$ref %q does not resolve to an object", refPath)
	}
	// Apply sibling overrides (everything except "$ref" itself).
	for k, v := range obj {
		if k == "$ref" {
			continue
		}
		resolved, err := r.resolveAny(v, depth)
		if err != nil {
			return nil, err
		}
		clonedMap[k] = resolved
	}
	return clonedMap, nil
}

func (r *refResolver) lookup(refPath string) (interface{}, error) {
	const loopPrefix = "#/definitions/loops/"
	const segPrefix = "#/definitions/segments/"
	switch {
	case strings.HasPrefix(refPath, loopPrefix):
		name := strings.TrimPrefix(refPath, loopPrefix)
		if v, ok := r.loops[name]; ok {
			return v, nil
		}
	case strings.HasPrefix(refPath, segPrefix):
		name := strings.TrimPrefix(refPath, segPrefix)
		if v, ok := r.segments[name]; ok {
			return v, nil
		}
	}
	return nil, errs.New(errs.SchemaLoadError, "unresolved $ref: %s", refPath)
}

func deepClone(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, e := range val {
			out[k] = deepClone(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, e := range val {
			out[i] = deepClone(e)
		}
		return out
	default:
		return v
	}
}
