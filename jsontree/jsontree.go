// Package jsontree implements a lazy, path-addressed JSON builder: an
// object-rooted tree with dotted-path setters, lazily-created arrays, and
// insertion-order-preserving object
// keys, independent of the input document's lifetime (every string stored
// is an owned copy).
package jsontree

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/logward/x12transform/errs"
)

// Kind tags a Value's active representation. Values are a tagged variant,
// not an interface hierarchy.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is a JSON value: exactly one of its Kind-tagged fields is
// meaningful at a time.
type Value struct {
	Kind    Kind
	Bool    bool
	Number  float64
	Str     string
	Array   []*Value
	Object  *Object
}

// Object is an insertion-order-preserving string -> Value map.
type Object struct {
	keys   []string
	values map[string]*Value
}

func newObject() *Object {
	return &Object{values: make(map[string]*Value)}
}

func (o *Object) get(key string) (*Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

func (o *Object) set(key string, v *Value) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Keys returns the object's keys in insertion order.
func (o *Object) Keys() []string {
	return o.keys
}

// Tree is a JSON document builder with an object root.
type Tree struct {
	root *Object
}

// New returns a Tree with an empty object root.
func New() *Tree {
	return &Tree{root: newObject()}
}

// Root returns the root object's Value wrapper, primarily for Get/tests.
func (t *Tree) Root() *Value {
	return &Value{Kind: KindObject, Object: t.root}
}

// RootObject returns the tree's root Object directly, for callers (like the
// processor) that need to scope further Set/Push operations under
// sub-objects they resolve themselves.
func (t *Tree) RootObject() *Object {
	return t.root
}

// EnsureObjectPath walks/creates a chain of objects along path (including
// its final segment), starting at scope, and returns the object at path. An
// empty path returns scope itself. It returns PathConflict if any segment
// along the way already holds a non-object value.
func EnsureObjectPath(scope *Object, path string) (*Object, error) {
	segs := splitPath(path)
	cur := scope
	for _, seg := range segs {
		existing, ok := cur.get(seg)
		if !ok {
			fresh := NewObjectValue()
			cur.set(seg, fresh)
			cur = fresh.Object
			continue
		}
		if existing.Kind != KindObject {
			return nil, errs.New(errs.PathConflict,
				"path segment %q already holds a non-object value", seg).WithContext("path", path)
		}
		cur = existing.Object
	}
	return cur, nil
}

// StringValue wraps s as an owned KindString Value.
func StringValue(s string) *Value { return &Value{Kind: KindString, Str: s} }

// NumberValue wraps n as a KindNumber Value.
func NumberValue(n float64) *Value { return &Value{Kind: KindNumber, Number: n} }

// BoolValue wraps b as a KindBool Value.
func BoolValue(b bool) *Value { return &Value{Kind: KindBool, Bool: b} }

// NewObjectValue returns a fresh, empty KindObject Value.
func NewObjectValue() *Value { return &Value{Kind: KindObject, Object: newObject()} }

// splitPath splits a dotted path into its segments. Empty input yields no
// segments.
func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// resolveParent walks/creates intermediate objects for all but the last
// segment of path, starting at root, returning the final segment's object
// and key name.
func resolveParent(root *Object, path string) (*Object, string, error) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return nil, "", errs.New(errs.PathConflict, "empty path")
	}
	cur := root
	for _, seg := range segs[:len(segs)-1] {
		existing, ok := cur.get(seg)
		if !ok || existing.Kind != KindObject {
			if ok && existing.Kind != KindObject {
				return nil, "", errs.New(errs.PathConflict,
					"path segment %q already holds a non-object value", seg).WithContext("path", path)
			}
			fresh := NewObjectValue()
			cur.set(seg, fresh)
			cur = fresh.Object
			continue
		}
		cur = existing.Object
	}
	return cur, segs[len(segs)-1], nil
}

// SetIn writes value at the dotted path relative to scope, creating
// intermediate objects on demand. If an intermediate key exists but is not
// an object, this returns a PathConflict error rather than silently
// overwriting the conflicting value.
func SetIn(scope *Object, path string, value *Value) error {
	parent, key, err := resolveParent(scope, path)
	if err != nil {
		return err
	}
	parent.set(key, value)
	return nil
}

// GetIn retrieves the value at path relative to scope, if present.
func GetIn(scope *Object, path string) (*Value, bool) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return &Value{Kind: KindObject, Object: scope}, true
	}
	cur := scope
	for i, seg := range segs {
		v, ok := cur.get(seg)
		if !ok {
			return nil, false
		}
		if i == len(segs)-1 {
			return v, true
		}
		if v.Kind != KindObject {
			return nil, false
		}
		cur = v.Object
	}
	return nil, false
}

// GetOrCreateArrayIn resolves path (relative to scope) to an array Value,
// lazily creating an empty array there if absent. It returns PathConflict
// if the existing value at path is neither absent nor an array.
func GetOrCreateArrayIn(scope *Object, path string) (*Value, error) {
	parent, key, err := resolveParent(scope, path)
	if err != nil {
		return nil, err
	}
	existing, ok := parent.get(key)
	if !ok {
		fresh := &Value{Kind: KindArray}
		parent.set(key, fresh)
		return fresh, nil
	}
	if existing.Kind != KindArray {
		return nil, errs.New(errs.PathConflict, "path %q already holds a non-array value", path)
	}
	return existing, nil
}

// PushToArrayIn appends item to the array at path (relative to scope),
// creating the array on its first push (lazy allocation — empty arrays
// never appear in output unless explicitly pushed to).
func PushToArrayIn(scope *Object, path string, item *Value) (*Value, error) {
	arr, err := GetOrCreateArrayIn(scope, path)
	if err != nil {
		return nil, err
	}
	arr.Array = append(arr.Array, item)
	return item, nil
}

// Set writes value at the dotted path under the tree's root object.
func (t *Tree) Set(path string, value *Value) error {
	return SetIn(t.root, path, value)
}

// SetString is a convenience wrapper for Set(path, StringValue(v)).
func (t *Tree) SetString(path, v string) error {
	return t.Set(path, StringValue(v))
}

// Get retrieves the value at path under the tree's root object, if present.
func (t *Tree) Get(path string) (*Value, bool) {
	return GetIn(t.root, path)
}

// GetOrCreateArray resolves path under the tree's root object to an array
// Value, lazily creating an empty array there if absent.
func (t *Tree) GetOrCreateArray(path string) (*Value, error) {
	return GetOrCreateArrayIn(t.root, path)
}

// PushToArray appends obj to the array at path under the tree's root
// object, creating the array on its first push.
func (t *Tree) PushToArray(path string, obj *Value) (*Value, error) {
	return PushToArrayIn(t.root, path, obj)
}

// Stringify serializes the tree as canonical JSON (object keys in
// insertion order, strings escaped per JSON, numbers rendered without
// locale sensitivity). The top-level output is always an object.
func (t *Tree) Stringify() []byte {
	var buf bytes.Buffer
	writeValue(&buf, t.Root())
	return buf.Bytes()
}

func writeValue(buf *bytes.Buffer, v *Value) {
	if v == nil {
		buf.WriteString("null")
		return
	}
	switch v.Kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		buf.WriteString(strconv.FormatFloat(v.Number, 'g', -1, 64))
	case KindString:
		writeJSONString(buf, v.Str)
	case KindArray:
		buf.WriteByte('[')
		for i, e := range v.Array {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeValue(buf, e)
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, k := range v.Object.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(buf, k)
			buf.WriteByte(':')
			val, _ := v.Object.get(k)
			writeValue(buf, val)
		}
		buf.WriteByte('}')
	}
}

func writeJSONString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				buf.WriteString(`\u`)
				const hex = "0123456789abcdef"
				buf.WriteByte(hex[(r>>12)&0xf])
				buf.WriteByte(hex[(r>>8)&0xf])
				buf.WriteByte(hex[(r>>4)&0xf])
				buf.WriteByte(hex[r&0xf])
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}
