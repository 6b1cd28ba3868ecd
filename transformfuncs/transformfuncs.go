// Package transformfuncs implements the closed vocabulary of element
// transforms this module allows: a fixed registry mapping transform
// names (as they appear in a SegmentDef's ElementMapping.Transforms) to
// their implementation.
package transformfuncs

import (
	"strings"

	"github.com/dop251/goja"

	"github.com/logward/x12transform/errs"
	"github.com/logward/x12transform/transformctx"
)

// Func transforms a raw string value, given the call's context and any
// transform-specific argument (e.g. the javascript transform's script
// source), into its replacement value. arg is "" for transforms that take
// none.
type Func func(ctx *transformctx.Ctx, value, arg string) (string, error)

// registry is the closed set of known transform names. An unrecognized name
// is always a ParseError, never silently ignored.
var registry = map[string]Func{
	"trim_whitespace": trimWhitespace,
	"javascript":      javascriptTransform,
}

// Lookup returns the Func registered for name, or a ParseError if name is
// not in the closed registry.
func Lookup(name string) (Func, error) {
	f, ok := registry[name]
	if !ok {
		return nil, errs.New(errs.ParseError, "unsupported transform %q", name).
			WithContext("transform", name)
	}
	return f, nil
}

func trimWhitespace(_ *transformctx.Ctx, value, _ string) (string, error) {
	return strings.TrimFunc(value, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
	}), nil
}

// javascriptTransform evaluates arg (the ElementMapping's Script) as a
// JavaScript expression via github.com/dop251/goja, with the raw element
// value bound to the identifier `value`, and returns the expression's
// result coerced to a string (e.g. `value.trim().toUpperCase()`).
func javascriptTransform(_ *transformctx.Ctx, value, arg string) (string, error) {
	if arg == "" {
		return "", errs.New(errs.ParseError, "javascript transform requires a non-empty script")
	}
	vm := goja.New()
	if err := vm.Set("value", value); err != nil {
		return "", errs.New(errs.ParseError, "javascript transform: cannot bind value: %s", err)
	}
	result, err := vm.RunString(arg)
	if err != nil {
		return "", errs.New(errs.ParseError, "javascript transform failed: %s", err)
	}
	return result.String(), nil
}
