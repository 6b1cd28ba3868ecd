package transformfuncs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logward/x12transform/errs"
	"github.com/logward/x12transform/transformctx"
)

func TestLookup_UnknownTransformIsParseError(t *testing.T) {
	_, err := Lookup("does_not_exist")
	require.Error(t, err)
	assert.Equal(t, errs.ParseError, errs.CodeOf(err))
}

func TestTrimWhitespace(t *testing.T) {
	fn, err := Lookup("trim_whitespace")
	require.NoError(t, err)
	out, err := fn(transformctx.New(""), "  DOE  \t\n", "")
	require.NoError(t, err)
	assert.Equal(t, "DOE", out)
}

func TestJavaScriptTransform_UppercasesValue(t *testing.T) {
	fn, err := Lookup("javascript")
	require.NoError(t, err)
	out, err := fn(transformctx.New(""), "john doe", "value.toUpperCase()")
	require.NoError(t, err)
	assert.Equal(t, "JOHN DOE", out)
}

func TestJavaScriptTransform_EmptyScriptIsError(t *testing.T) {
	fn, err := Lookup("javascript")
	require.NoError(t, err)
	_, err = fn(transformctx.New(""), "value", "")
	require.Error(t, err)
	assert.Equal(t, errs.ParseError, errs.CodeOf(err))
}

func TestJavaScriptTransform_InvalidScriptIsError(t *testing.T) {
	fn, err := Lookup("javascript")
	require.NoError(t, err)
	_, err = fn(transformctx.New(""), "value", "this is not ( valid js")
	require.Error(t, err)
	assert.Equal(t, errs.ParseError, errs.CodeOf(err))
}
