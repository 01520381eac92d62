package diagnostics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/classcore/internal/token"
)

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"size", "sizes", 1},
		{"same", "same", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EditDistance(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
		assert.Equal(t, tt.want, EditDistance(tt.b, tt.a), "%q vs %q (swapped)", tt.b, tt.a)
	}
}

func TestSuggest(t *testing.T) {
	candidates := []string{"length", "lenght2", "size", "toString", "getFullName"}

	assert.Equal(t, []string{"lenght2", "length"}, Suggest("lenght", candidates))
	assert.Contains(t, Suggest("getNameFull", candidates), "getFullName")
	assert.Empty(t, Suggest("zzzzzzzzzz", candidates))
	// an exact match is never a suggestion
	assert.NotContains(t, Suggest("size", candidates), "size")
}

func TestDiagnosticErrorMessage(t *testing.T) {
	d := NewError(ErrS003, token.Span{File: "a.yaml", Line: 3, Column: 7}, "java/util/Map", 1, 2)
	assert.Equal(t, "wrong number of type arguments for java/util/Map: got 1, want 2", d.Message())
	assert.Equal(t, "a.yaml:3:7: error S003: wrong number of type arguments for java/util/Map: got 1, want 2", d.Error())
	assert.True(t, d.IsError())

	w := NewWarning(ErrS005, token.NoSpan, "java/util/List")
	assert.False(t, w.IsError())

	d.Hint = DidYouMean("field", []string{"x"})
	assert.True(t, strings.HasSuffix(d.Message(), "did you mean field x?"))
}

func TestCollectorSortsAndCounts(t *testing.T) {
	c := NewCollector()
	assert.False(t, c.Report(NewWarning(ErrS005, token.Span{File: "b", Line: 1}, "X")))
	assert.True(t, c.Report(NewError(ErrS001, token.Span{File: "a", Line: 9}, "Y", "")))
	assert.True(t, c.Report(NewError(ErrS001, token.Span{File: "a", Line: 2}, "Z", "")))

	errs, warns := c.Counts()
	assert.Equal(t, 2, errs)
	assert.Equal(t, 1, warns)
	assert.True(t, c.HasErrors())

	all := c.Diagnostics()
	require.Len(t, all, 3)
	assert.Equal(t, 2, all[0].Span.Line)
	assert.Equal(t, 9, all[1].Span.Line)
	assert.Equal(t, "b", all[2].Span.File)
	assert.Len(t, c.WithCode(ErrS001), 2)
}

func TestTextSinkPlain(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTextSink(&buf, ColorAuto)
	sink.Report(NewError(ErrA003, token.Span{File: "u", Line: 1, Column: 1}, "p/A", "x"))
	assert.Equal(t, "u:1:1: error A003: cannot assign a value to final field p/A.x\n", buf.String())

	buf.Reset()
	NewTextSink(&buf, ColorAlways).Report(NewWarning(ErrS005, token.NoSpan, "p/L"))
	assert.Contains(t, buf.String(), ansiYellow)
}
