package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabetl/internal/dataset"
)

func TestStripTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"no tags", "plain text", "plain text"},
		{"simple tags", "<b>Bold</b> text", "Bold text"},
		{"attributes", `<a href="/p/5">Widget</a>`, "Widget"},
		{"unclosed tag drops the rest", "keep <span", "keep "},
		{"stray close bracket is kept", "a > b", "a > b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, stripTags(tt.in))
		})
	}
}

func TestCollapseSpace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"a", "a"},
		{"  a  b  ", "a b"},
		{"a\t\n\r b", "a b"},
		{"\n\n", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, collapseSpace(tt.in), "%q", tt.in)
	}
}

func TestNormalize_MarkupOptions(t *testing.T) {
	t.Parallel()

	in := dataset.MustFromRows([]string{"title"}, [][]any{{"<p>Slim  Fit\n<b>Shirt</b></p> "}, {nil}})
	out, err := Normalize{StripTags: true, CollapseWhitespace: true}.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, []any{"Slim Fit Shirt"}, out.Row(0))
	assert.Equal(t, []any{nil}, out.Row(1))

	out, err = Normalize{}.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, []any{"<p>Slim  Fit\n<b>Shirt</b></p>"}, out.Row(0))
}
