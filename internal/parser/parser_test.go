package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"plain", []string{"id", "title"}, []string{"id", "title"}},
		{"blank cells", []string{"id", "", "x", ""}, []string{"id", "Unnamed: 1", "x", "Unnamed: 3"}},
		{"whitespace kept", []string{" old_name", "value ", " "}, []string{" old_name", "value ", " "}},
		{"whitespace variants are distinct", []string{"a", " a"}, []string{"a", " a"}},
		{"duplicates", []string{"a", "a", "b", "a"}, []string{"a", "a.1", "b", "a.2"}},
		{"suffix already present", []string{"a", "a.1", "a"}, []string{"a", "a.1", "a.2"}},
		{"bom", []string{"\uFEFFid", "x"}, []string{"id", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Headers(tt.in))
		})
	}
}
