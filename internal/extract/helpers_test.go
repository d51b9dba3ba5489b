package extract

import (
	"io"

	"tabetl/internal/dataset"
)

// rawParser puts the whole body into a single "body" cell.
type rawParser struct{}

func (rawParser) Parse(r io.Reader) (*dataset.Dataset, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return dataset.FromRows([]string{"body"}, [][]any{{string(b)}})
}
