package csv_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabetl/internal/dataset"
	pcsv "tabetl/internal/parser/csv"
)

func value(t *testing.T, ds *dataset.Dataset, row int, col string) any {
	t.Helper()
	v, ok := ds.Value(row, col)
	require.True(t, ok, "no cell %d/%s", row, col)
	return v
}

func TestParse_HeaderAndRows(t *testing.T) {
	t.Parallel()

	in := "\uFEFFid,title,,title\n1, Widget ,x,dup\n2,,\n"
	ds, err := pcsv.NewParser(pcsv.Options{TrimSpace: true}).Parse(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "title", "Unnamed: 2", "title.1"}, ds.Columns())
	require.Equal(t, 2, ds.NumRows())
	assert.Equal(t, "Widget", value(t, ds, 0, "title"))
	assert.Nil(t, value(t, ds, 1, "title"), "empty field is nil")
	assert.Nil(t, value(t, ds, 1, "title.1"), "short row is padded")
}

func TestParse_HeaderMapAndComma(t *testing.T) {
	t.Parallel()

	in := "Datum od;Důvod\n2024-01-01;oprava\n"
	ds, err := pcsv.NewParser(pcsv.Options{
		Comma:     ';',
		HeaderMap: map[string]string{"Datum od": "date_from", "Důvod": "reason"},
	}).Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "oprava", value(t, ds, 0, "reason"))
	assert.Equal(t, "2024-01-01", value(t, ds, 0, "date_from"))
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	for name, in := range map[string]string{
		"empty":     "",
		"wide row":  "a,b\n1,2,3\n",
		"bad quote": "a,b\n\"1,2\n",
	} {
		_, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader(in))
		assert.Error(t, err, name)
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	t.Parallel()

	ds, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, ds.NumRows())
	assert.Equal(t, 2, ds.NumCols())
}
