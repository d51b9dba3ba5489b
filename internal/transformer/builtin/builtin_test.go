package builtin_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabetl/internal/config"
	"tabetl/internal/dataset"
	"tabetl/internal/etlerr"
	"tabetl/internal/transformer"
	"tabetl/internal/transformer/builtin"
)

func transport() *dataset.Dataset {
	return dataset.MustFromRows(
		[]string{"old_name", "value", "note"},
		[][]any{
			{"a", json.Number("1"), " x "},
			{"b", json.Number("2"), nil},
			{"c", json.Number("3"), "café"},
		},
	)
}

func spec(kind string, opts config.Options) config.Transform {
	return config.Transform{Kind: kind, Options: opts}
}

/*
TestRename_RenamesAndKeepsRows renames one column and checks that the row
count, row order and untouched columns are exactly preserved.
*/
func TestRename_RenamesAndKeepsRows(t *testing.T) {
	t.Parallel()

	in := transport()
	out, err := transformer.Transform(in, []config.Transform{
		spec("rename_columns", config.Options{"old_name": "new_name", "absent": "ignored"}),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"new_name", "value", "note"}, out.Columns())
	require.Equal(t, in.NumRows(), out.NumRows())
	for i := 0; i < in.NumRows(); i++ {
		assert.Equal(t, in.Row(i), out.Row(i), "row %d", i)
	}
	assert.Equal(t, []string{"old_name", "value", "note"}, in.Columns(), "input not mutated")
}

func TestRename_IsIdempotent(t *testing.T) {
	t.Parallel()

	specs := []config.Transform{spec("rename_columns", config.Options{"old_name": "new_name"})}
	once, err := transformer.Transform(transport(), specs)
	require.NoError(t, err)
	twice, err := transformer.Transform(once, specs)
	require.NoError(t, err)
	assert.True(t, dataset.Equal(once, twice))
}

func TestRename_SwapAndCollision(t *testing.T) {
	t.Parallel()

	out, err := transformer.Transform(transport(), []config.Transform{
		spec("rename_columns", config.Options{"old_name": "value", "value": "old_name"}),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"value", "old_name", "note"}, out.Columns())
	v, _ := out.Value(0, "value")
	assert.Equal(t, "a", v)

	_, err = transformer.Transform(transport(), []config.Transform{
		spec("rename_columns", config.Options{"old_name": "value"}),
	})
	var te *etlerr.TransformationError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "rename_columns", te.Kind)
}

func TestTransform_EmptyListIsIdentity(t *testing.T) {
	t.Parallel()

	in := transport()
	out, err := transformer.Transform(in, nil)
	require.NoError(t, err)
	assert.True(t, dataset.Equal(in, out))
}

func TestTransform_UnknownKindRejectsWholeList(t *testing.T) {
	t.Parallel()

	_, err := transformer.Transform(transport(), []config.Transform{
		spec("rename_columns", config.Options{"old_name": "new_name"}),
		spec("pivot", nil),
	})
	var te *etlerr.TransformationError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "pivot", te.Kind)
	assert.ErrorIs(t, err, etlerr.ErrUnknownKind)
	assert.Equal(t, etlerr.StageTransform, etlerr.StageOf(err))
}

func TestDropAndSelect(t *testing.T) {
	t.Parallel()

	out, err := transformer.Transform(transport(), []config.Transform{
		spec("drop_columns", config.Options{"columns": []any{"note", "missing"}}),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"old_name", "value"}, out.Columns())
	assert.Equal(t, 3, out.NumRows())

	out, err = transformer.Transform(transport(), []config.Transform{
		spec("select_columns", config.Options{"columns": []any{"value", "old_name"}}),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"value", "old_name"}, out.Columns())

	_, err = transformer.Transform(transport(), []config.Transform{
		spec("select_columns", config.Options{"columns": []any{"missing"}}),
	})
	assert.Error(t, err)

	_, err = transformer.Transform(transport(), []config.Transform{spec("drop_columns", config.Options{})})
	assert.Error(t, err, "columns option is required")

	_, err = transformer.Transform(transport(), []config.Transform{
		spec("drop_columns", config.Options{"columns": "note"}),
	})
	assert.Error(t, err, "columns must be a list")
}

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	in := dataset.MustFromRows([]string{"a", "b"}, [][]any{
		{"  foo  ", "Cafe\u0301"},
		{"x\u00c2\u00a0y", json.Number("1")},
		{nil, "\tbar\n"},
	})

	out, err := transformer.Transform(in, []config.Transform{spec("normalize_text", nil)})
	require.NoError(t, err)
	assert.Equal(t, []any{"foo", "Caf\u00e9"}, out.Row(0), "NFC composes the accent")
	assert.Equal(t, []any{"x y", json.Number("1")}, out.Row(1))
	assert.Equal(t, []any{nil, "bar"}, out.Row(2))

	out, err = transformer.Transform(in, []config.Transform{
		spec("normalize_text", config.Options{"columns": []any{"b"}, "strip_accents": true}),
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"  foo  ", "Cafe"}, out.Row(0))
}

func TestHasEdgeSpace(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]bool{
		"":      false,
		"foo":   false,
		" foo":  true,
		"foo\t": true,
		"\nfoo": true,
		"f oo":  false,
	} {
		assert.Equal(t, want, builtin.HasEdgeSpace(in), "%q", in)
	}
}

func TestCoerce(t *testing.T) {
	t.Parallel()

	in := dataset.MustFromRows([]string{"i", "f", "b", "d", "s"}, [][]any{
		{"42", json.Number("9.5"), "true", "2025-11-09", json.Number("7")},
		{"not-an-int", "x", "nope", "11/09/2025", nil},
	})
	out, err := transformer.Transform(in, []config.Transform{spec("coerce", config.Options{
		"types": map[string]any{"i": "int", "f": "float", "b": "bool", "d": "date", "s": "string"},
	})})
	require.NoError(t, err)

	assert.Equal(t, []any{int64(42), 9.5, true, time.Date(2025, 11, 9, 0, 0, 0, 0, time.UTC), "7"}, out.Row(0))
	assert.Equal(t, in.Row(1), out.Row(1), "unparseable values are kept")

	_, err = transformer.Transform(in, []config.Transform{spec("coerce", config.Options{
		"types": map[string]any{"i": "decimal"},
	})})
	assert.Error(t, err)
}
