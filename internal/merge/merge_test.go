package merge

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabetl/internal/config"
	"tabetl/internal/dataset"
	"tabetl/internal/etlerr"
)

func referenceOptions() (Keys, Options) {
	return FromConfig(config.Merge{
		LeftKey: "productId", RightKey: "id",
		LeftSuffix: "_cart", RightSuffix: "_product",
	})
}

func carts() *dataset.Dataset {
	return dataset.MustFromRows(
		[]string{"productId", "quantity", "id", "userId", "date"},
		[][]any{{json.Number("5"), json.Number("2"), json.Number("1"), json.Number("9"), "2024-01-01"}},
	)
}

/*
TestMerge_CartsWithProducts is the reference carts/products join: the
shared "id" column is suffixed on both sides, the right key (id_product)
is dropped and no column name keeps a dot.
*/
func TestMerge_CartsWithProducts(t *testing.T) {
	t.Parallel()

	products := dataset.MustFromRows(
		[]string{"id", "title", "rating.rate"},
		[][]any{
			{json.Number("4"), "Other", json.Number("1.0")},
			{json.Number("5"), "Widget", json.Number("3.9")},
		},
	)
	keys, opt := referenceOptions()

	out, err := Merge(carts(), products, keys, opt)
	require.NoError(t, err)
	assert.Equal(t, []string{"productId", "quantity", "id_cart", "userId", "date", "title", "rating_rate"}, out.Columns())
	require.Equal(t, 1, out.NumRows())
	assert.Equal(t, []any{json.Number("5"), json.Number("2"), json.Number("1"), json.Number("9"), "2024-01-01", "Widget", json.Number("3.9")}, out.Row(0))
	for _, c := range out.Columns() {
		assert.NotContains(t, c, ".")
	}
}

func TestMerge_KeepRightKey(t *testing.T) {
	t.Parallel()

	products := dataset.MustFromRows([]string{"id", "title"}, [][]any{{json.Number("5"), "Widget"}})
	keys, opt := referenceOptions()
	opt.KeepRightKey = true

	out, err := Merge(carts(), products, keys, opt)
	require.NoError(t, err)
	assert.Equal(t, []string{"productId", "quantity", "id_cart", "userId", "date", "id_product", "title"}, out.Columns())
}

func TestMerge_SharedKeyNameAppearsOnce(t *testing.T) {
	t.Parallel()

	l := dataset.MustFromRows([]string{"k", "v"}, [][]any{{"a", 1}, {"b", 2}})
	r := dataset.MustFromRows([]string{"k", "v"}, [][]any{{"b", 20}})

	out, err := Merge(l, r, Keys{Left: "k", Right: "k"}, Options{LeftSuffix: "_l", RightSuffix: "_r", KeepRightKey: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"k", "v_l", "v_r"}, out.Columns())
	assert.Equal(t, []any{"b", 2, 20}, out.Row(0))
}

func TestMerge_FanOutAndOrder(t *testing.T) {
	t.Parallel()

	l := dataset.MustFromRows([]string{"k", "lv"}, [][]any{{2, "l0"}, {1, "l1"}, {nil, "l2"}, {2, "l3"}})
	r := dataset.MustFromRows([]string{"k2", "rv"}, [][]any{{2, "r0"}, {nil, "r1"}, {2.0, "r2"}, {"2", "r3"}})

	out, err := Merge(l, r, Keys{Left: "k", Right: "k2"}, Options{})
	require.NoError(t, err)

	var got []string
	for i := 0; i < out.NumRows(); i++ {
		lv, _ := out.Value(i, "lv")
		rv, _ := out.Value(i, "rv")
		got = append(got, lv.(string)+"/"+rv.(string))
	}
	assert.Equal(t, []string{"l0/r0", "l0/r2", "l3/r0", "l3/r2"}, got,
		"left order, right order within a key; nil never matches; strings never equal numbers")
}

func TestMerge_LargeIntegerKeysStayExact(t *testing.T) {
	t.Parallel()

	l := dataset.MustFromRows([]string{"productId", "quantity"}, [][]any{
		{json.Number("9007199254740993"), json.Number("1")},
		{json.Number("9007199254740992"), json.Number("2")},
	})
	r := dataset.MustFromRows([]string{"id", "title"}, [][]any{
		{json.Number("9007199254740992"), "Other"},
	})

	out, err := Merge(l, r, Keys{Left: "productId", Right: "id"}, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, out.NumRows())
	assert.Equal(t, []any{json.Number("9007199254740992"), json.Number("2"), "Other"}, out.Row(0))
}

func TestMerge_NoMatchesKeepsColumns(t *testing.T) {
	t.Parallel()

	l := dataset.MustFromRows([]string{"k"}, [][]any{{1}})
	r := dataset.MustFromRows([]string{"k2", "x"}, [][]any{{2, "y"}})
	out, err := Merge(l, r, Keys{Left: "k", Right: "k2"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, out.NumRows())
	assert.Equal(t, []string{"k", "x"}, out.Columns())
}

func TestMerge_Errors(t *testing.T) {
	t.Parallel()

	keys, opt := referenceOptions()
	products := dataset.MustFromRows([]string{"id", "title"}, nil)

	tests := []struct {
		name    string
		left    *dataset.Dataset
		right   *dataset.Dataset
		keys    Keys
		opt     Options
		wantErr string
	}{
		{"missing left key", carts(), products, Keys{Left: "sku", Right: "id"}, opt, `left dataset has no column "sku"`},
		{"missing right key", carts(), products, Keys{Left: "productId", Right: "sku"}, opt, `right dataset has no column "sku"`},
		{"equal suffixes", carts(), products, keys, Options{LeftSuffix: "_x", RightSuffix: "_x"}, "suffixes are equal"},
		{
			"suffix collides with existing column",
			dataset.MustFromRows([]string{"productId", "title", "title_cart"}, nil),
			products, keys, opt, `"title_cart" appears twice`,
		},
		{
			"dot normalization collides",
			dataset.MustFromRows([]string{"productId", "a.b", "a_b"}, nil),
			products, keys, opt, "both normalize",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Merge(tt.left, tt.right, tt.keys, tt.opt)
			var me *etlerr.MergeError
			require.ErrorAs(t, err, &me)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
			assert.Equal(t, etlerr.StageMerge, etlerr.StageOf(err))
		})
	}
}
