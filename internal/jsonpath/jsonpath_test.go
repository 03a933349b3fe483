package jsonpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var doc = map[string]any{
	"data": map[string]any{
		"id":   1001.0,
		"name": "widget",
		"tags": []any{"a", "b", "c"},
	},
	"items": []any{
		map[string]any{"sku": "x1", "qty": 2.0},
		map[string]any{"sku": "x2", "qty": 5.0},
	},
	"odd key": true,
	"nothing": nil,
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		path string
		want []any
	}{
		{"root", "$", []any{doc}},
		{"dotted", "$.data.id", []any{1001.0}},
		{"bare path", "data.name", []any{"widget"}},
		{"index", "$.data.tags[1]", []any{"b"}},
		{"negative index", "$.data.tags[-1]", []any{"c"}},
		{"quoted", "$['odd key']", []any{true}},
		{"double quoted", `$["data"]["name"]`, []any{"widget"}},
		{"wildcard", "$.items[*].sku", []any{"x1", "x2"}},
		{"dot wildcard", "$.items.*.qty", []any{2.0, 5.0}},
		{"null value matches", "$.nothing", []any{nil}},
		{"missing field", "$.data.missing", []any{}},
		{"index out of range", "$.data.tags[9]", []any{}},
		{"field on array", "$.items.sku", []any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(doc, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveMalformed(t *testing.T) {
	paths := []string{
		"",
		"$..data",
		"$.data[",
		"$.data['id",
		"$.items[?(@.qty>1)]",
		"$.data.",
		"$ data",
	}

	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			_, err := Resolve(doc, p)
			assert.Error(t, err)
		})
	}
}

func TestResolveWildcardOnObjectIsOrdered(t *testing.T) {
	obj := map[string]any{"b": 2.0, "a": 1.0, "c": 3.0}
	for i := 0; i < 5; i++ {
		got, err := Resolve(obj, "$.*")
		require.NoError(t, err)
		assert.Equal(t, []any{1.0, 2.0, 3.0}, got)
	}
}
