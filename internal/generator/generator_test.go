package generator

import (
	"testing"

	"github.com/pb33f/libopenapi/datamodel/high/base"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateScalars(t *testing.T) {
	g := NewGenerator()
	minimum := 10.0
	maxLen := int64(3)

	tests := []struct {
		name   string
		schema *base.Schema
		want   any
	}{
		{"string", &base.Schema{Type: []string{"string"}}, "sample"},
		{"short string", &base.Schema{Type: []string{"string"}, MaxLength: &maxLen}, "sam"},
		{"email", &base.Schema{Type: []string{"string"}, Format: "email"}, "test@example.com"},
		{"integer", &base.Schema{Type: []string{"integer"}}, int64(1)},
		{"integer minimum", &base.Schema{Type: []string{"integer"}, Minimum: &minimum}, int64(10)},
		{"number", &base.Schema{Type: []string{"number"}}, 1.5},
		{"boolean", &base.Schema{Type: []string{"boolean"}}, true},
		{"format only", &base.Schema{Format: "uuid"}, "123e4567-e89b-12d3-a456-426614174000"},
		{"untyped", &base.Schema{}, "sample"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.GenerateValue(tt.schema)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateArrayWithoutItems(t *testing.T) {
	got, err := NewGenerator().GenerateValue(&base.Schema{Type: []string{"array"}})
	require.NoError(t, err)
	assert.Equal(t, []any{"item"}, got)
}

func TestGenerateNilSchema(t *testing.T) {
	_, err := NewGenerator().GenerateValue(nil)
	assert.Error(t, err)
}

func TestParameterValueNil(t *testing.T) {
	_, err := NewGenerator().ParameterValue(nil)
	assert.Error(t, err)
}

func TestRequestBodyNil(t *testing.T) {
	_, _, err := NewGenerator().RequestBody(nil)
	assert.Error(t, err)
}
