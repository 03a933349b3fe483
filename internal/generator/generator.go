// Package generator produces sample values from OpenAPI schemas.
// Output is deterministic so that an imported suite is stable across runs.
package generator

import (
	"fmt"
	"strings"

	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
)

// maxDepth stops recursive schemas from expanding forever
const maxDepth = 6

// Generator generates sample data from OpenAPI schemas
type Generator struct{}

// NewGenerator creates a new generator instance
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateValue generates a sample value for schema
func (g *Generator) GenerateValue(schema *base.Schema) (any, error) {
	if schema == nil {
		return nil, fmt.Errorf("schema is nil")
	}
	return g.generate(schema, 0), nil
}

func (g *Generator) generate(schema *base.Schema, depth int) any {
	// Check for example value first
	if schema.Example != nil {
		var v any
		if err := schema.Example.Decode(&v); err == nil && v != nil {
			return v
		}
	}

	// Check for default value
	if schema.Default != nil {
		var v any
		if err := schema.Default.Decode(&v); err == nil && v != nil {
			return v
		}
	}

	if len(schema.Enum) > 0 && schema.Enum[0] != nil {
		var v any
		if err := schema.Enum[0].Decode(&v); err == nil {
			return v
		}
	}

	if len(schema.Type) > 0 {
		switch schema.Type[0] {
		case "string":
			return g.generateString(schema)
		case "integer":
			return g.generateInteger(schema)
		case "number":
			return g.generateNumber(schema)
		case "boolean":
			return true
		case "array":
			return g.generateArray(schema, depth)
		case "object":
			return g.generateObject(schema, depth)
		}
	}

	if schema.Properties != nil && schema.Properties.Len() > 0 {
		return g.generateObject(schema, depth)
	}

	// If no type specified, try to infer from format
	if schema.Format != "" {
		return generateFromFormat(schema.Format)
	}

	return "sample"
}

// generateString generates a string value based on schema constraints
func (g *Generator) generateString(schema *base.Schema) string {
	if schema.Format != "" {
		if s, ok := generateFromFormat(schema.Format).(string); ok {
			return s
		}
	}

	length := 6
	if schema.MinLength != nil && int(*schema.MinLength) > length {
		length = int(*schema.MinLength)
	}
	if schema.MaxLength != nil && int(*schema.MaxLength) < length {
		length = int(*schema.MaxLength)
	}
	if length <= 0 {
		return ""
	}
	return strings.Repeat("sample", length/6+1)[:length]
}

func (g *Generator) generateInteger(schema *base.Schema) int64 {
	v := int64(1)
	if schema.Minimum != nil && int64(*schema.Minimum) > v {
		v = int64(*schema.Minimum)
	}
	if schema.Maximum != nil && int64(*schema.Maximum) < v {
		v = int64(*schema.Maximum)
	}
	return v
}

func (g *Generator) generateNumber(schema *base.Schema) float64 {
	v := 1.5
	if schema.Minimum != nil && *schema.Minimum > v {
		v = *schema.Minimum
	}
	if schema.Maximum != nil && *schema.Maximum < v {
		v = *schema.Maximum
	}
	return v
}

// generateArray generates an array value
func (g *Generator) generateArray(schema *base.Schema, depth int) []any {
	count := 1
	if schema.MinItems != nil && int(*schema.MinItems) > count {
		count = int(*schema.MinItems)
	}

	var item *base.Schema
	if schema.Items != nil && schema.Items.IsA() && schema.Items.A != nil {
		item = schema.Items.A.Schema()
	}

	result := make([]any, count)
	for i := range result {
		if item == nil || depth >= maxDepth {
			result[i] = "item"
			continue
		}
		result[i] = g.generate(item, depth+1)
	}
	return result
}

// generateObject fills required properties, or every property when none are required
func (g *Generator) generateObject(schema *base.Schema, depth int) map[string]any {
	result := make(map[string]any)
	if schema.Properties == nil || depth >= maxDepth {
		return result
	}

	required := map[string]bool{}
	for _, name := range schema.Required {
		required[name] = true
	}

	for pair := schema.Properties.First(); pair != nil; pair = pair.Next() {
		name := pair.Key()
		if len(required) > 0 && !required[name] {
			continue
		}
		if pair.Value() == nil {
			continue
		}
		if prop := pair.Value().Schema(); prop != nil {
			result[name] = g.generate(prop, depth+1)
		}
	}
	return result
}

// generateFromFormat generates a value based on format
func generateFromFormat(format string) any {
	switch format {
	case "date":
		return "2026-01-01"
	case "date-time":
		return "2026-01-01T00:00:00Z"
	case "email":
		return "test@example.com"
	case "uri", "url":
		return "https://example.com"
	case "uuid":
		return "123e4567-e89b-12d3-a456-426614174000"
	case "int32", "int64":
		return int64(1)
	case "float", "double":
		return 1.5
	default:
		return "sample"
	}
}

// ParameterValue generates a string value for a path, query or header parameter
func (g *Generator) ParameterValue(param *v3.Parameter) (string, error) {
	if param == nil {
		return "", fmt.Errorf("parameter is nil")
	}

	if param.Example != nil {
		var v any
		if err := param.Example.Decode(&v); err == nil && v != nil {
			return fmt.Sprint(v), nil
		}
	}

	if param.Schema != nil {
		if schema := param.Schema.Schema(); schema != nil {
			return fmt.Sprint(g.generate(schema, 0)), nil
		}
	}

	return "sample", nil
}

// RequestBody generates a body for requestBody, preferring a JSON media type
func (g *Generator) RequestBody(requestBody *v3.RequestBody) (any, string, error) {
	if requestBody == nil {
		return nil, "", fmt.Errorf("request body is nil")
	}
	if requestBody.Content == nil || requestBody.Content.Len() == 0 {
		return nil, "", fmt.Errorf("no content defined in request body")
	}

	var contentType string
	var schema *base.Schema

	// Prefer application/json
	for pair := requestBody.Content.First(); pair != nil; pair = pair.Next() {
		if strings.Contains(pair.Key(), "json") && pair.Value() != nil && pair.Value().Schema != nil {
			contentType = pair.Key()
			schema = pair.Value().Schema.Schema()
			break
		}
	}

	// If no JSON found, use the first one
	if schema == nil {
		pair := requestBody.Content.First()
		contentType = pair.Key()
		if pair.Value() != nil && pair.Value().Schema != nil {
			schema = pair.Value().Schema.Schema()
		}
	}

	if schema == nil {
		return nil, "", fmt.Errorf("no schema found in request body")
	}
	return g.generate(schema, 0), contentType, nil
}
