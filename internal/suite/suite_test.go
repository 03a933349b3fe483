package suite

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moamenhredeen/reqcheck/internal/models"
)

func TestLoadYAML(t *testing.T) {
	s, err := Load("testdata/smoke.yaml")
	require.NoError(t, err)

	assert.Equal(t, "smoke", s.SuiteName)
	assert.Equal(t, "out", s.OutputDir)
	assert.Equal(t, 3, s.Concurrency)
	require.Len(t, s.Cases, 2)

	first := s.Cases[0]
	assert.Equal(t, "get-item", first.CaseID)
	assert.Equal(t, "Bearer token", first.Request.Headers["Authorization"])
	assert.Equal(t, map[string]any{"expand": "owner"}, first.Request.Body)
	assert.Equal(t, 5.0, first.Request.Timeout)
	require.Len(t, first.Assertions, 3)
	assert.Equal(t, models.KindJSONPath, first.Assertions[1].Type)
	assert.False(t, first.Assertions[2].IsEnabled())

	second := s.Cases[1]
	assert.Equal(t, "case-2", second.CaseID)
	assert.Equal(t, "case-2", second.Name)
	assert.Equal(t, "200~299", second.Assertions[0].Expected)
}

func TestLoadJSONDefaults(t *testing.T) {
	s, err := Load("testdata/smoke.json")
	require.NoError(t, err)

	assert.Equal(t, models.DefaultSuiteName, s.SuiteName)
	assert.Equal(t, DefaultOutputDir, OutputDir(s, ""))
	assert.Equal(t, "elsewhere", OutputDir(s, "elsewhere"))
	require.Len(t, s.Cases, 1)
	assert.Equal(t, "case-1", s.Cases[0].CaseID)
	assert.Equal(t, 500.0, s.Cases[0].Assertions[0].Expected)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
	}{
		{"missing cases", `suite_name: x`, "yaml"},
		{"cases not a list", `{"cases": {}}`, "json"},
		{"assertion without type", "cases:\n  - assertions:\n      - expected: 1\n", "yaml"},
		{"header not a string", "cases:\n  - request:\n      headers:\n        X-Id: 5\n", "yaml"},
		{"bad concurrency", `{"concurrency": 0, "cases": []}`, "json"},
		{"broken yaml", "cases: [", "yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			assert.Error(t, err)
		})
	}
}

func TestParseUnknownFormat(t *testing.T) {
	_, err := Parse([]byte("x"), "toml")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestUnknownAssertionTypeLoads(t *testing.T) {
	s, err := Parse([]byte("cases:\n  - assertions:\n      - type: db_row\n"), "yaml")
	require.NoError(t, err)
	assert.Equal(t, models.AssertionKind("db_row"), s.Cases[0].Assertions[0].Type)
}
