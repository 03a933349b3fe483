// Package suite loads suite files (YAML or JSON) into runnable cases.
package suite

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/segmentio/encoding/json"
	"gopkg.in/yaml.v3"

	"github.com/moamenhredeen/reqcheck/internal/models"
)

// DefaultOutputDir is where results go when neither the suite nor the caller says otherwise
const DefaultOutputDir = "results"

// ErrUnsupportedFormat is returned for suite files that are neither YAML nor JSON
var ErrUnsupportedFormat = errors.New("unsupported suite format")

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "suite.schema.json"

// Load reads and validates the suite file at path
func Load(path string) (*models.Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite: %w", err)
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	s, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a suite in the given format ("yaml", "yml" or "json"),
// validates it against the suite schema and fills in defaults.
func Parse(data []byte, format string) (*models.Suite, error) {
	var generic any
	var s models.Suite

	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		if err := validate(generic); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to decode suite: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		if err := validate(generic); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to decode suite: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	Normalize(&s)
	return &s, nil
}

// Normalize fills in the suite name and missing case ids
func Normalize(s *models.Suite) {
	if strings.TrimSpace(s.SuiteName) == "" {
		s.SuiteName = models.DefaultSuiteName
	}
	for i := range s.Cases {
		if s.Cases[i].CaseID == "" {
			s.Cases[i].CaseID = fmt.Sprintf("case-%d", i+1)
		}
		if s.Cases[i].Name == "" {
			s.Cases[i].Name = s.Cases[i].CaseID
		}
	}
}

// OutputDir resolves where results should be written
func OutputDir(s *models.Suite, override string) string {
	switch {
	case override != "":
		return override
	case s.OutputDir != "":
		return s.OutputDir
	default:
		return DefaultOutputDir
	}
}

func validate(doc any) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}

	// round-trip through JSON so the validator sees its own number types
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("suite is not representable as JSON: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to prepare suite for validation: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("invalid suite: %w", err)
	}
	return nil
}

func compiledSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to load suite schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to load suite schema: %w", err)
	}
	sch, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile suite schema: %w", err)
	}
	return sch, nil
}
