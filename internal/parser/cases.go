package parser

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"

	"github.com/moamenhredeen/reqcheck/internal/generator"
	"github.com/moamenhredeen/reqcheck/internal/models"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// CaseBuilder turns document operations into runnable cases
type CaseBuilder struct {
	parser    *Parser
	generator *generator.Generator
}

// NewCaseBuilder creates a case builder over p
func NewCaseBuilder(p *Parser) *CaseBuilder {
	return &CaseBuilder{
		parser:    p,
		generator: generator.NewGenerator(),
	}
}

// BuildSuite builds a suite with one case per operation, targeting serverURL
func (b *CaseBuilder) BuildSuite(name, serverURL string, operations []Operation) (*models.Suite, error) {
	s := &models.Suite{SuiteName: name, Cases: make([]models.CaseSpec, 0, len(operations))}
	for _, op := range operations {
		c, err := b.BuildCase(op, serverURL)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", op.Method, op.Path, err)
		}
		s.Cases = append(s.Cases, c)
	}
	return s, nil
}

// BuildCase builds the request and default assertions for one operation
func (b *CaseBuilder) BuildCase(op Operation, serverURL string) (models.CaseSpec, error) {
	details, err := b.parser.OperationDetails(op.Path, op.Method)
	if err != nil {
		return models.CaseSpec{}, err
	}

	// Build URL with path parameters
	fullPath := details.Path
	query := url.Values{}
	headers := map[string]string{}
	for _, param := range details.Parameters {
		val, err := b.generator.ParameterValue(param)
		if err != nil {
			return models.CaseSpec{}, fmt.Errorf("failed to generate parameter %s: %w", param.Name, err)
		}
		switch param.In {
		case "path":
			fullPath = strings.ReplaceAll(fullPath, "{"+param.Name+"}", url.PathEscape(val))
		case "query":
			if param.Required != nil && *param.Required {
				query.Add(param.Name, val)
			}
		case "header":
			headers[param.Name] = val
		}
	}

	fullURL := strings.TrimRight(serverURL, "/") + fullPath
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req := models.RequestDescriptor{Method: op.Method, URL: fullURL}

	// Handle request body for POST, PUT, PATCH
	if details.RequestBody != nil && (op.Method == "POST" || op.Method == "PUT" || op.Method == "PATCH") {
		body, contentType, err := b.generator.RequestBody(details.RequestBody)
		if err != nil {
			return models.CaseSpec{}, fmt.Errorf("failed to generate request body: %w", err)
		}
		req.Body = body
		if contentType != "" && contentType != "application/json" {
			headers["Content-Type"] = contentType
		}
	}
	if len(headers) > 0 {
		req.Headers = headers
	}

	name := op.Summary
	if name == "" {
		name = op.Method + " " + op.Path
	}

	return models.CaseSpec{
		CaseID:     caseID(op),
		Name:       name,
		Request:    req,
		Assertions: defaultAssertions(details.Responses),
	}, nil
}

func caseID(op Operation) string {
	if op.OperationID != "" {
		return op.OperationID
	}
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(op.Path), "-"), "-")
	if slug == "" {
		slug = "root"
	}
	return strings.ToLower(op.Method) + "-" + slug
}

// defaultAssertions derives checks from the documented responses: the
// first documented 2xx status (or any 2xx), plus the presence of
// required top-level fields of its JSON body.
func defaultAssertions(responses *v3.Responses) []models.AssertionSpec {
	status := models.AssertionSpec{Type: models.KindStatusCode, Operator: "between", Expected: "200~299"}
	if responses == nil || responses.Codes == nil {
		return []models.AssertionSpec{status}
	}

	var success *v3.Response
	for pair := responses.Codes.First(); pair != nil; pair = pair.Next() {
		code, err := strconv.Atoi(pair.Key())
		if err != nil || code < 200 || code > 299 {
			continue
		}
		status = models.AssertionSpec{Type: models.KindStatusCode, Operator: "==", Expected: code}
		success = pair.Value()
		break
	}

	assertions := []models.AssertionSpec{status}
	if success == nil || success.Content == nil {
		return assertions
	}

	for pair := success.Content.First(); pair != nil; pair = pair.Next() {
		if !strings.Contains(pair.Key(), "json") {
			continue
		}
		assertions = append(assertions, models.AssertionSpec{
			Type:     models.KindHeader,
			Header:   "Content-Type",
			Operator: "contains",
			Expected: "json",
		})
		media := pair.Value()
		if media == nil || media.Schema == nil {
			break
		}
		schema := media.Schema.Schema()
		if schema == nil {
			break
		}
		for _, field := range schema.Required {
			assertions = append(assertions, models.AssertionSpec{
				Type:     models.KindJSONPath,
				Path:     "$." + field,
				Operator: "exists",
			})
		}
		break
	}
	return assertions
}

// FilterOperations keeps operations whose path or operation id contains
// filterStr and that carry at least one of tagFilters.
func FilterOperations(operations []Operation, filterStr string, tagFilters []string) []Operation {
	var filtered []Operation

	for _, op := range operations {
		// Filter by path pattern or operation ID
		if filterStr != "" {
			if !strings.Contains(op.Path, filterStr) && !strings.Contains(op.OperationID, filterStr) {
				continue
			}
		}

		// Filter by tags
		if len(tagFilters) > 0 && !hasAnyTag(op.Tags, tagFilters) {
			continue
		}

		filtered = append(filtered, op)
	}

	return filtered
}

func hasAnyTag(tags, wanted []string) bool {
	for _, w := range wanted {
		for _, t := range tags {
			if t == w {
				return true
			}
		}
	}
	return false
}
