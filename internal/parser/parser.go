// Package parser reads OpenAPI documents and turns their operations into cases.
package parser

import (
	"fmt"
	"os"

	"github.com/pb33f/libopenapi"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
)

// methodOrder fixes the order operations are listed in for each path
var methodOrder = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}

// Operation represents one method on one path of the document
type Operation struct {
	Path        string
	Method      string
	OperationID string
	Summary     string
	Tags        []string
}

// OperationDetails carries the parts of an operation needed to build a request
type OperationDetails struct {
	Operation   *v3.Operation
	Path        string
	Method      string
	Parameters  []*v3.Parameter
	RequestBody *v3.RequestBody
	Responses   *v3.Responses
}

// Parser handles parsing OpenAPI documents
type Parser struct {
	model *v3.Document
}

// ParseFile parses an OpenAPI document file and returns a Parser instance
func ParseFile(filePath string) (*Parser, error) {
	specBytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI file: %w", err)
	}
	return Parse(specBytes)
}

// Parse parses an OpenAPI v3 document held in memory
func Parse(specBytes []byte) (*Parser, error) {
	document, err := libopenapi.NewDocument(specBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}

	model, err := document.BuildV3Model()
	if err != nil {
		return nil, fmt.Errorf("failed to build v3 model: %w", err)
	}
	if model == nil {
		return nil, fmt.Errorf("failed to build v3 model: document is not OpenAPI 3")
	}

	return &Parser{model: &model.Model}, nil
}

// Title returns info.title, or "" when the document has none
func (p *Parser) Title() string {
	if p.model.Info == nil {
		return ""
	}
	return p.model.Info.Title
}

// ServerURLs returns the server URLs from the document
func (p *Parser) ServerURLs() []string {
	servers := p.model.Servers
	if len(servers) == 0 {
		return []string{"http://localhost"}
	}

	urls := make([]string, 0, len(servers))
	for _, server := range servers {
		if server != nil && server.URL != "" {
			urls = append(urls, server.URL)
		}
	}
	return urls
}

// Operations lists every operation in document order
func (p *Parser) Operations() []Operation {
	var operations []Operation
	paths := p.model.Paths
	if paths == nil || paths.PathItems == nil {
		return operations
	}

	for pair := paths.PathItems.First(); pair != nil; pair = pair.Next() {
		path := pair.Key()
		item := pair.Value()
		if item == nil {
			continue
		}

		for _, method := range methodOrder {
			op := operationFor(item, method)
			if op == nil {
				continue
			}
			tags := []string{}
			if op.Tags != nil {
				tags = append(tags, op.Tags...)
			}
			operations = append(operations, Operation{
				Path:        path,
				Method:      method,
				OperationID: op.OperationId,
				Summary:     op.Summary,
				Tags:        tags,
			})
		}
	}

	return operations
}

// OperationDetails extracts detailed information for a specific operation
func (p *Parser) OperationDetails(path, method string) (*OperationDetails, error) {
	paths := p.model.Paths
	if paths == nil || paths.PathItems == nil {
		return nil, fmt.Errorf("path not found: %s", path)
	}

	item, ok := paths.PathItems.Get(path)
	if !ok || item == nil {
		return nil, fmt.Errorf("path not found: %s", path)
	}

	operation := operationFor(item, method)
	if operation == nil {
		return nil, fmt.Errorf("operation not found: %s %s", method, path)
	}

	// path-level parameters apply unless the operation overrides them
	var parameters []*v3.Parameter
	seen := map[string]bool{}
	for _, param := range operation.Parameters {
		if param != nil {
			seen[param.In+":"+param.Name] = true
			parameters = append(parameters, param)
		}
	}
	for _, param := range item.Parameters {
		if param != nil && !seen[param.In+":"+param.Name] {
			parameters = append(parameters, param)
		}
	}

	return &OperationDetails{
		Operation:   operation,
		Path:        path,
		Method:      method,
		Parameters:  parameters,
		RequestBody: operation.RequestBody,
		Responses:   operation.Responses,
	}, nil
}

func operationFor(item *v3.PathItem, method string) *v3.Operation {
	switch method {
	case "GET":
		return item.Get
	case "POST":
		return item.Post
	case "PUT":
		return item.Put
	case "PATCH":
		return item.Patch
	case "DELETE":
		return item.Delete
	case "HEAD":
		return item.Head
	case "OPTIONS":
		return item.Options
	}
	return nil
}
