package tester

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/segmentio/encoding/json"

	"github.com/moamenhredeen/reqcheck/internal/coerce"
	"github.com/moamenhredeen/reqcheck/internal/models"
)

// UserAgent is sent unless the request sets its own
const UserAgent = "reqcheck/1.0"

var supportedMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// RequestBuilder turns request descriptors into HTTP requests
type RequestBuilder struct{}

// NewRequestBuilder creates a new request builder
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{}
}

// BuildRequest builds an HTTP request from a validated descriptor.
// For GET an object body becomes query parameters; every other method
// sends the body as JSON.
func (rb *RequestBuilder) BuildRequest(ctx context.Context, desc models.RequestDescriptor) (*http.Request, error) {
	target, err := url.Parse(desc.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url: %w", err)
	}

	var body io.Reader
	hasBody := false
	if desc.Body != nil {
		if desc.Method == http.MethodGet {
			if err := addQuery(target, desc.Body); err != nil {
				return nil, err
			}
		} else {
			payload, err := encodeBody(desc.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to encode body: %w", err)
			}
			body = bytes.NewReader(payload)
			hasBody = true
		}
	}

	req, err := http.NewRequestWithContext(ctx, desc.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set default headers
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	for name, value := range desc.Headers {
		req.Header.Set(name, value)
	}
	if hasBody && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// addQuery merges a GET body into the URL query string
func addQuery(target *url.URL, body any) error {
	query := target.Query()
	switch b := body.(type) {
	case map[string]any:
		keys := make([]string, 0, len(b))
		for k := range b {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if list, ok := b[k].([]any); ok {
				for _, item := range list {
					query.Add(k, coerce.Text(item))
				}
				continue
			}
			query.Add(k, coerce.Text(b[k]))
		}
	case string:
		extra, err := url.ParseQuery(strings.TrimPrefix(b, "?"))
		if err != nil {
			return fmt.Errorf("failed to parse query body: %w", err)
		}
		for k, vs := range extra {
			for _, v := range vs {
				query.Add(k, v)
			}
		}
	default:
		return fmt.Errorf("unsupported GET body of type %T", body)
	}
	target.RawQuery = query.Encode()
	return nil
}

// encodeBody serializes body as JSON. A string that already holds
// JSON is sent verbatim.
func encodeBody(body any) ([]byte, error) {
	if s, ok := body.(string); ok && json.Valid([]byte(s)) {
		return []byte(s), nil
	}
	return json.Marshal(body)
}
