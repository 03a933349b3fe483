// Package jsonpath resolves a small JSONPath dialect against decoded JSON.
//
// Supported: the root "$", ".name", "['name']" / ["name"], "[n]" with
// negative n counting from the end, and "[*]" / ".*" wildcards. A path
// without a leading "$" is taken relative to the root.
package jsonpath

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type segmentKind int

const (
	segmentField segmentKind = iota
	segmentIndex
	segmentWildcard
)

// segment is one step of a parsed path
type segment struct {
	kind  segmentKind
	name  string
	index int
}

// Resolve returns every value matched by path in doc. An empty result
// means no match; an error means the path itself is malformed.
func Resolve(doc any, path string) ([]any, error) {
	segments, err := parse(path)
	if err != nil {
		return nil, err
	}

	current := []any{doc}
	for _, seg := range segments {
		var next []any
		for _, node := range current {
			next = append(next, seg.apply(node)...)
		}
		if len(next) == 0 {
			return []any{}, nil
		}
		current = next
	}
	return current, nil
}

func (s segment) apply(node any) []any {
	switch s.kind {
	case segmentField:
		obj, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		if v, ok := obj[s.name]; ok {
			return []any{v}
		}
		return nil

	case segmentIndex:
		arr, ok := node.([]any)
		if !ok {
			return nil
		}
		i := s.index
		if i < 0 {
			i += len(arr)
		}
		if i < 0 || i >= len(arr) {
			return nil
		}
		return []any{arr[i]}

	default:
		switch v := node.(type) {
		case []any:
			return append([]any(nil), v...)
		case map[string]any:
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			out := make([]any, 0, len(keys))
			for _, k := range keys {
				out = append(out, v[k])
			}
			return out
		}
		return nil
	}
}

// parse splits path into segments
func parse(path string) ([]segment, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, fmt.Errorf("empty path")
	}
	switch {
	case p[0] == '$':
		p = p[1:]
	case p[0] != '.' && p[0] != '[':
		p = "." + p
	}

	var segments []segment
	for i := 0; i < len(p); {
		switch p[i] {
		case '.':
			i++
			if i < len(p) && p[i] == '.' {
				return nil, fmt.Errorf("recursive descent is not supported: %s", path)
			}
			start := i
			for i < len(p) && p[i] != '.' && p[i] != '[' {
				i++
			}
			name := p[start:i]
			if name == "" {
				return nil, fmt.Errorf("empty field name at offset %d in %s", start, path)
			}
			if name == "*" {
				segments = append(segments, segment{kind: segmentWildcard})
			} else {
				segments = append(segments, segment{kind: segmentField, name: name})
			}

		case '[':
			seg, next, err := parseBracket(p, i+1)
			if err != nil {
				return nil, fmt.Errorf("%w in %s", err, path)
			}
			segments = append(segments, seg)
			i = next

		default:
			return nil, fmt.Errorf("unexpected %q at offset %d in %s", p[i], i, path)
		}
	}
	return segments, nil
}

// parseBracket parses the inside of [...] starting after the '['
// and returns the index just past the closing ']'.
func parseBracket(p string, i int) (segment, int, error) {
	if i < len(p) && (p[i] == '\'' || p[i] == '"') {
		quote := p[i]
		i++
		start := i
		for i < len(p) && p[i] != quote {
			i++
		}
		if i >= len(p) {
			return segment{}, 0, fmt.Errorf("unterminated quote")
		}
		name := p[start:i]
		i++
		if i >= len(p) || p[i] != ']' {
			return segment{}, 0, fmt.Errorf("expected ] after quoted name")
		}
		return segment{kind: segmentField, name: name}, i + 1, nil
	}

	end := strings.IndexByte(p[i:], ']')
	if end < 0 {
		return segment{}, 0, fmt.Errorf("unclosed bracket")
	}
	token := strings.TrimSpace(p[i : i+end])
	next := i + end + 1
	if token == "*" {
		return segment{kind: segmentWildcard}, next, nil
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return segment{}, 0, fmt.Errorf("unsupported index %q", token)
	}
	return segment{kind: segmentIndex, index: n}, next, nil
}
