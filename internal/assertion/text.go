package assertion

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/segmentio/encoding/json"

	"github.com/moamenhredeen/reqcheck/internal/coerce"
	"github.com/moamenhredeen/reqcheck/internal/models"
)

// MaxRegexPatternLength caps matches_regex patterns
const MaxRegexPatternLength = 10000

func evalResponseBody(resp models.ResponseResult, spec models.AssertionSpec) models.AssertionVerdict {
	body := bodyText(resp)
	shown := truncate(body, maxActualLen)
	expected := coerce.Text(spec.Expected)
	op := operatorOr(spec.Operator, "contains")

	var pass bool
	switch op {
	case "contains":
		pass = strings.Contains(body, expected)
	case "not_contains":
		pass = !strings.Contains(body, expected)
	case "starts_with":
		pass = strings.HasPrefix(body, expected)
	case "ends_with":
		pass = strings.HasSuffix(body, expected)
	case "matches_regex":
		if len(expected) > MaxRegexPatternLength {
			return fail(spec, spec.Expected, shown,
				fmt.Sprintf("regex error: pattern exceeds %d characters", MaxRegexPatternLength))
		}
		re, err := regexp.Compile(expected)
		if err != nil {
			return fail(spec, spec.Expected, shown, fmt.Sprintf("regex error: %v", err))
		}
		pass = re.MatchString(body)
	default:
		return fail(spec, spec.Expected, shown, fmt.Sprintf("unsupported operator: %s", op))
	}

	return verdict(spec, pass, spec.Expected, shown,
		fmt.Sprintf("response_body: expected %s %q, got %q", op, expected, truncate(body, 100)))
}

// bodyText prefers the raw text and falls back to re-encoding the parsed JSON
func bodyText(resp models.ResponseResult) string {
	if resp.ResponseText != nil && *resp.ResponseText != "" {
		return *resp.ResponseText
	}
	if resp.ResponseJSON != nil {
		if b, err := json.Marshal(resp.ResponseJSON); err == nil {
			return string(b)
		}
	}
	return ""
}

func evalHeader(resp models.ResponseResult, spec models.AssertionSpec) models.AssertionVerdict {
	name := spec.Header
	if name == "" {
		name = spec.Target
	}
	if name == "" {
		return fail(spec, spec.Expected, nil, "header name required")
	}

	// a missing header reads as "" for the text operators
	value, found := lookupHeader(resp.Headers, name)
	var shown any
	if found {
		shown = value
	}
	expected := coerce.Text(spec.Expected)
	op := operatorOr(spec.Operator, "==")

	var pass bool
	switch op {
	case "exists":
		return verdict(spec, found, spec.Expected, shown, fmt.Sprintf("header %s not found", name))
	case "not_exists":
		return verdict(spec, !found, spec.Expected, shown, fmt.Sprintf("header %s exists", name))
	case "contains":
		pass = strings.Contains(strings.ToLower(value), strings.ToLower(expected))
	case "not_contains":
		pass = !strings.Contains(strings.ToLower(value), strings.ToLower(expected))
	case "==", "equals":
		pass = value == expected
	case "!=":
		pass = value != expected
	default:
		return fail(spec, spec.Expected, shown, fmt.Sprintf("unsupported operator: %s", op))
	}

	return verdict(spec, pass, spec.Expected, shown,
		fmt.Sprintf("header %s: expected %s %q, got %q", name, op, expected, value))
}

// lookupHeader tries an exact match first, then a case-insensitive one
// in sorted key order so duplicate spellings resolve the same way every time.
func lookupHeader(headers map[string]string, name string) (string, bool) {
	if v, ok := headers[name]; ok {
		return v, true
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(k, name) {
			return headers[k], true
		}
	}
	return "", false
}
