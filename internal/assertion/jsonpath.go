package assertion

import (
	"fmt"
	"strings"

	"github.com/moamenhredeen/reqcheck/internal/coerce"
	"github.com/moamenhredeen/reqcheck/internal/jsonpath"
	"github.com/moamenhredeen/reqcheck/internal/models"
)

func evalJSONPath(resp models.ResponseResult, spec models.AssertionSpec) models.AssertionVerdict {
	path := spec.Path
	if path == "" {
		path = spec.Target
	}
	op := operatorOr(spec.Operator, "equals")

	if resp.ResponseJSON == nil {
		return fail(spec, spec.Expected, nil, "response_json missing")
	}
	matches, err := jsonpath.Resolve(resp.ResponseJSON, path)
	if err != nil {
		return fail(spec, spec.Expected, nil, fmt.Sprintf("json_path error: %v", err))
	}

	var actual any
	switch len(matches) {
	case 0:
	case 1:
		actual = matches[0]
	default:
		actual = matches
	}

	switch op {
	case "exists":
		return verdict(spec, len(matches) > 0, spec.Expected, actual, fmt.Sprintf("%s not found", path))
	case "not_exists":
		return verdict(spec, len(matches) == 0, spec.Expected, actual, fmt.Sprintf("%s exists", path))
	}
	if len(matches) == 0 {
		return fail(spec, spec.Expected, nil, fmt.Sprintf("%s not found", path))
	}

	switch op {
	case "==", "equals":
		expected := coerce.ParseJSONish(spec.Expected)
		return verdict(spec, coerce.Equal(actual, expected), spec.Expected, actual,
			fmt.Sprintf("%s: expected %s, got %s", path, coerce.String(expected), coerce.String(actual)))

	case "!=":
		if _, numeric := coerce.Number(spec.Expected); numeric {
			return compareJSONNumber(spec, path, op, actual)
		}
		expected := coerce.ParseJSONish(spec.Expected)
		return verdict(spec, !coerce.Equal(actual, expected), spec.Expected, actual,
			fmt.Sprintf("%s: expected != %s, got %s", path, coerce.String(expected), coerce.String(actual)))

	case ">", ">=", "<", "<=":
		return compareJSONNumber(spec, path, op, actual)

	case "not_null":
		pass := false
		for _, m := range matches {
			if !isEmpty(m) {
				pass = true
				break
			}
		}
		expected := spec.Expected
		if expected == nil {
			expected = "not_null"
		}
		return verdict(spec, pass, expected, actual, fmt.Sprintf("%s is null or empty", path))

	case "contains", "not_contains":
		text := coerce.String(actual)
		want := coerce.Text(spec.Expected)
		pass := strings.Contains(text, want)
		if op == "not_contains" {
			pass = !pass
		}
		return verdict(spec, pass, spec.Expected, actual,
			fmt.Sprintf("%s: expected %s %q, got %s", path, op, want, text))

	default:
		return fail(spec, spec.Expected, actual, fmt.Sprintf("unsupported operator: %s", op))
	}
}

func compareJSONNumber(spec models.AssertionSpec, path, op string, actual any) models.AssertionVerdict {
	expected, ok := coerce.Number(spec.Expected)
	if !ok {
		return fail(spec, spec.Expected, actual,
			fmt.Sprintf("expected number required: %s", coerce.String(spec.Expected)))
	}
	got, ok := coerce.Number(actual)
	if !ok {
		return fail(spec, spec.Expected, actual,
			fmt.Sprintf("actual number required: %s", coerce.String(actual)))
	}
	pass := numericOperators[op](got, expected)
	return verdict(spec, pass, spec.Expected, actual,
		fmt.Sprintf("%s: expected %s %s, got %s", path, op, coerce.FormatFloat(expected), coerce.String(actual)))
}

// isEmpty treats null, "" and [] as empty
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	}
	return false
}
