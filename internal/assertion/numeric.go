package assertion

import (
	"fmt"

	"github.com/moamenhredeen/reqcheck/internal/coerce"
	"github.com/moamenhredeen/reqcheck/internal/models"
)

var numericOperators = map[string]func(actual, expected float64) bool{
	"==": func(a, e float64) bool { return a == e },
	"!=": func(a, e float64) bool { return a != e },
	">":  func(a, e float64) bool { return a > e },
	">=": func(a, e float64) bool { return a >= e },
	"<":  func(a, e float64) bool { return a < e },
	"<=": func(a, e float64) bool { return a <= e },
}

func evalStatusCode(resp models.ResponseResult, spec models.AssertionSpec) models.AssertionVerdict {
	if resp.StatusCode == nil {
		return fail(spec, spec.Expected, nil, "status_code missing")
	}
	code := *resp.StatusCode
	return compareNumeric(spec, "status_code", float64(code), code)
}

func evalResponseTime(resp models.ResponseResult, spec models.AssertionSpec) models.AssertionVerdict {
	if resp.ElapsedMS == nil {
		return fail(spec, spec.Expected, nil, "elapsed_ms missing")
	}
	ms := *resp.ElapsedMS
	return compareNumeric(spec, "elapsed_ms", float64(ms), ms)
}

// compareNumeric handles the shared operator set of status_code and response_time
func compareNumeric(spec models.AssertionSpec, label string, actual float64, shown any) models.AssertionVerdict {
	op := operatorOr(spec.Operator, "==")

	if op == "between" {
		lo, hi, err := coerce.Range(spec.Expected)
		if err != nil {
			return fail(spec, spec.Expected, shown, err.Error())
		}
		pass := actual >= lo && actual <= hi
		return verdict(spec, pass, spec.Expected, shown,
			fmt.Sprintf("%s: expected between %s and %s, got %s",
				label, coerce.FormatFloat(lo), coerce.FormatFloat(hi), coerce.String(shown)))
	}

	cmp, ok := numericOperators[op]
	if !ok {
		return fail(spec, spec.Expected, shown, fmt.Sprintf("unsupported operator: %s", op))
	}
	expected, ok := coerce.Number(spec.Expected)
	if !ok {
		return fail(spec, spec.Expected, shown,
			fmt.Sprintf("expected number required: %s", coerce.String(spec.Expected)))
	}

	pass := cmp(actual, expected)
	return verdict(spec, pass, spec.Expected, shown,
		fmt.Sprintf("%s: expected %s %s, got %s",
			label, op, coerce.String(spec.Expected), coerce.String(shown)))
}
