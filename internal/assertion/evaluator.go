// Package assertion checks declarative assertions against a normalized response.
package assertion

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/moamenhredeen/reqcheck/internal/coerce"
	"github.com/moamenhredeen/reqcheck/internal/models"
)

// maxActualLen bounds how much of a response body is echoed back as the actual value
const maxActualLen = 1000

// Evaluate checks one assertion against resp. It never panics: anything
// unexpected becomes a FAIL verdict with an "exception:" message.
func Evaluate(resp models.ResponseResult, spec models.AssertionSpec) (v models.AssertionVerdict) {
	defer func() {
		if r := recover(); r != nil {
			v = fail(spec, spec.Expected, nil, fmt.Sprintf("exception: %v", r))
		}
	}()

	switch spec.Type {
	case models.KindStatusCode:
		return evalStatusCode(resp, spec)
	case models.KindResponseTime:
		return evalResponseTime(resp, spec)
	case models.KindResponseBody:
		return evalResponseBody(resp, spec)
	case models.KindHeader:
		return evalHeader(resp, spec)
	case models.KindJSONPath:
		return evalJSONPath(resp, spec)
	default:
		return fail(spec, spec.Expected, nil, "unsupported assertion type")
	}
}

// AllPassed reports whether every verdict passed. An empty list passes.
func AllPassed(verdicts []models.AssertionVerdict) bool {
	for _, v := range verdicts {
		if !v.Passed() {
			return false
		}
	}
	return true
}

func verdict(spec models.AssertionSpec, pass bool, expected, actual any, message string) models.AssertionVerdict {
	v := models.AssertionVerdict{
		Type:     spec.Type,
		Operator: spec.Operator,
		Path:     spec.Path,
		Header:   spec.Header,
		Target:   spec.Target,
		Result:   models.Fail,
		Expected: coerce.SanitizeValue(expected),
		Actual:   coerce.SanitizeValue(actual),
	}
	if pass {
		v.Result = models.Pass
	} else {
		v.Message = coerce.SanitizeMessage(message)
	}
	return v
}

func fail(spec models.AssertionSpec, expected, actual any, message string) models.AssertionVerdict {
	return verdict(spec, false, expected, actual, message)
}

// operatorOr normalizes op, falling back to def when it is empty
func operatorOr(op, def string) string {
	op = strings.ToLower(strings.TrimSpace(op))
	if op == "" {
		return def
	}
	return op
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
