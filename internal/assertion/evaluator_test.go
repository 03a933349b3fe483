package assertion

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/moamenhredeen/reqcheck/internal/models"
)

func response(status int, elapsed int64, text string, body any, headers map[string]string) models.ResponseResult {
	return models.ResponseResult{
		Success:      true,
		StatusCode:   &status,
		Headers:      headers,
		ResponseText: &text,
		ResponseJSON: body,
		ElapsedMS:    &elapsed,
	}
}

var sample = response(200, 42, `{"data":{"id":1001,"name":"demo"}}`,
	map[string]any{
		"data": map[string]any{"id": 1001.0, "name": "demo"},
		"items": []any{
			map[string]any{"note": nil},
			map[string]any{"note": ""},
			map[string]any{"note": "kept"},
		},
		"empty": []any{},
		"count": "17",
		"label": "abc",
	},
	map[string]string{"Content-Type": "application/json; charset=utf-8", "X-Request-Id": "r-1"},
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		spec    models.AssertionSpec
		pass    bool
		message string
	}{
		{"status equals default op", models.AssertionSpec{Type: models.KindStatusCode, Expected: 200}, true, ""},
		{"status string expected", models.AssertionSpec{Type: models.KindStatusCode, Operator: "==", Expected: " 200 "}, true, ""},
		{"status mismatch", models.AssertionSpec{Type: models.KindStatusCode, Operator: "==", Expected: 201}, false, "status_code: expected == 201, got 200"},
		{"status less than", models.AssertionSpec{Type: models.KindStatusCode, Operator: "<", Expected: 300}, true, ""},
		{"status between", models.AssertionSpec{Type: models.KindStatusCode, Operator: "between", Expected: "200~299"}, true, ""},
		{"status between reversed", models.AssertionSpec{Type: models.KindStatusCode, Operator: "between", Expected: "299-200"}, true, ""},
		{"status between outside", models.AssertionSpec{Type: models.KindStatusCode, Operator: "between", Expected: "300~399"}, false, "status_code: expected between 300 and 399, got 200"},
		{"status between bad range", models.AssertionSpec{Type: models.KindStatusCode, Operator: "between", Expected: "2xx"}, false, "invalid range: 2xx"},
		{"status non numeric", models.AssertionSpec{Type: models.KindStatusCode, Operator: ">", Expected: "abc"}, false, "expected number required: abc"},
		{"status exponent is not a number", models.AssertionSpec{Type: models.KindStatusCode, Operator: "<", Expected: "1e3"}, false, "expected number required: 1e3"},
		{"status bad operator", models.AssertionSpec{Type: models.KindStatusCode, Operator: "~=", Expected: 200}, false, "unsupported operator: ~="},

		{"response time under", models.AssertionSpec{Type: models.KindResponseTime, Operator: "<=", Expected: 500}, true, ""},
		{"response time over", models.AssertionSpec{Type: models.KindResponseTime, Operator: "<", Expected: 10}, false, "elapsed_ms: expected < 10, got 42"},

		{"body contains", models.AssertionSpec{Type: models.KindResponseBody, Expected: "demo"}, true, ""},
		{"body not contains", models.AssertionSpec{Type: models.KindResponseBody, Operator: "not_contains", Expected: "error"}, true, ""},
		{"body starts with", models.AssertionSpec{Type: models.KindResponseBody, Operator: "starts_with", Expected: `{"data"`}, true, ""},
		{"body ends with", models.AssertionSpec{Type: models.KindResponseBody, Operator: "ends_with", Expected: "}}"}, true, ""},
		{"body regex", models.AssertionSpec{Type: models.KindResponseBody, Operator: "matches_regex", Expected: `"id":\d+`}, true, ""},
		{"body bad regex", models.AssertionSpec{Type: models.KindResponseBody, Operator: "matches_regex", Expected: `([`}, false, "regex error:"},
		{"body bad operator", models.AssertionSpec{Type: models.KindResponseBody, Operator: "equals", Expected: "x"}, false, "unsupported operator: equals"},

		{"header contains case insensitive", models.AssertionSpec{Type: models.KindHeader, Header: "content-type", Operator: "contains", Expected: "JSON"}, true, ""},
		{"header default op is equals", models.AssertionSpec{Type: models.KindHeader, Header: "X-Request-Id", Expected: "r-1"}, true, ""},
		{"header default op is not substring", models.AssertionSpec{Type: models.KindHeader, Header: "Content-Type", Expected: "json"}, false, `header Content-Type: expected == "json", got "application/json; charset=utf-8"`},
		{"header equals via target", models.AssertionSpec{Type: models.KindHeader, Target: "X-Request-Id", Operator: "==", Expected: "r-1"}, true, ""},
		{"header not equal", models.AssertionSpec{Type: models.KindHeader, Header: "X-Request-Id", Operator: "!=", Expected: "r-2"}, true, ""},
		{"header exists", models.AssertionSpec{Type: models.KindHeader, Header: "x-request-id", Operator: "exists"}, true, ""},
		{"header not exists", models.AssertionSpec{Type: models.KindHeader, Header: "X-Missing", Operator: "not_exists"}, true, ""},
		{"header missing exists", models.AssertionSpec{Type: models.KindHeader, Header: "X-Missing", Operator: "exists"}, false, "header X-Missing not found"},
		{"header missing reads empty", models.AssertionSpec{Type: models.KindHeader, Header: "X-Missing", Operator: "==", Expected: ""}, true, ""},
		{"header missing name", models.AssertionSpec{Type: models.KindHeader, Operator: "exists"}, false, "header name required"},

		{"json equals", models.AssertionSpec{Type: models.KindJSONPath, Path: "$.data.id", Operator: "equals", Expected: 1001}, true, ""},
		{"json equals json string", models.AssertionSpec{Type: models.KindJSONPath, Path: "$.data.id", Operator: "==", Expected: "1001"}, true, ""},
		{"json equals default op", models.AssertionSpec{Type: models.KindJSONPath, Path: "$.data.name", Expected: "demo"}, true, ""},
		{"json equals mismatch", models.AssertionSpec{Type: models.KindJSONPath, Path: "$.data.name", Expected: "other"}, false, "$.data.name: expected other, got demo"},
		{"json path via target", models.AssertionSpec{Type: models.KindJSONPath, Target: "data.id", Operator: ">", Expected: 1000}, true, ""},
		{"json greater string actual", models.AssertionSpec{Type: models.KindJSONPath, Path: "$.count", Operator: ">=", Expected: 17}, true, ""},
		{"json not equal numeric", models.AssertionSpec{Type: models.KindJSONPath, Path: "$.data.id", Operator: "!=", Expected: "1002"}, true, ""},
		{"json not equal text", models.AssertionSpec{Type: models.KindJSONPath, Path: "$.data.name", Operator: "!=", Expected: "demo"}, false, "$.data.name: expected != demo, got demo"},
		{"json expected not numeric", models.AssertionSpec{Type: models.KindJSONPath, Path: "$.data.id", Operator: ">", Expected: "abc"}, false, "expected number required: abc"},
		{"json actual not numeric", models.AssertionSpec{Type: models.KindJSONPath, Path: "$.label", Operator: "<", Expected: 5}, false, "actual number required: abc"},
		{"json exists", models.AssertionSpec{Type: models.KindJSONPath, Path: "$.data", Operator: "exists"}, true, ""},
		{"json exists missing", models.AssertionSpec{Type: models.KindJSONPath, Path: "$.nope", Operator: "exists"}, false, "$.nope not found"},
		{"json not exists", models.AssertionSpec{Type: models.KindJSONPath, Path: "$.nope", Operator: "not_exists"}, true, ""},
		{"json not exists present", models.AssertionSpec{Type: models.KindJSONPath, Path: "$.data.id", Operator: "not_exists"}, false, "$.data.id exists"},
		{"json not found", models.AssertionSpec{Type: models.KindJSONPath, Path: "$.nope", Operator: "equals", Expected: 1}, false, "$.nope not found"},
		{"json not null any match", models.AssertionSpec{Type: models.KindJSONPath, Path: "$.items[*].note", Operator: "not_null"}, true, ""},
		{"json not null empty list", models.AssertionSpec{Type: models.KindJSONPath, Path: "$.empty", Operator: "not_null"}, false, "$.empty is null or empty"},
		{"json contains", models.AssertionSpec{Type: models.KindJSONPath, Path: "$.data.name", Operator: "contains", Expected: "em"}, true, ""},
		{"json not contains", models.AssertionSpec{Type: models.KindJSONPath, Path: "$.data", Operator: "not_contains", Expected: "secret"}, true, ""},
		{"json malformed path", models.AssertionSpec{Type: models.KindJSONPath, Path: "$..id", Operator: "exists"}, false, "json_path error:"},
		{"json bad operator", models.AssertionSpec{Type: models.KindJSONPath, Path: "$.data.id", Operator: "like", Expected: 1}, false, "unsupported operator: like"},

		{"unknown type", models.AssertionSpec{Type: "db_row", Expected: 1}, false, "unsupported assertion type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Evaluate(sample, tt.spec)
			if tt.pass {
				assert.Equal(t, models.Pass, v.Result, v.Message)
				assert.Empty(t, v.Message)
				return
			}
			assert.Equal(t, models.Fail, v.Result)
			assert.True(t, strings.HasPrefix(v.Message, tt.message), "message %q does not start with %q", v.Message, tt.message)
		})
	}
}

func TestEvaluateMissingFields(t *testing.T) {
	empty := models.ResponseResult{Success: true}

	v := Evaluate(empty, models.AssertionSpec{Type: models.KindStatusCode, Expected: 200})
	assert.Equal(t, "status_code missing", v.Message)

	v = Evaluate(empty, models.AssertionSpec{Type: models.KindResponseTime, Operator: "<", Expected: 10})
	assert.Equal(t, "elapsed_ms missing", v.Message)

	v = Evaluate(empty, models.AssertionSpec{Type: models.KindJSONPath, Path: "$.x", Operator: "not_exists"})
	assert.Equal(t, "response_json missing", v.Message)

	// body falls back to the parsed JSON when there is no text
	withJSON := models.ResponseResult{Success: true, ResponseJSON: map[string]any{"ok": true}}
	v = Evaluate(withJSON, models.AssertionSpec{Type: models.KindResponseBody, Expected: `"ok":true`})
	assert.Equal(t, models.Pass, v.Result)
}

func TestEvaluateNeverPanics(t *testing.T) {
	resp := models.ResponseResult{Success: true, ResponseJSON: map[string]any{"x": 5.0}}
	v := Evaluate(resp, models.AssertionSpec{Type: models.KindJSONPath, Path: "$.x", Operator: ">", Expected: "abc"})
	assert.Equal(t, models.Fail, v.Result)
	assert.Contains(t, v.Message, "expected number required")

	odd := []any{make(chan int), func() {}, map[string]any{"k": []any{nil}}, "\xff\xfe"}
	kinds := []models.AssertionKind{models.KindStatusCode, models.KindResponseTime, models.KindResponseBody, models.KindHeader, models.KindJSONPath, "other"}
	for _, kind := range kinds {
		for _, expected := range odd {
			assert.NotPanics(t, func() {
				Evaluate(resp, models.AssertionSpec{Type: kind, Operator: "between", Path: "$[", Expected: expected})
				Evaluate(sample, models.AssertionSpec{Type: kind, Operator: "contains", Path: "$.data", Header: "X", Expected: expected})
			})
		}
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	spec := models.AssertionSpec{Type: models.KindJSONPath, Path: "$.items[*].note", Operator: "contains", Expected: "kept"}
	first := Evaluate(sample, spec)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Evaluate(sample, spec))
	}
}

func TestBetweenSymmetry(t *testing.T) {
	resp := response(300, 1, "", nil, nil)
	a := Evaluate(resp, models.AssertionSpec{Type: models.KindStatusCode, Operator: "between", Expected: "500~200"})
	b := Evaluate(resp, models.AssertionSpec{Type: models.KindStatusCode, Operator: "between", Expected: "200~500"})
	assert.Equal(t, models.Pass, a.Result)
	assert.Equal(t, a.Result, b.Result)
}

func TestVerdictSanitized(t *testing.T) {
	resp := response(200, 1, "line one\r\n\r\n\tline two", nil, nil)
	v := Evaluate(resp, models.AssertionSpec{Type: models.KindResponseBody, Operator: "contains", Expected: "missing\\nvalue"})

	assert.Equal(t, models.Fail, v.Result)
	assert.Equal(t, "line one\n\n line two", v.Actual)
	assert.Equal(t, "missing\nvalue", v.Expected)
	assert.NotContains(t, v.Message, "\r")
	assert.NotContains(t, v.Message, "\n\n")
}

func TestEngineRun(t *testing.T) {
	specs := []models.AssertionSpec{
		{Type: models.KindStatusCode, Expected: 200},
		{Type: "bogus"},
		{Type: models.KindJSONPath, Path: "$.data.id", Operator: "equals", Expected: 1001},
	}

	verdicts := NewEngine().Run(sample, specs)
	assert.Len(t, verdicts, 3)
	assert.Equal(t, models.Pass, verdicts[0].Result)
	assert.Equal(t, models.Fail, verdicts[1].Result)
	assert.Equal(t, models.Pass, verdicts[2].Result)
	assert.False(t, AllPassed(verdicts))
	assert.True(t, AllPassed(nil))
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	s := strings.Repeat("a", 999) + "é" + "tail"
	got := truncate(s, 1000)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 999)+"...", got)

	assert.Equal(t, "short", truncate("short", 1000))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
}

func TestBodyActualIsValidUTF8WhenTruncated(t *testing.T) {
	body := strings.Repeat("x", maxActualLen-1) + strings.Repeat("ü", 10)
	resp := response(200, 1, body, nil, nil)

	v := Evaluate(resp, models.AssertionSpec{Type: models.KindResponseBody, Operator: "contains", Expected: "missing"})
	assert.Equal(t, models.Fail, v.Result)
	actual, ok := v.Actual.(string)
	if assert.True(t, ok) {
		assert.True(t, utf8.ValidString(actual))
	}
}
