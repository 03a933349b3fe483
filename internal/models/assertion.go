package models

// AssertionKind names one of the supported checks
type AssertionKind string

const (
	KindStatusCode   AssertionKind = "status_code"
	KindResponseBody AssertionKind = "response_body"
	KindJSONPath     AssertionKind = "json_path"
	KindHeader       AssertionKind = "header"
	KindResponseTime AssertionKind = "response_time"
)

// Result is the verdict of an assertion or a whole case
type Result string

const (
	Pass Result = "PASS"
	Fail Result = "FAIL"
)

// AssertionSpec is a declarative check against a response
type AssertionSpec struct {
	Type     AssertionKind `json:"type" yaml:"type"`
	Operator string        `json:"operator,omitempty" yaml:"operator,omitempty"`
	Expected any           `json:"expected,omitempty" yaml:"expected,omitempty"`

	// Targeting; Target is the fallback for Path and Header
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	Header string `json:"header,omitempty" yaml:"header,omitempty"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`

	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// IsEnabled reports whether the assertion should run. Missing means enabled.
func (a AssertionSpec) IsEnabled() bool {
	return a.Enabled == nil || *a.Enabled
}

// EnabledAssertions filters out disabled assertions, keeping order
func EnabledAssertions(specs []AssertionSpec) []AssertionSpec {
	out := make([]AssertionSpec, 0, len(specs))
	for _, s := range specs {
		if s.IsEnabled() {
			out = append(out, s)
		}
	}
	return out
}

// AssertionVerdict is the outcome of one assertion
type AssertionVerdict struct {
	Type     AssertionKind `json:"type"`
	Operator string        `json:"operator,omitempty"`
	Path     string        `json:"path,omitempty"`
	Header   string        `json:"header,omitempty"`
	Target   string        `json:"target,omitempty"`

	Result   Result `json:"result"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
	Message  string `json:"message"`
}

// Passed reports whether the verdict is PASS
func (v AssertionVerdict) Passed() bool {
	return v.Result == Pass
}
