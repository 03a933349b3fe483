package models

// CaseSpec is one request plus the assertions to run against its response
type CaseSpec struct {
	CaseID     string            `json:"case_id" yaml:"case_id"`
	Name       string            `json:"name" yaml:"name"`
	Request    RequestDescriptor `json:"request" yaml:"request"`
	Assertions []AssertionSpec   `json:"assertions,omitempty" yaml:"assertions,omitempty"`
}

// CaseResult represents the result of executing a single case
type CaseResult struct {
	CaseID     string            `json:"case_id"`
	Name       string            `json:"name"`
	Request    RequestDescriptor `json:"request"`
	Assertions []AssertionSpec   `json:"assertions"`

	Response         ResponseResult     `json:"response"`
	AssertionResults []AssertionVerdict `json:"assertion_results"`
	Result           Result             `json:"result"`

	// Reserved for future use, always present
	Logs         []string `json:"logs"`
	DBAssertions []any    `json:"db_assertions"`
	Attachments  []string `json:"attachments"`
}

// NewCaseResult assembles a case record with all list fields non-nil
func NewCaseResult(spec CaseSpec, resp ResponseResult, verdicts []AssertionVerdict, result Result) CaseResult {
	assertions := spec.Assertions
	if assertions == nil {
		assertions = []AssertionSpec{}
	}
	if verdicts == nil {
		verdicts = []AssertionVerdict{}
	}
	return CaseResult{
		CaseID:           spec.CaseID,
		Name:             spec.Name,
		Request:          spec.Request,
		Assertions:       assertions,
		Response:         resp,
		AssertionResults: verdicts,
		Result:           result,
		Logs:             []string{},
		DBAssertions:     []any{},
		Attachments:      []string{},
	}
}

// Passed reports whether the case passed
func (r CaseResult) Passed() bool {
	return r.Result == Pass
}
