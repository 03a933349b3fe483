package models

import "time"

// Error types reported in ResponseResult.ErrorType
const (
	ErrInvalidMethod = "InvalidMethod"
	ErrInvalidURL    = "InvalidURL"
	ErrTimeout       = "Timeout"
	ErrConnection    = "ConnectionError"
	ErrRequest       = "RequestException"
	ErrCaseExecutor  = "CaseExecutorError"
)

// DefaultTimeoutSecs applies when neither the request nor the caller sets a timeout
const DefaultTimeoutSecs = 20

// RequestDescriptor describes a single HTTP request to send
type RequestDescriptor struct {
	Method  string            `json:"method" yaml:"method"`
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    any               `json:"body,omitempty" yaml:"body,omitempty"`
	Timeout float64           `json:"timeout,omitempty" yaml:"timeout,omitempty"` // seconds
}

// TimeoutDuration returns the request timeout, or fallback when none is set.
func (r RequestDescriptor) TimeoutDuration(fallback time.Duration) time.Duration {
	if r.Timeout > 0 {
		return time.Duration(r.Timeout * float64(time.Second))
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultTimeoutSecs * time.Second
}

// ResponseResult is the normalized outcome of sending a request.
// Transport failures are values, not errors: Success is false and
// ErrorType/ErrorMessage say what went wrong.
type ResponseResult struct {
	Success bool `json:"success"`

	// Set only when a response was received
	StatusCode   *int              `json:"status_code,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
	ResponseText *string           `json:"response_text,omitempty"`
	ResponseJSON any               `json:"response_json,omitempty"`
	ElapsedMS    *int64            `json:"elapsed_ms,omitempty"`

	// Set only when Success is false
	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// FailedResponse builds an unsuccessful result
func FailedResponse(errType, message string) ResponseResult {
	return ResponseResult{
		Success:      false,
		ErrorType:    errType,
		ErrorMessage: message,
	}
}
