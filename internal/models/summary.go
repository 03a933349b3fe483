package models

import (
	"time"

	"github.com/google/uuid"
)

// ExecuteTimeLayout is the format of ResultEnvelope.ExecuteTime
const ExecuteTimeLayout = "2006-01-02 15:04:05"

// BatchSummary counts case outcomes
type BatchSummary struct {
	Total int `json:"total"`
	Pass  int `json:"pass"`
	Fail  int `json:"fail"`
}

// AddResult adds a case result to the summary
func (s *BatchSummary) AddResult(result CaseResult) {
	s.Total++
	if result.Passed() {
		s.Pass++
	} else {
		s.Fail++
	}
}

// BuildSummary counts results; anything that is not PASS is a failure.
func BuildSummary(results []CaseResult) BatchSummary {
	var s BatchSummary
	for _, r := range results {
		s.AddResult(r)
	}
	return s
}

// ResultEnvelope is the persisted record of one suite run
type ResultEnvelope struct {
	RunID       string       `json:"run_id,omitempty"`
	SuiteName   string       `json:"suite_name"`
	ExecuteTime string       `json:"execute_time"`
	Summary     BatchSummary `json:"summary"`
	Cases       []CaseResult `json:"cases"`
	Canceled    bool         `json:"canceled"`
	Error       string       `json:"error,omitempty"`
}

// NewResultEnvelope wraps results of a run started at executedAt
func NewResultEnvelope(suiteName string, results []CaseResult, executedAt time.Time) ResultEnvelope {
	if results == nil {
		results = []CaseResult{}
	}
	return ResultEnvelope{
		RunID:       uuid.NewString(),
		SuiteName:   suiteName,
		ExecuteTime: executedAt.Format(ExecuteTimeLayout),
		Summary:     BuildSummary(results),
		Cases:       results,
	}
}
