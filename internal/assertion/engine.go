package assertion

import "github.com/moamenhredeen/reqcheck/internal/models"

// Engine evaluates assertion lists
type Engine struct{}

// NewEngine creates a new assertion engine
func NewEngine() *Engine {
	return &Engine{}
}

// Run evaluates every spec in order and returns one verdict per spec.
// A failing or unknown assertion never stops the rest of the list.
func (e *Engine) Run(resp models.ResponseResult, specs []models.AssertionSpec) []models.AssertionVerdict {
	verdicts := make([]models.AssertionVerdict, 0, len(specs))
	for _, spec := range specs {
		verdicts = append(verdicts, Evaluate(resp, spec))
	}
	return verdicts
}
