package tester

import (
	"context"
	"fmt"

	"github.com/moamenhredeen/reqcheck/internal/assertion"
	"github.com/moamenhredeen/reqcheck/internal/models"
)

// Tester executes one case: send the request, then check the assertions
type Tester struct {
	transport Transport
	engine    *assertion.Engine
}

// NewTester creates a new tester on top of transport
func NewTester(transport Transport) *Tester {
	return &Tester{
		transport: transport,
		engine:    assertion.NewEngine(),
	}
}

// Execute runs a single case to completion. It never panics and never
// returns an error: every failure ends up in the returned record.
func (t *Tester) Execute(ctx context.Context, c models.CaseSpec) (result models.CaseResult) {
	defer func() {
		if r := recover(); r != nil {
			result = executorFailure(c, fmt.Sprint(r))
		}
	}()

	resp, err := t.transport.Send(ctx, c.Request)
	if err != nil {
		return executorFailure(c, err.Error())
	}

	// a failed send is not checked against the assertions
	if !resp.Success {
		return models.NewCaseResult(c, resp, nil, models.Fail)
	}

	verdicts := t.engine.Run(resp, models.EnabledAssertions(c.Assertions))
	outcome := models.Pass
	if !assertion.AllPassed(verdicts) {
		outcome = models.Fail
	}
	return models.NewCaseResult(c, resp, verdicts, outcome)
}

func executorFailure(c models.CaseSpec, message string) models.CaseResult {
	return models.NewCaseResult(c, models.FailedResponse(models.ErrCaseExecutor, message), nil, models.Fail)
}
