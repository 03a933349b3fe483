// Package runner executes cases concurrently with a bounded worker pool.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/moamenhredeen/reqcheck/internal/models"
)

// DefaultConcurrency is the worker count when Config.Concurrency is unset
const DefaultConcurrency = 5

// ErrAlreadyRunning is returned by Start while a run is in progress
var ErrAlreadyRunning = errors.New("runner: a run is already in progress")

// EventType represents the type of runner event
type EventType int

const (
	// EventCaseStarted indicates a case was handed to a worker
	EventCaseStarted EventType = iota
	// EventCaseFinished indicates a case produced its result
	EventCaseFinished
	// EventProgress carries the updated completed count
	EventProgress
	// EventCanceled indicates Cancel took effect
	EventCanceled
	// EventFinished is the last event of every run
	EventFinished
)

func (t EventType) String() string {
	switch t {
	case EventCaseStarted:
		return "case_started"
	case EventCaseFinished:
		return "case_finished"
	case EventProgress:
		return "progress"
	case EventCanceled:
		return "canceled"
	case EventFinished:
		return "finished"
	}
	return fmt.Sprintf("event(%d)", int(t))
}

// Event is delivered to OnEvent. Events of one run arrive one at a time
// and in order; Completed never decreases.
type Event struct {
	Type      EventType
	Case      *models.CaseSpec   // set for EventCaseStarted
	Result    *models.CaseResult // set for EventCaseFinished
	Outcome   *Outcome           // set for EventFinished
	Completed int
	Total     int
}

// OnEvent is a callback function for runner events
type OnEvent func(event Event)

// Outcome is the final state of a run
type Outcome struct {
	Results  []models.CaseResult // completion order
	Summary  models.BatchSummary
	Canceled bool
	Err      error // set when the run could not execute; Results may be partial
}

// Executor runs one case to completion without panicking
type Executor interface {
	Execute(ctx context.Context, c models.CaseSpec) models.CaseResult
}

// Config holds runner configuration
type Config struct {
	Concurrency int     // max cases in flight
	RateLimit   float64 // max case dispatches per second (0 = unlimited)
}

// DefaultConfig returns default runner configuration
func DefaultConfig() Config {
	return Config{
		Concurrency: DefaultConcurrency,
		RateLimit:   0,
	}
}

// Runner executes a batch of cases. Callbacks run on a single delivery
// goroutine, never while the runner's lock is held, so they may call
// Cancel.
type Runner struct {
	executor Executor
	config   Config

	OnProgress func(completed, total int)
	OnFinished func(Outcome)
	OnEvent    OnEvent

	mu        sync.Mutex
	gen       int
	pending   []models.CaseSpec
	results   []models.CaseResult
	total     int
	completed int
	active    int
	running   bool
	canceled  bool
	events    chan Event
	done      chan struct{}
	outcome   Outcome
	limiter   *rate.Limiter
	stopLimit context.CancelFunc
}

// NewRunner creates a runner that hands each case to executor
func NewRunner(executor Executor, config Config) *Runner {
	if config.Concurrency < 1 {
		config.Concurrency = DefaultConcurrency
	}
	return &Runner{
		executor: executor,
		config:   config,
	}
}

// Start begins executing cases and returns immediately. Results arrive
// through the callbacks; Wait blocks until the run is finished.
// Canceling ctx has the same effect as Cancel.
func (r *Runner) Start(ctx context.Context, cases []models.CaseSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return ErrAlreadyRunning
	}

	r.gen++
	r.running = true
	r.canceled = false
	r.pending = append([]models.CaseSpec(nil), cases...)
	r.results = make([]models.CaseResult, 0, len(cases))
	r.total = len(cases)
	r.completed = 0
	r.active = 0
	r.outcome = Outcome{}

	// every event of a run is sent under the lock, so the buffer must
	// hold them all: started, finished and progress per case plus two
	r.events = make(chan Event, 3*len(cases)+2)
	r.done = make(chan struct{})
	go r.deliver(r.events, r.done)

	// stopped by cancelLocked only; a deadline on ctx never ends a limiter wait
	limitCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	r.stopLimit = stop
	r.limiter = nil
	if r.config.RateLimit > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(r.config.RateLimit), max(1, int(r.config.RateLimit)))
	}

	if r.executor == nil {
		r.finishLocked(errors.New("runner: no case executor configured"))
		return nil
	}
	if r.total == 0 {
		r.finishLocked(nil)
		return nil
	}

	go r.watch(ctx, r.gen, r.done)
	r.dispatchLocked(context.WithoutCancel(ctx), limitCtx)
	return nil
}

// Cancel stops dispatching new cases. Cases already in flight run to
// completion; the run then finishes with the results gathered so far.
// Calling Cancel more than once, or when nothing runs, is a no-op.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelLocked(r.gen)
}

// Wait blocks until the current run has delivered OnFinished and
// returns its outcome.
func (r *Runner) Wait() Outcome {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done == nil {
		return Outcome{}
	}
	<-done

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcome
}

// RunCases executes cases synchronously and returns the outcome
func (r *Runner) RunCases(ctx context.Context, cases []models.CaseSpec) (Outcome, error) {
	if err := r.Start(ctx, cases); err != nil {
		return Outcome{}, err
	}
	return r.Wait(), nil
}

// Running reports whether a run is in progress
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Runner) watch(ctx context.Context, gen int, done <-chan struct{}) {
	select {
	case <-ctx.Done():
		r.mu.Lock()
		r.cancelLocked(gen)
		r.mu.Unlock()
	case <-done:
	}
}

func (r *Runner) cancelLocked(gen int) {
	if !r.running || r.canceled || gen != r.gen {
		return
	}
	r.canceled = true
	r.pending = nil
	r.stopLimit()
	r.events <- Event{Type: EventCanceled, Completed: r.completed, Total: r.total}
	if r.active == 0 {
		r.finishLocked(nil)
	}
}

// dispatchLocked fills free worker slots from the pending queue
func (r *Runner) dispatchLocked(runCtx, limitCtx context.Context) {
	for !r.canceled && r.active < r.config.Concurrency && len(r.pending) > 0 {
		c := r.pending[0]
		r.pending = r.pending[1:]
		r.active++
		r.events <- Event{Type: EventCaseStarted, Case: &c, Completed: r.completed, Total: r.total}
		go r.work(runCtx, limitCtx, c)
	}
}

func (r *Runner) work(runCtx, limitCtx context.Context, c models.CaseSpec) {
	var result *models.CaseResult
	defer func() {
		if rec := recover(); rec != nil {
			failed := models.NewCaseResult(c,
				models.FailedResponse(models.ErrCaseExecutor, fmt.Sprint(rec)), nil, models.Fail)
			result = &failed
		}
		r.caseDone(runCtx, limitCtx, result)
	}()

	if r.limiter != nil {
		if err := r.limiter.Wait(limitCtx); err != nil {
			// canceled before it started
			return
		}
	}

	out := r.executor.Execute(runCtx, c)
	result = &out
}

func (r *Runner) caseDone(runCtx, limitCtx context.Context, result *models.CaseResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.active--
	if result == nil {
		r.cancelLocked(r.gen)
	} else {
		r.results = append(r.results, *result)
		r.completed++
		r.events <- Event{Type: EventCaseFinished, Result: result, Completed: r.completed, Total: r.total}
		r.events <- Event{Type: EventProgress, Completed: r.completed, Total: r.total}
	}

	if !r.canceled {
		r.dispatchLocked(runCtx, limitCtx)
	}
	if r.completed >= r.total || (r.canceled && r.active == 0) {
		r.finishLocked(nil)
	}
}

func (r *Runner) finishLocked(err error) {
	if !r.running {
		return
	}
	results := append([]models.CaseResult(nil), r.results...)
	r.outcome = Outcome{
		Results:  results,
		Summary:  models.BuildSummary(results),
		Canceled: r.canceled,
		Err:      err,
	}
	outcome := r.outcome
	r.events <- Event{Type: EventFinished, Outcome: &outcome, Completed: r.completed, Total: r.total}
	close(r.events)
	r.running = false
	r.stopLimit()
}

// deliver invokes the callbacks for one run, in event order
func (r *Runner) deliver(events <-chan Event, done chan<- struct{}) {
	defer close(done)
	for ev := range events {
		if r.OnEvent != nil {
			r.OnEvent(ev)
		}
		switch ev.Type {
		case EventProgress:
			if r.OnProgress != nil {
				r.OnProgress(ev.Completed, ev.Total)
			}
		case EventFinished:
			if r.OnFinished != nil {
				r.OnFinished(*ev.Outcome)
			}
		}
	}
}
