package session

import (
	"sync"

	"github.com/yildizm/TenderScope/internal/analysis"
)

// Labels and copy shown by the trigger
const (
	RunLabel     = "Run Analysis"
	RunningLabel = "Running Analysis..."

	FailureTitle       = "Analysis Failed"
	FailureDescription = "Unable to complete the analysis. Please try again."
)

// Scope tracks one view activation. Each call started in the scope gets a
// generation; only the latest generation may settle, and only once, and
// nothing settles after the scope is closed.
type Scope struct {
	mu         sync.Mutex
	generation uint64
	settled    bool
	closed     bool
}

// NewScope creates an open scope
func NewScope() *Scope {
	return &Scope{settled: true}
}

// Begin starts a new generation, superseding any call still in flight
func (s *Scope) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.settled = false
	return s.generation
}

// Settle claims the completion of gen. It returns false for stale,
// duplicate or post-teardown completions.
func (s *Scope) Settle(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.settled || gen != s.generation {
		return false
	}
	s.settled = true
	return true
}

// Close tears the scope down
func (s *Scope) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Closed reports whether the scope was torn down
func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Outcome tells the trigger view what to do after a completion
type Outcome int

const (
	// OutcomeIgnored means the completion was stale and must be dropped
	OutcomeIgnored Outcome = iota

	// OutcomeNavigate means the result is ready for the results view
	OutcomeNavigate

	// OutcomeNotify means exactly one failure notification must be shown
	OutcomeNotify
)

// TriggerState is the start view's state
type TriggerState struct {
	State analysis.LoadState
	scope *Scope
}

// NewTriggerState starts Idle
func NewTriggerState() *TriggerState {
	return &TriggerState{State: analysis.Idle, scope: NewScope()}
}

// Enabled reports whether the run action may be activated
func (t *TriggerState) Enabled() bool {
	return t.State != analysis.Loading && !t.scope.Closed()
}

// Label returns the run button text for the current state
func (t *TriggerState) Label() string {
	if t.State == analysis.Loading {
		return RunningLabel
	}
	return RunLabel
}

// Begin moves to Loading. ok is false while a run is already in flight.
func (t *TriggerState) Begin() (gen uint64, ok bool) {
	if !t.Enabled() {
		return 0, false
	}
	t.State = analysis.Loading
	return t.scope.Begin(), true
}

// Complete applies the outcome of generation gen
func (t *TriggerState) Complete(gen uint64, err error) Outcome {
	if !t.scope.Settle(gen) {
		return OutcomeIgnored
	}
	if err != nil {
		t.State = analysis.Failed
		return OutcomeNotify
	}
	t.State = analysis.Success
	return OutcomeNavigate
}

// Close tears down the trigger view
func (t *TriggerState) Close() {
	t.scope.Close()
}

// ResultState is the results view's state
type ResultState struct {
	State  analysis.LoadState
	Result *analysis.Result
	scope  *Scope
}

// NewResultState starts Loading
func NewResultState() *ResultState {
	return &ResultState{State: analysis.Loading, scope: NewScope()}
}

// Begin starts a (re)load, dropping the previous result
func (r *ResultState) Begin() uint64 {
	r.State = analysis.Loading
	r.Result = nil
	return r.scope.Begin()
}

// Complete stores result for generation gen. Failed results are still
// stored and rendered. It returns false when the completion was stale.
func (r *ResultState) Complete(gen uint64, result *analysis.Result) bool {
	if !r.scope.Settle(gen) {
		return false
	}
	if result == nil {
		result = analysis.FailedResult()
	}
	r.Result = result
	if result.Failed() {
		r.State = analysis.Failed
	} else {
		r.State = analysis.Success
	}
	return true
}

// Close tears down the results view; later completions are ignored
func (r *ResultState) Close() {
	r.scope.Close()
	r.Result = nil
}
