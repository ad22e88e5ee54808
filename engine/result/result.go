package result

import (
	"fmt"
	"sync"
	"time"

	"github.com/compozy/taskrun/engine/core"
)

// Result records the lifecycle of one task execution: where it is (state),
// how it ended (status), open metadata, runtime and its position within the
// Chain. Only the executor mutates a Result; once the state is terminal it is
// read-only from the outside.
type Result struct {
	mu        sync.Mutex
	taskName  string
	execID    core.ID
	state     core.StateType
	status    core.StatusType
	meta      core.Metadata
	startedAt time.Time
	runtime   time.Duration
	index     int
	chain     *Chain

	// causedFailure points at the root cause of a bad outcome: the Result
	// itself when the failure originated in its own logic, or the ultimate
	// originating Result when adopted via a throw.
	causedFailure *Result
	// threwFailure points at the immediately adopted Result when this bad
	// outcome was constructed via a throw, nil otherwise.
	threwFailure *Result
}

// New builds a Result in the initialized state for the named task.
func New(taskName string) *Result {
	return &Result{
		taskName: taskName,
		execID:   core.MustNewID(),
		state:    core.StateInitialized,
		status:   core.StatusSuccess,
		meta:     core.Metadata{},
		index:    -1,
	}
}

// -----------------------------------------------------------------------------
// Transitions (executor only)
// -----------------------------------------------------------------------------

// Start moves the Result into the executing state and stamps the wall clock.
func (r *Result) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.state.CanTransitionTo(core.StateExecuting) {
		return fmt.Errorf("invalid transition from %s to %s", r.state, core.StateExecuting)
	}
	r.state = core.StateExecuting
	r.startedAt = time.Now()
	return nil
}

// Skip marks the execution as intentionally skipped.
func (r *Result) Skip(meta core.Metadata) error {
	return r.interrupt(core.StatusSkipped, meta)
}

// Fail marks the execution as failed.
func (r *Result) Fail(meta core.Metadata) error {
	return r.interrupt(core.StatusFailed, meta)
}

func (r *Result) interrupt(status core.StatusType, meta core.Metadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != core.StateExecuting {
		return fmt.Errorf("cannot mark %s while %s", status, r.state)
	}
	if r.status != core.StatusSuccess {
		return fmt.Errorf("status already %s", r.status)
	}
	r.status = status
	if err := r.meta.Merge(meta); err != nil {
		return err
	}
	r.causedFailure = r
	return nil
}

// AdoptThrow copies the bad outcome of other onto r, merging extra metadata
// on top. The adopted Result is recorded as threwFailure and the transitive
// root cause as causedFailure, so a chain of throws always resolves to the
// originating Result.
func (r *Result) AdoptThrow(other *Result, extra core.Metadata) error {
	if other == nil {
		return fmt.Errorf("cannot throw a nil result")
	}
	status := other.Status()
	if !status.IsBad() {
		return fmt.Errorf("cannot throw a %s result", status)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != core.StateExecuting {
		return fmt.Errorf("cannot adopt a throw while %s", r.state)
	}
	if r.status != core.StatusSuccess {
		return fmt.Errorf("status already %s", r.status)
	}
	r.status = status
	if err := r.meta.Merge(other.Metadata()); err != nil {
		return err
	}
	if err := r.meta.Merge(extra); err != nil {
		return err
	}
	r.threwFailure = other
	r.causedFailure = other.RootCause()
	return nil
}

// Finalize closes the Result: the terminal state is derived from the status,
// the runtime is computed, and the Result is appended to the chain, which
// assigns its permanent index.
func (r *Result) Finalize(chain *Chain) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != core.StateExecuting {
		return fmt.Errorf("cannot finalize while %s", r.state)
	}
	r.state = r.status.StateFor()
	r.runtime = time.Since(r.startedAt)
	r.chain = chain
	if chain != nil {
		r.index = chain.append(r)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Accessors
// -----------------------------------------------------------------------------

func (r *Result) Task() string {
	return r.taskName
}

func (r *Result) ExecID() core.ID {
	return r.execID
}

func (r *Result) State() core.StateType {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Result) Status() core.StatusType {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Outcome is the state while execution is in flight and the status once it
// has ended.
func (r *Result) Outcome() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.IsTerminal() {
		return r.status.String()
	}
	return r.state.String()
}

// Metadata returns a deep copy of the attached metadata.
func (r *Result) Metadata() core.Metadata {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meta.Snapshot()
}

// Reason is a shortcut for the "reason" metadata entry.
func (r *Result) Reason() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meta.Reason()
}

func (r *Result) Runtime() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runtime
}

// Index is the position within the Chain, assigned once at append time.
// It is -1 until the Result is finalized.
func (r *Result) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

func (r *Result) Chain() *Chain {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.chain
}

func (r *Result) Success() bool { return r.Status() == core.StatusSuccess }
func (r *Result) Skipped() bool { return r.Status() == core.StatusSkipped }
func (r *Result) Failed() bool  { return r.Status() == core.StatusFailed }
func (r *Result) Good() bool    { return r.Status().IsGood() }
func (r *Result) Bad() bool     { return r.Status().IsBad() }

// -----------------------------------------------------------------------------
// Causality
// -----------------------------------------------------------------------------

// CausedFailure returns the root cause of a bad outcome: the Result itself
// when the failure originated here, the originating Result when adopted via a
// throw, nil for good outcomes.
func (r *Result) CausedFailure() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.causedFailure
}

// ThrewFailure returns the immediately adopted Result when this outcome was
// constructed via a throw, nil otherwise.
func (r *Result) ThrewFailure() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.threwFailure
}

// IsRootCause reports whether a bad outcome originated in this Result's own
// logic rather than being adopted from another Result.
func (r *Result) IsRootCause() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status.IsBad() && r.threwFailure == nil
}

// RootCause walks the throw chain until it reaches the Result where the
// failure originated. Good results are their own root.
func (r *Result) RootCause() *Result {
	cur := r
	for {
		next := cur.ThrewFailure()
		if next == nil {
			return cur
		}
		cur = next
	}
}

// -----------------------------------------------------------------------------
// Log record
// -----------------------------------------------------------------------------

// AsMap flattens the Result into the structured record emitted after
// finalization.
func (r *Result) AsMap() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]any{
		"task":    r.taskName,
		"exec_id": r.execID.String(),
		"state":   r.state.String(),
		"status":  r.status.String(),
		"index":   r.index,
		"runtime": r.runtime.String(),
	}
	if r.state.IsTerminal() {
		out["outcome"] = r.status.String()
	} else {
		out["outcome"] = r.state.String()
	}
	if r.chain != nil {
		out["chain_id"] = r.chain.ID()
	}
	if len(r.meta) > 0 {
		out["metadata"] = r.meta.Snapshot()
	}
	return out
}
