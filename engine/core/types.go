package core

// -----------------------------------------------------------------------------
// Execution State
// -----------------------------------------------------------------------------

// StateType describes where a task execution currently is in its lifecycle.
// Transitions are strictly forward-only:
// initialized → executing → (complete | interrupted).
type StateType string

const (
	StateInitialized StateType = "initialized"
	StateExecuting   StateType = "executing"
	StateComplete    StateType = "complete"
	StateInterrupted StateType = "interrupted"
)

func (s StateType) String() string {
	return string(s)
}

// IsTerminal reports whether no further state transition is possible.
func (s StateType) IsTerminal() bool {
	return s == StateComplete || s == StateInterrupted
}

// CanTransitionTo reports whether the forward-only lifecycle allows moving
// from s to next.
func (s StateType) CanTransitionTo(next StateType) bool {
	switch s {
	case StateInitialized:
		return next == StateExecuting
	case StateExecuting:
		return next == StateComplete || next == StateInterrupted
	default:
		return false
	}
}

// -----------------------------------------------------------------------------
// Execution Status
// -----------------------------------------------------------------------------

// StatusType describes how a task execution ended. It is only meaningful once
// the state is terminal.
type StatusType string

const (
	StatusSuccess StatusType = "success"
	StatusSkipped StatusType = "skipped"
	StatusFailed  StatusType = "failed"
)

func (s StatusType) String() string {
	return string(s)
}

// IsGood reports whether the status counts as a non-failure outcome.
// Skipped is both good and bad.
func (s StatusType) IsGood() bool {
	return s == StatusSuccess || s == StatusSkipped
}

// IsBad reports whether the status counts as an interrupted outcome.
func (s StatusType) IsBad() bool {
	return s == StatusSkipped || s == StatusFailed
}

// StateFor returns the terminal state implied by the status:
// success completes, skipped and failed interrupt.
func (s StatusType) StateFor() StateType {
	if s == StatusSuccess {
		return StateComplete
	}
	return StateInterrupted
}

// -----------------------------------------------------------------------------
// Metadata keys
// -----------------------------------------------------------------------------

// Well-known metadata keys attached by the executor. Business logic may attach
// arbitrary additional keys.
const (
	MetaReason        = "reason"
	MetaMessages      = "messages"
	MetaOriginalError = "original_error"
	MetaError         = "error"
)
