package task

import "context"

// -----------------------------------------------------------------------------
// Hook points
// -----------------------------------------------------------------------------

// HookPoint names a position in the execution lifecycle where callbacks run.
type HookPoint string

const (
	HookBeforeExecution  HookPoint = "before_execution"
	HookOnExecuting      HookPoint = "on_executing"
	HookBeforeValidation HookPoint = "before_validation"
	HookAfterValidation  HookPoint = "after_validation"
	HookOnComplete       HookPoint = "on_complete"
	HookOnInterrupted    HookPoint = "on_interrupted"
	HookOnExecuted       HookPoint = "on_executed"
	HookOnSuccess        HookPoint = "on_success"
	HookOnSkipped        HookPoint = "on_skipped"
	HookOnFailed         HookPoint = "on_failed"
	HookOnGood           HookPoint = "on_good"
	HookOnBad            HookPoint = "on_bad"
	HookAfterExecution   HookPoint = "after_execution"
)

// HookFunc observes the execution. Hooks cannot change the outcome.
type HookFunc func(ctx context.Context, fr *Frame)

// Guard gates a hook registration against the live execution frame.
type Guard func(fr *Frame) bool

// HookOption attaches guards to a hook registration.
type HookOption func(*hookEntry)

// If runs the hook only when the predicate holds.
func If(pred Guard) HookOption {
	return func(e *hookEntry) {
		e.ifGuard = pred
	}
}

// Unless runs the hook only when the predicate does not hold.
func Unless(pred Guard) HookOption {
	return func(e *hookEntry) {
		e.unlessGuard = pred
	}
}

type hookEntry struct {
	fn          HookFunc
	ifGuard     Guard
	unlessGuard Guard
}

func newHookEntry(fn HookFunc, opts []HookOption) hookEntry {
	e := hookEntry{fn: fn}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// allowed evaluates the guards; guarded hooks that fail are skipped silently.
func (e *hookEntry) allowed(fr *Frame) bool {
	if e.ifGuard != nil && !e.ifGuard(fr) {
		return false
	}
	if e.unlessGuard != nil && e.unlessGuard(fr) {
		return false
	}
	return true
}

// runHooks invokes the entries registered for one point, in registration
// order (inherited entries come first, parent-first, from flattening).
func runHooks(ctx context.Context, entries []hookEntry, fr *Frame) {
	for i := range entries {
		if entries[i].allowed(fr) {
			entries[i].fn(ctx, fr)
		}
	}
}
