package task

import (
	"errors"
	"fmt"

	"github.com/compozy/taskrun/engine/core"
	"github.com/compozy/taskrun/engine/result"
)

// interrupt is the typed signal business logic returns to end its own
// execution early. It is caught exactly at the boundary between the
// middleware chain and outcome finalization and never propagates further;
// hooks still run afterwards.
type interrupt struct {
	status  core.StatusType
	meta    core.Metadata
	thrown  *result.Result
	isThrow bool
}

func (i *interrupt) Error() string {
	if i.thrown != nil {
		return fmt.Sprintf("threw %s from task %s", i.thrown.Status(), i.thrown.Task())
	}
	if i.isThrow {
		return "threw a nil result"
	}
	return fmt.Sprintf("%s: %s", i.status, i.meta.Reason())
}

// Skip ends the business logic marking the execution as skipped. Extra
// metadata is given as alternating key/value pairs.
func Skip(reason string, kv ...any) error {
	meta := core.NewMetadata(kv...)
	meta[core.MetaReason] = reason
	return &interrupt{status: core.StatusSkipped, meta: meta}
}

// Fail ends the business logic marking the execution as failed.
func Fail(reason string, kv ...any) error {
	meta := core.NewMetadata(kv...)
	meta[core.MetaReason] = reason
	return &interrupt{status: core.StatusFailed, meta: meta}
}

// FailFrom fails with the error's message as the reason, preserving the
// original error in metadata.
func FailFrom(err error, kv ...any) error {
	meta := core.NewMetadata(kv...)
	meta[core.MetaReason] = err.Error()
	meta[core.MetaOriginalError] = err
	return &interrupt{status: core.StatusFailed, meta: meta}
}

// Throw adopts the bad outcome of an already-executed result (typically a
// nested task's) as this task's own, preserving the causal chain back to the
// originating result.
func Throw(res *result.Result, kv ...any) error {
	return &interrupt{meta: core.NewMetadata(kv...), thrown: res, isThrow: true}
}

func asInterrupt(err error) (*interrupt, bool) {
	var i *interrupt
	if errors.As(err, &i) {
		return i, true
	}
	return nil, false
}

// panicError carries a recovered panic value out of the business logic.
type panicError struct {
	value any
}

func (p *panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}
