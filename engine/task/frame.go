package task

import (
	"time"

	"github.com/compozy/taskrun/engine/core"
	"github.com/compozy/taskrun/engine/param"
	"github.com/compozy/taskrun/engine/result"
	"github.com/compozy/taskrun/engine/taskctx"
)

// Frame is the per-execution handle handed to hooks, middleware and business
// logic: the shared Context, the in-flight Result and the parameters resolved
// for this execution.
type Frame struct {
	task   Task
	tctx   *taskctx.Context
	res    *result.Result
	params param.Values
}

func (f *Frame) Task() Task {
	return f.task
}

// Context is the shared mutable bag for this call tree.
func (f *Frame) Context() *taskctx.Context {
	return f.tctx
}

// Result is the in-flight Result; read-only for callers outside the executor.
func (f *Frame) Result() *result.Result {
	return f.res
}

// Params returns every resolved parameter.
func (f *Frame) Params() param.Values {
	return f.params
}

// Param returns one resolved parameter, nil when absent.
func (f *Frame) Param(name string) any {
	v, _ := f.params.Get(name)
	return v
}

func (f *Frame) String(name string) string {
	if s, ok := f.Param(name).(string); ok {
		return s
	}
	return ""
}

func (f *Frame) Int(name string) int {
	if i, ok := core.ParseAnyInt(f.Param(name)); ok {
		return i
	}
	return 0
}

func (f *Frame) Float(name string) float64 {
	if fv, ok := core.ParseAnyFloat(f.Param(name)); ok {
		return fv
	}
	return 0
}

func (f *Frame) Bool(name string) bool {
	if b, ok := core.ParseAnyBool(f.Param(name)); ok {
		return b
	}
	return false
}

func (f *Frame) Duration(name string) time.Duration {
	if d, ok := core.ParseAnyDuration(f.Param(name)); ok {
		return d
	}
	return 0
}

// Set writes into the shared Context; later tasks in the call tree see the
// value.
func (f *Frame) Set(key string, value any) {
	f.tctx.Set(key, value)
}

// Get reads from the shared Context.
func (f *Frame) Get(key string) (any, bool) {
	return f.tctx.Get(key)
}
