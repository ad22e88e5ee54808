// Package task implements the execution pipeline wrapping one unit of work:
// lifecycle hooks, middleware, parameter resolution, interrupt handling,
// retry, result finalization and the halt decision.
package task

import (
	"context"
)

// Task is one unit of work. Execute holds the business logic; returning nil
// means success, returning a Skip/Fail/Throw interrupt ends the execution
// with that outcome, and any other error (or panic) is normalized into a
// failed result.
type Task interface {
	Name() string
	Execute(ctx context.Context, fr *Frame) error
}

// Definer is implemented by tasks that carry a Definition: declared
// parameters, hooks, middleware, halt set, retry policy.
type Definer interface {
	Definition() *Definition
}

// funcTask adapts a bare function into a Task.
type funcTask struct {
	name string
	def  *Definition
	fn   func(ctx context.Context, fr *Frame) error
}

func (t *funcTask) Name() string {
	return t.name
}

func (t *funcTask) Execute(ctx context.Context, fr *Frame) error {
	return t.fn(ctx, fr)
}

func (t *funcTask) Definition() *Definition {
	return t.def
}

// Func wraps a function as a Task with an empty Definition.
func Func(name string, fn func(ctx context.Context, fr *Frame) error) Task {
	return FuncWith(name, NewDefinition(), fn)
}

// FuncWith wraps a function as a Task with the given Definition.
func FuncWith(name string, def *Definition, fn func(ctx context.Context, fr *Frame) error) Task {
	if def == nil {
		def = NewDefinition()
	}
	return &funcTask{name: name, def: def, fn: fn}
}

// definitionOf returns the task's Definition, or a shared empty one.
var emptyDefinition = NewDefinition()

func definitionOf(t Task) *Definition {
	if d, ok := t.(Definer); ok {
		if def := d.Definition(); def != nil {
			return def
		}
	}
	return emptyDefinition
}
