// Package workflow composes tasks into ordered groups executed against one
// shared Context, with per-group conditions and halt policies.
package workflow

import (
	"context"

	"github.com/compozy/taskrun/engine/core"
	"github.com/compozy/taskrun/engine/result"
	"github.com/compozy/taskrun/engine/task"
	"github.com/compozy/taskrun/engine/taskctx"
)

// Predicate gates a group against the shared Context at run time.
type Predicate func(tc *taskctx.Context) bool

// Group is one step of a workflow: one or more tasks plus options. Tasks in
// a group run against the same shared Context; the design requires no
// ordering between them, though this runner executes them sequentially.
type Group struct {
	name       string
	tasks      []task.Task
	ifPred     Predicate
	unlessPred Predicate
	haltOn     []core.StatusType
	hasHaltOn  bool
}

// GroupOption customizes one group.
type GroupOption func(*Group)

// If runs the group only when the predicate holds; gated-out groups produce
// no Results at all.
func If(pred Predicate) GroupOption {
	return func(g *Group) {
		g.ifPred = pred
	}
}

// Unless runs the group only when the predicate does not hold.
func Unless(pred Predicate) GroupOption {
	return func(g *Group) {
		g.unlessPred = pred
	}
}

// HaltOn overrides, for this group, the statuses that abort the remaining
// groups.
func HaltOn(statuses ...core.StatusType) GroupOption {
	return func(g *Group) {
		g.haltOn = statuses
		g.hasHaltOn = true
	}
}

// Workflow is an ordered list of groups. It is itself a Task, so running it
// produces a Result in the same Chain and the usual hooks, middleware and
// halt policy apply to the batch as a whole.
type Workflow struct {
	name     string
	def      *task.Definition
	groups   []*Group
	haltOn   []core.StatusType
	executor *task.Executor
}

// Option customizes the workflow.
type Option func(*Workflow)

// WithHaltOn sets the default halting statuses applied after each member
// task, overridable per group. The default halts on failed only; non-bad
// statuses in the set are ignored.
func WithHaltOn(statuses ...core.StatusType) Option {
	return func(w *Workflow) {
		w.haltOn = statuses
	}
}

// WithExecutor runs member tasks through a specific executor instead of the
// package default.
func WithExecutor(e *task.Executor) Option {
	return func(w *Workflow) {
		w.executor = e
	}
}

// WithDefinition attaches a Definition to the workflow itself (hooks,
// middleware, its own halt set at the raising entry point).
func WithDefinition(def *task.Definition) Option {
	return func(w *Workflow) {
		w.def = def
	}
}

// New builds an empty workflow.
func New(name string, opts ...Option) *Workflow {
	w := &Workflow{
		name:   name,
		def:    task.NewDefinition(),
		haltOn: []core.StatusType{core.StatusFailed},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Then appends a single-task group.
func (w *Workflow) Then(t task.Task, opts ...GroupOption) *Workflow {
	return w.Group(t.Name(), []task.Task{t}, opts...)
}

// Group appends a named group of tasks.
func (w *Workflow) Group(name string, tasks []task.Task, opts ...GroupOption) *Workflow {
	g := &Group{name: name, tasks: tasks}
	for _, opt := range opts {
		opt(g)
	}
	w.groups = append(w.groups, g)
	return w
}

func (w *Workflow) Name() string {
	return w.name
}

func (w *Workflow) Definition() *task.Definition {
	return w.def
}

// Execute runs the groups in declaration order. When a member's status lands
// in the effective halting set, the workflow adopts that result as its own
// outcome and no further groups run; otherwise the workflow succeeds.
func (w *Workflow) Execute(ctx context.Context, fr *task.Frame) error {
	for _, g := range w.groups {
		if g.ifPred != nil && !g.ifPred(fr.Context()) {
			continue
		}
		if g.unlessPred != nil && g.unlessPred(fr.Context()) {
			continue
		}
		haltOn := w.haltOn
		if g.hasHaltOn {
			haltOn = g.haltOn
		}
		for _, member := range g.tasks {
			res := w.run(ctx, member)
			if err := task.EvaluateHalt(res, haltOn); err != nil {
				return task.Throw(res)
			}
		}
	}
	return nil
}

func (w *Workflow) run(ctx context.Context, member task.Task) *result.Result {
	if w.executor != nil {
		return w.executor.Run(ctx, member, nil)
	}
	return task.Run(ctx, member, nil)
}
