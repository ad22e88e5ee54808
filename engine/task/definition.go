package task

import (
	"sync"

	"github.com/compozy/taskrun/engine/core"
	"github.com/compozy/taskrun/engine/param"
)

// DeprecationMode controls what happens when a deprecated task is invoked.
type DeprecationMode string

const (
	DeprecationNone  DeprecationMode = ""
	DeprecationWarn  DeprecationMode = "warn"
	DeprecationError DeprecationMode = "error"
)

// Definition is the declaration attached to a task type: parameters,
// hooks, middleware, halt set, retry policy and registries. Definitions
// derive from one another with Extend; the effective view is flattened once,
// ancestors first, and cached.
type Definition struct {
	parent      *Definition
	params      []*param.Definition
	middleware  []Middleware
	hooks       map[HookPoint][]hookEntry
	haltOn      []core.StatusType
	hasHaltOn   bool
	retry       *RetryPolicy
	deprecation DeprecationMode
	coercions   *param.CoercionRegistry
	validators  *param.ValidatorRegistry

	flatOnce sync.Once
	flat     *flatDefinition
}

// flatDefinition is the resolved view after walking the ancestor chain
// root-to-leaf.
type flatDefinition struct {
	params      []*param.Definition
	middleware  []Middleware
	hooks       map[HookPoint][]hookEntry
	haltOn      []core.StatusType
	hasHaltOn   bool
	retry       *RetryPolicy
	deprecation DeprecationMode
	coercions   *param.CoercionRegistry
	validators  *param.ValidatorRegistry
}

func NewDefinition() *Definition {
	return &Definition{hooks: make(map[HookPoint][]hookEntry)}
}

// Extend derives a new Definition inheriting this one's declarations.
// Inherited hooks run before locally declared ones; inherited middleware
// wraps locally declared middleware.
func (d *Definition) Extend() *Definition {
	child := NewDefinition()
	child.parent = d
	return child
}

// Params declares input parameters, appended in declaration order.
func (d *Definition) Params(defs ...*param.Definition) *Definition {
	d.params = append(d.params, defs...)
	return d
}

// Use appends middleware, innermost last.
func (d *Definition) Use(mws ...Middleware) *Definition {
	d.middleware = append(d.middleware, mws...)
	return d
}

// On registers a hook at the given point.
func (d *Definition) On(point HookPoint, fn HookFunc, opts ...HookOption) *Definition {
	d.hooks[point] = append(d.hooks[point], newHookEntry(fn, opts))
	return d
}

func (d *Definition) BeforeExecution(fn HookFunc, opts ...HookOption) *Definition {
	return d.On(HookBeforeExecution, fn, opts...)
}

func (d *Definition) OnExecuting(fn HookFunc, opts ...HookOption) *Definition {
	return d.On(HookOnExecuting, fn, opts...)
}

func (d *Definition) BeforeValidation(fn HookFunc, opts ...HookOption) *Definition {
	return d.On(HookBeforeValidation, fn, opts...)
}

func (d *Definition) AfterValidation(fn HookFunc, opts ...HookOption) *Definition {
	return d.On(HookAfterValidation, fn, opts...)
}

func (d *Definition) OnComplete(fn HookFunc, opts ...HookOption) *Definition {
	return d.On(HookOnComplete, fn, opts...)
}

func (d *Definition) OnInterrupted(fn HookFunc, opts ...HookOption) *Definition {
	return d.On(HookOnInterrupted, fn, opts...)
}

func (d *Definition) OnExecuted(fn HookFunc, opts ...HookOption) *Definition {
	return d.On(HookOnExecuted, fn, opts...)
}

func (d *Definition) OnSuccess(fn HookFunc, opts ...HookOption) *Definition {
	return d.On(HookOnSuccess, fn, opts...)
}

func (d *Definition) OnSkipped(fn HookFunc, opts ...HookOption) *Definition {
	return d.On(HookOnSkipped, fn, opts...)
}

func (d *Definition) OnFailed(fn HookFunc, opts ...HookOption) *Definition {
	return d.On(HookOnFailed, fn, opts...)
}

func (d *Definition) OnGood(fn HookFunc, opts ...HookOption) *Definition {
	return d.On(HookOnGood, fn, opts...)
}

func (d *Definition) OnBad(fn HookFunc, opts ...HookOption) *Definition {
	return d.On(HookOnBad, fn, opts...)
}

func (d *Definition) AfterExecution(fn HookFunc, opts ...HookOption) *Definition {
	return d.On(HookAfterExecution, fn, opts...)
}

// HaltOn overrides the statuses that make the raising entry point return a
// fault for this task. Without an override the global default applies.
// Non-bad statuses in the set are ignored.
func (d *Definition) HaltOn(statuses ...core.StatusType) *Definition {
	d.haltOn = statuses
	d.hasHaltOn = true
	return d
}

// Retry sets the exception-retry policy for the business logic.
func (d *Definition) Retry(policy *RetryPolicy) *Definition {
	d.retry = policy
	return d
}

// Deprecated marks the task type. Warn mode logs and proceeds; error mode
// panics on any invocation before a Result exists, since using a withdrawn
// task type is a wiring error rather than a runtime outcome.
func (d *Definition) Deprecated(mode DeprecationMode) *Definition {
	d.deprecation = mode
	return d
}

// Coercions overrides the coercion registry used for parameter resolution.
func (d *Definition) Coercions(reg *param.CoercionRegistry) *Definition {
	d.coercions = reg
	return d
}

// Validators overrides the validator registry used for parameter resolution.
func (d *Definition) Validators(reg *param.ValidatorRegistry) *Definition {
	d.validators = reg
	return d
}

// flatten resolves the ancestor chain root-to-leaf exactly once.
func (d *Definition) flatten() *flatDefinition {
	d.flatOnce.Do(func() {
		flat := &flatDefinition{hooks: make(map[HookPoint][]hookEntry)}
		for _, ancestor := range d.ancestry() {
			flat.params = append(flat.params, ancestor.params...)
			flat.middleware = append(flat.middleware, ancestor.middleware...)
			for point, entries := range ancestor.hooks {
				flat.hooks[point] = append(flat.hooks[point], entries...)
			}
			if ancestor.hasHaltOn {
				flat.haltOn = ancestor.haltOn
				flat.hasHaltOn = true
			}
			if ancestor.retry != nil {
				flat.retry = ancestor.retry
			}
			if ancestor.deprecation != DeprecationNone {
				flat.deprecation = ancestor.deprecation
			}
			if ancestor.coercions != nil {
				flat.coercions = ancestor.coercions
			}
			if ancestor.validators != nil {
				flat.validators = ancestor.validators
			}
		}
		d.flat = flat
	})
	return d.flat
}

// ancestry lists the definition chain root first.
func (d *Definition) ancestry() []*Definition {
	var chain []*Definition
	for cur := d; cur != nil; cur = cur.parent {
		chain = append([]*Definition{cur}, chain...)
	}
	return chain
}
