package task

import (
	"context"
	"fmt"

	"github.com/compozy/taskrun/engine/core"
	"github.com/compozy/taskrun/engine/param"
	"github.com/compozy/taskrun/engine/result"
	"github.com/compozy/taskrun/engine/taskctx"
	"github.com/compozy/taskrun/pkg/config"
	"github.com/compozy/taskrun/pkg/logger"
)

// DeprecatedTaskError is the panic value raised when a task marked
// deprecated-with-enforcement is invoked. It bypasses Result capture
// entirely: using a withdrawn task type is a wiring error, not a runtime
// outcome.
type DeprecatedTaskError struct {
	Task string
}

func (e *DeprecatedTaskError) Error() string {
	return fmt.Sprintf("task %s is deprecated and can no longer be called", e.Task)
}

// Executor orchestrates the full lifecycle of one task invocation: hooks,
// middleware, parameter resolution, business logic, interrupt normalization,
// finalization and the halt decision.
type Executor struct {
	cfg            *config.Config
	defaultHaltOn  []core.StatusType
	defaultRetry   *RetryPolicy
	defaultTimeout Middleware
}

// NewExecutor builds an Executor around the given configuration. A nil
// configuration falls back to config.Default().
func NewExecutor(cfg *config.Config) (*Executor, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	haltOn, err := ParseHaltStatuses(cfg.Task.HaltOn)
	if err != nil {
		return nil, fmt.Errorf("invalid halt configuration: %w", err)
	}
	e := &Executor{
		cfg:           cfg,
		defaultHaltOn: haltOn,
		defaultRetry:  RetryPolicyFromConfig(&cfg.Retry),
	}
	if cfg.Task.Timeout > 0 {
		e.defaultTimeout = Timeout(cfg.Task.Timeout)
	}
	return e, nil
}

// MustNewExecutor is NewExecutor for static configuration.
func MustNewExecutor(cfg *config.Config) *Executor {
	e, err := NewExecutor(cfg)
	if err != nil {
		panic(err)
	}
	return e
}

var defaultExecutor = MustNewExecutor(nil)

// Run is the non-raising entry point: it always returns a finalized Result
// and never an error, whatever the outcome.
func Run(ctx context.Context, t Task, input map[string]any) *result.Result {
	return defaultExecutor.Run(ctx, t, input)
}

// RunE is the raising entry point: it returns the Result and, when the
// status lands in the effective halting set, a status-specific fault.
func RunE(ctx context.Context, t Task, input map[string]any) (*result.Result, error) {
	return defaultExecutor.RunE(ctx, t, input)
}

func (e *Executor) Run(ctx context.Context, t Task, input map[string]any) *result.Result {
	return e.execute(ctx, t, input)
}

func (e *Executor) RunE(ctx context.Context, t Task, input map[string]any) (*result.Result, error) {
	res := e.execute(ctx, t, input)
	haltOn := e.defaultHaltOn
	if flat := definitionOf(t).flatten(); flat.hasHaltOn {
		haltOn = flat.haltOn
	}
	if err := EvaluateHalt(res, haltOn); err != nil {
		return res, err
	}
	return res, nil
}

// execute runs the full lifecycle protocol. The Result it returns is always
// terminal.
func (e *Executor) execute(ctx context.Context, t Task, input map[string]any) *result.Result {
	flat := definitionOf(t).flatten()
	e.checkDeprecation(ctx, t, flat)

	tc := taskctx.FromContext(ctx)
	if tc == nil {
		tc = taskctx.New()
	}
	tc.MergeInput(input)
	ctx = taskctx.WithContext(ctx, tc)

	res := result.New(t.Name())
	fr := &Frame{task: t, tctx: tc, res: res}

	// initialized → executing
	if err := res.Start(); err != nil {
		panic(fmt.Sprintf("task %s: %v", t.Name(), err))
	}
	runHooks(ctx, flat.hooks[HookBeforeExecution], fr)
	runHooks(ctx, flat.hooks[HookOnExecuting], fr)

	if e.resolveParams(ctx, flat, fr) {
		e.invoke(ctx, t, flat, fr)
	}

	if err := res.Finalize(tc.Chain()); err != nil {
		panic(fmt.Sprintf("task %s: %v", t.Name(), err))
	}

	e.runOutcomeHooks(ctx, flat, fr)
	runHooks(ctx, flat.hooks[HookAfterExecution], fr)
	e.emit(ctx, res)
	return res
}

func (e *Executor) checkDeprecation(ctx context.Context, t Task, flat *flatDefinition) {
	switch flat.deprecation {
	case DeprecationError:
		panic(&DeprecatedTaskError{Task: t.Name()})
	case DeprecationWarn:
		logger.FromContext(ctx).Warn("task is deprecated", "task", t.Name())
	}
}

// resolveParams resolves declared parameters against the Context. On failure
// the Result is failed with the aggregated messages and the business logic is
// skipped; the return reports whether execution may continue.
func (e *Executor) resolveParams(ctx context.Context, flat *flatDefinition, fr *Frame) bool {
	runHooks(ctx, flat.hooks[HookBeforeValidation], fr)
	if len(flat.params) == 0 {
		runHooks(ctx, flat.hooks[HookAfterValidation], fr)
		return true
	}
	resolver := param.NewResolver(flat.coercions, flat.validators)
	values, rerr := resolver.Resolve(fr.tctx.Get, flat.params)
	if rerr != nil {
		if err := fr.res.Fail(rerr.Metadata()); err != nil {
			panic(fmt.Sprintf("task %s: %v", fr.task.Name(), err))
		}
		return false
	}
	fr.params = values
	runHooks(ctx, flat.hooks[HookAfterValidation], fr)
	return true
}

// invoke runs the business logic inside the middleware chain and classifies
// the outcome onto the Result.
func (e *Executor) invoke(ctx context.Context, t Task, flat *flatDefinition, fr *Frame) {
	policy := flat.retry
	if policy == nil {
		policy = e.defaultRetry
	}
	logic := func(ctx context.Context) error {
		return policy.run(ctx, func(ctx context.Context) error {
			return callLogic(ctx, t, fr)
		})
	}
	middleware := flat.middleware
	if e.defaultTimeout != nil {
		middleware = append([]Middleware{e.defaultTimeout}, middleware...)
	}
	err := chainMiddleware(middleware, fr, logic)(ctx)
	e.applyOutcome(fr, err)
}

// callLogic invokes the task body, converting panics into errors so they can
// be normalized (and retried) like any other failure.
func callLogic(ctx context.Context, t Task, fr *Frame) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return t.Execute(ctx, fr)
}

// applyOutcome maps the logic's return onto the Result: nil stays success,
// interrupts apply their status, anything else is normalized into a failure.
func (e *Executor) applyOutcome(fr *Frame, err error) {
	if err == nil {
		return
	}
	var applyErr error
	if i, ok := asInterrupt(err); ok {
		switch {
		case i.isThrow:
			applyErr = fr.res.AdoptThrow(i.thrown, i.meta)
			if applyErr != nil {
				// Throwing a good or nil result is a business-logic mistake,
				// recorded as a failure like any other.
				applyErr = fr.res.Fail(core.Metadata{core.MetaReason: applyErr.Error()})
			}
		case i.status == core.StatusSkipped:
			applyErr = fr.res.Skip(i.meta)
		default:
			applyErr = fr.res.Fail(i.meta)
		}
	} else {
		applyErr = fr.res.Fail(normalizeError(err))
	}
	if applyErr != nil {
		panic(fmt.Sprintf("task %s: %v", fr.task.Name(), applyErr))
	}
}

// normalizeError shapes an uncaught error into failure metadata preserving
// the original value.
func normalizeError(err error) core.Metadata {
	if p, ok := err.(*panicError); ok {
		return core.Metadata{
			core.MetaReason:        fmt.Sprintf("[panic] %v", p.value),
			core.MetaOriginalError: p.value,
			core.MetaError:         core.NewError(p, "panic", nil).AsMap(),
		}
	}
	return core.Metadata{
		core.MetaReason:        fmt.Sprintf("[%T] %s", err, err.Error()),
		core.MetaOriginalError: err,
		core.MetaError:         core.NewError(err, "uncaught", nil).AsMap(),
	}
}

// runOutcomeHooks fires the terminal callbacks in the fixed order: state,
// executed, status, then outcome class (skipped is both good and bad).
func (e *Executor) runOutcomeHooks(ctx context.Context, flat *flatDefinition, fr *Frame) {
	res := fr.res
	if res.State() == core.StateComplete {
		runHooks(ctx, flat.hooks[HookOnComplete], fr)
	} else {
		runHooks(ctx, flat.hooks[HookOnInterrupted], fr)
	}
	runHooks(ctx, flat.hooks[HookOnExecuted], fr)
	switch res.Status() {
	case core.StatusSuccess:
		runHooks(ctx, flat.hooks[HookOnSuccess], fr)
	case core.StatusSkipped:
		runHooks(ctx, flat.hooks[HookOnSkipped], fr)
	case core.StatusFailed:
		runHooks(ctx, flat.hooks[HookOnFailed], fr)
	}
	if res.Good() {
		runHooks(ctx, flat.hooks[HookOnGood], fr)
	}
	if res.Bad() {
		runHooks(ctx, flat.hooks[HookOnBad], fr)
	}
}

// emit writes the structured record for a finalized result. Severity tracks
// the status: success logs at info, skipped at warn, failed at error.
func (e *Executor) emit(ctx context.Context, res *result.Result) {
	log := logger.FromContext(ctx)
	record := res.AsMap()
	keyvals := make([]any, 0, len(record)*2)
	for k, v := range record {
		keyvals = append(keyvals, k, v)
	}
	switch res.Status() {
	case core.StatusSkipped:
		log.Warn("task executed", keyvals...)
	case core.StatusFailed:
		log.Error("task executed", keyvals...)
	default:
		log.Info("task executed", keyvals...)
	}
}
