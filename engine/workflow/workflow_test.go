package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/taskrun/engine/core"
	"github.com/compozy/taskrun/engine/fault"
	"github.com/compozy/taskrun/engine/task"
	"github.com/compozy/taskrun/engine/taskctx"
	"github.com/compozy/taskrun/pkg/logger"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	return logger.ContextWithLogger(context.Background(), logger.NewLogger(logger.TestConfig()))
}

func counting(name string, calls *[]string) task.Task {
	return task.Func(name, func(_ context.Context, _ *task.Frame) error {
		*calls = append(*calls, name)
		return nil
	})
}

func failing(name, reason string, calls *[]string) task.Task {
	return task.Func(name, func(_ context.Context, _ *task.Frame) error {
		*calls = append(*calls, name)
		return task.Fail(reason)
	})
}

func skipping(name, reason string, calls *[]string) task.Task {
	return task.Func(name, func(_ context.Context, _ *task.Frame) error {
		*calls = append(*calls, name)
		return task.Skip(reason)
	})
}

func TestWorkflow_Execute(t *testing.T) {
	t.Run("Should run every group in order on the happy path", func(t *testing.T) {
		ctx := testContext(t)
		var calls []string
		wf := New("checkout").
			Then(counting("reserve", &calls)).
			Then(counting("charge", &calls)).
			Then(counting("notify", &calls))

		res := task.Run(ctx, wf, nil)

		assert.True(t, res.Success())
		assert.Equal(t, []string{"reserve", "charge", "notify"}, calls)
	})

	t.Run("Should record every member in the same chain as the batch", func(t *testing.T) {
		ctx := testContext(t)
		var calls []string
		wf := New("checkout").
			Then(counting("reserve", &calls)).
			Then(counting("charge", &calls))

		res := task.Run(ctx, wf, nil)

		require.NotNil(t, res.Chain())
		assert.Equal(t, 3, res.Chain().Len())
		assert.Equal(t, "checkout", res.Chain().Last().Task())
	})

	t.Run("Should share one context bag across all members", func(t *testing.T) {
		ctx := testContext(t)
		writer := task.Func("writer", func(_ context.Context, fr *task.Frame) error {
			fr.Set("order_id", 42)
			return nil
		})
		var seen any
		reader := task.Func("reader", func(_ context.Context, fr *task.Frame) error {
			seen, _ = fr.Get("order_id")
			return nil
		})
		wf := New("pipeline").Then(writer).Then(reader)

		task.Run(ctx, wf, nil)
		assert.Equal(t, 42, seen)
	})

	t.Run("Should halt on failure and adopt the failing result", func(t *testing.T) {
		ctx := testContext(t)
		var calls []string
		wf := New("checkout").
			Then(counting("reserve", &calls)).
			Then(failing("charge", "card declined", &calls)).
			Then(counting("notify", &calls))

		res := task.Run(ctx, wf, nil)

		assert.Equal(t, []string{"reserve", "charge"}, calls)
		assert.True(t, res.Failed())
		assert.Equal(t, "card declined", res.Reason())
		require.NotNil(t, res.ThrewFailure())
		assert.Equal(t, "charge", res.ThrewFailure().Task())
		assert.Equal(t, "charge", res.CausedFailure().Task())
		assert.False(t, res.IsRootCause())
	})

	t.Run("Should continue past a skip under the default halt set", func(t *testing.T) {
		ctx := testContext(t)
		var calls []string
		wf := New("checkout").
			Then(skipping("dedupe", "already processed", &calls)).
			Then(counting("charge", &calls))

		res := task.Run(ctx, wf, nil)

		assert.Equal(t, []string{"dedupe", "charge"}, calls)
		assert.True(t, res.Success())
	})

	t.Run("Should halt on skip when the workflow says so", func(t *testing.T) {
		ctx := testContext(t)
		var calls []string
		wf := New("checkout", WithHaltOn(core.StatusSkipped, core.StatusFailed)).
			Then(skipping("dedupe", "already processed", &calls)).
			Then(counting("charge", &calls))

		res := task.Run(ctx, wf, nil)

		assert.Equal(t, []string{"dedupe"}, calls)
		assert.True(t, res.Skipped())
		assert.Equal(t, "already processed", res.Reason())
	})

	t.Run("Should ignore non-bad statuses in the halt set", func(t *testing.T) {
		ctx := testContext(t)
		var calls []string
		wf := New("checkout", WithHaltOn(core.StatusSuccess, core.StatusFailed)).
			Then(counting("reserve", &calls)).
			Then(counting("charge", &calls))

		res := task.Run(ctx, wf, nil)

		assert.True(t, res.Success())
		assert.Equal(t, []string{"reserve", "charge"}, calls)
	})

	t.Run("Should let a group override the halt set", func(t *testing.T) {
		ctx := testContext(t)
		var calls []string
		wf := New("cleanup").
			Then(failing("optional_sweep", "nothing to sweep", &calls), HaltOn()).
			Then(counting("report", &calls))

		res := task.Run(ctx, wf, nil)

		assert.Equal(t, []string{"optional_sweep", "report"}, calls)
		assert.True(t, res.Success())
	})

	t.Run("Should raise the adopted outcome through the raising entry point", func(t *testing.T) {
		ctx := testContext(t)
		var calls []string
		wf := New("checkout").
			Then(failing("charge", "card declined", &calls))

		res, err := task.RunE(ctx, wf, nil)

		require.Error(t, err)
		var failed *fault.Failed
		require.ErrorAs(t, err, &failed)
		assert.Same(t, res, fault.As(err).Result())
	})
}

func TestWorkflow_Conditions(t *testing.T) {
	flag := func(key string) Predicate {
		return func(tc *taskctx.Context) bool {
			v, _ := tc.Get(key)
			b, _ := v.(bool)
			return b
		}
	}

	t.Run("Should gate out a group and produce no results for it", func(t *testing.T) {
		ctx := testContext(t)
		var calls []string
		wf := New("checkout").
			Then(counting("charge", &calls)).
			Then(counting("gift_wrap", &calls), If(flag("gift"))).
			Then(counting("notify", &calls), Unless(flag("quiet")))

		res := task.Run(ctx, wf, map[string]any{"gift": false, "quiet": true})

		assert.Equal(t, []string{"charge"}, calls)
		assert.True(t, res.Success())
		assert.Equal(t, 2, res.Chain().Len())
	})

	t.Run("Should evaluate predicates against the live bag", func(t *testing.T) {
		ctx := testContext(t)
		var calls []string
		arm := task.Func("arm", func(_ context.Context, fr *task.Frame) error {
			calls = append(calls, "arm")
			fr.Set("gift", true)
			return nil
		})
		wf := New("checkout").
			Then(arm).
			Then(counting("gift_wrap", &calls), If(flag("gift")))

		task.Run(ctx, wf, nil)
		assert.Equal(t, []string{"arm", "gift_wrap"}, calls)
	})
}

func TestWorkflow_Groups(t *testing.T) {
	t.Run("Should run every member of a group before moving on", func(t *testing.T) {
		ctx := testContext(t)
		var calls []string
		wf := New("fanout").
			Group("side_effects", []task.Task{
				counting("email", &calls),
				counting("webhook", &calls),
			}).
			Then(counting("archive", &calls))

		res := task.Run(ctx, wf, nil)

		assert.True(t, res.Success())
		assert.Equal(t, []string{"email", "webhook", "archive"}, calls)
	})

	t.Run("Should halt inside a group without running its remaining members", func(t *testing.T) {
		ctx := testContext(t)
		var calls []string
		wf := New("fanout").
			Group("side_effects", []task.Task{
				failing("email", "smtp down", &calls),
				counting("webhook", &calls),
			})

		res := task.Run(ctx, wf, nil)

		assert.Equal(t, []string{"email"}, calls)
		assert.True(t, res.Failed())
	})
}

func TestWorkflow_Definition(t *testing.T) {
	t.Run("Should apply the attached definition to the batch itself", func(t *testing.T) {
		ctx := testContext(t)
		var hooks []string
		def := task.NewDefinition().
			BeforeExecution(func(_ context.Context, _ *task.Frame) {
				hooks = append(hooks, "before")
			}).
			OnFailed(func(_ context.Context, _ *task.Frame) {
				hooks = append(hooks, "failed")
			})
		var calls []string
		wf := New("checkout", WithDefinition(def)).
			Then(failing("charge", "card declined", &calls))

		task.Run(ctx, wf, nil)
		assert.Equal(t, []string{"before", "failed"}, hooks)
	})
}
