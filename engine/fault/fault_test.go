package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/taskrun/engine/core"
	"github.com/compozy/taskrun/engine/result"
)

func badResult(t *testing.T, name string, status core.StatusType, reason string) *result.Result {
	t.Helper()
	res := result.New(name)
	require.NoError(t, res.Start())
	meta := core.Metadata{core.MetaReason: reason}
	if status == core.StatusSkipped {
		require.NoError(t, res.Skip(meta))
	} else {
		require.NoError(t, res.Fail(meta))
	}
	require.NoError(t, res.Finalize(result.NewChain()))
	return res
}

func TestFromResult(t *testing.T) {
	t.Run("Should wrap a skipped result in a skip fault", func(t *testing.T) {
		res := badResult(t, "skipper", core.StatusSkipped, "later")
		err := FromResult(res)
		require.Error(t, err)

		var skipped *Skipped
		require.ErrorAs(t, err, &skipped)
		assert.Same(t, res, skipped.Result())
	})

	t.Run("Should wrap a failed result in a fail fault", func(t *testing.T) {
		res := badResult(t, "failer", core.StatusFailed, "broke")
		err := FromResult(res)
		require.Error(t, err)

		var failed *Failed
		require.ErrorAs(t, err, &failed)
		assert.Equal(t, "failer", failed.Task())
		assert.Equal(t, "broke", failed.Metadata().Reason())
	})

	t.Run("Should produce no fault for a successful result", func(t *testing.T) {
		res := result.New("winner")
		require.NoError(t, res.Start())
		require.NoError(t, res.Finalize(result.NewChain()))

		assert.NoError(t, FromResult(res))
		assert.Panics(t, func() {
			_ = MustFromResult(res)
		})
	})
}

func TestFault_BroadAndNarrowCatch(t *testing.T) {
	t.Run("Should match both subtypes through the shared fault", func(t *testing.T) {
		skipErr := MustFromResult(badResult(t, "skipper", core.StatusSkipped, "later"))
		failErr := MustFromResult(badResult(t, "failer", core.StatusFailed, "broke"))

		var f *Fault
		assert.True(t, errors.As(skipErr, &f))
		assert.True(t, errors.As(failErr, &f))
	})

	t.Run("Should not cross-match subtypes", func(t *testing.T) {
		skipErr := MustFromResult(badResult(t, "skipper", core.StatusSkipped, "later"))

		var failed *Failed
		assert.False(t, errors.As(skipErr, &failed))
	})

	t.Run("Should survive wrapping", func(t *testing.T) {
		failErr := MustFromResult(badResult(t, "failer", core.StatusFailed, "broke"))
		wrapped := fmt.Errorf("running batch: %w", failErr)

		var f *Fault
		require.True(t, errors.As(wrapped, &f))
		assert.Equal(t, "failer", f.Task())
	})
}

func TestMatches(t *testing.T) {
	t.Run("Should filter by originating task", func(t *testing.T) {
		err := MustFromResult(badResult(t, "billing", core.StatusFailed, "broke"))

		assert.True(t, Matches(err, MatchTask("billing")))
		assert.True(t, Matches(err, MatchTask("shipping", "billing")))
		assert.False(t, Matches(err, MatchTask("shipping")))
	})

	t.Run("Should filter by result predicate", func(t *testing.T) {
		err := MustFromResult(badResult(t, "billing", core.StatusFailed, "card declined"))

		declined := MatchResult(func(res *result.Result) bool {
			return res.Reason() == "card declined"
		})
		assert.True(t, Matches(err, declined))
		assert.False(t, Matches(err, declined, MatchTask("shipping")))
	})

	t.Run("Should reject non-fault errors", func(t *testing.T) {
		assert.False(t, Matches(errors.New("plain")))
		assert.Nil(t, As(errors.New("plain")))
	})
}
