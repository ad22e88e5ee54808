package result

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_IndexMonotonicity(t *testing.T) {
	t.Run("Should assign indices in append order and never reuse them", func(t *testing.T) {
		chain := NewChain()
		var appended []*Result
		for i := 0; i < 5; i++ {
			res := New(fmt.Sprintf("task-%d", i))
			require.NoError(t, res.Start())
			require.NoError(t, res.Finalize(chain))
			appended = append(appended, res)
		}

		results := chain.Results()
		require.Len(t, results, 5)
		for i, res := range results {
			assert.Equal(t, i, res.Index())
			assert.Same(t, appended[i], res)
		}
	})

	t.Run("Should assign unique indices under concurrent finalization", func(t *testing.T) {
		chain := NewChain()
		const members = 16
		results := make([]*Result, members)
		for i := range results {
			res := New(fmt.Sprintf("member-%d", i))
			require.NoError(t, res.Start())
			results[i] = res
		}

		var wg sync.WaitGroup
		for _, res := range results {
			wg.Add(2)
			go func(res *Result) {
				defer wg.Done()
				assert.NoError(t, res.Finalize(chain))
			}(res)
			go func(res *Result) {
				defer wg.Done()
				res.Index()
			}(res)
		}
		wg.Wait()

		assert.Equal(t, members, chain.Len())
		seen := make(map[int]bool, members)
		for _, res := range results {
			idx := res.Index()
			assert.GreaterOrEqual(t, idx, 0)
			assert.Less(t, idx, members)
			assert.False(t, seen[idx])
			seen[idx] = true
		}
	})
}

func TestChain_Accessors(t *testing.T) {
	t.Run("Should expose id, first and last", func(t *testing.T) {
		chain := NewChain()
		assert.NotEmpty(t, chain.ID())
		assert.Nil(t, chain.First())
		assert.Nil(t, chain.Last())
		assert.Equal(t, 0, chain.Len())

		first := New("first")
		require.NoError(t, first.Start())
		require.NoError(t, first.Finalize(chain))
		last := New("last")
		require.NoError(t, last.Start())
		require.NoError(t, last.Finalize(chain))

		assert.Same(t, first, chain.First())
		assert.Same(t, last, chain.Last())
		assert.Equal(t, 2, chain.Len())
	})

	t.Run("Should hand out a copy of the result list", func(t *testing.T) {
		chain := NewChain()
		res := New("only")
		require.NoError(t, res.Start())
		require.NoError(t, res.Finalize(chain))

		results := chain.Results()
		results[0] = nil
		assert.Same(t, res, chain.First())
	})
}
