package result

import (
	"sync"

	"github.com/google/uuid"
)

// Chain is the ordered, append-only list of Results produced during one root
// call tree. It is shared by reference across nested task calls; appends are
// synchronized so a concurrent group runner stays correct.
type Chain struct {
	id      string
	mu      sync.Mutex
	results []*Result
}

func NewChain() *Chain {
	return &Chain{id: uuid.NewString()}
}

func (c *Chain) ID() string {
	return c.id
}

// append adds r and returns its permanent index.
func (c *Chain) append(r *Result) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
	return len(c.results) - 1
}

func (c *Chain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

// Results returns a copy of the appended Results in order.
func (c *Chain) Results() []*Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Result, len(c.results))
	copy(out, c.results)
	return out
}

func (c *Chain) First() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.results) == 0 {
		return nil
	}
	return c.results[0]
}

func (c *Chain) Last() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.results) == 0 {
		return nil
	}
	return c.results[len(c.results)-1]
}
