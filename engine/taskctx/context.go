package taskctx

import (
	"context"
	"sync"

	"github.com/mohae/deepcopy"

	"github.com/compozy/taskrun/engine/result"
)

// Context is the mutable key/value bag shared by reference through a task and
// all its descendants within one root call tree. Mutations by any task are
// visible to every task holding the same instance. It also carries the Chain
// so nested calls append to the same Result list.
type Context struct {
	mu     sync.RWMutex
	values map[string]any
	chain  *result.Chain
}

// New builds an empty Context with a fresh Chain.
func New() *Context {
	return &Context{
		values: make(map[string]any),
		chain:  result.NewChain(),
	}
}

// NewWithInput builds a Context pre-populated with the given input values.
func NewWithInput(input map[string]any) *Context {
	c := New()
	c.MergeInput(input)
	return c
}

func (c *Context) Chain() *result.Chain {
	return c.chain
}

func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// MergeInput overlays the given values onto the bag, overriding existing keys.
func (c *Context) MergeInput(input map[string]any) {
	if len(input) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range input {
		c.values[k] = v
	}
}

// Snapshot returns a deep copy of the current values, safe to inspect while
// other tasks keep mutating the bag.
func (c *Context) Snapshot() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	copied, ok := deepcopy.Copy(c.values).(map[string]any)
	if !ok {
		out := make(map[string]any, len(c.values))
		for k, v := range c.values {
			out[k] = v
		}
		return out
	}
	return copied
}

func (c *Context) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}

// -----------------------------------------------------------------------------
// context.Context plumbing
// -----------------------------------------------------------------------------

type ctxKey struct{}

// WithContext attaches the shared bag to a context.Context so nested task
// invocations join the same call tree.
func WithContext(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the bag attached to ctx, or nil when the call is a root
// invocation.
func FromContext(ctx context.Context) *Context {
	if c, ok := ctx.Value(ctxKey{}).(*Context); ok {
		return c
	}
	return nil
}
