package param

import (
	"fmt"

	"github.com/compozy/taskrun/engine/core"
)

// Values holds the parameters resolved for one task execution, cached for the
// duration of that execution.
type Values map[string]any

func (v Values) Get(name string) (any, bool) {
	val, ok := v[name]
	return val, ok
}

// ResolutionError aggregates every per-parameter failure of one resolution
// pass: resolution never short-circuits at the first bad parameter.
type ResolutionError struct {
	Messages map[string][]string
	reason   string
}

func (e *ResolutionError) Error() string {
	return e.reason
}

// Metadata shapes the failure the way the executor records it on the Result.
func (e *ResolutionError) Metadata() core.Metadata {
	messages := make(map[string]any, len(e.Messages))
	for name, msgs := range e.Messages {
		list := make([]any, len(msgs))
		for i, m := range msgs {
			list[i] = m
		}
		messages[name] = list
	}
	return core.Metadata{
		core.MetaReason:   e.reason,
		core.MetaMessages: messages,
	}
}

// Lookup is the raw-value source parameters are resolved against.
type Lookup func(key string) (any, bool)

// Resolver resolves declared parameters against a lookup source, delegating
// type conversion to the coercion registry and rule checks to the validator
// registry.
type Resolver struct {
	coercions  *CoercionRegistry
	validators *ValidatorRegistry
}

// NewResolver builds a Resolver. Nil registries fall back to the built-ins.
func NewResolver(coercions *CoercionRegistry, validators *ValidatorRegistry) *Resolver {
	if coercions == nil {
		coercions = NewCoercionRegistry()
	}
	if validators == nil {
		validators = NewValidatorRegistry()
	}
	return &Resolver{coercions: coercions, validators: validators}
}

// Resolve processes every definition in declaration order, collecting all
// errors before reporting. On failure the returned *ResolutionError carries a
// messages map with one entry per offending parameter.
func (r *Resolver) Resolve(lookup Lookup, defs []*Definition) (Values, *ResolutionError) {
	values := make(Values, len(defs))
	collector := newErrorCollector()
	scope := &resolutionScope{lookup: lookup, values: values}
	r.resolveInto(lookup, defs, "", values, scope, collector)
	if err := collector.toError(); err != nil {
		return nil, err
	}
	return values, nil
}

func (r *Resolver) resolveInto(
	lookup Lookup,
	defs []*Definition,
	prefix string,
	values Values,
	scope Scope,
	collector *errorCollector,
) {
	for _, def := range defs {
		key := prefix + def.Name
		raw, present := lookup(def.lookupKey())
		if !present {
			var ok bool
			raw, ok = r.applyDefault(def, scope, key, collector)
			if !ok {
				continue
			}
		}
		coerced, err := r.coercions.Coerce(def.Type, raw, def.Opts)
		if err != nil {
			collector.add(key, err.Error())
			continue
		}
		for _, rule := range def.Rules {
			if err := r.validators.Validate(rule.Name, coerced, rule.Opts); err != nil {
				msg := rule.Message
				if msg == "" {
					msg = err.Error()
				}
				collector.add(key, msg)
			}
		}
		values[def.Name] = coerced
		if len(def.Children) > 0 {
			r.resolveChildren(def, coerced, key, values, collector)
		}
	}
}

// applyDefault fills in the static or deferred default, reporting presence
// errors for required parameters without one. The second return is false when
// the parameter stays unresolved.
func (r *Resolver) applyDefault(def *Definition, scope Scope, key string, collector *errorCollector) (any, bool) {
	if def.DefaultFn != nil {
		v, err := def.DefaultFn(scope)
		if err != nil {
			collector.add(key, fmt.Sprintf("default could not be computed: %s", err))
			return nil, false
		}
		return v, true
	}
	if def.HasDefault {
		return def.Default, true
	}
	if def.Required {
		collector.add(key, "is required")
	}
	return nil, false
}

// resolveChildren recurses into a composite parameter, resolving child
// definitions against the coerced composite value.
func (r *Resolver) resolveChildren(def *Definition, coerced any, key string, values Values, collector *errorCollector) {
	composite, err := DecodeMap(coerced)
	if err != nil {
		collector.add(key, (&CoercionError{Type: TypeMap}).Error())
		return
	}
	childLookup := func(k string) (any, bool) {
		v, ok := composite[k]
		return v, ok
	}
	childValues := make(Values, len(def.Children))
	childScope := &resolutionScope{lookup: childLookup, values: childValues}
	r.resolveInto(childLookup, def.Children, key+".", childValues, childScope, collector)
	for name, v := range childValues {
		values[def.Name+"."+name] = v
	}
}

// -----------------------------------------------------------------------------
// Scope and error collection
// -----------------------------------------------------------------------------

type resolutionScope struct {
	lookup Lookup
	values Values
}

func (s *resolutionScope) Resolved(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

func (s *resolutionScope) Raw(key string) (any, bool) {
	return s.lookup(key)
}

type errorCollector struct {
	messages map[string][]string
	order    []string
}

func newErrorCollector() *errorCollector {
	return &errorCollector{messages: make(map[string][]string)}
}

func (c *errorCollector) add(key, msg string) {
	if _, seen := c.messages[key]; !seen {
		c.order = append(c.order, key)
	}
	c.messages[key] = append(c.messages[key], msg)
}

func (c *errorCollector) toError() *ResolutionError {
	if len(c.messages) == 0 {
		return nil
	}
	first := c.order[0]
	reason := fmt.Sprintf("%s %s", first, c.messages[first][0])
	return &ResolutionError{Messages: c.messages, reason: reason}
}
