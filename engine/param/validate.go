package param

import (
	"fmt"
	"reflect"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/compozy/taskrun/engine/core"
)

// ValidatorFunc checks a coerced value against rule options and returns a
// human-readable error on failure.
type ValidatorFunc func(value any, opts map[string]any) error

// ValidatorRegistry maps rule names to validators. The zero set covers the
// built-in rules; callers register domain rules on top.
type ValidatorRegistry struct {
	mu sync.RWMutex
	m  map[string]ValidatorFunc
}

// NewValidatorRegistry builds a registry pre-loaded with the built-in rules.
func NewValidatorRegistry() *ValidatorRegistry {
	r := &ValidatorRegistry{m: make(map[string]ValidatorFunc)}
	r.Register("format", validateFormat)
	r.Register("inclusion", validateInclusion)
	r.Register("exclusion", validateExclusion)
	r.Register("length", validateLength)
	r.Register("numeric", validateNumeric)
	r.Register("tag", newTagValidator())
	return r
}

func (r *ValidatorRegistry) Register(name string, fn ValidatorFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[name] = fn
}

func (r *ValidatorRegistry) Lookup(name string) (ValidatorFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.m[name]
	return fn, ok
}

// Validate runs the named rule. Unknown rule names are declaration errors.
func (r *ValidatorRegistry) Validate(name string, value any, opts map[string]any) error {
	fn, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown validator %q", name)
	}
	return fn(value, opts)
}

// -----------------------------------------------------------------------------
// Built-in validators
// -----------------------------------------------------------------------------

func validateFormat(value any, opts map[string]any) error {
	pattern, _ := opts["with"].(string)
	if pattern == "" {
		return fmt.Errorf("format rule requires a %q option", "with")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("format rule has an invalid pattern: %w", err)
	}
	if !re.MatchString(fmt.Sprintf("%v", value)) {
		return fmt.Errorf("does not match the expected format")
	}
	return nil
}

func validateInclusion(value any, opts map[string]any) error {
	allowed, _ := opts["in"].([]any)
	for _, candidate := range allowed {
		if reflect.DeepEqual(value, candidate) {
			return nil
		}
	}
	return fmt.Errorf("is not included in the allowed values")
}

func validateExclusion(value any, opts map[string]any) error {
	denied, _ := opts["not_in"].([]any)
	for _, candidate := range denied {
		if reflect.DeepEqual(value, candidate) {
			return fmt.Errorf("is reserved")
		}
	}
	return nil
}

func validateLength(value any, opts map[string]any) error {
	length := -1
	switch t := value.(type) {
	case string:
		length = len(t)
	case []any:
		length = len(t)
	case map[string]any:
		length = len(t)
	default:
		return fmt.Errorf("has no measurable length")
	}
	if minLen, ok := core.ParseAnyInt(opts["min"]); ok && length < minLen {
		return fmt.Errorf("is too short (minimum is %d)", minLen)
	}
	if maxLen, ok := core.ParseAnyInt(opts["max"]); ok && length > maxLen {
		return fmt.Errorf("is too long (maximum is %d)", maxLen)
	}
	return nil
}

func validateNumeric(value any, opts map[string]any) error {
	f, ok := core.ParseAnyFloat(value)
	if !ok {
		return fmt.Errorf("is not a number")
	}
	if minVal, ok := core.ParseAnyFloat(opts["min"]); ok && f < minVal {
		return fmt.Errorf("must be greater than or equal to %v", minVal)
	}
	if maxVal, ok := core.ParseAnyFloat(opts["max"]); ok && f > maxVal {
		return fmt.Errorf("must be less than or equal to %v", maxVal)
	}
	return nil
}

// newTagValidator adapts go-playground tag rules ("email", "min=3,max=64",
// "url") as a registry validator under opts["rule"].
func newTagValidator() ValidatorFunc {
	validate := validator.New()
	return func(value any, opts map[string]any) error {
		rule, _ := opts["rule"].(string)
		if rule == "" {
			return fmt.Errorf("tag rule requires a %q option", "rule")
		}
		if err := validate.Var(value, rule); err != nil {
			return fmt.Errorf("is invalid (%s)", rule)
		}
		return nil
	}
}
