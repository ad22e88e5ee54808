package param

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/compozy/taskrun/engine/core"
)

// Built-in coercion type names.
const (
	TypeAny      = "any"
	TypeString   = "string"
	TypeInteger  = "integer"
	TypeFloat    = "float"
	TypeBoolean  = "boolean"
	TypeDuration = "duration"
	TypeTime     = "time"
	TypeMap      = "map"
	TypeSlice    = "slice"
)

// CoercerFunc converts a raw value into the declared type, or reports why it
// cannot.
type CoercerFunc func(value any, opts map[string]any) (any, error)

// CoercionError is raised when a raw value cannot be converted into the
// declared parameter type.
type CoercionError struct {
	Type string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("could not coerce into %s %s", article(e.Type), e.Type)
}

func article(word string) string {
	switch {
	case word == "":
		return "a"
	case strings.ContainsRune("aeiou", rune(word[0])):
		return "an"
	default:
		return "a"
	}
}

// CoercionRegistry maps type names to coercers. The zero set covers the
// built-in scalar and composite types; callers register domain types on top.
type CoercionRegistry struct {
	mu sync.RWMutex
	m  map[string]CoercerFunc
}

// NewCoercionRegistry builds a registry pre-loaded with the built-in types.
func NewCoercionRegistry() *CoercionRegistry {
	r := &CoercionRegistry{m: make(map[string]CoercerFunc)}
	r.Register(TypeAny, coerceAny)
	r.Register(TypeString, coerceString)
	r.Register(TypeInteger, coerceInteger)
	r.Register(TypeFloat, coerceFloat)
	r.Register(TypeBoolean, coerceBoolean)
	r.Register(TypeDuration, coerceDuration)
	r.Register(TypeTime, coerceTime)
	r.Register(TypeMap, coerceMap)
	r.Register(TypeSlice, coerceSlice)
	return r
}

func (r *CoercionRegistry) Register(name string, fn CoercerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[name] = fn
}

func (r *CoercionRegistry) Lookup(name string) (CoercerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.m[name]
	return fn, ok
}

// Coerce converts value into the named type. An empty or unknown type name is
// an error so typos in declarations surface immediately.
func (r *CoercionRegistry) Coerce(name string, value any, opts map[string]any) (any, error) {
	if name == "" {
		name = TypeAny
	}
	fn, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown coercion type %q", name)
	}
	return fn(value, opts)
}

// -----------------------------------------------------------------------------
// Built-in coercers
// -----------------------------------------------------------------------------

func coerceAny(value any, _ map[string]any) (any, error) {
	return value, nil
}

func coerceString(value any, _ map[string]any) (any, error) {
	switch t := value.(type) {
	case string:
		return t, nil
	case fmt.Stringer:
		return t.String(), nil
	case int, int32, int64, float32, float64, bool:
		return fmt.Sprintf("%v", t), nil
	default:
		return nil, &CoercionError{Type: TypeString}
	}
}

func coerceInteger(value any, _ map[string]any) (any, error) {
	if i, ok := core.ParseAnyInt(value); ok {
		return i, nil
	}
	return nil, &CoercionError{Type: TypeInteger}
}

func coerceFloat(value any, _ map[string]any) (any, error) {
	if f, ok := core.ParseAnyFloat(value); ok {
		return f, nil
	}
	return nil, &CoercionError{Type: TypeFloat}
}

func coerceBoolean(value any, _ map[string]any) (any, error) {
	if b, ok := core.ParseAnyBool(value); ok {
		return b, nil
	}
	return nil, &CoercionError{Type: TypeBoolean}
}

func coerceDuration(value any, _ map[string]any) (any, error) {
	if d, ok := core.ParseAnyDuration(value); ok {
		return d, nil
	}
	return nil, &CoercionError{Type: TypeDuration}
}

func coerceTime(value any, opts map[string]any) (any, error) {
	layout := time.RFC3339
	if l, ok := opts["layout"].(string); ok && l != "" {
		layout = l
	}
	switch t := value.(type) {
	case time.Time:
		return t, nil
	case string:
		parsed, err := time.Parse(layout, t)
		if err != nil {
			return nil, &CoercionError{Type: TypeTime}
		}
		return parsed, nil
	default:
		return nil, &CoercionError{Type: TypeTime}
	}
}

func coerceMap(value any, _ map[string]any) (any, error) {
	out, err := DecodeMap(value)
	if err != nil {
		return nil, &CoercionError{Type: TypeMap}
	}
	return out, nil
}

func coerceSlice(value any, _ map[string]any) (any, error) {
	switch t := value.(type) {
	case []any:
		return t, nil
	case []string:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = v
		}
		return out, nil
	default:
		return nil, &CoercionError{Type: TypeSlice}
	}
}

// DecodeMap converts structured input (maps or structs) into map[string]any
// with weak typing, the same way configs are decoded from raw documents.
func DecodeMap(value any) (map[string]any, error) {
	if m, ok := value.(map[string]any); ok {
		return m, nil
	}
	var out map[string]any
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(value); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeTo converts structured input into a typed value with weak typing.
func DecodeTo[T any](value any) (T, error) {
	var out T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return out, err
	}
	return out, decoder.Decode(value)
}
