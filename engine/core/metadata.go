package core

import (
	"fmt"

	"dario.cat/mergo"
	"github.com/mohae/deepcopy"
)

// Metadata is the open, string-keyed bag of values attached to a Result or
// Fault. Callers attach arbitrary domain data; the executor reserves only the
// Meta* keys declared in types.go.
type Metadata map[string]any

// NewMetadata builds a Metadata from alternating key/value pairs. A trailing
// key without a value is stored as nil.
func NewMetadata(kv ...any) Metadata {
	meta := make(Metadata, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kv[i])
		}
		if i+1 < len(kv) {
			meta[key] = kv[i+1]
		} else {
			meta[key] = nil
		}
	}
	return meta
}

// Merge overlays other onto m, overriding existing keys. Nested maps are
// merged recursively.
func (m Metadata) Merge(other Metadata) error {
	if other == nil {
		return nil
	}
	dst := map[string]any(m)
	if err := mergo.Merge(&dst, map[string]any(other), mergo.WithOverride); err != nil {
		return fmt.Errorf("failed to merge metadata: %w", err)
	}
	return nil
}

// Snapshot returns a deep copy, safe to hand to callers after finalization.
func (m Metadata) Snapshot() Metadata {
	if m == nil {
		return nil
	}
	copied, ok := deepcopy.Copy(map[string]any(m)).(map[string]any)
	if !ok {
		// deepcopy of map[string]any round-trips; this path is unreachable
		// for JSON-like values but kept explicit for exotic ones.
		out := make(Metadata, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out
	}
	return Metadata(copied)
}

// Reason returns the string under the "reason" key, if any.
func (m Metadata) Reason() string {
	if m == nil {
		return ""
	}
	if r, ok := m[MetaReason].(string); ok {
		return r
	}
	return ""
}
