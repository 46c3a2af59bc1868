package skeleton

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Mapping is an insertion-ordered string-keyed map.
//
// Values are *Mapping, []any, or scalars (string, json.Number, int, float64,
// bool, nil). Mapping marshals to JSON with its keys in insertion order.
type Mapping = orderedmap.OrderedMap[string, any]

// NewMapping returns an empty Mapping.
func NewMapping() *Mapping {
	return orderedmap.New[string, any]()
}

// Clone returns a deep copy of a decoded value.
// Mappings and slices are copied recursively; scalars are returned as is.
func Clone(v any) any {
	switch t := v.(type) {
	case *Mapping:
		return CloneMapping(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Clone(item)
		}
		return out
	default:
		return v
	}
}

// CloneMapping returns a deep copy of m. A nil mapping yields nil.
func CloneMapping(m *Mapping) *Mapping {
	if m == nil {
		return nil
	}
	out := NewMapping()
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, Clone(pair.Value))
	}
	return out
}

// Keys returns the keys of m in insertion order.
func Keys(m *Mapping) []string {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// FromPairs builds a Mapping from alternating key/value arguments.
// It panics if a key is not a string; it is meant for literals in code and tests.
func FromPairs(kv ...any) *Mapping {
	m := NewMapping()
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i].(string), kv[i+1])
	}
	return m
}
