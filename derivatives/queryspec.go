package derivatives

import (
	"fmt"
	"slices"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/meigma/simbids/layout"
)

// Selectors for the sections of the bundled query spec.
const (
	SelectDerivatives = "$.queries.derivatives"
	SelectTransforms  = "$.queries.transforms"
	SelectRaw         = "$.queries.raw"
)

// QuerySpec maps query names to entity queries.
type QuerySpec map[string]layout.Query

// Names returns the query names, sorted.
func (s QuerySpec) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LoadQuerySpec parses a JSON query spec and returns the object of named
// queries that the JSONPath selector points at.
func LoadQuerySpec(data []byte, selector string) (QuerySpec, error) {
	doc, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuerySpec, err)
	}
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid jsonpath %q: %v", ErrInvalidQuerySpec, selector, err)
	}
	results := x.Get(doc)
	if len(results) != 1 {
		return nil, fmt.Errorf("%w: %q selects %d values", ErrInvalidQuerySpec, selector, len(results))
	}
	obj, ok := results[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q does not select an object", ErrInvalidQuerySpec, selector)
	}

	spec := make(QuerySpec, len(obj))
	for name, v := range obj {
		q, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: query %q is not an object", ErrInvalidQuerySpec, name)
		}
		spec[name] = layout.Query(q)
	}
	return spec, nil
}
