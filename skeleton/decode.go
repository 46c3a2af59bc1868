package skeleton

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Decode parses a JSON or YAML document into an ordered mapping.
//
// JSON is attempted first; YAML is used only if the data is not a single
// well-formed JSON value. The document root must be a mapping. Mapping key
// order is preserved at every level. JSON numbers and YAML floats written
// as JSON numbers are kept as json.Number, and zero-padded YAML integers
// such as 01 are kept as their literal string, so values survive decoding
// with their original text. YAML merge keys (<<) are resolved.
func Decode(data []byte) (*Mapping, error) {
	v, jsonErr := decodeJSON(data)
	if jsonErr != nil {
		var yamlErr error
		v, yamlErr = decodeYAML(data)
		if yamlErr != nil {
			return nil, fmt.Errorf("%w: not JSON (%v) and not YAML (%v)", ErrMalformedConfig, jsonErr, yamlErr)
		}
	}
	m, ok := v.(*Mapping)
	if !ok {
		return nil, fmt.Errorf("%w: document root is %s, want mapping", ErrMalformedConfig, kindOf(v))
	}
	return m, nil
}

// DecodeFile reads path and decodes it with [Decode].
func DecodeFile(path string) (*Mapping, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided config
	if err != nil {
		return nil, err
	}
	m, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

var errTrailingData = errors.New("trailing data after JSON value")

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := readJSON(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return v, nil
}

func readJSON(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		m := NewMapping()
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := kt.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", kt)
			}
			v, err := readJSON(dec)
			if err != nil {
				return nil, err
			}
			m.Set(key, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return m, nil
	case '[':
		list := make([]any, 0)
		for dec.More() {
			v, err := readJSON(dec)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", rune(delim))
	}
}

func decodeYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return fromNode(&doc)
}

func fromNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromNode(n.Content[0])
	case yaml.MappingNode:
		m := NewMapping()
		// merged keys come first; explicit keys override their values
		for i := 0; i+1 < len(n.Content); i += 2 {
			if k := n.Content[i]; isMergeKey(k) {
				if err := mergeInto(m, n.Content[i+1]); err != nil {
					return nil, err
				}
			}
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if isMergeKey(k) {
				continue
			}
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping key must be a scalar", k.Line)
			}
			val, err := fromNode(v)
			if err != nil {
				return nil, err
			}
			m.Set(k.Value, val)
		}
		return m, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			val, err := fromNode(item)
			if err != nil {
				return nil, err
			}
			list = append(list, val)
		}
		return list, nil
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.ScalarNode:
		return fromScalar(n)
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}

func isMergeKey(k *yaml.Node) bool {
	return k.Kind == yaml.ScalarNode && k.ShortTag() == "!!merge"
}

// mergeInto applies a << value: a mapping or a sequence of mappings,
// usually aliases. Earlier mappings in a sequence take precedence.
func mergeInto(m *Mapping, v *yaml.Node) error {
	if v.Kind == yaml.AliasNode {
		v = v.Alias
	}
	switch v.Kind {
	case yaml.MappingNode:
		src, err := fromNode(v)
		if err != nil {
			return err
		}
		for pair := src.(*Mapping).Oldest(); pair != nil; pair = pair.Next() {
			m.Set(pair.Key, pair.Value)
		}
		return nil
	case yaml.SequenceNode:
		for i := len(v.Content) - 1; i >= 0; i-- {
			item := v.Content[i]
			if item.Kind == yaml.AliasNode {
				item = item.Alias
			}
			if item.Kind != yaml.MappingNode {
				return fmt.Errorf("line %d: merge sequence items must be mappings", item.Line)
			}
			if err := mergeInto(m, item); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("line %d: merge value must be a mapping or a sequence of mappings", v.Line)
	}
}

func fromScalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!str", "!!timestamp", "!!binary":
		return n.Value, nil
	case "!!null":
		return nil, nil
	case "!!int", "!!float":
		if zeroPadded(n.Value) {
			return n.Value, nil
		}
		if n.ShortTag() == "!!float" && json.Valid([]byte(n.Value)) {
			// keep the literal, as JSON input does
			return json.Number(n.Value), nil
		}
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return v, nil
}

// zeroPadded reports whether s is an all-digit literal with a leading zero.
func zeroPadded(s string) bool {
	if len(s) < 2 || s[0] != '0' {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "empty"
	case *Mapping:
		return "mapping"
	case []any:
		return "sequence"
	default:
		return "scalar"
	}
}
