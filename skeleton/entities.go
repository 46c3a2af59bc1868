package skeleton

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Entity is a single BIDS key-value label, such as acq-HASC55AP.
type Entity struct {
	Key   string
	Value string
}

// FormatEntities renders entities as a filename fragment.
//
// The result is empty for no entities, otherwise "_k1-v1_k2-v2" with the
// entities in the given order. Keys and values are not validated.
func FormatEntities(entities []Entity) string {
	if len(entities) == 0 {
		return ""
	}
	var b strings.Builder
	for _, e := range entities {
		b.WriteByte('_')
		b.WriteString(e.Key)
		b.WriteByte('-')
		b.WriteString(e.Value)
	}
	return b.String()
}

// Stringify converts a decoded scalar to its plain string form.
// json.Number keeps its literal text and booleans are lower case.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
