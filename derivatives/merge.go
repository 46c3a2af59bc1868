package derivatives

import (
	"log/slog"

	"github.com/meigma/simbids/skeleton"
)

// Merge returns a copy of orig updated with the non-nil values of update.
//
// A key present with a non-nil value on both sides is merged one level
// deep when both values are mappings and replaced otherwise; each such key
// is logged. orig and update are not modified.
func Merge(orig, update *skeleton.Mapping, logger *slog.Logger) *skeleton.Mapping {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	out := skeleton.CloneMapping(orig)
	if out == nil {
		out = skeleton.NewMapping()
	}
	if update == nil {
		return out
	}
	for pair := update.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == nil {
			continue
		}
		value := skeleton.Clone(pair.Value)
		current, ok := out.Get(pair.Key)
		if !ok || current == nil {
			out.Set(pair.Key, value)
			continue
		}
		logger.Info("updating key", "key", pair.Key, "from", current, "to", value)
		dst, dstOK := current.(*skeleton.Mapping)
		src, srcOK := value.(*skeleton.Mapping)
		if !dstOK || !srcOK {
			out.Set(pair.Key, value)
			continue
		}
		for p := src.Oldest(); p != nil; p = p.Next() {
			dst.Set(p.Key, p.Value)
		}
	}
	return out
}
