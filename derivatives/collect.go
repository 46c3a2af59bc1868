package derivatives

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/meigma/simbids/layout"
)

// anatPrefix marks queries for anatomical files, which may live at subject
// level or in any session.
const anatPrefix = "anat"

type collectConfig struct {
	allowMultiple bool
	logger        *slog.Logger
}

// CollectOption configures [Collect].
type CollectOption func(*collectConfig)

// CollectWithAllowMultiple returns every match instead of failing when a
// query matches more than one file.
func CollectWithAllowMultiple() CollectOption {
	return func(cfg *collectConfig) {
		cfg.allowMultiple = true
	}
}

// CollectWithLogger sets the logger. If not set, logging is disabled.
func CollectWithLogger(logger *slog.Logger) CollectOption {
	return func(cfg *collectConfig) {
		cfg.logger = logger
	}
}

// Collection maps query names to the matching file paths. A query without
// matches maps to nil.
type Collection map[string][]string

// Collect runs every query in spec against idx for the file described by
// entities, which must include the subject.
//
// Query values override entities. Queries named anat* only use the
// subject and session of entities: they match files in that session or
// without a session, then fall back to any session of the subject. When a
// query matches several files ErrMultipleMatches is returned, unless
// multiple matches are allowed or, for anat* queries, all matches come from
// the same session, in which case the first one is kept.
func Collect(ctx context.Context, idx *layout.Index, entities map[string]any, spec QuerySpec, opts ...CollectOption) (Collection, error) {
	cfg := collectConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}

	base := normalize(entities)
	subject, ok := base["sub"]
	if !ok || subject == nil {
		return nil, ErrMissingSubject
	}
	session := base["ses"]

	out := make(Collection, len(spec))
	for _, name := range spec.Names() {
		q := normalize(spec[name])
		anat := strings.HasPrefix(name, anatPrefix)

		var query layout.Query
		if anat {
			query = layout.Query{"sub": subject, "ses": []any{session, nil}}
			if session == nil {
				query["ses"] = nil
			}
			maps.Copy(query, q)
		} else {
			query = maps.Clone(base)
			maps.Copy(query, q)
		}

		files, err := idx.Get(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", name, err)
		}
		if anat && len(files) == 0 {
			query = layout.Query{"sub": subject, "ses": layout.Any}
			maps.Copy(query, q)
			if files, err = idx.Get(ctx, query); err != nil {
				return nil, fmt.Errorf("query %s: %w", name, err)
			}
		}

		switch {
		case len(files) == 0:
			out[name] = nil
		case len(files) == 1 || cfg.allowMultiple:
			out[name] = paths(files)
		case anat && sameSession(files):
			cfg.logger.Debug("multiple anatomical matches, keeping the first", "query", name, "matches", len(files))
			out[name] = []string{files[0].Path}
		default:
			return nil, fmt.Errorf("%w for %s: %v", ErrMultipleMatches, name, paths(files))
		}
		cfg.logger.Debug("collected", "query", name, "matches", len(out[name]))
	}
	return out, nil
}

// normalize converts entity names to filename keys.
func normalize(q map[string]any) layout.Query {
	out := make(layout.Query, len(q))
	for k, v := range q {
		out[layout.EntityKey(k)] = v
	}
	return out
}

func sameSession(files []layout.File) bool {
	first, _ := files[0].Entity("ses")
	for _, f := range files[1:] {
		if ses, _ := f.Entity("ses"); ses != first {
			return false
		}
	}
	return true
}

func paths(files []layout.File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}
