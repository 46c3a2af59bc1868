package layout

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/meigma/simbids/skeleton"
)

// Query selects files by entity. Keys are entity names (subject or sub),
// or one of datatype, suffix and extension. Values are matched as follows:
//
//   - a scalar: the entity equals the value
//   - a list ([]any or []string): the entity equals one of the values; a
//     nil element also admits files without the entity
//   - nil: the entity is absent
//   - [Any]: the entity is present with any value
type Query map[string]any

type anyValue struct{}

// Any matches any present value in a [Query].
var Any = anyValue{}

// Get returns the files matching q, sorted by path.
func (ix *Index) Get(ctx context.Context, q Query) ([]File, error) {
	where, args := compile(q)
	query := `SELECT id, path, datatype, suffix, extension FROM files f`
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY path"

	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	var (
		ids   []int64
		files []File
	)
	for rows.Next() {
		var (
			id int64
			f  File
		)
		if err := rows.Scan(&id, &f.Path, &f.Datatype, &f.Suffix, &f.Extension); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i, id := range ids {
		entities, err := ix.entities(ctx, id)
		if err != nil {
			return nil, err
		}
		files[i].Entities = entities
	}
	return files, nil
}

func (ix *Index) entities(ctx context.Context, fileID int64) ([]skeleton.Entity, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT key, value FROM entities WHERE file_id = ? ORDER BY position`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []skeleton.Entity
	for rows.Next() {
		var e skeleton.Entity
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Subjects returns the distinct subject labels, without the sub- prefix.
func (ix *Index) Subjects(ctx context.Context) ([]string, error) {
	return ix.distinct(ctx, `SELECT DISTINCT value FROM entities WHERE key = 'sub' ORDER BY value`)
}

// Sessions returns the distinct session labels of subject, without the
// ses- prefix. subject may carry the sub- prefix.
func (ix *Index) Sessions(ctx context.Context, subject string) ([]string, error) {
	return ix.distinct(ctx, `
		SELECT DISTINCT s.value FROM entities s
		JOIN entities u ON u.file_id = s.file_id AND u.key = 'sub' AND u.value = ?
		WHERE s.key = 'ses' ORDER BY s.value`,
		strings.TrimPrefix(subject, "sub-"))
}

func (ix *Index) distinct(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// compile turns q into a WHERE clause over files f.
func compile(q Query) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	for _, name := range slices.Sorted(maps.Keys(q)) {
		key := EntityKey(name)
		m := newMatcher(key, q[name])
		var clause string
		var a []any
		switch key {
		case KeyDatatype, KeySuffix, KeyExtension:
			clause, a = m.column("f." + key)
		default:
			clause, a = m.entity()
		}
		if clause == "" {
			continue
		}
		clauses = append(clauses, clause)
		args = append(args, a...)
	}
	return strings.Join(clauses, " AND "), args
}

// matcher is the normalized form of one query value.
type matcher struct {
	key     string
	values  []string
	present bool // any value matches
	absent  bool // a missing entity matches
}

func newMatcher(key string, v any) matcher {
	m := matcher{key: key}
	var items []any
	switch t := v.(type) {
	case nil:
		m.absent = true
		return m
	case []any:
		items = t
	case []string:
		for _, s := range t {
			items = append(items, s)
		}
	default:
		items = []any{t}
	}
	for _, item := range items {
		switch item.(type) {
		case nil:
			m.absent = true
		case anyValue:
			m.present = true
		default:
			m.values = append(m.values, normalize(key, skeleton.Stringify(item)))
		}
	}
	return m
}

func normalize(key, value string) string {
	if key == KeyExtension && value != "" && !strings.HasPrefix(value, ".") {
		return "." + value
	}
	return value
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func (m matcher) column(col string) (string, []any) {
	switch {
	case m.present && m.absent:
		return "", nil
	case m.present:
		return col + " <> ''", nil
	case len(m.values) == 0 && m.absent:
		return col + " = ''", nil
	case len(m.values) == 0:
		return "0", nil
	}
	args := make([]any, 0, len(m.values))
	for _, v := range m.values {
		args = append(args, v)
	}
	clause := fmt.Sprintf("%s IN (%s)", col, placeholders(len(m.values)))
	if m.absent {
		clause = fmt.Sprintf("(%s OR %s = '')", clause, col)
	}
	return clause, args
}

const (
	hasKey   = `EXISTS (SELECT 1 FROM entities e WHERE e.file_id = f.id AND e.key = ?)`
	lacksKey = `NOT ` + hasKey
)

func (m matcher) entity() (string, []any) {
	switch {
	case m.present && m.absent:
		return "", nil
	case m.present:
		return hasKey, []any{m.key}
	case len(m.values) == 0 && m.absent:
		return lacksKey, []any{m.key}
	case len(m.values) == 0:
		return "0", nil
	}
	args := []any{m.key}
	for _, v := range m.values {
		args = append(args, v)
	}
	clause := fmt.Sprintf(
		`EXISTS (SELECT 1 FROM entities e WHERE e.file_id = f.id AND e.key = ? AND e.value IN (%s))`,
		placeholders(len(m.values)))
	if m.absent {
		clause = "(" + clause + " OR " + lacksKey + ")"
		args = append(args, m.key)
	}
	return clause, args
}
