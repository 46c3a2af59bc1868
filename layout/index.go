package layout

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS files (
	id INTEGER PRIMARY KEY,
	path TEXT NOT NULL UNIQUE,
	datatype TEXT NOT NULL,
	suffix TEXT NOT NULL,
	extension TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS entities (
	file_id INTEGER NOT NULL REFERENCES files(id),
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	position INTEGER NOT NULL,
	PRIMARY KEY (file_id, key)
) WITHOUT ROWID;
CREATE INDEX IF NOT EXISTS idx_entities_key_value ON entities(key, value);
`

// Index is a queryable index of one BIDS dataset.
type Index struct {
	db     *sql.DB
	logger *slog.Logger

	fsys billy.Filesystem
	root string
}

// Option configures an [Index].
type Option func(*Index)

// WithLogger sets the logger for the index.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Index) {
		ix.logger = logger
	}
}

// Open opens the SQLite database at dsn and creates the schema.
// Use ":memory:" for a throwaway index.
func Open(ctx context.Context, dsn string, opts ...Option) (*Index, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	ix := &Index{db: db}
	for _, opt := range opts {
		opt(ix)
	}
	if ix.logger == nil {
		ix.logger = slog.New(slog.DiscardHandler)
	}
	return ix, nil
}

// Close closes the database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Build indexes every BIDS-named regular file below root in fsys and
// returns the number of files added. Files already indexed under the same
// path are replaced.
func (ix *Index) Build(ctx context.Context, fsys billy.Filesystem, root string) (int, error) {
	var rels []string
	err := util.Walk(fsys, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rels = append(rels, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walk %s: %w", root, err)
	}
	slices.Sort(rels)

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	n := 0
	for _, rel := range rels {
		entities, suffix, ext, ok := ParseFilename(filepath.Base(rel))
		if !ok {
			ix.logger.Debug("skipping non-BIDS file", "path", rel)
			continue
		}
		if err := ix.insert(ctx, tx, File{
			Path:      rel,
			Datatype:  datatypeOf(rel),
			Suffix:    suffix,
			Extension: ext,
			Entities:  entities,
		}); err != nil {
			return n, fmt.Errorf("index %s: %w", rel, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return n, err
	}

	ix.fsys, ix.root = fsys, root
	ix.logger.Info("indexed dataset", "root", root, "files", n, "skipped", len(rels)-n)
	return n, nil
}

func (ix *Index) insert(ctx context.Context, tx *sql.Tx, f File) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM entities WHERE file_id IN (SELECT id FROM files WHERE path = ?)`, f.Path); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, f.Path); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO files (path, datatype, suffix, extension) VALUES (?, ?, ?, ?)`,
		f.Path, f.Datatype, f.Suffix, f.Extension)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for i, e := range f.Entities {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO entities (file_id, key, value, position) VALUES (?, ?, ?, ?)`,
			id, e.Key, e.Value, i); err != nil {
			return err
		}
	}
	return nil
}
