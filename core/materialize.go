package simbids

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/meigma/simbids/skeleton"
)

// DescriptionFile is the name of the dataset descriptor at the dataset root.
const DescriptionFile = "dataset_description.json"

// MaterializeResult describes a materialized skeleton.
type MaterializeResult struct {
	// Root is the target directory the tree was written to.
	Root string

	// Skeleton is a deep copy of the skeleton as it was passed in.
	Skeleton *skeleton.Mapping

	// Files lists every file written, relative to Root, slash-separated,
	// in write order. Sidecars follow their data file.
	Files []string
}

// MaterializeBytes decodes a JSON or YAML skeleton and materializes it.
// See [Materialize].
func MaterializeBytes(ctx context.Context, fsys billy.Filesystem, target string, data []byte, opts ...MaterializeOption) (*MaterializeResult, error) {
	m, err := skeleton.Decode(data)
	if err != nil {
		return nil, err
	}
	return Materialize(ctx, fsys, target, m, opts...)
}

// Materialize writes the dataset described by m below target.
//
// The skeleton is parsed and wildcards are resolved before anything is
// written, so configuration errors leave fsys untouched. target must not
// exist; it is created with its parents. The tree holds a
// dataset_description.json, one empty file per entry, and a JSON sidecar
// next to each entry that carries metadata.
//
// m is not modified. A failure while writing leaves a partial tree behind.
func Materialize(ctx context.Context, fsys billy.Filesystem, target string, m *skeleton.Mapping, opts ...MaterializeOption) (*MaterializeResult, error) {
	cfg := materializeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	residual := skeleton.CloneMapping(m)
	d, err := skeleton.Parse(m)
	if err != nil {
		return nil, err
	}
	subjects, err := skeleton.Resolve(d)
	if err != nil {
		return nil, err
	}

	w := &materializer{cfg: cfg, fsys: fsys, root: target, total: countFiles(subjects)}
	w.log().Info("materializing skeleton", "root", target, "subjects", len(subjects), "files", w.total)

	if err := w.createRoot(); err != nil {
		return nil, err
	}

	desc := d.Description
	if desc == nil {
		desc = cfg.description
	}
	if desc == nil {
		desc = DefaultDescription()
	}
	if err := w.writeJSON(DescriptionFile, desc, true); err != nil {
		return nil, err
	}

	for _, subj := range subjects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := w.writeSubject(ctx, subj); err != nil {
			return nil, err
		}
	}

	w.log().Debug("materialized skeleton", "root", target, "written", len(w.files))
	return &MaterializeResult{Root: target, Skeleton: residual, Files: w.files}, nil
}

// materializer writes one resolved skeleton.
type materializer struct {
	cfg   materializeConfig
	fsys  billy.Filesystem
	root  string
	files []string
	total int
	done  int
}

// log returns the logger, falling back to a discard logger if nil.
func (w *materializer) log() *slog.Logger {
	if w.cfg.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.cfg.logger
}

func (w *materializer) createRoot() error {
	_, err := w.fsys.Lstat(w.root)
	if err == nil {
		return fmt.Errorf("%s: %w", w.root, ErrDestinationExists)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", w.root, err)
	}
	if err := w.fsys.MkdirAll(w.root, 0o750); err != nil {
		return fmt.Errorf("create %s: %w", w.root, err)
	}
	return nil
}

func (w *materializer) writeSubject(ctx context.Context, subj skeleton.ResolvedSubject) error {
	if err := w.mkdir(subj.Label); err != nil {
		return err
	}
	for _, ses := range subj.Sessions {
		scope := subj.Label
		if ses.Label != "" {
			scope = path.Join(subj.Label, ses.Label)
			if err := w.mkdir(scope); err != nil {
				return err
			}
		}
		prefix := ses.Prefix(subj.Label)
		for _, mod := range ses.Modalities {
			dir := path.Join(scope, mod.Name)
			if err := w.mkdir(dir); err != nil {
				return err
			}
			for _, entry := range mod.Files {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := w.writeEntry(dir, prefix, entry); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (w *materializer) writeEntry(dir, prefix string, entry skeleton.FileEntry) error {
	name := entry.Filename(prefix)
	rel := path.Join(dir, name)
	if err := util.WriteFile(w.fsys, w.abs(rel), nil, 0o644); err != nil {
		return fmt.Errorf("create %s: %w", rel, err)
	}
	w.files = append(w.files, rel)

	if entry.Metadata != nil {
		sidecar := path.Join(dir, skeleton.SidecarName(name, entry.Extension))
		if err := w.writeJSON(sidecar, entry.Metadata, false); err != nil {
			return err
		}
	}

	w.done++
	w.log().Debug("wrote file", "path", rel, "sidecar", entry.Metadata != nil)
	if w.cfg.progress != nil {
		w.cfg.progress(ProgressEvent{
			Stage:      StageMaterializing,
			Path:       rel,
			FilesDone:  w.done,
			FilesTotal: w.total,
		})
	}
	return nil
}

// writeJSON writes v to rel; pretty output uses a four-space indent.
func (w *materializer) writeJSON(rel string, v any, pretty bool) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "    ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", rel, err)
	}
	if err := util.WriteFile(w.fsys, w.abs(rel), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	w.files = append(w.files, rel)
	return nil
}

func (w *materializer) mkdir(rel string) error {
	if err := w.fsys.MkdirAll(w.abs(rel), 0o750); err != nil {
		return fmt.Errorf("create %s: %w", rel, err)
	}
	return nil
}

// abs converts a slash-separated path below the root to an fsys path.
func (w *materializer) abs(rel string) string {
	return w.fsys.Join(w.root, rel)
}

func countFiles(subjects []skeleton.ResolvedSubject) int {
	var n int
	for _, subj := range subjects {
		for _, ses := range subj.Sessions {
			for _, mod := range ses.Modalities {
				n += len(mod.Files)
			}
		}
	}
	return n
}
