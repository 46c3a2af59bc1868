package layout

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5/util"

	"github.com/meigma/simbids/skeleton"
)

const sidecarExt = ".json"

// Extract builds a skeleton that mimics the indexed dataset.
//
// The first nSubjects subjects and, per subject, the first nSessions
// sessions are kept (a negative count keeps all). Each data file becomes
// an entry under its datatype with its entities in canonical order, its
// extension when it is not the default, and the content of its sidecar as
// metadata. Subjects without sessions map to a single session mapping. The
// dataset description is copied from the root when present.
func (ix *Index) Extract(ctx context.Context, nSubjects, nSessions int) (*skeleton.Mapping, error) {
	if ix.fsys == nil {
		return nil, ErrNotBuilt
	}
	out := skeleton.NewMapping()

	desc, err := ix.readJSON(skeleton.KeyDescription + sidecarExt)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if desc != nil {
		out.Set(skeleton.KeyDescription, desc)
	}

	subjects, err := ix.Subjects(ctx)
	if err != nil {
		return nil, err
	}
	for _, sub := range first(subjects, nSubjects) {
		sessions, err := ix.Sessions(ctx, sub)
		if err != nil {
			return nil, err
		}
		if len(sessions) == 0 {
			m, err := ix.session(ctx, sub, "")
			if err != nil {
				return nil, err
			}
			out.Set(sub, m)
			continue
		}
		var list []any
		for _, ses := range first(sessions, nSessions) {
			m, err := ix.session(ctx, sub, ses)
			if err != nil {
				return nil, err
			}
			list = append(list, m)
		}
		out.Set(sub, list)
	}
	ix.logger.Info("extracted skeleton", "subjects", len(first(subjects, nSubjects)))
	return out, nil
}

// session returns the modalities of one subject session. An empty ses
// selects files without a session entity.
func (ix *Index) session(ctx context.Context, sub, ses string) (*skeleton.Mapping, error) {
	q := Query{"sub": sub, "ses": nil, KeyDatatype: Any}
	m := skeleton.NewMapping()
	if ses != "" {
		q["ses"] = ses
		m.Set(skeleton.KeySession, ses)
	}
	files, err := ix.Get(ctx, q)
	if err != nil {
		return nil, err
	}
	images := make(map[string]bool)
	for _, f := range files {
		if isImage(f.Extension) {
			images[f.Stem()] = true
		}
	}
	for _, f := range files {
		if f.Extension == sidecarExt {
			continue
		}
		// the sidecar belongs to the image when there is one
		withMeta := isImage(f.Extension) || !images[f.Stem()]
		entry, err := ix.entry(f, withMeta)
		if err != nil {
			return nil, err
		}
		var entries []any
		if v, ok := m.Get(f.Datatype); ok {
			entries, _ = v.([]any)
		}
		m.Set(f.Datatype, append(entries, entry))
	}
	return m, nil
}

func (ix *Index) entry(f File, withMeta bool) (*skeleton.Mapping, error) {
	e := skeleton.NewMapping()
	e.Set(skeleton.KeySuffix, f.Suffix)
	for _, ent := range SortEntities(f.Entities) {
		if ent.Key == "sub" || ent.Key == "ses" {
			continue
		}
		e.Set(ent.Key, ent.Value)
	}
	if f.Extension != skeleton.DefaultExtension {
		e.Set(skeleton.KeyExtension, f.Extension)
	}
	if !withMeta {
		return e, nil
	}
	meta, err := ix.readJSON(f.Stem() + sidecarExt)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if meta != nil {
		e.Set(skeleton.KeyMetadata, meta)
	}
	return e, nil
}

// readJSON decodes the file at rel below the indexed root.
func (ix *Index) readJSON(rel string) (*skeleton.Mapping, error) {
	data, err := util.ReadFile(ix.fsys, ix.fsys.Join(ix.root, rel))
	if err != nil {
		return nil, err
	}
	m, err := skeleton.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rel, err)
	}
	return m, nil
}

func isImage(ext string) bool {
	return ext == ".nii.gz" || ext == ".nii"
}

func first(labels []string, n int) []string {
	if n < 0 || n > len(labels) {
		return labels
	}
	return labels[:n]
}
