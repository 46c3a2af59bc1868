package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/opencontainers/image-spec/specs-go"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2/content/oci"
)

// DefaultLayoutDir is the OCI layout directory created inside the
// registered directory when OCILayout.Path is empty.
const DefaultLayoutDir = "oci-layout"

// OCILayout registers entries as an artifact in an OCI image layout.
//
// Every regular file below the entries becomes one layer whose title
// annotation is its path relative to the registered directory. The manifest
// carries the commit message as its description and is tagged with Tag.
type OCILayout struct {
	// Path is the layout directory. Relative paths are resolved against
	// the registered directory. Defaults to DefaultLayoutDir.
	Path string

	// Tag names the manifest. Defaults to "latest".
	Tag string

	// Annotations are added to the manifest.
	Annotations map[string]string

	Logger *slog.Logger
}

// Register implements [Registrar].
func (o OCILayout) Register(ctx context.Context, dir string, entries []string, message string) error {
	if len(entries) == 0 {
		return ErrNothingToRegister
	}
	log := logger(o.Logger)

	layoutDir := o.Path
	if layoutDir == "" {
		layoutDir = DefaultLayoutDir
	}
	if !filepath.IsAbs(layoutDir) {
		layoutDir = filepath.Join(dir, layoutDir)
	}
	tag := o.Tag
	if tag == "" {
		tag = "latest"
	}

	files, err := layerFiles(dir, entries)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no regular files below %v", ErrNothingToRegister, entries)
	}

	store, err := oci.New(layoutDir)
	if err != nil {
		return fmt.Errorf("open layout %s: %w", layoutDir, err)
	}

	configDesc, err := pushBytes(ctx, store, ocispec.MediaTypeEmptyJSON, []byte("{}"))
	if err != nil {
		return fmt.Errorf("push config: %w", err)
	}

	layers := make([]ocispec.Descriptor, 0, len(files))
	for _, rel := range files {
		desc, err := pushFile(ctx, store, dir, rel)
		if err != nil {
			return fmt.Errorf("push %s: %w", rel, err)
		}
		log.Debug("pushed layer", "path", rel, "digest", desc.Digest, "size", desc.Size)
		layers = append(layers, desc)
	}

	annotations := maps.Clone(o.Annotations)
	if annotations == nil {
		annotations = make(map[string]string)
	}
	annotations[ocispec.AnnotationDescription] = message
	manifest := buildManifest(&configDesc, layers, annotations)
	data, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	manifestDesc, err := pushBytes(ctx, store, ocispec.MediaTypeImageManifest, data)
	if err != nil {
		return fmt.Errorf("push manifest: %w", err)
	}
	manifestDesc.ArtifactType = ArtifactType
	if err := store.Tag(ctx, manifestDesc, tag); err != nil {
		return fmt.Errorf("tag %q: %w", tag, err)
	}

	log.Info("registered dataset in OCI layout", "layout", layoutDir, "tag", tag, "layers", len(layers), "digest", manifestDesc.Digest)
	return nil
}

// buildManifest creates an OCI manifest for a dataset.
func buildManifest(configDesc *ocispec.Descriptor, layers []ocispec.Descriptor, customAnnotations map[string]string) ocispec.Manifest {
	annotations := maps.Clone(customAnnotations)
	if annotations == nil {
		annotations = make(map[string]string)
	}
	if _, ok := annotations[ocispec.AnnotationCreated]; !ok {
		annotations[ocispec.AnnotationCreated] = time.Now().UTC().Format(time.RFC3339)
	}

	return ocispec.Manifest{
		Versioned:    specs.Versioned{SchemaVersion: 2},
		MediaType:    ocispec.MediaTypeImageManifest,
		ArtifactType: ArtifactType,
		Config:       *configDesc,
		Layers:       layers,
		Annotations:  annotations,
	}
}

// layerFiles expands entries into the regular files below them, as
// slash-separated paths relative to dir. Symlinks are skipped.
func layerFiles(dir string, entries []string) ([]string, error) {
	var files []string
	for _, entry := range entries {
		start := filepath.Join(dir, filepath.FromSlash(entry))
		err := filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.Type().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(dir, p)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", entry, err)
		}
	}
	return files, nil
}

func mediaTypeFor(rel string) string {
	if strings.HasSuffix(rel, ".zip") {
		return MediaTypeArchive
	}
	return MediaTypeFile
}

// pushFile stores one file as a layer, skipping content already present.
func pushFile(ctx context.Context, store *oci.Store, dir, rel string) (ocispec.Descriptor, error) {
	p := filepath.Join(dir, filepath.FromSlash(rel))
	f, err := os.Open(p) //nolint:gosec // path comes from walking dir
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	defer f.Close()
	dgst, err := digest.Canonical.FromReader(f)
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	info, err := f.Stat()
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	desc := ocispec.Descriptor{
		MediaType:   mediaTypeFor(rel),
		Digest:      dgst,
		Size:        info.Size(),
		Annotations: map[string]string{ocispec.AnnotationTitle: path.Clean(rel)},
	}

	exists, err := store.Exists(ctx, desc)
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	if exists {
		return desc, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return ocispec.Descriptor{}, err
	}
	if err := store.Push(ctx, desc, f); err != nil {
		return ocispec.Descriptor{}, err
	}
	return desc, nil
}

func pushBytes(ctx context.Context, store *oci.Store, mediaType string, data []byte) (ocispec.Descriptor, error) {
	desc := ocispec.Descriptor{
		MediaType: mediaType,
		Digest:    digest.FromBytes(data),
		Size:      int64(len(data)),
	}
	exists, err := store.Exists(ctx, desc)
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	if exists {
		return desc, nil
	}
	if err := store.Push(ctx, desc, bytes.NewReader(data)); err != nil {
		return ocispec.Descriptor{}, err
	}
	return desc, nil
}
