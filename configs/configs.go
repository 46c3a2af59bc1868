// Package configs bundles named skeleton configurations and query specs.
package configs

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
)

// ErrNotFound is returned when no bundled file has the requested name.
var ErrNotFound = errors.New("configs: not found")

// SkeletonDir is the directory holding bundled skeletons inside FS.
const SkeletonDir = "bids_mri"

// QuerySpecFile is the bundled derivative query spec.
const QuerySpecFile = "io_spec.json"

//go:embed bids_mri/*.yaml io_spec.json
var files embed.FS

// FS returns the bundled files.
func FS() fs.FS {
	return files
}

// Names lists the bundled skeleton names, sorted.
func Names() []string {
	entries, err := fs.ReadDir(files, SkeletonDir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names
}

// Lookup returns the content of the bundled skeleton called name.
// The .yaml extension may be omitted.
func Lookup(name string) ([]byte, error) {
	return LookupFS(files, name)
}

// LookupFS is like [Lookup] but reads skeletons from fsys, which must lay
// them out below SkeletonDir.
func LookupFS(fsys fs.FS, name string) ([]byte, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if path.Ext(name) == "" {
		name += ".yaml"
	}
	data, err := fs.ReadFile(fsys, path.Join(SkeletonDir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// QuerySpec returns the bundled derivative query spec.
func QuerySpec() []byte {
	data, err := files.ReadFile(QuerySpecFile)
	if err != nil {
		panic(err)
	}
	return data
}
