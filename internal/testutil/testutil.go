// Package testutil provides helpers shared by the simbids tests.
package testutil

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

// ListTree returns the regular files below dir as sorted slash-separated
// relative paths.
func ListTree(tb testing.TB, dir string) []string {
	tb.Helper()
	var paths []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
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
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(tb, err)
	slices.Sort(paths)
	return paths
}

// ListBilly returns the regular files below root in fsys as sorted
// slash-separated relative paths.
func ListBilly(tb testing.TB, fsys billy.Filesystem, root string) []string {
	tb.Helper()
	var paths []string
	err := util.Walk(fsys, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(tb, err)
	slices.Sort(paths)
	return paths
}

// ZipEntries returns the sorted entry names of the zip archive at path.
// Archives using the zstd method can be read.
func ZipEntries(tb testing.TB, path string) []string {
	tb.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(tb, err)
	defer r.Close()
	r.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	slices.Sort(names)
	return names
}

// ZipFile returns the content of one archive entry.
func ZipFile(tb testing.TB, path, name string) []byte {
	tb.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(tb, err)
	defer r.Close()
	r.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())

	rc, err := r.Open(name)
	require.NoError(tb, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(tb, err)
	return data
}

// WriteFiles creates files below dir from a path-to-content map.
func WriteFiles(tb testing.TB, dir string, files map[string]string) {
	tb.Helper()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(tb, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(tb, os.WriteFile(p, []byte(content), 0o600))
	}
}

// WriteBillyFiles creates files below root in fsys from a path-to-content map.
func WriteBillyFiles(tb testing.TB, fsys billy.Filesystem, root string, files map[string]string) {
	tb.Helper()
	for name, content := range files {
		p := fsys.Join(root, name)
		require.NoError(tb, fsys.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(tb, util.WriteFile(fsys, p, []byte(content), 0o644))
	}
}
