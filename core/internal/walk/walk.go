// Package walk enumerates directory trees below an [os.Root].
package walk

import (
	"context"
	"io/fs"
	"os"
	"strings"
)

// File is a regular file found by [RegularFiles].
type File struct {
	// Path is slash-separated and relative to the root.
	Path string
	Info fs.FileInfo
}

// RegularFiles returns every regular file below dir in lexical order.
// Directories are descended into; symlinks and other non-regular
// entries are skipped and never followed.
func RegularFiles(ctx context.Context, root *os.Root, dir string) ([]File, error) {
	var files []File
	err := fs.WalkDir(root.FS(), dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, ok, err := resolveEntry(d)
		if err != nil || !ok {
			return err
		}
		files = append(files, File{Path: p, Info: info})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// resolveEntry filters out symlinks and non-regular files. ok=false means
// the entry should be skipped.
func resolveEntry(d fs.DirEntry) (fs.FileInfo, bool, error) {
	dtype := d.Type()
	if dtype&fs.ModeSymlink != 0 {
		return nil, false, nil
	}
	if dtype != 0 && !dtype.IsRegular() {
		return nil, false, nil
	}
	info, err := d.Info()
	if err != nil {
		return nil, false, err
	}
	if !info.Mode().IsRegular() {
		return nil, false, nil
	}
	return info, true, nil
}

// Dirs returns the names of the immediate subdirectories of dir whose
// names start with prefix, sorted by name. Symlinks to directories are
// not included.
func Dirs(root *os.Root, dir, prefix string) ([]string, error) {
	entries, err := fs.ReadDir(root.FS(), dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Others returns the names of the immediate directories and regular files
// of dir, leaving out directories whose names start with prefix, sorted by
// name. Symlinks are not included.
func Others(root *os.Root, dir, prefix string) ([]string, error) {
	entries, err := fs.ReadDir(root.FS(), dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		switch {
		case e.IsDir() && strings.HasPrefix(e.Name(), prefix):
		case e.IsDir() || e.Type().IsRegular():
			names = append(names, e.Name())
		}
	}
	return names, nil
}
