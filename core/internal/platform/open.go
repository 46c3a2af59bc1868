// Package platform wraps OS-specific file access used when archiving.
package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

var (
	// ErrSymlink is returned when the opened path is a symbolic link.
	ErrSymlink = errors.New("platform: symbolic link")

	// ErrNotRegular is returned when the opened path is not a regular file.
	ErrNotRegular = errors.New("platform: not a regular file")
)

// OpenRegular opens name below root for reading without following a
// trailing symlink and checks that it is a regular file.
func OpenRegular(root *os.Root, name string) (*os.File, fs.FileInfo, error) {
	f, err := openNoFollow(root, name)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, fmt.Errorf("%s: %w", name, ErrNotRegular)
	}
	return f, info, nil
}
