package simbids

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"

	"github.com/meigma/simbids/core/internal/platform"
	"github.com/meigma/simbids/core/internal/walk"
)

// ArchiveRoot is the top-level directory inside every archive.
const ArchiveRoot = "simbids"

// ArchiveFile describes one written zip archive.
type ArchiveFile struct {
	// Name is the archive file name, for example sub-01_simbids-0.1.0.zip.
	Name string

	// Path is the location of the archive on disk.
	Path string

	// Subject and Session identify the archived scope.
	// Session is empty for subject archives.
	Subject string
	Session string

	// Digest is the sha256 digest of the archive file.
	Digest digest.Digest

	// Size is the archive size in bytes.
	Size int64

	// Files is the number of entries in the archive.
	Files int
}

// ArchiveResult lists the archives produced by [Archive].
type ArchiveResult struct {
	Granularity Granularity
	Archives    []ArchiveFile
}

// ArchiveName returns the archive file name for a subject and optional session.
func ArchiveName(subject, session, version string) string {
	if session == "" {
		return fmt.Sprintf("%s_simbids-%s.zip", subject, version)
	}
	return fmt.Sprintf("%s_%s_simbids-%s.zip", subject, session, version)
}

// Archive packages a materialized dataset into zip files.
//
// Archives are written next to datasetRoot, in its parent directory.
// With GranularitySubject each sub-* directory becomes
// <subject>_simbids-<version>.zip holding simbids/<subject>/..., and the
// directory is removed once its archive is written. With
// GranularitySession each sub-*/ses-* directory becomes
// <subject>_<session>_simbids-<version>.zip holding
// simbids/<subject>/<session>/..., and datasetRoot is removed entirely
// afterwards. Files of a subject that are not below one of its ses-*
// directories go into a subject-level archive, so a subject without
// sessions is archived whole. GranularityNone does nothing.
//
// Only regular files are archived; symbolic links are skipped and never
// followed. Any other granularity value fails with ErrInvalidConfig
// before the filesystem is touched.
func Archive(ctx context.Context, datasetRoot string, g Granularity, version string, opts ...ArchiveOption) (*ArchiveResult, error) {
	cfg := archiveConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !g.Valid() {
		return nil, fmt.Errorf("%w: granularity %d", ErrInvalidConfig, g)
	}
	res := &ArchiveResult{Granularity: g}
	if g == GranularityNone {
		return res, nil
	}
	if version == "" {
		return nil, fmt.Errorf("%w: empty archive version", ErrInvalidConfig)
	}

	root, err := os.OpenRoot(datasetRoot)
	if err != nil {
		return nil, err
	}
	a := &archiver{
		cfg:     cfg,
		root:    root,
		outDir:  filepath.Dir(filepath.Clean(datasetRoot)),
		version: version,
	}

	units, err := a.units(ctx, g)
	if err != nil {
		root.Close()
		return nil, err
	}
	a.log().Info("archiving dataset", "root", datasetRoot, "granularity", g.String(), "archives", len(units))

	for i, u := range units {
		if err := ctx.Err(); err != nil {
			root.Close()
			return nil, err
		}
		af, err := a.write(ctx, u)
		if err != nil {
			root.Close()
			return nil, err
		}
		res.Archives = append(res.Archives, af)
		if g == GranularitySubject {
			if err := root.RemoveAll(u.subject); err != nil {
				root.Close()
				return nil, fmt.Errorf("remove %s: %w", u.subject, err)
			}
		}
		a.report(af, i+1, len(units))
	}
	if err := root.Close(); err != nil {
		return nil, err
	}

	if g == GranularitySession {
		if err := os.RemoveAll(datasetRoot); err != nil {
			return nil, fmt.Errorf("remove %s: %w", datasetRoot, err)
		}
	}
	return res, nil
}

// unit is one archive's scope.
type unit struct {
	subject string
	session string
	files   []walk.File
}

type archiver struct {
	cfg     archiveConfig
	root    *os.Root
	outDir  string
	version string
}

// log returns the logger, falling back to a discard logger if nil.
func (a *archiver) log() *slog.Logger {
	if a.cfg.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.cfg.logger
}

// units lists the archives to write and the files of each. In session
// mode a subject's files outside its ses-* directories form one extra
// subject-level unit.
func (a *archiver) units(ctx context.Context, g Granularity) ([]unit, error) {
	subjects, err := walk.Dirs(a.root, ".", "sub-")
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	var units []unit
	for _, sub := range subjects {
		if g == GranularitySubject {
			files, err := walk.RegularFiles(ctx, a.root, sub)
			if err != nil {
				return nil, fmt.Errorf("walk %s: %w", sub, err)
			}
			units = append(units, unit{subject: sub, files: files})
			continue
		}
		sessions, err := walk.Dirs(a.root, sub, "ses-")
		if err != nil {
			return nil, fmt.Errorf("list sessions of %s: %w", sub, err)
		}
		for _, ses := range sessions {
			dir := path.Join(sub, ses)
			files, err := walk.RegularFiles(ctx, a.root, dir)
			if err != nil {
				return nil, fmt.Errorf("walk %s: %w", dir, err)
			}
			units = append(units, unit{subject: sub, session: ses, files: files})
		}

		rest, err := walk.Others(a.root, sub, "ses-")
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", sub, err)
		}
		var files []walk.File
		for _, name := range rest {
			found, err := walk.RegularFiles(ctx, a.root, path.Join(sub, name))
			if err != nil {
				return nil, fmt.Errorf("walk %s: %w", path.Join(sub, name), err)
			}
			files = append(files, found...)
		}
		if len(files) > 0 || len(sessions) == 0 {
			units = append(units, unit{subject: sub, files: files})
		}
	}
	return units, nil
}

// write creates the archive for u atomically (temp file + rename).
func (a *archiver) write(ctx context.Context, u unit) (ArchiveFile, error) {
	name := ArchiveName(u.subject, u.session, a.version)
	target := filepath.Join(a.outDir, name)
	af := ArchiveFile{Name: name, Path: target, Subject: u.subject, Session: u.session}

	tmp, err := os.CreateTemp(a.outDir, ".simbids-*.zip")
	if err != nil {
		return af, fmt.Errorf("create archive: %w", err)
	}
	tmpPath := tmp.Name()
	fail := func(err error) (ArchiveFile, error) {
		tmp.Close()
		os.Remove(tmpPath)
		return af, err
	}

	digester := digest.Canonical.Digester()
	zw := zip.NewWriter(io.MultiWriter(tmp, digester.Hash()))
	if a.cfg.compression == CompressionZstd {
		zw.RegisterCompressor(zstd.ZipMethodWinZip, zstd.ZipCompressor())
	}
	for _, f := range u.files {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		added, err := a.add(zw, f.Path)
		if err != nil {
			return fail(fmt.Errorf("add %s to %s: %w", f.Path, name, err))
		}
		if added {
			af.Files++
		}
	}
	if err := zw.Close(); err != nil {
		return fail(fmt.Errorf("finish %s: %w", name, err))
	}
	info, err := tmp.Stat()
	if err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return af, err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return af, fmt.Errorf("rename %s: %w", name, err)
	}

	af.Size = info.Size()
	af.Digest = digester.Digest()
	a.log().Debug("wrote archive", "name", name, "files", af.Files, "size", af.Size, "digest", af.Digest)
	return af, nil
}

// add copies one file into zw under simbids/<rel>. Files that turned into
// symlinks or non-regular files since the walk are skipped.
func (a *archiver) add(zw *zip.Writer, rel string) (bool, error) {
	src, info, err := platform.OpenRegular(a.root, rel)
	if errors.Is(err, platform.ErrSymlink) || errors.Is(err, platform.ErrNotRegular) {
		a.log().Debug("skipping non-regular file", "path", rel)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer src.Close()

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return false, err
	}
	hdr.Name = path.Join(ArchiveRoot, rel)
	hdr.Method = a.method()

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return false, err
	}
	if _, err := io.Copy(w, src); err != nil {
		return false, err
	}
	return true, nil
}

func (a *archiver) method() uint16 {
	switch a.cfg.compression {
	case CompressionStore:
		return zip.Store
	case CompressionZstd:
		return zstd.ZipMethodWinZip
	default:
		return zip.Deflate
	}
}

func (a *archiver) report(af ArchiveFile, done, total int) {
	if a.cfg.progress == nil {
		return
	}
	a.cfg.progress(ProgressEvent{
		Stage:      StageArchiving,
		Path:       af.Path,
		BytesDone:  uint64(af.Size), //nolint:gosec // size is non-negative
		FilesDone:  done,
		FilesTotal: total,
	})
}
