// Package backup materialises backup snapshots on a filesystem.
//
// A snapshot is a directory named after its timestamp id holding a
// byte-for-byte copy of the definition tree and the changelog:
//
//	<root>/<YYYYMMDD_HHMMSS>/
//	    definition/...
//	    CHANGELOG.md
package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driven"
	"github.com/custodia-labs/modeldoc/internal/logger"
)

// Ensure Writer implements the interface.
var _ driven.SnapshotWriter = (*Writer)(nil)

// Names inside a snapshot directory.
const (
	DefinitionDir = "definition"
	ChangelogFile = "CHANGELOG.md"
)

const dirPerm = 0o755

// Writer writes snapshots under a root directory.
type Writer struct {
	fs   afero.Fs
	root string
}

// NewWriter creates a writer that places snapshots under root on fs.
func NewWriter(fs afero.Fs, root string) *Writer {
	return &Writer{fs: fs, root: root}
}

// NewOsWriter creates a writer on the host filesystem.
func NewOsWriter(root string) *Writer {
	return NewWriter(afero.NewOsFs(), root)
}

// Write creates the snapshot directory, copies sourceDir into it and writes
// the changelog. A snapshot that cannot be completed is removed again.
func (w *Writer) Write(ctx context.Context, snapshot *domain.BackupSnapshot, sourceDir string) error {
	if snapshot == nil || snapshot.ID == "" {
		return fmt.Errorf("%w: snapshot has no id", domain.ErrIO)
	}

	if err := w.fs.MkdirAll(w.root, dirPerm); err != nil {
		return fmt.Errorf("%w: create backup root: %w", domain.ErrIO, err)
	}

	dir := filepath.Join(w.root, snapshot.ID)
	if exists, _ := afero.Exists(w.fs, dir); exists {
		return fmt.Errorf("%w: snapshot %s already exists", domain.ErrIO, dir)
	}
	if err := w.fs.Mkdir(dir, dirPerm); err != nil {
		return fmt.Errorf("%w: create snapshot %s: %w", domain.ErrIO, dir, err)
	}

	if err := w.fill(ctx, snapshot, dir, sourceDir); err != nil {
		if rmErr := w.fs.RemoveAll(dir); rmErr != nil {
			logger.Warn("Removing incomplete snapshot %s: %v", dir, rmErr)
		}
		return err
	}

	snapshot.Dir = dir
	snapshot.ChangelogPath = filepath.Join(dir, ChangelogFile)
	return nil
}

func (w *Writer) fill(ctx context.Context, snapshot *domain.BackupSnapshot, dir, sourceDir string) error {
	copied, err := w.copyTree(ctx, sourceDir, filepath.Join(dir, DefinitionDir), dir)
	if err != nil {
		return fmt.Errorf("%w: copy %s: %w", domain.ErrIO, sourceDir, err)
	}
	logger.Debug("Copied %d files into %s", copied, dir)

	changelog := filepath.Join(dir, ChangelogFile)
	if err := afero.WriteFile(w.fs, changelog, []byte(snapshot.Changelog()), 0o644); err != nil {
		return fmt.Errorf("%w: write changelog: %w", domain.ErrIO, err)
	}
	return nil
}

// copyTree copies src to dst and returns the number of files copied.
// skip is never descended into, so a backup root inside src is safe.
func (w *Writer) copyTree(ctx context.Context, src, dst, skip string) (int, error) {
	info, err := w.fs.Stat(src)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%s is not a directory", src)
	}

	// Earlier snapshots are not copied when the backup root lives inside src.
	skipRoot := within(w.root, src) && filepath.Clean(w.root) != filepath.Clean(src)

	copied := 0
	err = afero.Walk(w.fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if within(path, skip) || (skipRoot && within(path, w.root)) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return w.fs.MkdirAll(target, dirPerm)
		}
		if !info.Mode().IsRegular() {
			logger.Debug("Skipping non-regular file %s", path)
			return nil
		}
		if err := w.copyFile(path, target, info.Mode().Perm()); err != nil {
			return err
		}
		copied++
		return nil
	})
	return copied, err
}

func (w *Writer) copyFile(src, dst string, perm os.FileMode) error {
	in, err := w.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := w.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// within reports whether path is dir or inside it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
