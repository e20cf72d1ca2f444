// Package archive relocates files and directories into an archive tree
// that mirrors their layout relative to a chosen root.
package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mverbeek/peoplescan/internal/platform"
	"github.com/mverbeek/peoplescan/pkg/logging"
)

// Mover computes archive destinations and performs conflict-safe moves
type Mover struct {
	archiveDir string
	root       string // empty = flat layout under archiveDir
	logger     logging.Logger
}

// NewMover creates a mover targeting archiveDir. When root is set,
// sources under it keep their relative structure in the archive.
func NewMover(archiveDir, root string, logger logging.Logger) *Mover {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Mover{archiveDir: archiveDir, root: root, logger: logger}
}

// Destination returns the collision-free archive path for src.
// The mirrored path is archiveDir/rel(src, root) when src lies under
// root, else archiveDir/base(src). Existing destinations get a _1, _2,
// ... suffix until a free candidate is found; for files the suffix is
// inserted before the extension, for directories it is appended to the
// final path component.
func (m *Mover) Destination(src string, isDir bool) string {
	var dest string
	if rel, ok := platform.RelWithin(m.root, src); ok {
		dest = filepath.Join(m.archiveDir, rel)
	} else {
		dest = filepath.Join(m.archiveDir, filepath.Base(src))
	}
	return nextFree(dest, isDir)
}

// MoveFile relocates a single file into the archive tree.
// All-or-nothing: on any failure the source file is left untouched.
func (m *Mover) MoveFile(ctx context.Context, src string) (string, error) {
	dest := m.Destination(src, false)

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(src, dest); err == nil {
		m.logMoved(ctx, src, dest)
		return dest, nil
	}

	// Rename fails across devices; fall back to copy then delete.
	if err := copyFile(src, dest); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("failed to archive %s: %w", src, err)
	}
	if err := os.Remove(src); err != nil {
		return "", fmt.Errorf("failed to remove source after copy: %w", err)
	}

	m.logMoved(ctx, src, dest)
	return dest, nil
}

// MoveDir relocates an entire directory subtree into the archive tree.
// Used for sidecar-backup folders that are archived as a unit.
func (m *Mover) MoveDir(ctx context.Context, src string) (string, error) {
	dest := m.Destination(src, true)

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(src, dest); err == nil {
		m.logMoved(ctx, src, dest)
		return dest, nil
	}

	if err := copyTree(src, dest); err != nil {
		os.RemoveAll(dest)
		return "", fmt.Errorf("failed to archive directory %s: %w", src, err)
	}
	if err := os.RemoveAll(src); err != nil {
		return "", fmt.Errorf("failed to remove source directory after copy: %w", err)
	}

	m.logMoved(ctx, src, dest)
	return dest, nil
}

func (m *Mover) logMoved(ctx context.Context, src, dest string) {
	m.logger.Info(ctx, "Archived", logging.Fields{"source": src, "dest": dest})
}

// nextFree returns path, or the first _1, _2, ... variant that does
// not exist yet
func nextFree(path string, isDir bool) string {
	if _, err := os.Lstat(path); os.IsNotExist(err) {
		return path
	}

	ext := ""
	if !isDir {
		ext = filepath.Ext(path)
	}
	stem := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copyTree(src, dest string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return copyFile(p, target)
	})
}
