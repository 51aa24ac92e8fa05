package build

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kilnhq/kiln/internal/runtime"
)

// Copies a single file from the host into a container directory.
//
// The file keeps its base name. A missing source file surfaces as
// [ErrSourceNotFound] before anything is streamed into the container.
func copyFileTo(ctx context.Context, ctr *runtime.Container, hostPath, destDir string) error {
	if _, err := os.Stat(hostPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %w", ErrSourceNotFound, err)
		}
		return fmt.Errorf("%w: %w", ErrCopy, err)
	}

	slog.Debug("copy file", "src", hostPath, "dest", destDir)

	pr, pw := io.Pipe()

	go func() {
		tw := tar.NewWriter(pw)
		writeErr := writeFileToTar(tw, hostPath, filepath.Base(hostPath))
		tw.Close()
		pw.CloseWithError(writeErr)
	}()

	if err := ctr.CopyTo(ctx, pr, destDir); err != nil {
		return fmt.Errorf("%w: %w", ErrCopy, err)
	}

	return nil
}

// Copies a directory tree from the host into a container directory.
//
// The tree's contents (not the directory itself) land in destDir. Entries
// for which skip returns true are omitted; skipping a directory prunes its
// entire subtree. A missing source tree surfaces as [ErrSourceNotFound].
func copyTreeTo(ctx context.Context, ctr *runtime.Container, hostDir, destDir string, skip func(rel string, isDir bool) bool) error {
	info, err := os.Stat(hostDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %w", ErrSourceNotFound, err)
		}
		return fmt.Errorf("%w: %w", ErrCopy, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrCopy, hostDir)
	}

	slog.Debug("copy tree", "src", hostDir, "dest", destDir)

	pr, pw := io.Pipe()

	go func() {
		tw := tar.NewWriter(pw)
		writeErr := writeTreeToTar(tw, hostDir, skip)
		tw.Close()
		pw.CloseWithError(writeErr)
	}()

	if err := ctr.CopyTo(ctx, pr, destDir); err != nil {
		return fmt.Errorf("%w: %w", ErrCopy, err)
	}

	return nil
}

// Writes a directory tree to a tar writer, archive names relative to the
// tree root.
func writeTreeToTar(tw *tar.Writer, hostDir string, skip func(rel string, isDir bool) bool) error {
	return filepath.WalkDir(hostDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(hostDir, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		if skip != nil && skip(relPath, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		return writeTarEntry(tw, path, filepath.ToSlash(relPath), d)
	})
}

// Writes a single file or directory entry to a tar writer.
func writeTarEntry(tw *tar.Writer, hostPath, archivePath string, d os.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = archivePath

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	if info.Mode().IsRegular() {
		f, err := os.Open(hostPath)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	}

	return nil
}

// Writes a single file to a tar writer with the given archive name.
func writeFileToTar(tw *tar.Writer, hostPath, name string) error {
	info, err := os.Stat(hostPath)
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = name

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	f, err := os.Open(hostPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(tw, f)
	return err
}
