package archive

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MissingArchiveError reports that the bundled archive is not on disk.
// It is a configuration error: nothing is extracted and no data is loaded.
type MissingArchiveError struct {
	Path string
}

func (e *MissingArchiveError) Error() string {
	return fmt.Sprintf("archive not found: %s", e.Path)
}

// File describes one file written by Extract.
type File struct {
	Name        string // Entry name inside the archive (slash separated).
	Path        string // Destination path on disk.
	Size        int64  // Uncompressed size in bytes.
	ContentHash string // SHA-256 hex digest of the written content.
}

// Extract unpacks every entry of the zip archive at archivePath into destDir,
// overwriting files that already exist. Extraction runs unconditionally on
// every call; there is no freshness check against previously extracted files.
func Extract(archivePath, destDir string) ([]File, error) {
	if _, err := os.Stat(archivePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingArchiveError{Path: archivePath}
		}
		return nil, fmt.Errorf("accessing archive %s: %w", archivePath, err)
	}

	rz, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", archivePath, err)
	}
	defer rz.Close()

	root, err := filepath.Abs(destDir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", destDir, err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", root, err)
	}

	var files []File
	for _, zf := range rz.File {
		f, err := extractEntry(zf, root)
		if err != nil {
			return nil, err
		}
		if f != nil {
			files = append(files, *f)
		}
	}
	return files, nil
}

// extractEntry writes a single archive entry below root. Directory entries
// return a nil File.
func extractEntry(zf *zip.File, root string) (*File, error) {
	target, err := safeJoin(root, zf.Name)
	if err != nil {
		return nil, err
	}

	if zf.FileInfo().IsDir() {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", target, err)
		}
		return nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
	}

	src, err := zf.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s in archive: %w", zf.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("writing %s: %w", target, err)
	}

	h := sha256.New()
	n, copyErr := io.Copy(io.MultiWriter(dst, h), src)
	closeErr := dst.Close()
	if copyErr != nil {
		return nil, fmt.Errorf("extracting %s: %w", zf.Name, copyErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("closing %s: %w", target, closeErr)
	}

	return &File{
		Name:        zf.Name,
		Path:        target,
		Size:        n,
		ContentHash: hex.EncodeToString(h.Sum(nil)),
	}, nil
}

// safeJoin resolves name below root and rejects entries that would land
// outside of it (zip slip).
func safeJoin(root, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(name) {
		return "", fmt.Errorf("archive entry %q escapes destination directory", name)
	}
	return target, nil
}
