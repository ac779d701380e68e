package walker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// FileInfo describes one input file found below the work directory.
type FileInfo struct {
	Path        string // Absolute path on disk.
	RelPath     string // Path relative to the root directory (slash separated).
	Size        int64  // File size in bytes.
	Kind        Kind   // Detected dataset kind.
	ContentHash string // SHA-256 hex digest of the file content.
}

// WalkerConfig controls the behaviour of the Walk function.
type WalkerConfig struct {
	RootDir string   // Root directory to walk.
	Exclude []string // Glob patterns; matching files are excluded.
}

// Walk lists every shapefile part, attribute table and archive below
// config.RootDir, sorted by relative path. Unreadable entries are skipped.
func Walk(config WalkerConfig) ([]FileInfo, error) {
	root, err := filepath.Abs(config.RootDir)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}

	var files []FileInfo
	visit := func(p string, d fs.DirEntry, walkErr error) error {
		switch {
		case walkErr != nil:
			return nil
		case d.IsDir():
			if p != root && shouldExcludeDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		case !d.Type().IsRegular():
			return nil
		}
		if fi, ok := describe(root, p, d, config); ok {
			files = append(files, fi)
		}
		return nil
	}
	if err := filepath.WalkDir(root, visit); err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// describe builds the FileInfo for a regular file, reporting false for
// files that are unrecognised, filtered out or unreadable.
func describe(root, p string, d fs.DirEntry, config WalkerConfig) (FileInfo, bool) {
	kind := DetectKind(d.Name())
	if kind == KindUnknown {
		return FileInfo{}, false
	}
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return FileInfo{}, false
	}
	rel = filepath.ToSlash(rel)
	if MatchesExclude(rel, config.Exclude) {
		return FileInfo{}, false
	}

	info, err := d.Info()
	if err != nil {
		return FileInfo{}, false
	}
	sum, err := hashFile(p)
	if err != nil {
		return FileInfo{}, false
	}
	return FileInfo{Path: p, RelPath: rel, Size: info.Size(), Kind: kind, ContentHash: sum}, true
}

// ShapefileSet groups a .shp with the sidecar files sharing its base name.
type ShapefileSet struct {
	Shapefile string   // relative path of the .shp
	Sidecars  []string // extensions present, lower case without dot ("dbf", "prj")
}

// Complete reports whether the attribute sidecar needed to read the
// features is present.
func (s ShapefileSet) Complete() bool {
	for _, ext := range s.Sidecars {
		if ext == "dbf" {
			return true
		}
	}
	return false
}

// Shapefiles groups walked files into shapefile sets, ordered by path.
func Shapefiles(files []FileInfo) []ShapefileSet {
	sidecars := make(map[string][]string)
	for _, f := range files {
		if f.Kind != KindSidecar {
			continue
		}
		ext := path.Ext(f.RelPath)
		base := strings.ToLower(strings.TrimSuffix(f.RelPath, ext))
		sidecars[base] = append(sidecars[base], strings.ToLower(strings.TrimPrefix(ext, ".")))
	}

	var sets []ShapefileSet
	for _, f := range files {
		if f.Kind != KindShapefile {
			continue
		}
		base := strings.ToLower(strings.TrimSuffix(f.RelPath, path.Ext(f.RelPath)))
		exts := sidecars[base]
		sort.Strings(exts)
		sets = append(sets, ShapefileSet{Shapefile: f.RelPath, Sidecars: exts})
	}
	return sets
}

// hashFile computes the SHA-256 digest of the given file.
func hashFile(p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
