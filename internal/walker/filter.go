package walker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExcludes are directory names skipped during traversal.
var DefaultExcludes = []string{
	".git",
	"__MACOSX",
	"node_modules",
	".venv",
	".idea",
	".vscode",
}

// shouldExcludeDir checks whether a directory name matches any default
// exclusion pattern. This is used during traversal to skip entire subtrees.
func shouldExcludeDir(name string) bool {
	for _, excl := range DefaultExcludes {
		if strings.EqualFold(name, excl) {
			return true
		}
	}
	return false
}

// MatchesExclude returns true if the given relative path matches any of the
// exclude patterns. If patterns is empty, nothing is excluded.
func MatchesExclude(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	return matchesAny(relPath, patterns)
}

// Find resolves name inside root. A path that exists as given (relative to
// root, or absolute) wins; otherwise name is treated as a doublestar pattern
// and, if it has no directory part, also searched as "**/<name>". The first
// match in lexical order that is not excluded is returned.
func Find(root, name string, exclude []string) (string, error) {
	direct := name
	if !filepath.IsAbs(direct) {
		direct = filepath.Join(root, name)
	}
	if info, err := os.Stat(direct); err == nil && !info.IsDir() {
		return direct, nil
	}

	patterns := []string{filepath.ToSlash(name)}
	if !strings.Contains(filepath.ToSlash(name), "/") {
		patterns = append(patterns, "**/"+filepath.ToSlash(name))
	}

	fsys := os.DirFS(root)
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return "", fmt.Errorf("walker: bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if excludedPath(m) || MatchesExclude(m, exclude) {
				continue
			}
			return filepath.Join(root, filepath.FromSlash(m)), nil
		}
	}
	return "", fmt.Errorf("walker: %s not found under %s: %w", name, root, os.ErrNotExist)
}

// excludedPath reports whether any directory component of a slash path is
// default-excluded.
func excludedPath(rel string) bool {
	parts := strings.Split(rel, "/")
	for _, p := range parts[:len(parts)-1] {
		if shouldExcludeDir(p) {
			return true
		}
	}
	return false
}

// matchesAny checks if relPath matches any of the given glob patterns.
// It uses doublestar for ** support and also tries the bare file name.
func matchesAny(relPath string, patterns []string) bool {
	normalized := filepath.ToSlash(relPath)

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)

		if matched, err := doublestar.PathMatch(pattern, normalized); err == nil && matched {
			return true
		}

		base := filepath.Base(normalized)
		if matched, err := doublestar.PathMatch(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}

// ValidatePatterns reports the first malformed glob pattern.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(filepath.ToSlash(p)) {
			return fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return nil
}
