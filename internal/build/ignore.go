package build

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// Builds the skip predicate applied during the source tree copy.
//
// The predicate excludes the dependency manifest (already copied in the
// dependency stage), the ignore file itself, anything matching the ignore
// file's patterns, and the output directory when it lives inside the source
// tree (exporting into the tree being copied must not feed the archive back
// into itself).
func sourceFilter(sourceDir, manifestPath, ignoreName, outputDir string) (func(rel string, isDir bool) bool, error) {
	manifestRel := relWithin(sourceDir, manifestPath)
	outputRel := relWithin(sourceDir, outputDir)

	var matcher *ignore.GitIgnore
	ignorePath := filepath.Join(sourceDir, ignoreName)
	if _, err := os.Stat(ignorePath); err == nil {
		matcher, err = ignore.CompileIgnoreFile(ignorePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrFileSystemOperation, ignorePath, err)
		}
	}

	return func(rel string, isDir bool) bool {
		if rel == manifestRel || rel == ignoreName {
			return true
		}
		if outputRel != "" && (rel == outputRel || strings.HasPrefix(rel, outputRel+string(filepath.Separator))) {
			return true
		}
		return matcher != nil && matcher.MatchesPath(filepath.ToSlash(rel))
	}, nil
}

// Returns path relative to dir when path lies inside dir, "" otherwise.
//
// Both arguments are made absolute first so relative and absolute inputs
// compare consistently.
func relWithin(dir, path string) string {
	if dir == "" || path == "" {
		return ""
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return ""
	}

	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return ""
	}
	if rel == "." {
		return ""
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return rel
}
