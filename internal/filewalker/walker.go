package filewalker

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
)

// SourceExtension is the extension of files the tool converts.
const SourceExtension = ".cs"

// skippedDirs are build and tooling directories never holding sources.
var skippedDirs = map[string]bool{
	"bin":          true,
	"obj":          true,
	".git":         true,
	".vs":          true,
	"node_modules": true,
}

// FileEntry represents a discovered source file.
type FileEntry struct {
	// Path is absolute.
	Path string
	// Rel is relative to the walked root.
	Rel string
}

// Walker discovers source files under a root directory.
type Walker struct{}

// NewWalker creates a Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// SkipDir reports whether a directory with this name is never descended.
func SkipDir(name string) bool {
	return skippedDirs[name]
}

// IsSource reports whether path names a source file.
func IsSource(path string) bool {
	return strings.EqualFold(filepath.Ext(path), SourceExtension)
}

// Walk discovers all source files under the given root directory, sorted by
// relative path.
func (w *Walker) Walk(root string) ([]FileEntry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, "resolve root path")
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(err, "stat root")
	}
	if !info.IsDir() {
		return nil, errors.Newf("root is not a directory: %s", root)
	}

	var entries []FileEntry

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}

		if d.IsDir() {
			if path != root && SkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !IsSource(path) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return errors.Wrapf(err, "relative path of %s", path)
		}
		entries = append(entries, FileEntry{Path: path, Rel: rel})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "walk directory")
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Rel < entries[j].Rel })

	log.Info().Int("count", len(entries)).Str("root", root).Msg("Discovered files")
	return entries, nil
}

// OutputExtension returns ".d.ts" for ambient declaration files and ".ts"
// otherwise.
func OutputExtension(definitionFile bool) string {
	if definitionFile {
		return ".d.ts"
	}
	return ".ts"
}

// OutputPath maps a source file under the walked root to its target path
// under outputDir, keeping the directory layout.
func OutputPath(outputDir, rel string, definitionFile bool) string {
	base := strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.Join(outputDir, base+OutputExtension(definitionFile))
}
