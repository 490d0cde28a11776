// Package discover finds JSON files under user supplied paths.
package discover

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/huangsam/schemadiff/internal/logger"
	"go.uber.org/zap"
)

// DefaultPattern matches every JSON file below a root.
const DefaultPattern = "**/*.json"

// Options controls which files a directory walk returns.
type Options struct {
	Pattern  string   // doublestar glob matched on the root-relative path
	Excludes []string // doublestar globs matched on the relative path and base name
}

func (o Options) pattern() string {
	if o.Pattern == "" {
		return DefaultPattern
	}
	return o.Pattern
}

// IsJSONFile reports whether the name carries a .json suffix, ignoring case.
func IsJSONFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json")
}

// ShouldExclude reports whether rel (slash separated) matches any exclude glob.
func ShouldExclude(rel string, excludes []string) bool {
	base := filepath.Base(rel)
	for _, pattern := range excludes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// CollectCandidateJSON returns the absolute paths of every JSON file found in
// paths, which may be files or directories. Results are deduplicated and sorted.
func CollectCandidateJSON(paths []string, opts Options) []string {
	seen := make(map[string]struct{})
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			logger.Warn("Path not found", zap.String("path", p))
			continue
		}

		if info.IsDir() {
			files, err := walkDir(p, opts)
			if err != nil {
				logger.Warn("Failed to walk directory", zap.String("path", p), zap.Error(err))
				continue
			}
			for _, rel := range files {
				seen[absPath(filepath.Join(p, filepath.FromSlash(rel)))] = struct{}{}
			}
			continue
		}

		if !IsJSONFile(p) {
			logger.Debug("Ignoring non-JSON path", zap.String("path", p))
			continue
		}
		seen[absPath(p)] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// FindSchemaFiles maps a comparison key to the absolute path of each JSON
// file under root. Directory entries are keyed by their slash separated path
// relative to root, a single file by its base name. A missing root yields an
// empty map.
func FindSchemaFiles(root string, opts Options) map[string]string {
	out := make(map[string]string)
	info, err := os.Stat(root)
	if err != nil {
		return out
	}

	if !info.IsDir() {
		out[filepath.Base(root)] = absPath(root)
		return out
	}

	files, err := walkDir(root, opts)
	if err != nil {
		logger.Warn("Failed to walk directory", zap.String("path", root), zap.Error(err))
		return out
	}
	for _, rel := range files {
		out[rel] = absPath(filepath.Join(root, filepath.FromSlash(rel)))
	}
	return out
}

// walkDir returns slash separated paths relative to root, in walk order.
func walkDir(root string, opts Options) ([]string, error) {
	pattern := opts.pattern()
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !IsJSONFile(rel) {
			return nil
		}
		// The default pattern is case sensitive, IsJSONFile already covers it
		if pattern != DefaultPattern {
			if ok, _ := doublestar.Match(pattern, rel); !ok {
				return nil
			}
		}
		if ShouldExclude(rel, opts.Excludes) {
			logger.Debug("Excluding file", zap.String("file", rel))
			return nil
		}
		files = append(files, rel)
		return nil
	})
	return files, err
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
