package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/huangsam/schemadiff/internal/contract"
	"github.com/huangsam/schemadiff/internal/discover"
	"github.com/huangsam/schemadiff/internal/logger"
	"github.com/huangsam/schemadiff/internal/outwriter"
	"github.com/huangsam/schemadiff/schema"
	"go.uber.org/zap"
)

// ErrNoJSONFiles is returned when a file command finds nothing to process.
var ErrNoJSONFiles = errors.New("no JSON files found under the given inputs")

// rawGitHubURI captures owner, repo and branch of a raw GitHub URI prefix.
// A refs/heads, refs/tags or refs/remotes/<r> qualifier is matched but not kept.
var rawGitHubURI = regexp.MustCompile(`^https://raw\.githubusercontent\.com/([^/]+)/([^/]+)/(?:refs/(?:heads|tags|remotes/[^/]+)/)?([^/]+)/`)

// idKeys are the object keys whose string values are treated as URIs.
var idKeys = map[string]struct{}{
	"$id":      {},
	"$ref":     {},
	"@context": {},
}

// ValidateReplacements rejects unknown segments and empty sources.
func ValidateReplacements(replacements map[schema.Segment]schema.Replacement) error {
	for seg, repl := range replacements {
		if _, ok := schema.ValidSegments[seg]; !ok {
			return fmt.Errorf("invalid segment %q. Allowed: [branch owner repo]", seg)
		}
		if repl.Source == "" {
			return fmt.Errorf("replacement for %q needs a non-empty source", seg)
		}
	}
	return nil
}

// SwapSegments rewrites the owner, repo and branch of a raw GitHub URI.
// With requireAll, every requested segment must match its source before any
// swap happens. It reports false when the URI is left untouched.
func SwapSegments(uri string, replacements map[schema.Segment]schema.Replacement, requireAll bool) (string, bool) {
	m := rawGitHubURI.FindStringSubmatch(uri)
	if m == nil {
		return "", false
	}
	current := map[schema.Segment]string{
		schema.OwnerSegment:  m[1],
		schema.RepoSegment:   m[2],
		schema.BranchSegment: m[3],
	}

	if requireAll {
		for seg, repl := range replacements {
			if current[seg] != repl.Source {
				return "", false
			}
		}
	}

	changed := false
	for _, seg := range schema.AllSegments {
		repl, ok := replacements[seg]
		if !ok || current[seg] != repl.Source {
			continue
		}
		current[seg] = repl.Target
		changed = true
	}
	if !changed {
		return "", false
	}

	prefix := fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/",
		current[schema.OwnerSegment], current[schema.RepoSegment], current[schema.BranchSegment])
	return prefix + uri[len(m[0]):], true
}

// PatchJSONTree returns a copy of node with every URI under $id, $ref and
// @context rewritten. Each rewrite is recorded in mappings; the first mapping
// for a URI wins.
func PatchJSONTree(node any, replacements map[schema.Segment]schema.Replacement, requireAll bool, mappings map[string]string) any {
	switch v := node.(type) {
	case map[string]any:
		patched := make(map[string]any, len(v))
		for key, value := range v {
			if s, ok := value.(string); ok {
				if _, isID := idKeys[key]; isID {
					patched[key] = swapAndRecord(s, replacements, requireAll, mappings)
					continue
				}
			}
			patched[key] = PatchJSONTree(value, replacements, requireAll, mappings)
		}
		return patched
	case []any:
		patched := make([]any, len(v))
		for i, item := range v {
			patched[i] = PatchJSONTree(item, replacements, requireAll, mappings)
		}
		return patched
	default:
		return node
	}
}

func swapAndRecord(uri string, replacements map[schema.Segment]schema.Replacement, requireAll bool, mappings map[string]string) string {
	newURI, ok := SwapSegments(uri, replacements, requireAll)
	if !ok {
		return uri
	}
	if _, seen := mappings[uri]; !seen {
		mappings[uri] = newURI
	}
	return newURI
}

// ExecuteRewriteIDs rewrites URIs in every discovered JSON file and prints a
// JSON summary to w. Files are only written with --in-place or --output-dir.
func ExecuteRewriteIDs(ctx context.Context, cfg *contract.Config, w io.Writer) (*schema.RewriteSummary, error) {
	if len(cfg.Replacements) == 0 {
		return nil, errors.New("no replacements requested. Use --owner/--repo/--branch")
	}
	if err := ValidateReplacements(cfg.Replacements); err != nil {
		return nil, err
	}

	files := discover.CollectCandidateJSON(cfg.Inputs, discover.Options{Pattern: cfg.Pattern, Excludes: cfg.Excludes})
	if len(files) == 0 {
		return nil, ErrNoJSONFiles
	}
	logger.Info("Scanning JSON files", zap.Int("files", len(files)))

	summary := &schema.RewriteSummary{
		Timestamp:               time.Now().UTC().Truncate(time.Second),
		Inputs:                  cfg.Inputs,
		Replacements:            cfg.Replacements,
		RequireAllSegmentsMatch: cfg.RequireAllMatch,
		NTotalFiles:             len(files),
		ProcessedFiles:          []string{},
		ModifiedFiles:           []string{},
		URIMappings:             map[string]string{},
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Debug("Processing file", zap.String("file", path))
		summary.ProcessedFiles = append(summary.ProcessedFiles, path)

		doc, _, err := loadJSONFile(path)
		if err != nil {
			logger.Warn("Skipping invalid JSON file", zap.String("file", path), zap.Error(err))
			continue
		}

		fileMappings := make(map[string]string)
		patched := PatchJSONTree(doc, cfg.Replacements, cfg.RequireAllMatch, fileMappings)
		if len(fileMappings) == 0 {
			continue
		}

		summary.NModified++
		summary.ModifiedFiles = append(summary.ModifiedFiles, path)
		for oldURI, newURI := range fileMappings {
			if _, seen := summary.URIMappings[oldURI]; !seen {
				summary.URIMappings[oldURI] = newURI
			}
		}
		logger.Debug("URIs updated", zap.String("file", path), zap.Int("count", len(fileMappings)))

		if dest := rewriteDestination(cfg, path); dest != "" {
			if err := writePatchedJSON(dest, patched); err != nil {
				return nil, err
			}
		}
	}

	if err := outwriter.WriteJSON(w, summary); err != nil {
		return summary, err
	}
	return summary, nil
}

// rewriteDestination is where the patched copy of path goes, or "" when
// nothing should be written.
func rewriteDestination(cfg *contract.Config, path string) string {
	switch {
	case cfg.InPlace:
		return path
	case cfg.OutputDir != "":
		return filepath.Join(cfg.OutputDir, filepath.Base(path))
	default:
		return ""
	}
}

func writePatchedJSON(dest string, doc any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode %s: %w", dest, err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	logger.Debug("Writing modified JSON", zap.String("file", dest))
	if err := os.WriteFile(dest, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}
