package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/schemadiff/internal/contract"
	"github.com/huangsam/schemadiff/internal/discover"
	"github.com/huangsam/schemadiff/internal/logger"
	"github.com/huangsam/schemadiff/internal/outwriter"
	"github.com/huangsam/schemadiff/schema"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Validation errors surfaced to the command layer.
var (
	ErrValidatorUnreachable = errors.New("cannot reach validator endpoint")
	ErrNoMetadataFiles      = errors.New("no JSON metadata files with 'data' and 'schema' keys were found under the given inputs")
)

// metadataFile is a discovered record ready for validation.
type metadataFile struct {
	path   string
	record map[string]any
}

// filterMetadataFiles keeps the files whose top-level object has both a
// "data" and a "schema" key.
func filterMetadataFiles(paths []string) []metadataFile {
	var targets []metadataFile
	for _, path := range paths {
		doc, _, err := loadJSONFile(path)
		if err != nil {
			logger.Warn("Not a valid JSON file", zap.String("file", path), zap.Error(err))
			continue
		}
		record, ok := doc.(map[string]any)
		if !ok {
			logger.Debug("Missing 'data'/'schema', skipping", zap.String("file", path))
			continue
		}
		_, hasData := record["data"]
		_, hasSchema := record["schema"]
		if !hasData || !hasSchema {
			logger.Debug("Missing 'data'/'schema', skipping", zap.String("file", path))
			continue
		}
		targets = append(targets, metadataFile{path: path, record: record})
	}
	return targets
}

// ExecuteValidate checks every metadata record under cfg.Inputs with v and
// prints a JSON summary to w.
func ExecuteValidate(ctx context.Context, cfg *contract.Config, v contract.Validator, w io.Writer) (*schema.ValidationSummary, error) {
	if err := v.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w '%s': %v", ErrValidatorUnreachable, v.Name(), err)
	}

	all := discover.CollectCandidateJSON(cfg.Inputs, discover.Options{Pattern: cfg.Pattern, Excludes: cfg.Excludes})
	targets := filterMetadataFiles(all)
	if len(targets) == 0 {
		return nil, ErrNoMetadataFiles
	}
	logger.Info("Discovered JSON files",
		zap.Int("files", len(all)),
		zap.Int("qualifying", len(targets)))

	results, err := validateAll(ctx, v, targets, cfg.Workers)
	if err != nil {
		return nil, err
	}

	summary := &schema.ValidationSummary{
		Timestamp:           time.Now().UTC().Truncate(time.Second),
		ValidatorURL:        v.Name(),
		InputPaths:          cfg.Inputs,
		NTotalFiles:         len(targets),
		FailedFiles:         []string{},
		ErrorsOfFailedFiles: map[string][]any{},
	}
	for _, res := range results {
		if res.Passed {
			continue
		}
		summary.NFailedFiles++
		summary.FailedFiles = append(summary.FailedFiles, res.File)
		summary.ErrorsOfFailedFiles[res.File] = res.Errors
	}

	if err := outwriter.WriteJSON(w, summary); err != nil {
		return summary, err
	}
	return summary, nil
}

// validateAll runs the validator over targets with at most workers requests
// in flight. Results keep target order.
func validateAll(ctx context.Context, v contract.Validator, targets []metadataFile, workers int) ([]schema.ValidationResult, error) {
	results := make([]schema.ValidationResult, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, target := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = validateOne(gctx, v, target)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("validate files: %w", err)
	}
	return results, nil
}

func validateOne(ctx context.Context, v contract.Validator, target metadataFile) schema.ValidationResult {
	logger.Debug("Validating", zap.String("file", target.path))

	errs, err := v.Validate(ctx, target.record)
	switch {
	case err != nil:
		logger.Error("Validation FAILED (request error)", zap.String("file", target.path), zap.Error(err))
		return schema.ValidationResult{File: target.path, Errors: []any{err.Error()}}
	case len(errs) > 0:
		logger.Error("Validation FAILED", zap.String("file", target.path), zap.Int("errors", len(errs)))
		return schema.ValidationResult{File: target.path, Errors: errs}
	default:
		logger.Debug("Validation PASSED", zap.String("file", target.path))
		return schema.ValidationResult{File: target.path, Passed: true}
	}
}
