package cmd

import (
	"errors"
	"os"

	"github.com/huangsam/schemadiff/core"
	"github.com/huangsam/schemadiff/internal/logger"
	"github.com/spf13/cobra"
)

// rewriteCmd retargets raw GitHub URIs inside schema files.
var rewriteCmd = &cobra.Command{
	Use:   "rewrite-ids <path>...",
	Short: "Rewrite owner/repo/branch of raw GitHub URIs in $id, $ref and @context",
	Long: `Rewrite https://raw.githubusercontent.com/<owner>/<repo>/<branch>/ prefixes
found in $id, $ref and @context values.

Each of --owner, --repo and --branch takes SRC:TGT. By default every requested
segment must match before a URI is changed; --independent swaps each segment
on its own. Without --in-place or --output-dir nothing is written and only the
JSON summary is printed. Exits with code 1 when no file was modified.

Examples:
  # Preview a release retarget
  schemadiff rewrite-ids schemas/ --branch dev:v2.3.0

  # Apply it to the files
  schemadiff rewrite-ids schemas/ --branch dev:v2.3.0 -w

  # Move to a fork and write copies elsewhere
  schemadiff rewrite-ids schemas/ --owner acme:corp -o converted/`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		summary, err := core.ExecuteRewriteIDs(rootCtx, cfg, os.Stdout)
		if errors.Is(err, core.ErrNoJSONFiles) {
			logger.Warn("No JSON files found in the given paths")
			return exitWith(1)
		}
		if err != nil {
			return fatal("Cannot rewrite ids", err)
		}
		if summary.NModified == 0 {
			return exitWith(1)
		}
		return nil
	},
}
