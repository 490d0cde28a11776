package cmd

import (
	"os"

	"github.com/huangsam/schemadiff/core"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD policy enforcement.
var checkCmd = &cobra.Command{
	Use:   "check <old> <new>",
	Short: "Fail the build when schema changes reach a semver level",
	Long: `Compare two schema trees and print a concise pass/fail summary.

Designed for CI/CD: exits with code 1 when any file changed at or above the
--fail-on level (major by default).

Examples:
  # Block releases that break consumers
  schemadiff check main/schemas feature/schemas

  # Stricter gate: any non-descriptive change fails
  schemadiff check old/ new/ --fail-on minor`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		result, err := core.ExecuteSchemaCheck(rootCtx, cfg, historyManager, os.Stdout)
		if err != nil {
			return fatal("Schema check failed", err)
		}
		if !result.Passed {
			return exitWith(1)
		}
		return nil
	},
}
