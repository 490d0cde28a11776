package cmd

import (
	"github.com/huangsam/schemadiff/core"
	"github.com/huangsam/schemadiff/schema"
	"github.com/spf13/cobra"
)

// compareCmd writes the full semver report for two schema trees.
var compareCmd = &cobra.Command{
	Use:   "compare <old> <new>",
	Short: "Compare two schema files or directories and report the semver level",
	Long: `Compare every JSON Schema under <old> with its counterpart under <new>.

Each file is classified as:
- major     - a breaking change (new required fields, changed types, removed keywords...)
- minor     - a non-breaking change (new optional properties, relaxed requirements)
- patch     - only descriptive fields changed (title, description, examples...)
- same      - identical content
- added     - only present in <new>
- removed   - only present in <old>

The overall status is the highest of major/minor/patch. Added and removed files
are listed but do not affect it. The command exits with code 1 when the overall
status is major.

When both arguments are single files they are always compared with each other,
even if their names differ. Inside directories files are matched by relative
path, so a renamed file shows up as removed plus added.

Examples:
  # Compare two releases of a schema directory
  schemadiff compare schemas-v1/ schemas-v2/

  # Compare two single files
  schemadiff compare v1/cohort.json v2/cohort.json

  # Show every change record
  schemadiff compare old/ new/ --detail

  # Export the report for other tools
  schemadiff compare old/ new/ --output json --output-file report.json`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		report, err := core.ExecuteSchemaDiff(rootCtx, cfg, historyManager)
		if err != nil {
			return fatal("Cannot compare schemas", err)
		}
		if report.OverallStatus == schema.MajorStatus {
			return exitWith(1)
		}
		return nil
	},
}
