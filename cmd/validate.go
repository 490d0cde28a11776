package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/schemadiff/core"
	"github.com/huangsam/schemadiff/internal/validator"
	"github.com/spf13/cobra"
)

// validateCmd checks metadata records against their embedded schema.
var validateCmd = &cobra.Command{
	Use:   "validate <path>...",
	Short: "Validate {data, schema} metadata records",
	Long: `Validate every JSON file that holds a top-level "data" and "schema" pair.

By default each record is POSTed to the validator endpoint given by --url; the
endpoint must answer with a JSON list of errors (empty means valid). With --local
the schema is compiled and checked in-process.

Exit codes: 0 when all files pass, 1 when any file fails, 2 when the validator
cannot be reached.

Examples:
  # Validate against a local validator service
  schemadiff validate metadata/

  # Validate without a service
  schemadiff validate metadata/ --local`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		v := validator.New(cfg.ValidatorURL, cfg.LocalValidation)
		summary, err := core.ExecuteValidate(rootCtx, cfg, v, os.Stdout)
		if errors.Is(err, core.ErrValidatorUnreachable) {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitWith(2)
		}
		if err != nil {
			return fatal("Cannot validate metadata", err)
		}
		if summary.NFailedFiles > 0 {
			return exitWith(1)
		}
		return nil
	},
}
