// Package cmd defines the command-line interface for schemadiff.
package cmd

import (
	"github.com/huangsam/schemadiff/internal/contract"
	"github.com/huangsam/schemadiff/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(rewriteCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().String("exclude", "", "Comma-separated list of glob patterns to ignore")
	rootCmd.PersistentFlags().String("pattern", contract.DefaultPattern, "Glob pattern for schema discovery inside directories")
	rootCmd.PersistentFlags().Bool("detail", false, "Print every change record below the summary table")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().CountP("verbosity", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file (rotated)")
	rootCmd.PersistentFlags().String("history-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of checkCmd to Viper
	checkCmd.Flags().String("fail-on", string(contract.DefaultFailOn), "Lowest level that fails the check: major or minor or patch")
	if err := viper.BindPFlags(checkCmd.Flags()); err != nil {
		contract.LogFatal("Error binding check flags", err)
	}

	// Bind all flags of rewriteCmd to Viper
	rewriteCmd.Flags().String("owner", "", "Swap the owner segment (format: SRC:TGT)")
	rewriteCmd.Flags().String("repo", "", "Swap the repo segment (format: SRC:TGT)")
	rewriteCmd.Flags().String("branch", "", "Swap the branch segment (format: SRC:TGT)")
	rewriteCmd.Flags().Bool("independent", false, "Swap each matching segment even if the others do not match")
	rewriteCmd.Flags().BoolP("in-place", "w", false, "Overwrite the input files")
	rewriteCmd.Flags().StringP("output-dir", "o", "", "Write modified files to this directory")
	if err := viper.BindPFlags(rewriteCmd.Flags()); err != nil {
		contract.LogFatal("Error binding rewrite-ids flags", err)
	}

	// Bind all flags of validateCmd to Viper
	validateCmd.Flags().StringP("url", "u", contract.DefaultValidatorURL, "Validator endpoint that receives each record")
	validateCmd.Flags().Bool("local", false, "Validate in-process instead of calling the validator endpoint")
	if err := viper.BindPFlags(validateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding validate flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
