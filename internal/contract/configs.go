package contract

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/huangsam/schemadiff/schema"
)

// Default values for configuration.
const (
	DefaultPattern      = "**/*.json"
	DefaultValidatorURL = "http://localhost:3020/validate"
	DefaultFailOn       = schema.MajorStatus
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the validated configuration shared by every command.
type Config struct {
	// Inputs are the positional arguments of the running command.
	Inputs  []string
	OldPath string
	NewPath string

	Output     schema.OutputMode
	OutputFile string
	Workers    int
	Pattern    string
	Excludes   []string
	Detail     bool
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	Verbosity int
	LogFile   string

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	FailOn schema.Status

	Replacements    map[schema.Segment]schema.Replacement
	RequireAllMatch bool
	InPlace         bool
	OutputDir       string

	ValidatorURL    string
	LocalValidation bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	Args []string `mapstructure:"-"`

	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Workers    int    `mapstructure:"workers"`
	Pattern    string `mapstructure:"pattern"`
	Exclude    string `mapstructure:"exclude"`
	Detail     bool   `mapstructure:"detail"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`

	Verbosity int    `mapstructure:"verbosity"`
	LogFile   string `mapstructure:"log-file"`

	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// check
	FailOn string `mapstructure:"fail-on"`

	// rewrite-ids
	Owner       string `mapstructure:"owner"`
	Repo        string `mapstructure:"repo"`
	Branch      string `mapstructure:"branch"`
	Independent bool   `mapstructure:"independent"`
	InPlace     bool   `mapstructure:"in-place"`
	OutputDir   string `mapstructure:"output-dir"`

	// validate
	URL   string `mapstructure:"url"`
	Local bool   `mapstructure:"local"`
}

// Clone returns a copy of the config that can be modified independently.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Inputs = append([]string(nil), c.Inputs...)
	clone.Excludes = append([]string(nil), c.Excludes...)
	if c.Replacements != nil {
		clone.Replacements = make(map[schema.Segment]schema.Replacement, len(c.Replacements))
		for k, v := range c.Replacements {
			clone.Replacements[k] = v
		}
	}
	return &clone
}

// ProcessAndValidate turns the raw input into the validated Config.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processFailOn(cfg, input); err != nil {
		return err
	}
	if err := processRewriteOptions(cfg, input); err != nil {
		return err
	}
	processValidateOptions(cfg, input)
	return nil
}

// ValidateDatabaseConnectionString checks the connection string shape for a backend.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend, "":
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ProcessProfilingConfig enables profiling when a prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	profile.Prefix = strings.TrimSpace(profilePrefix)
	profile.Enabled = profile.Prefix != ""
	return nil
}

// ParseReplacement parses a SRC:TGT flag value. An empty value yields ok=false.
func ParseReplacement(segment schema.Segment, value string) (schema.Replacement, bool, error) {
	if value == "" {
		return schema.Replacement{}, false, nil
	}
	src, tgt, found := strings.Cut(value, ":")
	if !found || src == "" || tgt == "" {
		return schema.Replacement{}, false, fmt.Errorf("invalid --%s value %q (expected SRC:TGT)", segment, value)
	}
	return schema.Replacement{Source: src, Target: tgt}, true, nil
}

func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.Inputs = append([]string(nil), input.Args...)
	cfg.OldPath, cfg.NewPath = "", ""
	if len(cfg.Inputs) == 2 {
		cfg.OldPath, cfg.NewPath = cfg.Inputs[0], cfg.Inputs[1]
	}
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Width = input.Width
	cfg.LogFile = input.LogFile

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Verbosity < 0 {
		return fmt.Errorf("verbosity cannot be negative (received %d)", input.Verbosity)
	}
	cfg.Verbosity = input.Verbosity

	// --- 1. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}

	// --- 3. Discovery ---
	cfg.Pattern = strings.TrimSpace(input.Pattern)
	if cfg.Pattern == "" {
		cfg.Pattern = DefaultPattern
	}
	cfg.Excludes = nil
	for p := range strings.SplitSeq(input.Exclude, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			cfg.Excludes = append(cfg.Excludes, trimmed)
		}
	}

	return nil
}

func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

func processFailOn(cfg *Config, input *ConfigRawInput) error {
	level := schema.Status(strings.ToLower(strings.TrimSpace(input.FailOn)))
	if level == "" {
		level = DefaultFailOn
	}
	if _, ok := schema.ValidFailOnLevels[level]; !ok {
		return fmt.Errorf("invalid --fail-on level '%s'. must be major, minor, patch", input.FailOn)
	}
	cfg.FailOn = level
	return nil
}

func processRewriteOptions(cfg *Config, input *ConfigRawInput) error {
	raw := map[schema.Segment]string{
		schema.OwnerSegment:  input.Owner,
		schema.RepoSegment:   input.Repo,
		schema.BranchSegment: input.Branch,
	}
	cfg.Replacements = make(map[schema.Segment]schema.Replacement)
	for _, seg := range schema.AllSegments {
		repl, ok, err := ParseReplacement(seg, strings.TrimSpace(raw[seg]))
		if err != nil {
			return err
		}
		if ok {
			cfg.Replacements[seg] = repl
		}
	}

	cfg.RequireAllMatch = !input.Independent
	cfg.InPlace = input.InPlace
	cfg.OutputDir = input.OutputDir
	if cfg.InPlace && cfg.OutputDir != "" {
		return fmt.Errorf("--in-place and --output-dir are mutually exclusive")
	}
	return nil
}

func processValidateOptions(cfg *Config, input *ConfigRawInput) {
	cfg.LocalValidation = input.Local
	cfg.ValidatorURL = strings.TrimSpace(input.URL)
	if cfg.ValidatorURL == "" {
		cfg.ValidatorURL = DefaultValidatorURL
	}
}
