package contract

import (
	"testing"

	"github.com/huangsam/schemadiff/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Args:    []string{"old", "new"},
		Output:  string(schema.TextOut),
		Workers: 4,
		Pattern: DefaultPattern,
		Color:   "yes",
		FailOn:  string(schema.MajorStatus),
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*ConfigRawInput)
		errorMsg string
		check    func(*testing.T, *Config)
	}{
		{
			name: "valid minimal config",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "old", cfg.OldPath)
				assert.Equal(t, "new", cfg.NewPath)
				assert.Equal(t, []string{"old", "new"}, cfg.Inputs)
				assert.Equal(t, schema.TextOut, cfg.Output)
				assert.True(t, cfg.UseColors)
				assert.Equal(t, schema.MajorStatus, cfg.FailOn)
				assert.True(t, cfg.RequireAllMatch)
				assert.Equal(t, DefaultValidatorURL, cfg.ValidatorURL)
				assert.Empty(t, cfg.Replacements)
			},
		},
		{
			name: "output is case insensitive",
			modify: func(in *ConfigRawInput) {
				in.Output = "JSON"
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.JSONOut, cfg.Output)
			},
		},
		{
			name:     "invalid output",
			modify:   func(in *ConfigRawInput) { in.Output = "xml" },
			errorMsg: "invalid output format",
		},
		{
			name:     "parquet needs output file",
			modify:   func(in *ConfigRawInput) { in.Output = "parquet" },
			errorMsg: "--output-file is required for parquet output",
		},
		{
			name:     "zero workers",
			modify:   func(in *ConfigRawInput) { in.Workers = 0 },
			errorMsg: "workers must be greater than 0",
		},
		{
			name:     "negative verbosity",
			modify:   func(in *ConfigRawInput) { in.Verbosity = -1 },
			errorMsg: "verbosity cannot be negative",
		},
		{
			name:     "invalid color",
			modify:   func(in *ConfigRawInput) { in.Color = "sometimes" },
			errorMsg: "invalid --color value",
		},
		{
			name: "excludes are split and trimmed",
			modify: func(in *ConfigRawInput) {
				in.Exclude = " vendor/** , ,*.draft.json"
				in.Pattern = "  "
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"vendor/**", "*.draft.json"}, cfg.Excludes)
				assert.Equal(t, DefaultPattern, cfg.Pattern)
			},
		},
		{
			name: "single input has no old/new pair",
			modify: func(in *ConfigRawInput) {
				in.Args = []string{"schemas"}
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Empty(t, cfg.OldPath)
				assert.Empty(t, cfg.NewPath)
				assert.Equal(t, []string{"schemas"}, cfg.Inputs)
			},
		},
		{
			name:     "invalid fail-on",
			modify:   func(in *ConfigRawInput) { in.FailOn = "added" },
			errorMsg: "invalid --fail-on level",
		},
		{
			name: "empty fail-on uses default",
			modify: func(in *ConfigRawInput) {
				in.FailOn = ""
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultFailOn, cfg.FailOn)
			},
		},
		{
			name: "rewrite replacements",
			modify: func(in *ConfigRawInput) {
				in.Branch = "dev:v2.3.0"
				in.Owner = "acme:corp"
				in.Independent = true
				in.InPlace = true
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, map[schema.Segment]schema.Replacement{
					schema.OwnerSegment:  {Source: "acme", Target: "corp"},
					schema.BranchSegment: {Source: "dev", Target: "v2.3.0"},
				}, cfg.Replacements)
				assert.False(t, cfg.RequireAllMatch)
				assert.True(t, cfg.InPlace)
			},
		},
		{
			name:     "malformed replacement",
			modify:   func(in *ConfigRawInput) { in.Repo = "schemas" },
			errorMsg: "invalid --repo value",
		},
		{
			name: "in-place and output-dir conflict",
			modify: func(in *ConfigRawInput) {
				in.InPlace = true
				in.OutputDir = "out"
			},
			errorMsg: "mutually exclusive",
		},
		{
			name: "validator options",
			modify: func(in *ConfigRawInput) {
				in.URL = " http://validator:8080/check "
				in.Local = true
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "http://validator:8080/check", cfg.ValidatorURL)
				assert.True(t, cfg.LocalValidation)
			},
		},
		{
			name:     "invalid history backend",
			modify:   func(in *ConfigRawInput) { in.HistoryBackend = "redis" },
			errorMsg: "invalid history backend",
		},
		{
			name: "mysql backend with connection string",
			modify: func(in *ConfigRawInput) {
				in.HistoryBackend = "MySQL"
				in.HistoryDBConnect = "user:pass@tcp(localhost:3306)/schemadiff"
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.MySQLBackend, cfg.HistoryBackend)
			},
		},
		{
			name:     "mysql backend without connection string",
			modify:   func(in *ConfigRawInput) { in.HistoryBackend = "mysql" },
			errorMsg: "history-db-connect is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			if tt.modify != nil {
				tt.modify(input)
			}
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.errorMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name     string
		backend  schema.DatabaseBackend
		connStr  string
		errorMsg string
	}{
		{"sqlite needs nothing", schema.SQLiteBackend, "", ""},
		{"none needs nothing", schema.NoneBackend, "", ""},
		{"mysql valid", schema.MySQLBackend, "root:pw@tcp(db:3306)/schemadiff", ""},
		{"mysql missing tcp", schema.MySQLBackend, "root:pw@db/schemadiff", "@tcp("},
		{"mysql missing database", schema.MySQLBackend, "root:pw@tcp(db:3306)", "database name"},
		{"postgres valid", schema.PostgreSQLBackend, "host=db dbname=schemadiff", ""},
		{"postgres missing host", schema.PostgreSQLBackend, "dbname=schemadiff", "host="},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=db", "dbname="},
		{"postgres empty", schema.PostgreSQLBackend, "", "history-db-connect is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestParseReplacement(t *testing.T) {
	repl, ok, err := ParseReplacement(schema.BranchSegment, "dev:refs/tags/v1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, schema.Replacement{Source: "dev", Target: "refs/tags/v1"}, repl)

	_, ok, err = ParseReplacement(schema.OwnerSegment, "")
	require.NoError(t, err)
	assert.False(t, ok)

	for _, bad := range []string{"dev", ":main", "dev:"} {
		_, _, err = ParseReplacement(schema.BranchSegment, bad)
		assert.Error(t, err, bad)
	}
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(profile, "  run1 "))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "run1", profile.Prefix)

	require.NoError(t, ProcessProfilingConfig(profile, ""))
	assert.False(t, profile.Enabled)
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{
		Inputs:       []string{"a"},
		Excludes:     []string{"x"},
		Replacements: map[schema.Segment]schema.Replacement{schema.RepoSegment: {Source: "a", Target: "b"}},
	}
	clone := cfg.Clone()
	clone.Inputs[0] = "changed"
	clone.Excludes = append(clone.Excludes, "y")
	delete(clone.Replacements, schema.RepoSegment)

	assert.Equal(t, []string{"a"}, cfg.Inputs)
	assert.Equal(t, []string{"x"}, cfg.Excludes)
	assert.Len(t, cfg.Replacements, 1)
}
