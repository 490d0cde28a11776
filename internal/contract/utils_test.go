package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/huangsam/schemadiff/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetColorLabel(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = prev }()

	tests := []struct {
		status schema.Status
		attr   *color.Color
	}{
		{schema.MajorStatus, MajorColor},
		{schema.MinorStatus, MinorColor},
		{schema.PatchStatus, PatchColor},
		{schema.AddedStatus, FileDeltaColor},
		{schema.RemovedStatus, FileDeltaColor},
		{schema.SameStatus, SameColor},
		{schema.UnchangedStatus, SameColor},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			result := GetColorLabel(tt.status)
			assert.Contains(t, result, string(tt.status))
			assert.Equal(t, tt.attr.Sprint(string(tt.status)), result)
		})
	}
}

func TestGetStatusLabel(t *testing.T) {
	assert.Equal(t, "major", GetStatusLabel(schema.MajorStatus, false))
	assert.Contains(t, GetStatusLabel(schema.MajorStatus, true), "major")
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})

	t.Run("missing directory fails", func(t *testing.T) {
		_, err := SelectOutputFile(filepath.Join(t.TempDir(), "missing", "out.txt"))
		assert.Error(t, err)
	})
}

func TestGetHistoryDBFilePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	assert.Equal(t, filepath.Join(home, ".schemadiff_history.db"), GetHistoryDBFilePath())
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		maxWidth int
		want     string
	}{
		{"fits", "a/b.json", 20, "a/b.json"},
		{"exact", "abcdef", 6, "abcdef"},
		{"truncated", "schemas/nested/person.json", 12, "...rson.json"},
		{"tiny width keeps path", "abcdef", 3, "abcdef"},
		{"multibyte", "ééééé.json", 9, "...é.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncatePath(tt.path, tt.maxWidth)
			assert.Equal(t, tt.want, got)
			if len([]rune(tt.path)) > tt.maxWidth && tt.maxWidth > 3 {
				assert.Len(t, []rune(got), tt.maxWidth)
			}
		})
	}
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "YES", "true", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}
