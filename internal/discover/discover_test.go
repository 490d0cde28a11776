package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func setupTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "a.json", "{}")
	writeFile(t, root, "nested/b.json", "{}")
	writeFile(t, root, "nested/deep/c.JSON", "{}")
	writeFile(t, root, "vendor/d.json", "{}")
	writeFile(t, root, "notes.txt", "hello")
	return root
}

func TestIsJSONFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.json", true},
		{"A.JSON", true},
		{"dir/b.Json", true},
		{"c.jsonl", false},
		{"json", false},
		{"d.txt", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsJSONFile(tt.name), tt.name)
	}
}

func TestShouldExclude(t *testing.T) {
	tests := []struct {
		name     string
		rel      string
		excludes []string
		want     bool
	}{
		{"no patterns", "a.json", nil, false},
		{"base name match", "nested/tmp.json", []string{"tmp.json"}, true},
		{"directory glob", "vendor/x/y.json", []string{"vendor/**"}, true},
		{"extension glob", "nested/draft.json", []string{"*.json"}, true},
		{"no match", "nested/b.json", []string{"vendor/**"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldExclude(tt.rel, tt.excludes))
		})
	}
}

func TestFindSchemaFilesDirectory(t *testing.T) {
	root := setupTree(t)

	files := FindSchemaFiles(root, Options{})
	assert.Len(t, files, 4)
	assert.Contains(t, files, "a.json")
	assert.Contains(t, files, "nested/b.json")
	assert.Contains(t, files, "nested/deep/c.JSON")
	assert.Contains(t, files, "vendor/d.json")
	assert.True(t, filepath.IsAbs(files["a.json"]))
}

func TestFindSchemaFilesPatternAndExcludes(t *testing.T) {
	root := setupTree(t)

	files := FindSchemaFiles(root, Options{Pattern: "nested/**/*.json"})
	assert.Equal(t, []string{"nested/b.json"}, keys(files))

	files = FindSchemaFiles(root, Options{Excludes: []string{"vendor/**"}})
	assert.NotContains(t, files, "vendor/d.json")
	assert.Contains(t, files, "a.json")
}

func TestFindSchemaFilesSingleFile(t *testing.T) {
	root := setupTree(t)

	files := FindSchemaFiles(filepath.Join(root, "nested", "b.json"), Options{})
	require.Len(t, files, 1)
	assert.Contains(t, files, "b.json")
}

func TestFindSchemaFilesMissing(t *testing.T) {
	files := FindSchemaFiles(filepath.Join(t.TempDir(), "missing"), Options{})
	assert.Empty(t, files)
}

func TestCollectCandidateJSON(t *testing.T) {
	root := setupTree(t)
	explicit := filepath.Join(root, "a.json")

	got := CollectCandidateJSON([]string{
		root,
		explicit, // duplicate of a walked file
		filepath.Join(root, "notes.txt"),
		filepath.Join(root, "missing.json"),
	}, Options{})

	assert.Len(t, got, 4)
	assert.IsIncreasing(t, got)
	for _, p := range got {
		assert.True(t, filepath.IsAbs(p))
		assert.True(t, IsJSONFile(p))
	}
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
