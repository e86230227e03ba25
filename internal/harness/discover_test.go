package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindScenarios(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b_stew.yaml", "a_work.yml", "notes.txt", "nested/c_stew.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	}

	tests := []struct {
		name   string
		filter string
		want   []string
	}{
		{"all", "", []string{"a_work.yml", "b_stew.yaml", "nested/c_stew.yaml"}},
		{"filtered", "*stew", []string{"b_stew.yaml", "nested/c_stew.yaml"}},
		{"no match", "zzz*", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := FindScenarios(dir, tt.filter)
			require.NoError(t, err)

			var rel []string
			for _, f := range files {
				r, err := filepath.Rel(dir, f)
				require.NoError(t, err)
				rel = append(rel, filepath.ToSlash(r))
			}
			assert.Equal(t, tt.want, rel)
		})
	}
}

func TestFindScenarios_SingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.yaml")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	files, err := FindScenarios(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestFindScenarios_Errors(t *testing.T) {
	_, err := FindScenarios(filepath.Join(t.TempDir(), "missing"), "")
	var nf *ScenarioNotFoundError
	require.ErrorAs(t, err, &nf)

	_, err = FindScenarios(t.TempDir(), "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter")
}
