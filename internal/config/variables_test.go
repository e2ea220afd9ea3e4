package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildVariables(t *testing.T) {
	t.Setenv("BG_BGTEST_COLOR", "blue")

	variables, err := BuildVariables([]string{"BG_BGTEST_COLOR"}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"BG_BGTEST_COLOR": "blue"}, variables)
}

func TestBuildVariables_MissingEnv(t *testing.T) {
	_, err := BuildVariables([]string{"BG_SURELY_UNSET_VARIABLE"}, nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, `"BG_SURELY_UNSET_VARIABLE" is not set`)
}

func TestBuildVariables_EnvFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "base.env")
	second := filepath.Join(dir, "green.env")
	require.NoError(t, os.WriteFile(first, []byte("BGTEST_COLOR=blue\nBGTEST_VERSION=V10\n"), 0644))
	require.NoError(t, os.WriteFile(second, []byte("BGTEST_COLOR=green\n"), 0644))

	t.Setenv("BGTEST_VERSION", "V12")

	variables, err := BuildVariables([]string{"BGTEST_VERSION", "BGTEST_COLOR"}, []string{first, second})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"BGTEST_COLOR":   "green",
		"BGTEST_VERSION": "V12",
	}, variables)
}

func TestBuildVariables_MissingEnvFile(t *testing.T) {
	_, err := BuildVariables(nil, []string{filepath.Join(t.TempDir(), "absent.env")})
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to read env file")
}
