package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "py2scala.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
remove_self = true
convert_brackets = true
tab_width = 4

[sources]
include = ["src/**.py"]
exclude = ["**/test_*.py"]

[watch]
debounce = "1s"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Scala)
	assert.True(t, cfg.RemoveSelf)
	assert.True(t, cfg.ConvertBrackets)
	assert.False(t, cfg.SecondPass)
	assert.Equal(t, 4, cfg.TabWidth)
	assert.Equal(t, []string{"src/**.py"}, cfg.Sources.Include)
	assert.Equal(t, []string{"**/test_*.py"}, cfg.Sources.Exclude)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "scala = true\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Scala)
	assert.Equal(t, Default().TabWidth, cfg.TabWidth)
	assert.Equal(t, []string{"**.py"}, cfg.Sources.Include)
	assert.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce)
}

func TestLoad_MissingDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_DefaultFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte("second_pass = true\n"), 0o644))
	t.Chdir(dir)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.SecondPass)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "scala = ", "parsing config"},
		{"unknown key", "remove_selff = true\n", "unknown key remove_selff"},
		{"wrong type", "tab_width = \"wide\"\n", "parsing config"},
		{"negative tab", "tab_width = -2\n", "tab_width must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
