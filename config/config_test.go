package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := `
dataset:
  path: /data/heroes.csv
  strict: false
index:
  kind: cover
query:
  default_k: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("HEROMATCH_QUERY_DEFAULT_K", "7")
	t.Setenv("HEROMATCH_LOG_LEVEL", "debug")

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "/data/heroes.csv", cfg.Dataset.Path)
	assert.False(t, cfg.Dataset.Strict)
	assert.Equal(t, "cover", cfg.Index.Kind)
	assert.Equal(t, 7, cfg.Query.DefaultK)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 1024, cfg.Cache.Size)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(New(), filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("{{invalid yaml:::"), 0o644))
	_, err = Load(New(), bad)
	assert.Error(t, err)

	zero := filepath.Join(dir, "zero.yaml")
	require.NoError(t, os.WriteFile(zero, []byte("query:\n  default_k: 0\n"), 0o644))
	_, err = Load(New(), zero)
	assert.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	cfg := Default()
	cfg.Scaler.Kind = "minmax"
	cfg.Metrics.Enabled = true
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
