package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEnablesEveryPass(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.Passes.Liveness)
	assert.True(t, cfg.Passes.VariableMerge)
	assert.True(t, cfg.Passes.AccumulatorState)
	assert.True(t, cfg.Passes.BlockCleanup)
	assert.Equal(t, 0, cfg.FloorSize)
}

func TestLoadOverridesOnlyPresentKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("passes:\n  variable_merge: false\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Passes.VariableMerge)
	// Keys absent from the document keep Default()'s values.
	assert.True(t, cfg.Passes.Liveness)
	assert.True(t, cfg.Passes.AccumulatorState)
	assert.True(t, cfg.Passes.BlockCleanup)
}

func TestLoadFloorSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("floor_size: 16\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.FloorSize)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("passes: [this is not a mapping"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
