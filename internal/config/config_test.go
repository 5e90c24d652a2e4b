package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesDistilledSpecification(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 100_000, cfg.Reader.BatchSize)
	assert.Equal(t, 6, cfg.Packer.Count)
	assert.Equal(t, 0.95, cfg.Packer.AcceptableRatio)
}

func TestLoadAppliesDefaultsForOmittedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  dir: /tmp/batches\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/batches", cfg.Output.Dir)
	assert.Equal(t, 100_000, cfg.Reader.BatchSize)
	assert.Equal(t, 6, cfg.Packer.Count)
}

func TestLoadHonorsExplicitValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("packer:\n  count: 12\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Packer.Count)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
