package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsComplete(t *testing.T) {
	cfg := Default()
	require.NotEmpty(t, cfg.ChatAddr)
	require.NotEmpty(t, cfg.HTTPAddr)
	require.NotZero(t, cfg.ShutdownTimeout)
	require.NotEmpty(t, cfg.LogLevel)
	require.NotEmpty(t, cfg.VIPSecret)
}

func TestUpdateFromKeepsUnsetFields(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{ChatAddr: ":9999", ShutdownTimeout: 10 * time.Second})

	require.Equal(t, ":9999", cfg.ChatAddr)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, Default().HTTPAddr, cfg.HTTPAddr)
	require.Equal(t, Default().VIPSecret, cfg.VIPSecret)
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, path, err := Load(nil, dir+"/config.yaml")
	require.NoError(t, err)
	require.Equal(t, dir+"/config.yaml", path)
	require.Equal(t, Default().ChatAddr, cfg.ChatAddr)

	// Load writes the default file back for next time.
	cfg2, _, err := Load(nil, path)
	require.NoError(t, err)
	require.Equal(t, cfg, cfg2)
}
