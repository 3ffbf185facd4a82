// Copyright 2024-2026 Aiku AI

package relay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.ListenAddr)
	assert.Equal(t, "accounts.json", cfg.AccountsFile)
	require.NotEmpty(t, cfg.Logging.Writers)
	require.NotNil(t, cfg.Logging.MinLevel)
}

func TestLoadConfig_PortEnvOverride(t *testing.T) {
	t.Setenv("PORT", "8080")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: :4000\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
}

func TestLoadConfig_ReadsValues(t *testing.T) {
	t.Setenv("PORT", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: :4000\naccounts_file: /var/lib/relay/accounts.json\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":4000", cfg.ListenAddr)
	assert.Equal(t, "/var/lib/relay/accounts.json", cfg.AccountsFile)
}

func TestExampleConfig_Parses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(ExampleConfig), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	_, err = cfg.Logging.Compile()
	require.NoError(t, err)
}
