package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ReadsYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server:\n  port: 4100\nroom:\n  claim_policy: override\n"), 0o600))

	v, err := Load(dir, "config")
	require.NoError(t, err)
	assert.Equal(t, 4100, v.GetInt("server.port"))
	assert.Equal(t, "override", v.GetString("room.claim_policy"))
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("ROOM_SUCCESSOR_POLICY", "latest")

	v, err := Load(t.TempDir(), "config")
	require.NoError(t, err)
	assert.Equal(t, "latest", v.GetString("room.successor_policy"))
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("WATCHPARTY_DOTENV_PROBE=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("WATCHPARTY_DOTENV_PROBE") })

	v, err := Load(dir, "config")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", v.GetString("watchparty.dotenv.probe"))
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unterminated"), 0o600))

	_, err := Load(dir, "config")
	assert.Error(t, err)
}
