package agentconn

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "opencode", cfg.Settings.DefaultAgent)
	assert.NotEmpty(t, cfg.Agents)
}

func TestLoadConfigOverridesOneAgent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
agents:
  - name: custom
    command: my-agent
    args: ["--acp"]
settings:
  defaultAgent: custom
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Agents, 1)
	assert.Equal(t, "custom", cfg.Agents[0].Name)
	assert.Equal(t, "my-agent", cfg.Agents[0].Command)
	assert.Equal(t, "custom", cfg.Settings.DefaultAgent)
}

func TestLoadConfigRejectsAgentMissingCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
agents:
  - name: broken
`)

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
