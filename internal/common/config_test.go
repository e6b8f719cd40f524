package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, LLMProviderGemini, config.LLM.DefaultProvider)
	assert.Equal(t, 3, config.Extraction.MaxRetries)
	assert.Equal(t, time.Hour, config.Extraction.RetryCooldown)
	assert.Equal(t, 30*24*time.Hour, config.Extraction.CleanupRetention)
	assert.False(t, config.Extraction.EnforceUniqueLot)
	assert.NotEmpty(t, config.Extraction.DefaultCredentialRef)
}

func TestLoadFromFilesLayering(t *testing.T) {
	dir := t.TempDir()

	base := filepath.Join(dir, "base.toml")
	require.NoError(t, os.WriteFile(base, []byte("[server]\nport = 9000\nhost = \"0.0.0.0\"\n"), 0644))

	override := filepath.Join(dir, "override.toml")
	require.NoError(t, os.WriteFile(override, []byte("[server]\nport = 9001\n"), 0644))

	config, err := LoadFromFiles(base, override)
	require.NoError(t, err)

	// Later files win, untouched keys survive from earlier layers
	assert.Equal(t, 9001, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, 50000, config.Extraction.PageContentCap)
}

func TestLoadFromFilesMissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AUCSHEET_SERVER_PORT", "7070")
	t.Setenv("AUCSHEET_LLM_PROVIDER", "claude")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, LLMProviderClaude, config.LLM.DefaultProvider)
	assert.Equal(t, "sk-test", config.Claude.APIKey)
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()

	ApplyFlagOverrides(config, 0, "")
	assert.Equal(t, 8080, config.Server.Port)

	ApplyFlagOverrides(config, 3000, "127.0.0.1")
	assert.Equal(t, 3000, config.Server.Port)
	assert.Equal(t, "127.0.0.1", config.Server.Host)
}
