package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDirDefaults(t *testing.T) {
	s, err := LoadDir(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8750", s.Server.Addr)
	assert.Equal(t, "ollama", s.Ollama.Provider)
	assert.Equal(t, "http://localhost:11434", s.Ollama.BaseURL)
	assert.Equal(t, "llama3.2:latest", s.Ollama.Model)
	assert.InDelta(t, 0.5, s.Ollama.Temperature, 1e-9)
	assert.Equal(t, 1024, s.Ollama.MaxTokens)
	assert.False(t, s.Improve.ReplaceOriginal)
	assert.True(t, s.Improve.Streaming)
	assert.Equal(t, "medium", s.Improve.SpeedProfile)
	assert.Contains(t, s.Improve.PromptTemplate, SelectionToken)
	assert.False(t, s.Hotkey.Enabled)
	assert.Equal(t, "Ctrl+Shift+I", s.Hotkey.Chord)
}

func TestLoadDirReadsFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "ollama:\n  model: mistral:7b\n  temperature: 0.2\nimprove:\n  replace_original: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	s, err := LoadDir(dir)
	require.NoError(t, err)

	assert.Equal(t, "mistral:7b", s.Ollama.Model)
	assert.InDelta(t, 0.2, s.Ollama.Temperature, 1e-9)
	assert.True(t, s.Improve.ReplaceOriginal)
	// untouched keys keep their defaults
	assert.Equal(t, 1024, s.Ollama.MaxTokens)
}

func TestLoadDirRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "ollama:\n  temperature: 3.0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	_, err := LoadDir(dir)
	assert.ErrorContains(t, err, "ollama.temperature")
}

func TestSetPersistsChange(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("REWORD_CONFIG_DIR", dir)

	s, err := LoadDir(dir)
	require.NoError(t, err)

	require.NoError(t, s.Set("improve.replace_original", true))
	assert.True(t, s.Improve.ReplaceOriginal, "the live record updates in place")

	// the change survives a fresh load
	reloaded, err := LoadDir(dir)
	require.NoError(t, err)
	assert.True(t, reloaded.Improve.ReplaceOriginal)
}

func TestSetRollsBackInvalidChange(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("REWORD_CONFIG_DIR", dir)

	s, err := LoadDir(dir)
	require.NoError(t, err)

	err = s.Set("ollama.temperature", 2.5)
	require.Error(t, err)
	assert.InDelta(t, 0.5, s.Ollama.Temperature, 1e-9, "invalid change must not stick")

	// nothing was written
	_, statErr := os.Stat(filepath.Join(dir, "config.yaml"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"negative temperature", func(c *Config) { c.Ollama.Temperature = -0.1 }, "ollama.temperature"},
		{"zero max tokens", func(c *Config) { c.Ollama.MaxTokens = 0 }, "ollama.max_tokens"},
		{"unknown speed profile", func(c *Config) { c.Improve.SpeedProfile = "ludicrous" }, "improve.speed_profile"},
		{"template without token", func(c *Config) { c.Improve.PromptTemplate = "improve this" }, "improve.prompt_template"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default().Config
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestDirHonorsEnvOverride(t *testing.T) {
	t.Setenv("REWORD_CONFIG_DIR", "/tmp/reword-test-dir")
	assert.Equal(t, "/tmp/reword-test-dir", Dir())
}
