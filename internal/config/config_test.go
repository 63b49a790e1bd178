package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ".cs", cfg.Extension)
	assert.Equal(t, 200_000, cfg.ChunkSize)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Zero(t, cfg.Workers)
	assert.True(t, cfg.RespectGitignore)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netupgrade.toml")
	content := `
root = "/src/legacy"
chunk_size = 1000
model = "gpt-4o-mini"
workers = 8
dry_run = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/src/legacy", cfg.Root)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 8, cfg.Workers)
	assert.True(t, cfg.DryRun)
	// Untouched keys keep their defaults.
	assert.Equal(t, ".cs", cfg.Extension)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netupgrade.toml")
	require.NoError(t, os.WriteFile(path, []byte(`model = "from-file"`), 0644))

	t.Setenv("NETUPGRADE_MODEL", "from-env")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Model)
}

func TestLoad_APIKeyFallback(t *testing.T) {
	t.Setenv("NETUPGRADE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-fallback")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-fallback", cfg.APIKey)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := &Config{Root: "/src", Extension: ".cs", ChunkSize: 100, Model: "gpt-4o"}
	assert.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty root", func(c *Config) { c.Root = "" }},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"negative chunk size", func(c *Config) { c.ChunkSize = -5 }},
		{"empty extension", func(c *Config) { c.Extension = "" }},
		{"empty model", func(c *Config) { c.Model = "" }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := *valid
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netupgrade.toml")

	require.NoError(t, Init(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "chunk_size")

	// Refuses to clobber an existing file.
	assert.Error(t, Init(path))
}
