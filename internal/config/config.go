// Package config loads and validates the run configuration. Values are
// layered: built-in defaults, then an optional TOML file, then
// NETUPGRADE_-prefixed environment variables; command-line flags are
// applied on top by the CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the explicit, validated configuration for a run. The
// original tool kept these as compile-time constants; here everything is
// injected at startup.
type Config struct {
	Root             string `koanf:"root"`
	Extension        string `koanf:"extension"`
	ChunkSize        int    `koanf:"chunk_size"`
	Model            string `koanf:"model"`
	BaseURL          string `koanf:"base_url"`
	APIKey           string `koanf:"api_key"`
	Workers          int    `koanf:"workers"`
	DryRun           bool   `koanf:"dry_run"`
	RespectGitignore bool   `koanf:"respect_gitignore"`
	CacheSize        int    `koanf:"cache_size"`
	ReportDB         string `koanf:"report_db"`
	LogLevel         string `koanf:"log_level"`
}

// Load reads configuration from defaults, an optional TOML file, and the
// environment. An empty configPath tries the default locations.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	_ = k.Load(confmap.Provider(map[string]interface{}{
		"extension":         ".cs",
		"chunk_size":        200_000,
		"model":             "gpt-4o",
		"workers":           0, // 0 means runtime.NumCPU()
		"respect_gitignore": true,
		"log_level":         "info",
	}, "."), nil)

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", configPath, err)
		}
	} else {
		for _, path := range []string{"./netupgrade.toml", "$HOME/.netupgrade.toml"} {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// Keys are flat (chunk_size, api_key), so env names map by prefix
	// strip and lowercase only.
	_ = k.Load(env.Provider("NETUPGRADE_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "NETUPGRADE_"))
	}), nil)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return &cfg, nil
}

// Validate checks the fields a run cannot proceed without. The API key
// is checked separately by the client so dry parsing of reports works
// without credentials.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root path is required")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.Extension == "" {
		return fmt.Errorf("file extension is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	return nil
}

// ReportDBPath resolves the journal location, defaulting to
// ~/.netupgrade/runs.db.
func (c *Config) ReportDBPath() (string, error) {
	if c.ReportDB != "" {
		return c.ReportDB, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".netupgrade")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return filepath.Join(dir, "runs.db"), nil
}

// Init writes a sample configuration file.
func Init(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	sample := `# netupgrade configuration

root = "/path/to/solution"
extension = ".cs"
chunk_size = 200000

model = "gpt-4o"
# base_url = "https://my-deployment.openai.azure.com"
# api_key = "sk-..."         # falls back to OPENAI_API_KEY

workers = 0                  # 0 = number of CPUs
respect_gitignore = true
dry_run = false
log_level = "info"
`
	return os.WriteFile(configPath, []byte(sample), 0644)
}
