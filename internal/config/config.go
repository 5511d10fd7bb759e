// Package config resolves where the Day One database and CLI live.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"dayonemcp/internal/dayone"
	"dayonemcp/internal/journal"
)

// Seams for tests.
var (
	userHomeDir = os.UserHomeDir
	getenv      = os.Getenv
)

// Config holds the resolved application configuration.
type Config struct {
	DatabasePath   string
	CLIPath        string
	DefaultJournal string
}

// Settings is the config file structure at ~/.config/dayone-mcp/config.yaml.
type Settings struct {
	Database       string `yaml:"database,omitempty"`
	CLIPath        string `yaml:"cli_path,omitempty"`
	DefaultJournal string `yaml:"default_journal,omitempty"`
}

// Flags holds CLI flag overrides.
type Flags struct {
	Database string
	CLIPath  string
	Journal  string
}

// Load resolves configuration with priority: CLI flags > env vars > config
// file > defaults. Missing or unreadable config files fall through silently;
// a config file that exists but fails to parse is an error.
func Load(flags Flags) (*Config, error) {
	cfg := &Config{
		DatabasePath: journal.DefaultDBPath(),
		CLIPath:      dayone.DefaultCLIPath,
	}

	path, err := Path()
	if err == nil {
		if data, rerr := os.ReadFile(path); rerr == nil {
			var settings Settings
			if uerr := yaml.Unmarshal(data, &settings); uerr != nil {
				return nil, fmt.Errorf("parse %s: %w", path, uerr)
			}
			if settings.Database != "" {
				cfg.DatabasePath = expandPath(settings.Database)
			}
			if settings.CLIPath != "" {
				cfg.CLIPath = expandPath(settings.CLIPath)
			}
			cfg.DefaultJournal = settings.DefaultJournal
		}
	}

	if db := getenv("DAYONE_MCP_DB"); db != "" {
		cfg.DatabasePath = expandPath(db)
	}
	if cli := getenv("DAYONE_MCP_CLI"); cli != "" {
		cfg.CLIPath = expandPath(cli)
	}
	if j := getenv("DAYONE_MCP_JOURNAL"); j != "" {
		cfg.DefaultJournal = j
	}

	if flags.Database != "" {
		cfg.DatabasePath = expandPath(flags.Database)
	}
	if flags.CLIPath != "" {
		cfg.CLIPath = expandPath(flags.CLIPath)
	}
	if flags.Journal != "" {
		cfg.DefaultJournal = flags.Journal
	}

	return cfg, nil
}

// Path returns the config file location.
func Path() (string, error) {
	home, err := userHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "dayone-mcp", "config.yaml"), nil
}

// Write persists settings to the config file, creating the directory as
// needed.
func Write(settings Settings) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := userHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
