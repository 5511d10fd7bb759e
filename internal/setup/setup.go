// Package setup registers the MCP server with AI coding agents.
//
// - Claude Code: runs `claude mcp add`
// - OpenCode: injects an entry in opencode.json under "mcp"
// - Gemini CLI: injects an entry in ~/.gemini/settings.json under "mcpServers"
// - Codex: injects an [mcp_servers.dayone] block in ~/.codex/config.toml
package setup

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	runtimeGOOS = runtime.GOOS
	userHomeDir = os.UserHomeDir
	lookPathFn  = exec.LookPath
	runCommand  = func(name string, args ...string) ([]byte, error) {
		return exec.Command(name, args...).CombinedOutput()
	}
	readFileFn  = os.ReadFile
	writeFileFn = os.WriteFile
)

const serverName = "dayone"

// codexServerBlock is the TOML block injected into Codex's config.
const codexServerBlock = "[mcp_servers.dayone]\ncommand = \"dayone-mcp\"\nargs = [\"mcp\"]"

// Agent represents a supported AI coding agent.
type Agent struct {
	Name        string
	Description string
	ConfigPath  string // resolved at runtime (display only for claude-code)
}

// Result holds the outcome of a registration.
type Result struct {
	Agent       string
	Destination string
}

// SupportedAgents returns the agents this command can register with.
func SupportedAgents() []Agent {
	return []Agent{
		{
			Name:        "claude-code",
			Description: "Claude Code — registered via `claude mcp add`",
			ConfigPath:  "managed by the claude CLI",
		},
		{
			Name:        "opencode",
			Description: "OpenCode — MCP entry in opencode.json",
			ConfigPath:  openCodeConfigPath(),
		},
		{
			Name:        "gemini-cli",
			Description: "Gemini CLI — MCP entry in settings.json",
			ConfigPath:  geminiConfigPath(),
		},
		{
			Name:        "codex",
			Description: "Codex — MCP entry in config.toml",
			ConfigPath:  codexConfigPath(),
		},
	}
}

// Install registers the server with the given agent.
func Install(agentName string) (*Result, error) {
	switch agentName {
	case "claude-code":
		return installClaudeCode()
	case "opencode":
		return installOpenCode()
	case "gemini-cli":
		return installGeminiCLI()
	case "codex":
		return installCodex()
	default:
		return nil, fmt.Errorf("unknown agent: %q (supported: claude-code, opencode, gemini-cli, codex)", agentName)
	}
}

// ─── Claude Code ─────────────────────────────────────────────────────────────

func installClaudeCode() (*Result, error) {
	claudeBin, err := lookPathFn("claude")
	if err != nil {
		return nil, fmt.Errorf("claude CLI not found in PATH — install Claude Code first")
	}

	// Idempotent: if the server is already registered, claude says so.
	out, err := runCommand(claudeBin, "mcp", "add", "--scope", "user", serverName, "--", "dayone-mcp", "mcp")
	outputStr := strings.TrimSpace(string(out))
	if err != nil && !strings.Contains(outputStr, "already") {
		return nil, fmt.Errorf("claude mcp add failed: %s", outputStr)
	}

	return &Result{
		Agent:       "claude-code",
		Destination: "claude mcp registry (managed by Claude Code)",
	}, nil
}

// ─── OpenCode ────────────────────────────────────────────────────────────────

func installOpenCode() (*Result, error) {
	configPath := openCodeConfigPath()
	entry := map[string]any{
		"type":    "local",
		"command": []string{"dayone-mcp", "mcp"},
		"enabled": true,
	}
	if err := injectJSONServer(configPath, "mcp", entry); err != nil {
		return nil, err
	}

	return &Result{
		Agent:       "opencode",
		Destination: configPath,
	}, nil
}

// ─── Gemini CLI ──────────────────────────────────────────────────────────────

func installGeminiCLI() (*Result, error) {
	configPath := geminiConfigPath()
	entry := map[string]any{
		"command": "dayone-mcp",
		"args":    []string{"mcp"},
	}
	if err := injectJSONServer(configPath, "mcpServers", entry); err != nil {
		return nil, err
	}

	return &Result{
		Agent:       "gemini-cli",
		Destination: configPath,
	}, nil
}

// injectJSONServer adds the server entry under the named block of a JSON
// config file, preserving all other settings. An existing entry is replaced.
func injectJSONServer(configPath, blockKey string, entry map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var config map[string]json.RawMessage
	data, err := readFileFn(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			config = make(map[string]json.RawMessage)
		} else {
			return fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}

	var block map[string]json.RawMessage
	if raw, exists := config[blockKey]; exists {
		if err := json.Unmarshal(raw, &block); err != nil {
			return fmt.Errorf("parse %s block: %w", blockKey, err)
		}
	} else {
		block = make(map[string]json.RawMessage)
	}

	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal server entry: %w", err)
	}
	block[serverName] = json.RawMessage(entryJSON)

	blockJSON, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("marshal %s block: %w", blockKey, err)
	}
	config[blockKey] = json.RawMessage(blockJSON)

	output, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := writeFileFn(configPath, output, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// ─── Codex ───────────────────────────────────────────────────────────────────

func installCodex() (*Result, error) {
	configPath := codexConfigPath()
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	data, err := readFileFn(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	updated := upsertCodexServerBlock(string(data))
	if err := writeFileFn(configPath, []byte(updated), 0644); err != nil {
		return nil, fmt.Errorf("write config: %w", err)
	}

	return &Result{
		Agent:       "codex",
		Destination: configPath,
	}, nil
}

// upsertCodexServerBlock removes any existing [mcp_servers.dayone] block and
// appends the current one, leaving the rest of the TOML untouched.
func upsertCodexServerBlock(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")

	var kept []string
	for i := 0; i < len(lines); {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "[mcp_servers."+serverName+"]" {
			i++
			for i < len(lines) {
				next := strings.TrimSpace(lines[i])
				if strings.HasPrefix(next, "[") && strings.HasSuffix(next, "]") {
					break
				}
				i++
			}
			continue
		}

		kept = append(kept, lines[i])
		i++
	}

	base := strings.TrimSpace(strings.Join(kept, "\n"))
	if base == "" {
		return codexServerBlock + "\n"
	}

	return base + "\n\n" + codexServerBlock + "\n"
}

// ─── Platform paths ──────────────────────────────────────────────────────────

func openCodeConfigPath() string {
	home, _ := userHomeDir()

	switch runtimeGOOS {
	case "darwin", "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "opencode", "opencode.json")
		}
		return filepath.Join(home, ".config", "opencode", "opencode.json")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "opencode", "opencode.json")
		}
		return filepath.Join(home, "AppData", "Roaming", "opencode", "opencode.json")
	default:
		return filepath.Join(home, ".config", "opencode", "opencode.json")
	}
}

func geminiConfigPath() string {
	home, _ := userHomeDir()

	switch runtimeGOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "gemini", "settings.json")
		}
		return filepath.Join(home, "AppData", "Roaming", "gemini", "settings.json")
	default:
		return filepath.Join(home, ".gemini", "settings.json")
	}
}

func codexConfigPath() string {
	home, _ := userHomeDir()

	switch runtimeGOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "codex", "config.toml")
		}
		return filepath.Join(home, "AppData", "Roaming", "codex", "config.toml")
	default:
		return filepath.Join(home, ".codex", "config.toml")
	}
}
