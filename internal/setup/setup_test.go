package setup

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func resetSetupSeams(t *testing.T) {
	t.Helper()
	oldRuntimeGOOS := runtimeGOOS
	oldUserHomeDir := userHomeDir
	oldLookPathFn := lookPathFn
	oldRunCommand := runCommand
	oldReadFileFn := readFileFn
	oldWriteFileFn := writeFileFn
	t.Cleanup(func() {
		runtimeGOOS = oldRuntimeGOOS
		userHomeDir = oldUserHomeDir
		lookPathFn = oldLookPathFn
		runCommand = oldRunCommand
		readFileFn = oldReadFileFn
		writeFileFn = oldWriteFileFn
	})

	runtimeGOOS = "darwin"
	home := t.TempDir()
	userHomeDir = func() (string, error) { return home, nil }
}

func TestSupportedAgentsListsAllFour(t *testing.T) {
	resetSetupSeams(t)

	agents := SupportedAgents()
	if len(agents) != 4 {
		t.Fatalf("expected 4 agents, got %d", len(agents))
	}
	names := map[string]bool{}
	for _, a := range agents {
		names[a.Name] = true
	}
	for _, want := range []string{"claude-code", "opencode", "gemini-cli", "codex"} {
		if !names[want] {
			t.Fatalf("missing agent %s", want)
		}
	}
}

func TestInstallUnknownAgent(t *testing.T) {
	resetSetupSeams(t)

	_, err := Install("cursor")
	if err == nil || !strings.Contains(err.Error(), "unknown agent") {
		t.Fatalf("expected unknown agent error, got %v", err)
	}
}

func TestInstallClaudeCode(t *testing.T) {
	t.Run("claude missing from PATH", func(t *testing.T) {
		resetSetupSeams(t)
		lookPathFn = func(string) (string, error) { return "", errors.New("not found") }

		_, err := Install("claude-code")
		if err == nil || !strings.Contains(err.Error(), "not found in PATH") {
			t.Fatalf("expected PATH error, got %v", err)
		}
	})

	t.Run("registers via mcp add", func(t *testing.T) {
		resetSetupSeams(t)
		lookPathFn = func(string) (string, error) { return "claude", nil }
		var gotArgs []string
		runCommand = func(_ string, args ...string) ([]byte, error) {
			gotArgs = args
			return []byte("Added MCP server dayone"), nil
		}

		result, err := Install("claude-code")
		if err != nil {
			t.Fatalf("install: %v", err)
		}
		if result.Agent != "claude-code" {
			t.Fatalf("unexpected result: %+v", result)
		}
		joined := strings.Join(gotArgs, " ")
		if !strings.Contains(joined, "mcp add") || !strings.Contains(joined, "dayone-mcp mcp") {
			t.Fatalf("unexpected claude args: %q", joined)
		}
	})

	t.Run("already registered is fine", func(t *testing.T) {
		resetSetupSeams(t)
		lookPathFn = func(string) (string, error) { return "claude", nil }
		runCommand = func(string, ...string) ([]byte, error) {
			return []byte("server dayone already exists"), errors.New("exit 1")
		}

		if _, err := Install("claude-code"); err != nil {
			t.Fatalf("expected already-registered to succeed, got %v", err)
		}
	})

	t.Run("hard failure surfaces output", func(t *testing.T) {
		resetSetupSeams(t)
		lookPathFn = func(string) (string, error) { return "claude", nil }
		runCommand = func(string, ...string) ([]byte, error) {
			return []byte("permission denied"), errors.New("exit 1")
		}

		_, err := Install("claude-code")
		if err == nil || !strings.Contains(err.Error(), "permission denied") {
			t.Fatalf("expected failure output, got %v", err)
		}
	})
}

func TestInstallOpenCodeCreatesEntry(t *testing.T) {
	resetSetupSeams(t)

	result, err := Install("opencode")
	if err != nil {
		t.Fatalf("install: %v", err)
	}

	data, err := os.ReadFile(result.Destination)
	if err != nil {
		t.Fatalf("read written config: %v", err)
	}
	var config map[string]map[string]map[string]any
	if err := json.Unmarshal(data, &config); err != nil {
		t.Fatalf("parse written config: %v", err)
	}
	entry := config["mcp"]["dayone"]
	if entry == nil {
		t.Fatalf("missing dayone entry: %s", data)
	}
	if entry["type"] != "local" || entry["enabled"] != true {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestInstallOpenCodePreservesExistingConfig(t *testing.T) {
	resetSetupSeams(t)
	home, _ := userHomeDir()
	dir := filepath.Join(home, ".config", "opencode")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	existing := `{"theme": "dark", "mcp": {"other": {"type": "local"}}}`
	if err := os.WriteFile(filepath.Join(dir, "opencode.json"), []byte(existing), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	result, err := Install("opencode")
	if err != nil {
		t.Fatalf("install: %v", err)
	}

	data, _ := os.ReadFile(result.Destination)
	text := string(data)
	for _, want := range []string{`"theme"`, `"other"`, `"dayone"`} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %s preserved in config: %s", want, text)
		}
	}
}

func TestInstallGeminiCLI(t *testing.T) {
	resetSetupSeams(t)

	result, err := Install("gemini-cli")
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if !strings.HasSuffix(result.Destination, filepath.Join(".gemini", "settings.json")) {
		t.Fatalf("unexpected destination %s", result.Destination)
	}

	data, _ := os.ReadFile(result.Destination)
	var config map[string]map[string]map[string]any
	if err := json.Unmarshal(data, &config); err != nil {
		t.Fatalf("parse written config: %v", err)
	}
	entry := config["mcpServers"]["dayone"]
	if entry == nil || entry["command"] != "dayone-mcp" {
		t.Fatalf("unexpected gemini entry: %s", data)
	}
}

func TestInstallGeminiRejectsMalformedConfig(t *testing.T) {
	resetSetupSeams(t)
	home, _ := userHomeDir()
	dir := filepath.Join(home, ".gemini")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "settings.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Install("gemini-cli"); err == nil {
		t.Fatal("expected parse error for malformed settings.json")
	}
}

func TestInstallCodexAppendsBlock(t *testing.T) {
	resetSetupSeams(t)

	result, err := Install("codex")
	if err != nil {
		t.Fatalf("install: %v", err)
	}

	data, _ := os.ReadFile(result.Destination)
	if !strings.Contains(string(data), "[mcp_servers.dayone]") {
		t.Fatalf("expected server block, got: %s", data)
	}
}

func TestUpsertCodexServerBlock(t *testing.T) {
	t.Run("empty config", func(t *testing.T) {
		out := upsertCodexServerBlock("")
		if !strings.HasPrefix(out, "[mcp_servers.dayone]") {
			t.Fatalf("unexpected output: %q", out)
		}
	})

	t.Run("preserves other sections", func(t *testing.T) {
		existing := "model = \"o3\"\n\n[mcp_servers.other]\ncommand = \"other\"\n"
		out := upsertCodexServerBlock(existing)
		if !strings.Contains(out, "[mcp_servers.other]") || !strings.Contains(out, "model = \"o3\"") {
			t.Fatalf("existing content lost: %q", out)
		}
		if !strings.Contains(out, "[mcp_servers.dayone]") {
			t.Fatalf("block not added: %q", out)
		}
	})

	t.Run("replaces stale block", func(t *testing.T) {
		stale := "[mcp_servers.dayone]\ncommand = \"old-binary\"\nargs = [\"old\"]\n\n[other]\nkey = 1\n"
		out := upsertCodexServerBlock(stale)
		if strings.Contains(out, "old-binary") {
			t.Fatalf("stale block kept: %q", out)
		}
		if !strings.Contains(out, "[other]") {
			t.Fatalf("other section lost: %q", out)
		}
		if strings.Count(out, "[mcp_servers.dayone]") != 1 {
			t.Fatalf("expected exactly one block: %q", out)
		}
	})
}
