package mcp

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	mcppkg "github.com/mark3labs/mcp-go/mcp"
	_ "modernc.org/sqlite"

	"dayonemcp/internal/dayone"
	"dayonemcp/internal/journal"
)

const testUUID = "0FBBE44E05F44B1C9A720566A32B3CCF"

// newTestDeps seeds a minimal Day One database with two entries and returns
// handler dependencies pointed at it.
func newTestDeps(t *testing.T) Deps {
	t.Helper()
	path := filepath.Join(t.TempDir(), "DayOne.sqlite")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE ZENTRY (
			Z_PK INTEGER PRIMARY KEY,
			ZUUID TEXT, ZRICHTEXTJSON TEXT, ZMARKDOWNTEXT TEXT,
			ZCREATIONDATE REAL, ZMODIFIEDDATE REAL,
			ZSTARRED INTEGER, ZTIMEZONE TEXT, ZJOURNAL INTEGER,
			ZLOCATION INTEGER, ZWEATHER INTEGER
		);
		CREATE TABLE ZJOURNAL (Z_PK INTEGER PRIMARY KEY, ZNAME TEXT, ZUUIDFORAUXILIARYSYNC TEXT);
		CREATE TABLE ZTAG (Z_PK INTEGER PRIMARY KEY, ZNAME TEXT);
		CREATE TABLE Z_13TAGS (Z_13ENTRIES INTEGER, Z_55TAGS1 INTEGER);
		INSERT INTO ZJOURNAL (Z_PK, ZNAME) VALUES (1, 'Personal');
	`)
	if err != nil {
		t.Fatalf("create fixture schema: %v", err)
	}

	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC).Unix() - 978307200
	for _, row := range []struct {
		uuid, text string
		at         int64
		starred    int
	}{
		{testUUID, "Coffee with Maria downtown", created, 0},
		{"1A2B3C4D5E6F47089A0B1C2D3E4F5A6B", "Quiet day at home", created + 3600, 1},
	} {
		_, err = db.Exec(`
			INSERT INTO ZENTRY (ZUUID, ZRICHTEXTJSON, ZCREATIONDATE, ZMODIFIEDDATE, ZSTARRED, ZJOURNAL)
			VALUES (?, ?, ?, ?, ?, 1)
		`, row.uuid, `{"text":"`+row.text+`"}`, row.at, row.at, row.starred)
		if err != nil {
			t.Fatalf("seed entry: %v", err)
		}
	}

	return Deps{
		Store:  journal.New(path),
		Client: dayone.NewClient("/nonexistent/dayone2"),
	}
}

func callResultText(t *testing.T, res *mcppkg.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatalf("expected non-empty tool result")
	}
	text, ok := mcppkg.AsTextContent(res.Content[0])
	if !ok {
		t.Fatalf("expected text content")
	}
	return text.Text
}

func callTool(t *testing.T, h func(context.Context, mcppkg.CallToolRequest) (*mcppkg.CallToolResult, error), args map[string]any) *mcppkg.CallToolResult {
	t.Helper()
	req := mcppkg.CallToolRequest{Params: mcppkg.CallToolParams{Arguments: args}}
	res, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return res
}

func TestNewServerRegistersTools(t *testing.T) {
	deps := newTestDeps(t)
	if NewServer(deps) == nil {
		t.Fatalf("expected MCP server instance")
	}
}

func TestResolveToolsProfiles(t *testing.T) {
	if got := ResolveTools(""); got != nil {
		t.Fatalf("empty input should mean all tools, got %v", got)
	}
	if got := ResolveTools("all"); got != nil {
		t.Fatalf("'all' should mean all tools, got %v", got)
	}

	read := ResolveTools("read")
	if !read["search_entries"] || read["create_journal_entry"] {
		t.Fatalf("read profile wrong: %v", read)
	}

	both := ResolveTools("read,write")
	if !both["search_entries"] || !both["create_journal_entry"] {
		t.Fatalf("combined profiles wrong: %v", both)
	}

	single := ResolveTools("on_this_day, read_entry")
	if len(single) != 2 || !single["on_this_day"] || !single["read_entry"] {
		t.Fatalf("individual tool names wrong: %v", single)
	}
}

func TestHandleRecentListsEntries(t *testing.T) {
	deps := newTestDeps(t)

	res := callTool(t, handleRecent(deps), map[string]any{})
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", callResultText(t, res))
	}

	text := callResultText(t, res)
	if !strings.Contains(text, "Found 2 entries") {
		t.Fatalf("unexpected listing: %q", text)
	}
	// Newest first.
	if strings.Index(text, "Quiet day") > strings.Index(text, "Coffee with Maria") {
		t.Fatalf("expected newest entry first: %q", text)
	}
}

func TestHandleRecentRejectsBadLimit(t *testing.T) {
	deps := newTestDeps(t)

	res := callTool(t, handleRecent(deps), map[string]any{"limit": float64(51)})
	if !res.IsError {
		t.Fatalf("expected tool error for limit 51")
	}
	if !strings.Contains(callResultText(t, res), "limit") {
		t.Fatalf("error should name the limit: %q", callResultText(t, res))
	}
}

func TestHandleSearchFindsCaseInsensitive(t *testing.T) {
	deps := newTestDeps(t)

	res := callTool(t, handleSearch(deps), map[string]any{"query": "maria"})
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", callResultText(t, res))
	}
	if !strings.Contains(callResultText(t, res), "Coffee with Maria") {
		t.Fatalf("expected match in output: %q", callResultText(t, res))
	}

	res = callTool(t, handleSearch(deps), map[string]any{"query": "zebra"})
	if res.IsError || !strings.Contains(callResultText(t, res), "No entries found") {
		t.Fatalf("expected empty result message, got %q", callResultText(t, res))
	}
}

func TestHandleSearchRequiresQuery(t *testing.T) {
	deps := newTestDeps(t)

	res := callTool(t, handleSearch(deps), map[string]any{})
	if !res.IsError {
		t.Fatalf("expected tool error for missing query")
	}
}

func TestHandleReadReturnsFullEntry(t *testing.T) {
	deps := newTestDeps(t)

	res := callTool(t, handleRead(deps), map[string]any{"uuid": testUUID})
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", callResultText(t, res))
	}
	text := callResultText(t, res)
	if !strings.Contains(text, testUUID) || !strings.Contains(text, "Coffee with Maria downtown") {
		t.Fatalf("unexpected entry output: %q", text)
	}

	res = callTool(t, handleRead(deps), map[string]any{"uuid": "garbage"})
	if !res.IsError {
		t.Fatalf("expected tool error for malformed uuid")
	}
}

func TestHandleJournalsAndCount(t *testing.T) {
	deps := newTestDeps(t)

	res := callTool(t, handleJournals(deps), map[string]any{})
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", callResultText(t, res))
	}
	if !strings.Contains(callResultText(t, res), "Personal: 2 entries") {
		t.Fatalf("unexpected journal listing: %q", callResultText(t, res))
	}

	res = callTool(t, handleCount(deps), map[string]any{"journal": "Personal"})
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", callResultText(t, res))
	}
	if !strings.Contains(callResultText(t, res), `2 entries in journal "Personal"`) {
		t.Fatalf("unexpected count output: %q", callResultText(t, res))
	}
}

func TestHandleUpdateAndAppend(t *testing.T) {
	deps := newTestDeps(t)

	res := callTool(t, handleUpdate(deps), map[string]any{"uuid": testUUID, "content": "rewritten"})
	if res.IsError {
		t.Fatalf("unexpected update error: %s", callResultText(t, res))
	}

	res = callTool(t, handleAppend(deps), map[string]any{"uuid": testUUID, "content": "postscript"})
	if res.IsError {
		t.Fatalf("unexpected append error: %s", callResultText(t, res))
	}

	res = callTool(t, handleRead(deps), map[string]any{"uuid": testUUID})
	if !strings.Contains(callResultText(t, res), "rewritten\n\npostscript") {
		t.Fatalf("expected appended content, got %q", callResultText(t, res))
	}
}

func TestHandleCreateValidation(t *testing.T) {
	deps := newTestDeps(t)

	res := callTool(t, handleCreate(deps), map[string]any{
		"content":  "A walk in the park",
		"latitude": float64(40.7),
	})
	if !res.IsError || !strings.Contains(callResultText(t, res), "together") {
		t.Fatalf("expected coordinate pairing error, got %q", callResultText(t, res))
	}

	res = callTool(t, handleCreate(deps), map[string]any{"content": "   "})
	if !res.IsError {
		t.Fatalf("expected tool error for empty content")
	}
}

func TestHandleErrorsWhenDatabaseMissing(t *testing.T) {
	deps := Deps{
		Store:  journal.New(filepath.Join(t.TempDir(), "missing.sqlite")),
		Client: dayone.NewClient(""),
	}

	res := callTool(t, handleRecent(deps), map[string]any{})
	if !res.IsError {
		t.Fatalf("expected tool error when database is missing")
	}
	if !strings.Contains(callResultText(t, res), "Day One database unavailable") {
		t.Fatalf("expected setup guidance, got %q", callResultText(t, res))
	}
}

func TestTruncateCutsAtRuneBoundary(t *testing.T) {
	// "é" is two bytes; a cut at byte 2 lands mid-rune and must back off.
	got := truncate("héllo", 2)
	if got != "h..." {
		t.Fatalf("expected %q, got %q", "h...", got)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncated string is not valid UTF-8: %q", got)
	}

	// A four-byte emoji straddling the boundary is dropped whole.
	got = truncate("ab🎉cd", 4)
	if got != "ab..." {
		t.Fatalf("expected %q, got %q", "ab...", got)
	}

	if got := truncate("short", 300); got != "short" {
		t.Fatalf("short strings must pass through, got %q", got)
	}
}
