// Package mcp implements the Model Context Protocol server for Day One.
//
// This exposes journal tools via MCP stdio transport so ANY agent
// (OpenCode, Claude Code, Cursor, Windsurf, etc.) can read and write
// Day One entries just by adding it as an MCP server.
//
// Tool profiles allow agents to load only the tools they need:
//
//	dayone-mcp mcp                       → all 9 tools (default)
//	dayone-mcp mcp --tools=read          → 6 read-only tools
//	dayone-mcp mcp --tools=write         → 3 tools that modify the journal
//	dayone-mcp mcp --tools=read,write    → combine profiles
//	dayone-mcp mcp --tools=search_entries,on_this_day → individual tool names
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"dayonemcp/internal/dayone"
	"dayonemcp/internal/journal"
)

// ─── Tool Profiles ───────────────────────────────────────────────────────────
//
// "read" — tools that only query the journal database:
//   read_recent_entries, search_entries, on_this_day, read_entry,
//   list_journals, get_entry_count
//
// "write" — tools that create or modify entries:
//   create_journal_entry, update_entry, append_to_entry
//
// "all" (default) — every tool registered.

// ProfileRead contains the tools that never modify the journal.
var ProfileRead = map[string]bool{
	"read_recent_entries": true,
	"search_entries":      true,
	"on_this_day":         true,
	"read_entry":          true,
	"list_journals":       true,
	"get_entry_count":     true,
}

// ProfileWrite contains the tools that create or modify entries.
var ProfileWrite = map[string]bool{
	"create_journal_entry": true,
	"update_entry":         true,
	"append_to_entry":      true,
}

// Profiles maps profile names to their tool sets.
var Profiles = map[string]map[string]bool{
	"read":  ProfileRead,
	"write": ProfileWrite,
}

// ResolveTools takes a comma-separated string of profile names and/or
// individual tool names and returns the set of tool names to register.
// An empty input means "all" — every tool is registered.
func ResolveTools(input string) map[string]bool {
	input = strings.TrimSpace(input)
	if input == "" || input == "all" {
		return nil // nil means register everything
	}

	result := make(map[string]bool)
	for _, token := range strings.Split(input, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if token == "all" {
			return nil
		}
		if profile, ok := Profiles[token]; ok {
			for tool := range profile {
				result[tool] = true
			}
		} else {
			// Treat as individual tool name
			result[token] = true
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// Deps bundles what the tool handlers need: the SQLite reader for queries
// and the dayone2 CLI wrapper for entry creation.
type Deps struct {
	Store          *journal.Store
	Client         *dayone.Client
	DefaultJournal string
}

// NewServer creates an MCP server with ALL tools registered.
func NewServer(deps Deps) *server.MCPServer {
	return NewServerWithTools(deps, nil)
}

// serverInstructions tells MCP clients (especially Claude Code's Tool Search)
// when to search for the journal tools. This string is returned in the
// initialize response and may be added to the system prompt by clients.
const serverInstructions = `Day One MCP gives direct access to the user's personal journal. ` +
	`Search these tools when the user asks about their journal, diary, or past ` +
	`entries; wants to write, update, or append to an entry; asks what happened ` +
	`on this day in previous years; or wants journal statistics. Key tools: ` +
	`read_recent_entries, search_entries, on_this_day, create_journal_entry.`

// NewServerWithTools creates an MCP server registering only the tools in
// the allowlist. If allowlist is nil, all tools are registered.
func NewServerWithTools(deps Deps, allowlist map[string]bool) *server.MCPServer {
	srv := server.NewMCPServer(
		"dayone-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(serverInstructions),
	)

	registerTools(srv, deps, allowlist)
	return srv
}

// shouldRegister returns true if the tool should be registered given the
// allowlist. If allowlist is nil, everything is allowed.
func shouldRegister(name string, allowlist map[string]bool) bool {
	if allowlist == nil {
		return true
	}
	return allowlist[name]
}

func registerTools(srv *server.MCPServer, deps Deps, allowlist map[string]bool) {
	// ─── read_recent_entries (profile: read, core) ──────────────────────
	if shouldRegister("read_recent_entries", allowlist) {
		srv.AddTool(
			mcp.NewTool("read_recent_entries",
				mcp.WithDescription("Read the most recent journal entries, newest first. Use this to catch up on what the user has been writing about lately."),
				mcp.WithTitleAnnotation("Read Recent Entries"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithNumber("limit",
					mcp.Description("Max entries to return (default: 5, max: 50)"),
				),
				mcp.WithString("journal",
					mcp.Description("Restrict to one journal by name (default: all journals)"),
				),
			),
			handleRecent(deps),
		)
	}

	// ─── search_entries (profile: read, core) ───────────────────────────
	if shouldRegister("search_entries", allowlist) {
		srv.AddTool(
			mcp.NewTool("search_entries",
				mcp.WithDescription("Search journal entries for text, case-insensitive, newest first. Use this to find when the user wrote about a person, place, or topic."),
				mcp.WithTitleAnnotation("Search Entries"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithString("query",
					mcp.Required(),
					mcp.Description("Text to search for in entry content"),
				),
				mcp.WithNumber("limit",
					mcp.Description("Max results (default: 10, max: 50)"),
				),
				mcp.WithString("journal",
					mcp.Description("Restrict to one journal by name"),
				),
			),
			handleSearch(deps),
		)
	}

	// ─── on_this_day (profile: read, deferred) ──────────────────────────
	if shouldRegister("on_this_day", allowlist) {
		srv.AddTool(
			mcp.NewTool("on_this_day",
				mcp.WithDescription("Find entries written on a given month and day across past years, grouped by year. Great for 'what was I doing a year ago' retrospectives."),
				mcp.WithDeferLoading(true),
				mcp.WithTitleAnnotation("On This Day"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithString("date",
					mcp.Required(),
					mcp.Description("Target day as MM-DD, or YYYY-MM-DD to anchor the scan at that year"),
				),
				mcp.WithNumber("years_back",
					mcp.Description("How many years to scan, including the anchor year (default: 5)"),
				),
			),
			handleOnThisDay(deps),
		)
	}

	// ─── read_entry (profile: read, deferred) ───────────────────────────
	if shouldRegister("read_entry", allowlist) {
		srv.AddTool(
			mcp.NewTool("read_entry",
				mcp.WithDescription("Read the full, untruncated content of one entry by UUID. Use after search_entries or read_recent_entries to drill into a specific entry."),
				mcp.WithDeferLoading(true),
				mcp.WithTitleAnnotation("Read Entry"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithString("uuid",
					mcp.Required(),
					mcp.Description("The entry UUID from a previous tool result"),
				),
			),
			handleRead(deps),
		)
	}

	// ─── list_journals (profile: read, deferred) ────────────────────────
	if shouldRegister("list_journals", allowlist) {
		srv.AddTool(
			mcp.NewTool("list_journals",
				mcp.WithDescription("List every journal with its entry count and the date of its most recent entry."),
				mcp.WithDeferLoading(true),
				mcp.WithTitleAnnotation("List Journals"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
			),
			handleJournals(deps),
		)
	}

	// ─── get_entry_count (profile: read, deferred) ──────────────────────
	if shouldRegister("get_entry_count", allowlist) {
		srv.AddTool(
			mcp.NewTool("get_entry_count",
				mcp.WithDescription("Count journal entries, optionally scoped to one journal."),
				mcp.WithDeferLoading(true),
				mcp.WithTitleAnnotation("Entry Count"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithString("journal",
					mcp.Description("Journal name to count (default: all journals)"),
				),
			),
			handleCount(deps),
		)
	}

	// ─── create_journal_entry (profile: write, core) ────────────────────
	if shouldRegister("create_journal_entry", allowlist) {
		srv.AddTool(
			mcp.NewTool("create_journal_entry",
				mcp.WithTitleAnnotation("Create Journal Entry"),
				mcp.WithReadOnlyHintAnnotation(false),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(false),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithDescription(`Create a new Day One journal entry. The entry goes through the official dayone2 CLI so it syncs like any entry written in the app.

Content is markdown. The first line becomes the entry title in Day One, so start with a short heading when the user gives one.

Dates use "YYYY-MM-DD HH:MM:SS". Tags are plain words without the # prefix.`),
				mcp.WithString("content",
					mcp.Required(),
					mcp.Description("Entry text in markdown"),
				),
				mcp.WithArray("tags",
					mcp.Description("Tags to attach, without the # prefix"),
					mcp.WithStringItems(),
				),
				mcp.WithString("journal",
					mcp.Description("Journal name to write into (default: the app's default journal)"),
				),
				mcp.WithString("date",
					mcp.Description("Backdate the entry, format YYYY-MM-DD HH:MM:SS"),
				),
				mcp.WithBoolean("starred",
					mcp.Description("Mark the entry as starred"),
				),
				mcp.WithNumber("latitude",
					mcp.Description("Entry location latitude (requires longitude)"),
				),
				mcp.WithNumber("longitude",
					mcp.Description("Entry location longitude (requires latitude)"),
				),
				mcp.WithString("timezone",
					mcp.Description("IANA timezone for the entry, e.g. America/New_York"),
				),
				mcp.WithBoolean("all_day",
					mcp.Description("Mark as an all-day entry"),
				),
				mcp.WithArray("attachments",
					mcp.Description("Paths of up to 10 files to attach"),
					mcp.WithStringItems(),
				),
			),
			handleCreate(deps),
		)
	}

	// ─── update_entry (profile: write, deferred) ────────────────────────
	if shouldRegister("update_entry", allowlist) {
		srv.AddTool(
			mcp.NewTool("update_entry",
				mcp.WithDescription("Replace the full content of an existing entry by UUID. The old content is gone afterwards; use append_to_entry to keep it."),
				mcp.WithDeferLoading(true),
				mcp.WithTitleAnnotation("Update Entry"),
				mcp.WithReadOnlyHintAnnotation(false),
				mcp.WithDestructiveHintAnnotation(true),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithString("uuid",
					mcp.Required(),
					mcp.Description("UUID of the entry to update"),
				),
				mcp.WithString("content",
					mcp.Required(),
					mcp.Description("New entry content in markdown"),
				),
			),
			handleUpdate(deps),
		)
	}

	// ─── append_to_entry (profile: write, deferred) ─────────────────────
	if shouldRegister("append_to_entry", allowlist) {
		srv.AddTool(
			mcp.NewTool("append_to_entry",
				mcp.WithDescription("Add content to the end of an existing entry by UUID, keeping what is already there."),
				mcp.WithDeferLoading(true),
				mcp.WithTitleAnnotation("Append To Entry"),
				mcp.WithReadOnlyHintAnnotation(false),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(false),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithString("uuid",
					mcp.Required(),
					mcp.Description("UUID of the entry to append to"),
				),
				mcp.WithString("content",
					mcp.Required(),
					mcp.Description("Content to add at the end"),
				),
				mcp.WithString("separator",
					mcp.Description("Text between the old and new content (default: blank line)"),
				),
			),
			handleAppend(deps),
		)
	}
}

// ─── Tool Handlers ───────────────────────────────────────────────────────────

func handleRecent(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := intArg(req, "limit", 5)
		journalName := strArg(req, "journal", deps.DefaultJournal)

		entries, err := deps.Store.Recent(limit, journalName)
		if err != nil {
			return toolError(err), nil
		}
		if len(entries) == 0 {
			return mcp.NewToolResultText("No entries found."), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Found %d entries:\n\n", len(entries))
		for i, e := range entries {
			writeEntrySummary(&b, i+1, e)
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

func handleSearch(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, _ := req.GetArguments()["query"].(string)
		limit := intArg(req, "limit", 10)
		journalName := strArg(req, "journal", deps.DefaultJournal)

		entries, err := deps.Store.Search(query, limit, journalName)
		if err != nil {
			return toolError(err), nil
		}
		if len(entries) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No entries found for: %q", query)), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Found %d entries matching %q:\n\n", len(entries), query)
		for i, e := range entries {
			writeEntrySummary(&b, i+1, e)
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

func handleOnThisDay(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date, _ := req.GetArguments()["date"].(string)
		yearsBack := intArg(req, "years_back", journal.DefaultYearsBack)

		groups, err := deps.Store.OnThisDay(date, yearsBack)
		if err != nil {
			return toolError(err), nil
		}
		if len(groups) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No entries on %s in the last %d years.", date, yearsBack)), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Entries on %s:\n", date)
		for _, g := range groups {
			fmt.Fprintf(&b, "\n─── %d ───\n\n", g.Year)
			for i, e := range g.Entries {
				writeEntrySummary(&b, i+1, e)
			}
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

func handleRead(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		entryUUID, _ := req.GetArguments()["uuid"].(string)

		e, err := deps.Store.Get(entryUUID)
		if err != nil {
			return toolError(err), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Entry %s\n", e.UUID)
		fmt.Fprintf(&b, "Journal: %s | Created: %s | Modified: %s\n",
			e.Journal,
			e.CreatedAt.Format("2006-01-02 15:04"),
			e.ModifiedAt.Format("2006-01-02 15:04"))
		writeEntryBadges(&b, *e)
		fmt.Fprintf(&b, "\n%s\n", e.Text)
		return mcp.NewToolResultText(b.String()), nil
	}
}

func handleJournals(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		journals, err := deps.Store.Journals()
		if err != nil {
			return toolError(err), nil
		}
		if len(journals) == 0 {
			return mcp.NewToolResultText("No journals found."), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%d journals:\n\n", len(journals))
		for _, j := range journals {
			last := "no entries"
			if j.LastEntryAt != nil {
				last = "last entry " + j.LastEntryAt.Format("2006-01-02")
			}
			fmt.Fprintf(&b, "- %s: %d entries, %s\n", j.Name, j.EntryCount, last)
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

func handleCount(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		journalName := strArg(req, "journal", "")

		count, err := deps.Store.Count(journalName)
		if err != nil {
			return toolError(err), nil
		}

		if journalName != "" {
			return mcp.NewToolResultText(fmt.Sprintf("%d entries in journal %q", count, journalName)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%d entries total", count)), nil
	}
}

func handleCreate(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		content, _ := args["content"].(string)

		params := dayone.EntryParams{
			Content:     content,
			Tags:        stringsArg(req, "tags"),
			Journal:     strArg(req, "journal", deps.DefaultJournal),
			Date:        strArg(req, "date", ""),
			Starred:     boolArg(req, "starred", false),
			Timezone:    strArg(req, "timezone", ""),
			AllDay:      boolArg(req, "all_day", false),
			Attachments: stringsArg(req, "attachments"),
		}

		lat, hasLat := args["latitude"].(float64)
		lng, hasLng := args["longitude"].(float64)
		if hasLat != hasLng {
			return mcp.NewToolResultError("latitude and longitude must be given together"), nil
		}
		if hasLat {
			params.Coordinates = &dayone.Coordinates{Latitude: lat, Longitude: lng}
		}

		entryUUID, err := deps.Client.Create(params)
		if err != nil {
			return mcp.NewToolResultError("Failed to create entry: " + err.Error()), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Entry created with UUID %s", entryUUID)), nil
	}
}

func handleUpdate(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		entryUUID, _ := req.GetArguments()["uuid"].(string)
		content, _ := req.GetArguments()["content"].(string)

		e, err := deps.Store.Update(entryUUID, content)
		if err != nil {
			return toolError(err), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Entry %s updated (%d characters)", e.UUID, len(e.Text))), nil
	}
}

func handleAppend(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		entryUUID, _ := req.GetArguments()["uuid"].(string)
		content, _ := req.GetArguments()["content"].(string)
		separator := strArg(req, "separator", "")

		e, err := deps.Store.Append(entryUUID, content, separator)
		if err != nil {
			return toolError(err), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Content appended to entry %s (now %d characters)", e.UUID, len(e.Text))), nil
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// toolError maps store errors to tool results. Validation problems get a
// plain message the agent can correct; a missing database gets setup guidance.
func toolError(err error) *mcp.CallToolResult {
	var invalid *journal.InvalidInputError
	if errors.As(err, &invalid) {
		return mcp.NewToolResultError(invalid.Error())
	}
	if errors.Is(err, journal.ErrStoreUnavailable) {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError("Journal error: " + err.Error())
}

// writeEntrySummary formats one entry for list results, with the text
// truncated so long entries don't flood the agent's context.
func writeEntrySummary(b *strings.Builder, n int, e journal.Entry) {
	fmt.Fprintf(b, "[%d] %s — %s (%s)\n", n, e.CreatedAt.Format("2006-01-02 15:04"), e.Journal, e.UUID)
	writeEntryBadges(b, e)
	fmt.Fprintf(b, "    %s\n\n", truncate(e.Text, 300))
}

func writeEntryBadges(b *strings.Builder, e journal.Entry) {
	var badges []string
	if e.Starred {
		badges = append(badges, "starred")
	}
	if len(e.Tags) > 0 {
		badges = append(badges, "tags: "+strings.Join(e.Tags, ", "))
	}
	if e.HasLocation {
		badges = append(badges, "location")
	}
	if e.HasWeather {
		badges = append(badges, "weather")
	}
	if len(badges) > 0 {
		fmt.Fprintf(b, "    [%s]\n", strings.Join(badges, " | "))
	}
}

func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

func strArg(req mcp.CallToolRequest, key, defaultVal string) string {
	v, ok := req.GetArguments()[key].(string)
	if !ok || v == "" {
		return defaultVal
	}
	return v
}

// stringsArg reads a JSON array argument as a string slice, skipping
// non-string elements.
func stringsArg(req mcp.CallToolRequest, key string) []string {
	raw, ok := req.GetArguments()[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Back off to a rune boundary so multi-byte characters survive the cut.
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max] + "..."
}
