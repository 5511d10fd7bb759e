package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"dayonemcp/internal/journal"
)

// ─── Logo ────────────────────────────────────────────────────────────────────

func renderLogo() string {
	logoText := []string{
		`    ____  ___  __  __   ____  _   ________ `,
		`   / __ \/   |/ / / /  / __ \/ | / / ____/ `,
		`  / / / / /| / /_/ /  / / / /  |/ / __/    `,
		` / /_/ / ___ \__, /  / /_/ / /|  / /___    `,
		`/_____/_/  |_/____/  \____/_/ |_/_____/    `,
	}

	frameStyle := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(colorOverlay).
		Padding(0, 1).
		MarginBottom(1)

	textStyle := lipgloss.NewStyle().Foreground(colorText).Bold(true)
	taglineStyle := lipgloss.NewStyle().Foreground(colorSubtext).Italic(true)

	var b strings.Builder
	for _, line := range logoText {
		b.WriteString(" " + textStyle.Render(line) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(taglineStyle.Render(" > your journal, on the command line"))

	return frameStyle.Render(b.String()) + "\n"
}

// ─── View (main router) ─────────────────────────────────────────────────────

func (m Model) View() string {
	var content string

	switch m.Screen {
	case ScreenDashboard:
		content = m.viewDashboard()
	case ScreenSearch:
		content = m.viewSearch()
	case ScreenSearchResults:
		content = m.viewSearchResults()
	case ScreenRecent:
		content = m.viewRecent()
	case ScreenEntryDetail:
		content = m.viewEntryDetail()
	case ScreenOnThisDay:
		content = m.viewOnThisDay()
	case ScreenJournals:
		content = m.viewJournals()
	case ScreenSetup:
		content = m.viewSetup()
	default:
		content = "Unknown screen"
	}

	// Show error if present
	if m.ErrorMsg != "" {
		content += "\n" + errorStyle.Render("Error: "+m.ErrorMsg)
	}

	return appStyle.Render(content)
}

// ─── Dashboard ───────────────────────────────────────────────────────────────

func (m Model) viewDashboard() string {
	var b strings.Builder

	b.WriteString(renderLogo())
	b.WriteString("\n")

	// Stats card
	if m.StatsLoaded {
		statsContent := fmt.Sprintf(
			"%s %s\n%s %s",
			statNumberStyle.Render(fmt.Sprintf("%d", m.TotalEntries)),
			statLabelStyle.Render("entries"),
			statNumberStyle.Render(fmt.Sprintf("%d", len(m.Journals))),
			statLabelStyle.Render("journals"),
		)
		b.WriteString(statCardStyle.Render(statsContent))
		b.WriteString("\n")

		if len(m.Journals) > 0 {
			b.WriteString(titleStyle.Render("  Journals"))
			b.WriteString("\n")

			limit := 5
			for i, j := range m.Journals {
				if i >= limit {
					break
				}
				b.WriteString(listItemStyle.Render(fmt.Sprintf("• %s (%d)", j.Name, j.EntryCount)))
				b.WriteString("\n")
			}

			if len(m.Journals) > limit {
				remaining := len(m.Journals) - limit
				b.WriteString(fmt.Sprintf("    %s\n", timestampStyle.Render(fmt.Sprintf("...and %d more journals", remaining))))
			}
			b.WriteString("\n")
		}
	} else {
		b.WriteString(statCardStyle.Render("Loading journal stats..."))
		b.WriteString("\n")
	}

	// Menu
	b.WriteString(titleStyle.Render("  Actions"))
	b.WriteString("\n")

	for i, item := range dashboardMenuItems {
		if i == m.Cursor {
			b.WriteString(menuSelectedStyle.Render("▸ " + item))
		} else {
			b.WriteString(menuItemStyle.Render("  " + item))
		}
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("\n  j/k navigate • enter select • s search • q quit"))

	return b.String()
}

// ─── Search ──────────────────────────────────────────────────────────────────

func (m Model) viewSearch() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("  Search Entries"))
	b.WriteString("\n\n")

	b.WriteString(searchInputStyle.Render(m.SearchInput.View()))
	b.WriteString("\n\n")

	b.WriteString(helpStyle.Render("  Type a query and press enter • esc go back"))

	return b.String()
}

// ─── Search Results ──────────────────────────────────────────────────────────

func (m Model) viewSearchResults() string {
	var b strings.Builder

	resultCount := len(m.SearchResults)
	header := fmt.Sprintf("  Search: %q — %d result", m.SearchQuery, resultCount)
	if resultCount != 1 {
		header += "s"
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	if resultCount == 0 {
		b.WriteString(noResultsStyle.Render("No entries found. Try a different query."))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("  / new search • esc back"))
		return b.String()
	}

	visibleItems := (m.Height - 10) / 2 // 2 lines per entry item
	if visibleItems < 3 {
		visibleItems = 3
	}

	end := m.Scroll + visibleItems
	if end > resultCount {
		end = resultCount
	}

	for i := m.Scroll; i < end; i++ {
		b.WriteString(m.renderEntryListItem(i, m.SearchResults[i]))
	}

	if resultCount > visibleItems {
		b.WriteString(fmt.Sprintf("\n  %s",
			timestampStyle.Render(fmt.Sprintf("showing %d-%d of %d", m.Scroll+1, end, resultCount))))
	}

	b.WriteString(helpStyle.Render("\n  j/k navigate • enter read • / search • esc back"))

	return b.String()
}

// ─── Recent Entries ──────────────────────────────────────────────────────────

func (m Model) viewRecent() string {
	var b strings.Builder

	count := len(m.RecentEntries)
	header := fmt.Sprintf("  Recent Entries — %d shown", count)
	if m.RecentJournal != "" {
		header = fmt.Sprintf("  %s — %d entries", m.RecentJournal, count)
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	if count == 0 {
		b.WriteString(noResultsStyle.Render("No entries yet."))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("  esc back"))
		return b.String()
	}

	visibleItems := (m.Height - 8) / 2 // 2 lines per entry item
	if visibleItems < 3 {
		visibleItems = 3
	}

	end := m.Scroll + visibleItems
	if end > count {
		end = count
	}

	for i := m.Scroll; i < end; i++ {
		b.WriteString(m.renderEntryListItem(i, m.RecentEntries[i]))
	}

	if count > visibleItems {
		b.WriteString(fmt.Sprintf("\n  %s",
			timestampStyle.Render(fmt.Sprintf("showing %d-%d of %d", m.Scroll+1, end, count))))
	}

	b.WriteString(helpStyle.Render("\n  j/k navigate • enter read • esc back"))

	return b.String()
}

// ─── Entry Detail ────────────────────────────────────────────────────────────

func (m Model) viewEntryDetail() string {
	var b strings.Builder

	if m.SelectedEntry == nil {
		b.WriteString(headerStyle.Render("  Entry"))
		b.WriteString("\n")
		b.WriteString(noResultsStyle.Render("Loading..."))
		return b.String()
	}

	e := m.SelectedEntry

	b.WriteString(headerStyle.Render("  " + e.CreatedAt.Format("Monday, January 2, 2006")))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%s %s\n",
		detailLabelStyle.Render("Journal:"),
		journalNameStyle.Render(e.Journal)))

	b.WriteString(fmt.Sprintf("%s %s\n",
		detailLabelStyle.Render("Written:"),
		timestampStyle.Render(e.CreatedAt.Format("2006-01-02 15:04")+" ("+e.Timezone+")")))

	b.WriteString(fmt.Sprintf("%s %s\n",
		detailLabelStyle.Render("UUID:"),
		idStyle.Render(e.UUID)))

	if len(e.Tags) > 0 {
		b.WriteString(fmt.Sprintf("%s %s\n",
			detailLabelStyle.Render("Tags:"),
			tagStyle.Render(strings.Join(e.Tags, ", "))))
	}

	var badges []string
	if e.Starred {
		badges = append(badges, "★ starred")
	}
	if e.HasLocation {
		badges = append(badges, "location")
	}
	if e.HasWeather {
		badges = append(badges, "weather")
	}
	if len(badges) > 0 {
		b.WriteString(fmt.Sprintf("%s %s\n",
			detailLabelStyle.Render(""),
			tagStyle.Render(strings.Join(badges, " • "))))
	}

	b.WriteString("\n")

	// Split content into lines and apply scroll
	contentLines := strings.Split(e.Text, "\n")
	maxLines := m.Height - 14
	if maxLines < 5 {
		maxLines = 5
	}

	maxScroll := len(contentLines) - maxLines
	if maxScroll < 0 {
		maxScroll = 0
	}
	if m.DetailScroll > maxScroll {
		m.DetailScroll = maxScroll
	}

	end := m.DetailScroll + maxLines
	if end > len(contentLines) {
		end = len(contentLines)
	}

	for i := m.DetailScroll; i < end; i++ {
		b.WriteString(detailContentStyle.Render(contentLines[i]))
		b.WriteString("\n")
	}

	if len(contentLines) > maxLines {
		b.WriteString(fmt.Sprintf("\n  %s",
			timestampStyle.Render(fmt.Sprintf("line %d-%d of %d", m.DetailScroll+1, end, len(contentLines)))))
	}

	b.WriteString(helpStyle.Render("\n  j/k scroll • esc back"))

	return b.String()
}

// ─── On This Day ─────────────────────────────────────────────────────────────

func (m Model) viewOnThisDay() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("  On This Day — " + m.OnThisDayDate))
	b.WriteString("\n")

	if len(m.OnThisDayGroups) == 0 {
		b.WriteString(noResultsStyle.Render("Nothing written on this day in past years."))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("  esc back"))
		return b.String()
	}

	// Flatten groups into display lines, then window by scroll.
	var lines []string
	for _, g := range m.OnThisDayGroups {
		lines = append(lines, yearHeadingStyle.Render(fmt.Sprintf("  %d", g.Year)))
		for _, e := range g.Entries {
			lines = append(lines, fmt.Sprintf("  %s  %s",
				timestampStyle.Render(e.CreatedAt.Format("15:04")),
				listItemStyle.Render(truncateStr(e.Text, 70))))
		}
		lines = append(lines, "")
	}

	maxLines := m.Height - 8
	if maxLines < 5 {
		maxLines = 5
	}
	maxScroll := len(lines) - maxLines
	if maxScroll < 0 {
		maxScroll = 0
	}
	scroll := m.Scroll
	if scroll > maxScroll {
		scroll = maxScroll
	}

	end := scroll + maxLines
	if end > len(lines) {
		end = len(lines)
	}
	for _, line := range lines[scroll:end] {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("\n  j/k scroll • esc back"))

	return b.String()
}

// ─── Journals ────────────────────────────────────────────────────────────────

func (m Model) viewJournals() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("  Journals — %d total", len(m.Journals))))
	b.WriteString("\n")

	if m.FilteringActive || m.JournalFilter.Value() != "" {
		b.WriteString(searchInputStyle.Render(m.JournalFilter.View()))
		b.WriteString("\n")
	}

	if len(m.JournalMatches) == 0 {
		b.WriteString(noResultsStyle.Render("No journals match."))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("  / filter • esc back"))
		return b.String()
	}

	for i, idx := range m.JournalMatches {
		j := m.Journals[idx]
		cursor := "  "
		style := listItemStyle
		if i == m.Cursor && !m.FilteringActive {
			cursor = "▸ "
			style = listSelectedStyle
		}

		last := "no entries"
		if j.LastEntryAt != nil {
			last = "last " + j.LastEntryAt.Format("2006-01-02")
		}

		b.WriteString(fmt.Sprintf("%s%s  %s  %s\n",
			cursor,
			style.Render(fmt.Sprintf("%-24s", truncateStr(j.Name, 24))),
			statNumberStyle.Render(fmt.Sprintf("%d", j.EntryCount)),
			timestampStyle.Render(last)))
	}

	b.WriteString(helpStyle.Render("\n  j/k navigate • enter open • / filter • esc back"))

	return b.String()
}

// ─── Setup ───────────────────────────────────────────────────────────────────

func (m Model) viewSetup() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("  Setup — Register MCP Server"))
	b.WriteString("\n")

	// Show spinner while installing
	if m.SetupInstalling {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  %s Registering with %s...\n",
			m.SetupSpinner.View(),
			lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render(m.SetupInstallingName)))
		b.WriteString("\n")
		return b.String()
	}

	// Show result after install
	if m.SetupDone {
		if m.SetupError != "" {
			b.WriteString(errorStyle.Render("  ✗ Registration failed: " + m.SetupError))
			b.WriteString("\n\n")
		} else if m.SetupResult != nil {
			b.WriteString(fmt.Sprintf("  %s %s\n",
				lipgloss.NewStyle().Bold(true).Foreground(colorGreen).Render("✓"),
				lipgloss.NewStyle().Bold(true).Foreground(colorGreen).Render("Registered with "+m.SetupResult.Agent)))
			b.WriteString(fmt.Sprintf("  %s %s\n\n",
				detailLabelStyle.Render("Config:"),
				journalNameStyle.Render(m.SetupResult.Destination)))
			b.WriteString(detailContentStyle.Render("Restart the agent to pick up the new MCP server."))
			b.WriteString("\n")
		}

		b.WriteString(helpStyle.Render("\n  enter/esc back to dashboard"))
		return b.String()
	}

	// Agent selection
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("  Select an agent"))
	b.WriteString("\n\n")

	for i, agent := range m.SetupAgents {
		if i == m.Cursor {
			b.WriteString(menuSelectedStyle.Render("▸ " + agent.Description))
		} else {
			b.WriteString(menuItemStyle.Render("  " + agent.Description))
		}
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("      %s %s\n\n",
			detailLabelStyle.Render("Config:"),
			timestampStyle.Render(agent.ConfigPath)))
	}

	b.WriteString(helpStyle.Render("\n  j/k navigate • enter register • esc back"))

	return b.String()
}

// ─── Shared Renderers ────────────────────────────────────────────────────────

func (m Model) renderEntryListItem(index int, e journal.Entry) string {
	cursor := "  "
	style := listItemStyle
	if index == m.Cursor {
		cursor = "▸ "
		style = listSelectedStyle
	}

	star := "  "
	if e.Starred {
		star = "★ "
	}

	line := fmt.Sprintf("%s%s %s%s  %s\n",
		cursor,
		timestampStyle.Render(e.CreatedAt.Format("2006-01-02")),
		star,
		style.Render(journalNameStyle.Render(e.Journal)),
		idStyle.Render(shortUUID(e.UUID)))

	preview := truncateStr(e.Text, 80)
	if preview != "" {
		line += contentPreviewStyle.Render(preview) + "\n"
	}

	return line
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func truncateStr(s string, max int) string {
	// Remove newlines for single-line display
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	// Back off to a rune boundary so multi-byte characters survive the cut.
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max] + "..."
}

func shortUUID(u string) string {
	if len(u) > 8 {
		return u[:8]
	}
	return u
}
