// Package tui implements the Bubbletea terminal UI for browsing the journal.
//
// Structure:
// - Screen constants as iota
// - Single Model struct holds ALL state
// - Update() with type switch
// - Per-screen key handlers returning (tea.Model, tea.Cmd)
// - Vim keys (j/k) for navigation
// - PrevScreen for back navigation
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dayonemcp/internal/journal"
	"dayonemcp/internal/setup"
)

// ─── Screens ─────────────────────────────────────────────────────────────────

type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenSearch
	ScreenSearchResults
	ScreenRecent
	ScreenEntryDetail
	ScreenOnThisDay
	ScreenJournals
	ScreenSetup
)

// ─── Custom Messages ─────────────────────────────────────────────────────────

type statsLoadedMsg struct {
	journals []journal.JournalInfo
	total    int
	err      error
}

type searchResultsMsg struct {
	entries []journal.Entry
	query   string
	err     error
}

type recentEntriesMsg struct {
	entries []journal.Entry
	journal string
	err     error
}

type entryDetailMsg struct {
	entry *journal.Entry
	err   error
}

type onThisDayMsg struct {
	groups []journal.YearGroup
	date   string
	err    error
}

type setupInstallMsg struct {
	result *setup.Result
	err    error
}

// ─── Model ───────────────────────────────────────────────────────────────────

type Model struct {
	store      *journal.Store
	Version    string
	Screen     Screen
	PrevScreen Screen
	Width      int
	Height     int
	Cursor     int
	Scroll     int

	// Error display
	ErrorMsg string

	// Dashboard
	Journals     []journal.JournalInfo
	TotalEntries int
	StatsLoaded  bool

	// Search
	SearchInput   textinput.Model
	SearchQuery   string
	SearchResults []journal.Entry

	// Recent entries, optionally scoped to one journal
	RecentEntries []journal.Entry
	RecentJournal string

	// Entry detail
	SelectedEntry *journal.Entry
	DetailScroll  int

	// On this day
	OnThisDayGroups []journal.YearGroup
	OnThisDayDate   string

	// Journals screen (fuzzy filter over journal names)
	JournalFilter   textinput.Model
	JournalMatches  []int // indexes into Journals, filtered
	FilteringActive bool

	// Setup
	SetupAgents         []setup.Agent
	SetupResult         *setup.Result
	SetupError          string
	SetupDone           bool
	SetupInstalling     bool
	SetupInstallingName string // agent name being installed (for display)
	SetupSpinner        spinner.Model
}

// New creates a new TUI model connected to the given store.
func New(s *journal.Store, version string) Model {
	ti := textinput.New()
	ti.Placeholder = "Search entries..."
	ti.CharLimit = 256
	ti.Width = 60

	jf := textinput.New()
	jf.Placeholder = "Filter journals..."
	jf.CharLimit = 64
	jf.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)

	return Model{
		store:         s,
		Version:       version,
		Screen:        ScreenDashboard,
		SearchInput:   ti,
		JournalFilter: jf,
		SetupSpinner:  sp,
	}
}

// Init loads initial data (journal stats for the dashboard).
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadStats(m.store),
		tea.EnterAltScreen,
	)
}

// ─── Commands (data loading) ─────────────────────────────────────────────────

func loadStats(s *journal.Store) tea.Cmd {
	return func() tea.Msg {
		journals, err := s.Journals()
		if err != nil {
			return statsLoadedMsg{err: err}
		}
		total, err := s.Count("")
		return statsLoadedMsg{journals: journals, total: total, err: err}
	}
}

func searchEntries(s *journal.Store, query string) tea.Cmd {
	return func() tea.Msg {
		entries, err := s.Search(query, journal.MaxLimit, "")
		return searchResultsMsg{entries: entries, query: query, err: err}
	}
}

func loadRecentEntries(s *journal.Store, journalName string) tea.Cmd {
	return func() tea.Msg {
		entries, err := s.Recent(journal.MaxLimit, journalName)
		return recentEntriesMsg{entries: entries, journal: journalName, err: err}
	}
}

func loadEntryDetail(s *journal.Store, uuid string) tea.Cmd {
	return func() tea.Msg {
		e, err := s.Get(uuid)
		return entryDetailMsg{entry: e, err: err}
	}
}

func loadOnThisDay(s *journal.Store) tea.Cmd {
	return func() tea.Msg {
		date := time.Now().Format("01-02")
		groups, err := s.OnThisDay(date, journal.DefaultYearsBack)
		return onThisDayMsg{groups: groups, date: date, err: err}
	}
}

func installAgent(agentName string) tea.Cmd {
	return func() tea.Msg {
		result, err := installAgentFn(agentName)
		return setupInstallMsg{result: result, err: err}
	}
}

var installAgentFn = setup.Install
