// dayone-mcp — Day One journal access for AI coding agents.
//
// Usage:
//
//	dayone-mcp mcp                Start MCP server (stdio transport)
//	dayone-mcp recent             Show recent entries
//	dayone-mcp search <query>     Search entries
//	dayone-mcp onthisday          Show entries from this day in past years
//	dayone-mcp new <content>      Create an entry via the dayone2 CLI
//	dayone-mcp tui                Launch interactive terminal UI
//	dayone-mcp setup <agent>      Register the MCP server with an agent
package main

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"dayonemcp/internal/config"
	"dayonemcp/internal/dayone"
	"dayonemcp/internal/journal"
	"dayonemcp/internal/mcp"
	"dayonemcp/internal/setup"
	"dayonemcp/internal/tui"
)

const version = "0.1.0"

var flags config.Flags

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dayone-mcp: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dayone-mcp",
		Short:         "Day One journal access for AI agents and the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.Database, "db", "", "path to DayOne.sqlite (default: Day One app location)")
	rootCmd.PersistentFlags().StringVar(&flags.CLIPath, "cli", "", "path to the dayone2 binary")
	rootCmd.PersistentFlags().StringVar(&flags.Journal, "journal", "", "default journal for reads and writes")

	rootCmd.AddCommand(mcpCmd())
	rootCmd.AddCommand(recentCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(onThisDayCmd())
	rootCmd.AddCommand(journalsCmd())
	rootCmd.AddCommand(countCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(newCmd())
	rootCmd.AddCommand(tuiCmd())
	rootCmd.AddCommand(setupCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func loadDeps() (*config.Config, mcp.Deps, error) {
	cfg, err := config.Load(flags)
	if err != nil {
		return nil, mcp.Deps{}, err
	}
	deps := mcp.Deps{
		Store:          journal.New(cfg.DatabasePath),
		Client:         dayone.NewClient(cfg.CLIPath),
		DefaultJournal: cfg.DefaultJournal,
	}
	return cfg, deps, nil
}

// ─── Commands ────────────────────────────────────────────────────────────────

func mcpCmd() *cobra.Command {
	var tools string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Long: `Start the MCP server on stdio.

The --tools flag limits which tools are registered. It accepts a
comma-separated list of profile names (read, write) and/or individual
tool names. The default registers everything.

  dayone-mcp mcp --tools=read
  dayone-mcp mcp --tools=read,create_journal_entry`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, deps, err := loadDeps()
			if err != nil {
				return err
			}
			srv := mcp.NewServerWithTools(deps, mcp.ResolveTools(tools))
			return mcpserver.ServeStdio(srv)
		},
	}

	cmd.Flags().StringVar(&tools, "tools", "all", "tool profiles or tool names to register")
	return cmd
}

func recentCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the most recent entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, deps, err := loadDeps()
			if err != nil {
				return err
			}

			entries, err := deps.Store.Recent(limit, cfg.DefaultJournal)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("No entries found.")
				return nil
			}
			printEntryList(entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "number of entries to show (1-50)")
	return cmd
}

func searchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search entry text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			cfg, deps, err := loadDeps()
			if err != nil {
				return err
			}

			entries, err := deps.Store.Search(query, limit, cfg.DefaultJournal)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Printf("No entries found for: %q\n", query)
				return nil
			}
			fmt.Printf("Found %d entries:\n\n", len(entries))
			printEntryList(entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of entries to show (1-50)")
	return cmd
}

func onThisDayCmd() *cobra.Command {
	var date string
	var yearsBack int

	cmd := &cobra.Command{
		Use:   "onthisday",
		Short: "Show entries written on this day in past years",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, deps, err := loadDeps()
			if err != nil {
				return err
			}

			if date == "" {
				date = time.Now().Format("01-02")
			}
			groups, err := deps.Store.OnThisDay(date, yearsBack)
			if err != nil {
				return err
			}

			if len(groups) == 0 {
				fmt.Println("Nothing written on this day in past years.")
				return nil
			}
			for _, g := range groups {
				fmt.Printf("─── %d ───\n", g.Year)
				printEntryList(g.Entries)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "anchor date, YYYY-MM-DD or MM-DD (default: today)")
	cmd.Flags().IntVar(&yearsBack, "years", journal.DefaultYearsBack, "how many years to look back")
	return cmd
}

func journalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "journals",
		Short: "List journals with entry counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, deps, err := loadDeps()
			if err != nil {
				return err
			}

			journals, err := deps.Store.Journals()
			if err != nil {
				return err
			}

			for _, j := range journals {
				last := ""
				if j.LastEntryAt != nil {
					last = fmt.Sprintf("  last %s", j.LastEntryAt.Format("2006-01-02"))
				}
				fmt.Printf("%-24s %5d entries%s\n", j.Name, j.EntryCount, last)
			}
			return nil
		},
	}
}

func countCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Show total entry count",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, deps, err := loadDeps()
			if err != nil {
				return err
			}

			n, err := deps.Store.Count(cfg.DefaultJournal)
			if err != nil {
				return err
			}

			if cfg.DefaultJournal != "" {
				fmt.Printf("%d entries in journal %q\n", n, cfg.DefaultJournal)
			} else {
				fmt.Printf("%d entries\n", n)
			}
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <uuid>",
		Short: "Show a single entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, deps, err := loadDeps()
			if err != nil {
				return err
			}

			e, err := deps.Store.Get(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("UUID:     %s\n", e.UUID)
			fmt.Printf("Journal:  %s\n", e.Journal)
			fmt.Printf("Created:  %s (%s)\n", e.CreatedAt.Format("2006-01-02 15:04"), e.Timezone)
			fmt.Printf("Modified: %s\n", e.ModifiedAt.Format("2006-01-02 15:04"))
			if len(e.Tags) > 0 {
				fmt.Printf("Tags:     %s\n", strings.Join(e.Tags, ", "))
			}
			if e.Starred {
				fmt.Println("Starred:  yes")
			}
			fmt.Printf("\n%s\n", e.Text)
			return nil
		},
	}
}

func newCmd() *cobra.Command {
	var (
		tags        []string
		date        string
		timezone    string
		starred     bool
		allDay      bool
		attachments []string
		coords      []float64
	)

	cmd := &cobra.Command{
		Use:   "new <content>",
		Short: "Create an entry via the dayone2 CLI",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, deps, err := loadDeps()
			if err != nil {
				return err
			}

			if err := deps.Client.Verify(); err != nil {
				return err
			}

			params := dayone.EntryParams{
				Content:     strings.Join(args, " "),
				Tags:        tags,
				Journal:     cfg.DefaultJournal,
				Date:        date,
				Starred:     starred,
				Timezone:    timezone,
				AllDay:      allDay,
				Attachments: attachments,
			}
			if len(coords) == 2 {
				params.Coordinates = &dayone.Coordinates{Latitude: coords[0], Longitude: coords[1]}
			} else if len(coords) != 0 {
				return fmt.Errorf("--coordinate needs exactly two values: latitude,longitude")
			}

			uuid, err := deps.Client.Create(params)
			if err != nil {
				return err
			}

			fmt.Printf("Entry created: %s\n", uuid)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag to apply (repeatable)")
	cmd.Flags().StringVar(&date, "date", "", "entry date, e.g. \"2025-06-14 08:00:00\"")
	cmd.Flags().StringVar(&timezone, "time-zone", "", "IANA timezone name")
	cmd.Flags().BoolVar(&starred, "starred", false, "star the entry")
	cmd.Flags().BoolVar(&allDay, "all-day", false, "mark as all-day")
	cmd.Flags().StringSliceVar(&attachments, "attachment", nil, "attachment file path (repeatable, max 10)")
	cmd.Flags().Float64SliceVar(&coords, "coordinate", nil, "latitude,longitude")
	return cmd
}

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch the interactive terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, deps, err := loadDeps()
			if err != nil {
				return err
			}

			p := tea.NewProgram(tui.New(deps.Store, version))
			_, err = p.Run()
			return err
		},
	}
}

func setupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup <agent>",
		Short: "Register the MCP server with a coding agent",
		Long: func() string {
			var b strings.Builder
			b.WriteString("Register the MCP server with a coding agent.\n\nSupported agents:\n")
			for _, a := range setup.SupportedAgents() {
				fmt.Fprintf(&b, "  %-12s %s\n", a.Name, a.Description)
			}
			return b.String()
		}(),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := setup.Install(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Registered with %s\n", result.Agent)
			fmt.Printf("Config: %s\n", result.Destination)
			fmt.Println("Restart the agent to pick up the new MCP server.")
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dayone-mcp %s\n", version)
		},
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func printEntryList(entries []journal.Entry) {
	for _, e := range entries {
		star := " "
		if e.Starred {
			star = "★"
		}
		tags := ""
		if len(e.Tags) > 0 {
			tags = "  #" + strings.Join(e.Tags, " #")
		}
		fmt.Printf("%s %s  %s (%s)%s\n    %s\n\n",
			star,
			e.CreatedAt.Format("2006-01-02 15:04"),
			e.Journal,
			e.UUID,
			tags,
			truncate(e.Text, 300))
	}
}

func truncate(s string, max int) string {
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
