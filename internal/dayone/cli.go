// Package dayone shells out to the official dayone2 command-line tool.
//
// Day One's database format is proprietary and sync-aware, so new entries are
// never written to SQLite directly. The dayone2 binary is the only supported
// write path and this package wraps its `new` command.
package dayone

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultCLIPath is where the Day One app installs its command-line tool.
const DefaultCLIPath = "/usr/local/bin/dayone2"

// maxAttachments is the per-entry cap enforced by the dayone2 CLI.
const maxAttachments = 10

// Seams for tests.
var (
	lookPathFn = exec.LookPath
	statFn     = os.Stat
	runCommand = func(name string, args ...string) (stdout, stderr []byte, err error) {
		cmd := exec.Command(name, args...)
		var out, errBuf strings.Builder
		cmd.Stdout = &out
		cmd.Stderr = &errBuf
		err = cmd.Run()
		return []byte(out.String()), []byte(errBuf.String()), err
	}
)

// Coordinates is an optional entry location.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// EntryParams describes a new journal entry. Content is the only required
// field; Date uses the CLI's "YYYY-MM-DD HH:MM:SS" format.
type EntryParams struct {
	Content     string
	Tags        []string
	Journal     string
	Date        string
	Starred     bool
	Coordinates *Coordinates
	Timezone    string
	AllDay      bool
	Attachments []string
}

// Client invokes the dayone2 binary at a fixed path.
type Client struct {
	cliPath string
}

// NewClient returns a Client for the dayone2 binary at cliPath, falling back
// to the standard install location when cliPath is empty.
func NewClient(cliPath string) *Client {
	if cliPath == "" {
		cliPath = DefaultCLIPath
	}
	return &Client{cliPath: cliPath}
}

// Path returns the configured dayone2 binary path.
func (c *Client) Path() string {
	return c.cliPath
}

// Verify checks that the dayone2 binary exists and answers --version.
func (c *Client) Verify() error {
	if strings.ContainsRune(c.cliPath, os.PathSeparator) {
		if _, err := statFn(c.cliPath); err != nil {
			return fmt.Errorf("dayone2 CLI not found at %s (install it from Day One's settings under the Advanced tab)", c.cliPath)
		}
	} else if _, err := lookPathFn(c.cliPath); err != nil {
		return fmt.Errorf("dayone2 CLI %q not found in PATH (install it from Day One's settings under the Advanced tab)", c.cliPath)
	}

	if _, stderr, err := runCommand(c.cliPath, "--version"); err != nil {
		return fmt.Errorf("dayone2 CLI at %s is not working: %v: %s", c.cliPath, err, strings.TrimSpace(string(stderr)))
	}
	return nil
}

// Create writes a new entry through `dayone2 new` and returns the UUID the
// CLI reports for it.
func (c *Client) Create(p EntryParams) (string, error) {
	if strings.TrimSpace(p.Content) == "" {
		return "", fmt.Errorf("entry content cannot be empty")
	}
	if len(p.Attachments) > maxAttachments {
		return "", fmt.Errorf("at most %d attachments per entry, got %d", maxAttachments, len(p.Attachments))
	}
	for _, path := range p.Attachments {
		if _, err := statFn(path); err != nil {
			return "", fmt.Errorf("attachment not found: %s", path)
		}
	}

	args := buildCreateArgs(p)

	stdout, stderr, err := runCommand(c.cliPath, args...)
	if err != nil {
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("dayone2 failed to create entry: %s", msg)
	}

	return parseCreatedUUID(string(stdout)), nil
}

// buildCreateArgs assembles the dayone2 argument list. Option flags come
// first, then a "--" separator so entry text starting with a dash is not
// taken as a flag, then the subcommand and content.
func buildCreateArgs(p EntryParams) []string {
	var args []string

	if len(p.Attachments) > 0 {
		args = append(args, "--attachments")
		args = append(args, p.Attachments...)
	}
	if len(p.Tags) > 0 {
		args = append(args, "--tags")
		args = append(args, p.Tags...)
	}
	if p.Journal != "" {
		args = append(args, "--journal", p.Journal)
	}
	if p.Date != "" {
		args = append(args, "--date", p.Date)
	}
	if p.Starred {
		args = append(args, "--starred")
	}
	if p.Coordinates != nil {
		args = append(args, "--coordinate",
			strconv.FormatFloat(p.Coordinates.Latitude, 'f', -1, 64),
			strconv.FormatFloat(p.Coordinates.Longitude, 'f', -1, 64))
	}
	if p.Timezone != "" {
		args = append(args, "--time-zone", p.Timezone)
	}
	if p.AllDay {
		args = append(args, "--all-day")
	}

	if len(args) > 0 {
		args = append(args, "--")
	}
	return append(args, "new", p.Content)
}

// parseCreatedUUID extracts the UUID from dayone2's confirmation line
// ("Created new entry with uuid: ..."). Older CLI builds print only the
// UUID, so an unrecognized line is returned as-is.
func parseCreatedUUID(stdout string) string {
	out := strings.TrimSpace(stdout)
	if idx := strings.LastIndex(out, "uuid:"); idx >= 0 {
		return strings.TrimSpace(out[idx+len("uuid:"):])
	}
	return out
}
