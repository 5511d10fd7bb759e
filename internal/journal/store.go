// Package journal reads entries from the Day One SQLite database.
//
// The database is owned by the Day One app: a Core Data store with ZENTRY,
// ZJOURNAL, ZTAG tables and timestamps stored as seconds since 2001-01-01.
// This package never creates or migrates it — queries open the file read-only
// per call, and the two content-editing operations (Update, Append) open a
// short-lived writable connection the same way the Day One CLI's own edits do.
// Entry creation goes through the dayone2 CLI instead (see internal/dayone).
package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dayonemcp/internal/richtext"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// appleEpochOffset converts Core Data timestamps (seconds since
// 2001-01-01T00:00:00Z) to Unix timestamps.
const appleEpochOffset = 978307200

// MaxLimit bounds every list query. Out-of-range limits are rejected,
// not clamped.
const MaxLimit = 50

// DefaultYearsBack is the on-this-day lookback when the caller gives none.
const DefaultYearsBack = 5

// timeNow is injectable for on-this-day tests.
var timeNow = time.Now

// ─── Types ───────────────────────────────────────────────────────────────────

// Entry is a read-only projection of a ZENTRY row. Text is always populated,
// degrading to partial or empty text when the stored payload is malformed.
type Entry struct {
	UUID        string    `json:"uuid"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
	ModifiedAt  time.Time `json:"modified_at"`
	Starred     bool      `json:"starred"`
	Timezone    string    `json:"timezone"`
	Journal     string    `json:"journal"`
	Tags        []string  `json:"tags,omitempty"`
	HasLocation bool      `json:"has_location"`
	HasWeather  bool      `json:"has_weather"`
}

// YearGroup holds the entries created on the target month/day in one year.
type YearGroup struct {
	Year    int     `json:"year"`
	Entries []Entry `json:"entries"`
}

// JournalInfo is one row of the journal statistics listing.
type JournalInfo struct {
	Name        string     `json:"name"`
	UUID        string     `json:"uuid,omitempty"`
	EntryCount  int        `json:"entry_count"`
	LastEntryAt *time.Time `json:"last_entry_at,omitempty"`
}

// ─── Errors ──────────────────────────────────────────────────────────────────

// ErrStoreUnavailable reports that the Day One database cannot be opened or
// queried. It is a setup problem, not a transient one — callers should show
// the message, not retry.
var ErrStoreUnavailable = errors.New("Day One database unavailable")

// InvalidInputError reports a malformed or out-of-range caller argument.
type InvalidInputError struct {
	Param  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

func invalidInput(param, reason string) error {
	return &InvalidInputError{Param: param, Reason: reason}
}

func storeUnavailable(err error) error {
	return fmt.Errorf("%w: %v (make sure the Day One app is installed and has been run at least once)",
		ErrStoreUnavailable, err)
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store reads the Day One database at a fixed path. It holds no open
// connection; each operation opens and closes its own.
type Store struct {
	path string
}

// DefaultDBPath returns the Day One database location inside the app's group
// container.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home,
		"Library", "Group Containers", "5U8NS4GX82.dayoneapp2",
		"Data", "Documents", "DayOne.sqlite")
}

// New returns a Store for the database at path. The file is not touched
// until the first operation.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the database path the store reads from.
func (s *Store) Path() string {
	return s.path
}

// open opens a per-call connection. mode=ro/rw without create: a missing
// database is always ErrStoreUnavailable, never a silently created empty one.
func (s *Store) open(writable bool) (*sql.DB, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, storeUnavailable(fmt.Errorf("database not found at %s", s.path))
	}

	mode := "ro"
	if writable {
		mode = "rw"
	}
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=%s", s.path, mode))
	if err != nil {
		return nil, storeUnavailable(err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, storeUnavailable(err)
	}
	return db, nil
}

// ─── Queries ─────────────────────────────────────────────────────────────────

// entryColumns is the shared projection for entry queries. Journal name is
// resolved via a left join so entries without a journal still surface.
const entryColumns = `
	e.ZUUID,
	e.ZRICHTEXTJSON,
	e.ZMARKDOWNTEXT,
	e.ZCREATIONDATE,
	e.ZMODIFIEDDATE,
	e.ZSTARRED,
	e.ZTIMEZONE,
	j.ZNAME,
	e.ZLOCATION IS NOT NULL,
	e.ZWEATHER IS NOT NULL
`

// Recent returns up to limit entries ordered by creation time descending,
// optionally restricted to one journal.
func (s *Store) Recent(limit int, journal string) ([]Entry, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	query := `
		SELECT ` + entryColumns + `
		FROM ZENTRY e
		LEFT JOIN ZJOURNAL j ON e.ZJOURNAL = j.Z_PK
	`
	args := []any{}

	if journal != "" {
		query += " WHERE j.ZNAME = ?"
		args = append(args, journal)
	}

	query += " ORDER BY e.ZCREATIONDATE DESC LIMIT ?"
	args = append(args, limit)

	return s.queryEntries(query, args...)
}

// Search returns entries whose stored text contains substr, case-insensitive,
// most recent first. The stored rich-text payload always embeds the visible
// text, so matching the raw columns matches the normalized text.
func (s *Store) Search(substr string, limit int, journal string) ([]Entry, error) {
	if strings.TrimSpace(substr) == "" {
		return nil, invalidInput("query", "search text cannot be empty")
	}
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	query := `
		SELECT ` + entryColumns + `
		FROM ZENTRY e
		LEFT JOIN ZJOURNAL j ON e.ZJOURNAL = j.Z_PK
		WHERE (e.ZRICHTEXTJSON LIKE ? OR e.ZMARKDOWNTEXT LIKE ?)
	`
	pattern := "%" + substr + "%"
	args := []any{pattern, pattern}

	if journal != "" {
		query += " AND j.ZNAME = ?"
		args = append(args, journal)
	}

	query += " ORDER BY e.ZCREATIONDATE DESC LIMIT ?"
	args = append(args, limit)

	return s.queryEntries(query, args...)
}

// OnThisDay returns entries created on the given month/day across the
// yearsBack most recent calendar years, grouped by year, newest year first.
// date accepts MM-DD, or YYYY-MM-DD to anchor the scan at an explicit year.
// Years with no entries are omitted.
func (s *Store) OnThisDay(date string, yearsBack int) ([]YearGroup, error) {
	month, day, anchorYear, err := parseMonthDay(date)
	if err != nil {
		return nil, err
	}
	if yearsBack <= 0 {
		yearsBack = DefaultYearsBack
	}
	if anchorYear == 0 {
		anchorYear = timeNow().UTC().Year()
	}

	var conditions []string
	var args []any
	for year := anchorYear - yearsBack + 1; year <= anchorYear; year++ {
		start := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		// Feb 29 does not exist in every year; time.Date normalizes it to
		// Mar 1 there, which would match entries from the wrong day.
		if start.Month() != time.Month(month) || start.Day() != day {
			continue
		}
		end := start.AddDate(0, 0, 1)
		conditions = append(conditions, "(e.ZCREATIONDATE >= ? AND e.ZCREATIONDATE < ?)")
		args = append(args, start.Unix()-appleEpochOffset, end.Unix()-appleEpochOffset)
	}
	if len(conditions) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + entryColumns + `
		FROM ZENTRY e
		LEFT JOIN ZJOURNAL j ON e.ZJOURNAL = j.Z_PK
		WHERE (` + strings.Join(conditions, " OR ") + `)
		ORDER BY e.ZCREATIONDATE DESC
	`

	entries, err := s.queryEntries(query, args...)
	if err != nil {
		return nil, err
	}

	// Entries arrive newest first, so groups come out newest year first.
	var groups []YearGroup
	for _, e := range entries {
		year := e.CreatedAt.Year()
		if len(groups) == 0 || groups[len(groups)-1].Year != year {
			groups = append(groups, YearGroup{Year: year})
		}
		groups[len(groups)-1].Entries = append(groups[len(groups)-1].Entries, e)
	}
	return groups, nil
}

// Journals lists every journal with its entry count and most recent entry.
func (s *Store) Journals() ([]JournalInfo, error) {
	db, err := s.open(false)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT
			j.ZNAME,
			j.ZUUIDFORAUXILIARYSYNC,
			COUNT(e.Z_PK),
			MAX(e.ZCREATIONDATE)
		FROM ZJOURNAL j
		LEFT JOIN ZENTRY e ON e.ZJOURNAL = j.Z_PK
		GROUP BY j.Z_PK, j.ZNAME, j.ZUUIDFORAUXILIARYSYNC
		ORDER BY j.ZNAME
	`)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	defer rows.Close()

	var journals []JournalInfo
	for rows.Next() {
		var ji JournalInfo
		var name, juuid sql.NullString
		var lastEntry sql.NullFloat64
		if err := rows.Scan(&name, &juuid, &ji.EntryCount, &lastEntry); err != nil {
			return nil, storeUnavailable(err)
		}
		ji.Name = name.String
		if ji.Name == "" {
			ji.Name = "Default"
		}
		ji.UUID = juuid.String
		if lastEntry.Valid {
			t := appleTime(lastEntry.Float64)
			ji.LastEntryAt = &t
		}
		journals = append(journals, ji)
	}
	return journals, rows.Err()
}

// Count returns the total number of entries, optionally scoped to one journal.
func (s *Store) Count(journal string) (int, error) {
	db, err := s.open(false)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var count int
	if journal != "" {
		err = db.QueryRow(`
			SELECT COUNT(*)
			FROM ZENTRY e
			JOIN ZJOURNAL j ON e.ZJOURNAL = j.Z_PK
			WHERE j.ZNAME = ?
		`, journal).Scan(&count)
	} else {
		err = db.QueryRow("SELECT COUNT(*) FROM ZENTRY").Scan(&count)
	}
	if err != nil {
		return 0, storeUnavailable(err)
	}
	return count, nil
}

// Get returns the full entry with the given UUID, or an InvalidInputError
// when no such entry exists.
func (s *Store) Get(entryUUID string) (*Entry, error) {
	if err := checkUUID(entryUUID); err != nil {
		return nil, err
	}

	entries, err := s.queryEntries(`
		SELECT `+entryColumns+`
		FROM ZENTRY e
		LEFT JOIN ZJOURNAL j ON e.ZJOURNAL = j.Z_PK
		WHERE e.ZUUID = ?
	`, entryUUID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, invalidInput("uuid", fmt.Sprintf("no entry with UUID %s", entryUUID))
	}
	return &entries[0], nil
}

// ─── Writes ──────────────────────────────────────────────────────────────────

// Update replaces an entry's content. Like the Day One CLI's own edits, the
// new content lands in ZMARKDOWNTEXT with ZRICHTEXTJSON nulled so the app
// re-renders it as markdown, and the modification date is bumped.
func (s *Store) Update(entryUUID, content string) (*Entry, error) {
	if err := checkUUID(entryUUID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, invalidInput("content", "entry content cannot be empty")
	}

	db, err := s.open(true)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	res, err := db.Exec(`
		UPDATE ZENTRY
		SET ZRICHTEXTJSON = NULL,
		    ZMARKDOWNTEXT = ?,
		    ZMODIFIEDDATE = ?
		WHERE ZUUID = ?
	`, content, nowApple(), entryUUID)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, invalidInput("uuid", fmt.Sprintf("no entry with UUID %s", entryUUID))
	}

	return s.Get(entryUUID)
}

// Append adds content to the end of an existing entry, joined by separator
// (default two newlines).
func (s *Store) Append(entryUUID, content, separator string) (*Entry, error) {
	if strings.TrimSpace(content) == "" {
		return nil, invalidInput("content", "content to append cannot be empty")
	}
	if separator == "" {
		separator = "\n\n"
	}

	current, err := s.Get(entryUUID)
	if err != nil {
		return nil, err
	}

	return s.Update(entryUUID, current.Text+separator+content)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (s *Store) queryEntries(query string, args ...any) ([]Entry, error) {
	db, err := s.open(false)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var richText, markdown, timezone, journalName sql.NullString
		var created, modified sql.NullFloat64
		var starred sql.NullInt64
		if err := rows.Scan(
			&e.UUID, &richText, &markdown, &created, &modified,
			&starred, &timezone, &journalName, &e.HasLocation, &e.HasWeather,
		); err != nil {
			return nil, storeUnavailable(err)
		}

		e.Text = entryText(richText, markdown)
		if created.Valid {
			e.CreatedAt = appleTime(created.Float64)
		}
		if modified.Valid {
			e.ModifiedAt = appleTime(modified.Float64)
		}
		e.Starred = starred.Int64 != 0
		e.Timezone = timezone.String
		if e.Timezone == "" {
			e.Timezone = "UTC"
		}
		e.Journal = journalName.String
		if e.Journal == "" {
			e.Journal = "Default"
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeUnavailable(err)
	}

	// Tags come from a second query per entry, as the original does. A tag
	// lookup failure degrades to no tags rather than failing the read.
	for i := range entries {
		entries[i].Tags, _ = s.tagsFor(db, entries[i].UUID)
	}

	return entries, nil
}

// tagsFor resolves the many-to-many tag relation for one entry.
func (s *Store) tagsFor(db *sql.DB, entryUUID string) ([]string, error) {
	rows, err := db.Query(`
		SELECT t.ZNAME
		FROM ZTAG t
		JOIN Z_13TAGS zt ON t.Z_PK = zt.Z_55TAGS1
		JOIN ZENTRY e ON zt.Z_13ENTRIES = e.Z_PK
		WHERE e.ZUUID = ?
	`, entryUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tags = append(tags, name)
	}
	return tags, rows.Err()
}

// entryText normalizes the stored content: rich text first, markdown as the
// fallback when rich text is absent or yields nothing.
func entryText(richText, markdown sql.NullString) string {
	if richText.Valid {
		if text := richtext.Extract(richText.String); text != "" {
			return text
		}
	}
	if markdown.Valid {
		return strings.TrimSpace(markdown.String)
	}
	return ""
}

func appleTime(sec float64) time.Time {
	return time.Unix(int64(sec)+appleEpochOffset, 0).UTC()
}

func nowApple() float64 {
	return float64(timeNow().UTC().Unix() - appleEpochOffset)
}

func checkLimit(limit int) error {
	if limit < 1 || limit > MaxLimit {
		return invalidInput("limit", fmt.Sprintf("must be between 1 and %d, got %d", MaxLimit, limit))
	}
	return nil
}

func checkUUID(entryUUID string) error {
	if _, err := uuid.Parse(entryUUID); err != nil {
		return invalidInput("uuid", fmt.Sprintf("%q is not a valid entry UUID", entryUUID))
	}
	return nil
}

// parseMonthDay accepts MM-DD or YYYY-MM-DD. The year, when present, anchors
// the on-this-day scan; otherwise it is 0 and the caller uses today.
func parseMonthDay(date string) (month, day, year int, err error) {
	date = strings.TrimSpace(date)

	if t, perr := time.Parse("2006-01-02", date); perr == nil {
		return int(t.Month()), t.Day(), t.Year(), nil
	}
	if t, perr := time.Parse("01-02", date); perr == nil {
		return int(t.Month()), t.Day(), 0, nil
	}
	return 0, 0, 0, invalidInput("date",
		fmt.Sprintf("%q is not a valid date, use MM-DD or YYYY-MM-DD", date))
}
