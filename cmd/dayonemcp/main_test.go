package main

import (
	"database/sql"
	"io"
	"path/filepath"
	"testing"
	"time"
	"unicode/utf8"

	_ "modernc.org/sqlite"
)

// newTestDB builds a Day One database with the app schema in a temp dir.
func newTestDB(t *testing.T) (string, *sql.DB) {
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
			ZUUID TEXT,
			ZRICHTEXTJSON TEXT,
			ZMARKDOWNTEXT TEXT,
			ZCREATIONDATE REAL,
			ZMODIFIEDDATE REAL,
			ZSTARRED INTEGER,
			ZTIMEZONE TEXT,
			ZJOURNAL INTEGER,
			ZLOCATION INTEGER,
			ZWEATHER INTEGER
		);
		CREATE TABLE ZJOURNAL (
			Z_PK INTEGER PRIMARY KEY,
			ZNAME TEXT,
			ZUUIDFORAUXILIARYSYNC TEXT
		);
		CREATE TABLE ZTAG (
			Z_PK INTEGER PRIMARY KEY,
			ZNAME TEXT
		);
		CREATE TABLE Z_13TAGS (
			Z_13ENTRIES INTEGER,
			Z_55TAGS1 INTEGER
		);
		INSERT INTO ZJOURNAL (Z_PK, ZNAME, ZUUIDFORAUXILIARYSYNC)
			VALUES (1, 'Personal', 'journal-uuid-1');
	`)
	if err != nil {
		t.Fatalf("create fixture schema: %v", err)
	}

	return path, db
}

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestOnThisDayCommandDefaultsToToday(t *testing.T) {
	dbPath, db := newTestDB(t)

	// One entry written today last hour, so the default date has something
	// to find in the anchor year.
	created := time.Now().UTC().Add(-time.Hour)
	_, err := db.Exec(`
		INSERT INTO ZENTRY (ZUUID, ZRICHTEXTJSON, ZMARKDOWNTEXT, ZCREATIONDATE, ZMODIFIEDDATE, ZSTARRED, ZTIMEZONE, ZJOURNAL)
		VALUES ('0FBBE44E05F44B1C9A720566A32B3CCF', '{"text":"today"}', NULL, ?, ?, 0, NULL, 1)
	`, float64(created.Unix()-978307200), float64(created.Unix()-978307200))
	if err != nil {
		t.Fatalf("insert entry: %v", err)
	}

	// Bare invocation: no --date means today, not an invalid-date error.
	if err := runCLI(t, "onthisday", "--db", dbPath); err != nil {
		t.Fatalf("onthisday without --date: %v", err)
	}

	// Explicit dates still work, and malformed ones still fail.
	if err := runCLI(t, "onthisday", "--db", dbPath, "--date", "06-14"); err != nil {
		t.Fatalf("onthisday with explicit date: %v", err)
	}
	if err := runCLI(t, "onthisday", "--db", dbPath, "--date", "not-a-date"); err == nil {
		t.Fatal("expected an error for a malformed date")
	}
}

func TestTruncateKeepsValidUTF8(t *testing.T) {
	got := truncate("ab🎉cd", 4)
	if got != "ab..." {
		t.Fatalf("expected %q, got %q", "ab...", got)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncated string is not valid UTF-8: %q", got)
	}
}
