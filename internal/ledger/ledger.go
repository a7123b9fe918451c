// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger tracks which note exports have already been published.
// The predecessor kept a flat append-only log file; the SQLite form answers
// membership queries without loading everything, survives concurrent runs
// under WAL, and can still import the old log on first migration.
package ledger

import (
	"bufio"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/note-engine/internal/inbox"
	"github.com/pdiddy/note-engine/pkg/types"
)

// Ledger is the processed-notes database.
type Ledger struct {
	db   *sql.DB
	path string
}

// Open opens or creates the ledger database at path, creating the schema
// if it does not exist.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	l := &Ledger{db: db, path: path}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	_, err := l.db.Exec(`CREATE TABLE IF NOT EXISTS processed (
		filename TEXT PRIMARY KEY,
		captured TEXT NOT NULL,
		processed_at TEXT NOT NULL
	)`)
	return err
}

// Contains reports whether filename has already been processed.
func (l *Ledger) Contains(filename string) (bool, error) {
	var n int
	err := l.db.QueryRow(`SELECT count(*) FROM processed WHERE filename = ?`, filename).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("querying ledger: %w", err)
	}
	return n > 0, nil
}

// Mark records a note as processed. Marking an already-marked note updates
// its processed_at timestamp rather than failing, so a re-run after a
// partial git sync is harmless.
func (l *Ledger) Mark(n types.Note) error {
	_, err := l.db.Exec(
		`INSERT OR REPLACE INTO processed (filename, captured, processed_at) VALUES (?, ?, ?)`,
		n.Filename,
		n.Captured.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("marking %s processed: %w", n.Filename, err)
	}
	return nil
}

// Entry is one ledger row.
type Entry struct {
	Filename    string    `yaml:"filename"`
	Captured    time.Time `yaml:"captured"`
	ProcessedAt time.Time `yaml:"processed_at"`
}

// List returns all ledger entries ordered by filename.
func (l *Ledger) List() ([]Entry, error) {
	rows, err := l.db.Query(`SELECT filename, captured, processed_at FROM processed ORDER BY filename`)
	if err != nil {
		return nil, fmt.Errorf("listing ledger: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var captured, processedAt string
		if err := rows.Scan(&e.Filename, &captured, &processedAt); err != nil {
			return nil, fmt.Errorf("scanning ledger row: %w", err)
		}
		if e.Captured, err = time.Parse(time.RFC3339, captured); err != nil {
			return nil, fmt.Errorf("invalid captured timestamp for %s: %w", e.Filename, err)
		}
		if e.ProcessedAt, err = time.Parse(time.RFC3339, processedAt); err != nil {
			return nil, fmt.Errorf("invalid processed_at timestamp for %s: %w", e.Filename, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ExportYAML writes all entries to w as a YAML list.
func (l *Ledger) ExportYAML(w io.Writer) error {
	entries, err := l.List()
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encoding ledger export: %w", err)
	}
	return nil
}

// ImportLog migrates the predecessor's flat log file (one processed filename
// per line) into the ledger. Lines that are not dated note exports are
// skipped. Returns the number of entries imported.
func (l *Ledger) ImportLog(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening legacy log %s: %w", path, err)
	}
	defer f.Close()

	imported := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		captured, err := inbox.ParseFilename(name)
		if err != nil {
			continue
		}
		if err := l.Mark(types.Note{Filename: name, Captured: captured}); err != nil {
			return imported, err
		}
		imported++
	}
	if err := scanner.Err(); err != nil {
		return imported, fmt.Errorf("reading legacy log %s: %w", path, err)
	}
	return imported, nil
}
