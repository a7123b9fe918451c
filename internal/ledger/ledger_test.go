// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/note-engine/pkg/types"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func testNote(filename string) types.Note {
	return types.Note{
		Filename: filename,
		Captured: time.Date(2026, 8, 12, 7, 30, 45, 0, time.UTC),
	}
}

func TestMarkAndContains(t *testing.T) {
	l := openTestLedger(t)

	ok, err := l.Contains("20260812_073045.note")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("empty ledger should not contain anything")
	}

	if err := l.Mark(testNote("20260812_073045.note")); err != nil {
		t.Fatal(err)
	}

	ok, err = l.Contains("20260812_073045.note")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("marked note not found in ledger")
	}

	ok, err = l.Contains("20260812_210000.note")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("unmarked note reported as processed")
	}
}

func TestMarkTwiceIsIdempotent(t *testing.T) {
	l := openTestLedger(t)
	n := testNote("20260812_073045.note")

	if err := l.Mark(n); err != nil {
		t.Fatal(err)
	}
	if err := l.Mark(n); err != nil {
		t.Fatalf("re-marking should not fail: %v", err)
	}

	entries, err := l.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d entries, want 1", len(entries))
	}
}

func TestList(t *testing.T) {
	l := openTestLedger(t)
	for _, name := range []string{"20260812_210000.note", "20260701_120000.note"} {
		if err := l.Mark(testNote(name)); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := l.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Filename != "20260701_120000.note" {
		t.Errorf("entries not ordered by filename: %v", entries)
	}
	if !entries[0].Captured.Equal(time.Date(2026, 8, 12, 7, 30, 45, 0, time.UTC)) {
		t.Errorf("captured timestamp did not round-trip: %v", entries[0].Captured)
	}
	if entries[0].ProcessedAt.IsZero() {
		t.Error("processed_at not recorded")
	}
}

func TestExportYAML(t *testing.T) {
	l := openTestLedger(t)
	if err := l.Mark(testNote("20260812_073045.note")); err != nil {
		t.Fatal(err)
	}

	var out strings.Builder
	if err := l.ExportYAML(&out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "filename: 20260812_073045.note") {
		t.Errorf("export missing entry:\n%s", out.String())
	}
}

func TestImportLog(t *testing.T) {
	l := openTestLedger(t)

	logPath := filepath.Join(t.TempDir(), ".processed_supernotes.log")
	content := strings.Join([]string{
		"20260701_120000.note",
		"",
		"not-a-note.txt",
		"20260812_073045.note",
	}, "\n")
	if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	imported, err := l.ImportLog(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if imported != 2 {
		t.Errorf("imported %d entries, want 2", imported)
	}

	ok, err := l.Contains("20260701_120000.note")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("imported entry not found")
	}
	ok, _ = l.Contains("not-a-note.txt")
	if ok {
		t.Error("non-export line should have been skipped")
	}
}
