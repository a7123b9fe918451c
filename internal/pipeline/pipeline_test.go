// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/note-engine/internal/inbox"
	"github.com/pdiddy/note-engine/internal/vault"
	"github.com/pdiddy/note-engine/pkg/types"
)

// fakeConverter writes a fake PDF to pdfPath, or fails for configured notes.
type fakeConverter struct {
	failFor map[string]bool
}

func (f *fakeConverter) ConvertPDF(_ context.Context, notePath, pdfPath string) error {
	if f.failFor[filepath.Base(notePath)] {
		return errors.New("conversion failed")
	}
	return os.WriteFile(pdfPath, []byte("pdf for "+filepath.Base(notePath)), 0o644)
}

// fakeRecognizer returns canned markdown derived from the PDF bytes.
type fakeRecognizer struct {
	err error
}

func (f *fakeRecognizer) Recognize(_ context.Context, pdf []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "transcribed: " + string(pdf), nil
}

// memLedger is an in-memory Ledger.
type memLedger struct {
	seen    map[string]bool
	markErr error
}

func newMemLedger(seen ...string) *memLedger {
	m := &memLedger{seen: map[string]bool{}}
	for _, s := range seen {
		m.seen[s] = true
	}
	return m
}

func (m *memLedger) Contains(filename string) (bool, error) { return m.seen[filename], nil }

func (m *memLedger) Mark(n types.Note) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.seen[n.Filename] = true
	return nil
}

// recordingSyncer records the dates it was asked to publish.
type recordingSyncer struct {
	dates []string
}

func (r *recordingSyncer) Sync(_ context.Context, dates []string, _ io.Writer) error {
	r.dates = append(r.dates, dates...)
	return nil
}

// newTestPipeline builds a pipeline over a temp inbox and vault, populating
// the inbox with the given note filenames.
func newTestPipeline(t *testing.T, notes ...string) (*Pipeline, *strings.Builder) {
	t.Helper()
	inboxDir := t.TempDir()
	for _, name := range notes {
		if err := os.WriteFile(filepath.Join(inboxDir, name), []byte("ink"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var out strings.Builder
	return &Pipeline{
		InboxDir:   inboxDir,
		Vault:      vault.New(filepath.Join(t.TempDir(), "daily")),
		Converter:  &fakeConverter{},
		Recognizer: &fakeRecognizer{},
		Ledger:     newMemLedger(),
		Syncer:     &recordingSyncer{},
		Out:        &out,
	}, &out
}

func TestRunPublishesNewCaptures(t *testing.T) {
	p, out := newTestPipeline(t, "20260812_073045.note", "20260812_210000.note")

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Found != 2 || result.Succeeded != 2 || result.Failed != 0 {
		t.Errorf("unexpected result: %+v", result)
	}

	data, err := os.ReadFile(p.Vault.DailyNotePath(mustParse(t, "20260812_073045.note")))
	if err != nil {
		t.Fatalf("daily note not written: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "## ✨ Supernote") {
		t.Error("daily note missing section header")
	}
	if !strings.Contains(content, "transcribed: pdf for 20260812_073045.note") {
		t.Errorf("daily note missing first transcription:\n%s", content)
	}
	if !strings.Contains(content, "transcribed: pdf for 20260812_210000.note") {
		t.Errorf("daily note missing second transcription:\n%s", content)
	}

	// PDF kept in attachments but never linked.
	if _, err := os.Stat(p.Vault.AttachmentPDFPath(mustParse(t, "20260812_073045.note"))); err != nil {
		t.Errorf("attachment PDF not kept: %v", err)
	}
	if strings.Contains(content, ".pdf") {
		t.Error("daily note must not link the PDF")
	}

	syncer := p.Syncer.(*recordingSyncer)
	if len(syncer.dates) != 1 || syncer.dates[0] != "2026-08-12" {
		t.Errorf("synced dates = %v, want [2026-08-12]", syncer.dates)
	}

	if !strings.Contains(out.String(), "2 succeeded") {
		t.Errorf("summary missing from output:\n%s", out.String())
	}
}

func TestRunSkipsProcessed(t *testing.T) {
	p, out := newTestPipeline(t, "20260812_073045.note")
	p.Ledger = newMemLedger("20260812_073045.note")

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Attempted != 0 || result.AlreadyProcessed != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.AllFailed() {
		t.Error("nothing attempted must not count as all-failed")
	}
	if !strings.Contains(out.String(), "no new captures") {
		t.Errorf("expected no-new-captures notice:\n%s", out.String())
	}
}

func TestRunIsolatesPerNoteFailures(t *testing.T) {
	p, _ := newTestPipeline(t, "20260812_073045.note", "20260812_210000.note")
	p.Converter = &fakeConverter{failFor: map[string]bool{"20260812_073045.note": true}}

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Succeeded != 1 || result.Failed != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.AllFailed() {
		t.Error("partial success must not count as all-failed")
	}

	// The failed capture stays out of the ledger for the next run.
	seen, _ := p.Ledger.Contains("20260812_073045.note")
	if seen {
		t.Error("failed capture must not be marked processed")
	}
	seen, _ = p.Ledger.Contains("20260812_210000.note")
	if !seen {
		t.Error("successful capture must be marked processed")
	}
}

func TestRunAllFailed(t *testing.T) {
	p, _ := newTestPipeline(t, "20260812_073045.note")
	p.Recognizer = &fakeRecognizer{err: errors.New("api down")}

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !result.AllFailed() {
		t.Errorf("expected all-failed, got %+v", result)
	}

	syncer := p.Syncer.(*recordingSyncer)
	if len(syncer.dates) != 0 {
		t.Errorf("nothing succeeded, sync should not run: %v", syncer.dates)
	}
}

func TestRunMissingInboxIsError(t *testing.T) {
	p, _ := newTestPipeline(t)
	p.InboxDir = filepath.Join(t.TempDir(), "nope")

	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing inbox")
	}
}

func mustParse(t *testing.T, name string) time.Time {
	t.Helper()
	captured, err := inbox.ParseFilename(name)
	if err != nil {
		t.Fatal(err)
	}
	return captured
}
