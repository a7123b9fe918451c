// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one end-to-end ingestion: scan the inbox, render
// each new capture to PDF, transcribe it, append it to the daily note, mark
// it in the ledger, then publish the vault. Per-note failures are isolated;
// one bad capture never stops the batch.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pdiddy/note-engine/internal/inbox"
	"github.com/pdiddy/note-engine/internal/vault"
	"github.com/pdiddy/note-engine/pkg/types"
)

// Converter renders a .note file to PDF. notetool.Tool implements it.
type Converter interface {
	ConvertPDF(ctx context.Context, notePath, pdfPath string) error
}

// Recognizer transcribes a rendered PDF. recognize.GeminiBackend implements it.
type Recognizer interface {
	Recognize(ctx context.Context, pdf []byte) (string, error)
}

// Ledger records processed captures. ledger.Ledger implements it.
type Ledger interface {
	Contains(filename string) (bool, error)
	Mark(n types.Note) error
}

// Syncer publishes the vault after a run. gitops.Repo implements it.
type Syncer interface {
	Sync(ctx context.Context, dates []string, w io.Writer) error
}

// Pipeline wires the stages of one ingestion run together.
type Pipeline struct {
	InboxDir   string
	Vault      *vault.Vault
	Converter  Converter
	Recognizer Recognizer
	Ledger     Ledger
	Syncer     Syncer // nil disables publishing
	Out        io.Writer
}

// Result summarizes one run.
type Result struct {
	Found            int // dated exports in the inbox
	AlreadyProcessed int // skipped via the ledger
	Attempted        int // new captures this run
	Succeeded        int
	Failed           int
}

// AllFailed reports whether new captures existed but none made it through.
// The run exits non-zero only in that case; partial success still counts as
// a productive run.
func (r Result) AllFailed() bool {
	return r.Attempted > 0 && r.Succeeded == 0
}

// Run executes the pipeline once.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	var result Result

	notes, err := inbox.Scan(p.InboxDir)
	if err != nil {
		return result, err
	}
	result.Found = len(notes)

	pending, err := inbox.Pending(notes, p.Ledger)
	if err != nil {
		return result, err
	}
	result.AlreadyProcessed = result.Found - len(pending)
	result.Attempted = len(pending)

	if len(pending) == 0 {
		fmt.Fprintln(p.Out, "no new captures to process")
		return result, nil
	}
	fmt.Fprintf(p.Out, "found %d new capture(s)\n", len(pending))

	if err := p.Vault.EnsureDirs(); err != nil {
		return result, err
	}

	dates := map[string]bool{}
	for _, note := range pending {
		if err := p.processOne(ctx, note); err != nil {
			fmt.Fprintf(p.Out, "failed:    %s (%v)\n", note.Filename, err)
			result.Failed++
			continue
		}
		fmt.Fprintf(p.Out, "published: %s -> %s\n", note.Filename, note.DayKey())
		dates[note.DayKey()] = true
		result.Succeeded++
	}

	if p.Syncer != nil && len(dates) > 0 {
		sorted := make([]string, 0, len(dates))
		for d := range dates {
			sorted = append(sorted, d)
		}
		sort.Strings(sorted)
		if err := p.Syncer.Sync(ctx, sorted, p.Out); err != nil {
			fmt.Fprintf(p.Out, "warning: vault sync failed: %v\n", err)
		}
	}

	p.printSummary(result)
	return result, nil
}

// processOne takes a single capture through convert, recognize, append, and
// mark. The ledger is written only after the daily note update succeeds, so
// a failure here means the capture is retried next run.
func (p *Pipeline) processOne(ctx context.Context, note types.Note) error {
	pdfPath := p.Vault.AttachmentPDFPath(note.Captured)
	if err := p.Converter.ConvertPDF(ctx, note.Path, pdfPath); err != nil {
		return err
	}

	pdf, err := os.ReadFile(pdfPath)
	if err != nil {
		return fmt.Errorf("reading rendered PDF: %w", err)
	}

	markdown, err := p.Recognizer.Recognize(ctx, pdf)
	if err != nil {
		return err
	}

	if err := p.Vault.AppendEntry(note.Captured, markdown); err != nil {
		return err
	}

	if err := p.Ledger.Mark(note); err != nil {
		return fmt.Errorf("capture published but not recorded, will reprocess next run: %w", err)
	}
	return nil
}

func (p *Pipeline) printSummary(r Result) {
	fmt.Fprintf(p.Out, "\nRun summary: %d found, %d already processed, %d attempted, %d succeeded, %d failed\n",
		r.Found, r.AlreadyProcessed, r.Attempted, r.Succeeded, r.Failed)
}
