// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vault writes transcriptions into an Obsidian daily-notes vault.
// Each capture lands under a fixed section header in the note for its
// capture date; the rendered PDF is kept in an attachments directory but
// deliberately never linked from the note.
package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultAttachmentsSubdir = "attachments"
	defaultSectionHeader     = "## ✨ Supernote"
)

// Vault is an Obsidian daily-notes directory.
type Vault struct {
	Dir               string
	AttachmentsSubdir string
	SectionHeader     string
}

// New creates a Vault for dir with default attachments subdirectory and
// section header.
func New(dir string) *Vault {
	return &Vault{
		Dir:               dir,
		AttachmentsSubdir: defaultAttachmentsSubdir,
		SectionHeader:     defaultSectionHeader,
	}
}

// AttachmentsDir returns the directory rendered PDFs are stored in.
func (v *Vault) AttachmentsDir() string {
	return filepath.Join(v.Dir, v.AttachmentsSubdir)
}

// EnsureDirs creates the vault and attachments directories.
func (v *Vault) EnsureDirs() error {
	for _, dir := range []string{v.Dir, v.AttachmentsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating vault directory %s: %w", dir, err)
		}
	}
	return nil
}

// DailyNotePath returns the daily note file for a capture time.
func (v *Vault) DailyNotePath(captured time.Time) string {
	return filepath.Join(v.Dir, captured.Format("2006-01-02")+".md")
}

// AttachmentPDFPath returns where the rendered PDF for a capture is stored.
// The name carries both the capture date and time so multiple captures per
// day never collide.
func (v *Vault) AttachmentPDFPath(captured time.Time) string {
	name := captured.Format("2006-01-02") + "_supernote_" + captured.Format("150405") + ".pdf"
	return filepath.Join(v.AttachmentsDir(), name)
}

// AppendEntry adds a transcription to the daily note for captured. A new
// file starts with the section header; an existing file without the header
// gets the header appended after a blank-line separator; a file that already
// has the section gets the entry appended at the end.
func (v *Vault) AppendEntry(captured time.Time, markdown string) error {
	path := v.DailyNotePath(captured)
	entry := strings.TrimSpace(markdown) + "\n"

	existing, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("reading daily note %s: %w", path, err)
		}
		content := v.SectionHeader + "\n" + entry
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("creating daily note %s: %w", path, err)
		}
		return nil
	}

	var b strings.Builder
	b.Write(existing)

	content := string(existing)
	if !strings.Contains(content, v.SectionHeader) {
		switch {
		case content == "":
		case strings.HasSuffix(content, "\n"):
			b.WriteString("\n")
		default:
			b.WriteString("\n\n")
		}
		b.WriteString(v.SectionHeader + "\n")
	} else if !strings.HasSuffix(content, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(entry)

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("updating daily note %s: %w", path, err)
	}
	return nil
}
