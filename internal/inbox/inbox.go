// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inbox scans the device sync directory for Supernote captures.
// The device names exports by capture time, so the filename is the only
// metadata the pipeline needs.
package inbox

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/pdiddy/note-engine/pkg/types"
)

// notePattern matches device exports: YYYYMMDD_HHMMSS.note.
var notePattern = regexp.MustCompile(`^(\d{8})_(\d{6})\.note$`)

// ParseFilename extracts the capture timestamp from a device export name.
// Names that do not follow the export convention are rejected.
func ParseFilename(name string) (time.Time, error) {
	m := notePattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, fmt.Errorf("not a dated note export: %q", name)
	}
	captured, err := time.ParseInLocation("20060102_150405", m[1]+"_"+m[2], time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp in %q: %w", name, err)
	}
	return captured, nil
}

// Scan lists the dated note exports in dir, sorted by filename (and thus by
// capture time). A missing directory is a hard error: it means the device
// sync has never run here. Files that do not match the export convention
// are ignored, not errors.
func Scan(dir string) ([]types.Note, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading inbox %s: %w", dir, err)
	}

	var notes []types.Note
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		captured, err := ParseFilename(entry.Name())
		if err != nil {
			continue
		}
		notes = append(notes, types.Note{
			Filename: entry.Name(),
			Path:     filepath.Join(dir, entry.Name()),
			Captured: captured,
		})
	}

	sort.Slice(notes, func(i, j int) bool { return notes[i].Filename < notes[j].Filename })
	return notes, nil
}

// Seen answers whether a filename has already been processed. The ledger
// implements it.
type Seen interface {
	Contains(filename string) (bool, error)
}

// Pending filters notes down to those the ledger has not recorded yet.
func Pending(notes []types.Note, seen Seen) ([]types.Note, error) {
	var pending []types.Note
	for _, n := range notes {
		ok, err := seen.Contains(n.Filename)
		if err != nil {
			return nil, fmt.Errorf("checking ledger for %s: %w", n.Filename, err)
		}
		if !ok {
			pending = append(pending, n)
		}
	}
	return pending, nil
}
