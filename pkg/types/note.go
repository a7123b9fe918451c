// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared data types passed between pipeline stages.
package types

import "time"

// Note is a Supernote capture waiting in the inbox. The capture time is
// parsed from the device's export filename.
type Note struct {
	// Filename is the base name as exported by the device
	// (e.g. "20260812_073045.note").
	Filename string `json:"filename" yaml:"filename"`

	// Path is the absolute or inbox-relative path to the .note file.
	Path string `json:"path" yaml:"path"`

	// Captured is the capture timestamp encoded in the filename.
	Captured time.Time `json:"captured" yaml:"captured"`
}

// DayKey returns the capture date in the YYYY-MM-DD form used for daily
// note filenames and commit messages.
func (n Note) DayKey() string {
	return n.Captured.Format("2006-01-02")
}
