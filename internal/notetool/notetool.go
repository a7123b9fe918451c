// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notetool wraps the supernote-tool command, which renders the
// device's proprietary .note format to PDF. The binary normally lives in the
// project venv; detection prefers it there and falls back to PATH.
package notetool

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pdiddy/note-engine/internal/pyenv"
)

const binName = "supernote-tool"

// Tool renders .note files to PDF.
type Tool interface {
	// Path returns the resolved binary path.
	Path() string

	// ConvertPDF renders the note at notePath to pdfPath, all pages.
	ConvertPDF(ctx context.Context, notePath, pdfPath string) error
}

// executor abstracts binary lookup and command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunCapture(ctx context.Context, name string, args ...string) (string, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) RunCapture(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return string(out), err
}

type tool struct {
	path string
	exec executor
}

func (t *tool) Path() string { return t.path }

func (t *tool) ConvertPDF(ctx context.Context, notePath, pdfPath string) error {
	out, err := t.exec.RunCapture(ctx, t.path, "convert", "-t", "pdf", "-a", notePath, pdfPath)
	if err != nil {
		msg := strings.TrimSpace(out)
		if msg != "" {
			return fmt.Errorf("converting %s: %w: %s", filepath.Base(notePath), err, msg)
		}
		return fmt.Errorf("converting %s: %w", filepath.Base(notePath), err)
	}
	return nil
}

var defaultExec executor = osExecutor{}

// Detect locates supernote-tool. When venv is non-nil its bin directory is
// tried first, since the tool is pip-installed into the project environment;
// otherwise (or on a miss) the ambient PATH is searched.
func Detect(venv *pyenv.Venv) (Tool, error) {
	return detect(venv, defaultExec)
}

func detect(venv *pyenv.Venv, exec executor) (Tool, error) {
	if venv != nil {
		candidate := filepath.Join(venv.BinDir, binName)
		if path, err := exec.LookPath(candidate); err == nil {
			return &tool{path: path, exec: exec}, nil
		}
	}

	if path, err := exec.LookPath(binName); err == nil {
		return &tool{path: path, exec: exec}, nil
	}

	if venv != nil {
		return nil, fmt.Errorf("%s not found in %s or on PATH", binName, venv.BinDir)
	}
	return nil, fmt.Errorf("%s not found on PATH", binName)
}
