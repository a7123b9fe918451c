// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pyenv resolves Python virtual environments and builds activated
// process environments. Activation is modeled as data: Resolve validates the
// venv layout up front, and Overlay produces a complete child environment
// instead of mutating the ambient one, so "did activation run" can never be
// an ordering question.
package pyenv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	activateScript = "activate"
	venvConfig     = "pyvenv.cfg"
)

// Resolution errors. Callers branch on these to report which artifact is
// missing before anything is executed.
var (
	ErrNoVenvDir     = errors.New("virtual environment directory not found")
	ErrNoVenvConfig  = errors.New("pyvenv.cfg not found")
	ErrNoActivate    = errors.New("activation script not found")
	ErrNoInterpreter = errors.New("python interpreter not found in venv")
)

// Venv is a resolved virtual environment. All paths are absolute.
type Venv struct {
	// Root is the venv directory (the value VIRTUAL_ENV is set to).
	Root string

	// BinDir is Root/bin, holding the interpreter and console scripts
	// such as supernote-tool.
	BinDir string

	// Interpreter is the venv's python executable.
	Interpreter string
}

// Resolve validates the venv layout under root and returns its resolved
// paths. It checks for the directory itself, pyvenv.cfg, bin/activate, and
// a python interpreter, in that order, returning the first missing artifact
// as a typed error.
func Resolve(root string) (*Venv, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving venv path %s: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNoVenvDir, abs)
	}

	if _, err := os.Stat(filepath.Join(abs, venvConfig)); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoVenvConfig, filepath.Join(abs, venvConfig))
	}

	binDir := filepath.Join(abs, "bin")
	if _, err := os.Stat(filepath.Join(binDir, activateScript)); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoActivate, filepath.Join(binDir, activateScript))
	}

	interpreter := ""
	for _, name := range []string{"python3", "python"} {
		candidate := filepath.Join(binDir, name)
		if _, err := os.Stat(candidate); err == nil {
			interpreter = candidate
			break
		}
	}
	if interpreter == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoInterpreter, binDir)
	}

	return &Venv{Root: abs, BinDir: binDir, Interpreter: interpreter}, nil
}

// Overlay returns a copy of base with the venv activated: VIRTUAL_ENV set to
// the venv root and the venv bin directory prepended to PATH. Any inherited
// VIRTUAL_ENV entry is dropped so a stale activation cannot leak through.
// base is not modified.
func (v *Venv) Overlay(base []string) []string {
	env := make([]string, 0, len(base)+1)
	sawPath := false

	for _, kv := range base {
		switch {
		case strings.HasPrefix(kv, "VIRTUAL_ENV="):
			continue
		case strings.HasPrefix(kv, "PATH="):
			sawPath = true
			env = append(env, "PATH="+v.BinDir+string(os.PathListSeparator)+strings.TrimPrefix(kv, "PATH="))
		default:
			env = append(env, kv)
		}
	}

	if !sawPath {
		env = append(env, "PATH="+v.BinDir)
	}
	env = append(env, "VIRTUAL_ENV="+v.Root)

	return env
}
