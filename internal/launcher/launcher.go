// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package launcher runs the legacy Python entry point inside its virtual
// environment. The old shell wrapper nested a sandbox shell around an
// activation source around the interpreter; here the same sequence is an
// explicit plan: every precondition is checked before anything executes, and
// each step carries its complete working directory and environment.
//
// The launcher is fail-fast by design: the first failing precondition or
// step aborts the whole sequence with a non-zero status, no retries and no
// partial continuation.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/pdiddy/note-engine/internal/pyenv"
	"github.com/pdiddy/note-engine/pkg/types"
)

const defaultEntryPoint = "main.py"

// Step is one supervised process invocation. Env is the complete child
// environment, not a delta; the caller decides what the child sees.
type Step struct {
	Name string
	Bin  string
	Args []string
	Dir  string
	Env  []string
}

// ExitError reports a step that ran but exited non-zero. The code is
// propagated unmasked to the launcher's own exit status.
type ExitError struct {
	Step string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("step %s exited with code %d", e.Step, e.Code)
}

// Plan is the fully resolved launch sequence. Building a Plan performs all
// existence checks; running it performs no further resolution.
type Plan struct {
	Steps []Step
	Venv  *pyenv.Venv
}

// ResolvePlan validates the project root and virtual environment from cfg
// and builds the launch plan: a single entry-point step running inside the
// activated environment with cwd at the project root. baseEnv is the
// environment the overlay is derived from (normally os.Environ()).
//
// Resolution order matters: a missing project root fails before the venv is
// ever examined, and a missing activation artifact fails before any process
// is spawned.
func ResolvePlan(cfg types.LauncherConfig, baseEnv []string) (*Plan, error) {
	root, err := filepath.Abs(cfg.ProjectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving project root %s: %w", cfg.ProjectRoot, err)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("project root does not exist: %s", root)
	}

	venvDir := cfg.VenvDir
	if venvDir == "" {
		venvDir = "venv"
	}
	if !filepath.IsAbs(venvDir) {
		venvDir = filepath.Join(root, venvDir)
	}
	venv, err := pyenv.Resolve(venvDir)
	if err != nil {
		return nil, err
	}

	entry := cfg.EntryPoint
	if entry == "" {
		entry = defaultEntryPoint
	}

	return &Plan{
		Steps: []Step{{
			Name: "entry-point",
			Bin:  venv.Interpreter,
			Args: []string{entry},
			Dir:  root,
			Env:  venv.Overlay(baseEnv),
		}},
		Venv: venv,
	}, nil
}

// runner abstracts process execution so the supervisor's sequencing and
// marker output can be tested without spawning anything.
type runner interface {
	Run(ctx context.Context, step Step, stdout, stderr io.Writer) error
}

// osRunner is the production runner backed by os/exec.
type osRunner struct{}

func (osRunner) Run(ctx context.Context, step Step, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, step.Bin, step.Args...)
	cmd.Dir = step.Dir
	cmd.Env = step.Env
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Step: step.Name, Code: exitErr.ExitCode()}
	}
	if err != nil {
		return fmt.Errorf("running %s: %w", step.Name, err)
	}
	return nil
}

// Supervisor executes a plan's steps strictly in order, surrounding them
// with the marker lines operators grep for in the service journal.
type Supervisor struct {
	out io.Writer
	run runner
	now func() time.Time
}

// NewSupervisor creates a supervisor writing markers and child output to out.
func NewSupervisor(out io.Writer) *Supervisor {
	return &Supervisor{out: out, run: osRunner{}, now: time.Now}
}

// Run executes the plan. The marker sequence on success is fixed:
// start marker with timestamp, an activation line, one running/finished pair
// per step, and a final completion marker with timestamp. Any step failure
// aborts immediately and the error carries the child's exit status.
func (s *Supervisor) Run(ctx context.Context, plan *Plan) error {
	fmt.Fprintf(s.out, "note-engine launch starting\n")
	fmt.Fprintf(s.out, "%s\n", s.now().Format(time.RFC1123))
	fmt.Fprintf(s.out, "activated environment: %s\n", plan.Venv.Root)

	for _, step := range plan.Steps {
		fmt.Fprintf(s.out, "running %s: %s\n", step.Name, filepath.Base(step.Bin))
		if err := s.run.Run(ctx, step, s.out, s.out); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s finished\n", step.Name)
	}

	fmt.Fprintf(s.out, "note-engine launch complete\n")
	fmt.Fprintf(s.out, "%s\n", s.now().Format(time.RFC1123))
	return nil
}
