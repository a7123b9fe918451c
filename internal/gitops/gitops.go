// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gitops commits and pushes the vault after a run. Git is an
// external collaborator invoked through its CLI; the remote must already be
// configured for non-interactive auth, since nothing here can answer a
// credential prompt.
package gitops

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strings"
)

// executor abstracts git invocation for testing.
type executor interface {
	RunCapture(ctx context.Context, dir, name string, args ...string) (string, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) RunCapture(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// Repo is a git working tree, typically the vault directory.
type Repo struct {
	Dir  string
	exec executor
}

// NewRepo wraps the working tree at dir.
func NewRepo(dir string) *Repo {
	return &Repo{Dir: dir, exec: osExecutor{}}
}

func (r *Repo) git(ctx context.Context, args ...string) (string, error) {
	out, err := r.exec.RunCapture(ctx, r.Dir, "git", args...)
	if err != nil {
		msg := strings.TrimSpace(out)
		if msg != "" {
			return out, fmt.Errorf("git %s: %w: %s", args[0], err, msg)
		}
		return out, fmt.Errorf("git %s: %w", args[0], err)
	}
	return out, nil
}

// IsRepo reports whether Dir is inside a git working tree.
func (r *Repo) IsRepo(ctx context.Context) bool {
	out, err := r.git(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// AddAll stages everything under the working tree.
func (r *Repo) AddAll(ctx context.Context) error {
	_, err := r.git(ctx, "add", ".")
	return err
}

// HasChanges reports whether anything is staged or modified.
func (r *Repo) HasChanges(ctx context.Context) (bool, error) {
	out, err := r.git(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// Commit records the staged changes.
func (r *Repo) Commit(ctx context.Context, message string) error {
	_, err := r.git(ctx, "commit", "-m", message)
	return err
}

// Push publishes the current branch to its configured remote.
func (r *Repo) Push(ctx context.Context) error {
	_, err := r.git(ctx, "push")
	return err
}

// CommitMessage builds the commit message for a set of processed dates.
func CommitMessage(dates []string) string {
	sorted := append([]string(nil), dates...)
	sort.Strings(sorted)
	return "Update daily notes from Supernote for dates: " + strings.Join(sorted, ", ")
}

// Sync stages, commits, and pushes the vault for the given processed dates.
// A directory that is not a git repository is skipped with a warning, not an
// error: publishing is best-effort and must not undo a successful run. An
// empty diff commits nothing.
func (r *Repo) Sync(ctx context.Context, dates []string, w io.Writer) error {
	if len(dates) == 0 {
		return nil
	}
	if !r.IsRepo(ctx) {
		fmt.Fprintf(w, "warning: %s is not a git repository, skipping sync\n", r.Dir)
		return nil
	}

	if err := r.AddAll(ctx); err != nil {
		return err
	}

	changed, err := r.HasChanges(ctx)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintln(w, "no changes to commit")
		return nil
	}

	if err := r.Commit(ctx, CommitMessage(dates)); err != nil {
		return err
	}
	if err := r.Push(ctx); err != nil {
		return err
	}
	fmt.Fprintf(w, "vault synced: %d date(s)\n", len(dates))
	return nil
}
