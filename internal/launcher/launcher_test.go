// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package launcher

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/note-engine/internal/pyenv"
	"github.com/pdiddy/note-engine/pkg/types"
)

// makeProject lays out a project root with a working venv and returns the
// root path.
func makeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	binDir := filepath.Join(root, "venv", "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for path, content := range map[string]string{
		filepath.Join(root, "venv", "pyvenv.cfg"): "home = /usr/bin\n",
		filepath.Join(binDir, "activate"):         "# activate\n",
		filepath.Join(binDir, "python3"):          "",
		filepath.Join(root, "main.py"):            "print('ok')\n",
	} {
		if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestResolvePlanMissingProjectRoot(t *testing.T) {
	cfg := types.LauncherConfig{ProjectRoot: filepath.Join(t.TempDir(), "nope")}

	_, err := ResolvePlan(cfg, nil)
	if err == nil {
		t.Fatal("expected error for missing project root")
	}
	if !strings.Contains(err.Error(), "project root does not exist") {
		t.Errorf("error should name the project root, got: %v", err)
	}
	// The venv must never have been examined.
	if errors.Is(err, pyenv.ErrNoVenvDir) {
		t.Error("venv resolution ran before the project root check")
	}
}

func TestResolvePlanMissingActivation(t *testing.T) {
	root := makeProject(t)
	if err := os.Remove(filepath.Join(root, "venv", "bin", "activate")); err != nil {
		t.Fatal(err)
	}

	_, err := ResolvePlan(types.LauncherConfig{ProjectRoot: root}, nil)
	if !errors.Is(err, pyenv.ErrNoActivate) {
		t.Fatalf("got %v, want ErrNoActivate", err)
	}
}

func TestResolvePlanBuildsEntryPointStep(t *testing.T) {
	root := makeProject(t)
	base := []string{"PATH=/usr/bin", "HOME=/home/u"}

	plan, err := ResolvePlan(types.LauncherConfig{ProjectRoot: root}, base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Steps) != 1 {
		t.Fatalf("got %d steps, want 1", len(plan.Steps))
	}

	step := plan.Steps[0]
	if step.Dir != root {
		t.Errorf("step dir = %q, want project root %q", step.Dir, root)
	}
	if filepath.Base(step.Bin) != "python3" {
		t.Errorf("step bin = %q, want venv python3", step.Bin)
	}
	if len(step.Args) != 1 || step.Args[0] != "main.py" {
		t.Errorf("step args = %v, want [main.py]", step.Args)
	}

	env := strings.Join(step.Env, "|")
	if !strings.Contains(env, "VIRTUAL_ENV="+plan.Venv.Root) {
		t.Error("step env missing VIRTUAL_ENV marker")
	}
	if !strings.Contains(env, "PATH="+plan.Venv.BinDir) {
		t.Error("step env PATH not prefixed with venv bin dir")
	}
}

// fakeRunner records executed steps and fails on request.
type fakeRunner struct {
	ran    []string
	failAt string
	err    error
}

func (f *fakeRunner) Run(_ context.Context, step Step, _, _ io.Writer) error {
	f.ran = append(f.ran, step.Name)
	if step.Name == f.failAt {
		return f.err
	}
	return nil
}

func testSupervisor(out io.Writer, r runner) *Supervisor {
	return &Supervisor{
		out: out,
		run: r,
		now: func() time.Time { return time.Date(2026, 8, 12, 7, 30, 0, 0, time.UTC) },
	}
}

func TestSupervisorMarkerOrder(t *testing.T) {
	var out strings.Builder
	s := testSupervisor(&out, &fakeRunner{})
	plan := &Plan{
		Steps: []Step{{Name: "entry-point", Bin: "/venv/bin/python3", Args: []string{"main.py"}}},
		Venv:  &pyenv.Venv{Root: "/proj/venv", BinDir: "/proj/venv/bin"},
	}

	if err := s.Run(context.Background(), plan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	want := []string{
		"note-engine launch starting",
		"Wed, 12 Aug 2026 07:30:00 UTC",
		"activated environment: /proj/venv",
		"running entry-point: python3",
		"entry-point finished",
		"note-engine launch complete",
		"Wed, 12 Aug 2026 07:30:00 UTC",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), out.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestSupervisorPropagatesExitCode(t *testing.T) {
	var out strings.Builder
	fail := &fakeRunner{failAt: "entry-point", err: &ExitError{Step: "entry-point", Code: 7}}
	s := testSupervisor(&out, fail)
	plan := &Plan{
		Steps: []Step{{Name: "entry-point"}},
		Venv:  &pyenv.Venv{Root: "/proj/venv"},
	}

	err := s.Run(context.Background(), plan)

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("got %v, want ExitError", err)
	}
	if exitErr.Code != 7 {
		t.Errorf("exit code = %d, want 7 (propagated, not masked)", exitErr.Code)
	}
	if strings.Contains(out.String(), "launch complete") {
		t.Error("completion marker printed after a failed step")
	}
	if strings.Contains(out.String(), "entry-point finished") {
		t.Error("finished marker printed for a failed step")
	}
}

func TestSupervisorStopsAtFirstFailure(t *testing.T) {
	var out strings.Builder
	fail := &fakeRunner{failAt: "first", err: errors.New("boom")}
	s := testSupervisor(&out, fail)
	plan := &Plan{
		Steps: []Step{{Name: "first"}, {Name: "second"}},
		Venv:  &pyenv.Venv{Root: "/v"},
	}

	if err := s.Run(context.Background(), plan); err == nil {
		t.Fatal("expected error")
	}
	if len(fail.ran) != 1 {
		t.Errorf("ran %v, want only the first step", fail.ran)
	}
}

func TestSupervisorIdempotentMarkers(t *testing.T) {
	plan := &Plan{
		Steps: []Step{{Name: "entry-point", Bin: "/v/bin/python3"}},
		Venv:  &pyenv.Venv{Root: "/v"},
	}

	var first, second strings.Builder
	if err := testSupervisor(&first, &fakeRunner{}).Run(context.Background(), plan); err != nil {
		t.Fatal(err)
	}
	if err := testSupervisor(&second, &fakeRunner{}).Run(context.Background(), plan); err != nil {
		t.Fatal(err)
	}

	if first.String() != second.String() {
		t.Error("repeated runs against an unchanged plan produced different marker sequences")
	}
}
