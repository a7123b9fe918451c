// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/note-engine/internal/gitops"
	"github.com/pdiddy/note-engine/internal/notetool"
	"github.com/pdiddy/note-engine/internal/pyenv"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Report on the pipeline's external dependencies",
	Long: `Doctor checks every external artifact the pipeline needs: project root,
virtual environment, supernote-tool, inbox, vault, git repository, and the
recognition API key. It reports each one and exits non-zero when a check
required for "run" fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := pipelineConfig()
		out := cmd.OutOrStdout()
		healthy := true

		check := func(name string, ok bool, detail string) {
			status := "ok"
			if !ok {
				status = "MISSING"
				healthy = false
			}
			fmt.Fprintf(out, "%-18s %-8s %s\n", name, status, detail)
		}

		info, err := os.Stat(cfg.Launcher.ProjectRoot)
		check("project root", err == nil && info.IsDir(), cfg.Launcher.ProjectRoot)

		venvDir := resolveAgainst(cfg.Launcher.ProjectRoot, cfg.Launcher.VenvDir)
		venv, venvErr := pyenv.Resolve(venvDir)
		if venvErr != nil {
			// The venv is only required by launch; run can use a PATH install.
			fmt.Fprintf(out, "%-18s %-8s %v\n", "virtualenv", "absent", venvErr)
			venv = nil
		} else {
			fmt.Fprintf(out, "%-18s %-8s %s\n", "virtualenv", "ok", venv.Root)
		}

		tool, toolErr := notetool.Detect(venv)
		if toolErr != nil {
			check("supernote-tool", false, toolErr.Error())
		} else {
			check("supernote-tool", true, tool.Path())
		}

		info, err = os.Stat(cfg.Inbox.Dir)
		check("inbox", err == nil && info.IsDir(), cfg.Inbox.Dir)

		info, err = os.Stat(cfg.Vault.Dir)
		check("vault", err == nil && info.IsDir(), cfg.Vault.Dir)

		repo := gitops.NewRepo(cfg.Vault.Dir)
		if repo.IsRepo(cmd.Context()) {
			fmt.Fprintf(out, "%-18s %-8s %s\n", "git repository", "ok", cfg.Vault.Dir)
		} else {
			fmt.Fprintf(out, "%-18s %-8s vault sync will be skipped\n", "git repository", "absent")
		}

		check("recognition key", cfg.Recognition.APIKey != "", "secrets dir or recognition.api_key")

		if !healthy {
			return fmt.Errorf("environment is not ready, fix the MISSING entries above")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
