// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/note-engine/internal/gitops"
	"github.com/pdiddy/note-engine/internal/ledger"
	"github.com/pdiddy/note-engine/internal/notetool"
	"github.com/pdiddy/note-engine/internal/pipeline"
	"github.com/pdiddy/note-engine/internal/pyenv"
	"github.com/pdiddy/note-engine/internal/recognize"
	"github.com/pdiddy/note-engine/internal/vault"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Ingest new captures into the vault",
	Long: `Run scans the inbox for .note exports the ledger has not seen, renders
each to PDF, transcribes it, appends the Markdown to the capture date's
daily note, and records it in the ledger. Touched dates are committed and
pushed afterwards unless git sync is disabled.

A capture that fails is retried on the next run; the run only exits non-zero
when new captures existed and none of them succeeded.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := pipelineConfig()

		// The venv is optional for run: it only widens tool detection.
		venv, err := pyenv.Resolve(resolveAgainst(cfg.Launcher.ProjectRoot, cfg.Launcher.VenvDir))
		if err != nil {
			venv = nil
		}
		tool, err := notetool.Detect(venv)
		if err != nil {
			return err
		}

		backend, err := recognize.NewGeminiBackend(cfg.Recognition, &http.Client{Timeout: cfg.Recognition.Timeout})
		if err != nil {
			return err
		}

		led, err := ledger.Open(cfg.LedgerPath)
		if err != nil {
			return err
		}
		defer led.Close()

		v := &vault.Vault{
			Dir:               cfg.Vault.Dir,
			AttachmentsSubdir: cfg.Vault.AttachmentsSubdir,
			SectionHeader:     cfg.Vault.SectionHeader,
		}

		p := &pipeline.Pipeline{
			InboxDir:   cfg.Inbox.Dir,
			Vault:      v,
			Converter:  tool,
			Recognizer: backend,
			Ledger:     led,
			Out:        os.Stdout,
		}
		if cfg.GitSync {
			p.Syncer = gitops.NewRepo(cfg.Vault.Dir)
		}

		result, err := p.Run(cmd.Context())
		if err != nil {
			return err
		}
		if result.AllFailed() {
			return fmt.Errorf("no captures were successfully processed (%d failed)", result.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
