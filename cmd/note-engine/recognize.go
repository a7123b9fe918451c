// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/note-engine/internal/recognize"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize <pdf>",
	Short: "Transcribe a rendered PDF to Markdown",
	Long: `Recognize sends a single rendered PDF through the handwriting
recognition backend and prints the Markdown transcription to stdout. Useful
for checking transcription quality before a full run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := pipelineConfig().Recognition

		backend, err := recognize.NewGeminiBackend(cfg, &http.Client{Timeout: cfg.Timeout})
		if err != nil {
			return err
		}

		pdf, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		markdown, err := backend.Recognize(cmd.Context(), pdf)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), markdown)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recognizeCmd)
}
