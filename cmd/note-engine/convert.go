// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/note-engine/internal/notetool"
	"github.com/pdiddy/note-engine/internal/pyenv"
)

var convertCmd = &cobra.Command{
	Use:   "convert [notes...]",
	Short: "Render .note files to PDF",
	Long: `Convert renders one or more .note files to PDF with supernote-tool,
without touching the vault or the ledger. Output files land next to their
inputs unless --out names a directory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := pipelineConfig()
		outDir, _ := cmd.Flags().GetString("out")

		venv, err := pyenv.Resolve(resolveAgainst(cfg.Launcher.ProjectRoot, cfg.Launcher.VenvDir))
		if err != nil {
			venv = nil
		}
		tool, err := notetool.Detect(venv)
		if err != nil {
			return err
		}

		for _, notePath := range args {
			base := strings.TrimSuffix(filepath.Base(notePath), filepath.Ext(notePath))
			pdfPath := filepath.Join(filepath.Dir(notePath), base+".pdf")
			if outDir != "" {
				pdfPath = filepath.Join(outDir, base+".pdf")
			}
			if err := tool.ConvertPDF(cmd.Context(), notePath, pdfPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "converted: %s -> %s\n", notePath, pdfPath)
		}
		return nil
	},
}

func init() {
	convertCmd.Flags().String("out", "", "output directory for PDFs")

	rootCmd.AddCommand(convertCmd)
}
