// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/note-engine/internal/launcher"
)

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Run the legacy Python pipeline inside its virtual environment",
	Long: `Launch resolves the project root and its Python virtual environment,
verifies both exist, and runs the legacy entry point (main.py) with the venv
activated, surrounding it with timestamped markers. The entry point's exit
status passes through unmasked. No arguments are forwarded.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := launcher.ResolvePlan(pipelineConfig().Launcher, os.Environ())
		if err != nil {
			return err
		}
		return launcher.NewSupervisor(os.Stdout).Run(cmd.Context(), plan)
	},
}

func init() {
	rootCmd.AddCommand(launchCmd)
}
