// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/note-engine/internal/ledger"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the processed-captures ledger",
	Long: `Ledger lists the captures already published to the vault. --export
writes the entries as YAML; --import-log migrates a legacy flat log file
(one filename per line) into the ledger.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		led, err := ledger.Open(pipelineConfig().LedgerPath)
		if err != nil {
			return err
		}
		defer led.Close()

		if logPath, _ := cmd.Flags().GetString("import-log"); logPath != "" {
			imported, err := led.ImportLog(logPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries from %s\n", imported, logPath)
			return nil
		}

		if export, _ := cmd.Flags().GetBool("export"); export {
			return led.ExportYAML(os.Stdout)
		}

		entries, err := led.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "ledger is empty")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  processed %s\n", e.Filename, e.ProcessedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	ledgerCmd.Flags().Bool("export", false, "export the ledger as YAML to stdout")
	ledgerCmd.Flags().String("import-log", "", "migrate a legacy flat log file into the ledger")

	rootCmd.AddCommand(ledgerCmd)
}
