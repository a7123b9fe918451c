// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the note-engine CLI, which publishes
// handwritten Supernote captures into an Obsidian daily-notes vault.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/note-engine/internal/launcher"
	"github.com/pdiddy/note-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from the secrets directory at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the note-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "note-engine",
	Short: "Publish Supernote handwriting into an Obsidian vault",
	Long: `note-engine ingests .note files exported by a Supernote device, renders
them to PDF with supernote-tool, transcribes the handwriting through a
generative vision API, and appends the Markdown to the matching daily note
in an Obsidian vault, committing the result.

Each stage is a subcommand: run executes the whole pipeline, while convert,
recognize, and ledger expose the individual stages. launch runs the legacy
Python pipeline inside its virtual environment instead.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir := viper.GetString("secrets_dir")
		s, err := secrets.Load(dir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./note-engine.yaml or ~/.config/note-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("note-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "note-engine"))
		}
	}

	viper.SetDefault("secrets_dir", "~/.api_keys")
	setConfigDefaults()

	viper.SetEnvPrefix("NOTE_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// A child process exit status passes through unmasked.
		var exitErr *launcher.ExitError
		if errors.As(err, &exitErr) && exitErr.Code > 0 {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
