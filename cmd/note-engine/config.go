// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/note-engine/internal/secrets"
	"github.com/pdiddy/note-engine/pkg/types"
)

// setConfigDefaults registers the defaults mirroring the original project
// layout: everything hangs off the project root.
func setConfigDefaults() {
	viper.SetDefault("project_root", ".")
	viper.SetDefault("venv_dir", "venv")
	viper.SetDefault("entry_point", "main.py")
	viper.SetDefault("inbox.dir", filepath.Join("Drive", "Supernote", "Note"))
	viper.SetDefault("vault.dir", filepath.Join("notas", "Diarias"))
	viper.SetDefault("vault.attachments_subdir", "attachments")
	viper.SetDefault("vault.section_header", "## ✨ Supernote")
	viper.SetDefault("recognition.model", "gemini-2.0-flash")
	viper.SetDefault("recognition.timeout", 180*time.Second)
	viper.SetDefault("recognition.max_retries", 5)
	viper.SetDefault("recognition.rules_file", "")
	viper.SetDefault("ledger_path", ".note-engine.db")
	viper.SetDefault("git_sync", true)
}

// resolveAgainst joins path onto root unless path is already absolute.
func resolveAgainst(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// pipelineConfig assembles the full configuration from viper and the loaded
// secrets. Relative paths are resolved against the project root.
func pipelineConfig() types.PipelineConfig {
	root := viper.GetString("project_root")

	apiKey := viper.GetString("recognition.api_key")
	if apiKey == "" {
		apiKey = loadedSecrets[secrets.GeminiKey]
	}

	return types.PipelineConfig{
		Launcher: types.LauncherConfig{
			ProjectRoot: root,
			VenvDir:     viper.GetString("venv_dir"),
			EntryPoint:  viper.GetString("entry_point"),
		},
		Inbox: types.InboxConfig{
			Dir: resolveAgainst(root, viper.GetString("inbox.dir")),
		},
		Vault: types.VaultConfig{
			Dir:               resolveAgainst(root, viper.GetString("vault.dir")),
			AttachmentsSubdir: viper.GetString("vault.attachments_subdir"),
			SectionHeader:     viper.GetString("vault.section_header"),
		},
		Recognition: types.RecognitionConfig{
			Model:      viper.GetString("recognition.model"),
			APIKey:     apiKey,
			Timeout:    viper.GetDuration("recognition.timeout"),
			MaxRetries: viper.GetInt("recognition.max_retries"),
			RulesFile:  viper.GetString("recognition.rules_file"),
		},
		LedgerPath: resolveAgainst(root, viper.GetString("ledger_path")),
		GitSync:    viper.GetBool("git_sync"),
	}
}
