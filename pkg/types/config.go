package types

import "time"

// LauncherConfig holds the fixed paths the launcher resolves before running
// the legacy entry point. Relative paths are resolved against ProjectRoot.
type LauncherConfig struct {
	// ProjectRoot is the directory the entry point runs in. It must exist.
	ProjectRoot string `json:"project_root" yaml:"project_root"`

	// VenvDir is the Python virtual environment directory (default "venv").
	VenvDir string `json:"venv_dir" yaml:"venv_dir"`

	// EntryPoint is the program handed to the venv interpreter (default "main.py").
	EntryPoint string `json:"entry_point" yaml:"entry_point"`
}

// InboxConfig holds settings for scanning the device sync directory.
type InboxConfig struct {
	// Dir is the directory the Supernote cloud client syncs .note files into
	// (default "Drive/Supernote/Note" under the project root).
	Dir string `json:"dir" yaml:"dir"`
}

// VaultConfig holds settings for the Obsidian daily-notes vault.
type VaultConfig struct {
	// Dir is the daily-notes directory (default "notas/Diarias" under the
	// project root).
	Dir string `json:"dir" yaml:"dir"`

	// AttachmentsSubdir is the subdirectory for rendered PDFs (default
	// "attachments"). PDFs are stored but never linked from the notes.
	AttachmentsSubdir string `json:"attachments_subdir" yaml:"attachments_subdir"`

	// SectionHeader is the heading entries are appended under.
	SectionHeader string `json:"section_header" yaml:"section_header"`
}

// RecognitionConfig holds settings for the handwriting recognition backend.
type RecognitionConfig struct {
	// Model is the generative model identifier (default "gemini-2.0-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the recognition API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout is the per-request HTTP timeout (default 180s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxRetries is the number of retry attempts on rate limiting (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RulesFile optionally overrides the built-in transcription rules with a
	// YAML list of rule strings.
	RulesFile string `json:"rules_file,omitempty" yaml:"rules_file,omitempty"`
}

// PipelineConfig groups all stage configurations for one ingestion run.
type PipelineConfig struct {
	Launcher    LauncherConfig    `json:"launcher" yaml:"launcher"`
	Inbox       InboxConfig       `json:"inbox" yaml:"inbox"`
	Vault       VaultConfig       `json:"vault" yaml:"vault"`
	Recognition RecognitionConfig `json:"recognition" yaml:"recognition"`

	// LedgerPath is the SQLite ledger of processed notes
	// (default ".note-engine.db" under the project root).
	LedgerPath string `json:"ledger_path" yaml:"ledger_path"`

	// GitSync controls whether the vault is committed and pushed after a run.
	GitSync bool `json:"git_sync" yaml:"git_sync"`
}
