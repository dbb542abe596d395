package models

import "time"

const ReportStatusSuccess = "success"

// ReleaseNotesReport is the structured result handed to programmatic callers.
type ReleaseNotesReport struct {
	Status       string      `json:"status"`
	Repository   string      `json:"repository"`
	FilePath     string      `json:"file_path"`
	MaxCommits   int         `json:"max_commits"`
	ReleaseNotes string      `json:"release_notes"`
	GeneratedAt  time.Time   `json:"generated_at"`
	Provider     string      `json:"provider,omitempty"`
	Model        string      `json:"model,omitempty"`
	Branch       string      `json:"branch,omitempty"`
	Head         string      `json:"head,omitempty"`
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// RepositoryInfo is best-effort metadata about a local repository.
type RepositoryInfo struct {
	Root      string `json:"root"`
	Branch    string `json:"branch,omitempty"`
	Head      string `json:"head,omitempty"`
	RemoteURL string `json:"remote_url,omitempty"`
	Host      string `json:"host,omitempty"`
	Owner     string `json:"owner,omitempty"`
	Repo      string `json:"repo,omitempty"`
}
