package models

import (
	"fmt"
	"strings"
)

const (
	// CommitHistoryToolName is the name the model uses to request commit history.
	CommitHistoryToolName = "get_git_commits"

	// DefaultMaxCommits is the number of commits fetched when a query does not set one.
	DefaultMaxCommits = 50
)

type ToolStatus string

const (
	ToolStatusSuccess ToolStatus = "success"
	ToolStatusError   ToolStatus = "error"
	ToolStatusEmpty   ToolStatus = "empty"
)

// ToolErrorKind refines ToolStatusError.
type ToolErrorKind string

const (
	ToolErrorNone          ToolErrorKind = ""
	ToolErrorInvalidInput  ToolErrorKind = "invalid_input"
	ToolErrorNotFound      ToolErrorKind = "not_found"
	ToolErrorTimedOut      ToolErrorKind = "timed_out"
	ToolErrorCommandFailed ToolErrorKind = "command_failed"
	ToolErrorUnexpected    ToolErrorKind = "unexpected"
)

// CommitQuery describes a commit history lookup.
type CommitQuery struct {
	Directory  string `json:"directory"`
	Path       string `json:"path,omitempty"`
	MaxCommits int    `json:"max_commits,omitempty"`
}

// Limit returns MaxCommits, or DefaultMaxCommits when it is not positive.
func (q CommitQuery) Limit() int {
	if q.MaxCommits <= 0 {
		return DefaultMaxCommits
	}
	return q.MaxCommits
}

// CommitQueryResult is the outcome of a commit history lookup.
// Commits is non-empty if and only if Status is ToolStatusSuccess.
type CommitQueryResult struct {
	Status       ToolStatus    `json:"status"`
	Commits      []string      `json:"commits"`
	ErrorKind    ToolErrorKind `json:"error_kind,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	CommitCount  int           `json:"commit_count"`
}

func NewCommitQueryError(kind ToolErrorKind, message string) CommitQueryResult {
	return CommitQueryResult{
		Status:       ToolStatusError,
		Commits:      []string{},
		ErrorKind:    kind,
		ErrorMessage: message,
	}
}

func NewCommitQueryEmpty() CommitQueryResult {
	return CommitQueryResult{
		Status:  ToolStatusEmpty,
		Commits: []string{},
	}
}

// NewCommitQuerySuccess builds a success result; an empty slice yields an empty result instead.
func NewCommitQuerySuccess(commits []string) CommitQueryResult {
	if len(commits) == 0 {
		return NewCommitQueryEmpty()
	}
	return CommitQueryResult{
		Status:      ToolStatusSuccess,
		Commits:     commits,
		CommitCount: len(commits),
	}
}

// ToContext renders the result as the compact text handed back to the model.
func (r CommitQueryResult) ToContext() string {
	switch r.Status {
	case ToolStatusError:
		return fmt.Sprintf("Error accessing repository: %s", r.ErrorMessage)
	case ToolStatusEmpty:
		return "No commits found in the repository."
	default:
		return fmt.Sprintf("Found %d commits:\n%s", r.CommitCount, strings.Join(r.Commits, "\n"))
	}
}
