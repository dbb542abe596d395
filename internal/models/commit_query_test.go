package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommitQueryResult_ToContext(t *testing.T) {
	t.Run("success lists commits in order", func(t *testing.T) {
		r := NewCommitQuerySuccess([]string{"a1 fix bug", "b2 add feature", "c3 update docs"})

		assert.Equal(t, ToolStatusSuccess, r.Status)
		assert.Equal(t, 3, r.CommitCount)
		assert.Equal(t, "Found 3 commits:\na1 fix bug\nb2 add feature\nc3 update docs", r.ToContext())
	})

	t.Run("no commits becomes empty, not success", func(t *testing.T) {
		r := NewCommitQuerySuccess(nil)

		assert.Equal(t, ToolStatusEmpty, r.Status)
		assert.Empty(t, r.Commits)
		assert.Equal(t, "No commits found in the repository.", r.ToContext())
	})

	t.Run("error carries its message", func(t *testing.T) {
		r := NewCommitQueryError(ToolErrorNotFound, "Directory does not exist: /tmp/r")

		assert.Equal(t, ToolStatusError, r.Status)
		assert.Equal(t, ToolErrorNotFound, r.ErrorKind)
		assert.Empty(t, r.Commits)
		assert.Zero(t, r.CommitCount)
		assert.Equal(t, "Error accessing repository: Directory does not exist: /tmp/r", r.ToContext())
	})
}

func TestCommitQuery_Limit(t *testing.T) {
	assert.Equal(t, DefaultMaxCommits, CommitQuery{}.Limit())
	assert.Equal(t, DefaultMaxCommits, CommitQuery{MaxCommits: -3}.Limit())
	assert.Equal(t, 7, CommitQuery{MaxCommits: 7}.Limit())
}
