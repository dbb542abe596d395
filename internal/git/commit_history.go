package git

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/thomas-vilte/relnotes/internal/logger"
	"github.com/thomas-vilte/relnotes/internal/models"
)

const (
	CommitHistoryToolName = models.CommitHistoryToolName

	// DefaultTimeout bounds a single git log run.
	DefaultTimeout = 30 * time.Second

	maxErrorRunes = 200
)

// stderrSentinel maps a recognizable git error phrase to a compact message.
// An empty message means the phrase signals a repository without commits.
type stderrSentinel struct {
	phrase  string
	message string
}

// Matched against LC_ALL=C output, lowercased.
var stderrSentinels = []stderrSentinel{
	{phrase: "does not have any commits yet", message: ""},
	{phrase: "not a git repository", message: "Not a git repository"},
	{phrase: "detected dubious ownership", message: "Repository is not trusted (git safe.directory)"},
	{phrase: "cannot change to", message: "Cannot access directory"},
}

// CommitHistoryTool lets the model read the one-line commit history of a repository.
type CommitHistoryTool struct {
	runner  CommandRunner
	timeout time.Duration
}

type Option func(*CommitHistoryTool)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(t *CommitHistoryTool) {
		t.timeout = d
	}
}

func WithRunner(r CommandRunner) Option {
	return func(t *CommitHistoryTool) {
		t.runner = r
	}
}

func NewCommitHistoryTool(opts ...Option) *CommitHistoryTool {
	t := &CommitHistoryTool{
		runner:  NewExecRunner(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *CommitHistoryTool) Name() string {
	return CommitHistoryToolName
}

func (t *CommitHistoryTool) Description() string {
	return "Fetch git commit history for a repository. Returns one line per commit " +
		"(short hash and subject), newest first, or a short error message."
}

func (t *CommitHistoryTool) Parameters() models.ToolParameters {
	return models.ToolParameters{
		Type: "object",
		Properties: map[string]models.ToolProperty{
			"directory": {
				Type:        "string",
				Description: "Absolute path to the git repository",
			},
			"path": {
				Type:        "string",
				Description: "Optional path to a specific file or directory (empty string for the full repository)",
			},
			"max_commits": {
				Type:        "integer",
				Description: fmt.Sprintf("Maximum number of commits to retrieve (default: %d)", models.DefaultMaxCommits),
			},
		},
		Required: []string{"directory"},
	}
}

// Invoke decodes the model's arguments and returns the query outcome as text.
// Bad arguments come back as text too; the model can only act on text.
func (t *CommitHistoryTool) Invoke(ctx context.Context, args map[string]any) (string, error) {
	query, err := decodeCommitQuery(args)
	if err != nil {
		return models.NewCommitQueryError(models.ToolErrorInvalidInput, err.Error()).ToContext(), nil
	}
	return t.Query(ctx, query).ToContext(), nil
}

// Query runs git log for q and classifies the outcome. It never returns a Go error.
func (t *CommitHistoryTool) Query(ctx context.Context, q models.CommitQuery) models.CommitQueryResult {
	log := logger.FromContext(ctx)

	if q.Directory == "" || !filepath.IsAbs(q.Directory) {
		return models.NewCommitQueryError(models.ToolErrorInvalidInput, "Directory must be an absolute path")
	}

	if _, err := os.Stat(q.Directory); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.NewCommitQueryError(models.ToolErrorNotFound, fmt.Sprintf("Directory does not exist: %s", q.Directory))
		}
		return models.NewCommitQueryError(models.ToolErrorUnexpected, "Unexpected error: "+compact(err.Error()))
	}

	args := []string{"-C", q.Directory, "log", "--oneline", "--no-decorate", fmt.Sprintf("-%d", q.Limit())}
	if p := strings.TrimSpace(q.Path); p != "" {
		args = append(args, "--", p)
	}

	runCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()
	res, err := t.runner.Run(runCtx, args...)
	duration := time.Since(start)

	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			log.Warn("git log timed out",
				"directory", q.Directory,
				"duration_ms", duration.Milliseconds())
			return models.NewCommitQueryError(models.ToolErrorTimedOut, fmt.Sprintf("Git command timed out after %s", t.timeout))
		}
		log.Debug("git log could not run", "directory", q.Directory, "error", err)
		return models.NewCommitQueryError(models.ToolErrorUnexpected, "Unexpected error: "+compact(err.Error()))
	}

	if res.ExitCode != 0 {
		message, empty := normalizeStderr(res.Stderr)
		log.Debug("git log failed",
			"directory", q.Directory,
			"exit_code", res.ExitCode,
			"stderr", compact(res.Stderr))
		if empty {
			return models.NewCommitQueryEmpty()
		}
		return models.NewCommitQueryError(models.ToolErrorCommandFailed, message)
	}

	commits := splitLines(res.Stdout)

	log.Debug("git log executed",
		"directory", q.Directory,
		"path", q.Path,
		"max_commits", q.Limit(),
		"count", len(commits),
		"duration_ms", duration.Milliseconds())

	return models.NewCommitQuerySuccess(commits)
}

// normalizeStderr turns git's stderr into a short message. empty reports a
// repository that has no commits at all.
func normalizeStderr(stderr string) (message string, empty bool) {
	lower := strings.ToLower(stderr)
	for _, s := range stderrSentinels {
		if strings.Contains(lower, s.phrase) {
			return s.message, s.message == ""
		}
	}

	msg := compact(stderr)
	if msg == "" {
		return "Git command failed", false
	}
	return msg, false
}

// compact keeps the first non-blank line without git's severity prefix, capped at maxErrorRunes.
func compact(s string) string {
	var line string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}

	for _, prefix := range []string{"fatal: ", "error: "} {
		line = strings.TrimPrefix(line, prefix)
	}

	if utf8.RuneCountInString(line) > maxErrorRunes {
		runes := []rune(line)
		line = string(runes[:maxErrorRunes-3]) + "..."
	}
	return line
}

func splitLines(out string) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func decodeCommitQuery(args map[string]any) (models.CommitQuery, error) {
	var q models.CommitQuery

	if v, ok := args["directory"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return q, fmt.Errorf("directory must be a string")
		}
		q.Directory = s
	}

	if v, ok := args["path"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return q, fmt.Errorf("path must be a string")
		}
		q.Path = s
	}

	if v, ok := args["max_commits"]; ok && v != nil {
		n, err := toInt(v)
		if err != nil {
			return q, fmt.Errorf("max_commits must be an integer")
		}
		q.MaxCommits = n
	}

	return q, nil
}

// toInt accepts the shapes numbers take after a JSON round trip through a provider.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func floatToInt(f float64) (int, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	return int(f), nil
}
