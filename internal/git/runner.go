package git

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"time"
)

// CommandResult is what a finished git process reported.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner runs git with the given arguments. A non-zero exit is reported
// through CommandResult.ExitCode; err is reserved for processes that could not
// be run or were killed.
type CommandRunner interface {
	Run(ctx context.Context, args ...string) (CommandResult, error)
}

// ExecRunner runs the git binary found in PATH.
type ExecRunner struct {
	Binary string
}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{Binary: "git"}
}

func (r *ExecRunner) Run(ctx context.Context, args ...string) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	// Sentinel matching on stderr relies on untranslated messages.
	cmd.Env = append(os.Environ(), "LC_ALL=C", "LANG=C", "GIT_TERMINAL_PROMPT=0")
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}

	return result, nil
}
