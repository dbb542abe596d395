package errors

import "fmt"

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeAI            ErrorType = "AI"
	TypeVCS           ErrorType = "VCS"
	TypeGit           ErrorType = "GIT"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if e.Context != nil {
		if stderr, ok := e.Context["stderr"].(string); ok && stderr != "" {
			msg += fmt.Sprintf(" - %s", stderr)
		}
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError of the same type and message, so
// derived errors built with WithError/WithContext still match their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// Configuration errors
var (
	ErrAPIKeyMissing = NewAppError(TypeConfiguration, "AI API key is missing", nil).
				WithSuggestion("Export the key for your provider, e.g.: export GROQ_API_KEY=<key>")

	ErrProviderNotSupported = NewAppError(TypeConfiguration, "AI provider not supported", nil).
				WithSuggestion("Use one of: groq, openai, gemini, ollama (e.g. MODEL_NAME=groq/openai/gpt-oss-120b)")

	ErrModelMissing = NewAppError(TypeConfiguration, "AI model is not configured", nil).
			WithSuggestion("Set MODEL_NAME or pass --model")

	ErrInvalidConfig = NewAppError(TypeConfiguration, "Configuration is invalid", nil)

	ErrConfigFile = NewAppError(TypeConfiguration, "Failed to read configuration file", nil).
			WithSuggestion("Check the file exists and is valid TOML or YAML")

	ErrTokenMissing = NewAppError(TypeConfiguration, "GitHub token is missing", nil).
			WithSuggestion("Export a token with 'repo' scope: export GITHUB_TOKEN=<token>")
)

// Git errors
var (
	ErrRepositoryPath = NewAppError(TypeGit, "Repository path must be an absolute path", nil).
				WithSuggestion("Pass an absolute path: relnotes generate --repo /path/to/repo")

	ErrOpenRepository = NewAppError(TypeGit, "Failed to open git repository", nil).
				WithSuggestion("Make sure the directory is inside a git repository: git status")

	ErrNoRemote = NewAppError(TypeGit, "Repository has no 'origin' remote", nil).
			WithSuggestion("Add a remote: git remote add origin <url>")

	ErrParseRemote = NewAppError(TypeGit, "Failed to parse repository URL", nil)
)

// AI errors
var (
	ErrAIGeneration = NewAppError(TypeAI, "AI generation failed", nil).
			WithSuggestion("Try again or check your API key configuration")

	ErrAgentNoOutput = NewAppError(TypeAI, "Agent finished without producing release notes", nil).
				WithSuggestion("Try again or use a different model")

	ErrAgentMaxTurns = NewAppError(TypeAI, "Agent exceeded the maximum number of turns", nil).
				WithSuggestion("The model kept calling tools; try again or use a different model")

	ErrDuplicateTool = NewAppError(TypeInternal, "Tool already registered", nil)

	ErrQuotaExceeded = NewAppError(TypeAI, "AI quota exceeded or rate limited", nil).
				WithSuggestion("Wait a few minutes and try again, or check your API quota")
)

// VCS errors
var (
	ErrVCSNotSupported = NewAppError(TypeVCS, "VCS provider not supported", nil).
				WithSuggestion("Currently only GitHub is supported")

	ErrInvalidTagFormat = NewAppError(TypeVCS, "Tag does not match semver format (vX.Y.Z)", nil).
				WithSuggestion("Use semantic versioning format: v1.0.0, v2.1.3, etc.")

	ErrCreateRelease = NewAppError(TypeVCS, "failed to create release", nil).
				WithSuggestion("Check your token permissions and that the tag is not already released")

	ErrGitHubTokenInvalid = NewAppError(TypeVCS, "GitHub token is invalid or expired", nil).
				WithSuggestion("Generate a new token at: https://github.com/settings/tokens")

	ErrGitHubRateLimit = NewAppError(TypeVCS, "GitHub API rate limit exceeded", nil).
				WithSuggestion("Wait a few minutes or use a personal access token for higher limits")
)

// Internal errors
var (
	ErrWriteOutput = NewAppError(TypeInternal, "Failed to write release notes file", nil).
			WithSuggestion("Check the output directory exists and is writable")
)
