package ai

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/thomas-vilte/relnotes/internal/models"
)

// PromptVersion changes whenever SystemPrompt or the request templates change.
const PromptVersion = "2026-01"

const SystemPrompt = `You are a Release Notes Writer specialized in creating clear,
professional release notes from git commit history.

Your task:
1. Analyze the git commit history provided
2. Group commits by category (Features, Fixes, Improvements, etc.)
3. Write concise, user-friendly release notes
4. Focus on what changed, not how it was implemented
5. Use professional tone suitable for production releases

Format the output as:
- Clear section headings
- Bullet points for each change
- Highlight breaking changes if any
- Keep it concise but informative
`

const (
	userRequestTemplateEN = `Generate release notes for the git repository at: {{.Repository}}

File filter: {{.FileFilter}}
Max commits to analyze: {{.MaxCommits}}

Use the {{.ToolName}} tool to fetch the commit history, then create professional release notes.`

	userRequestTemplateES = `Genera las notas de versión para el repositorio git en: {{.Repository}}

Filtro de archivo: {{.FileFilter}}
Máximo de commits a analizar: {{.MaxCommits}}

Usa la herramienta {{.ToolName}} para obtener el historial de commits y luego redacta notas de versión profesionales en español.`
)

// PromptData holds the parameters for template rendering
type PromptData struct {
	Repository string
	FileFilter string
	MaxCommits int
	ToolName   string
}

// RenderPrompt renders a prompt template with the provided data
func RenderPrompt(name, tmplStr string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("error parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("error executing template %s: %w", name, err)
	}

	return buf.String(), nil
}

func userRequestTemplate(lang string) (string, string) {
	switch lang {
	case "es":
		return "user_request_es", userRequestTemplateES
	default:
		return "user_request_en", userRequestTemplateEN
	}
}

func fileFilter(file, lang string) string {
	if file != "" {
		return file
	}
	if lang == "es" {
		return "repositorio completo"
	}
	return "entire repository"
}

// BuildUserRequest renders the request for one run. The same inputs always
// produce the same text.
func BuildUserRequest(repository, file string, maxCommits int, lang string) string {
	if maxCommits <= 0 {
		maxCommits = models.DefaultMaxCommits
	}

	name, tmpl := userRequestTemplate(lang)
	out, err := RenderPrompt(name, tmpl, PromptData{
		Repository: repository,
		FileFilter: fileFilter(file, lang),
		MaxCommits: maxCommits,
		ToolName:   models.CommitHistoryToolName,
	})
	if err != nil {
		// the templates are constants; a failure here is a programming error
		panic(err)
	}
	return out
}

// NewRequestContext builds a fresh context with no tool results.
func NewRequestContext(repository, file string, maxCommits int, lang string) *models.RequestContext {
	return &models.RequestContext{
		SystemPrompt: SystemPrompt,
		UserRequest:  BuildUserRequest(repository, file, maxCommits, lang),
		ToolResults:  []models.ToolResultRecord{},
	}
}
