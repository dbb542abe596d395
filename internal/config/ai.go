package config

import "strings"

type Provider string

const (
	ProviderGroq   Provider = "groq"
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
	ProviderOllama Provider = "ollama"
)

// DefaultModelName is the litellm-style "provider/model" used when nothing is configured.
const DefaultModelName = "groq/openai/gpt-oss-120b"

func SupportedProviders() []Provider {
	return []Provider{
		ProviderGroq,
		ProviderOpenAI,
		ProviderGemini,
		ProviderOllama,
	}
}

func IsSupportedProvider(p Provider) bool {
	for _, s := range SupportedProviders() {
		if s == p {
			return true
		}
	}
	return false
}

func DefaultModelForProvider(p Provider) string {
	switch p {
	case ProviderGroq:
		return "openai/gpt-oss-120b"
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderGemini:
		return "gemini-2.5-flash"
	case ProviderOllama:
		return "llama3.1"
	default:
		return ""
	}
}

// APIKeyEnvVar returns the environment variable holding the provider credential,
// or "" for providers that run without one.
func APIKeyEnvVar(p Provider) string {
	switch p {
	case ProviderGroq:
		return "GROQ_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

func RequiresAPIKey(p Provider) bool {
	return APIKeyEnvVar(p) != ""
}

func DefaultBaseURL(p Provider) string {
	switch p {
	case ProviderGroq:
		return "https://api.groq.com/openai/v1"
	case ProviderOpenAI:
		return "https://api.openai.com/v1"
	default:
		return ""
	}
}

// ParseModelName splits "groq/openai/gpt-oss-120b" into its provider and model.
// Names without a known provider prefix return an empty provider and the name unchanged.
func ParseModelName(name string) (Provider, string) {
	name = strings.TrimSpace(name)
	prefix, rest, found := strings.Cut(name, "/")
	if !found || rest == "" {
		return "", name
	}

	p := Provider(strings.ToLower(prefix))
	if !IsSupportedProvider(p) {
		return "", name
	}
	return p, rest
}
