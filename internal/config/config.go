package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/thomas-vilte/relnotes/internal/errors"
	"github.com/thomas-vilte/relnotes/internal/models"
	"gopkg.in/yaml.v3"
)

type (
	Config struct {
		Provider   Provider `toml:"provider" yaml:"provider"`
		Model      string   `toml:"model" yaml:"model"`
		APIKey     string   `toml:"api_key" yaml:"api_key"`
		BaseURL    string   `toml:"base_url" yaml:"base_url"`
		RepoPath   string   `toml:"repo_path" yaml:"repo_path"`
		FilePath   string   `toml:"file_path" yaml:"file_path"`
		MaxCommits int      `toml:"max_commits" yaml:"max_commits"`
		Language   string   `toml:"language" yaml:"language"`
		MaxTurns   int      `toml:"max_turns" yaml:"max_turns"`

		GitHub GitHubConfig `toml:"github" yaml:"github"`

		PathFile string `toml:"-" yaml:"-"`

		// getenv is the lookup Load used; provider switches read credentials through it.
		getenv Getenv

		// fileAPIKey is the api_key of the config file, valid for fileKeyProvider only.
		fileAPIKey      string
		fileKeyProvider Provider
	}

	GitHubConfig struct {
		Token string `toml:"token" yaml:"token"`
		Owner string `toml:"owner" yaml:"owner"`
		Repo  string `toml:"repo" yaml:"repo"`
	}
)

const (
	defaultLang     = "en"
	defaultMaxTurns = 8

	configDirName  = ".relnotes"
	configFileName = "config.toml"
)

// Getenv looks up an environment variable. Tests pass a map-backed one.
type Getenv func(key string) string

func Default() *Config {
	provider, model := ParseModelName(DefaultModelName)
	return &Config{
		Provider:   provider,
		Model:      model,
		BaseURL:    DefaultBaseURL(provider),
		MaxCommits: models.DefaultMaxCommits,
		Language:   defaultLang,
		MaxTurns:   defaultMaxTurns,
	}
}

// DefaultPath returns ~/.relnotes/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not resolve home directory: %w", err)
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// Load builds the configuration from defaults, the optional file at path and the
// process environment, in that order. An empty path falls back to DefaultPath when
// that file exists. Load does not validate; call Validate once flags are applied.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

func LoadWithEnv(path string, getenv Getenv) (*Config, error) {
	cfg := Default()
	cfg.getenv = getenv

	if path == "" {
		if p, err := DefaultPath(); err == nil {
			if _, statErr := os.Stat(p); statErr == nil {
				path = p
			}
		}
	}

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv(getenv)
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.ErrConfigFile.WithError(err).WithContext("path", path)
	}

	before := *c

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml", "":
		_, err = toml.Decode(string(data), c)
	default:
		err = fmt.Errorf("unsupported config extension %q", filepath.Ext(path))
	}
	if err != nil {
		return errors.ErrConfigFile.WithError(err).WithContext("path", path)
	}

	c.PathFile = path
	c.fileAPIKey = c.APIKey
	c.fileKeyProvider = c.Provider

	// A provider named in the file brings its own defaults unless the file overrides them too.
	if c.Provider != before.Provider {
		fileProvider, fileModel, fileURL := c.Provider, c.Model, c.BaseURL
		c.Provider, c.Model, c.BaseURL = before.Provider, before.Model, before.BaseURL
		c.SetProvider(fileProvider)
		if fileModel != before.Model {
			c.Model = fileModel
		}
		if fileURL != before.BaseURL {
			c.BaseURL = fileURL
		}
	}
	return nil
}

func (c *Config) applyEnv(getenv Getenv) {
	if v := getenv("RELNOTES_PROVIDER"); v != "" {
		c.SetProvider(Provider(strings.ToLower(v)))
	}
	if v := getenv("MODEL_NAME"); v != "" {
		c.SetModelName(v)
	}
	if key := APIKeyEnvVar(c.Provider); key != "" {
		if v := getenv(key); v != "" {
			c.APIKey = v
		}
	}
	if c.Provider == ProviderOllama {
		if v := getenv("OLLAMA_HOST"); v != "" {
			c.BaseURL = v
		}
	}
	if v := getenv("REPO_PATH"); v != "" {
		c.RepoPath = v
	}
	if v := getenv("FILE_PATH"); v != "" {
		c.FilePath = v
	}
	if v := getenv("RELNOTES_LANG"); v != "" {
		c.Language = v
	}
	if v := getenv("GITHUB_TOKEN"); v != "" {
		c.GitHub.Token = v
	}
}

// SetProvider switches provider, resetting the endpoint and model when they
// belonged to the previous one.
func (c *Config) SetProvider(p Provider) {
	if p == c.Provider {
		return
	}
	if c.BaseURL == DefaultBaseURL(c.Provider) {
		c.BaseURL = DefaultBaseURL(p)
	}
	if c.Model == DefaultModelForProvider(c.Provider) {
		c.Model = DefaultModelForProvider(p)
	}
	c.Provider = p
	c.resolveProviderEnv()
}

// resolveProviderEnv drops the credential of the previous provider. The file's
// key is reused only for the provider the file named, and the environment wins
// over it.
func (c *Config) resolveProviderEnv() {
	c.APIKey = ""
	if c.fileKeyProvider == c.Provider {
		c.APIKey = c.fileAPIKey
	}
	if c.getenv == nil {
		return
	}
	if key := APIKeyEnvVar(c.Provider); key != "" {
		if v := c.getenv(key); v != "" {
			c.APIKey = v
		}
	}
	if c.Provider == ProviderOllama {
		if v := c.getenv("OLLAMA_HOST"); v != "" {
			c.BaseURL = v
		}
	}
}

// SetModelName applies a model name, routing to another provider when the name
// carries a provider prefix ("gemini/gemini-2.5-flash").
func (c *Config) SetModelName(name string) {
	provider, model := ParseModelName(name)
	if provider != "" {
		c.SetProvider(provider)
	}
	c.Model = model
}

// Validate checks the configuration once, before any provider is built.
func (c *Config) Validate() error {
	if !IsSupportedProvider(c.Provider) {
		return errors.ErrProviderNotSupported.WithContext("provider", string(c.Provider))
	}
	if c.Model == "" {
		return errors.ErrModelMissing
	}
	if c.MaxCommits <= 0 {
		return errors.ErrInvalidConfig.WithError(fmt.Errorf("max_commits must be greater than 0, got %d", c.MaxCommits))
	}
	if c.MaxTurns <= 0 {
		return errors.ErrInvalidConfig.WithError(fmt.Errorf("max_turns must be greater than 0, got %d", c.MaxTurns))
	}
	if c.Language == "" {
		return errors.ErrInvalidConfig.WithError(fmt.Errorf("language cannot be empty"))
	}
	if RequiresAPIKey(c.Provider) && c.APIKey == "" {
		envVar := APIKeyEnvVar(c.Provider)
		return errors.ErrAPIKeyMissing.
			WithContext("provider", string(c.Provider)).
			WithSuggestion(fmt.Sprintf("Export the %s key: export %s=<key>", c.Provider, envVar))
	}
	return nil
}

// ModelName returns the "provider/model" form used in logs and reports.
func (c *Config) ModelName() string {
	return fmt.Sprintf("%s/%s", c.Provider, c.Model)
}

// Save writes c as TOML to path, creating the parent directory. The file may
// hold credentials, so it is only readable by the owner.
func Save(c *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.ErrConfigFile.WithError(err).WithContext("path", path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.ErrConfigFile.WithError(err).WithContext("path", path)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return errors.ErrConfigFile.WithError(err).WithContext("path", path)
	}
	c.PathFile = path
	return nil
}
