package providers

import (
	"github.com/thomas-vilte/relnotes/internal/config"
	"github.com/thomas-vilte/relnotes/internal/errors"
	"github.com/thomas-vilte/relnotes/internal/models"
	"github.com/thomas-vilte/relnotes/internal/vcs"
	"github.com/thomas-vilte/relnotes/internal/vcs/github"
)

// NewReleasePublisher creates a ReleasePublisher for the repository. Owner and
// repository name come from the configuration when set, otherwise from the
// origin remote.
func NewReleasePublisher(cfg *config.Config, info models.RepositoryInfo) (vcs.ReleasePublisher, error) {
	if cfg.GitHub.Token == "" {
		return nil, errors.ErrTokenMissing
	}

	owner, repo := cfg.GitHub.Owner, cfg.GitHub.Repo
	if owner == "" || repo == "" {
		if info.Owner == "" || info.Repo == "" {
			return nil, errors.ErrNoRemote.WithContext("path", info.Root)
		}
		if info.Host != "" && info.Host != "github.com" {
			return nil, errors.ErrVCSNotSupported.WithContext("host", info.Host)
		}
		owner, repo = info.Owner, info.Repo
	}

	return github.NewGitHubClient(owner, repo, cfg.GitHub.Token), nil
}
