package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v80/github"
	domainErrors "github.com/thomas-vilte/relnotes/internal/errors"
	"github.com/thomas-vilte/relnotes/internal/logger"
	"github.com/thomas-vilte/relnotes/internal/models"
	"github.com/thomas-vilte/relnotes/internal/vcs"
	"golang.org/x/mod/semver"
	"golang.org/x/oauth2"
)

var _ vcs.ReleasePublisher = (*GitHubClient)(nil)

type ReleasesService interface {
	CreateRelease(ctx context.Context, owner, repo string, release *github.RepositoryRelease) (*github.RepositoryRelease, *github.Response, error)
	GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*github.RepositoryRelease, *github.Response, error)
	EditRelease(ctx context.Context, owner, repo string, id int64, release *github.RepositoryRelease) (*github.RepositoryRelease, *github.Response, error)
}

type GitHubClient struct {
	releaseService ReleasesService
	owner          string
	repo           string
}

func NewGitHubClient(owner, repo, token string) *GitHubClient {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	client := github.NewClient(httpClient)
	return NewGitHubClientWithServices(client.Repositories, owner, repo)
}

func NewGitHubClientWithServices(releaseService ReleasesService, owner, repo string) *GitHubClient {
	return &GitHubClient{
		releaseService: releaseService,
		owner:          owner,
		repo:           repo,
	}
}

// ValidateTag accepts full semver tags with a leading v (v1.2.3, v1.2.3-rc.1).
func ValidateTag(tag string) error {
	if !semver.IsValid(tag) || !isFullVersion(tag) {
		return domainErrors.ErrInvalidTagFormat.WithContext("tag", tag)
	}
	return nil
}

// isFullVersion rejects the v1 and v1.2 shorthands semver.IsValid allows.
func isFullVersion(tag string) bool {
	base := tag
	if pre := semver.Prerelease(tag); pre != "" {
		base = base[:len(base)-len(pre)]
	}
	if build := semver.Build(tag); build != "" {
		base = base[:len(base)-len(build)]
	}
	return semver.Canonical(base) == base
}

func (ghc *GitHubClient) PublishRelease(ctx context.Context, draft models.ReleaseDraft) (*models.PublishedRelease, error) {
	if err := ValidateTag(draft.Tag); err != nil {
		return nil, err
	}

	name := draft.Name
	if name == "" {
		name = draft.Tag
	}

	existing, resp, err := ghc.releaseService.GetReleaseByTag(ctx, ghc.owner, ghc.repo, draft.Tag)
	if err == nil && existing != nil {
		return ghc.updateRelease(ctx, existing, draft)
	}
	if err != nil && (resp == nil || resp.StatusCode != http.StatusNotFound) {
		return nil, ghc.mapError(err, resp, "get release", draft.Tag)
	}

	releaseRequest := &github.RepositoryRelease{
		TagName:    github.Ptr(draft.Tag),
		Name:       github.Ptr(name),
		Body:       github.Ptr(draft.Body),
		Draft:      github.Ptr(draft.Draft),
		Prerelease: github.Ptr(semver.Prerelease(draft.Tag) != ""),
	}
	if !draft.Draft && semver.Prerelease(draft.Tag) == "" {
		releaseRequest.MakeLatest = github.Ptr("true")
	}

	created, resp, err := ghc.releaseService.CreateRelease(ctx, ghc.owner, ghc.repo, releaseRequest)
	if err != nil {
		return nil, ghc.mapError(err, resp, "create release", draft.Tag)
	}

	logger.Info(ctx, "release created",
		"tag", draft.Tag,
		"draft", draft.Draft,
		"repository", fmt.Sprintf("%s/%s", ghc.owner, ghc.repo))

	return &models.PublishedRelease{
		ID:    created.GetID(),
		Tag:   draft.Tag,
		URL:   created.GetHTMLURL(),
		Draft: created.GetDraft(),
	}, nil
}

func (ghc *GitHubClient) updateRelease(ctx context.Context, existing *github.RepositoryRelease, draft models.ReleaseDraft) (*models.PublishedRelease, error) {
	update := &github.RepositoryRelease{
		Body: github.Ptr(draft.Body),
	}
	if draft.Name != "" {
		update.Name = github.Ptr(draft.Name)
	}

	edited, resp, err := ghc.releaseService.EditRelease(ctx, ghc.owner, ghc.repo, existing.GetID(), update)
	if err != nil {
		return nil, ghc.mapError(err, resp, "update release", draft.Tag)
	}

	logger.Info(ctx, "release updated",
		"tag", draft.Tag,
		"repository", fmt.Sprintf("%s/%s", ghc.owner, ghc.repo))

	return &models.PublishedRelease{
		ID:      edited.GetID(),
		Tag:     draft.Tag,
		URL:     edited.GetHTMLURL(),
		Draft:   edited.GetDraft(),
		Updated: true,
	}, nil
}

func (ghc *GitHubClient) mapError(err error, resp *github.Response, operation, tag string) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return domainErrors.ErrGitHubRateLimit.WithError(err).WithContext("operation", operation)
	}

	if resp != nil {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return domainErrors.ErrGitHubTokenInvalid.
				WithContext("operation", operation).
				WithContext("version", tag)
		case http.StatusUnprocessableEntity:
			return domainErrors.ErrCreateRelease.
				WithError(err).
				WithContext("version", tag).
				WithContext("reason", "validation failed")
		case http.StatusNotFound, http.StatusForbidden:
			return domainErrors.ErrCreateRelease.
				WithError(err).
				WithContext("operation", operation).
				WithContext("repo", fmt.Sprintf("%s/%s", ghc.owner, ghc.repo))
		}
	}
	return domainErrors.ErrCreateRelease.WithError(err).WithContext("version", tag)
}
