package github

import (
	"context"

	"github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/mock"
)

type MockReleaseService struct {
	mock.Mock
}

func (m *MockReleaseService) CreateRelease(ctx context.Context, owner, repo string, release *github.RepositoryRelease) (*github.RepositoryRelease, *github.Response, error) {
	args := m.Called(ctx, owner, repo, release)
	var rel *github.RepositoryRelease
	if r := args.Get(0); r != nil {
		rel = r.(*github.RepositoryRelease)
	}
	var resp *github.Response
	if r := args.Get(1); r != nil {
		resp = r.(*github.Response)
	}
	return rel, resp, args.Error(2)
}

func (m *MockReleaseService) GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*github.RepositoryRelease, *github.Response, error) {
	args := m.Called(ctx, owner, repo, tag)
	var rel *github.RepositoryRelease
	if r := args.Get(0); r != nil {
		rel = r.(*github.RepositoryRelease)
	}
	var resp *github.Response
	if r := args.Get(1); r != nil {
		resp = r.(*github.Response)
	}
	return rel, resp, args.Error(2)
}

func (m *MockReleaseService) EditRelease(ctx context.Context, owner, repo string, id int64, release *github.RepositoryRelease) (*github.RepositoryRelease, *github.Response, error) {
	args := m.Called(ctx, owner, repo, id, release)
	var rel *github.RepositoryRelease
	if r := args.Get(0); r != nil {
		rel = r.(*github.RepositoryRelease)
	}
	var resp *github.Response
	if r := args.Get(1); r != nil {
		resp = r.(*github.Response)
	}
	return rel, resp, args.Error(2)
}
