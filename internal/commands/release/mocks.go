package release

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/relnotes/internal/models"
)

type MockNotesGenerator struct {
	mock.Mock
}

func (m *MockNotesGenerator) GenerateToFile(ctx context.Context, repository, file, output string) (string, error) {
	args := m.Called(ctx, repository, file, output)
	return args.String(0), args.Error(1)
}

func (m *MockNotesGenerator) GenerateReport(ctx context.Context, repository, file string, maxCommits int) (*models.ReleaseNotesReport, error) {
	args := m.Called(ctx, repository, file, maxCommits)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReleaseNotesReport), args.Error(1)
}

type MockReleasePublisher struct {
	mock.Mock
}

func (m *MockReleasePublisher) PublishRelease(ctx context.Context, draft models.ReleaseDraft) (*models.PublishedRelease, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PublishedRelease), args.Error(1)
}

type MockCommitQuerier struct {
	mock.Mock
}

func (m *MockCommitQuerier) Query(ctx context.Context, q models.CommitQuery) models.CommitQueryResult {
	args := m.Called(ctx, q)
	return args.Get(0).(models.CommitQueryResult)
}
