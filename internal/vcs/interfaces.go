package vcs

import (
	"context"

	"github.com/thomas-vilte/relnotes/internal/models"
)

// ReleasePublisher publishes generated release notes to a hosting service.
type ReleasePublisher interface {
	// PublishRelease creates the release for draft.Tag, or replaces the
	// notes of the existing one.
	PublishRelease(ctx context.Context, draft models.ReleaseDraft) (*models.PublishedRelease, error)
}
