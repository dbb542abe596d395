package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/go-github/v80/github"
	"github.com/thomas-vilte/relnotes/internal/i18n"
	"github.com/thomas-vilte/relnotes/internal/logger"
	"golang.org/x/mod/semver"
)

const (
	releaseOwner = "thomas-vilte"
	releaseRepo  = "relnotes"

	updateCheckTimeout    = 2 * time.Second
	disableUpdateCheckEnv = "RELNOTES_DISABLE_UPDATE_CHECK"
)

// LatestReleaseFetcher is the part of the GitHub repositories API the checker needs.
type LatestReleaseFetcher interface {
	GetLatestRelease(ctx context.Context, owner, repo string) (*github.RepositoryRelease, *github.Response, error)
}

// VersionChecker tells the user when a newer relnotes release exists. It never
// fails the command: every error ends the check silently.
type VersionChecker struct {
	currentVersion string
	trans          *i18n.Translations
	releases       LatestReleaseFetcher
}

func NewVersionChecker(version string, trans *i18n.Translations) *VersionChecker {
	return NewVersionCheckerWithFetcher(version, trans, github.NewClient(&http.Client{Timeout: updateCheckTimeout}).Repositories)
}

func NewVersionCheckerWithFetcher(version string, trans *i18n.Translations, releases LatestReleaseFetcher) *VersionChecker {
	return &VersionChecker{
		currentVersion: version,
		trans:          trans,
		releases:       releases,
	}
}

// LatestVersion returns the newest published tag, or "" when none is newer
// than the running version.
func (v *VersionChecker) LatestVersion(ctx context.Context) string {
	if os.Getenv(disableUpdateCheckEnv) != "" {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, updateCheckTimeout)
	defer cancel()

	release, _, err := v.releases.GetLatestRelease(ctx, releaseOwner, releaseRepo)
	if err != nil {
		logger.Debug(ctx, "update check failed", "error", err)
		return ""
	}

	latest := release.GetTagName()
	if !v.isUpdateAvailable(latest) {
		return ""
	}
	return latest
}

// CheckForUpdates prints a notice to w when a newer version exists.
func (v *VersionChecker) CheckForUpdates(ctx context.Context, w io.Writer) {
	if latest := v.LatestVersion(ctx); latest != "" {
		v.printUpdateNotification(w, latest)
	}
}

func (v *VersionChecker) isUpdateAvailable(latest string) bool {
	if latest == "" {
		return false
	}
	current := v.currentVersion
	if !strings.HasPrefix(current, "v") {
		current = "v" + current
	}
	if !strings.HasPrefix(latest, "v") {
		latest = "v" + latest
	}

	if !semver.IsValid(current) || !semver.IsValid(latest) {
		return current != latest
	}

	return semver.Compare(latest, current) > 0
}

func (v *VersionChecker) printUpdateNotification(w io.Writer, latest string) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow, color.Bold)

	msg := v.trans.GetMessage("update.available", 0, map[string]interface{}{
		"Current": v.currentVersion,
		"Latest":  green(latest),
	})
	cmd := v.trans.GetMessage("update.command", 0, map[string]interface{}{
		"Command": green(fmt.Sprintf("go install github.com/%s/%s/cmd/relnotes@latest", releaseOwner, releaseRepo)),
	})

	_, _ = fmt.Fprintln(w)
	_, _ = yellow.Fprintf(w, "⬆️  %s\n", msg)
	_, _ = fmt.Fprintf(w, "   %s\n", cmd)
}
