package git

import (
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/thomas-vilte/relnotes/internal/errors"
	"github.com/thomas-vilte/relnotes/internal/models"
	"github.com/thomas-vilte/relnotes/internal/regex"
)

const shortHashLen = 7

// Inspect reads branch, HEAD and origin metadata of the repository containing path.
// Missing HEAD (no commits yet) or a missing origin are not errors.
func Inspect(path string) (models.RepositoryInfo, error) {
	info := models.RepositoryInfo{Root: path}

	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return info, errors.ErrOpenRepository.WithError(err).WithContext("path", path)
	}

	if wt, err := repo.Worktree(); err == nil {
		info.Root = wt.Filesystem.Root()
	}

	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			info.Branch = head.Name().Short()
		}
		hash := head.Hash().String()
		if len(hash) > shortHashLen {
			hash = hash[:shortHashLen]
		}
		info.Head = hash
	}

	remote, err := repo.Remote("origin")
	if err != nil || len(remote.Config().URLs) == 0 {
		return info, nil
	}

	info.RemoteURL = remote.Config().URLs[0]
	if host, owner, name, err := ParseRemoteURL(info.RemoteURL); err == nil {
		info.Host, info.Owner, info.Repo = host, owner, name
	}

	return info, nil
}

// ParseRemoteURL extracts host, owner and repository name from an SSH or HTTPS remote.
func ParseRemoteURL(url string) (host, owner, repo string, err error) {
	url = strings.TrimSpace(url)

	var matches []string
	if m := regex.SSHRepo.FindStringSubmatch(url); m != nil {
		matches = m
	} else if m := regex.HTTPSRepo.FindStringSubmatch(url); m != nil {
		matches = m
	}

	if len(matches) < 4 {
		return "", "", "", errors.ErrParseRemote.WithError(fmt.Errorf("unrecognized remote %q", url))
	}

	return matches[1], matches[2], strings.TrimSuffix(matches[3], ".git"), nil
}
