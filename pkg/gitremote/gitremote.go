// Package gitremote inspects local git checkouts to work out which
// tracking platform a repository lives on, so commands can default
// their source provider and scope from the working directory.
package gitremote

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/avollmer/workbridge/internal/urlutil"
)

var (
	errNoRemoteURL     = errors.New("no URLs found for remote")
	errUnknownHost     = errors.New("remote host does not match a supported platform")
	errMalformedRemote = errors.New("could not extract a project scope from remote URL")
)

// Remote describes where a checkout is hosted: the platform name and
// the scope an adapter for that platform expects (owner/repo for
// GitHub, the full namespace path for GitLab, organization/project
// for Azure DevOps).
type Remote struct {
	Provider string
	Scope    string
}

// Repository wraps a local git checkout.
type Repository struct {
	repo *git.Repository
}

// Open opens the git repository at path.
func Open(path string) (*Repository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}
	return &Repository{repo: repo}, nil
}

// RemoteURL returns the first URL configured for the named remote.
func (r *Repository) RemoteURL(remoteName string) (string, error) {
	remote, err := r.repo.Remote(remoteName)
	if err != nil {
		return "", fmt.Errorf("failed to get remote %s: %w", remoteName, err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("%w %s", errNoRemoteURL, remoteName)
	}
	return urls[0], nil
}

// DetectRemote resolves the origin remote into a platform and scope.
func (r *Repository) DetectRemote() (Remote, error) {
	url, err := r.RemoteURL("origin")
	if err != nil {
		return Remote{}, err
	}
	return ParseRemote(url)
}

// ParseRemote classifies a git remote URL by host and extracts the
// scope the matching adapter expects.
func ParseRemote(url string) (Remote, error) {
	host, path := urlutil.SplitRemoteURL(url)

	switch {
	case host == "github.com":
		scope := urlutil.LastPathComponents(path, 2)
		if scope == "" {
			return Remote{}, fmt.Errorf("%w: %s", errMalformedRemote, url)
		}
		return Remote{Provider: "github", Scope: scope}, nil

	case strings.Contains(host, "gitlab"):
		if path == "" {
			return Remote{}, fmt.Errorf("%w: %s", errMalformedRemote, url)
		}
		return Remote{Provider: "gitlab", Scope: path}, nil

	case host == "dev.azure.com", host == "ssh.dev.azure.com":
		return parseAzurePath(url, path)

	case strings.HasSuffix(host, ".visualstudio.com"):
		org, _, _ := strings.Cut(host, ".")
		project, _, _ := strings.Cut(path, "/")
		if project == "" {
			return Remote{}, fmt.Errorf("%w: %s", errMalformedRemote, url)
		}
		return Remote{Provider: "azure", Scope: org + "/" + project}, nil
	}
	return Remote{}, fmt.Errorf("%w: %s", errUnknownHost, host)
}

// parseAzurePath handles the two dev.azure.com layouts:
// org/project/_git/repo over HTTPS and v3/org/project/repo over SSH.
func parseAzurePath(url, path string) (Remote, error) {
	parts := strings.Split(path, "/")
	if parts[0] == "v3" {
		parts = parts[1:]
	}
	if len(parts) < 2 {
		return Remote{}, fmt.Errorf("%w: %s", errMalformedRemote, url)
	}
	return Remote{Provider: "azure", Scope: parts[0] + "/" + parts[1]}, nil
}
