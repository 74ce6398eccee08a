// Package urlutil provides parsing helpers for git remote URLs.
//
// It handles three URL formats:
//   - HTTPS: https://github.com/owner/repo
//   - SSH colon: git@github.com:owner/repo
//   - SSH protocol: ssh://git@github.com/owner/repo
package urlutil

import "strings"

const (
	// minColonParts is the minimum number of parts expected when splitting
	// SSH colon format URLs: git@host:path splits into ["git@host", "path"].
	minColonParts = 2
)

// SplitRemoteURL splits a git remote URL into its host and path, with
// any user info, scheme, and trailing .git suffix removed.
//
// Examples:
//
//	SplitRemoteURL("git@github.com:owner/repo.git") → ("github.com", "owner/repo")
//	SplitRemoteURL("https://gitlab.com/group/subgroup/project") → ("gitlab.com", "group/subgroup/project")
//	SplitRemoteURL("ssh://git@ssh.dev.azure.com/v3/org/project/repo") → ("ssh.dev.azure.com", "v3/org/project/repo")
func SplitRemoteURL(url string) (host, path string) {
	url = strings.TrimSuffix(url, ".git")

	if strings.HasPrefix(url, "git@") && !strings.Contains(url, "://") {
		// SSH colon format: git@host:path
		trimmed := strings.TrimPrefix(url, "git@")
		parts := strings.SplitN(trimmed, ":", minColonParts)
		if len(parts) < minColonParts {
			return trimmed, ""
		}
		return parts[0], strings.Trim(parts[1], "/")
	}

	// Scheme formats: https://host/path, ssh://git@host/path
	if idx := strings.Index(url, "://"); idx >= 0 {
		url = url[idx+len("://"):]
	}
	if idx := strings.Index(url, "@"); idx >= 0 {
		url = url[idx+1:]
	}

	host, path, _ = strings.Cut(url, "/")
	return host, strings.Trim(path, "/")
}

// LastPathComponents returns the last n slash-separated components of
// path, or "" when path has fewer.
func LastPathComponents(path string, n int) string {
	parts := strings.Split(path, "/")
	if len(parts) < n {
		return ""
	}
	return strings.Join(parts[len(parts)-n:], "/")
}
