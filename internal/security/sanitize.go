package security

import (
	"regexp"
	"strings"
	"sync"
)

var (
	gitlabTokenRegex *regexp.Regexp
	githubTokenRegex *regexp.Regexp
	azurePATRegex    *regexp.Regexp
	authHeaderRegex  *regexp.Regexp
	regexOnce        sync.Once
)

func compilePatterns() {
	regexOnce.Do(func() {
		// GitLab personal access tokens: glpat-<chars>
		gitlabTokenRegex = regexp.MustCompile(`glpat-[a-zA-Z0-9_-]{6,}`)

		// GitHub personal access tokens: ghp_/gho_/ghs_ prefixes
		githubTokenRegex = regexp.MustCompile(`gh[ops]_[a-zA-Z0-9]{20,}`)

		// Azure DevOps PATs: long unprefixed base64-ish strings
		azurePATRegex = regexp.MustCompile(`\b[a-z0-9]{52}\b|\b[A-Za-z0-9+/=]{64,200}\b`)

		// Authorization headers, Basic and Bearer
		authHeaderRegex = regexp.MustCompile(`(?i)authorization:\s*(?:bearer|basic)\s+[a-zA-Z0-9+/=_-]{10,}`)
	})
}

// SanitizeString redacts platform tokens from a string: GitLab glpat-*
// tokens, GitHub ghp_/gho_/ghs_ tokens, Azure DevOps PATs, and raw
// authorization headers. Safe for concurrent use.
func SanitizeString(s string) string {
	compilePatterns()

	s = gitlabTokenRegex.ReplaceAllString(s, "[gitlab-token-redacted]")
	s = githubTokenRegex.ReplaceAllString(s, "[github-token-redacted]")
	s = authHeaderRegex.ReplaceAllString(s, "Authorization: [redacted]")

	// The PAT pattern is broad; skip it when a prefixed token was
	// already redacted to avoid over-redaction.
	if strings.Contains(s, "-token-redacted]") {
		return s
	}
	return azurePATRegex.ReplaceAllString(s, "[token-redacted]")
}
