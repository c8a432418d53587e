package gitcache

import (
	"regexp"
	"strings"
)

// urlPatterns whitelists the repository URL shapes kodeklip will clone:
// HTTPS or SSH forms for the major hosts, plus generic URLs ending in the
// .git suffix convention.
var urlPatterns = []*regexp.Regexp{
	// GitHub
	regexp.MustCompile(`^https://github\.com/[\w\-.]+/[\w\-.]+(?:\.git)?/?$`),
	regexp.MustCompile(`^git@github\.com:[\w\-.]+/[\w\-.]+(?:\.git)?$`),
	// GitLab
	regexp.MustCompile(`^https://gitlab\.com/[\w\-.]+/[\w\-.]+(?:\.git)?/?$`),
	regexp.MustCompile(`^git@gitlab\.com:[\w\-.]+/[\w\-.]+(?:\.git)?$`),
	// Bitbucket
	regexp.MustCompile(`^https://bitbucket\.org/[\w\-.]+/[\w\-.]+(?:\.git)?/?$`),
	regexp.MustCompile(`^git@bitbucket\.org:[\w\-.]+/[\w\-.]+(?:\.git)?$`),
	// Generic
	regexp.MustCompile(`^https?://[^/]+/.*\.git/?$`),
	regexp.MustCompile(`^git@[^:]+:.*\.git$`),
	regexp.MustCompile(`^ssh://git@[^/]+/.*\.git$`),
}

// ValidateRepositoryURL reports whether url matches a supported git
// repository shape. Pure predicate, no side effects.
func ValidateRepositoryURL(url string) bool {
	url = strings.TrimSpace(url)
	if url == "" {
		return false
	}
	for _, pattern := range urlPatterns {
		if pattern.MatchString(url) {
			return true
		}
	}
	return false
}
