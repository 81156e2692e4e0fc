// Package gitutil contains helpers for working with GitHub URLs.
package gitutil

import (
	"fmt"
	"regexp"
	"strings"
)

var commitURLRegex = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/commit/([0-9a-fA-F]{7,40})$`)

// ParseCommitURL parses a GitHub commit URL and extracts the owner, repo, and commit SHA.
// Supported format: https://github.com/{owner}/{repo}/commit/{sha}
func ParseCommitURL(url string) (owner, repo, sha string, err error) {
	// Normalize URL
	url = strings.TrimSuffix(url, "/")

	matches := commitURLRegex.FindStringSubmatch(url)
	if len(matches) != 4 {
		return "", "", "", fmt.Errorf("invalid commit URL format: %s", url)
	}

	return matches[1], matches[2], matches[3], nil
}
