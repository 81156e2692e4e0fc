package grader

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// FinalScorePrefix marks the commit-level comment that finalizes an
	// assignment's grade. Its presence means the assignment is done.
	FinalScorePrefix = "Score:"

	// TestsLinkPrefix marks the commit-level comment recording the CI
	// build URL for an assignment.
	TestsLinkPrefix = "CI tests at "
)

var deltaRegex = regexp.MustCompile(`^([+-]\d+)(?::.*)?$`)

// ParseDelta extracts the signed score delta from an inline comment
// body. A score comment is a leading signed integer, optionally
// followed by a colon and free text; the text is commentary and does
// not affect the score. Anything else contributes nothing: plain prose,
// bare unsigned numbers, a lone sign.
func ParseDelta(body string) (int, bool) {
	matches := deltaRegex.FindStringSubmatch(body)
	if len(matches) < 2 {
		return 0, false
	}
	delta, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, false
	}
	return delta, true
}

// ParseFinalScore extracts the total back out of a finalized score
// comment body of the form "Score: <total>/<base>". It reports false
// for any other body.
func ParseFinalScore(body string) (int, bool) {
	if !strings.HasPrefix(body, FinalScorePrefix) {
		return 0, false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(body, FinalScorePrefix))
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	score, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return 0, false
	}
	return score, true
}
